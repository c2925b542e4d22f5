// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package headermap

import (
	"fmt"
	"reflect"
	"strings"
	"unicode/utf8"
)

// Unmarshaler is implemented by records that decode themselves from an
// explicit [Schema] instead of going through reflection.
//
// UnmarshalHeaders must pull fields in schema order with [Decoder.Next] or
// [Decoder.Scan] and return the first error unchanged.
type Unmarshaler interface {
	UnmarshalHeaders(d *Decoder) error
}

// UnmarshalerFunc adapts a function to [Unmarshaler].
type UnmarshalerFunc func(d *Decoder) error

// UnmarshalHeaders calls f(d).
func (f UnmarshalerFunc) UnmarshalHeaders(d *Decoder) error {
	return f(d)
}

// Decoder is the per-call decode context. It walks the schema one field at
// a time and reads raw values from the [Source].
//
// A Decoder is created for a single call and must not be retained or
// shared between goroutines.
type Decoder struct {
	src    Source
	schema *Schema
	cfg    *config
	index  int
	track  tracker
}

func newDecoder(src Source, schema *Schema, cfg *config) *Decoder {
	return &Decoder{
		src:    src,
		schema: schema,
		cfg:    cfg,
		track:  newTracker(OpDecode, cfg.events),
	}
}

// Field returns the name of the next field, or "" when every field has
// been consumed.
func (d *Decoder) Field() string {
	if d.index >= d.schema.Len() {
		return ""
	}

	return d.schema.fields[d.index].name
}

// Remaining returns the number of fields not yet consumed.
func (d *Decoder) Remaining() int {
	return d.schema.Len() - d.index
}

// Next decodes the next schema field into dst.
//
// dst must be a non-nil pointer to a supported scalar for a required
// field, or a pointer to a pointer for an optional field:
//
//	var n int64
//	var ct *string
//	err := d.Next(&n)   // required
//	err = d.Next(&ct)   // optional
//
// Asking for more fields than the schema declares fails with
// [ErrInvalidLength].
func (d *Decoder) Next(dst any) error {
	f, i, err := d.advance()
	if err != nil {
		return err
	}

	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		d.track.fail()
		return fieldError(OpDecode, f, i, "", "a non-nil pointer", ErrUnsupported)
	}

	return d.decodeField(f, i, rv.Elem())
}

// Skip consumes the next field without reading it, as if it were an absent
// optional field.
func (d *Decoder) Skip() error {
	f, _, err := d.advance()
	if err != nil {
		return err
	}
	d.track.field(f.name, false)

	return nil
}

// Unsupported consumes the next field and reports that its type, described
// by what (for example "an enum"), cannot be decoded.
func (d *Decoder) Unsupported(what string) error {
	f, i, err := d.advance()
	if err != nil {
		return err
	}
	d.track.fail()

	return fieldError(OpDecode, f, i, "", what, ErrUnsupported)
}

// advance moves the cursor to the next field.
func (d *Decoder) advance() (*field, int, error) {
	if d.index >= d.schema.Len() {
		return nil, d.index, &Error{
			Op:       OpDecode,
			Index:    d.index,
			Expected: expectedFields(d.schema.Len()),
			Err:      ErrInvalidLength,
		}
	}

	i := d.index
	d.index++

	return &d.schema.fields[i], i, nil
}

// Scan calls [Decoder.Next] for each destination in order and stops at
// the first error.
func (d *Decoder) Scan(dsts ...any) error {
	for _, dst := range dsts {
		if err := d.Next(dst); err != nil {
			return err
		}
	}

	return nil
}

// decodeField resolves one field into target, which is the addressable
// field value (a pointer type for optional fields).
func (d *Decoder) decodeField(f *field, i int, target reflect.Value) error {
	typ := target.Type()
	optional := typ.Kind() == reflect.Pointer
	if optional {
		typ = typ.Elem()
	}
	kind, shape := kindOf(typ)

	// Absent optional: no parsing at all.
	if optional && !d.src.Has(f.name) {
		target.SetZero()
		d.track.field(f.name, false)

		return nil
	}

	if kind == KindInvalid {
		d.track.fail()
		return fieldError(OpDecode, f, i, "", shape, ErrUnsupported)
	}

	raw, ok, err := d.lookup(f, i)
	if err != nil {
		d.track.fail()
		return err
	}
	if !ok {
		d.track.fail()
		return fieldError(OpDecode, f, i, "", "", ErrMissingField)
	}
	if !utf8.ValidString(raw) {
		d.track.fail()
		return fieldError(OpDecode, f, i, "", "", ErrInvalidUTF8)
	}

	v, expected, err := parseValue(raw, kind, d.cfg.lenientBools)
	if err != nil {
		d.track.fail()
		return fieldError(OpDecode, f, i, raw, expected, ErrInvalidValue)
	}

	if optional {
		ptr := reflect.New(typ)
		setValue(ptr.Elem(), kind, v)
		target.Set(ptr)
	} else {
		setValue(target, kind, v)
	}
	d.track.field(f.name, true)

	return nil
}

// lookup returns the raw value of a field according to the duplicate
// policy. ok is false when the key is absent.
func (d *Decoder) lookup(f *field, i int) (raw string, ok bool, err error) {
	switch d.cfg.duplicates {
	case DuplicateLast:
		if values := d.src.GetAll(f.name); len(values) > 0 {
			return values[len(values)-1], true, nil
		}
	case DuplicateReject:
		values := d.src.GetAll(f.name)
		if len(values) > 1 {
			return "", false, fieldError(OpDecode, f, i, strings.Join(values, ", "), "a single value", ErrInvalidValue)
		}
		if len(values) == 1 {
			return values[0], true, nil
		}
	}

	if !d.src.Has(f.name) {
		return "", false, nil
	}

	return d.src.Get(f.name), true, nil
}

// validate runs the configured validator on a decoded record.
func (d *Decoder) validate(rec any) error {
	if d.cfg.validator == nil {
		return nil
	}
	if err := d.cfg.validator.Validate(rec); err != nil {
		return &Error{Op: OpDecode, Index: -1, Err: fmt.Errorf("validation failed: %w", err)}
	}

	return nil
}

// currentError attaches the most recently visited field to err.
func (d *Decoder) currentError(err error) error {
	if d.index == 0 {
		return wrapError(OpDecode, &field{}, -1, "", err)
	}
	i := d.index - 1

	return wrapError(OpDecode, &d.schema.fields[i], i, "", err)
}

// Decode decodes the header collection src into the struct pointed to by out.
//
// Fields are visited in declaration order and the first failure aborts the
// call. out is only modified when decoding succeeds.
//
// Example:
//
//	var up Upload
//	err := headermap.Decode(src, &up)
//
// Errors:
//   - [ErrUnsupported]: out is not a non-nil pointer to a struct, or a field has an unsupported type
//   - [ErrMissingField]: a required field's key is absent
//   - [ErrInvalidValue]: a value cannot be parsed as the field's type
//   - [ErrInvalidUTF8]: a value is not valid UTF-8
func Decode(src Source, out any, opts ...Option) error {
	cfg, err := resolveOptions(opts)
	if err != nil {
		return err
	}

	return decodeStruct(src, out, cfg)
}

// DecodeInto decodes src into a new value of type T, which must be a struct.
//
// Example:
//
//	up, err := headermap.DecodeInto[Upload](src)
func DecodeInto[T any](src Source, opts ...Option) (T, error) {
	var result T
	if err := Decode(src, &result, opts...); err != nil {
		return result, err
	}

	return result, nil
}

// DecodeRecord decodes src into a hand-written record driven by schema.
//
// Example:
//
//	err := headermap.DecodeRecord(src, uploadSchema, &up)
func DecodeRecord(src Source, schema *Schema, rec Unmarshaler, opts ...Option) error {
	cfg, err := resolveOptions(opts)
	if err != nil {
		return err
	}

	return decodeRecord(src, schema, rec, cfg)
}

// decodeStruct binds a struct through its cached reflection schema.
func decodeStruct(src Source, out any, cfg *config) error {
	rv := reflect.ValueOf(out)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		t := newTracker(OpDecode, cfg.events)
		return t.finish(callError(OpDecode, "a pointer to a struct", ErrUnsupported))
	}

	elem := rv.Elem()
	schema, err := getStructSchema(elem.Type(), cfg.tagName)
	if err != nil {
		t := newTracker(OpDecode, cfg.events)
		return t.finish(callError(OpDecode, "", err))
	}

	d := newDecoder(src, schema, cfg)

	// Decode into a copy so a failure leaves out untouched.
	tmp := reflect.New(elem.Type()).Elem()
	tmp.Set(elem)
	for i := range schema.fields {
		f := &schema.fields[i]
		d.index = i + 1
		if err := d.decodeField(f, i, tmp.FieldByIndex(f.index)); err != nil {
			return d.track.finish(err)
		}
	}

	if err := d.validate(tmp.Addr().Interface()); err != nil {
		return d.track.finish(err)
	}
	elem.Set(tmp)

	return d.track.finish(nil)
}

// decodeRecord drives a hand-written record.
func decodeRecord(src Source, schema *Schema, rec Unmarshaler, cfg *config) error {
	if schema == nil || rec == nil {
		t := newTracker(OpDecode, cfg.events)
		return t.finish(callError(OpDecode, "a schema and a record", ErrUnsupported))
	}

	d := newDecoder(src, schema, cfg)
	if err := rec.UnmarshalHeaders(d); err != nil {
		return d.track.finish(d.currentError(err))
	}
	if err := d.validate(rec); err != nil {
		return d.track.finish(err)
	}

	return d.track.finish(nil)
}

// expectedFields describes a schema length for InvalidLength errors.
func expectedFields(n int) string {
	if n == 1 {
		return "1 field in schema"
	}

	return fmt.Sprintf("%d fields in schema", n)
}
