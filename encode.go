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
	"reflect"
)

// Marshaler is implemented by records that encode themselves against an
// explicit [Schema].
//
// MarshalHeaders must push field values in schema order with
// [Encoder.Next] or [Encoder.Write].
type Marshaler interface {
	MarshalHeaders(e *Encoder) error
}

// MarshalerFunc adapts a function to [Marshaler].
type MarshalerFunc func(e *Encoder) error

// MarshalHeaders calls f(e).
func (f MarshalerFunc) MarshalHeaders(e *Encoder) error {
	return f(e)
}

// Encoder is the per-call encode context. It tracks the field currently
// being written and forwards canonical values to the [Sink].
type Encoder struct {
	sink    Sink
	schema  *Schema
	cfg     *config
	index   int
	current string
	track   tracker
}

func newEncoder(sink Sink, schema *Schema, cfg *config) *Encoder {
	return &Encoder{
		sink:   sink,
		schema: schema,
		cfg:    cfg,
		track:  newTracker(OpEncode, cfg.events),
	}
}

// Field returns the name of the field most recently handed to the encoder.
func (e *Encoder) Field() string {
	return e.current
}

// Remaining returns the number of fields not yet written.
func (e *Encoder) Remaining() int {
	return e.schema.Len() - e.index
}

// Next encodes v as the next schema field.
//
// v is a supported scalar, or a pointer to one for an optional field.
// A nil pointer or a nil interface omits the field.
//
// Writing more fields than the schema declares fails with
// [ErrInvalidLength].
func (e *Encoder) Next(v any) error {
	f, i, err := e.advance()
	if err != nil {
		return err
	}

	return e.encodeField(f, i, reflect.ValueOf(v))
}

// Unsupported consumes the next field and reports that its type, described
// by what (for example "an enum"), cannot be encoded.
func (e *Encoder) Unsupported(what string) error {
	f, i, err := e.advance()
	if err != nil {
		return err
	}
	e.track.fail()

	return fieldError(OpEncode, f, i, "", what, ErrUnsupported)
}

// advance moves the cursor to the next field and makes it current.
func (e *Encoder) advance() (*field, int, error) {
	if e.index >= e.schema.Len() {
		return nil, e.index, &Error{
			Op:       OpEncode,
			Index:    e.index,
			Expected: expectedFields(e.schema.Len()),
			Err:      ErrInvalidLength,
		}
	}

	i := e.index
	e.index++
	e.current = e.schema.fields[i].name

	return &e.schema.fields[i], i, nil
}

// Write calls [Encoder.Next] for each value in order and stops at the
// first error.
func (e *Encoder) Write(values ...any) error {
	for _, v := range values {
		if err := e.Next(v); err != nil {
			return err
		}
	}

	return nil
}

// encodeField writes one field value.
func (e *Encoder) encodeField(f *field, i int, v reflect.Value) error {
	if !v.IsValid() {
		e.track.field(f.name, false)
		return nil
	}
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			e.track.field(f.name, false)
			return nil
		}
		v = v.Elem()
	}

	kind, shape := kindOf(v.Type())
	if kind == KindInvalid {
		e.track.fail()
		return fieldError(OpEncode, f, i, "", shape, ErrUnsupported)
	}

	s, err := formatValue(v, kind)
	if err != nil {
		e.track.fail()
		return fieldError(OpEncode, f, i, "", "", err)
	}

	if err := e.sink.Insert(f.name, s); err != nil {
		e.track.fail()
		return wrapError(OpEncode, f, i, s, err)
	}
	e.track.field(f.name, true)

	return nil
}

// currentError attaches the field being written to err.
func (e *Encoder) currentError(err error) error {
	if e.index == 0 {
		return wrapError(OpEncode, &field{}, -1, "", err)
	}
	i := e.index - 1

	return wrapError(OpEncode, &e.schema.fields[i], i, "", err)
}

// Encode writes the struct v (or the struct v points to) into sink.
//
// Fields are written in declaration order. The first failure aborts the
// call; whatever was already inserted into sink must be discarded.
//
// Example:
//
//	h := headermap.NewHeaders()
//	err := headermap.Encode(h, Upload{ContentLength: 100})
//
// Errors:
//   - [ErrUnsupported]: v is not a struct, or a field has an unsupported type
//   - [ErrInvalidUTF8]: a byte string field is not valid UTF-8
//   - errors returned by sink.Insert, wrapped with field context
func Encode(sink Sink, v any, opts ...Option) error {
	cfg, err := resolveOptions(opts)
	if err != nil {
		return err
	}

	return encodeStruct(sink, v, cfg)
}

// EncodeRecord writes a hand-written record driven by schema into sink.
func EncodeRecord(sink Sink, schema *Schema, rec Marshaler, opts ...Option) error {
	cfg, err := resolveOptions(opts)
	if err != nil {
		return err
	}

	return encodeRecord(sink, schema, rec, cfg)
}

// Marshal encodes v into a new [Headers] collection.
// It returns nil on error so no partial collection escapes.
//
// Example:
//
//	h, err := headermap.Marshal(Upload{ContentLength: 100})
//	fmt.Println(h.Get("content_length")) // 100
func Marshal(v any, opts ...Option) (*Headers, error) {
	h := &Headers{}
	if err := Encode(h, v, opts...); err != nil {
		return nil, err
	}

	return h, nil
}

// encodeStruct writes a struct through its cached reflection schema.
func encodeStruct(sink Sink, v any, cfg *config) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer && !rv.IsNil() {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		t := newTracker(OpEncode, cfg.events)
		return t.finish(callError(OpEncode, "a struct", ErrUnsupported))
	}

	schema, err := getStructSchema(rv.Type(), cfg.tagName)
	if err != nil {
		t := newTracker(OpEncode, cfg.events)
		return t.finish(callError(OpEncode, "", err))
	}

	e := newEncoder(sink, schema, cfg)
	for i := range schema.fields {
		f := &schema.fields[i]
		e.index = i + 1
		e.current = f.name
		if err := e.encodeField(f, i, rv.FieldByIndex(f.index)); err != nil {
			return e.track.finish(err)
		}
	}

	return e.track.finish(nil)
}

// encodeRecord drives a hand-written record.
func encodeRecord(sink Sink, schema *Schema, rec Marshaler, cfg *config) error {
	if schema == nil || rec == nil {
		t := newTracker(OpEncode, cfg.events)
		return t.finish(callError(OpEncode, "a schema and a record", ErrUnsupported))
	}

	e := newEncoder(sink, schema, cfg)
	if err := rec.MarshalHeaders(e); err != nil {
		return e.track.finish(e.currentError(err))
	}

	return e.track.finish(nil)
}
