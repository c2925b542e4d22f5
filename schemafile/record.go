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

package schemafile

import (
	"fmt"
	"reflect"

	"rivaas.dev/headermap"
)

// Layout is a built layout: a typed schema plus the record factory for it.
type Layout struct {
	name   string
	schema *headermap.Schema
}

// Name returns the layout name.
func (l *Layout) Name() string {
	return l.name
}

// Schema returns the typed schema of the layout.
func (l *Layout) Schema() *headermap.Schema {
	return l.schema
}

// NewRecord returns an empty record for the layout.
func (l *Layout) NewRecord() *Record {
	return &Record{layout: l, values: make([]any, l.schema.Len())}
}

// Record is a dynamic record whose fields are described by a [Layout].
// Values are held as the Go type of the field kind (int64 for "i64",
// [headermap.Char] for "char", []byte for "bytes"). A nil value marks an
// absent optional field.
//
// Record implements [headermap.Unmarshaler] and [headermap.Marshaler].
type Record struct {
	layout *Layout
	values []any
}

// Layout returns the layout of the record.
func (r *Record) Layout() *Layout {
	return r.layout
}

// Get returns the value of field name. ok is false when the field is
// unknown or holds no value.
func (r *Record) Get(name string) (v any, ok bool) {
	i, known := r.layout.schema.Index(name)
	if !known || r.values[i] == nil {
		return nil, false
	}

	return r.values[i], true
}

// Set stores v in field name. v must have the exact Go type of the field
// kind. A nil v clears the field.
func (r *Record) Set(name string, v any) error {
	i, known := r.layout.schema.Index(name)
	if !known {
		return fmt.Errorf("%w: %q in layout %q", ErrUnknownField, name, r.layout.name)
	}
	if v == nil {
		r.values[i] = nil
		return nil
	}

	f := r.layout.schema.Field(i)
	if got := reflect.TypeOf(v); got != f.Kind.Type() {
		return fmt.Errorf("%w: field %q is %s, got %s", ErrKindMismatch, name, f.Kind, got)
	}
	r.values[i] = v

	return nil
}

// Values returns the fields that hold a value, keyed by name.
func (r *Record) Values() map[string]any {
	out := make(map[string]any, len(r.values))
	for i, v := range r.values {
		if v != nil {
			out[r.layout.schema.Name(i)] = v
		}
	}

	return out
}

// UnmarshalHeaders implements [headermap.Unmarshaler].
func (r *Record) UnmarshalHeaders(d *headermap.Decoder) error {
	values := make([]any, len(r.values))
	for i, f := range r.layout.schema.Fields() {
		typ := f.Kind.Type()
		if f.Optional {
			typ = reflect.PointerTo(typ)
		}

		dst := reflect.New(typ)
		if err := d.Next(dst.Interface()); err != nil {
			return err
		}

		v := dst.Elem()
		if f.Optional {
			if v.IsNil() {
				continue
			}
			v = v.Elem()
		}
		values[i] = v.Interface()
	}
	r.values = values

	return nil
}

// MarshalHeaders implements [headermap.Marshaler]. A required field that was
// never set fails with [headermap.ErrMissingField].
func (r *Record) MarshalHeaders(e *headermap.Encoder) error {
	for i, f := range r.layout.schema.Fields() {
		v := r.values[i]
		if v == nil && !f.Optional {
			return &headermap.Error{Op: headermap.OpEncode, Field: f.Name, Index: i, Err: headermap.ErrMissingField}
		}
		if err := e.Next(v); err != nil {
			return err
		}
	}

	return nil
}
