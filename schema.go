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
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// ErrInvalidSchema is returned when a schema declares an empty or
// duplicate field name.
var ErrInvalidSchema = errors.New("invalid schema")

// Schema is the ordered, immutable list of field names of a record.
//
// A Schema is safe for concurrent use. Schemas derived from struct types
// also know each field's [Kind] and whether it is optional.
type Schema struct {
	fields []field
	byName map[string]int
}

// field stores cached information about one schema entry.
type field struct {
	name     string       // Header name
	kind     Kind         // Scalar kind, KindInvalid when unknown or unsupported
	optional bool         // Whether the field is a pointer (optional) type
	shape    string       // Description of an unsupported type
	index    []int        // Struct field index path (reflection schemas only)
	goName   string       // Struct field name (reflection schemas only)
	typ      reflect.Type // Struct field type (reflection schemas only)
}

// Field describes one entry of a [Schema].
type Field struct {
	Name     string
	Kind     Kind // KindInvalid when the schema was built from names only
	Optional bool
}

// NewSchema creates a [Schema] from field names in declared order.
// Names must be non-empty and unique.
//
// Example:
//
//	schema, err := headermap.NewSchema("content_length", "content_type")
func NewSchema(names ...string) (*Schema, error) {
	fields := make([]field, len(names))
	for i, name := range names {
		fields[i] = field{name: name}
	}

	return newSchema(fields)
}

// MustSchema is like [NewSchema] but panics on an invalid schema.
// Use it for package-level schema variables.
func MustSchema(names ...string) *Schema {
	s, err := NewSchema(names...)
	if err != nil {
		panic(fmt.Sprintf("headermap.MustSchema: %v", err))
	}

	return s
}

// NewTypedSchema creates a [Schema] whose fields carry a kind and
// optionality. It is used by declarative layouts and other schema builders.
func NewTypedSchema(fields ...Field) (*Schema, error) {
	fs := make([]field, len(fields))
	for i, f := range fields {
		if !f.Kind.IsValid() {
			return nil, fmt.Errorf("%w: field %q has invalid kind %s", ErrInvalidSchema, f.Name, f.Kind)
		}
		fs[i] = field{name: f.Name, kind: f.Kind, optional: f.Optional}
	}

	return newSchema(fs)
}

func newSchema(fields []field) (*Schema, error) {
	byName := make(map[string]int, len(fields))
	for i, f := range fields {
		if f.name == "" {
			return nil, fmt.Errorf("%w: field %d has an empty name", ErrInvalidSchema, i)
		}
		if prev, dup := byName[f.name]; dup {
			return nil, fmt.Errorf("%w: field %q declared at positions %d and %d",
				ErrInvalidSchema, f.name, prev, i)
		}
		byName[f.name] = i
	}

	return &Schema{fields: fields, byName: byName}, nil
}

// Len returns the number of fields.
func (s *Schema) Len() int {
	return len(s.fields)
}

// Name returns the name of field i.
func (s *Schema) Name(i int) string {
	return s.fields[i].name
}

// Names returns the field names in declared order.
func (s *Schema) Names() []string {
	names := make([]string, len(s.fields))
	for i, f := range s.fields {
		names[i] = f.name
	}

	return names
}

// Field returns the description of field i.
func (s *Schema) Field(i int) Field {
	f := s.fields[i]
	return Field{Name: f.name, Kind: f.kind, Optional: f.optional}
}

// Fields returns the descriptions of all fields in declared order.
func (s *Schema) Fields() []Field {
	out := make([]Field, len(s.fields))
	for i := range s.fields {
		out[i] = s.Field(i)
	}

	return out
}

// Index returns the position of name, matched exactly.
func (s *Schema) Index(name string) (int, bool) {
	i, ok := s.byName[name]
	return i, ok
}

// String returns the names joined by commas.
func (s *Schema) String() string {
	return "[" + strings.Join(s.Names(), ",") + "]"
}

// SchemaOf returns the schema derived from the struct type of v.
// v may be a struct value, a pointer to a struct or a reflect.Type.
//
// Field names come from the tag selected with [WithTagName] ("header" by
// default). A tag of "-" skips the field; exported fields without a tag
// use the Go field name. Embedded structs without a tag are flattened.
//
// Example:
//
//	schema, err := headermap.SchemaOf(Upload{})
//	fmt.Println(schema.Names()) // [content_length content_type]
func SchemaOf(v any, opts ...Option) (*Schema, error) {
	cfg, err := resolveOptions(opts)
	if err != nil {
		return nil, err
	}

	var t reflect.Type
	if rt, ok := v.(reflect.Type); ok {
		t = rt
	} else {
		t = reflect.TypeOf(v)
	}
	if t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil, callError(OpDecode, "a struct", ErrUnsupported)
	}

	return getStructSchema(t, cfg.tagName)
}

// parseStructSchema derives a schema from a struct type.
// The result is cached by getStructSchema.
func parseStructSchema(t reflect.Type, tagName string) (*Schema, error) {
	fields := parseStructFields(t, tagName, nil, make(map[reflect.Type]bool))
	s, err := newSchema(fields)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", t, err)
	}

	return s, nil
}

// parseStructFields walks exported fields in declaration order.
// The indexPrefix parameter tracks the index path into embedded structs.
func parseStructFields(t reflect.Type, tagName string, indexPrefix []int, visiting map[reflect.Type]bool) []field {
	visiting[t] = true
	defer delete(visiting, t)

	fields := make([]field, 0, t.NumField())
	for i := range t.NumField() {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}

		tag, hasTag := sf.Tag.Lookup(tagName)
		name, _, _ := strings.Cut(tag, ",")
		name = strings.TrimSpace(name)
		if name == "-" {
			continue
		}

		index := make([]int, len(indexPrefix)+1)
		copy(index, indexPrefix)
		index[len(indexPrefix)] = i

		// Embedded structs without a tag contribute their own fields.
		if sf.Anonymous && !hasTag && sf.Type.Kind() == reflect.Struct && !visiting[sf.Type] {
			if kind, _ := kindOf(sf.Type); kind == KindInvalid {
				fields = append(fields, parseStructFields(sf.Type, tagName, index, visiting)...)
				continue
			}
		}

		if name == "" {
			name = sf.Name
		}

		kind, optional, shape := fieldKind(sf.Type)
		fields = append(fields, field{
			name:     name,
			kind:     kind,
			optional: optional,
			shape:    shape,
			index:    index,
			goName:   sf.Name,
			typ:      sf.Type,
		})
	}

	return fields
}
