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

// Package schemafile loads header layouts declared in YAML, TOML, JSON or
// MessagePack files and marshals dynamic records against them.
//
// A layout file lists named layouts, each an ordered list of fields:
//
//	layouts:
//	  - name: upload
//	    fields:
//	      - name: content_length
//	        kind: i64
//	      - name: content_type
//	        kind: string
//	        optional: true
//
// Kinds accept the names understood by [headermap.ParseKind].
//
// Example:
//
//	f, err := schemafile.Load("layouts.yaml")
//	layout, err := f.Layout("upload")
//	rec := layout.NewRecord()
//	err = headermap.DecodeRecord(src, layout.Schema(), rec)
//	n, _ := rec.Get("content_length")
package schemafile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"

	"rivaas.dev/headermap"
)

// Static errors for layout loading and record access.
var (
	ErrUnknownFormat = errors.New("schemafile: unknown format")
	ErrUnknownLayout = errors.New("schemafile: unknown layout")
	ErrUnknownField  = errors.New("schemafile: unknown field")
	ErrKindMismatch  = errors.New("schemafile: value does not match field kind")
)

// Format identifies the encoding of a layout file.
type Format int

// Supported layout file formats.
const (
	FormatYAML Format = iota + 1
	FormatTOML
	FormatJSON
	FormatMsgpack
)

// String returns the conventional file extension of the format, without
// the dot.
func (f Format) String() string {
	switch f {
	case FormatYAML:
		return "yaml"
	case FormatTOML:
		return "toml"
	case FormatJSON:
		return "json"
	case FormatMsgpack:
		return "msgpack"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// FormatFromPath infers the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	case ".json":
		return FormatJSON, nil
	case ".msgpack", ".mpk":
		return FormatMsgpack, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, filepath.Ext(path))
	}
}

// FieldSpec declares one field of a layout.
type FieldSpec struct {
	Name     string `yaml:"name" toml:"name" json:"name" msgpack:"name"`
	Kind     string `yaml:"kind" toml:"kind" json:"kind" msgpack:"kind"`
	Optional bool   `yaml:"optional,omitempty" toml:"optional,omitempty" json:"optional,omitempty" msgpack:"optional,omitempty"`
}

// LayoutSpec declares a named, ordered list of fields.
type LayoutSpec struct {
	Name   string      `yaml:"name" toml:"name" json:"name" msgpack:"name"`
	Fields []FieldSpec `yaml:"fields" toml:"fields" json:"fields" msgpack:"fields"`
}

// File is a parsed layout file.
type File struct {
	Layouts []LayoutSpec `yaml:"layouts" toml:"layouts" json:"layouts" msgpack:"layouts"`
}

// Parse decodes a layout file and checks every layout it declares.
func Parse(data []byte, format Format) (*File, error) {
	var f File
	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &f)
	case FormatTOML:
		_, err = toml.Decode(string(data), &f)
	case FormatJSON:
		err = json.Unmarshal(data, &f)
	case FormatMsgpack:
		err = msgpack.Unmarshal(data, &f)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("schemafile: parse %s: %w", format, err)
	}

	seen := make(map[string]bool, len(f.Layouts))
	for _, spec := range f.Layouts {
		if seen[spec.Name] {
			return nil, fmt.Errorf("%w: layout %q declared twice", headermap.ErrInvalidSchema, spec.Name)
		}
		seen[spec.Name] = true
		if _, err := spec.build(); err != nil {
			return nil, err
		}
	}

	return &f, nil
}

// Load reads and parses the layout file at path. The format is inferred
// from the extension.
func Load(path string) (*File, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("schemafile: %w", err)
	}

	return Parse(data, format)
}

// Encode renders f in the given format.
func (f *File) Encode(format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		return yaml.Marshal(f)
	case FormatTOML:
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(f); err != nil {
			return nil, fmt.Errorf("schemafile: encode toml: %w", err)
		}

		return buf.Bytes(), nil
	case FormatJSON:
		return json.MarshalIndent(f, "", "  ")
	case FormatMsgpack:
		return msgpack.Marshal(f)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
}

// Names returns the layout names in declaration order.
func (f *File) Names() []string {
	names := make([]string, len(f.Layouts))
	for i, spec := range f.Layouts {
		names[i] = spec.Name
	}

	return names
}

// Layout builds the layout called name.
func (f *File) Layout(name string) (*Layout, error) {
	for _, spec := range f.Layouts {
		if spec.Name == name {
			return spec.build()
		}
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownLayout, name)
}

func (s LayoutSpec) build() (*Layout, error) {
	fields := make([]headermap.Field, len(s.Fields))
	for i, fs := range s.Fields {
		kind, err := headermap.ParseKind(fs.Kind)
		if err != nil {
			return nil, fmt.Errorf("layout %q field %q: %w", s.Name, fs.Name, err)
		}
		fields[i] = headermap.Field{Name: fs.Name, Kind: kind, Optional: fs.Optional}
	}

	schema, err := headermap.NewTypedSchema(fields...)
	if err != nil {
		return nil, fmt.Errorf("layout %q: %w", s.Name, err)
	}

	return &Layout{name: s.Name, schema: schema}, nil
}
