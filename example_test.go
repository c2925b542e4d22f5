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

package headermap_test

import (
	"errors"
	"fmt"

	"rivaas.dev/headermap"
)

type Upload struct {
	ContentLength int64   `header:"content_length"`
	ContentType   *string `header:"content_type"`
}

// ExampleDecode demonstrates decoding a header collection into a struct.
func ExampleDecode() {
	src := headermap.NewHeaders("content_length", "100", "content_type", "ABC")

	var up Upload
	if err := headermap.Decode(src, &up); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	fmt.Printf("length=%d type=%s\n", up.ContentLength, *up.ContentType)
	// Output: length=100 type=ABC
}

// ExampleDecodeInto demonstrates the generic decode helper with an absent
// optional field.
func ExampleDecodeInto() {
	up, err := headermap.DecodeInto[Upload](headermap.NewHeaders("content_length", "7"))
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	fmt.Println(up.ContentLength, up.ContentType == nil)
	// Output: 7 true
}

// ExampleMarshal demonstrates encoding a struct; absent optionals are omitted.
func ExampleMarshal() {
	h, err := headermap.Marshal(Upload{ContentLength: 100})
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	for _, e := range h.Entries() {
		fmt.Printf("%s: %s\n", e.Name, e.Value)
	}
	// Output: content_length: 100
}

// ExampleError demonstrates inspecting a decode failure.
func ExampleError() {
	type Params struct {
		TestI8 int8 `header:"test_i8"`
	}

	_, err := headermap.DecodeInto[Params](headermap.NewHeaders("test_i8", "999"))

	var herr *headermap.Error
	if errors.As(err, &herr) {
		fmt.Println(herr.Field, herr.Code(), herr.Expected)
	}
	fmt.Println(errors.Is(err, headermap.ErrInvalidValue))
	// Output:
	// test_i8 invalid_value digit only
	// true
}

type contentLength struct {
	Value int64
}

var contentLengthSchema = headermap.MustSchema("content_length")

func (c *contentLength) UnmarshalHeaders(d *headermap.Decoder) error {
	return d.Next(&c.Value)
}

func (c *contentLength) MarshalHeaders(e *headermap.Encoder) error {
	return e.Next(c.Value)
}

// ExampleDecodeRecord demonstrates a hand-written record driven by an
// explicit schema.
func ExampleDecodeRecord() {
	var cl contentLength
	err := headermap.DecodeRecord(headermap.NewHeaders("Content_Length", "42"), contentLengthSchema, &cl)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	h := headermap.NewHeaders()
	if err := headermap.EncodeRecord(h, contentLengthSchema, &cl); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	fmt.Println(cl.Value, h.Get("content_length"))
	// Output: 42 42
}

// ExampleMustNew demonstrates a reusable codec with non-default options.
func ExampleMustNew() {
	type Flags struct {
		Debug bool `header:"x-debug"`
	}

	codec := headermap.MustNew(
		headermap.WithLenientBools(),
		headermap.WithDuplicates(headermap.DuplicateLast),
	)

	flags, err := headermap.DecodeWith[Flags](codec, headermap.NewHeaders("x-debug", "no", "x-debug", "on"))
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	fmt.Println(flags.Debug)
	// Output: true
}

// ExampleSchemaOf demonstrates inspecting the schema of a struct type.
func ExampleSchemaOf() {
	schema, err := headermap.SchemaOf(Upload{})
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	for _, f := range schema.Fields() {
		fmt.Println(f.Name, f.Kind, f.Optional)
	}
	// Output:
	// content_length i64 false
	// content_type string true
}
