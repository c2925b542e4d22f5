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

// Package httpheader binds [net/http.Header] to rivaas.dev/headermap.
//
// Lookups are case-insensitive. Values written by the encoder are checked
// against the HTTP field-name and field-value grammar before they are stored,
// so an encoded header can always be sent on the wire.
//
// Example:
//
//	type Upload struct {
//	    ContentLength int64   `header:"Content-Length"`
//	    ContentType   *string `header:"Content-Type"`
//	}
//
//	up, err := httpheader.Decode[Upload](r.Header)
//
//	err = httpheader.EncodeTo(w.Header(), up)
package httpheader

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"golang.org/x/net/http/httpguts"

	"rivaas.dev/headermap"
)

// Insert errors.
var (
	ErrInvalidHeaderName  = errors.New("invalid header field name")
	ErrInvalidHeaderValue = errors.New("invalid header field value")
)

// Source implements [headermap.Source] for http.Header.
type Source struct {
	h http.Header
}

// NewSource creates a [Source] reading from h.
func NewSource(h http.Header) *Source {
	return &Source{h: h}
}

// values returns the values stored under key. Keys that were stored
// without canonicalization are found by a case-insensitive scan. The
// canonical key comes first and the other spellings follow in sorted order,
// with their values concatenated.
func (s *Source) values(key string) ([]string, bool) {
	canonical := http.CanonicalHeaderKey(key)

	var others []string
	for k := range s.h {
		if k != canonical && strings.EqualFold(k, key) {
			others = append(others, k)
		}
	}

	v, ok := s.h[canonical]
	if len(others) == 0 {
		return v, ok
	}
	slices.Sort(others)

	out := slices.Clone(v)
	for _, k := range others {
		out = append(out, s.h[k]...)
	}

	return out, true
}

// Get returns the first value for key.
func (s *Source) Get(key string) string {
	if v, _ := s.values(key); len(v) > 0 {
		return v[0]
	}

	return ""
}

// GetAll returns all values for key.
func (s *Source) GetAll(key string) []string {
	v, _ := s.values(key)
	return v
}

// Has returns whether key is present, even with an empty value.
func (s *Source) Has(key string) bool {
	_, ok := s.values(key)
	return ok
}

// Sink implements [headermap.Sink] for http.Header.
type Sink struct {
	h http.Header
}

// NewSink creates a [Sink] writing to h.
func NewSink(h http.Header) *Sink {
	return &Sink{h: h}
}

// Insert validates key and value and replaces any existing values for key.
func (s *Sink) Insert(key, value string) error {
	if !httpguts.ValidHeaderFieldName(key) {
		return fmt.Errorf("%w: %q", ErrInvalidHeaderName, key)
	}
	if !httpguts.ValidHeaderFieldValue(value) {
		return fmt.Errorf("%w: %q", ErrInvalidHeaderValue, value)
	}
	s.h.Set(key, value)

	return nil
}

// Decode decodes h into a new value of type T.
func Decode[T any](h http.Header, opts ...headermap.Option) (T, error) {
	return headermap.DecodeInto[T](NewSource(h), opts...)
}

// DecodeTo decodes h into the struct pointed to by out.
func DecodeTo(h http.Header, out any, opts ...headermap.Option) error {
	return headermap.Decode(NewSource(h), out, opts...)
}

// DecodeRequest decodes the headers of r into a new value of type T.
//
// Example:
//
//	func handler(w http.ResponseWriter, r *http.Request) {
//	    up, err := httpheader.DecodeRequest[Upload](r)
//	    if err != nil {
//	        http.Error(w, err.Error(), http.StatusBadRequest)
//	        return
//	    }
//	}
func DecodeRequest[T any](r *http.Request, opts ...headermap.Option) (T, error) {
	return Decode[T](r.Header, opts...)
}

// Encode encodes v into a new http.Header. It returns nil on error.
func Encode(v any, opts ...headermap.Option) (http.Header, error) {
	h := make(http.Header)
	if err := headermap.Encode(NewSink(h), v, opts...); err != nil {
		return nil, err
	}

	return h, nil
}

// EncodeTo encodes v into h. The fields written before a failure stay in
// h, so callers should discard h when an error is returned.
func EncodeTo(h http.Header, v any, opts ...headermap.Option) error {
	return headermap.Encode(NewSink(h), v, opts...)
}

// WriteHeaders encodes v and copies the result into w's header map.
// Nothing is written to w when encoding fails.
func WriteHeaders(w http.ResponseWriter, v any, opts ...headermap.Option) error {
	h, err := Encode(v, opts...)
	if err != nil {
		return err
	}

	dst := w.Header()
	for k, values := range h {
		dst[k] = values
	}

	return nil
}
