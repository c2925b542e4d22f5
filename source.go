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
	"slices"
	"strings"
)

// Source is the read side of a header collection.
//
// Name matching is owned by the implementation; header collections match
// names case-insensitively. Implementers must distinguish between "key
// present with empty value" and "key not present":
//   - Has("x") = true, Get("x") = "" for a header sent as "x: "
//   - Has("x") = false when no "x" header exists
type Source interface {
	// Get returns the first value for the given key, or an empty string if not present.
	Get(key string) string

	// GetAll returns all values for the given key, or nil if not present.
	GetAll(key string) []string

	// Has returns true if the key is present, even if its value is empty.
	Has(key string) bool
}

// Sink is the write side of a header collection.
//
// Insert replaces any existing values for key. It returns an error when the
// key or value violates the collection's character rules; the error is
// passed to the caller unchanged apart from field context.
type Sink interface {
	Insert(key, value string) error
}

// SourceFunc is a function adapter that implements [Source].
//
// Example:
//
//	src := headermap.SourceFunc(func(key string) ([]string, bool) {
//	    v, ok := env[key]
//	    return []string{v}, ok
//	})
type SourceFunc func(key string) (values []string, has bool)

// Get returns the first value for the key.
func (f SourceFunc) Get(key string) string {
	values, has := f(key)
	if has && len(values) > 0 {
		return values[0]
	}

	return ""
}

// GetAll returns all values for the key.
func (f SourceFunc) GetAll(key string) []string {
	values, _ := f(key)
	return values
}

// Has returns whether the key exists.
func (f SourceFunc) Has(key string) bool {
	_, has := f(key)
	return has
}

// SinkFunc is a function adapter that implements [Sink].
type SinkFunc func(key, value string) error

// Insert calls f(key, value).
func (f SinkFunc) Insert(key, value string) error {
	return f(key, value)
}

// Entry is a single name/value pair of a [Headers] collection.
type Entry struct {
	Name  string
	Value string
}

// Headers is an in-memory header collection that keeps insertion order.
//
// Names are matched with ASCII case folding and stored as given. Headers
// implements both [Source] and [Sink] and is what [Marshal] returns.
// The zero value is an empty collection ready to use.
type Headers struct {
	entries []Entry
}

// NewHeaders creates a [Headers] from name/value pairs.
// Repeated names are kept as separate occurrences, in order.
// It panics if pairs has an odd length.
//
// Example:
//
//	h := headermap.NewHeaders("content_length", "100", "content_type", "ABC")
func NewHeaders(pairs ...string) *Headers {
	if len(pairs)%2 != 0 {
		panic("headermap: NewHeaders called with an odd number of arguments")
	}

	h := &Headers{entries: make([]Entry, 0, len(pairs)/2)}
	for i := 0; i < len(pairs); i += 2 {
		h.Add(pairs[i], pairs[i+1])
	}

	return h
}

// Get returns the first value for the key.
func (h *Headers) Get(key string) string {
	for _, e := range h.entries {
		if strings.EqualFold(e.Name, key) {
			return e.Value
		}
	}

	return ""
}

// GetAll returns all values for the key in insertion order.
func (h *Headers) GetAll(key string) []string {
	var values []string
	for _, e := range h.entries {
		if strings.EqualFold(e.Name, key) {
			values = append(values, e.Value)
		}
	}

	return values
}

// Has returns whether the key exists.
func (h *Headers) Has(key string) bool {
	for _, e := range h.entries {
		if strings.EqualFold(e.Name, key) {
			return true
		}
	}

	return false
}

// Insert removes every existing occurrence of key and appends key=value.
// It never fails.
func (h *Headers) Insert(key, value string) error {
	h.Del(key)
	h.entries = append(h.entries, Entry{Name: key, Value: value})

	return nil
}

// Add appends key=value, keeping existing occurrences.
func (h *Headers) Add(key, value string) {
	h.entries = append(h.entries, Entry{Name: key, Value: value})
}

// Del removes every occurrence of key.
func (h *Headers) Del(key string) {
	h.entries = slices.DeleteFunc(h.entries, func(e Entry) bool {
		return strings.EqualFold(e.Name, key)
	})
}

// Len returns the number of entries, counting repeated names.
func (h *Headers) Len() int {
	return len(h.entries)
}

// Entries returns a copy of the entries in insertion order.
func (h *Headers) Entries() []Entry {
	return slices.Clone(h.entries)
}

// Names returns the entry names in insertion order.
func (h *Headers) Names() []string {
	names := make([]string, len(h.entries))
	for i, e := range h.entries {
		names[i] = e.Name
	}

	return names
}
