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
	"maps"
	"reflect"
	"sync"
	"sync/atomic"
)

var (
	// RCU pattern: atomic pointer to immutable map
	schemaCachePtr atomic.Pointer[map[cacheKey]*cachedSchema]

	// Write-side lock (only for cache updates)
	schemaCacheMu sync.Mutex
)

func init() {
	m := make(map[cacheKey]*cachedSchema)
	schemaCachePtr.Store(&m)
}

// cacheKey is the key for the schema cache.
type cacheKey struct {
	typ reflect.Type
	tag string
}

// cachedSchema holds a parsed schema or the error that prevented it.
type cachedSchema struct {
	schema *Schema
	err    error
}

// getStructSchema retrieves or parses the schema of a struct type.
// It uses a read-copy-update pattern for concurrent access: readers never
// lock, and concurrent misses for the same key parse only once.
func getStructSchema(typ reflect.Type, tag string) (*Schema, error) {
	if typ.Kind() != reflect.Struct {
		panic(fmt.Sprintf("headermap: getStructSchema expects struct, got %s", typ.Kind()))
	}

	key := cacheKey{typ: typ, tag: tag}

	// Lock-free read from current map
	m := schemaCachePtr.Load()
	if cs, ok := (*m)[key]; ok {
		return cs.schema, cs.err
	}

	schemaCacheMu.Lock()
	defer schemaCacheMu.Unlock()

	// Double-check: another goroutine might have populated it
	m = schemaCachePtr.Load()
	if cs, ok := (*m)[key]; ok {
		return cs.schema, cs.err
	}

	s, err := parseStructSchema(typ, tag)
	cs := &cachedSchema{schema: s, err: err}

	// Copy-on-write: create new map with added entry
	newMap := make(map[cacheKey]*cachedSchema, len(*m)+1)
	maps.Copy(newMap, *m)
	newMap[key] = cs
	schemaCachePtr.Store(&newMap)

	return cs.schema, cs.err
}

// WarmupCache pre-parses struct types to populate the schema cache.
// Call it during application startup with the record types you marshal.
// Invalid types are silently skipped; use [MustWarmupCache] to panic instead.
//
// Example:
//
//	headermap.WarmupCache(UploadHeaders{}, DownloadHeaders{})
func WarmupCache(types ...any) {
	for _, t := range types {
		typ := reflect.TypeOf(t)
		if typ == nil {
			continue
		}
		if typ.Kind() == reflect.Pointer {
			typ = typ.Elem()
		}
		if typ.Kind() != reflect.Struct {
			continue
		}

		//nolint:errcheck // invalid schemas are cached and reported on use
		getStructSchema(typ, DefaultTagName)
	}
}

// MustWarmupCache is like [WarmupCache] but panics on non-struct types and
// on structs whose schema is invalid (for example duplicate header names).
func MustWarmupCache(types ...any) {
	for _, t := range types {
		typ := reflect.TypeOf(t)
		if typ == nil {
			panic("headermap: MustWarmupCache called with nil type")
		}
		if typ.Kind() == reflect.Pointer {
			typ = typ.Elem()
		}
		if typ.Kind() != reflect.Struct {
			panic(fmt.Sprintf("headermap: MustWarmupCache expects struct, got %s", typ.Kind()))
		}

		if _, err := getStructSchema(typ, DefaultTagName); err != nil {
			panic(fmt.Sprintf("headermap: MustWarmupCache: %v", err))
		}
	}
}
