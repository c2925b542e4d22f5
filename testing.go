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
	"testing"
)

// TestCodec creates a Codec configured for testing.
//
// Example:
//
//	func TestMyFeature(t *testing.T) {
//	    codec := headermap.TestCodec(t, headermap.WithLenientBools())
//	    // use codec in test
//	}
func TestCodec(t *testing.T, opts ...Option) *Codec {
	t.Helper()

	c, err := New(opts...)
	if err != nil {
		t.Fatalf("TestCodec: failed to create codec: %v", err)
	}

	return c
}

// TestSource creates a [Headers] source from name/value pairs for testing.
// Repeated names are kept as separate occurrences.
//
// Example:
//
//	src := headermap.TestSource(t, "content_length", "100", "content_type", "ABC")
func TestSource(t *testing.T, pairs ...string) *Headers {
	t.Helper()

	if len(pairs)%2 != 0 {
		t.Fatalf("TestSource: pairs must be name-value pairs, got odd number of arguments")
	}

	return NewHeaders(pairs...)
}

// AssertError checks that err is an [*Error] with the expected code and
// field name. Returns the error if found, fails the test otherwise.
//
// Example:
//
//	err := headermap.Decode(src, &up)
//	herr := headermap.AssertError(t, err, headermap.CodeMissingField, "content_length")
//	assert.Equal(t, headermap.OpDecode, herr.Op)
func AssertError(t *testing.T, err error, code, field string) *Error {
	t.Helper()

	if err == nil {
		t.Fatalf("AssertError: expected %s error for field %q, got nil", code, field)
	}

	var herr *Error
	if !errors.As(err, &herr) {
		t.Fatalf("AssertError: expected *headermap.Error, got %T: %v", err, err)
	}
	if herr.Code() != code {
		t.Fatalf("AssertError: expected code %q, got %q (%v)", code, herr.Code(), herr)
	}
	if herr.Field != field {
		t.Fatalf("AssertError: expected field %q, got %q", field, herr.Field)
	}

	return herr
}

// AssertNoError asserts that err is nil.
// Provides a cleaner failure message than require.NoError for marshaling contexts.
func AssertNoError(t *testing.T, err error) {
	t.Helper()

	if err != nil {
		var herr *Error
		if errors.As(err, &herr) {
			t.Fatalf("unexpected %s error (field: %q, code: %s): %v", herr.Op, herr.Field, herr.Code(), err)
		}
		t.Fatalf("unexpected error: %v", err)
	}
}
