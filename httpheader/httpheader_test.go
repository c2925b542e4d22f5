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

//go:build !integration

package httpheader

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rivaas.dev/headermap"
)

type upload struct {
	ContentLength int64   `header:"content-length"`
	ContentType   *string `header:"content-type"`
}

func TestSource(t *testing.T) {
	t.Parallel()

	h := http.Header{}
	h.Add("X-Tag", "a")
	h.Add("X-Tag", "b")
	h.Set("X-Empty", "")
	h["x-raw"] = []string{"raw"} // not canonicalized

	src := NewSource(h)
	assert.Equal(t, "a", src.Get("x-tag"))
	assert.Equal(t, []string{"a", "b"}, src.GetAll("X-TAG"))
	assert.True(t, src.Has("x-empty"))
	assert.Empty(t, src.Get("x-empty"))
	assert.Equal(t, "raw", src.Get("X-Raw"))
	assert.False(t, src.Has("missing"))
	assert.Nil(t, src.GetAll("missing"))
}

func TestSource_MixedSpellings(t *testing.T) {
	t.Parallel()

	type single struct {
		V string `header:"x-v"`
	}

	h := http.Header{
		"x-v": {"lower"},
		"X-v": {"mixed"},
	}

	for range 50 {
		src := NewSource(h)
		assert.Equal(t, []string{"mixed", "lower"}, src.GetAll("x-v"))
		assert.Equal(t, "mixed", src.Get("X-V"))
		assert.True(t, src.Has("x-V"))

		first, err := Decode[single](h)
		require.NoError(t, err)
		assert.Equal(t, "mixed", first.V)

		last, err := Decode[single](h, headermap.WithDuplicates(headermap.DuplicateLast))
		require.NoError(t, err)
		assert.Equal(t, "lower", last.V)

		_, err = Decode[single](h, headermap.WithDuplicates(headermap.DuplicateReject))
		herr := headermap.AssertError(t, err, headermap.CodeInvalidValue, "x-v")
		assert.Equal(t, "mixed, lower", herr.Value)
	}

	h["X-V"] = []string{"canonical"}
	src := NewSource(h)
	assert.Equal(t, []string{"canonical", "mixed", "lower"}, src.GetAll("x-v"))
	assert.Equal(t, "canonical", src.Get("x-v"))
}

func TestDecode(t *testing.T) {
	t.Parallel()

	h := http.Header{}
	h.Set("Content-Length", "100")
	h.Set("Content-Type", "ABC")

	got, err := Decode[upload](h)
	require.NoError(t, err)
	assert.Equal(t, int64(100), got.ContentLength)
	require.NotNil(t, got.ContentType)
	assert.Equal(t, "ABC", *got.ContentType)

	var into upload
	require.NoError(t, DecodeTo(http.Header{"Content-Length": {"5"}}, &into))
	assert.Equal(t, int64(5), into.ContentLength)
	assert.Nil(t, into.ContentType)

	_, err = Decode[upload](http.Header{})
	herr := headermap.AssertError(t, err, headermap.CodeMissingField, "content-length")
	assert.Equal(t, http.StatusBadRequest, herr.HTTPStatus())
}

func TestDecodeRequest(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodPost, "/upload", nil)
	r.Header.Set("Content-Length", "42")

	got, err := DecodeRequest[upload](r)
	require.NoError(t, err)
	assert.Equal(t, int64(42), got.ContentLength)
}

func TestEncode(t *testing.T) {
	t.Parallel()

	ct := "text/plain"
	h, err := Encode(upload{ContentLength: 100, ContentType: &ct})
	require.NoError(t, err)
	assert.Equal(t, http.Header{
		"Content-Length": {"100"},
		"Content-Type":   {"text/plain"},
	}, h)

	h, err = Encode(upload{ContentLength: 1})
	require.NoError(t, err)
	assert.Equal(t, http.Header{"Content-Length": {"1"}}, h)
}

func TestEncode_InvalidInsert(t *testing.T) {
	t.Parallel()

	t.Run("value", func(t *testing.T) {
		t.Parallel()

		type record struct {
			Name string `header:"x-name"`
		}

		h, err := Encode(record{Name: "line\r\nbreak"})
		require.ErrorIs(t, err, ErrInvalidHeaderValue)
		herr := headermap.AssertError(t, err, headermap.CodeCustom, "x-name")
		assert.Equal(t, "line\r\nbreak", herr.Value)
		assert.Nil(t, h)
	})

	t.Run("name", func(t *testing.T) {
		t.Parallel()

		type record struct {
			A string `header:"x-a"`
			B string `header:"bad name"`
		}

		h, err := Encode(record{A: "1", B: "2"})
		require.ErrorIs(t, err, ErrInvalidHeaderName)
		headermap.AssertError(t, err, headermap.CodeCustom, "bad name")
		assert.Nil(t, h)
	})
}

func TestEncodeTo_ReplacesValues(t *testing.T) {
	t.Parallel()

	h := http.Header{"Content-Length": {"1", "2"}}
	require.NoError(t, EncodeTo(h, upload{ContentLength: 3}))
	assert.Equal(t, []string{"3"}, h.Values("Content-Length"))
}

func TestWriteHeaders(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	require.NoError(t, WriteHeaders(rec, upload{ContentLength: 9}))
	assert.Equal(t, "9", rec.Header().Get("Content-Length"))

	type bad struct {
		A string `header:"x-a"`
		B string `header:"x-b"`
	}
	rec = httptest.NewRecorder()
	require.Error(t, WriteHeaders(rec, bad{A: "ok", B: "\x00"}))
	assert.Empty(t, rec.Header().Get("X-A"))
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	type record struct {
		Retries uint8          `header:"x-retries"`
		Ratio   float32        `header:"x-ratio"`
		Sampled bool           `header:"x-sampled"`
		Grade   headermap.Char `header:"x-grade"`
		Trace   []byte         `header:"x-trace"`
	}

	in := record{Retries: 3, Ratio: 0.5, Sampled: true, Grade: 'A', Trace: []byte("abc")}
	h, err := Encode(in)
	require.NoError(t, err)

	out, err := Decode[record](h)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}
