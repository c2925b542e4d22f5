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

package schemafile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rivaas.dev/headermap"
)

func layout(t *testing.T, name string) *Layout {
	t.Helper()

	l, err := wantFile().Layout(name)
	require.NoError(t, err)

	return l
}

func TestRecord_Decode(t *testing.T) {
	t.Parallel()

	l := layout(t, "upload")
	rec := l.NewRecord()

	src := headermap.NewHeaders("content_length", "100", "content_type", "ABC")
	require.NoError(t, headermap.DecodeRecord(src, l.Schema(), rec))
	assert.Equal(t, map[string]any{"content_length": int64(100), "content_type": "ABC"}, rec.Values())

	require.NoError(t, headermap.DecodeRecord(headermap.NewHeaders("content_length", "7"), l.Schema(), rec))
	_, ok := rec.Get("content_type")
	assert.False(t, ok)

	n, ok := rec.Get("content_length")
	require.True(t, ok)
	assert.Equal(t, int64(7), n)
}

func TestRecord_DecodeFailureKeepsValues(t *testing.T) {
	t.Parallel()

	l := layout(t, "flags")
	rec := l.NewRecord()
	require.NoError(t, rec.Set("enabled", true))

	err := headermap.DecodeRecord(headermap.NewHeaders("enabled", "false", "grade", "AB"), l.Schema(), rec)
	herr := headermap.AssertError(t, err, headermap.CodeInvalidValue, "grade")
	assert.Equal(t, "a char", herr.Expected)

	v, ok := rec.Get("enabled")
	require.True(t, ok)
	assert.Equal(t, true, v)
}

func TestRecord_Encode(t *testing.T) {
	t.Parallel()

	l := layout(t, "flags")
	rec := l.NewRecord()
	require.NoError(t, rec.Set("grade", headermap.Char('A')))

	h := headermap.NewHeaders()
	err := headermap.EncodeRecord(h, l.Schema(), rec)
	herr := headermap.AssertError(t, err, headermap.CodeMissingField, "enabled")
	assert.Equal(t, headermap.OpEncode, herr.Op)
	assert.Empty(t, h.Entries())

	require.NoError(t, rec.Set("enabled", true))
	h = headermap.NewHeaders()
	require.NoError(t, headermap.EncodeRecord(h, l.Schema(), rec))
	assert.Equal(t, []headermap.Entry{
		{Name: "enabled", Value: "true"},
		{Name: "grade", Value: "A"},
	}, h.Entries())

	up := layout(t, "upload").NewRecord()
	require.NoError(t, up.Set("content_length", int64(5)))
	h = headermap.NewHeaders()
	require.NoError(t, headermap.EncodeRecord(h, up.Layout().Schema(), up))
	assert.Equal(t, []string{"content_length"}, h.Names())
}

func TestRecord_Set(t *testing.T) {
	t.Parallel()

	rec := layout(t, "upload").NewRecord()

	require.ErrorIs(t, rec.Set("missing", int64(1)), ErrUnknownField)
	require.ErrorIs(t, rec.Set("content_length", 1), ErrKindMismatch)
	require.ErrorIs(t, rec.Set("content_type", []byte("x")), ErrKindMismatch)

	require.NoError(t, rec.Set("content_type", "ABC"))
	require.NoError(t, rec.Set("content_type", nil))
	assert.Empty(t, rec.Values())
	assert.Equal(t, "upload", rec.Layout().Name())
}
