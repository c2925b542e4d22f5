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

package headermap

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLogLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()

	var lines []map[string]any
	for line := range strings.Lines(buf.String()) {
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		lines = append(lines, m)
	}

	return lines
}

func TestLogEvents_Success(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	_, err := DecodeInto[optionalContentType](TestSource(t), WithEvents(LogEvents(logger, slog.LevelInfo)))
	require.NoError(t, err)

	lines := decodeLogLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "INFO", lines[0]["level"])
	assert.Equal(t, "header marshaling done", lines[0]["msg"])
	assert.Equal(t, "decode", lines[0]["op"])
	assert.InDelta(t, 1, lines[0]["fields"], 0)
	assert.InDelta(t, 1, lines[0]["omitted"], 0)
}

func TestLogEvents_Failure(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	_, err := DecodeInto[uploadHeaders](TestSource(t, "content_length", "100"),
		WithEvents(LogEvents(logger, slog.LevelDebug)))
	require.Error(t, err)

	lines := decodeLogLines(t, &buf)
	require.Len(t, lines, 2)

	assert.Equal(t, "DEBUG", lines[0]["level"])
	assert.Equal(t, "header field decoded", lines[0]["msg"])
	assert.Equal(t, "content_length", lines[0]["field"])
	assert.Equal(t, true, lines[0]["present"])

	assert.Equal(t, "WARN", lines[1]["level"])
	assert.Equal(t, "header marshaling failed", lines[1]["msg"])
	assert.Equal(t, CodeMissingField, lines[1]["code"])
	assert.Contains(t, lines[1]["error"], "content_type")
}

func TestLogEvents_Encode(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	_, err := Marshal(optionalContentType{}, WithEvents(LogEvents(logger, slog.LevelInfo)))
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `msg="header field encoded" field=content_type written=false`)
	assert.Contains(t, out, `msg="header marshaling done" op=encode`)
}

func TestLogEvents_NilLogger(t *testing.T) {
	t.Parallel()

	events := LogEvents(nil, slog.LevelDebug)
	assert.NotNil(t, events.Done)
	assert.NotNil(t, events.FieldDecoded)
	assert.NotNil(t, events.FieldEncoded)
}

func TestJoinEvents(t *testing.T) {
	t.Parallel()

	var calls []string
	first := Events{
		FieldDecoded: func(name string, _ bool) { calls = append(calls, "first:"+name) },
		Done:         func(s Stats) { calls = append(calls, "first:done:"+s.Op.String()) },
	}
	second := Events{
		FieldDecoded: func(name string, _ bool) { calls = append(calls, "second:"+name) },
		FieldEncoded: func(name string, _ bool) { calls = append(calls, "second:enc:"+name) },
	}

	joined := JoinEvents(first, Events{}, second)
	_, err := DecodeInto[uploadHeaders](TestSource(t, "content_length", "1", "content_type", "x"), WithEvents(joined))
	require.NoError(t, err)
	assert.Equal(t, []string{
		"first:content_length", "second:content_length",
		"first:content_type", "second:content_type",
		"first:done:decode",
	}, calls)

	assert.Nil(t, JoinEvents().Done)
	assert.NotNil(t, JoinEvents(second).FieldEncoded)
}
