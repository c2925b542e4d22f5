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
	"context"
	"log/slog"
)

// LogEvents returns [Events] that log every finished call to logger.
// Successful calls are logged at level; failed calls at slog.LevelWarn or
// level, whichever is higher. Per-field events are logged at
// slog.LevelDebug.
//
// Example:
//
//	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
//	codec := headermap.MustNew(headermap.WithEvents(headermap.LogEvents(logger, slog.LevelInfo)))
func LogEvents(logger *slog.Logger, level slog.Level) Events {
	if logger == nil {
		logger = slog.Default()
	}

	failLevel := max(level, slog.LevelWarn)

	return Events{
		FieldDecoded: func(name string, present bool) {
			logger.LogAttrs(context.Background(), slog.LevelDebug, "header field decoded",
				slog.String("field", name),
				slog.Bool("present", present),
			)
		},
		FieldEncoded: func(name string, written bool) {
			logger.LogAttrs(context.Background(), slog.LevelDebug, "header field encoded",
				slog.String("field", name),
				slog.Bool("written", written),
			)
		},
		Done: func(s Stats) {
			attrs := []slog.Attr{
				slog.String("op", s.Op.String()),
				slog.Int("fields", s.FieldsProcessed),
				slog.Int("omitted", s.FieldsOmitted),
				slog.Duration("duration", s.Duration),
			}
			if s.Err != nil {
				attrs = append(attrs,
					slog.String("code", s.Code()),
					slog.String("error", s.Err.Error()),
				)
				logger.LogAttrs(context.Background(), failLevel, "header marshaling failed", attrs...)

				return
			}
			logger.LogAttrs(context.Background(), level, "header marshaling done", attrs...)
		},
	}
}

// JoinEvents returns [Events] that call each of events in order.
//
// Example:
//
//	events := headermap.JoinEvents(headermap.LogEvents(logger, slog.LevelInfo), collector.Events())
func JoinEvents(events ...Events) Events {
	var joined Events
	for _, ev := range events {
		joined.FieldDecoded = chainField(joined.FieldDecoded, ev.FieldDecoded)
		joined.FieldEncoded = chainField(joined.FieldEncoded, ev.FieldEncoded)
		joined.Done = chainDone(joined.Done, ev.Done)
	}

	return joined
}

func chainField(a, b func(string, bool)) func(string, bool) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}

	return func(name string, ok bool) {
		a(name, ok)
		b(name, ok)
	}
}

func chainDone(a, b func(Stats)) func(Stats) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}

	return func(s Stats) {
		a(s)
		b(s)
	}
}
