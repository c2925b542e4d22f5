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
	"fmt"
	"time"
)

// DefaultTagName is the struct tag read by the reflection drivers.
const DefaultTagName = "header"

// ErrInvalidOption is returned when options are inconsistent.
var ErrInvalidOption = errors.New("invalid option")

// DuplicatePolicy selects the value used when a header name occurs more
// than once in a [Source].
type DuplicatePolicy int

const (
	// DuplicateFirst uses the first occurrence (Source.Get).
	// This is the default policy.
	DuplicateFirst DuplicatePolicy = iota

	// DuplicateLast uses the last occurrence reported by Source.GetAll.
	DuplicateLast

	// DuplicateReject fails with [ErrInvalidValue] when a field's header
	// occurs more than once.
	DuplicateReject
)

// String returns the policy name.
func (p DuplicatePolicy) String() string {
	switch p {
	case DuplicateFirst:
		return "first"
	case DuplicateLast:
		return "last"
	case DuplicateReject:
		return "reject"
	default:
		return fmt.Sprintf("DuplicatePolicy(%d)", int(p))
	}
}

// Validator validates a record after it has been decoded.
type Validator interface {
	Validate(v any) error
}

// ValidatorFunc adapts a function to [Validator].
//
// Example:
//
//	v := validator.New()
//	headermap.WithValidator(headermap.ValidatorFunc(v.Struct))
type ValidatorFunc func(v any) error

// Validate calls f(v).
func (f ValidatorFunc) Validate(v any) error {
	return f(v)
}

// Events provides hooks for observability without coupling.
type Events struct {
	// FieldDecoded is called after a field has been decoded.
	// present is false for an optional field whose key was absent.
	FieldDecoded func(name string, present bool)

	// FieldEncoded is called after a field has been handled by the encoder.
	// written is false for an absent optional field that was omitted.
	FieldEncoded func(name string, written bool)

	// Done is called at the end of every decode or encode call, even on error.
	Done func(stats Stats)
}

// Stats describes one decode or encode call.
type Stats struct {
	Op              Op            // Direction of the call
	FieldsProcessed int           // Fields visited, including the failing one
	FieldsOmitted   int           // Optional fields that were absent
	Err             error         // Error returned to the caller, nil on success
	Duration        time.Duration // Wall time of the call
}

// Code returns the taxonomy code of the call's error, or "" on success.
func (s Stats) Code() string {
	if s.Err == nil {
		return ""
	}
	if code := ErrorCode(s.Err); code != "" {
		return code
	}

	return CodeCustom
}

// Option configures decode and encode behavior.
type Option func(*config)

// config holds the resolved options of a call or a [Codec].
type config struct {
	tagName      string
	duplicates   DuplicatePolicy
	lenientBools bool
	validator    Validator
	events       Events
}

// defaultConfig returns the default configuration.
func defaultConfig() *config {
	return &config{
		tagName:    DefaultTagName,
		duplicates: DuplicateFirst,
	}
}

// clone returns a copy that per-call options can modify.
func (c *config) clone() *config {
	cp := *c
	return &cp
}

// validate checks the configuration for consistency.
func (c *config) validate() error {
	if c.tagName == "" {
		return fmt.Errorf("%w: tag name must not be empty", ErrInvalidOption)
	}
	if c.duplicates < DuplicateFirst || c.duplicates > DuplicateReject {
		return fmt.Errorf("%w: unknown duplicate policy %s", ErrInvalidOption, c.duplicates)
	}

	return nil
}

// resolveOptions applies opts on top of the defaults and validates them.
func resolveOptions(opts []Option) (*config, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// WithTagName sets the struct tag that names fields. The default is "header".
//
// Example:
//
//	type Meta struct {
//	    TraceID string `md:"x-trace-id"`
//	}
//	m, err := headermap.DecodeInto[Meta](src, headermap.WithTagName("md"))
func WithTagName(name string) Option {
	return func(c *config) {
		c.tagName = name
	}
}

// WithDuplicates sets how repeated header names are resolved.
// The default is [DuplicateFirst].
func WithDuplicates(policy DuplicatePolicy) Option {
	return func(c *config) {
		c.duplicates = policy
	}
}

// WithLenientBools accepts true/false, yes/no, 1/0 and on/off, compared
// case-insensitively, when decoding bool fields. By default only the exact
// strings "true" and "false" are accepted, which are also the only forms
// the encoder writes.
func WithLenientBools() Option {
	return func(c *config) {
		c.lenientBools = true
	}
}

// WithValidator runs v on every successfully decoded record. A validation
// failure is returned as a custom [*Error].
func WithValidator(v Validator) Option {
	return func(c *config) {
		c.validator = v
	}
}

// WithEvents sets observability hooks.
//
// Example:
//
//	headermap.WithEvents(headermap.Events{
//	    Done: func(s headermap.Stats) {
//	        log.Printf("%s: %d fields in %s", s.Op, s.FieldsProcessed, s.Duration)
//	    },
//	})
func WithEvents(events Events) Option {
	return func(c *config) {
		c.events = events
	}
}

// tracker accumulates statistics for one call. It is owned by the call's
// Decoder or Encoder and never shared.
type tracker struct {
	events Events
	stats  Stats
	start  time.Time
}

func newTracker(op Op, events Events) tracker {
	t := tracker{events: events, stats: Stats{Op: op}}
	if events.Done != nil {
		t.start = time.Now()
	}

	return t
}

// field records a visited field.
func (t *tracker) field(name string, present bool) {
	t.stats.FieldsProcessed++
	if !present {
		t.stats.FieldsOmitted++
	}

	switch t.stats.Op {
	case OpDecode:
		if t.events.FieldDecoded != nil {
			t.events.FieldDecoded(name, present)
		}
	case OpEncode:
		if t.events.FieldEncoded != nil {
			t.events.FieldEncoded(name, present)
		}
	}
}

// fail records a visited field that failed.
func (t *tracker) fail() {
	t.stats.FieldsProcessed++
}

// finish emits the Done event and returns err unchanged.
func (t *tracker) finish(err error) error {
	if t.events.Done != nil {
		t.stats.Err = err
		t.stats.Duration = time.Since(t.start)
		t.events.Done(t.stats)
	}

	return err
}
