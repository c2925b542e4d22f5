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

import "fmt"

// Codec decodes and encodes records with a fixed configuration.
//
// Use [New] or [MustNew] to create a configured Codec, or use the
// package-level functions ([Decode], [Encode], ...) for the defaults.
//
// Codec is safe for concurrent use by multiple goroutines.
//
// Generic methods are not supported by Go; use [DecodeWith] for the generic
// form.
//
// Example:
//
//	codec := headermap.MustNew(
//	    headermap.WithDuplicates(headermap.DuplicateReject),
//	    headermap.WithLenientBools(),
//	)
//
//	up, err := headermap.DecodeWith[Upload](codec, src)
//
//	var up Upload
//	err := codec.Decode(src, &up)
type Codec struct {
	cfg *config
}

// New creates a [Codec] with the given options.
// Returns an error if the configuration is invalid.
func New(opts ...Option) (*Codec, error) {
	cfg, err := resolveOptions(opts)
	if err != nil {
		return nil, err
	}

	return &Codec{cfg: cfg}, nil
}

// MustNew creates a [Codec] with the given options.
// Panics if the configuration is invalid.
//
// Use in main() or init() where panic on startup is acceptable.
func MustNew(opts ...Option) *Codec {
	c, err := New(opts...)
	if err != nil {
		panic(fmt.Sprintf("headermap.MustNew: %v", err))
	}

	return c
}

// with returns the codec configuration with per-call options applied.
func (c *Codec) with(opts []Option) (*config, error) {
	if len(opts) == 0 {
		return c.cfg, nil
	}

	cfg := c.cfg.clone()
	for _, opt := range opts {
		opt(cfg)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Decode decodes src into the struct pointed to by out. See [Decode].
func (c *Codec) Decode(src Source, out any, opts ...Option) error {
	cfg, err := c.with(opts)
	if err != nil {
		return err
	}

	return decodeStruct(src, out, cfg)
}

// DecodeRecord decodes src into a hand-written record. See [DecodeRecord].
func (c *Codec) DecodeRecord(src Source, schema *Schema, rec Unmarshaler, opts ...Option) error {
	cfg, err := c.with(opts)
	if err != nil {
		return err
	}

	return decodeRecord(src, schema, rec, cfg)
}

// Encode writes the struct v into sink. See [Encode].
func (c *Codec) Encode(sink Sink, v any, opts ...Option) error {
	cfg, err := c.with(opts)
	if err != nil {
		return err
	}

	return encodeStruct(sink, v, cfg)
}

// EncodeRecord writes a hand-written record into sink. See [EncodeRecord].
func (c *Codec) EncodeRecord(sink Sink, schema *Schema, rec Marshaler, opts ...Option) error {
	cfg, err := c.with(opts)
	if err != nil {
		return err
	}

	return encodeRecord(sink, schema, rec, cfg)
}

// Marshal encodes v into a new [Headers] collection. See [Marshal].
func (c *Codec) Marshal(v any, opts ...Option) (*Headers, error) {
	h := &Headers{}
	if err := c.Encode(h, v, opts...); err != nil {
		return nil, err
	}

	return h, nil
}

// SchemaOf returns the schema of a struct type under the codec's tag name.
// See [SchemaOf].
func (c *Codec) SchemaOf(v any) (*Schema, error) {
	return SchemaOf(v, WithTagName(c.cfg.tagName))
}

// DecodeWith decodes src into a new value of type T using the [Codec]'s
// configuration.
//
// Example:
//
//	up, err := headermap.DecodeWith[Upload](codec, src)
func DecodeWith[T any](c *Codec, src Source, opts ...Option) (T, error) {
	var result T
	if err := c.Decode(src, &result, opts...); err != nil {
		return result, err
	}

	return result, nil
}
