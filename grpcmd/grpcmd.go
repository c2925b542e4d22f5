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

// Package grpcmd binds gRPC metadata ([metadata.MD]) to rivaas.dev/headermap.
//
// gRPC metadata keys are lower-case. Lookups lower-case the requested name
// and inserts store lower-cased keys. Inserted pairs are checked against the
// gRPC metadata rules: keys use only 0-9, a-z, '-', '_' and '.', and values
// of keys not ending in "-bin" are printable ASCII.
//
// Example:
//
//	type CallMeta struct {
//	    TenantID  string  `header:"x-tenant-id"`
//	    RequestID *string `header:"x-request-id"`
//	}
//
//	func (s *server) Get(ctx context.Context, req *pb.GetRequest) (*pb.GetResponse, error) {
//	    meta, err := grpcmd.DecodeIncoming[CallMeta](ctx)
//	    if err != nil {
//	        return nil, status.Error(codes.InvalidArgument, err.Error())
//	    }
//	    // ...
//	}
package grpcmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"

	"rivaas.dev/headermap"
)

// Insert errors.
var (
	ErrInvalidKey   = errors.New("invalid metadata key")
	ErrInvalidValue = errors.New("invalid metadata value")
)

// binarySuffix marks keys whose values may carry arbitrary bytes.
const binarySuffix = "-bin"

// Source implements [headermap.Source] for metadata.MD.
type Source struct {
	md metadata.MD
}

// NewSource creates a [Source] reading from md.
func NewSource(md metadata.MD) *Source {
	return &Source{md: md}
}

// Get returns the first value for key.
func (s *Source) Get(key string) string {
	if v := s.md.Get(key); len(v) > 0 {
		return v[0]
	}

	return ""
}

// GetAll returns all values for key.
func (s *Source) GetAll(key string) []string {
	return s.md.Get(key)
}

// Has returns whether key is present.
func (s *Source) Has(key string) bool {
	_, ok := s.md[strings.ToLower(key)]
	return ok
}

// Sink implements [headermap.Sink] for metadata.MD.
type Sink struct {
	md metadata.MD
}

// NewSink creates a [Sink] writing to md.
func NewSink(md metadata.MD) *Sink {
	return &Sink{md: md}
}

// Insert validates the pair and replaces any existing values for key.
func (s *Sink) Insert(key, value string) error {
	k := strings.ToLower(key)
	if err := validateKey(k); err != nil {
		return err
	}
	if !strings.HasSuffix(k, binarySuffix) {
		if err := validateValue(value); err != nil {
			return err
		}
	}
	s.md.Set(k, value)

	return nil
}

// validateKey checks a lower-cased metadata key.
func validateKey(k string) error {
	if k == "" {
		return fmt.Errorf("%w: empty key", ErrInvalidKey)
	}
	if strings.HasPrefix(k, "grpc-") {
		return fmt.Errorf("%w: %q uses the reserved grpc- prefix", ErrInvalidKey, k)
	}
	for i := 0; i < len(k); i++ {
		c := k[i]
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '-' || c == '_' || c == '.' {
			continue
		}

		return fmt.Errorf("%w: %q contains %q", ErrInvalidKey, k, c)
	}

	return nil
}

// validateValue checks that a non-binary value is printable ASCII.
func validateValue(v string) error {
	for i := 0; i < len(v); i++ {
		if c := v[i]; c < 0x20 || c > 0x7E {
			return fmt.Errorf("%w: byte %#x at offset %d", ErrInvalidValue, c, i)
		}
	}

	return nil
}

// Decode decodes md into a new value of type T.
func Decode[T any](md metadata.MD, opts ...headermap.Option) (T, error) {
	return headermap.DecodeInto[T](NewSource(md), opts...)
}

// Encode encodes v into new metadata. It returns nil on error.
func Encode(v any, opts ...headermap.Option) (metadata.MD, error) {
	md := metadata.MD{}
	if err := headermap.Encode(NewSink(md), v, opts...); err != nil {
		return nil, err
	}

	return md, nil
}

// DecodeIncoming decodes the incoming metadata of a server call.
// A context without incoming metadata decodes as empty metadata.
func DecodeIncoming[T any](ctx context.Context, opts ...headermap.Option) (T, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		md = metadata.MD{}
	}

	return Decode[T](md, opts...)
}

// AppendOutgoing encodes v and appends it to the outgoing metadata of ctx.
// On error ctx is returned unchanged.
//
// Example:
//
//	ctx, err := grpcmd.AppendOutgoing(ctx, CallMeta{TenantID: "acme"})
//	if err != nil {
//	    return err
//	}
//	resp, err := client.Get(ctx, req)
func AppendOutgoing(ctx context.Context, v any, opts ...headermap.Option) (context.Context, error) {
	md, err := Encode(v, opts...)
	if err != nil {
		return ctx, err
	}

	kv := make([]string, 0, 2*md.Len())
	for k, values := range md {
		for _, value := range values {
			kv = append(kv, k, value)
		}
	}

	return metadata.AppendToOutgoingContext(ctx, kv...), nil
}

// SetHeader encodes v and sets it as response header metadata of the
// server call in ctx.
func SetHeader(ctx context.Context, v any, opts ...headermap.Option) error {
	md, err := Encode(v, opts...)
	if err != nil {
		return err
	}

	return grpc.SetHeader(ctx, md)
}

// SetTrailer encodes v and sets it as trailer metadata of the server call
// in ctx.
func SetTrailer(ctx context.Context, v any, opts ...headermap.Option) error {
	md, err := Encode(v, opts...)
	if err != nil {
		return err
	}

	return grpc.SetTrailer(ctx, md)
}
