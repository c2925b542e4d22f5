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

// Package headermap marshals flat records to and from header collections.
//
// A record is a struct (or a hand-written type) whose fields are scalars or
// optional scalars. Decoding walks the record's [Schema] in declared order,
// looks each field name up in a [Source] and converts the raw string into
// the field's type. Encoding walks the same schema and writes the canonical
// string form of every field into a [Sink].
//
// # Quick Start
//
//	type Upload struct {
//	    ContentLength int64   `header:"content_length"`
//	    ContentType   *string `header:"content_type"`
//	}
//
//	// Decode
//	up, err := headermap.DecodeInto[Upload](src)
//
//	// Encode into a fresh collection
//	h, err := headermap.Marshal(up)
//
// Bindings for concrete header libraries live in sub-packages:
//
//   - rivaas.dev/headermap/httpheader: net/http.Header
//   - rivaas.dev/headermap/grpcmd: gRPC metadata.MD
//
// Other sub-packages build records and observe calls:
//
//   - rivaas.dev/headermap/protoheader: protobuf messages as records
//   - rivaas.dev/headermap/schemafile: layouts declared in YAML, TOML, JSON or MessagePack
//   - rivaas.dev/headermap/headermetrics: Prometheus and OpenTelemetry metrics
//
// # Supported Types
//
//   - bool
//   - int8, int16, int32, int64, int (64-bit), [Int128]
//   - uint8, uint16, uint32, uint64, uint (64-bit), [Uint128]
//   - float32, float64
//   - [Char] (exactly one Unicode scalar value)
//   - string, []byte
//   - *T for any of the above: optional field
//
// Sequences, maps, nested structs and interfaces are rejected with
// [ErrUnsupported] when the driver reaches them.
//
// # Optional Fields
//
// A pointer field is optional. When the key is absent the pointer is left
// nil without parsing anything. When the key is present, even with an
// empty value, the pointer is allocated and the value is parsed as the
// element type. Encoding a nil pointer omits the key entirely.
//
// # Hand-Written Records
//
// Types that should not go through reflection implement [Unmarshaler] and
// [Marshaler] and are driven by an explicit schema:
//
//	var schema = headermap.MustSchema("content_length", "content_type")
//
//	func (u *Upload) UnmarshalHeaders(d *headermap.Decoder) error {
//	    return d.Scan(&u.ContentLength, &u.ContentType)
//	}
//
//	err := headermap.DecodeRecord(src, schema, &up)
//
// # Error Handling
//
// Every failure aborts the call and is reported as an [*Error] wrapping one
// of the sentinel errors:
//
//	var herr *headermap.Error
//	if errors.As(err, &herr) {
//	    fmt.Println(herr.Field, herr.Code())
//	}
//	if errors.Is(err, headermap.ErrMissingField) {
//	    // ...
//	}
//
// # Observability
//
// The package never logs. Use [WithEvents] to observe decode and encode
// calls, or [LogEvents] to route them to a slog.Logger.
package headermap
