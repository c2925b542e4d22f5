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

// Package protoheader marshals protobuf messages to and from header
// collections using the message descriptor as the schema.
//
// Each top-level field becomes one header named after its text name, in
// declaration order. Scalar fields map onto headermap kinds:
//
//	bool                        bool
//	int32, sint32, sfixed32     i32
//	int64, sint64, sfixed64     i64
//	uint32, fixed32             u32
//	uint64, fixed64             u64
//	float                       f32
//	double                      f64
//	string                      string
//	bytes                       bytes
//
// Fields with explicit presence (proto2 optional, proto3 optional) are
// optional headers. Other scalar fields are required on decode and always
// written on encode.
//
// Enums, messages, repeated fields and maps cannot be carried in a header.
// They are accepted only while unset: an absent header decodes to an unset
// field, and an unset field is omitted on encode.
package protoheader

import (
	"sync"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"

	"rivaas.dev/headermap"
)

// protoField is the resolved marshaling plan for one message field.
type protoField struct {
	fd          protoreflect.FieldDescriptor
	kind        headermap.Kind
	optional    bool
	unsupported string // Description of the field type when kind is KindInvalid
}

type messagePlan struct {
	schema *headermap.Schema
	fields []protoField
}

// plans caches a messagePlan per message descriptor.
var plans sync.Map

// SchemaOf returns the header schema of a message descriptor.
//
// Example:
//
//	schema, err := protoheader.SchemaOf((&pb.Upload{}).ProtoReflect().Descriptor())
func SchemaOf(desc protoreflect.MessageDescriptor) (*headermap.Schema, error) {
	plan, err := planOf(desc)
	if err != nil {
		return nil, err
	}

	return plan.schema, nil
}

func planOf(desc protoreflect.MessageDescriptor) (*messagePlan, error) {
	if cached, ok := plans.Load(desc); ok {
		return cached.(*messagePlan), nil
	}

	fds := desc.Fields()
	plan := &messagePlan{fields: make([]protoField, fds.Len())}
	names := make([]string, fds.Len())
	for i := range fds.Len() {
		fd := fds.Get(i)
		kind, unsupported := kindOf(fd)
		plan.fields[i] = protoField{
			fd:          fd,
			kind:        kind,
			optional:    fd.HasPresence() && fd.Cardinality() != protoreflect.Required,
			unsupported: unsupported,
		}
		names[i] = fd.TextName()
	}

	schema, err := headermap.NewSchema(names...)
	if err != nil {
		return nil, err
	}
	plan.schema = schema

	actual, _ := plans.LoadOrStore(desc, plan)

	return actual.(*messagePlan), nil
}

// kindOf maps a field descriptor onto a scalar kind, or describes why it
// has none.
func kindOf(fd protoreflect.FieldDescriptor) (headermap.Kind, string) {
	switch {
	case fd.IsMap():
		return headermap.KindInvalid, "a map"
	case fd.IsList():
		return headermap.KindInvalid, "a sequence"
	}

	switch fd.Kind() {
	case protoreflect.BoolKind:
		return headermap.KindBool, ""
	case protoreflect.Int32Kind, protoreflect.Sint32Kind, protoreflect.Sfixed32Kind:
		return headermap.KindInt32, ""
	case protoreflect.Int64Kind, protoreflect.Sint64Kind, protoreflect.Sfixed64Kind:
		return headermap.KindInt64, ""
	case protoreflect.Uint32Kind, protoreflect.Fixed32Kind:
		return headermap.KindUint32, ""
	case protoreflect.Uint64Kind, protoreflect.Fixed64Kind:
		return headermap.KindUint64, ""
	case protoreflect.FloatKind:
		return headermap.KindFloat32, ""
	case protoreflect.DoubleKind:
		return headermap.KindFloat64, ""
	case protoreflect.StringKind:
		return headermap.KindString, ""
	case protoreflect.BytesKind:
		return headermap.KindBytes, ""
	case protoreflect.EnumKind:
		return headermap.KindInvalid, "an enum"
	default:
		return headermap.KindInvalid, "a nested record"
	}
}

// Decode decodes src into msg.
//
// msg is only modified when decoding succeeds.
//
// Example:
//
//	var up pb.Upload
//	err := protoheader.Decode(httpheader.NewSource(r.Header), &up)
func Decode(src headermap.Source, msg proto.Message, opts ...headermap.Option) error {
	if msg == nil || !msg.ProtoReflect().IsValid() {
		return invalidMessage(headermap.OpDecode)
	}
	plan, err := planOf(msg.ProtoReflect().Descriptor())
	if err != nil {
		return err
	}

	clone := proto.Clone(msg)
	m := clone.ProtoReflect()
	rec := headermap.UnmarshalerFunc(func(d *headermap.Decoder) error {
		for i := range plan.fields {
			if err := decodeField(d, src, m, &plan.fields[i]); err != nil {
				return err
			}
		}

		return nil
	})
	if err := headermap.DecodeRecord(src, plan.schema, rec, opts...); err != nil {
		return err
	}

	proto.Reset(msg)
	proto.Merge(msg, clone)

	return nil
}

func decodeField(d *headermap.Decoder, src headermap.Source, m protoreflect.Message, f *protoField) error {
	if f.kind == headermap.KindInvalid {
		if !src.Has(d.Field()) {
			m.Clear(f.fd)
			return d.Skip()
		}

		return d.Unsupported(f.unsupported)
	}

	var (
		v   protoreflect.Value
		ok  bool
		err error
	)
	switch f.kind {
	case headermap.KindBool:
		v, ok, err = next(d, f.optional, protoreflect.ValueOfBool)
	case headermap.KindInt32:
		v, ok, err = next(d, f.optional, protoreflect.ValueOfInt32)
	case headermap.KindInt64:
		v, ok, err = next(d, f.optional, protoreflect.ValueOfInt64)
	case headermap.KindUint32:
		v, ok, err = next(d, f.optional, protoreflect.ValueOfUint32)
	case headermap.KindUint64:
		v, ok, err = next(d, f.optional, protoreflect.ValueOfUint64)
	case headermap.KindFloat32:
		v, ok, err = next(d, f.optional, protoreflect.ValueOfFloat32)
	case headermap.KindFloat64:
		v, ok, err = next(d, f.optional, protoreflect.ValueOfFloat64)
	case headermap.KindString:
		v, ok, err = next(d, f.optional, protoreflect.ValueOfString)
	case headermap.KindBytes:
		v, ok, err = next(d, f.optional, protoreflect.ValueOfBytes)
	}
	if err != nil {
		return err
	}

	if ok {
		m.Set(f.fd, v)
	} else {
		m.Clear(f.fd)
	}

	return nil
}

// next reads the next field as T. ok is false for an absent optional field.
func next[T any](d *headermap.Decoder, optional bool, wrap func(T) protoreflect.Value) (protoreflect.Value, bool, error) {
	if optional {
		var p *T
		if err := d.Next(&p); err != nil || p == nil {
			return protoreflect.Value{}, false, err
		}

		return wrap(*p), true, nil
	}

	var v T
	if err := d.Next(&v); err != nil {
		return protoreflect.Value{}, false, err
	}

	return wrap(v), true, nil
}

// Encode writes msg into sink.
//
// Example:
//
//	h := headermap.NewHeaders()
//	err := protoheader.Encode(h, &pb.Upload{ContentLength: 100})
func Encode(sink headermap.Sink, msg proto.Message, opts ...headermap.Option) error {
	if msg == nil {
		return invalidMessage(headermap.OpEncode)
	}
	plan, err := planOf(msg.ProtoReflect().Descriptor())
	if err != nil {
		return err
	}

	m := msg.ProtoReflect()
	rec := headermap.MarshalerFunc(func(e *headermap.Encoder) error {
		for i := range plan.fields {
			if err := encodeField(e, m, &plan.fields[i]); err != nil {
				return err
			}
		}

		return nil
	})

	return headermap.EncodeRecord(sink, plan.schema, rec, opts...)
}

func encodeField(e *headermap.Encoder, m protoreflect.Message, f *protoField) error {
	if f.kind == headermap.KindInvalid {
		if !m.Has(f.fd) {
			return e.Next(nil)
		}

		return e.Unsupported(f.unsupported)
	}
	if f.optional && !m.Has(f.fd) {
		return e.Next(nil)
	}

	v := m.Get(f.fd)
	switch f.kind {
	case headermap.KindBool:
		return e.Next(v.Bool())
	case headermap.KindInt32:
		return e.Next(int32(v.Int()))
	case headermap.KindInt64:
		return e.Next(v.Int())
	case headermap.KindUint32:
		return e.Next(uint32(v.Uint()))
	case headermap.KindUint64:
		return e.Next(v.Uint())
	case headermap.KindFloat32:
		return e.Next(float32(v.Float()))
	case headermap.KindFloat64:
		return e.Next(v.Float())
	case headermap.KindString:
		return e.Next(v.String())
	default:
		return e.Next(v.Bytes())
	}
}

// Marshal encodes msg into a new [headermap.Headers] collection.
// It returns nil on error.
func Marshal(msg proto.Message, opts ...headermap.Option) (*headermap.Headers, error) {
	h := headermap.NewHeaders()
	if err := Encode(h, msg, opts...); err != nil {
		return nil, err
	}

	return h, nil
}

func invalidMessage(op headermap.Op) error {
	return &headermap.Error{
		Op:       op,
		Index:    -1,
		Expected: "a proto message",
		Err:      headermap.ErrUnsupported,
	}
}
