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
	"fmt"
	"reflect"
	"strings"
)

// Kind identifies the scalar type of a record field.
type Kind uint8

// Scalar kinds. KindInvalid marks a field whose type cannot be marshaled.
const (
	KindInvalid Kind = iota
	KindBool
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindInt128
	KindUint8
	KindUint16
	KindUint32
	KindUint64
	KindUint128
	KindFloat32
	KindFloat64
	KindChar
	KindString
	KindBytes
)

var kindNames = [...]string{
	KindInvalid: "invalid",
	KindBool:    "bool",
	KindInt8:    "i8",
	KindInt16:   "i16",
	KindInt32:   "i32",
	KindInt64:   "i64",
	KindInt128:  "i128",
	KindUint8:   "u8",
	KindUint16:  "u16",
	KindUint32:  "u32",
	KindUint64:  "u64",
	KindUint128: "u128",
	KindFloat32: "f32",
	KindFloat64: "f64",
	KindChar:    "char",
	KindString:  "string",
	KindBytes:   "bytes",
}

// kindAliases maps Go spellings onto kinds for [ParseKind].
var kindAliases = map[string]Kind{
	"int8":    KindInt8,
	"int16":   KindInt16,
	"int32":   KindInt32,
	"int64":   KindInt64,
	"int":     KindInt64,
	"int128":  KindInt128,
	"uint8":   KindUint8,
	"byte":    KindUint8,
	"uint16":  KindUint16,
	"uint32":  KindUint32,
	"uint64":  KindUint64,
	"uint":    KindUint64,
	"uint128": KindUint128,
	"float32": KindFloat32,
	"float64": KindFloat64,
	"rune":    KindChar,
	"str":     KindString,
	"[]byte":  KindBytes,
	"boolean": KindBool,
}

// String returns the short name of the kind ("i64", "char", ...).
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}

	return fmt.Sprintf("Kind(%d)", k)
}

// IsValid reports whether k is a marshalable scalar kind.
func (k Kind) IsValid() bool {
	return k > KindInvalid && k <= KindBytes
}

// ParseKind returns the kind named s. Both the short names ("i64", "u8",
// "f32") and the Go spellings ("int64", "uint8", "float32") are accepted,
// case-insensitively.
func ParseKind(s string) (Kind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for k, n := range kindNames {
		if Kind(k) != KindInvalid && n == name {
			return Kind(k), nil
		}
	}
	if k, ok := kindAliases[name]; ok {
		return k, nil
	}

	return KindInvalid, fmt.Errorf("%w: unknown kind %q", ErrUnsupported, s)
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, k)
	}

	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed

	return nil
}

// Type returns the Go type a field of this kind decodes into.
func (k Kind) Type() reflect.Type {
	switch k {
	case KindBool:
		return reflect.TypeFor[bool]()
	case KindInt8:
		return reflect.TypeFor[int8]()
	case KindInt16:
		return reflect.TypeFor[int16]()
	case KindInt32:
		return reflect.TypeFor[int32]()
	case KindInt64:
		return reflect.TypeFor[int64]()
	case KindInt128:
		return int128Type
	case KindUint8:
		return reflect.TypeFor[uint8]()
	case KindUint16:
		return reflect.TypeFor[uint16]()
	case KindUint32:
		return reflect.TypeFor[uint32]()
	case KindUint64:
		return reflect.TypeFor[uint64]()
	case KindUint128:
		return uint128Type
	case KindFloat32:
		return reflect.TypeFor[float32]()
	case KindFloat64:
		return reflect.TypeFor[float64]()
	case KindChar:
		return charType
	case KindString:
		return reflect.TypeFor[string]()
	case KindBytes:
		return bytesType
	default:
		return nil
	}
}

// bitSize returns the width used for strconv parsing.
func (k Kind) bitSize() int {
	switch k {
	case KindInt8, KindUint8:
		return 8
	case KindInt16, KindUint16:
		return 16
	case KindInt32, KindUint32, KindFloat32:
		return 32
	default:
		return 64
	}
}

// Char is a field holding exactly one Unicode scalar value.
// It exists so that a character field can be told apart from an int32.
type Char rune

// String returns the character as a one-rune string.
func (c Char) String() string {
	return string(rune(c))
}

// Type references for special type handling.
var (
	charType    = reflect.TypeFor[Char]()
	int128Type  = reflect.TypeFor[Int128]()
	uint128Type = reflect.TypeFor[Uint128]()
	bytesType   = reflect.TypeFor[[]byte]()
)

// kindOf resolves the scalar kind of t. For unsupported types it returns
// KindInvalid and a description of the shape that was found.
func kindOf(t reflect.Type) (Kind, string) {
	switch t {
	case charType:
		return KindChar, ""
	case int128Type:
		return KindInt128, ""
	case uint128Type:
		return KindUint128, ""
	}

	switch t.Kind() {
	case reflect.Bool:
		return KindBool, ""
	case reflect.Int8:
		return KindInt8, ""
	case reflect.Int16:
		return KindInt16, ""
	case reflect.Int32:
		return KindInt32, ""
	case reflect.Int, reflect.Int64:
		return KindInt64, ""
	case reflect.Uint8:
		return KindUint8, ""
	case reflect.Uint16:
		return KindUint16, ""
	case reflect.Uint32:
		return KindUint32, ""
	case reflect.Uint, reflect.Uint64:
		return KindUint64, ""
	case reflect.Float32:
		return KindFloat32, ""
	case reflect.Float64:
		return KindFloat64, ""
	case reflect.String:
		return KindString, ""
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return KindBytes, ""
		}

		return KindInvalid, "a sequence"
	case reflect.Array:
		return KindInvalid, "a sequence"
	case reflect.Map:
		return KindInvalid, "a map"
	case reflect.Struct:
		return KindInvalid, "a nested record"
	case reflect.Interface:
		return KindInvalid, "an interface"
	case reflect.Func:
		return KindInvalid, "a function"
	case reflect.Chan:
		return KindInvalid, "a channel"
	case reflect.Complex64, reflect.Complex128:
		return KindInvalid, "a complex number"
	case reflect.Pointer:
		return KindInvalid, "a nested optional"
	default:
		return KindInvalid, "an unsupported type"
	}
}

// fieldKind resolves a struct field type, unwrapping one pointer level
// for optional fields.
func fieldKind(t reflect.Type) (kind Kind, optional bool, shape string) {
	if t.Kind() == reflect.Pointer {
		optional = true
		t = t.Elem()
	}
	kind, shape = kindOf(t)

	return kind, optional, shape
}
