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
	"reflect"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Expected-value descriptions used in InvalidValue errors.
const (
	expectDigits = "digit only"
	expectChar   = "a char"
	expectBool   = "a boolean"
)

var errNotNumber = errors.New("not a decimal number")

// parseValue converts a raw header value into the Go value of kind.
// On failure it returns the expectation to report with ErrInvalidValue.
//
// The returned value is bool, int64, uint64, float64, Int128, Uint128,
// string or []byte. Char values are returned as int64.
func parseValue(raw string, kind Kind, lenientBools bool) (any, string, error) {
	switch kind {
	case KindBool:
		b, err := parseBool(raw, lenientBools)
		if err != nil {
			return nil, expectBool, err
		}

		return b, "", nil

	case KindInt8, KindInt16, KindInt32, KindInt64:
		n, err := strconv.ParseInt(raw, 10, kind.bitSize())
		if err != nil {
			return nil, expectDigits, err
		}

		return n, "", nil

	case KindUint8, KindUint16, KindUint32, KindUint64:
		n, err := strconv.ParseUint(raw, 10, kind.bitSize())
		if err != nil {
			return nil, expectDigits, err
		}

		return n, "", nil

	case KindInt128:
		n, err := ParseInt128(raw)
		if err != nil {
			return nil, expectDigits, err
		}

		return n, "", nil

	case KindUint128:
		n, err := ParseUint128(raw)
		if err != nil {
			return nil, expectDigits, err
		}

		return n, "", nil

	case KindFloat32, KindFloat64:
		f, err := parseFloat(raw, kind.bitSize())
		if err != nil {
			return nil, expectDigits, err
		}

		return f, "", nil

	case KindChar:
		if utf8.RuneCountInString(raw) != 1 {
			return nil, expectChar, strconv.ErrSyntax
		}
		r, _ := utf8.DecodeRuneInString(raw)

		return int64(r), "", nil

	case KindString:
		return raw, "", nil

	case KindBytes:
		return []byte(raw), "", nil

	default:
		return nil, kind.String(), ErrUnsupported
	}
}

// parseBool accepts "true" and "false" exactly, or the lenient set when
// enabled.
func parseBool(raw string, lenient bool) (bool, error) {
	switch raw {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	if !lenient {
		return false, strconv.ErrSyntax
	}

	switch strings.ToLower(raw) {
	case "true", "yes", "1", "on":
		return true, nil
	case "false", "no", "0", "off":
		return false, nil
	default:
		return false, strconv.ErrSyntax
	}
}

// parseFloat parses a decimal float. Hexadecimal mantissas and digit
// separators accepted by strconv are rejected. Values too large for bitSize
// saturate to the signed infinity.
func parseFloat(raw string, bitSize int) (float64, error) {
	digits := strings.TrimLeft(raw, "+-")
	if len(digits) > 1 && digits[0] == '0' && (digits[1] == 'x' || digits[1] == 'X') {
		return 0, errNotNumber
	}
	if strings.Contains(raw, "_") {
		return 0, errNotNumber
	}

	f, err := strconv.ParseFloat(raw, bitSize)
	if errors.Is(err, strconv.ErrRange) {
		return f, nil
	}

	return f, err
}

// setValue stores a value produced by parseValue into target.
func setValue(target reflect.Value, kind Kind, v any) {
	switch kind {
	case KindBool:
		target.SetBool(v.(bool))
	case KindInt8, KindInt16, KindInt32, KindInt64, KindChar:
		target.SetInt(v.(int64))
	case KindUint8, KindUint16, KindUint32, KindUint64:
		target.SetUint(v.(uint64))
	case KindFloat32, KindFloat64:
		target.SetFloat(v.(float64))
	case KindInt128, KindUint128:
		target.Set(reflect.ValueOf(v))
	case KindString:
		target.SetString(v.(string))
	case KindBytes:
		target.SetBytes(v.([]byte))
	}
}

// formatValue renders a scalar as its canonical textual form.
// Byte strings must be valid UTF-8; otherwise ErrInvalidUTF8 is returned.
func formatValue(v reflect.Value, kind Kind) (string, error) {
	switch kind {
	case KindBool:
		return strconv.FormatBool(v.Bool()), nil
	case KindInt8, KindInt16, KindInt32, KindInt64:
		return strconv.FormatInt(v.Int(), 10), nil
	case KindUint8, KindUint16, KindUint32, KindUint64:
		return strconv.FormatUint(v.Uint(), 10), nil
	case KindInt128:
		return v.Interface().(Int128).String(), nil
	case KindUint128:
		return v.Interface().(Uint128).String(), nil
	case KindFloat32, KindFloat64:
		return strconv.FormatFloat(v.Float(), 'g', -1, kind.bitSize()), nil
	case KindChar:
		r := rune(v.Int())
		if !utf8.ValidRune(r) {
			return "", ErrInvalidUTF8
		}

		return string(r), nil
	case KindString:
		s := v.String()
		if !utf8.ValidString(s) {
			return "", ErrInvalidUTF8
		}

		return s, nil
	case KindBytes:
		b := v.Bytes()
		if !utf8.Valid(b) {
			return "", ErrInvalidUTF8
		}

		return string(b), nil
	default:
		return "", ErrUnsupported
	}
}
