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
	"strconv"
)

// Op is the direction of a marshaling call.
type Op int

const (
	// OpDecode converts a header collection into a record.
	OpDecode Op = iota + 1

	// OpEncode converts a record into a header collection.
	OpEncode
)

// String returns "decode" or "encode".
func (o Op) String() string {
	switch o {
	case OpDecode:
		return "decode"
	case OpEncode:
		return "encode"
	default:
		return "unknown"
	}
}

// Sentinel errors of the taxonomy. An [*Error] whose Err is none of these
// is a custom error (record code, a validator or a [Sink]).
var (
	ErrMissingField  = errors.New("missing field")
	ErrInvalidValue  = errors.New("invalid value")
	ErrInvalidLength = errors.New("invalid length")
	ErrInvalidUTF8   = errors.New("invalid utf-8")
	ErrUnsupported   = errors.New("unsupported type")
)

// Error codes returned by [Error.Code].
const (
	CodeMissingField  = "missing_field"
	CodeInvalidValue  = "invalid_value"
	CodeInvalidLength = "invalid_length"
	CodeInvalidUTF8   = "invalid_utf8"
	CodeUnsupported   = "unsupported"
	CodeCustom        = "custom"
)

// Error is a decode or encode failure with field-level context.
//
// Use [errors.As] to inspect it and [errors.Is] with the sentinel errors to
// classify it:
//
//	var herr *headermap.Error
//	if errors.As(err, &herr) {
//	    fmt.Printf("field %s: %s\n", herr.Field, herr.Code())
//	}
type Error struct {
	Op       Op     // Direction of the failed call
	Field    string // Field name, empty for failures outside any field
	Index    int    // Position of the field in the schema, -1 outside any field
	Value    string // Offending raw value, if any
	Expected string // What was expected instead, if known
	Err      error  // Sentinel or underlying error
}

// Error returns a formatted error message.
func (e *Error) Error() string {
	prefix := "headermap: " + e.Op.String()
	if e.Field != "" {
		prefix += " field " + strconv.Quote(e.Field)
	}

	switch e.Err {
	case ErrInvalidValue:
		return fmt.Sprintf("%s: invalid value %q, expected %s", prefix, e.Value, e.Expected)
	case ErrInvalidLength:
		return fmt.Sprintf("%s: invalid length %d, expected %s", prefix, e.Index, e.Expected)
	case ErrUnsupported:
		if e.Expected != "" {
			return fmt.Sprintf("%s: unsupported type: %s", prefix, e.Expected)
		}
	}

	return fmt.Sprintf("%s: %v", prefix, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Err
}

// Code returns the taxonomy code of the error.
func (e *Error) Code() string {
	switch {
	case errors.Is(e.Err, ErrMissingField):
		return CodeMissingField
	case errors.Is(e.Err, ErrInvalidValue):
		return CodeInvalidValue
	case errors.Is(e.Err, ErrInvalidLength):
		return CodeInvalidLength
	case errors.Is(e.Err, ErrInvalidUTF8):
		return CodeInvalidUTF8
	case errors.Is(e.Err, ErrUnsupported):
		return CodeUnsupported
	default:
		return CodeCustom
	}
}

// HTTPStatus returns the HTTP status code for error responses.
// Decode failures are client errors; encode failures are server errors.
func (e *Error) HTTPStatus() int {
	if e.Op == OpDecode {
		return 400 // Bad Request
	}

	return 500 // Internal Server Error
}

// IsCustom reports whether the error is outside the fixed taxonomy.
func (e *Error) IsCustom() bool {
	return e.Code() == CodeCustom
}

// Custom returns an error a hand-written record can return from
// [Unmarshaler.UnmarshalHeaders] or [Marshaler.MarshalHeaders]. The driver
// attaches the operation and current field.
func Custom(msg string) error {
	return errors.New(msg)
}

// Customf is like [Custom] with formatting.
func Customf(format string, args ...any) error {
	return fmt.Errorf(format, args...)
}

// ErrorCode returns the taxonomy code of err, or "" when err is not an
// [*Error].
func ErrorCode(err error) string {
	var herr *Error
	if errors.As(err, &herr) {
		return herr.Code()
	}

	return ""
}

// fieldError builds an error bound to a schema field.
func fieldError(op Op, f *field, index int, value, expected string, err error) *Error {
	return &Error{
		Op:       op,
		Field:    f.name,
		Index:    index,
		Value:    value,
		Expected: expected,
		Err:      err,
	}
}

// callError builds an error that is not bound to any field.
func callError(op Op, expected string, err error) *Error {
	return &Error{
		Op:       op,
		Index:    -1,
		Expected: expected,
		Err:      err,
	}
}

// wrapError attaches field context to err unless it already is an [*Error].
func wrapError(op Op, f *field, index int, value string, err error) error {
	var herr *Error
	if errors.As(err, &herr) {
		return err
	}

	return fieldError(op, f, index, value, "", err)
}
