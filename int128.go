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
	"math"
	"math/bits"
	"strconv"
	"strings"
)

// Uint128 is an unsigned 128-bit integer stored as two 64-bit words.
type Uint128 struct {
	Hi uint64
	Lo uint64
}

// Int128 is a signed two's-complement 128-bit integer.
type Int128 struct {
	Hi int64
	Lo uint64
}

// Bounds of the 128-bit types.
var (
	MaxUint128 = Uint128{Hi: math.MaxUint64, Lo: math.MaxUint64}
	MaxInt128  = Int128{Hi: math.MaxInt64, Lo: math.MaxUint64}
	MinInt128  = Int128{Hi: math.MinInt64, Lo: 0}
)

// Uint128From64 widens v.
func Uint128From64(v uint64) Uint128 {
	return Uint128{Lo: v}
}

// Int128From64 sign-extends v.
func Int128From64(v int64) Int128 {
	hi := int64(0)
	if v < 0 {
		hi = -1
	}

	return Int128{Hi: hi, Lo: uint64(v)}
}

// ParseUint128 parses a base-10 unsigned integer with an optional leading
// '+'. Errors are *strconv.NumError values wrapping strconv.ErrSyntax or
// strconv.ErrRange, like the strconv parsers.
func ParseUint128(s string) (Uint128, error) {
	const fn = "ParseUint128"

	digits := strings.TrimPrefix(s, "+")
	if digits == "" {
		return Uint128{}, &strconv.NumError{Func: fn, Num: s, Err: strconv.ErrSyntax}
	}

	u, err := parseMagnitude(digits)
	if err != nil {
		return Uint128{}, &strconv.NumError{Func: fn, Num: s, Err: err}
	}

	return u, nil
}

// ParseInt128 parses a base-10 signed integer with an optional leading
// sign.
func ParseInt128(s string) (Int128, error) {
	const fn = "ParseInt128"

	digits := s
	neg := false
	if digits != "" && (digits[0] == '+' || digits[0] == '-') {
		neg = digits[0] == '-'
		digits = digits[1:]
	}
	if digits == "" {
		return Int128{}, &strconv.NumError{Func: fn, Num: s, Err: strconv.ErrSyntax}
	}

	mag, err := parseMagnitude(digits)
	if err != nil {
		return Int128{}, &strconv.NumError{Func: fn, Num: s, Err: err}
	}

	const signBit = 1 << 63
	if neg {
		// |MinInt128| is 1<<127, one more than MaxInt128.
		if mag.Hi > signBit || (mag.Hi == signBit && mag.Lo != 0) {
			return Int128{}, &strconv.NumError{Func: fn, Num: s, Err: strconv.ErrRange}
		}
		n := mag.neg()

		return Int128{Hi: int64(n.Hi), Lo: n.Lo}, nil
	}
	if mag.Hi >= signBit {
		return Int128{}, &strconv.NumError{Func: fn, Num: s, Err: strconv.ErrRange}
	}

	return Int128{Hi: int64(mag.Hi), Lo: mag.Lo}, nil
}

// parseMagnitude parses an unsigned run of ASCII digits.
func parseMagnitude(digits string) (Uint128, error) {
	var u Uint128
	for i := 0; i < len(digits); i++ {
		c := digits[i]
		if c < '0' || c > '9' {
			return Uint128{}, strconv.ErrSyntax
		}

		var ok bool
		if u, ok = u.mul10Add(uint64(c - '0')); !ok {
			return Uint128{}, strconv.ErrRange
		}
	}

	return u, nil
}

// mul10Add returns u*10+d and false on overflow.
func (u Uint128) mul10Add(d uint64) (Uint128, bool) {
	carryHi, hi := bits.Mul64(u.Hi, 10)
	if carryHi != 0 {
		return Uint128{}, false
	}
	loHi, lo := bits.Mul64(u.Lo, 10)

	var c uint64
	hi, c = bits.Add64(hi, loHi, 0)
	if c != 0 {
		return Uint128{}, false
	}
	lo, c = bits.Add64(lo, d, 0)
	hi, c = bits.Add64(hi, 0, c)
	if c != 0 {
		return Uint128{}, false
	}

	return Uint128{Hi: hi, Lo: lo}, true
}

// neg returns the two's complement of u.
func (u Uint128) neg() Uint128 {
	lo, c := bits.Add64(^u.Lo, 1, 0)
	hi, _ := bits.Add64(^u.Hi, 0, c)

	return Uint128{Hi: hi, Lo: lo}
}

// quoRem divides u by a 64-bit divisor.
func (u Uint128) quoRem(d uint64) (Uint128, uint64) {
	qHi := u.Hi / d
	r := u.Hi % d
	qLo, r := bits.Div64(r, u.Lo, d)

	return Uint128{Hi: qHi, Lo: qLo}, r
}

// String returns the base-10 representation of u.
func (u Uint128) String() string {
	if u.Hi == 0 {
		return strconv.FormatUint(u.Lo, 10)
	}

	// Peel off 19-digit chunks until the rest fits in 64 bits.
	const chunk = 10_000_000_000_000_000_000
	var rems [3]uint64
	n := 0
	for u.Hi != 0 {
		u, rems[n] = u.quoRem(chunk)
		n++
	}

	var b strings.Builder
	b.WriteString(strconv.FormatUint(u.Lo, 10))
	for i := n - 1; i >= 0; i-- {
		s := strconv.FormatUint(rems[i], 10)
		b.WriteString(strings.Repeat("0", 19-len(s)))
		b.WriteString(s)
	}

	return b.String()
}

// IsNeg reports whether i is negative.
func (i Int128) IsNeg() bool {
	return i.Hi < 0
}

// String returns the base-10 representation of i.
func (i Int128) String() string {
	u := Uint128{Hi: uint64(i.Hi), Lo: i.Lo}
	if i.IsNeg() {
		return "-" + u.neg().String()
	}

	return u.String()
}

// MarshalText implements encoding.TextMarshaler.
func (u Uint128) MarshalText() ([]byte, error) {
	return []byte(u.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (u *Uint128) UnmarshalText(text []byte) error {
	v, err := ParseUint128(string(text))
	if err != nil {
		return err
	}
	*u = v

	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (i Int128) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (i *Int128) UnmarshalText(text []byte) error {
	v, err := ParseInt128(string(text))
	if err != nil {
		return err
	}
	*i = v

	return nil
}
