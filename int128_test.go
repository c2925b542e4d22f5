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

//go:build !integration

package headermap

import (
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUint128(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Uint128
		wantErr error
	}{
		{in: "0", want: Uint128{}},
		{in: "+42", want: Uint128From64(42)},
		{in: "18446744073709551615", want: Uint128From64(math.MaxUint64)},
		{in: "18446744073709551616", want: Uint128{Hi: 1}},
		{in: "340282366920938463463374607431768211455", want: MaxUint128},
		{in: "340282366920938463463374607431768211456", wantErr: strconv.ErrRange},
		{in: "-1", wantErr: strconv.ErrSyntax},
		{in: "", wantErr: strconv.ErrSyntax},
		{in: "+", wantErr: strconv.ErrSyntax},
		{in: "12a", wantErr: strconv.ErrSyntax},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			got, err := ParseUint128(tt.in)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				var numErr *strconv.NumError
				require.ErrorAs(t, err, &numErr)
				assert.Equal(t, tt.in, numErr.Num)

				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseInt128(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Int128
		wantErr error
	}{
		{in: "0", want: Int128{}},
		{in: "-1", want: Int128{Hi: -1, Lo: math.MaxUint64}},
		{in: "-9223372036854775808", want: Int128From64(math.MinInt64)},
		{in: "170141183460469231731687303715884105727", want: MaxInt128},
		{in: "-170141183460469231731687303715884105728", want: MinInt128},
		{in: "170141183460469231731687303715884105728", wantErr: strconv.ErrRange},
		{in: "-170141183460469231731687303715884105729", wantErr: strconv.ErrRange},
		{in: "--1", wantErr: strconv.ErrSyntax},
		{in: "-", wantErr: strconv.ErrSyntax},
		{in: "1.0", wantErr: strconv.ErrSyntax},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			got, err := ParseInt128(tt.in)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInt128_String(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
	}{
		{"zero", "0"},
		{"small", "42"},
		{"negative small", "-42"},
		{"above uint64", "18446744073709551616"},
		{"chunk boundary", "10000000000000000000000000000000000000"},
		{"inner zeros", "100000000000000000000000000000000000001"},
		{"max", "170141183460469231731687303715884105727"},
		{"min", "-170141183460469231731687303715884105728"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			v, err := ParseInt128(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.in, v.String())

			text, err := v.MarshalText()
			require.NoError(t, err)

			var back Int128
			require.NoError(t, back.UnmarshalText(text))
			assert.Equal(t, v, back)
		})
	}
}

func TestUint128_String(t *testing.T) {
	t.Parallel()

	for _, in := range []string{
		"0",
		"18446744073709551615",
		"18446744073709551616",
		"99999999999999999999",
		"340282366920938463463374607431768211455",
	} {
		v, err := ParseUint128(in)
		require.NoError(t, err)
		assert.Equal(t, in, v.String())

		var back Uint128
		require.NoError(t, back.UnmarshalText([]byte(in)))
		assert.Equal(t, v, back)
	}

	var bad Uint128
	require.Error(t, bad.UnmarshalText([]byte("x")))
}

func TestInt128From64(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "-5", Int128From64(-5).String())
	assert.True(t, Int128From64(-5).IsNeg())
	assert.False(t, Int128From64(5).IsNeg())
	assert.Equal(t, "9223372036854775807", Int128From64(math.MaxInt64).String())
}
