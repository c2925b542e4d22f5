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
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type validatedUpload struct {
	ContentLength int64   `header:"content_length" validate:"gte=0,lte=1048576"`
	ContentType   *string `header:"content_type" validate:"omitempty,oneof=text/plain application/json"`
}

func TestDecode_WithValidator(t *testing.T) {
	t.Parallel()

	v := validator.New(validator.WithRequiredStructEnabled())
	codec := TestCodec(t, WithValidator(ValidatorFunc(v.Struct)))

	tests := []struct {
		name    string
		pairs   []string
		wantErr bool
	}{
		{name: "valid", pairs: []string{"content_length", "100", "content_type", "text/plain"}},
		{name: "valid without optional", pairs: []string{"content_length", "0"}},
		{name: "too large", pairs: []string{"content_length", "2000000"}, wantErr: true},
		{name: "bad type", pairs: []string{"content_length", "1", "content_type", "image/png"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := validatedUpload{ContentLength: -1}
			err := codec.Decode(TestSource(t, tt.pairs...), &got)
			if !tt.wantErr {
				require.NoError(t, err)
				assert.GreaterOrEqual(t, got.ContentLength, int64(0))

				return
			}

			herr := AssertError(t, err, CodeCustom, "")
			assert.Equal(t, OpDecode, herr.Op)

			var verrs validator.ValidationErrors
			require.ErrorAs(t, err, &verrs)
			assert.NotEmpty(t, verrs)

			// Rejected records are not written back.
			assert.Equal(t, int64(-1), got.ContentLength)
		})
	}
}

func TestDecodeRecord_WithValidator(t *testing.T) {
	t.Parallel()

	errTooLong := errors.New("content too long")
	check := ValidatorFunc(func(v any) error {
		if rec, ok := v.(*manualUpload); ok && rec.Length > 10 {
			return errTooLong
		}

		return nil
	})

	var rec manualUpload
	err := DecodeRecord(TestSource(t, "content_length", "11"), manualSchema, &rec, WithValidator(check))
	require.ErrorIs(t, err, errTooLong)
	assert.Equal(t, CodeCustom, ErrorCode(err))

	require.NoError(t, DecodeRecord(TestSource(t, "content_length", "3"), manualSchema, &rec, WithValidator(check)))
}
