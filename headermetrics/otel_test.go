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

package headermetrics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"rivaas.dev/headermap"
)

// sumOf returns the value of the counter data point matching attrs.
func sumOf(t *testing.T, rm metricdata.ResourceMetrics, name string, attrs ...attribute.KeyValue) int64 {
	t.Helper()

	want := attribute.NewSet(attrs...)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, "metric %s is %T", name, m.Data)
			for _, dp := range sum.DataPoints {
				if dp.Attributes.Equals(&want) {
					return dp.Value
				}
			}
		}
	}

	return 0
}

func TestOTelCollector(t *testing.T) {
	t.Parallel()

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	c, err := NewOTel(provider.Meter("test"))
	require.NoError(t, err)

	codec := headermap.MustNew(headermap.WithEvents(headermap.JoinEvents(c.Events())))
	var up upload
	require.NoError(t, codec.Decode(headermap.NewHeaders("content_length", "1", "content_type", "x"), &up))
	err = codec.Decode(headermap.NewHeaders(), &up)
	headermap.AssertError(t, err, headermap.CodeMissingField, "content_length")

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	decode := attribute.String("op", "decode")
	assert.Equal(t, int64(1), sumOf(t, rm, "headermap.operations", decode, attribute.String("result", "success")))
	assert.Equal(t, int64(1), sumOf(t, rm, "headermap.operations", decode, attribute.String("result", "error")))
	assert.Equal(t, int64(1), sumOf(t, rm, "headermap.failures", decode, attribute.String("code", "missing_field")))
	assert.Equal(t, int64(3), sumOf(t, rm, "headermap.fields", decode, attribute.String("state", "present")))
	assert.Zero(t, sumOf(t, rm, "headermap.fields", decode, attribute.String("state", "omitted")))

	var names []string
	for _, m := range rm.ScopeMetrics[0].Metrics {
		names = append(names, m.Name)
	}
	assert.Contains(t, names, "headermap.operation.duration")
}

func TestNewOTel_GlobalMeter(t *testing.T) {
	t.Parallel()

	c, err := NewOTel(nil)
	require.NoError(t, err)
	c.Observe(headermap.Stats{Op: headermap.OpEncode, FieldsProcessed: 2, FieldsOmitted: 1})
}
