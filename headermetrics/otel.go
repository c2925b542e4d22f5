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

package headermetrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"rivaas.dev/headermap"
)

// OTelCollector records marshaling metrics through an OpenTelemetry meter.
// It exposes the same measurements as [Collector] under dotted names:
//
//	headermap.operations{op, result}
//	headermap.fields{op, state}
//	headermap.failures{op, code}
//	headermap.operation.duration{op}
type OTelCollector struct {
	operations metric.Int64Counter
	fields     metric.Int64Counter
	failures   metric.Int64Counter
	duration   metric.Float64Histogram
}

// NewOTel creates an OTelCollector on meter. A nil meter uses the global
// meter provider.
//
// Example:
//
//	collector, err := headermetrics.NewOTel(provider.Meter("rivaas.dev/headermap"))
//	codec := headermap.MustNew(headermap.WithEvents(collector.Events()))
func NewOTel(meter metric.Meter) (*OTelCollector, error) {
	if meter == nil {
		meter = otel.Meter("rivaas.dev/headermap")
	}

	c := &OTelCollector{}
	var err error

	c.operations, err = meter.Int64Counter(
		"headermap.operations",
		metric.WithDescription("Decode and encode calls by result"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create operations counter: %w", err)
	}

	c.fields, err = meter.Int64Counter(
		"headermap.fields",
		metric.WithDescription("Fields visited by decode and encode calls"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create fields counter: %w", err)
	}

	c.failures, err = meter.Int64Counter(
		"headermap.failures",
		metric.WithDescription("Failed calls by error code"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create failures counter: %w", err)
	}

	c.duration, err = meter.Float64Histogram(
		"headermap.operation.duration",
		metric.WithDescription("Wall time of decode and encode calls"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create duration histogram: %w", err)
	}

	return c, nil
}

// Events returns hooks that feed c.
func (c *OTelCollector) Events() headermap.Events {
	return headermap.Events{Done: c.Observe}
}

// Observe records one finished call.
func (c *OTelCollector) Observe(s headermap.Stats) {
	ctx := context.Background()
	op := attribute.String("op", s.Op.String())

	result := resultSuccess
	if s.Err != nil {
		result = resultError
		c.failures.Add(ctx, 1, metric.WithAttributes(op, attribute.String("code", s.Code())))
	}
	c.operations.Add(ctx, 1, metric.WithAttributes(op, attribute.String("result", result)))

	if present := s.FieldsProcessed - s.FieldsOmitted; present > 0 {
		c.fields.Add(ctx, int64(present), metric.WithAttributes(op, attribute.String("state", stateWritten)))
	}
	if s.FieldsOmitted > 0 {
		c.fields.Add(ctx, int64(s.FieldsOmitted), metric.WithAttributes(op, attribute.String("state", stateOmitted)))
	}
	c.duration.Record(ctx, s.Duration.Seconds(), metric.WithAttributes(op))
}
