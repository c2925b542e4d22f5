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

// Package headermetrics exports Prometheus and OpenTelemetry metrics for
// header marshaling.
//
// A [Collector] turns the [headermap.Events] of every decode and encode
// call into counters and a latency histogram:
//
//	headermap_operations_total{op, result}
//	headermap_fields_total{op, state}
//	headermap_failures_total{op, code}
//	headermap_operation_duration_seconds{op}
//
// Example:
//
//	reg := prometheus.NewRegistry()
//	collector := headermetrics.MustNew(reg)
//	codec := headermap.MustNew(headermap.WithEvents(collector.Events()))
//
// [OTelCollector] records the same measurements through an OpenTelemetry
// meter.
package headermetrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"rivaas.dev/headermap"
)

const (
	resultSuccess = "success"
	resultError   = "error"

	stateWritten = "present"
	stateOmitted = "omitted"
)

// Option configures a [Collector].
type Option func(*config)

type config struct {
	namespace   string
	buckets     []float64
	constLabels prometheus.Labels
}

// WithNamespace sets the metric name prefix. The default is "headermap".
func WithNamespace(ns string) Option {
	return func(c *config) {
		c.namespace = ns
	}
}

// WithBuckets sets the duration histogram buckets, in seconds.
func WithBuckets(buckets ...float64) Option {
	return func(c *config) {
		c.buckets = buckets
	}
}

// WithConstLabels attaches fixed labels to every metric.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *config) {
		c.constLabels = labels
	}
}

// Collector records marshaling metrics.
type Collector struct {
	operations *prometheus.CounterVec
	fields     *prometheus.CounterVec
	failures   *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// New creates a Collector and registers its metrics with reg.
// A nil reg registers with prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer, opts ...Option) (*Collector, error) {
	cfg := &config{
		namespace: "headermap",
		buckets:   []float64{.000001, .000005, .00001, .00005, .0001, .0005, .001, .005},
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	c := &Collector{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.namespace,
			Name:        "operations_total",
			Help:        "Decode and encode calls by result.",
			ConstLabels: cfg.constLabels,
		}, []string{"op", "result"}),
		fields: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.namespace,
			Name:        "fields_total",
			Help:        "Fields visited by decode and encode calls.",
			ConstLabels: cfg.constLabels,
		}, []string{"op", "state"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.namespace,
			Name:        "failures_total",
			Help:        "Failed calls by error code.",
			ConstLabels: cfg.constLabels,
		}, []string{"op", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   cfg.namespace,
			Name:        "operation_duration_seconds",
			Help:        "Wall time of decode and encode calls.",
			Buckets:     cfg.buckets,
			ConstLabels: cfg.constLabels,
		}, []string{"op"}),
	}

	cols := []prometheus.Collector{c.operations, c.fields, c.failures, c.duration}
	for i, col := range cols {
		if err := reg.Register(col); err != nil {
			for _, done := range cols[:i] {
				reg.Unregister(done)
			}

			return nil, err
		}
	}

	return c, nil
}

// MustNew is like [New] but panics when registration fails.
func MustNew(reg prometheus.Registerer, opts ...Option) *Collector {
	c, err := New(reg, opts...)
	if err != nil {
		panic("headermetrics.MustNew: " + err.Error())
	}

	return c
}

// Events returns hooks that feed c. Combine them with other hooks through
// [headermap.JoinEvents].
func (c *Collector) Events() headermap.Events {
	return headermap.Events{Done: c.Observe}
}

// Observe records one finished call.
func (c *Collector) Observe(s headermap.Stats) {
	op := s.Op.String()

	result := resultSuccess
	if s.Err != nil {
		result = resultError
		c.failures.WithLabelValues(op, s.Code()).Inc()
	}
	c.operations.WithLabelValues(op, result).Inc()

	if present := s.FieldsProcessed - s.FieldsOmitted; present > 0 {
		c.fields.WithLabelValues(op, stateWritten).Add(float64(present))
	}
	if s.FieldsOmitted > 0 {
		c.fields.WithLabelValues(op, stateOmitted).Add(float64(s.FieldsOmitted))
	}
	c.duration.WithLabelValues(op).Observe(s.Duration.Seconds())
}
