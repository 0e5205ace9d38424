// Package observe holds the OpenTelemetry metric instruments of the speech
// service and the Prometheus bridge used to scrape them.
//
// Tests should build [Metrics] with [NewMetrics] on their own
// [metric.MeterProvider] (for example an SDK provider with a manual reader)
// to keep measurements isolated. A nil *Metrics is valid and records nothing.
package observe

import (
	"context"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "introspeechdev"

// Generation outcomes used as the "status" attribute.
const (
	StatusOK              = "ok"
	StatusInvalid         = "invalid"
	StatusGenerationError = "generation_error"
	StatusStorageError    = "storage_error"
)

type Metrics struct {
	// Generations counts speech generation attempts by provider and status.
	Generations metric.Int64Counter

	// GenerationDuration tracks the latency of the upstream generation call.
	GenerationDuration metric.Float64Histogram

	// Analyses counts analyzer runs.
	Analyses metric.Int64Counter

	// HTTPRequestDuration tracks HTTP handling time by method, route and status.
	HTTPRequestDuration metric.Float64Histogram
}

// Generation calls to hosted models take seconds, not milliseconds.
var latencyBuckets = []float64{
	0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 30, 60,
}

func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.Generations, err = m.Int64Counter("speech.generations",
		metric.WithDescription("Speech generation attempts."),
	); err != nil {
		return nil, err
	}
	if met.GenerationDuration, err = m.Float64Histogram("speech.generation.duration",
		metric.WithDescription("Latency of the upstream generation call."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.Analyses, err = m.Int64Counter("speech.analyses",
		metric.WithDescription("Speech analyzer runs."),
	); err != nil {
		return nil, err
	}
	if met.HTTPRequestDuration, err = m.Float64Histogram("http.request.duration",
		metric.WithDescription("HTTP request handling time."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}

	return met, nil
}

func (m *Metrics) RecordGeneration(ctx context.Context, provider, status string, d time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("status", status),
	)
	m.Generations.Add(ctx, 1, attrs)
	if d > 0 {
		m.GenerationDuration.Record(ctx, d.Seconds(), attrs)
	}
}

func (m *Metrics) RecordAnalysis(ctx context.Context) {
	if m == nil {
		return
	}
	m.Analyses.Add(ctx, 1)
}

func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestDuration.Record(ctx, d.Seconds(), metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("route", route),
		attribute.String("status", strconv.Itoa(status)),
	))
}
