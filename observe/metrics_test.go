package observe

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestMetrics(t *testing.T) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewMetrics(mp)
	require.NoError(t, err)
	return m, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := map[string]metricdata.Metrics{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func TestRecordGeneration(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordGeneration(ctx, "openai", StatusOK, 2*time.Second)
	m.RecordGeneration(ctx, "openai", StatusOK, time.Second)
	m.RecordGeneration(ctx, "openai", StatusGenerationError, 0)

	got := collect(t, reader)

	sum, ok := got["speech.generations"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	counts := map[string]int64{}
	for _, dp := range sum.DataPoints {
		status, _ := dp.Attributes.Value(attribute.Key("status"))
		counts[status.AsString()] = dp.Value
	}
	assert.Equal(t, int64(2), counts[StatusOK])
	assert.Equal(t, int64(1), counts[StatusGenerationError])

	hist, ok := got["speech.generation.duration"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	assert.Equal(t, uint64(2), hist.DataPoints[0].Count)
}

func TestRecordAnalysisAndHTTP(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordAnalysis(ctx)
	m.RecordHTTPRequest(ctx, "POST", "/api/speech/analyze", 200, 10*time.Millisecond)

	got := collect(t, reader)
	assert.Contains(t, got, "speech.analyses")
	assert.Contains(t, got, "http.request.duration")
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordGeneration(context.Background(), "openai", StatusOK, time.Second)
		m.RecordAnalysis(context.Background())
		m.RecordHTTPRequest(context.Background(), "GET", "/", 200, time.Second)
	})
}
