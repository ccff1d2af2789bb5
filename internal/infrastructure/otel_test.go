package infrastructure

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/leonardosegantin10-br/dashboard-cfem-crm/internal/config"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestInitializeOTel(t *testing.T) {
	tests := []struct {
		name        string
		cfg         config.TelemetryConfig
		wantErr     bool
		wantTracing bool
		wantMetrics bool
	}{
		{
			name:        "metrics only",
			cfg:         config.TelemetryConfig{EnableMetrics: true, MetricExporter: "prometheus", Environment: "test"},
			wantMetrics: true,
		},
		{
			name:        "tracing and metrics",
			cfg:         config.TelemetryConfig{EnableTracing: true, TraceExporter: "stdout", EnableMetrics: true, MetricExporter: "prometheus", SampleRatio: 1},
			wantTracing: true,
			wantMetrics: true,
		},
		{
			name: "exporters set to none",
			cfg:  config.TelemetryConfig{EnableTracing: true, TraceExporter: "none", EnableMetrics: true, MetricExporter: "none"},
		},
		{
			name:    "unsupported trace exporter",
			cfg:     config.TelemetryConfig{EnableTracing: true, TraceExporter: "jaeger"},
			wantErr: true,
		},
		{
			name:    "unsupported metric exporter",
			cfg:     config.TelemetryConfig{EnableMetrics: true, MetricExporter: "statsd"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			providers, err := InitializeOTel(tt.cfg, quietLogger())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			defer providers.Shutdown(context.Background())

			assert.NotNil(t, providers.Tracer)
			assert.NotNil(t, providers.Meter)
			assert.Equal(t, tt.wantTracing, providers.TracerProvider != nil)
			assert.Equal(t, tt.wantMetrics, providers.MeterProvider != nil)
			assert.Equal(t, tt.wantMetrics, providers.PrometheusHTTP != nil)
		})
	}
}

func TestPrometheusEndpoint(t *testing.T) {
	providers, err := InitializeOTel(config.TelemetryConfig{EnableMetrics: true, MetricExporter: "prometheus"}, quietLogger())
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	pm, err := NewPipelineMetrics(providers.Meter)
	require.NoError(t, err)
	pm.RecordLoad(context.Background(), 10, 1, nil)

	rec := httptest.NewRecorder()
	providers.PrometheusHTTP.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "cfem_ingest_rows_total")
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := make(map[string]metricdata.Aggregation)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m.Data
		}
	}
	return out
}

func sumValue(t *testing.T, agg metricdata.Aggregation) int64 {
	t.Helper()
	sum, ok := agg.(metricdata.Sum[int64])
	require.True(t, ok, "expected int64 sum, got %T", agg)
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestPipelineMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer mp.Shutdown(context.Background())

	pm, err := NewPipelineMetrics(mp.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	pm.RecordLoad(ctx, 120, 3, nil)
	pm.RecordLoad(ctx, 0, 0, errors.New("bad header"))
	pm.RecordStage(ctx, StageClean, 25*time.Millisecond)
	pm.RecordRecompute(ctx, "pareto")
	pm.RecordRecompute(ctx, "simulate")

	metrics := collect(t, reader)
	assert.Equal(t, int64(120), sumValue(t, metrics["cfem_ingest_rows_total"]))
	assert.Equal(t, int64(3), sumValue(t, metrics["cfem_ingest_dropped_rows_total"]))
	assert.Equal(t, int64(1), sumValue(t, metrics["cfem_ingest_failures_total"]))
	assert.Equal(t, int64(2), sumValue(t, metrics["cfem_recompute_total"]))

	hist, ok := metrics["cfem_stage_duration_seconds"].(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	assert.Equal(t, uint64(1), hist.DataPoints[0].Count)
}

func TestPipelineMetricsNilSafe(t *testing.T) {
	var pm *PipelineMetrics
	assert.NotPanics(t, func() {
		pm.RecordLoad(context.Background(), 1, 0, nil)
		pm.RecordStage(context.Background(), StageRead, time.Second)
		pm.RecordRecompute(context.Background(), "overview")
	})
}

func TestNewHTTPMetrics(t *testing.T) {
	m, err := NewHTTPMetrics(nil)
	require.NoError(t, err)
	assert.NotNil(t, m.RequestsTotal)
	assert.NotNil(t, m.RequestDuration)
	assert.NotNil(t, m.ActiveRequests)
}

func TestTraceCorrelation(t *testing.T) {
	providers, err := InitializeOTel(config.TelemetryConfig{EnableTracing: true, TraceExporter: "stdout", SampleRatio: 1}, quietLogger())
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	ctx, span := StartSpan(context.Background(), "load")
	defer span.End()

	traceID := TraceIDFromContext(ctx)
	assert.NotEmpty(t, traceID)
	assert.Equal(t, span.SpanContext().TraceID().String(), traceID)

	assert.NotPanics(t, func() {
		AddSpanEvent(ctx, "rows", map[string]interface{}{"count": 3, "source": "base.csv", "ok": true, "ratio": 0.5, "n": int64(4), "other": []int{1}})
		RecordError(ctx, errors.New("boom"))
	})
}

func TestTraceIDFromContextWithoutSpan(t *testing.T) {
	assert.Empty(t, TraceIDFromContext(context.Background()))
}
