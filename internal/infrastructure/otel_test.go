package infrastructure

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"gradesheet/internal/config"
	"gradesheet/pkg/contracts/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestInitializeOTel_Disabled(t *testing.T) {
	cfg := config.Default().Telemetry
	cfg.TraceExporter = "none"
	cfg.MetricExporter = "none"

	providers, err := InitializeOTel(cfg, discardLogger())
	require.NoError(t, err)
	assert.Nil(t, providers.TracerProvider)
	assert.Nil(t, providers.MeterProvider)
	assert.Nil(t, providers.PrometheusHTTP)
	assert.NotNil(t, providers.Tracer)
	assert.NotNil(t, providers.Meter)
	assert.NoError(t, providers.Shutdown(context.Background()))
}

func TestInitializeOTel_Enabled(t *testing.T) {
	cfg := config.Default().Telemetry
	cfg.TraceExporter = "stdout"
	cfg.MetricExporter = "prometheus"

	providers, err := InitializeOTel(cfg, discardLogger())
	require.NoError(t, err)
	require.NotNil(t, providers.TracerProvider)
	require.NotNil(t, providers.MeterProvider)
	assert.NotNil(t, providers.PrometheusHTTP)

	ctx, span := providers.Tracer.Start(context.Background(), "pipeline.run")
	assert.NotEmpty(t, TraceIDFromContext(ctx))
	span.End()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, providers.Shutdown(ctx))
}

func TestInitializeOTel_Unsupported(t *testing.T) {
	cfg := config.Default().Telemetry
	cfg.TraceExporter = "jaeger"

	_, err := InitializeOTel(cfg, discardLogger())
	assert.Error(t, err)
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

func sumWhere(t *testing.T, data metricdata.Aggregation, key, value string) int64 {
	t.Helper()
	sum, ok := data.(metricdata.Sum[int64])
	require.True(t, ok, "expected int64 sum, got %T", data)
	var total int64
	for _, dp := range sum.DataPoints {
		if v, ok := dp.Attributes.Value(attribute.Key(key)); ok && v.AsString() == value {
			total += dp.Value
		}
	}
	return total
}

func TestPipelineMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer provider.Shutdown(context.Background())

	m, err := NewPipelineMetrics(provider.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordRun(ctx, domain.PipelineStats{
		Layout:       domain.LayoutHorizontal,
		RowsAccepted: 5,
		RowsRejected: 1,
		Students:     2,
		Semesters:    2,
	}, 40*time.Millisecond)
	m.RecordFailure(ctx, "empty_input")

	data := collect(t, reader)
	assert.Equal(t, int64(1), sumWhere(t, data["gradesheet_pipeline_runs_total"], "layout", "horizontal"))
	assert.Equal(t, int64(5), sumWhere(t, data["gradesheet_pipeline_rows_total"], "outcome", "accepted"))
	assert.Equal(t, int64(1), sumWhere(t, data["gradesheet_pipeline_rows_total"], "outcome", "rejected"))
	assert.Equal(t, int64(2), sumWhere(t, data["gradesheet_pipeline_students_total"], "layout", "horizontal"))
	assert.Equal(t, int64(1), sumWhere(t, data["gradesheet_pipeline_failures_total"], "reason", "empty_input"))
	assert.Contains(t, data, "gradesheet_pipeline_duration_seconds")
}

func TestPipelineMetrics_NilSafe(t *testing.T) {
	var m *PipelineMetrics
	assert.NotPanics(t, func() {
		m.RecordRun(context.Background(), domain.PipelineStats{}, time.Second)
		m.RecordFailure(context.Background(), "x")
	})

	var h *HTTPMetrics
	assert.NotPanics(t, func() { h.Start(context.Background(), "GET")("/", 200) })
}

func TestHTTPMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer provider.Shutdown(context.Background())

	h, err := NewHTTPMetrics(provider.Meter("test"))
	require.NoError(t, err)

	done := h.Start(context.Background(), "POST")
	done("/api/gradesheets", 200)

	data := collect(t, reader)
	assert.Equal(t, int64(1), sumWhere(t, data["http_requests_total"], "route", "/api/gradesheets"))
	assert.Equal(t, int64(0), sumWhere(t, data["http_active_requests"], "method", "POST"))
}
