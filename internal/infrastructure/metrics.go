package infrastructure

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"gradesheet/pkg/contracts/domain"
)

// PipelineMetrics records grade sheet pipeline runs. A nil *PipelineMetrics
// records nothing.
type PipelineMetrics struct {
	runs      metric.Int64Counter
	failures  metric.Int64Counter
	rows      metric.Int64Counter
	students  metric.Int64Counter
	semesters metric.Int64Counter
	duration  metric.Float64Histogram
}

// NewPipelineMetrics creates the pipeline instruments on meter
func NewPipelineMetrics(meter metric.Meter) (*PipelineMetrics, error) {
	var (
		m   PipelineMetrics
		err error
	)

	if m.runs, err = meter.Int64Counter("gradesheet_pipeline_runs_total",
		metric.WithDescription("Completed pipeline runs")); err != nil {
		return nil, fmt.Errorf("runs counter: %w", err)
	}
	if m.failures, err = meter.Int64Counter("gradesheet_pipeline_failures_total",
		metric.WithDescription("Pipeline runs that failed")); err != nil {
		return nil, fmt.Errorf("failures counter: %w", err)
	}
	if m.rows, err = meter.Int64Counter("gradesheet_pipeline_rows_total",
		metric.WithDescription("Canonical rows processed, by outcome")); err != nil {
		return nil, fmt.Errorf("rows counter: %w", err)
	}
	if m.students, err = meter.Int64Counter("gradesheet_pipeline_students_total",
		metric.WithDescription("Students produced")); err != nil {
		return nil, fmt.Errorf("students counter: %w", err)
	}
	if m.semesters, err = meter.Int64Counter("gradesheet_pipeline_semesters_total",
		metric.WithDescription("Semester results produced")); err != nil {
		return nil, fmt.Errorf("semesters counter: %w", err)
	}
	if m.duration, err = meter.Float64Histogram("gradesheet_pipeline_duration_seconds",
		metric.WithDescription("Pipeline run duration"),
		metric.WithUnit("s")); err != nil {
		return nil, fmt.Errorf("duration histogram: %w", err)
	}

	return &m, nil
}

// RecordRun records a successful run
func (m *PipelineMetrics) RecordRun(ctx context.Context, stats domain.PipelineStats, duration time.Duration) {
	if m == nil {
		return
	}
	layout := attribute.String("layout", stats.Layout.String())

	m.runs.Add(ctx, 1, metric.WithAttributes(layout))
	m.rows.Add(ctx, int64(stats.RowsAccepted), metric.WithAttributes(layout, attribute.String("outcome", "accepted")))
	m.rows.Add(ctx, int64(stats.RowsRejected), metric.WithAttributes(layout, attribute.String("outcome", "rejected")))
	m.students.Add(ctx, int64(stats.Students), metric.WithAttributes(layout))
	m.semesters.Add(ctx, int64(stats.Semesters), metric.WithAttributes(layout))
	m.duration.Record(ctx, duration.Seconds(), metric.WithAttributes(layout))
}

// RecordFailure records a run that produced no grade sheet
func (m *PipelineMetrics) RecordFailure(ctx context.Context, reason string) {
	if m == nil {
		return
	}
	m.failures.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}

// HTTPMetrics records request counts and latency
type HTTPMetrics struct {
	requests metric.Int64Counter
	duration metric.Float64Histogram
	active   metric.Int64UpDownCounter
}

// NewHTTPMetrics creates the HTTP instruments on meter
func NewHTTPMetrics(meter metric.Meter) (*HTTPMetrics, error) {
	requests, err := meter.Int64Counter("http_requests_total",
		metric.WithDescription("Total number of HTTP requests"))
	if err != nil {
		return nil, err
	}
	duration, err := meter.Float64Histogram("http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}
	active, err := meter.Int64UpDownCounter("http_active_requests",
		metric.WithDescription("Number of active HTTP requests"))
	if err != nil {
		return nil, err
	}
	return &HTTPMetrics{requests: requests, duration: duration, active: active}, nil
}

// Start marks a request as in flight and returns the function that records
// its completion. The route is passed at completion because routers only
// resolve it after dispatch.
func (m *HTTPMetrics) Start(ctx context.Context, method string) func(route string, status int) {
	if m == nil {
		return func(string, int) {}
	}
	start := time.Now()
	inFlight := metric.WithAttributes(attribute.String("method", method))
	m.active.Add(ctx, 1, inFlight)

	return func(route string, status int) {
		attrs := metric.WithAttributes(
			attribute.String("method", method),
			attribute.String("route", route),
			attribute.Int("status", status),
		)
		m.active.Add(ctx, -1, inFlight)
		m.requests.Add(ctx, 1, attrs)
		m.duration.Record(ctx, time.Since(start).Seconds(), attrs)
	}
}
