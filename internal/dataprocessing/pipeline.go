package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	apperrors "gradesheet/internal/errors"
	"gradesheet/pkg/contracts/domain"
)

const tracerName = "gradesheet/dataprocessing"

// RunRecorder receives the outcome of every pipeline run.
type RunRecorder interface {
	RecordRun(ctx context.Context, stats domain.PipelineStats, duration time.Duration)
	RecordFailure(ctx context.Context, reason string)
}

// Pipeline turns a parsed export into a grade sheet: detect the layout,
// normalize horizontal exports, aggregate. Runs share no state.
type Pipeline struct {
	base       *slog.Logger
	logger     *slog.Logger
	tracer     trace.Tracer
	recorder   RunRecorder
	options    ProcessingOptions
	normalizer *HorizontalNormalizer
}

// PipelineOption configures a Pipeline
type PipelineOption func(*Pipeline)

// WithTracer sets the tracer used for stage spans.
func WithTracer(tracer trace.Tracer) PipelineOption {
	return func(p *Pipeline) {
		if tracer != nil {
			p.tracer = tracer
		}
	}
}

// WithRecorder sets the run metrics recorder.
func WithRecorder(recorder RunRecorder) PipelineOption {
	return func(p *Pipeline) {
		p.recorder = recorder
	}
}

// WithProcessingOptions overrides the aggregation options.
func WithProcessingOptions(opts ProcessingOptions) PipelineOption {
	return func(p *Pipeline) {
		p.options = opts
	}
}

// NewPipeline creates a pipeline
func NewPipeline(logger *slog.Logger, opts ...PipelineOption) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Pipeline{
		base:    logger,
		logger:  logger.With(slog.String("component", "pipeline")),
		tracer:  otel.Tracer(tracerName),
		options: DefaultOptions(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.normalizer = NewHorizontalNormalizer(logger)
	return p
}

// Run processes one export. It fails only when the export is empty or a
// horizontal export lacks its metadata rows; bad rows and unparseable
// numbers degrade into the output instead.
func (p *Pipeline) Run(ctx context.Context, t *Table) (*domain.GradeSheet, error) {
	start := time.Now()
	ctx, span := p.tracer.Start(ctx, "pipeline.run",
		trace.WithAttributes(attribute.Int("records", t.Len())))
	defer span.End()

	if t.Len() == 0 {
		err := apperrors.NewLayoutError("nothing to detect a layout from", ErrEmptyInput)
		p.fail(ctx, span, "empty_input", err)
		return nil, err
	}

	layout := DetectLayout(t.Records[0])
	span.SetAttributes(attribute.String("layout", layout.String()))

	rows, err := p.canonicalize(ctx, layout, t)
	if err != nil {
		p.fail(ctx, span, "unrecognized_layout", err)
		return nil, err
	}

	agg := p.aggregate(ctx, rows)

	students := agg.Students()
	if students == nil {
		students = []*domain.Student{}
	}
	sheet := &domain.GradeSheet{
		Students: students,
		Stats: domain.PipelineStats{
			Layout:        layout,
			RecordsRead:   t.Len(),
			RowsCanonical: len(rows),
			RowsAccepted:  agg.Accepted(),
			RowsRejected:  agg.Rejected(),
			Students:      len(students),
			Semesters:     agg.Semesters(),
		},
	}

	duration := time.Since(start)
	span.SetAttributes(
		attribute.Int("students", sheet.Stats.Students),
		attribute.Int("rows_rejected", sheet.Stats.RowsRejected),
	)
	span.SetStatus(codes.Ok, "")

	p.logger.InfoContext(ctx, "pipeline run complete",
		slog.String("layout", layout.String()),
		slog.Int("records", sheet.Stats.RecordsRead),
		slog.Int("rows", sheet.Stats.RowsCanonical),
		slog.Int("rows_rejected", sheet.Stats.RowsRejected),
		slog.Int("students", sheet.Stats.Students),
		slog.Int("semesters", sheet.Stats.Semesters),
		slog.Duration("duration", duration))

	if p.recorder != nil {
		p.recorder.RecordRun(ctx, sheet.Stats, duration)
	}

	return sheet, nil
}

// RunAndRender runs the pipeline and hands a successful result to r.
func (p *Pipeline) RunAndRender(ctx context.Context, t *Table, r Renderer) (*domain.GradeSheet, error) {
	sheet, err := p.Run(ctx, t)
	if err != nil {
		return nil, err
	}
	if err := r.Render(ctx, sheet); err != nil {
		return sheet, fmt.Errorf("render grade sheet: %w", err)
	}
	return sheet, nil
}

func (p *Pipeline) canonicalize(ctx context.Context, layout domain.Layout, t *Table) ([]CanonicalRow, error) {
	if layout == domain.LayoutVertical {
		return CanonicalFromTable(t), nil
	}

	_, span := p.tracer.Start(ctx, "pipeline.normalize")
	defer span.End()

	rows, err := p.normalizer.Normalize(t)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("rows", len(rows)))
	return rows, nil
}

func (p *Pipeline) aggregate(ctx context.Context, rows []CanonicalRow) *RecordAggregator {
	_, span := p.tracer.Start(ctx, "pipeline.aggregate",
		trace.WithAttributes(attribute.Int("rows", len(rows))))
	defer span.End()

	agg := NewRecordAggregator(p.base, p.options)
	agg.AddAll(rows)
	return agg
}

func (p *Pipeline) fail(ctx context.Context, span trace.Span, reason string, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	p.logger.WarnContext(ctx, "pipeline run failed",
		slog.String("reason", reason),
		slog.String("error", err.Error()))
	if p.recorder != nil {
		p.recorder.RecordFailure(ctx, reason)
	}
}
