package services

import (
	"context"
	"io"
	"log/slog"
	"time"

	"gradesheet/internal/dataprocessing"
	apperrors "gradesheet/internal/errors"
	"gradesheet/internal/infrastructure"
	"gradesheet/pkg/contracts/domain"
)

// Upload is one export handed in for processing. Nothing is read from
// Body unless Confirmed is set.
type Upload struct {
	Name        string
	ContentType string
	Body        io.Reader
	Confirmed   bool
}

// TableReader parses an export into a table
type TableReader interface {
	Read(name string, src io.Reader) (*dataprocessing.Table, error)
}

// SheetPipeline runs a parsed export and renders the result
type SheetPipeline interface {
	RunAndRender(ctx context.Context, t *dataprocessing.Table, r dataprocessing.Renderer) (*domain.GradeSheet, error)
}

// GradeSheetService processes confirmed uploads into grade sheets.
type GradeSheetService struct {
	reader   TableReader
	pipeline SheetPipeline
	logger   *slog.Logger
}

// NewGradeSheetService creates a grade sheet service
func NewGradeSheetService(reader TableReader, pipeline SheetPipeline, logger *slog.Logger) *GradeSheetService {
	if logger == nil {
		logger = slog.Default()
	}
	return &GradeSheetService{
		reader:   reader,
		pipeline: pipeline,
		logger:   logger.With(slog.String("service", "gradesheet")),
	}
}

// ProcessUpload parses the upload, runs the pipeline and renders the grade
// sheet through renderer. An unconfirmed upload, or one without a body,
// returns ErrNotConfirmed and nothing is processed.
func (s *GradeSheetService) ProcessUpload(ctx context.Context, upload Upload, renderer dataprocessing.Renderer) (*domain.GradeSheet, error) {
	ctx = infrastructure.EnsureTraceID(ctx)
	traceID := infrastructure.GetTraceID(ctx)

	if !upload.Confirmed || upload.Body == nil {
		s.logger.InfoContext(ctx, "upload not confirmed, nothing processed",
			slog.String("trace_id", traceID),
			slog.String("file_name", upload.Name),
			slog.Bool("confirmed", upload.Confirmed),
			slog.Bool("has_body", upload.Body != nil))
		return nil, apperrors.ErrNotConfirmed
	}
	if renderer == nil {
		return nil, ErrNoRenderer
	}

	start := time.Now()
	table, err := s.reader.Read(upload.Name, upload.Body)
	if err != nil {
		s.logger.WarnContext(ctx, "upload could not be read",
			slog.String("trace_id", traceID),
			slog.String("file_name", upload.Name),
			slog.String("error_type", string(apperrors.TypeOf(err))),
			slog.String("error", err.Error()))
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sheet, err := s.pipeline.RunAndRender(ctx, table, renderer)
	if err != nil {
		return sheet, err
	}

	s.logger.InfoContext(ctx, "upload processed",
		slog.String("trace_id", traceID),
		slog.String("file_name", upload.Name),
		slog.String("layout", sheet.Stats.Layout.String()),
		slog.Int("students", sheet.Stats.Students),
		slog.Duration("duration", time.Since(start)))
	return sheet, nil
}
