package exporter

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	apperrors "gradesheet/internal/errors"
	"gradesheet/pkg/contracts/domain"
)

// Writer encodes a grade sheet in one output format.
type Writer interface {
	Write(w io.Writer, sheet *domain.GradeSheet) error
	Extension() string
	ContentType() string
}

// New returns the writer for format: json, csv or xlsx.
func New(format string, logger *slog.Logger) (Writer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch format {
	case "json":
		return NewJSONWriter(true), nil
	case "csv":
		return NewCSVWriter(logger, true), nil
	case "xlsx":
		return NewXLSXWriter(logger), nil
	default:
		return nil, apperrors.NewAppValidationError(fmt.Sprintf("unknown output format %q", format), nil).
			WithContext("format", format)
	}
}

// StreamRenderer renders grade sheets into an io.Writer such as an HTTP
// response.
type StreamRenderer struct {
	dst    io.Writer
	writer Writer
}

// NewStreamRenderer creates a renderer writing to dst
func NewStreamRenderer(dst io.Writer, writer Writer) *StreamRenderer {
	return &StreamRenderer{dst: dst, writer: writer}
}

// Render implements dataprocessing.Renderer
func (r *StreamRenderer) Render(_ context.Context, sheet *domain.GradeSheet) error {
	return r.writer.Write(r.dst, sheet)
}

// FileRenderer renders grade sheets to <dir>/<name>.<ext>.
type FileRenderer struct {
	dir    string
	name   string
	writer Writer
	logger *slog.Logger
	path   string
}

// NewFileRenderer creates a renderer writing one file per call to Render
func NewFileRenderer(dir, name string, writer Writer, logger *slog.Logger) *FileRenderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileRenderer{
		dir:    dir,
		name:   name,
		writer: writer,
		logger: logger.With(slog.String("component", "file_renderer")),
	}
}

// Path returns the file written by the last successful Render.
func (r *FileRenderer) Path() string {
	return r.path
}

// Render implements dataprocessing.Renderer
func (r *FileRenderer) Render(ctx context.Context, sheet *domain.GradeSheet) (err error) {
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return apperrors.NewStorageError("failed to create output directory", err).WithContext("dir", r.dir)
	}

	path := filepath.Join(r.dir, r.name+r.writer.Extension())
	f, err := os.Create(path)
	if err != nil {
		return apperrors.NewStorageError("failed to create output file", err).WithContext("path", path)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = apperrors.NewStorageError("failed to close output file", cerr).WithContext("path", path)
		}
	}()

	if err := r.writer.Write(f, sheet); err != nil {
		return apperrors.NewStorageError("failed to write grade sheet", err).WithContext("path", path)
	}

	r.path = path
	r.logger.InfoContext(ctx, "grade sheet written",
		slog.String("path", path),
		slog.Int("students", len(sheet.Students)))
	return nil
}
