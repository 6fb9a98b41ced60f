package http

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"gradesheet/internal/dataprocessing"
	apperrors "gradesheet/internal/errors"
	"gradesheet/internal/exporter"
	"gradesheet/internal/middleware"
	"gradesheet/internal/services"
	"gradesheet/internal/validation"
	"gradesheet/pkg/contracts/domain"
)

// UploadField is the multipart field carrying the export.
const UploadField = "file"

// multipartMemory is how much of a multipart body is kept in memory
// before spilling to temporary files.
const multipartMemory = 8 << 20

// GradeSheetService is what the handler needs from the service layer
type GradeSheetService interface {
	ProcessUpload(ctx context.Context, upload services.Upload, renderer dataprocessing.Renderer) (*domain.GradeSheet, error)
}

// UploadRequest is the validated form of an upload request.
type UploadRequest struct {
	FileName string `json:"file_name" validate:"required,max=255,filename"`
	Output   string `json:"output" validate:"required,oneof=json csv xlsx"`
	Confirm  bool   `json:"confirm"`
}

// GradeSheetHandler turns uploaded exports into grade sheets.
type GradeSheetHandler struct {
	service        GradeSheetService
	validator      *middleware.Validator
	files          *validation.FileValidator
	errorHandler   *apperrors.ErrorHandler
	logger         *slog.Logger
	defaultOutput  string
	maxUploadBytes int64
}

// NewGradeSheetHandler creates a grade sheet handler. defaultOutput is used
// when the request names no output format.
func NewGradeSheetHandler(
	service GradeSheetService,
	errorHandler *apperrors.ErrorHandler,
	logger *slog.Logger,
	defaultOutput string,
	maxUploadBytes int64,
) *GradeSheetHandler {
	return &GradeSheetHandler{
		service:        service,
		validator:      middleware.NewValidator(),
		files:          validation.NewFileValidator(logger),
		errorHandler:   errorHandler,
		logger:         logger.With(slog.String("handler", "gradesheet")),
		defaultOutput:  defaultOutput,
		maxUploadBytes: maxUploadBytes,
	}
}

// Routes sets up the grade sheet routes
func (h *GradeSheetHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Upload)
	return r
}

// Upload handles POST /api/gradesheets?confirm=true&output=json|csv|xlsx
// with the export in the multipart field "file". Without confirm=true the
// body is not read and nothing is processed.
func (h *GradeSheetHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	confirm, _ := strconv.ParseBool(query.Get("confirm"))
	output := strings.ToLower(query.Get("output"))
	if output == "" {
		output = h.defaultOutput
	}

	writer, err := exporter.New(output, h.logger)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	upload := services.Upload{Confirmed: confirm}
	if confirm {
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			h.errorHandler.HandleError(w, r, h.formError(err))
			return
		}
		defer r.MultipartForm.RemoveAll()

		file, header, err := r.FormFile(UploadField)
		if err != nil {
			h.errorHandler.HandleError(w, r, h.formError(err))
			return
		}
		defer file.Close()

		req := UploadRequest{FileName: header.Filename, Output: output, Confirm: confirm}
		if err := h.validator.Struct(req); err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}
		contentType := header.Header.Get("Content-Type")
		if err := h.files.ValidateUpload(header.Filename, contentType, header.Size, h.maxUploadBytes); err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}

		upload.Name = header.Filename
		upload.ContentType = contentType
		upload.Body = file
	}

	var buf bytes.Buffer
	sheet, err := h.service.ProcessUpload(ctx, upload, exporter.NewStreamRenderer(&buf, writer))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", writer.ContentType())
	if output != "json" {
		name := strings.TrimSuffix(upload.Name, filepath.Ext(upload.Name)) + "-grades" + writer.Extension()
		w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	}
	w.Header().Set("X-Students", strconv.Itoa(sheet.Stats.Students))
	w.Header().Set("X-Rows-Rejected", strconv.Itoa(sheet.Stats.RowsRejected))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.WarnContext(ctx, "failed to write response", slog.String("error", err.Error()))
	}
}

func (h *GradeSheetHandler) formError(err error) error {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.Is(err, http.ErrMissingFile):
		return apperrors.ErrMissingFile
	case errors.As(err, &tooLarge):
		return apperrors.PayloadTooLarge(tooLarge.Limit)
	default:
		return apperrors.InvalidRequestWithError(err)
	}
}
