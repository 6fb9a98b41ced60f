package validation

import (
	"fmt"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"sort"
	"strings"

	apperrors "gradesheet/internal/errors"
)

// Accepted export content types by extension. An empty or generic
// content type is accepted for either extension; browsers send both.
var allowedContentTypes = map[string][]string{
	".csv": {
		"text/csv",
		"application/csv",
		"text/plain",
		"application/vnd.ms-excel",
	},
	".xlsx": {
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		"application/zip",
	},
}

const genericContentType = "application/octet-stream"

// FileValidator checks exports before they reach the reader, for the CLI
// and for uploads.
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger.With(slog.String("component", "file_validator")),
	}
}

// IsExport reports whether name has an export extension and is not an
// Office lock file.
func IsExport(name string) bool {
	base := filepath.Base(name)
	if strings.HasPrefix(base, "~$") {
		return false
	}
	_, ok := allowedContentTypes[strings.ToLower(filepath.Ext(base))]
	return ok
}

// ValidateUpload checks an uploaded file's name, declared content type
// and size against maxBytes. maxBytes <= 0 disables the size check.
func (v *FileValidator) ValidateUpload(name, contentType string, size, maxBytes int64) error {
	if name == "" {
		return apperrors.ErrMissingFile
	}
	if maxBytes > 0 && size > maxBytes {
		v.logger.Warn("upload too large",
			slog.String("file_name", name),
			slog.Int64("size", size),
			slog.Int64("max_size", maxBytes))
		return apperrors.PayloadTooLarge(maxBytes)
	}
	if !IsExport(name) {
		v.logger.Warn("upload has unsupported extension", slog.String("file_name", name))
		return apperrors.ErrUnsupportedFileType
	}
	if !contentTypeAllowed(strings.ToLower(filepath.Ext(name)), contentType) {
		v.logger.Warn("upload has unsupported content type",
			slog.String("file_name", name),
			slog.String("content_type", contentType))
		return apperrors.ErrUnsupportedFileType
	}
	return nil
}

func contentTypeAllowed(ext, contentType string) bool {
	if contentType == "" {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	if mediaType == genericContentType {
		return true
	}
	for _, allowed := range allowedContentTypes[ext] {
		if mediaType == allowed {
			return true
		}
	}
	return false
}

// ValidateExport checks that path is a readable export file.
func (v *FileValidator) ValidateExport(path string) error {
	if err := v.ValidateFile(path); err != nil {
		return err
	}
	if !IsExport(path) {
		v.logger.Error("file is not an export",
			slog.String("file", path),
			slog.String("extension", filepath.Ext(path)))
		return apperrors.NewAppValidationError(
			fmt.Sprintf("file %s is not a .csv or .xlsx export", path), nil,
		).WithContext("file", path)
	}
	return nil
}

// ValidateFile checks if a specific file exists and is readable
func (v *FileValidator) ValidateFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Error("file does not exist", slog.String("file", path))
		return apperrors.NewNotFoundError(path)
	}
	if err != nil {
		return fmt.Errorf("failed to stat file %s: %w", path, err)
	}
	if info.IsDir() {
		return apperrors.NewAppValidationError(fmt.Sprintf("%s is a directory, not a file", path), nil)
	}

	file, err := os.Open(path)
	if err != nil {
		v.logger.Error("file is not readable",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return fmt.Errorf("file %s is not readable: %w", path, err)
	}
	file.Close()

	v.logger.Debug("file validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ExpandInputs resolves CLI arguments into export files. Directories
// contribute their exports, sorted by name; files are validated as given.
func (v *FileValidator) ExpandInputs(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, apperrors.NewNotFoundError(arg)
			}
			return nil, fmt.Errorf("failed to stat %s: %w", arg, err)
		}
		if !info.IsDir() {
			if err := v.ValidateExport(arg); err != nil {
				return nil, err
			}
			files = append(files, arg)
			continue
		}

		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, fmt.Errorf("failed to read directory %s: %w", arg, err)
		}
		var found []string
		for _, e := range entries {
			if !e.IsDir() && IsExport(e.Name()) {
				found = append(found, filepath.Join(arg, e.Name()))
			}
		}
		sort.Strings(found)
		if len(found) == 0 {
			v.logger.Warn("no exports found in directory", slog.String("directory", arg))
		}
		files = append(files, found...)
	}
	return files, nil
}

// ValidateOutputDirectory ensures output directory exists or can be created
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apperrors.NewStorageError("failed to create output directory", err).WithContext("dir", dir)
	}

	testFile := filepath.Join(dir, ".write_test")
	file, err := os.Create(testFile)
	if err != nil {
		return apperrors.NewStorageError("output directory is not writable", err).WithContext("dir", dir)
	}
	file.Close()
	os.Remove(testFile)

	v.logger.Debug("output directory validated", slog.String("directory", dir))
	return nil
}
