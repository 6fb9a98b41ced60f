package dataprocessing

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	apperrors "gradesheet/internal/errors"
)

const utf8BOM = "\ufeff"

// Reader parses CSV and XLSX exports into a Table. The first row is the
// header; rows with no content in any cell are dropped.
type Reader struct {
	logger *slog.Logger
}

// NewReader creates a reader
func NewReader(logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reader{logger: logger.With(slog.String("component", "reader"))}
}

// ReadFile opens path and parses it according to its extension.
func (r *Reader) ReadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewParsingError("failed to open export", err).WithContext("path", path)
	}
	defer f.Close()
	return r.Read(filepath.Base(path), f)
}

// Read parses src, choosing the format from the extension of name.
func (r *Reader) Read(name string, src io.Reader) (*Table, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return r.ReadCSV(src)
	case ".xlsx":
		return r.ReadXLSX(src)
	default:
		return nil, apperrors.NewAppValidationError(
			fmt.Sprintf("cannot read %q", name), ErrUnsupportedFormat,
		).WithContext("file_name", name)
	}
}

// ReadCSV parses a comma separated export. A leading byte order mark is
// removed from the first header cell.
func (r *Reader) ReadCSV(src io.Reader) (*Table, error) {
	cr := csv.NewReader(src)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, apperrors.NewParsingError("failed to parse CSV export", err)
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], utf8BOM)
	}

	t := r.tableFrom(rows)
	r.logger.Debug("CSV export read",
		slog.Int("columns", t.Schema.Len()),
		slog.Int("records", t.Len()))
	return t, nil
}

// ReadXLSX parses the first sheet of a workbook.
func (r *Reader) ReadXLSX(src io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(src)
	if err != nil {
		return nil, apperrors.NewParsingError("failed to open workbook", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperrors.NewParsingError("workbook has no sheets", nil)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, apperrors.NewParsingError("failed to read sheet", err).WithContext("sheet", sheets[0])
	}

	t := r.tableFrom(rows)
	r.logger.Debug("XLSX export read",
		slog.String("sheet", sheets[0]),
		slog.Int("columns", t.Schema.Len()),
		slog.Int("records", t.Len()))
	return t, nil
}

// tableFrom splits off the header and drops blank rows.
func (r *Reader) tableFrom(rows [][]string) *Table {
	var header []string
	data := make([][]string, 0, len(rows))
	skipped := 0
	for _, row := range rows {
		if isBlankRow(row) {
			skipped++
			continue
		}
		if header == nil {
			header = row
			continue
		}
		data = append(data, row)
	}
	if skipped > 0 {
		r.logger.Debug("blank rows skipped", slog.Int("count", skipped))
	}
	return NewTable(header, data)
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if cell != "" {
			return false
		}
	}
	return true
}
