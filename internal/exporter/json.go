package exporter

import (
	"encoding/json"
	"fmt"
	"io"

	"gradesheet/pkg/contracts/domain"
)

// JSONWriter writes the student tree as JSON
type JSONWriter struct {
	indent bool
}

// NewJSONWriter creates a JSON writer
func NewJSONWriter(indent bool) *JSONWriter {
	return &JSONWriter{indent: indent}
}

// Write encodes the whole grade sheet, statistics included.
func (j *JSONWriter) Write(w io.Writer, sheet *domain.GradeSheet) error {
	enc := json.NewEncoder(w)
	if j.indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(sheet); err != nil {
		return fmt.Errorf("failed to encode grade sheet: %w", err)
	}
	return nil
}

func (j *JSONWriter) Extension() string   { return ".json" }
func (j *JSONWriter) ContentType() string { return "application/json" }
