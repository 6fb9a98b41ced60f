package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"gradesheet/pkg/contracts/domain"
)

// MarkHeaders are the columns of the flat CSV export, one line per mark.
var MarkHeaders = []string{
	"Roll No", "Name", "Program", "Category", "Campus", "ABC ID",
	"Semester", "Academic Year", "Batch",
	"Course Code", "Course Name", "Credit", "Full Mark", "Marks Obtained",
	"Grade Point", "Grade", "Credit Earned", "Date of Exam",
	"SGPA", "Semester Grade",
}

// CSVWriter writes grade sheets as flat CSV
type CSVWriter struct {
	logger    *slog.Logger
	bomPrefix bool // UTF-8 BOM so Excel detects the encoding
}

// NewCSVWriter creates a CSV writer
func NewCSVWriter(logger *slog.Logger, bomPrefix bool) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{
		logger:    logger.With(slog.String("component", "csv_writer")),
		bomPrefix: bomPrefix,
	}
}

// Write writes MarkHeaders followed by MarkRecords(sheet)
func (c *CSVWriter) Write(w io.Writer, sheet *domain.GradeSheet) error {
	if c.bomPrefix {
		if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(MarkHeaders); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	records := MarkRecords(sheet)
	for i, record := range records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	writer.Flush()

	c.logger.Debug("CSV grade sheet written", slog.Int("record_count", len(records)))
	return writer.Error()
}

func (c *CSVWriter) Extension() string   { return ".csv" }
func (c *CSVWriter) ContentType() string { return "text/csv; charset=utf-8" }

// MarkRecords flattens the tree in output order: students, their
// semesters, their marks.
func MarkRecords(sheet *domain.GradeSheet) [][]string {
	var records [][]string
	for _, s := range sheet.Students {
		for _, r := range s.Results {
			for _, m := range r.Marks {
				records = append(records, []string{
					s.RollNo, s.Name, s.Program, s.Category, s.Campus, s.ABCID,
					strconv.Itoa(r.Semester), r.AcademicYear, formatOptionalInt(r.Batch),
					m.CourseCode, m.CourseName, formatNumber(m.Credit), formatNumber(m.FullMark),
					formatOptionalNumber(m.MarksObtained),
					strconv.Itoa(m.GradePoint), m.Grade, formatNumber(m.CreditEarned()), m.DateOfExam,
					formatFloat(r.SGPA), r.SemGrade,
				})
			}
		}
	}
	return records
}
