package dataprocessing

import (
	"fmt"
	"log/slog"

	apperrors "gradesheet/internal/errors"
)

// Fixed structure of a horizontal export.
const (
	rowBatch        = 0 // first cell: batch, also used as academic year
	rowExamDate     = 1 // first cell: date of exam
	rowSubjectCodes = 2
	rowCredits      = 3
	rowSubjectNames = 4
	firstDataRow    = 5

	// leadingFields are Std Name, Roll No, Inst Name, Pro Category,
	// Program and Sem; subject columns start right after them.
	leadingFields = 6

	// HorizontalFullMark is the full mark written for every course of a
	// horizontal export, which has no column for it.
	HorizontalFullMark = "100"
)

// HorizontalNormalizer reshapes a wide export into canonical long rows.
type HorizontalNormalizer struct {
	logger *slog.Logger
}

// NewHorizontalNormalizer creates a normalizer
func NewHorizontalNormalizer(logger *slog.Logger) *HorizontalNormalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &HorizontalNormalizer{
		logger: logger.With(slog.String("component", "horizontal_normalizer")),
	}
}

// Normalize emits one canonical row per data row and subject column, in
// row-major order. Pairs with an empty mark are skipped.
func (n *HorizontalNormalizer) Normalize(t *Table) ([]CanonicalRow, error) {
	if t.Len() < firstDataRow {
		return nil, apperrors.NewLayoutError(
			fmt.Sprintf("horizontal export needs %d metadata rows, found %d records", firstDataRow, t.Len()),
			ErrUnrecognizedLayout,
		).WithContext("records", t.Len())
	}

	batch := t.Records[rowBatch].At(0)
	examDate := t.Records[rowExamDate].At(0)
	codes := t.Records[rowSubjectCodes]
	credits := t.Records[rowCredits]
	names := t.Records[rowSubjectNames]

	subjects := codes.Len() - leadingFields
	if subjects <= 0 {
		n.logger.Warn("horizontal export has no subject columns",
			slog.Int("columns", codes.Len()))
		return []CanonicalRow{}, nil
	}

	rows := make([]CanonicalRow, 0, (t.Len()-firstDataRow)*subjects)
	skipped := 0
	for k := firstDataRow; k < t.Len(); k++ {
		rec := t.Records[k]
		for i := 0; i < subjects; i++ {
			col := leadingFields + i
			mark := rec.At(col)
			if !present(mark) {
				skipped++
				continue
			}

			var row CanonicalRow
			for f := 0; f < leadingFields; f++ {
				row[f] = rec.At(f)
			}
			row.Set(FieldCourseCode, codes.At(col))
			row.Set(FieldCredit, credits.At(col))
			row.Set(FieldSubName, names.At(col))
			row.Set(FieldMarkObt, mark)
			row.Set(FieldFullMark, HorizontalFullMark)
			row.Set(FieldBatch, batch)
			row.Set(FieldAcademicYear, batch)
			row.Set(FieldDateOfExam, examDate)
			rows = append(rows, row)
		}
	}

	n.logger.Debug("horizontal export normalized",
		slog.Int("data_rows", t.Len()-firstDataRow),
		slog.Int("subjects", subjects),
		slog.Int("rows_emitted", len(rows)),
		slog.Int("blank_marks_skipped", skipped))

	return rows, nil
}
