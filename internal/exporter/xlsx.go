package exporter

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	"gradesheet/pkg/contracts/domain"
)

const (
	maxSheetName  = 31
	defaultSheet  = "Sheet1"
	emptySheet    = "Results"
	markTableFrom = 8 // first row of the mark table on a semester sheet
)

var markTableHeaders = []interface{}{
	"Course Code", "Course Name", "Credit", "Full Mark", "Marks Obtained",
	"Grade Point", "Grade", "Credit Earned", "Date of Exam",
}

// XLSXWriter writes one worksheet per student semester, laid out as a
// printable grade card.
type XLSXWriter struct {
	logger *slog.Logger
}

// NewXLSXWriter creates an XLSX writer
func NewXLSXWriter(logger *slog.Logger) *XLSXWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &XLSXWriter{logger: logger.With(slog.String("component", "xlsx_writer"))}
}

func (x *XLSXWriter) Extension() string { return ".xlsx" }
func (x *XLSXWriter) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Write builds the workbook and writes it to w.
func (x *XLSXWriter) Write(w io.Writer, sheet *domain.GradeSheet) error {
	f := excelize.NewFile()
	defer f.Close()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}

	used := make(map[string]bool)
	sheets := 0
	for _, s := range sheet.Students {
		for _, r := range s.Results {
			name := uniqueSheetName(fmt.Sprintf("%s-S%d", s.RollNo, r.Semester), used)
			if _, err := f.NewSheet(name); err != nil {
				return fmt.Errorf("failed to add sheet %s: %w", name, err)
			}
			if err := writeSemesterSheet(f, name, s, r, bold); err != nil {
				return fmt.Errorf("failed to write sheet %s: %w", name, err)
			}
			sheets++
		}
	}

	if sheets == 0 {
		if err := f.SetSheetName(defaultSheet, emptySheet); err != nil {
			return err
		}
		if err := f.SetCellValue(emptySheet, "A1", "No results"); err != nil {
			return err
		}
	} else {
		if err := f.DeleteSheet(defaultSheet); err != nil {
			return fmt.Errorf("failed to remove default sheet: %w", err)
		}
		f.SetActiveSheet(0)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	x.logger.Debug("XLSX grade sheet written", slog.Int("sheets", sheets))
	return nil
}

func writeSemesterSheet(f *excelize.File, name string, s *domain.Student, r *domain.SemesterResult, bold int) error {
	header := [][]interface{}{
		{"Name", s.Name, "Roll No", s.RollNo},
		{"Program", s.Program, "Category", s.Category},
		{"Campus", s.Campus, "ABC ID", s.ABCID},
		{"Father", s.Father, "Mother", s.Mother},
		{"Guardian", s.Guardian},
		{"Semester", r.Semester, "Academic Year", r.AcademicYear},
		{"Batch", formatOptionalInt(r.Batch)},
	}
	for i, row := range header {
		if err := setRow(f, name, i+1, row); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(name, "A1", fmt.Sprintf("A%d", len(header)), bold); err != nil {
		return err
	}
	if err := f.SetCellStyle(name, "C1", fmt.Sprintf("C%d", len(header)), bold); err != nil {
		return err
	}

	row := markTableFrom
	if err := setRow(f, name, row, markTableHeaders); err != nil {
		return err
	}
	if err := f.SetCellStyle(name, cellName(1, row), cellName(len(markTableHeaders), row), bold); err != nil {
		return err
	}

	for _, m := range r.Marks {
		row++
		values := []interface{}{
			m.CourseCode, m.CourseName, formatNumber(m.Credit), formatNumber(m.FullMark),
			formatOptionalNumber(m.MarksObtained), m.GradePoint, m.Grade,
			formatNumber(m.CreditEarned()), m.DateOfExam,
		}
		if err := setRow(f, name, row, values); err != nil {
			return err
		}
	}

	row += 2
	summary := [][]interface{}{
		{"Total Credits", formatNumber(r.TotalCredits())},
		{"Credits Earned", formatNumber(r.CreditsEarned())},
		{"SGPA", formatFloat(r.SGPA)},
		{"Semester Grade", r.SemGrade},
	}
	for i, values := range summary {
		if err := setRow(f, name, row+i, values); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(name, cellName(1, row), cellName(1, row+len(summary)-1), bold); err != nil {
		return err
	}

	return f.SetColWidth(name, "A", "I", 16)
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	return f.SetSheetRow(sheet, cellName(1, row), &values)
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

// uniqueSheetName makes base a legal worksheet name not yet in used.
func uniqueSheetName(base string, used map[string]bool) string {
	base = strings.Map(func(r rune) rune {
		if strings.ContainsRune(`:\/?*[]`, r) {
			return '_'
		}
		return r
	}, base)
	if len([]rune(base)) > maxSheetName {
		base = string([]rune(base)[:maxSheetName])
	}

	name := base
	for i := 2; used[strings.ToLower(name)] || strings.EqualFold(name, defaultSheet); i++ {
		suffix := fmt.Sprintf("~%d", i)
		trimmed := []rune(base)
		if len(trimmed)+len(suffix) > maxSheetName {
			trimmed = trimmed[:maxSheetName-len(suffix)]
		}
		name = string(trimmed) + suffix
	}
	used[strings.ToLower(name)] = true
	return name
}
