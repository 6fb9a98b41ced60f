package exporter

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	apperrors "gradesheet/internal/errors"
	"gradesheet/internal/shared/testutil"
	"gradesheet/pkg/contracts/domain"
)

func ptr[T any](v T) *T { return &v }

func sampleSheet() *domain.GradeSheet {
	return &domain.GradeSheet{
		Students: []*domain.Student{
			{
				RollNo: "R1", Name: "Asha Rao", Program: "BSc Physics", Category: "UG",
				Campus: "North Campus", ABCID: "1234",
				Results: []*domain.SemesterResult{
					{
						Semester: 1, AcademicYear: "2023-24", Batch: ptr(2023), SGPA: 9, SemGrade: "A+",
						Marks: []domain.Mark{
							{CourseCode: "PHY101", CourseName: "Mechanics", Credit: 4, FullMark: 100, MarksObtained: ptr(85.0), GradePoint: 9, Grade: "A+", DateOfExam: "2023-12-10"},
							{CourseCode: "PHY102", CourseName: "Optics", Credit: 3, FullMark: 100, MarksObtained: ptr(38.0), GradePoint: 0, Grade: "F"},
						},
					},
					{
						Semester: 2, AcademicYear: "2024-25", SGPA: math.NaN(),
						Marks: []domain.Mark{
							{CourseName: "Thermodynamics", Credit: math.NaN(), FullMark: 100, GradePoint: 0, Grade: "F"},
						},
					},
				},
			},
		},
		Stats: domain.PipelineStats{Layout: domain.LayoutVertical, RecordsRead: 3, RowsCanonical: 3, RowsAccepted: 3, Students: 1, Semesters: 2},
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		format      string
		extension   string
		contentType string
	}{
		{"json", ".json", "application/json"},
		{"csv", ".csv", "text/csv; charset=utf-8"},
		{"xlsx", ".xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			w, err := New(tt.format, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.extension, w.Extension())
			assert.Equal(t, tt.contentType, w.ContentType())
		})
	}

	t.Run("unknown", func(t *testing.T) {
		w, err := New("pdf", nil)
		assert.Nil(t, w)
		assert.Equal(t, apperrors.ErrTypeValidation, apperrors.TypeOf(err))
	})
}

func TestJSONWriter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONWriter(false).Write(&buf, sampleSheet()))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))

	students := decoded["students"].([]any)
	require.Len(t, students, 1)
	student := students[0].(map[string]any)
	assert.Equal(t, "R1", student["rollno"])
	assert.Equal(t, "1234", student["abc_id"])

	results := student["results"].([]any)
	require.Len(t, results, 2)
	second := results[1].(map[string]any)
	assert.Nil(t, second["sgpa"])
	assert.Nil(t, second["batch"])

	mark := second["marks"].([]any)[0].(map[string]any)
	assert.Nil(t, mark["credit"])
	assert.Nil(t, mark["marks_obtained"])

	stats := decoded["stats"].(map[string]any)
	assert.Equal(t, "vertical", stats["layout"])
}

func TestCSVWriter(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)

	t.Run("one line per mark", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewCSVWriter(logger, false).Write(&buf, sampleSheet()))

		rows, err := csv.NewReader(&buf).ReadAll()
		require.NoError(t, err)
		require.Len(t, rows, 4)
		assert.Equal(t, MarkHeaders, rows[0])

		assert.Equal(t, []string{
			"R1", "Asha Rao", "BSc Physics", "UG", "North Campus", "1234",
			"1", "2023-24", "2023",
			"PHY101", "Mechanics", "4", "100", "85",
			"9", "A+", "4", "2023-12-10",
			"9.00", "A+",
		}, rows[1])

		// failed course earns nothing
		assert.Equal(t, "0", rows[2][16])

		// NaN credit and SGPA, missing mark and batch
		assert.Equal(t, "", rows[3][8])
		assert.Equal(t, "", rows[3][11])
		assert.Equal(t, "", rows[3][13])
		assert.Equal(t, "", rows[3][18])
	})

	t.Run("BOM prefix", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewCSVWriter(logger, true).Write(&buf, &domain.GradeSheet{}))
		assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\ufeffRoll No,")))
	})
}

func TestXLSXWriter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewXLSXWriter(nil).Write(&buf, sampleSheet()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"R1-S1", "R1-S2"}, f.GetSheetList())

	name, err := f.GetCellValue("R1-S1", "B1")
	require.NoError(t, err)
	assert.Equal(t, "Asha Rao", name)

	header, err := f.GetCellValue("R1-S1", "A8")
	require.NoError(t, err)
	assert.Equal(t, "Course Code", header)

	course, err := f.GetCellValue("R1-S1", "B9")
	require.NoError(t, err)
	assert.Equal(t, "Mechanics", course)

	rows, err := f.GetRows("R1-S1")
	require.NoError(t, err)
	var sgpa []string
	for _, row := range rows {
		if len(row) > 1 && row[0] == "SGPA" {
			sgpa = row
		}
	}
	require.NotNil(t, sgpa)
	assert.Equal(t, "9.00", sgpa[1])
}

func TestXLSXWriter_EmptySheet(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewXLSXWriter(nil).Write(&buf, &domain.GradeSheet{}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Results"}, f.GetSheetList())
}

func TestUniqueSheetName(t *testing.T) {
	used := map[string]bool{}

	assert.Equal(t, "R_1-S1", uniqueSheetName("R/1-S1", used))
	assert.Equal(t, "R_1-S1~2", uniqueSheetName("R:1-S1", used))

	long := strings.Repeat("x", 40)
	first := uniqueSheetName(long, used)
	second := uniqueSheetName(long, used)
	assert.Len(t, first, 31)
	assert.Len(t, second, 31)
	assert.NotEqual(t, first, second)
	assert.True(t, strings.HasSuffix(second, "~2"))

	assert.Equal(t, "Sheet1~2", uniqueSheetName("Sheet1", used))
}

func TestStreamRenderer(t *testing.T) {
	var buf bytes.Buffer
	r := NewStreamRenderer(&buf, NewJSONWriter(false))
	require.NoError(t, r.Render(context.Background(), sampleSheet()))
	assert.Contains(t, buf.String(), `"rollno":"R1"`)
}

func TestFileRenderer(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	logger, handler := testutil.NewTestLogger(t)

	r := NewFileRenderer(dir, "results", NewCSVWriter(logger, false), logger)
	require.NoError(t, r.Render(context.Background(), sampleSheet()))

	assert.Equal(t, filepath.Join(dir, "results.csv"), r.Path())
	data, err := os.ReadFile(r.Path())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "Roll No,Name"))
	testutil.AssertLogContains(t, handler, slog.LevelInfo, "grade sheet written")
}

func TestFileRenderer_Unwritable(t *testing.T) {
	file := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	r := NewFileRenderer(filepath.Join(file, "out"), "results", NewJSONWriter(false), nil)
	err := r.Render(context.Background(), sampleSheet())
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrTypeStorage, apperrors.TypeOf(err))
	assert.Empty(t, r.Path())
}
