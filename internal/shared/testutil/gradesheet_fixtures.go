package testutil

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// Export is a header plus data rows, as a spreadsheet holds them.
type Export struct {
	Header []string
	Rows   [][]string
}

// VerticalHeader is the long-schema header in column order.
var VerticalHeader = []string{
	"Std Name", "Roll No", "Inst Name", "Pro Category", "Program", "Sem",
	"Course Code", "Credit", "Sub Name", "Mark Obt", "Full Mark",
	"Batch", "Academic Year", "Date of Exam",
}

// VerticalExport returns two students over two semesters:
//
//	R1 sem 1: Mechanics 85 (4 cr), Optics 38 (3 cr)   -> SGPA 9.00 A+
//	R1 sem 2: Thermodynamics 92 (4 cr)                -> SGPA 10.00 O
//	R2 sem 1: Mechanics 71 (4 cr), Env. Studies 55 (0) -> SGPA 8.00 A
//
// plus one R2 row without a Sub Name, which is rejected.
func VerticalExport() Export {
	return Export{
		Header: append([]string(nil), VerticalHeader...),
		Rows: [][]string{
			{"Asha Rao", "R1", "North Campus", "UG", "BSc Physics", "1", "PHY101", "4", "Mechanics", "85", "100", "2023", "2023-24", "2023-12-10"},
			{"Asha Rao", "R1", "North Campus", "UG", "BSc Physics", "1", "PHY102", "3", "Optics", "38", "100", "2023", "2023-24", "2023-12-12"},
			{"Asha Rao", "R1", "North Campus", "UG", "BSc Physics", "2", "PHY201", "4", "Thermodynamics", "92", "100", "2023", "2024-25", "2024-05-20"},
			{"Ben Ode", "R2", "North Campus", "UG", "BSc Physics", "1", "PHY101", "4", "Mechanics", "71", "100", "2023", "2023-24", "2023-12-10"},
			{"Ben Ode", "R2", "North Campus", "UG", "BSc Physics", "1", "ENV100", "0", "Environmental Studies", "55", "100", "2023", "2023-24", "2023-12-14"},
			{"Ben Ode", "R2", "North Campus", "UG", "BSc Physics", "1", "PHY199", "2", "", "60", "100", "2023", "2023-24", "2023-12-15"},
		},
	}
}

// HorizontalExport returns a wide sheet with three subjects and two
// students; R1 has no mark for Optics.
//
//	R1: Mechanics 85 (4), Organic Chemistry 64 (2)          -> SGPA 8.33 A
//	R2: Mechanics 71 (4), Optics 48 (3), Org. Chem 90 (2)   -> SGPA 7.44 B+
func HorizontalExport() Export {
	return Export{
		Header: []string{"Batch", "", "", "", "", "", "", "", ""},
		Rows: [][]string{
			{"2023"},
			{"2024-05-20"},
			{"", "", "", "", "", "", "PHY101", "PHY102", "CHE101"},
			{"", "", "", "", "", "", "4", "3", "2"},
			{"", "", "", "", "", "", "Mechanics", "Optics", "Organic Chemistry"},
			{"Asha Rao", "R1", "North Campus", "UG", "BSc Physics", "1", "85", "", "64"},
			{"Ben Ode", "R2", "North Campus", "UG", "BSc Physics", "1", "71", "48", "90"},
		},
	}
}

// CSV encodes the export as CSV bytes.
func (e Export) CSV(t testing.TB) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	require.NoError(t, w.Write(e.Header))
	require.NoError(t, w.WriteAll(e.Rows))
	return buf.Bytes()
}

// XLSX encodes the export as a single-sheet workbook.
func (e Export) XLSX(t testing.TB) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	write := func(row int, values []string) {
		cells := make([]interface{}, len(values))
		for i, v := range values {
			cells[i] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, row)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &cells))
	}

	write(1, e.Header)
	for i, row := range e.Rows {
		write(i+2, row)
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}
