package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"gradesheet/internal/shared/testutil"
	"gradesheet/pkg/contracts/domain"
)

func TestDetectLayout(t *testing.T) {
	tests := []struct {
		name   string
		header []string
		first  []string
		want   domain.Layout
	}{
		{"roll no filled", []string{"Std Name", "Roll No"}, []string{"Asha", "R1"}, domain.LayoutVertical},
		{"roll no whitespace", []string{"Roll No"}, []string{" "}, domain.LayoutVertical},
		{"roll no empty", []string{"Std Name", "Roll No"}, []string{"Asha", ""}, domain.LayoutHorizontal},
		{"no roll no column", []string{"Batch"}, []string{"2023"}, domain.LayoutHorizontal},
		{"short record", []string{"Std Name", "Roll No"}, []string{"Asha"}, domain.LayoutHorizontal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := NewTable(tt.header, [][]string{tt.first})
			assert.Equal(t, tt.want, DetectLayout(table.Records[0]))
		})
	}
}

func TestDetectLayout_Fixtures(t *testing.T) {
	assert.Equal(t, domain.LayoutVertical, DetectLayout(tableOf(testutil.VerticalExport()).Records[0]))
	assert.Equal(t, domain.LayoutHorizontal, DetectLayout(tableOf(testutil.HorizontalExport()).Records[0]))
}
