package dataprocessing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseFloat(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"85", 85},
		{"  72.5", 72.5},
		{"85 (RE)", 85},
		{"4.0cr", 4},
		{".5", 0.5},
		{"5.", 5},
		{"-3", -3},
		{"+7", 7},
		{"1e2", 100},
		{"1e", 1},
		{"\ufeff40", 40},
		{"Infinity", math.Inf(1)},
		{"-Infinity", math.Inf(-1)},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseFloat(tt.in), "ParseFloat(%q)", tt.in)
	}

	for _, in := range []string{"", "AB", ".", "-", "e5", "Absent"} {
		assert.True(t, math.IsNaN(ParseFloat(in)), "ParseFloat(%q) should be NaN", in)
	}
}

func TestParseInt(t *testing.T) {
	tests := []struct {
		in     string
		want   int
		wantOK bool
	}{
		{"1", 1, true},
		{" 2", 2, true},
		{"2023-24", 2023, true},
		{"3.7", 3, true},
		{"-1", -1, true},
		{"4th", 4, true},
		{"", 0, false},
		{"III", 0, false},
		{"-", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseInt(tt.in)
		assert.Equal(t, tt.wantOK, ok, "ParseInt(%q)", tt.in)
		assert.Equal(t, tt.want, got, "ParseInt(%q)", tt.in)
	}
}
