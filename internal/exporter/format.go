package exporter

import (
	"math"
	"strconv"
)

// formatFloat formats with exactly 2 decimal places; non-finite values
// become an empty cell.
func formatFloat(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return ""
	}
	return strconv.FormatFloat(f, 'f', 2, 64)
}

// formatNumber formats with the fewest digits that round-trip, so 4 stays
// "4" and 72.5 stays "72.5".
func formatNumber(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return ""
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func formatOptionalNumber(f *float64) string {
	if f == nil {
		return ""
	}
	return formatNumber(*f)
}

func formatOptionalInt(i *int) string {
	if i == nil {
		return ""
	}
	return strconv.Itoa(*i)
}
