package dataprocessing

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// ParseFloat reads the longest decimal prefix of s, after leading
// whitespace, the way spreadsheet exports have always been coerced here:
// "85" and "85 (RE)" both give 85, "AB" and "" give NaN.
func ParseFloat(s string) float64 {
	s = trimLeadingSpace(s)
	end := decimalPrefix(s)
	if end == 0 {
		return infinityPrefix(s)
	}
	v, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return v
		}
		return math.NaN()
	}
	return v
}

// ParseInt reads the leading base-10 integer of s. ok is false when s has
// no leading digits; "2023-24" gives 2023 and "3.7" gives 3.
func ParseInt(s string) (int, bool) {
	s = trimLeadingSpace(s)
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	start := i
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	if i == start {
		return 0, false
	}
	v, err := strconv.Atoi(s[:i])
	if err != nil {
		return 0, false
	}
	return v, true
}

func trimLeadingSpace(s string) string {
	return strings.TrimLeftFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == '\ufeff'
	})
}

// decimalPrefix returns the length of the numeric literal at the start of s.
func decimalPrefix(s string) int {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		j := i + 1
		frac := 0
		for j < len(s) && isDigit(s[j]) {
			j++
			frac++
		}
		if digits+frac > 0 {
			i = j
			digits += frac
		}
	}
	if digits == 0 {
		return 0
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		k := j
		for k < len(s) && isDigit(s[k]) {
			k++
		}
		if k > j {
			i = k
		}
	}
	return i
}

func infinityPrefix(s string) float64 {
	switch {
	case strings.HasPrefix(s, "Infinity"), strings.HasPrefix(s, "+Infinity"):
		return math.Inf(1)
	case strings.HasPrefix(s, "-Infinity"):
		return math.Inf(-1)
	}
	return math.NaN()
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
