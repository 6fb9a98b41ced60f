package grading

import (
	"math"

	"gradesheet/pkg/contracts/domain"
)

// gradePointThresholds are inclusive lower bounds on the numeric mark,
// checked from the top down.
var gradePointThresholds = []struct {
	min   float64
	point int
}{
	{90, 10},
	{80, 9},
	{70, 8},
	{60, 7},
	{50, 6},
	{45, 5},
	{40, 4},
}

// letterGrades maps a grade point of a credit-bearing course to its letter.
var letterGrades = map[int]string{
	10: "O",
	9:  "A+",
	8:  "A",
	7:  "B+",
	6:  "B",
	5:  "C",
	4:  "P",
}

// semesterThresholds are inclusive lower bounds on the SGPA.
var semesterThresholds = []struct {
	min    float64
	letter string
}{
	{9.5, "O"},
	{8.5, "A+"},
	{7.5, "A"},
	{6.5, "B+"},
	{5.5, "B"},
	{4.5, "C"},
	{4, "P"},
}

const (
	// FailGrade is the letter for a failed credit-bearing course or semester.
	FailGrade = "F"
	// SatisfactoryGrade is given to a passed audit (zero credit) course.
	SatisfactoryGrade = "S"
	// NotSatisfactoryGrade is given to a failed audit course.
	NotSatisfactoryGrade = "N"
)

// GradePointFor maps a numeric mark to a grade point between 0 and 10.
// NaN fails every comparison and therefore yields 0.
func GradePointFor(marksObtained float64) int {
	for _, t := range gradePointThresholds {
		if marksObtained >= t.min {
			return t.point
		}
	}
	return 0
}

// LetterGradeFor maps a grade point to a letter grade. Audit courses
// (credit == 0) only ever receive S or N.
func LetterGradeFor(gradePoint int, credit float64) string {
	if credit == 0 {
		if gradePoint >= domain.PassingGradePoint {
			return SatisfactoryGrade
		}
		return NotSatisfactoryGrade
	}
	if letter, ok := letterGrades[gradePoint]; ok {
		return letter
	}
	return FailGrade
}

// SGPA computes the semester grade point average of marks.
// Failed courses add nothing to the numerator and their credit is left
// out of the denominator.
func SGPA(marks []domain.Mark) float64 {
	var acc Accumulator
	for _, m := range marks {
		acc.Add(m.Credit, m.GradePoint)
	}
	return acc.SGPA()
}

// SemesterLetter maps an SGPA to the semester letter grade.
func SemesterLetter(sgpa float64) string {
	for _, t := range semesterThresholds {
		if sgpa >= t.min {
			return t.letter
		}
	}
	return FailGrade
}

// Accumulator keeps the running sums behind an SGPA so appending a mark
// costs O(1). The zero value is ready to use.
type Accumulator struct {
	creditSum   float64
	weightedSum float64
	count       int
}

// Add records one course.
func (a *Accumulator) Add(credit float64, gradePoint int) {
	if gradePoint != 0 {
		a.creditSum += credit
	}
	a.weightedSum += credit * float64(gradePoint)
	a.count++
}

// SGPA returns the current average rounded to two decimals, or 0 when no
// credit counts toward the denominator.
func (a *Accumulator) SGPA() float64 {
	if a.creditSum > 0 {
		return round2(a.weightedSum / a.creditSum)
	}
	return 0
}

// Count returns the number of courses added so far.
func (a *Accumulator) Count() int {
	return a.count
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
