package domain

import (
	"encoding/json"
	"math"
)

// Mark is one course result inside a semester. GradePoint and Grade are
// derived once when the mark is appended and never recomputed.
type Mark struct {
	CourseCode    string   `json:"course_code"`
	CourseName    string   `json:"course_name" validate:"required"`
	Credit        float64  `json:"credit"`
	FullMark      float64  `json:"full_mark"`
	MarksObtained *float64 `json:"marks_obtained"`
	DateOfExam    string   `json:"date_of_exam"`
	GradePoint    int      `json:"grade_point" validate:"min=0,max=10"`
	Grade         string   `json:"grade"`
}

// PassingGradePoint is the lowest grade point that earns the course credit.
const PassingGradePoint = 4

// CreditEarned returns the course credit when the mark is a pass, else 0.
func (m Mark) CreditEarned() float64 {
	if m.GradePoint >= PassingGradePoint {
		return m.Credit
	}
	return 0
}

// MarshalJSON encodes non-finite numbers as null instead of failing.
func (m Mark) MarshalJSON() ([]byte, error) {
	type alias Mark
	return json.Marshal(struct {
		alias
		Credit        *float64 `json:"credit"`
		FullMark      *float64 `json:"full_mark"`
		MarksObtained *float64 `json:"marks_obtained"`
	}{
		alias:         alias(m),
		Credit:        finite(m.Credit),
		FullMark:      finite(m.FullMark),
		MarksObtained: finitePtr(m.MarksObtained),
	})
}

// SemesterResult groups the marks of one student for one semester.
// Marks keep source row order.
type SemesterResult struct {
	Semester     int     `json:"semester"`
	AcademicYear string  `json:"academic_year"`
	Batch        *int    `json:"batch"`
	SGPA         float64 `json:"sgpa"`
	SemGrade     string  `json:"sem_grade"`
	Marks        []Mark  `json:"marks"`
}

// TotalCredits sums the credit of every mark in the semester.
func (s *SemesterResult) TotalCredits() float64 {
	var total float64
	for _, m := range s.Marks {
		total += m.Credit
	}
	return total
}

// CreditsEarned sums the credit of passed marks.
func (s *SemesterResult) CreditsEarned() float64 {
	var total float64
	for _, m := range s.Marks {
		total += m.CreditEarned()
	}
	return total
}

// MarshalJSON encodes a non-finite SGPA as null.
func (s SemesterResult) MarshalJSON() ([]byte, error) {
	type alias SemesterResult
	return json.Marshal(struct {
		alias
		SGPA *float64 `json:"sgpa"`
	}{
		alias: alias(s),
		SGPA:  finite(s.SGPA),
	})
}

// Student is the root of the grade tree, identified by roll number.
// Results are ordered by the first appearance of each semester.
type Student struct {
	RollNo   string            `json:"rollno" validate:"required"`
	Name     string            `json:"name"`
	Program  string            `json:"program"`
	Category string            `json:"category"`
	Campus   string            `json:"campus"`
	Father   string            `json:"father,omitempty"`
	Mother   string            `json:"mother,omitempty"`
	Guardian string            `json:"guardian,omitempty"`
	Results  []*SemesterResult `json:"results"`
	ABCID    string            `json:"abc_id"`
}

// Semester returns the result for the given semester number, or nil.
func (s *Student) Semester(number int) *SemesterResult {
	for _, r := range s.Results {
		if r.Semester == number {
			return r
		}
	}
	return nil
}

func finite(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

func finitePtr(f *float64) *float64 {
	if f == nil {
		return nil
	}
	return finite(*f)
}
