package dataprocessing

import (
	"log/slog"

	"gradesheet/internal/grading"
	"gradesheet/pkg/contracts/domain"
)

// Reasons a canonical row is rejected by the aggregator.
const (
	RejectMissingRollNo  = "missing_roll_no"
	RejectMissingSubName = "missing_sub_name"
)

// RecordAggregator builds the Student -> SemesterResult -> Mark tree from
// canonical rows. It is not safe for concurrent use; each pipeline run
// owns its own aggregator.
type RecordAggregator struct {
	logger  *slog.Logger
	options ProcessingOptions

	students []*domain.Student
	byRollNo map[string]*studentEntry

	rowsSeen  int
	accepted  int
	rejected  int
	semesters int
}

type studentEntry struct {
	student   *domain.Student
	semesters map[int]*semesterEntry
}

type semesterEntry struct {
	result *domain.SemesterResult
	sgpa   grading.Accumulator
}

// NewRecordAggregator creates an empty aggregator
func NewRecordAggregator(logger *slog.Logger, opts ProcessingOptions) *RecordAggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &RecordAggregator{
		logger:   logger.With(slog.String("component", "record_aggregator")),
		options:  opts,
		byRollNo: make(map[string]*studentEntry),
	}
}

// Add folds one canonical row into the tree. It returns false when the
// row is rejected for a missing Roll No or Sub Name.
func (a *RecordAggregator) Add(row CanonicalRow) bool {
	index := a.rowsSeen
	a.rowsSeen++

	if reason := rejectReason(row); reason != "" {
		a.rejected++
		a.logger.Debug("row rejected",
			slog.Int("row", index),
			slog.String("reason", reason))
		return false
	}
	a.accepted++

	mark := buildMark(row)

	student := a.studentFor(row)
	semester := a.semesterFor(student, row, index)

	semester.result.Marks = append(semester.result.Marks, mark)
	semester.sgpa.Add(mark.Credit, mark.GradePoint)
	semester.result.SGPA = semester.sgpa.SGPA()
	semester.result.SemGrade = grading.SemesterLetter(semester.result.SGPA)

	return true
}

// AddAll folds rows in order.
func (a *RecordAggregator) AddAll(rows []CanonicalRow) {
	for _, row := range rows {
		a.Add(row)
	}
}

// Students returns the students in first-seen order.
func (a *RecordAggregator) Students() []*domain.Student {
	return a.students
}

// Accepted returns the number of rows turned into marks.
func (a *RecordAggregator) Accepted() int { return a.accepted }

// Rejected returns the number of rows dropped for missing keys.
func (a *RecordAggregator) Rejected() int { return a.rejected }

// Semesters returns the number of semester results created.
func (a *RecordAggregator) Semesters() int { return a.semesters }

func (a *RecordAggregator) studentFor(row CanonicalRow) *studentEntry {
	if entry, ok := a.byRollNo[row.RollNo()]; ok {
		return entry
	}

	student := &domain.Student{
		RollNo:   row.RollNo(),
		Name:     row.StdName(),
		Program:  row.Program(),
		Category: row.ProCategory(),
		Campus:   row.InstName(),
		Father:   row.Get(FieldFatherName),
		Mother:   row.Get(FieldMotherName),
		Guardian: row.Get(FieldGuardianName),
		Results:  []*domain.SemesterResult{},
		ABCID:    a.options.ABCID,
	}
	entry := &studentEntry{
		student:   student,
		semesters: make(map[int]*semesterEntry),
	}
	a.students = append(a.students, student)
	a.byRollNo[student.RollNo] = entry
	return entry
}

func (a *RecordAggregator) semesterFor(student *studentEntry, row CanonicalRow, index int) *semesterEntry {
	number, ok := ParseInt(row.Sem())
	if !ok {
		a.logger.Warn("semester is not a number, using 0",
			slog.Int("row", index),
			slog.String("roll_no", row.RollNo()),
			slog.String("sem", row.Sem()))
	}

	if entry, exists := student.semesters[number]; exists {
		return entry
	}

	result := &domain.SemesterResult{
		Semester:     number,
		AcademicYear: row.AcademicYear(),
		Batch:        parseBatch(row.Batch()),
		SGPA:         0,
		SemGrade:     "",
		Marks:        []domain.Mark{},
	}
	entry := &semesterEntry{result: result}
	student.student.Results = append(student.student.Results, result)
	student.semesters[number] = entry
	a.semesters++
	return entry
}

func rejectReason(row CanonicalRow) string {
	switch {
	case !present(row.RollNo()):
		return RejectMissingRollNo
	case !present(row.SubName()):
		return RejectMissingSubName
	}
	return ""
}

// buildMark parses the numeric cells of a row and derives the grade point
// and letter. An empty Mark Obt is graded as 0 and kept as null.
func buildMark(row CanonicalRow) domain.Mark {
	credit := ParseFloat(row.Credit())

	var obtained *float64
	scored := 0.0
	if present(row.MarkObt()) {
		v := ParseFloat(row.MarkObt())
		obtained = &v
		scored = v
	}

	gp := grading.GradePointFor(scored)
	return domain.Mark{
		CourseCode:    row.CourseCode(),
		CourseName:    row.SubName(),
		Credit:        credit,
		FullMark:      ParseFloat(row.FullMark()),
		MarksObtained: obtained,
		DateOfExam:    row.DateOfExam(),
		GradePoint:    gp,
		Grade:         grading.LetterGradeFor(gp, credit),
	}
}

func parseBatch(v string) *int {
	if !present(v) {
		return nil
	}
	n, ok := ParseInt(v)
	if !ok {
		return nil
	}
	return &n
}
