// Package grading holds the grade arithmetic used when building grade sheets.
//
// All functions are pure and deterministic:
//
//	gp := grading.GradePointFor(83)        // 9
//	letter := grading.LetterGradeFor(gp, 4) // "A+"
//	sgpa := grading.SGPA(result.Marks)
//	semLetter := grading.SemesterLetter(sgpa)
//
// Zero-credit (audit) courses are graded S or N instead of a letter. The
// SGPA excludes the credit of failed courses (grade point 0) from its
// denominator; Accumulator maintains the same result incrementally.
package grading
