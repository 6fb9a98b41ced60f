package dataprocessing

// Field is a column of the canonical long schema.
type Field int

const (
	FieldStdName Field = iota
	FieldRollNo
	FieldInstName
	FieldProCategory
	FieldProgram
	FieldSem
	FieldCourseCode
	FieldCredit
	FieldSubName
	FieldMarkObt
	FieldFullMark
	FieldBatch
	FieldAcademicYear
	FieldDateOfExam

	// Optional parent and guardian columns some vertical exports carry.
	FieldFatherName
	FieldMotherName
	FieldGuardianName

	fieldCount
)

// canonicalFieldCount is the number of fields in the long schema proper.
const canonicalFieldCount = int(FieldDateOfExam) + 1

var fieldNames = [fieldCount]string{
	FieldStdName:      "Std Name",
	FieldRollNo:       "Roll No",
	FieldInstName:     "Inst Name",
	FieldProCategory:  "Pro Category",
	FieldProgram:      "Program",
	FieldSem:          "Sem",
	FieldCourseCode:   "Course Code",
	FieldCredit:       "Credit",
	FieldSubName:      "Sub Name",
	FieldMarkObt:      "Mark Obt",
	FieldFullMark:     "Full Mark",
	FieldBatch:        "Batch",
	FieldAcademicYear: "Academic Year",
	FieldDateOfExam:   "Date of Exam",
	FieldFatherName:   "Father Name",
	FieldMotherName:   "Mother Name",
	FieldGuardianName: "Guardian Name",
}

// String returns the column header of the field.
func (f Field) String() string {
	if f < 0 || f >= fieldCount {
		return ""
	}
	return fieldNames[f]
}

// CanonicalColumns returns the fourteen headers of the long schema in order.
func CanonicalColumns() []string {
	return append([]string(nil), fieldNames[:canonicalFieldCount]...)
}

// CanonicalRow is one row of the long schema, held as a fixed array so
// every field has a stable position regardless of how the source was laid out.
type CanonicalRow [fieldCount]string

// Get returns the value of field f.
func (r CanonicalRow) Get(f Field) string {
	return r[f]
}

// Set assigns the value of field f.
func (r *CanonicalRow) Set(f Field, v string) {
	r[f] = v
}

func (r CanonicalRow) StdName() string      { return r[FieldStdName] }
func (r CanonicalRow) RollNo() string       { return r[FieldRollNo] }
func (r CanonicalRow) InstName() string     { return r[FieldInstName] }
func (r CanonicalRow) ProCategory() string  { return r[FieldProCategory] }
func (r CanonicalRow) Program() string      { return r[FieldProgram] }
func (r CanonicalRow) Sem() string          { return r[FieldSem] }
func (r CanonicalRow) CourseCode() string   { return r[FieldCourseCode] }
func (r CanonicalRow) Credit() string       { return r[FieldCredit] }
func (r CanonicalRow) SubName() string      { return r[FieldSubName] }
func (r CanonicalRow) MarkObt() string      { return r[FieldMarkObt] }
func (r CanonicalRow) FullMark() string     { return r[FieldFullMark] }
func (r CanonicalRow) Batch() string        { return r[FieldBatch] }
func (r CanonicalRow) AcademicYear() string { return r[FieldAcademicYear] }
func (r CanonicalRow) DateOfExam() string   { return r[FieldDateOfExam] }

// CanonicalFromRecord copies the named long-schema columns out of a
// vertical record. Columns the record lacks stay empty.
func CanonicalFromRecord(rec RawRecord) CanonicalRow {
	var row CanonicalRow
	for f := Field(0); f < fieldCount; f++ {
		if v, ok := rec.Get(fieldNames[f]); ok {
			row[f] = v
		}
	}
	return row
}

// CanonicalFromTable converts every record of a vertical table.
func CanonicalFromTable(t *Table) []CanonicalRow {
	rows := make([]CanonicalRow, 0, t.Len())
	for _, rec := range t.Records {
		rows = append(rows, CanonicalFromRecord(rec))
	}
	return rows
}

// Values returns the long-schema values in CanonicalColumns order.
func (r CanonicalRow) Values() []string {
	return append([]string(nil), r[:canonicalFieldCount]...)
}
