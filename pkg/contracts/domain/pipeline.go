package domain

// Layout identifies the shape of an academic-results export.
type Layout string

const (
	// LayoutVertical is the long schema: one row per student, semester and course.
	LayoutVertical Layout = "vertical"
	// LayoutHorizontal is the wide schema: one row per student and semester,
	// one column per course.
	LayoutHorizontal Layout = "horizontal"
)

// String implements fmt.Stringer
func (l Layout) String() string {
	return string(l)
}

// PipelineStats summarizes a single pipeline run.
type PipelineStats struct {
	Layout        Layout `json:"layout"`
	RecordsRead   int    `json:"records_read"`
	RowsCanonical int    `json:"rows_canonical"`
	RowsAccepted  int    `json:"rows_accepted"`
	RowsRejected  int    `json:"rows_rejected"`
	Students      int    `json:"students"`
	Semesters     int    `json:"semesters"`
}

// GradeSheet is the output of one pipeline run.
type GradeSheet struct {
	Students []*Student    `json:"students"`
	Stats    PipelineStats `json:"stats"`
}
