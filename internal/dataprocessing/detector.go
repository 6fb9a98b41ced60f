package dataprocessing

import (
	"gradesheet/pkg/contracts/domain"
)

// DetectLayout decides the layout from the first record of an export:
// vertical when it carries a non-empty "Roll No", horizontal otherwise.
// Callers must reject empty inputs before calling it.
func DetectLayout(first RawRecord) domain.Layout {
	if v, ok := first.Get(FieldRollNo.String()); ok && present(v) {
		return domain.LayoutVertical
	}
	return domain.LayoutHorizontal
}

// present reports whether a cell counts as filled in. Whitespace is content.
func present(v string) bool {
	return v != ""
}
