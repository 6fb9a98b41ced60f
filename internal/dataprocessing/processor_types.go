package dataprocessing

import (
	"context"

	"gradesheet/pkg/contracts/domain"
)

// Renderer receives the finished student collection of a run. Report
// layout and printing live behind this boundary.
type Renderer interface {
	Render(ctx context.Context, sheet *domain.GradeSheet) error
}

// RendererFunc adapts a function to the Renderer interface.
type RendererFunc func(ctx context.Context, sheet *domain.GradeSheet) error

// Render calls f(ctx, sheet).
func (f RendererFunc) Render(ctx context.Context, sheet *domain.GradeSheet) error {
	return f(ctx, sheet)
}

// DefaultABCID is the placeholder written to every student's abc_id.
const DefaultABCID = "1234"

// ProcessingOptions configures aggregation behavior
type ProcessingOptions struct {
	// ABCID is copied to every student; it is never read from the export.
	ABCID string
}

// DefaultOptions returns default processing options
func DefaultOptions() ProcessingOptions {
	return ProcessingOptions{
		ABCID: DefaultABCID,
	}
}
