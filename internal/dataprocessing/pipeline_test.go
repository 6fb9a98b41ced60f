package dataprocessing

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	apperrors "gradesheet/internal/errors"
	"gradesheet/internal/shared/testutil"
	"gradesheet/pkg/contracts/domain"
)

type mockRecorder struct {
	mock.Mock
}

func (m *mockRecorder) RecordRun(ctx context.Context, stats domain.PipelineStats, duration time.Duration) {
	m.Called(ctx, stats, duration)
}

func (m *mockRecorder) RecordFailure(ctx context.Context, reason string) {
	m.Called(ctx, reason)
}

func TestPipeline_EmptyInput(t *testing.T) {
	rec := new(mockRecorder)
	rec.On("RecordFailure", mock.Anything, "empty_input").Twice()

	p := NewPipeline(nil, WithRecorder(rec))

	for _, table := range []*Table{nil, NewTable(testutil.VerticalHeader, nil)} {
		sheet, err := p.Run(context.Background(), table)
		require.Error(t, err)
		assert.Nil(t, sheet)
		assert.True(t, errors.Is(err, ErrEmptyInput))
		assert.Equal(t, apperrors.ErrTypeLayout, apperrors.TypeOf(err))
	}
	rec.AssertExpectations(t)
}

func TestPipeline_Vertical(t *testing.T) {
	rec := new(mockRecorder)
	rec.On("RecordRun", mock.Anything, mock.AnythingOfType("domain.PipelineStats"), mock.AnythingOfType("time.Duration")).Once()

	logger, handler := testutil.NewTestLogger(t)
	p := NewPipeline(logger, WithRecorder(rec))

	sheet, err := p.Run(context.Background(), tableOf(testutil.VerticalExport()))
	require.NoError(t, err)

	assert.Equal(t, domain.PipelineStats{
		Layout:        domain.LayoutVertical,
		RecordsRead:   6,
		RowsCanonical: 6,
		RowsAccepted:  5,
		RowsRejected:  1,
		Students:      2,
		Semesters:     3,
	}, sheet.Stats)
	require.Len(t, sheet.Students, 2)
	assert.Equal(t, "R1", sheet.Students[0].RollNo)
	assert.Equal(t, "R2", sheet.Students[1].RollNo)

	testutil.AssertLogContains(t, handler, slog.LevelInfo, "pipeline run complete")
	testutil.AssertLogAttr(t, handler, "layout", "vertical")
	rec.AssertExpectations(t)
}

func TestPipeline_Horizontal(t *testing.T) {
	sheet, err := NewPipeline(nil).Run(context.Background(), tableOf(testutil.HorizontalExport()))
	require.NoError(t, err)

	assert.Equal(t, domain.LayoutHorizontal, sheet.Stats.Layout)
	assert.Equal(t, 5, sheet.Stats.RowsCanonical)
	require.Len(t, sheet.Students, 2)

	r1 := sheet.Students[0].Results[0]
	assert.Equal(t, 1, r1.Semester)
	assert.Equal(t, "2023", r1.AcademicYear)
	require.NotNil(t, r1.Batch)
	assert.Equal(t, 2023, *r1.Batch)
	assert.Equal(t, 8.33, r1.SGPA)
	assert.Equal(t, "A", r1.SemGrade)
	require.Len(t, r1.Marks, 2)
	assert.Equal(t, 100.0, r1.Marks[0].FullMark)
	assert.Equal(t, "2024-05-20", r1.Marks[0].DateOfExam)

	r2 := sheet.Students[1].Results[0]
	assert.Equal(t, 7.44, r2.SGPA)
	assert.Equal(t, "B+", r2.SemGrade)
}

func TestPipeline_HorizontalWithoutMetadata(t *testing.T) {
	rec := new(mockRecorder)
	rec.On("RecordFailure", mock.Anything, "unrecognized_layout").Once()

	e := testutil.HorizontalExport()
	e.Rows = e.Rows[:3]

	_, err := NewPipeline(nil, WithRecorder(rec)).Run(context.Background(), tableOf(e))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnrecognizedLayout))
	rec.AssertExpectations(t)
}

func TestPipeline_Deterministic(t *testing.T) {
	p := NewPipeline(nil)
	for _, e := range []testutil.Export{testutil.VerticalExport(), testutil.HorizontalExport()} {
		first, err := p.Run(context.Background(), tableOf(e))
		require.NoError(t, err)
		second, err := p.Run(context.Background(), tableOf(e))
		require.NoError(t, err)
		assert.Equal(t, first, second)
	}
}

func TestPipeline_Spans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	defer provider.Shutdown(context.Background())

	p := NewPipeline(nil, WithTracer(provider.Tracer("test")))
	_, err := p.Run(context.Background(), tableOf(testutil.HorizontalExport()))
	require.NoError(t, err)

	var names []string
	for _, span := range recorder.Ended() {
		names = append(names, span.Name())
	}
	assert.ElementsMatch(t, []string{"pipeline.normalize", "pipeline.aggregate", "pipeline.run"}, names)
}

func TestPipeline_RunAndRender(t *testing.T) {
	t.Run("hands the sheet to the renderer", func(t *testing.T) {
		var got *domain.GradeSheet
		r := RendererFunc(func(_ context.Context, sheet *domain.GradeSheet) error {
			got = sheet
			return nil
		})

		sheet, err := NewPipeline(nil).RunAndRender(context.Background(), tableOf(testutil.VerticalExport()), r)
		require.NoError(t, err)
		assert.Same(t, sheet, got)
	})

	t.Run("renderer errors are wrapped", func(t *testing.T) {
		boom := errors.New("disk full")
		r := RendererFunc(func(context.Context, *domain.GradeSheet) error { return boom })

		sheet, err := NewPipeline(nil).RunAndRender(context.Background(), tableOf(testutil.VerticalExport()), r)
		assert.ErrorIs(t, err, boom)
		assert.NotNil(t, sheet)
	})

	t.Run("renderer is not called on failure", func(t *testing.T) {
		called := false
		r := RendererFunc(func(context.Context, *domain.GradeSheet) error {
			called = true
			return nil
		})

		_, err := NewPipeline(nil).RunAndRender(context.Background(), NewTable(nil, nil), r)
		assert.ErrorIs(t, err, ErrEmptyInput)
		assert.False(t, called)
	})
}

func TestPipeline_ProcessingOptions(t *testing.T) {
	p := NewPipeline(nil, WithProcessingOptions(ProcessingOptions{ABCID: "placeholder"}))
	sheet, err := p.Run(context.Background(), tableOf(testutil.VerticalExport()))
	require.NoError(t, err)
	for _, s := range sheet.Students {
		assert.Equal(t, "placeholder", s.ABCID)
	}
}
