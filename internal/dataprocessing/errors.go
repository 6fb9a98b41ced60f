package dataprocessing

import "errors"

var (
	// ErrEmptyInput is returned when an export has no records to detect a
	// layout from.
	ErrEmptyInput = errors.New("export contains no records")

	// ErrUnrecognizedLayout is returned when a horizontal export is missing
	// its metadata rows.
	ErrUnrecognizedLayout = errors.New("unrecognized export layout")

	// ErrUnsupportedFormat is returned by Reader for files that are neither
	// CSV nor XLSX.
	ErrUnsupportedFormat = errors.New("unsupported export format")
)
