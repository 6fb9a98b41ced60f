package services

import "errors"

// ErrNoRenderer is returned when a caller asks for processing without
// saying where the result goes.
var ErrNoRenderer = errors.New("no renderer configured")
