package palcalc

import (
	"errors"
	"fmt"
)

var (
	// ErrNoData is returned when the histogram holds no pixels.
	ErrNoData = errors.New("histogram is empty")

	// ErrInvalidColors is returned for a negative palette size.
	ErrInvalidColors = errors.New("colors must not be negative")

	// ErrInvalidAttempts is returned when attempts is not positive.
	ErrInvalidAttempts = errors.New("attempts must be positive")

	// ErrInvalidSteps is returned when steps is not positive.
	ErrInvalidSteps = errors.New("steps must be positive")

	// ErrInvalidWorkers is returned for a negative worker count.
	ErrInvalidWorkers = errors.New("workers must not be negative")
)

// ErrInvalidOption reports a rejected configuration value.
//
// The matching sentinel (ErrInvalidColors, ErrInvalidAttempts, ...) can be
// tested with errors.Is.
type ErrInvalidOption struct {
	Name  string
	Value int
	cause error
}

func (e *ErrInvalidOption) Error() string {
	return fmt.Sprintf("invalid option %s=%d: %v", e.Name, e.Value, e.cause)
}

func (e *ErrInvalidOption) Unwrap() error { return e.cause }
