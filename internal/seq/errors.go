package seq

import (
	"errors"
	"fmt"
)

// ConstructionError represents a failure to build an Instruction or
// IntervalRecord. Construction errors are fail-fast: an invalid instruction
// or record can never be observed to exist.
type ConstructionError struct {
	// Code identifies the error category.
	Code ConstructionErrorCode

	// Message is a human-readable description.
	Message string

	// Instr names the instruction type involved, if any.
	Instr string

	// Arg names the offending argument (for missing-argument errors).
	Arg string

	// StartTick and EndTick identify the offending interval
	// (for invalid-interval errors).
	StartTick uint64
	EndTick   uint64
}

// ConstructionErrorCode categorizes construction errors.
type ConstructionErrorCode string

const (
	// ErrCodeMissingArgument indicates a required instruction argument is absent.
	ErrCodeMissingArgument ConstructionErrorCode = "MISSING_ARGUMENT"

	// ErrCodeInvalidInterval indicates a closed interval with end <= start.
	ErrCodeInvalidInterval ConstructionErrorCode = "INVALID_INTERVAL"

	// ErrCodeDegenerateRamp indicates a linear ramp with start_time == end_time.
	ErrCodeDegenerateRamp ConstructionErrorCode = "DEGENERATE_RAMP"
)

// Error implements the error interface.
func (e *ConstructionError) Error() string {
	switch e.Code {
	case ErrCodeMissingArgument:
		return fmt.Sprintf("%s: %s (instr=%s, arg=%s)", e.Code, e.Message, e.Instr, e.Arg)
	case ErrCodeInvalidInterval:
		return fmt.Sprintf("%s: %s (start=%d, end=%d)", e.Code, e.Message, e.StartTick, e.EndTick)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
}

// IsMissingArgument returns true if the error is a missing-argument error.
// Uses errors.As to handle wrapped errors.
func IsMissingArgument(err error) bool {
	var ce *ConstructionError
	return errors.As(err, &ce) && ce.Code == ErrCodeMissingArgument
}

// IsInvalidInterval returns true if the error is an invalid-interval error.
func IsInvalidInterval(err error) bool {
	var ce *ConstructionError
	return errors.As(err, &ce) && ce.Code == ErrCodeInvalidInterval
}

// IsDegenerateRamp returns true if the error is a degenerate-ramp error.
func IsDegenerateRamp(err error) bool {
	var ce *ConstructionError
	return errors.As(err, &ce) && ce.Code == ErrCodeDegenerateRamp
}

// newMissingArgument creates a ConstructionError for an absent required key.
func newMissingArgument(instr InstrType, arg string) *ConstructionError {
	return &ConstructionError{
		Code:    ErrCodeMissingArgument,
		Message: "required argument is missing",
		Instr:   instr.String(),
		Arg:     arg,
	}
}
