package compiler

import (
	"errors"
	"fmt"
)

// CompileError represents an error detected during the timeline sweep.
//
// Compile errors abort the whole channel's compile; a malformed timeline
// cannot be partially trusted by a hardware consumer, so no partial array is
// ever returned alongside one.
type CompileError struct {
	// Code identifies the error category.
	Code CompileErrorCode

	// Message is a human-readable description.
	Message string

	// Channel names the affected channel, when known.
	Channel string

	// StartTick and EndTick identify the offending record's tick range.
	StartTick uint64
	EndTick   uint64

	// PrevEnd is the previous record's effective end (for overlap errors):
	// the earliest tick the offending record could legally start at.
	PrevEnd uint64
}

// CompileErrorCode categorizes compile errors.
type CompileErrorCode string

const (
	// ErrCodeOverlap indicates two records claim the same tick, or records
	// were placed in decreasing order.
	ErrCodeOverlap CompileErrorCode = "OVERLAP"

	// ErrCodeTimeMismatch indicates the per-tick time array does not cover
	// the channel's total length.
	ErrCodeTimeMismatch CompileErrorCode = "TIME_MISMATCH"
)

// Error implements the error interface.
func (e *CompileError) Error() string {
	if e.Channel != "" {
		return fmt.Sprintf("%s: %s (channel=%s, ticks=[%d, %d), prev_end=%d)",
			e.Code, e.Message, e.Channel, e.StartTick, e.EndTick, e.PrevEnd)
	}
	return fmt.Sprintf("%s: %s (ticks=[%d, %d), prev_end=%d)",
		e.Code, e.Message, e.StartTick, e.EndTick, e.PrevEnd)
}

// IsOverlap returns true if the error is an overlap error.
// Uses errors.As to handle wrapped errors.
func IsOverlap(err error) bool {
	var ce *CompileError
	return errors.As(err, &ce) && ce.Code == ErrCodeOverlap
}

// newOverlapError creates a CompileError for a record starting before the
// previous record's effective end.
func newOverlapError(rec rangeTicks, prevEnd uint64) *CompileError {
	return &CompileError{
		Code:      ErrCodeOverlap,
		Message:   "record starts before the previous record's effective end",
		StartTick: rec.start,
		EndTick:   rec.end,
		PrevEnd:   prevEnd,
	}
}

// rangeTicks is a start/effective-end pair for diagnostics.
type rangeTicks struct {
	start uint64
	end   uint64
}
