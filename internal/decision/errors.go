package decision

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes decision errors.
type ErrorCode string

const (
	// ErrCodeMissingSignal indicates a required signal is absent.
	ErrCodeMissingSignal ErrorCode = "MISSING_SIGNAL"

	// ErrCodeInvalidSignal indicates a signal has the wrong type or a
	// negative count.
	ErrCodeInvalidSignal ErrorCode = "INVALID_SIGNAL"
)

// Error aborts the evaluation of a single package.
type Error struct {
	Code    ErrorCode
	Package string
	Signal  string
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s (package=%s, signal=%s)", e.Code, e.Message, e.Package, e.Signal)
}

// IsMissingSignal reports whether err is a missing signal error.
func IsMissingSignal(err error) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == ErrCodeMissingSignal
	}
	return false
}

// IsInvalidSignal reports whether err is an invalid signal error.
func IsInvalidSignal(err error) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == ErrCodeInvalidSignal
	}
	return false
}
