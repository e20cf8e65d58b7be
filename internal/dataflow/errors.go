package dataflow

import (
	"errors"
	"fmt"
)

// RuntimeErrorCode categorizes orchestrator failures.
type RuntimeErrorCode string

const (
	// ErrCodeMissingImplementation indicates a registered operation has no function.
	ErrCodeMissingImplementation RuntimeErrorCode = "MISSING_IMPLEMENTATION"

	// ErrCodeOperationFailed indicates an operation returned an error.
	ErrCodeOperationFailed RuntimeErrorCode = "OPERATION_FAILED"

	// ErrCodeCancelled indicates the context run was cancelled before finishing.
	ErrCodeCancelled RuntimeErrorCode = "CANCELLED"
)

// RuntimeError describes a failed context run.
type RuntimeError struct {
	Code      RuntimeErrorCode
	Message   string
	Context   string // context key, usually the package name
	RunID     string
	Operation string
	Err       error
}

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Operation != "" {
		msg += fmt.Sprintf(" (operation=%s)", e.Operation)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// IsOperationFailed reports whether err is an operation failure.
func IsOperationFailed(err error) bool {
	var re *RuntimeError
	return errors.As(err, &re) && re.Code == ErrCodeOperationFailed
}

// IsCancelled reports whether err is a cancelled context run.
func IsCancelled(err error) bool {
	var re *RuntimeError
	return errors.As(err, &re) && re.Code == ErrCodeCancelled
}
