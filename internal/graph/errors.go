package graph

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode categorizes graph errors.
type ErrorCode string

const (
	// ErrCodeDuplicateName indicates two descriptors share a name.
	ErrCodeDuplicateName ErrorCode = "DUPLICATE_OPERATION_NAME"

	// ErrCodeUnsupportedShape indicates a descriptor without exactly one
	// input and one output.
	ErrCodeUnsupportedShape ErrorCode = "UNSUPPORTED_SHAPE"

	// ErrCodePathNotFound indicates nothing produces the needed definition,
	// or the destination operation is unknown.
	ErrCodePathNotFound ErrorCode = "PATH_NOT_FOUND"

	// ErrCodeCycleDetected indicates the walk would revisit an operation.
	ErrCodeCycleDetected ErrorCode = "CYCLE_DETECTED"
)

// Error is returned by Export and FindPath.
//
// All graph errors are local and deterministic; retrying with the same input
// yields the same error.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Operation names the descriptor involved, if any.
	Operation string

	// Definition names the definition that could not be satisfied, if any.
	Definition string

	// Partial is the chain walked so far, destination first.
	Partial []string
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", e.Code, e.Message)
	if e.Operation != "" {
		fmt.Fprintf(&b, " (operation=%s", e.Operation)
		if e.Definition != "" {
			fmt.Fprintf(&b, ", definition=%s", e.Definition)
		}
		b.WriteString(")")
	} else if e.Definition != "" {
		fmt.Fprintf(&b, " (definition=%s)", e.Definition)
	}
	return b.String()
}

func hasCode(err error, code ErrorCode) bool {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Code == code
	}
	return false
}

// IsDuplicateName reports whether err is a duplicate operation name error.
func IsDuplicateName(err error) bool { return hasCode(err, ErrCodeDuplicateName) }

// IsUnsupportedShape reports whether err is an unsupported shape error.
func IsUnsupportedShape(err error) bool { return hasCode(err, ErrCodeUnsupportedShape) }

// IsPathNotFound reports whether err is a path not found error.
func IsPathNotFound(err error) bool { return hasCode(err, ErrCodePathNotFound) }

// IsCycle reports whether err is a cycle detection error.
func IsCycle(err error) bool { return hasCode(err, ErrCodeCycleDetected) }

func newDuplicateNameError(name string) *Error {
	return &Error{
		Code:      ErrCodeDuplicateName,
		Message:   "operation name declared more than once",
		Operation: name,
	}
}

func newUnsupportedShapeError(name string, inputs, outputs int) *Error {
	return &Error{
		Code:      ErrCodeUnsupportedShape,
		Message:   fmt.Sprintf("expected 1 input and 1 output, got %d and %d", inputs, outputs),
		Operation: name,
	}
}

func newUnknownOperationError(name string) *Error {
	return &Error{
		Code:      ErrCodePathNotFound,
		Message:   "destination operation not found",
		Operation: name,
	}
}

func newNoProducerError(definition string, partial []string) *Error {
	return &Error{
		Code:       ErrCodePathNotFound,
		Message:    "no operation produces the needed definition",
		Definition: definition,
		Partial:    partial,
	}
}

func newCycleError(name, definition string, partial []string) *Error {
	return &Error{
		Code:       ErrCodeCycleDetected,
		Message:    "walk would revisit an operation already on the path",
		Operation:  name,
		Definition: definition,
		Partial:    partial,
	}
}
