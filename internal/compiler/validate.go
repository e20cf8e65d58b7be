package compiler

import (
	"fmt"
	"strings"

	"github.com/roach88/shouldi/internal/ir"
)

// Validation error codes (E100-E199)
const (
	ErrOperationNameEmpty = "E101" // operation name is required
	ErrOperationNoInputs  = "E102" // at least one input required
	ErrOperationNoOutputs = "E103" // at least one output required
	ErrSlotInvalid        = "E104" // empty parameter or definition name
	ErrDuplicateName      = "E105" // duplicate operation or parameter name
	ErrUnsupportedShape   = "E106" // more than one input or output
)

// ValidationError represents a schema validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks a single descriptor. Returns all errors found (does not
// fail-fast). Multi-slot descriptors are reported with ErrUnsupportedShape
// because path reconstruction cannot use them.
func Validate(op ir.Operation) []ValidationError {
	var errs []ValidationError
	field := "operation." + op.Name

	if strings.TrimSpace(op.Name) == "" {
		errs = append(errs, ValidationError{
			Field:   "operation",
			Message: "operation name is required",
			Code:    ErrOperationNameEmpty,
		})
	}

	if len(op.Inputs) == 0 {
		errs = append(errs, ValidationError{
			Field:   field + ".inputs",
			Message: "at least one input is required",
			Code:    ErrOperationNoInputs,
		})
	}
	if len(op.Outputs) == 0 {
		errs = append(errs, ValidationError{
			Field:   field + ".outputs",
			Message: "at least one output is required",
			Code:    ErrOperationNoOutputs,
		})
	}

	errs = append(errs, validateSlots(field+".inputs", op.Inputs)...)
	errs = append(errs, validateSlots(field+".outputs", op.Outputs)...)

	if len(op.Inputs) > 1 || len(op.Outputs) > 1 {
		errs = append(errs, ValidationError{
			Field:   field,
			Message: fmt.Sprintf("expected 1 input and 1 output, got %d and %d", len(op.Inputs), len(op.Outputs)),
			Code:    ErrUnsupportedShape,
		})
	}

	return errs
}

func validateSlots(field string, slots []ir.Slot) []ValidationError {
	var errs []ValidationError
	seen := make(map[string]bool, len(slots))
	for _, s := range slots {
		if strings.TrimSpace(s.Param) == "" || strings.TrimSpace(s.Definition) == "" {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("slot %q must name a parameter and a definition", s.String()),
				Code:    ErrSlotInvalid,
			})
		}
		if seen[s.Param] {
			errs = append(errs, ValidationError{
				Field:   field + "." + s.Param,
				Message: "parameter declared more than once",
				Code:    ErrDuplicateName,
			})
		}
		seen[s.Param] = true
	}
	return errs
}

// ValidateCatalog validates every descriptor and reports repeated names.
func ValidateCatalog(ops []ir.Operation) []ValidationError {
	var errs []ValidationError
	seen := make(map[string]bool, len(ops))
	for _, op := range ops {
		if seen[op.Name] {
			errs = append(errs, ValidationError{
				Field:   "operation." + op.Name,
				Message: "operation name declared more than once",
				Code:    ErrDuplicateName,
			})
		}
		seen[op.Name] = true
		errs = append(errs, Validate(op)...)
	}
	return errs
}
