package compiler

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/shouldi/internal/ir"
)

// CompileOperation parses one CUE operation declaration into a descriptor.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The CUE value is the struct under the operation's label:
//
//	operation: pypi_package_json: {
//		inputs: package: "package"
//		outputs: response_json: "package_json"
//	}
//
// Each field of inputs/outputs maps a parameter name to a definition name.
// Field order is declaration order.
func CompileOperation(name string, v cue.Value) (*ir.Operation, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	op := &ir.Operation{Name: name}

	var err error
	op.Inputs, err = parseSlots(v, "inputs")
	if err != nil {
		return nil, err
	}
	op.Outputs, err = parseSlots(v, "outputs")
	if err != nil {
		return nil, err
	}

	return op, nil
}

// parseSlots reads a param -> definition struct. A missing struct yields no
// slots; Validate reports that.
func parseSlots(v cue.Value, field string) ([]ir.Slot, error) {
	slotsVal := v.LookupPath(cue.ParsePath(field))
	if !slotsVal.Exists() {
		return nil, nil
	}

	iter, err := slotsVal.Fields()
	if err != nil {
		return nil, &CompileError{
			Field:   field,
			Message: fmt.Sprintf("%s must be a struct of parameter: definition", field),
			Pos:     slotsVal.Pos(),
		}
	}

	var slots []ir.Slot
	for iter.Next() {
		def, err := iter.Value().String()
		if err != nil {
			return nil, &CompileError{
				Field:   field + "." + iter.Label(),
				Message: "definition name must be a string",
				Pos:     iter.Value().Pos(),
			}
		}
		slots = append(slots, ir.Slot{Param: iter.Label(), Definition: def})
	}
	return slots, nil
}

// CompileError represents a compilation error with position info.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
