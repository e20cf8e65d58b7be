package testutil

import (
	"fmt"

	"github.com/roach88/shouldi/internal/ir"
)

// Op builds a single-slot descriptor whose parameter names mirror the
// definition names.
func Op(name, in, out string) ir.Operation {
	return ir.NewOperation(name, ir.Slot{Param: in, Definition: in}, ir.Slot{Param: out, Definition: out})
}

// Chain builds n operations wired output-to-input:
//
//	prefix0: d0 -> d1, prefix1: d1 -> d2, ..., prefix{n-1}: d{n-1} -> d{n}
//
// Finding the path from the last operation back to "d0" must return the
// operations in creation order.
func Chain(prefix string, n int) []ir.Operation {
	ops := make([]ir.Operation, n)
	for i := range ops {
		ops[i] = Op(fmt.Sprintf("%s%d", prefix, i), fmt.Sprintf("d%d", i), fmt.Sprintf("d%d", i+1))
	}
	return ops
}

// Names returns the operation names in order.
func Names(ops []ir.Operation) []string {
	names := make([]string, len(ops))
	for i, op := range ops {
		names[i] = op.Name
	}
	return names
}
