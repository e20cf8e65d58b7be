// Package catalog holds the ordered, immutable set of operation descriptors
// known to shouldi.
//
// Registration is explicit: Builtin returns a literal list, and CUE catalogs
// are compiled into the same shape. Order is preserved everywhere because it
// decides which producer wins when two operations emit the same definition.
package catalog

import (
	"fmt"

	"github.com/roach88/shouldi/internal/ir"
)

// Catalog is an ordered set of descriptors. It is safe for concurrent reads.
type Catalog struct {
	ops   []ir.Operation
	index map[string]int
}

// New copies ops into a catalog. When names repeat, Get returns the first
// declaration; duplicates are still reported by graph.Export.
func New(ops ...ir.Operation) *Catalog {
	c := &Catalog{
		ops:   make([]ir.Operation, len(ops)),
		index: make(map[string]int, len(ops)),
	}
	for i, op := range ops {
		c.ops[i] = op.Clone()
		if _, seen := c.index[op.Name]; !seen {
			c.index[op.Name] = i
		}
	}
	return c
}

// Len returns the number of descriptors.
func (c *Catalog) Len() int {
	return len(c.ops)
}

// Operations returns a copy of every descriptor in declaration order.
func (c *Catalog) Operations() []ir.Operation {
	out := make([]ir.Operation, len(c.ops))
	for i, op := range c.ops {
		out[i] = op.Clone()
	}
	return out
}

// Get returns the descriptor named name.
func (c *Catalog) Get(name string) (ir.Operation, bool) {
	i, ok := c.index[name]
	if !ok {
		return ir.Operation{}, false
	}
	return c.ops[i].Clone(), true
}

// Subset returns the named descriptors in the order the names are given.
// An empty name list selects the whole catalog.
func (c *Catalog) Subset(names ...string) ([]ir.Operation, error) {
	if len(names) == 0 {
		return c.Operations(), nil
	}
	out := make([]ir.Operation, 0, len(names))
	for _, name := range names {
		op, ok := c.Get(name)
		if !ok {
			return nil, fmt.Errorf("unknown operation %q", name)
		}
		out = append(out, op)
	}
	return out, nil
}
