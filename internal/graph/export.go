package graph

import (
	"github.com/roach88/shouldi/internal/ir"
)

// Entry is the exported view of one operation.
type Entry struct {
	Inputs  []ir.Slot `json:"inputs"`
	Outputs []ir.Slot `json:"outputs"`
}

// Lookup maps operation names to their slots and remembers export order.
// A Lookup is never mutated after Export returns it.
type Lookup struct {
	names   []string
	entries map[string]Entry
}

// Export builds a lookup with one entry per descriptor, in input order.
// Fails with ErrCodeDuplicateName if two descriptors share a name.
func Export(ops []ir.Operation) (*Lookup, error) {
	l := &Lookup{
		names:   make([]string, 0, len(ops)),
		entries: make(map[string]Entry, len(ops)),
	}
	for _, op := range ops {
		if _, exists := l.entries[op.Name]; exists {
			return nil, newDuplicateNameError(op.Name)
		}
		c := op.Clone()
		l.names = append(l.names, op.Name)
		l.entries[op.Name] = Entry{Inputs: c.Inputs, Outputs: c.Outputs}
	}
	return l, nil
}

// Len returns the number of entries.
func (l *Lookup) Len() int {
	return len(l.names)
}

// Names returns operation names in export order.
func (l *Lookup) Names() []string {
	return append([]string(nil), l.names...)
}

// Get returns a copy of the entry for name.
func (l *Lookup) Get(name string) (Entry, bool) {
	e, ok := l.entries[name]
	if !ok {
		return Entry{}, false
	}
	return Entry{
		Inputs:  append([]ir.Slot(nil), e.Inputs...),
		Outputs: append([]ir.Slot(nil), e.Outputs...),
	}, true
}

// CheckShapes fails with ErrCodeUnsupportedShape on the first entry, in
// export order, that does not have exactly one input and one output.
func (l *Lookup) CheckShapes() error {
	for _, name := range l.names {
		e := l.entries[name]
		if len(e.Inputs) != 1 || len(e.Outputs) != 1 {
			return newUnsupportedShapeError(name, len(e.Inputs), len(e.Outputs))
		}
	}
	return nil
}
