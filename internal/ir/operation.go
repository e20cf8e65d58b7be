package ir

import "fmt"

// Slot binds a parameter name on an operation to the definition name of the
// value that flows through it.
type Slot struct {
	Param      string `json:"param"`
	Definition string `json:"definition"`
}

// String renders the slot as "param:definition".
func (s Slot) String() string {
	return s.Param + ":" + s.Definition
}

// Operation describes one named unit of work. The supported shape is exactly
// one input slot and one output slot; the slices exist so that richer
// declarations can be represented and rejected instead of silently truncated.
type Operation struct {
	Name    string `json:"name"`
	Inputs  []Slot `json:"inputs"`
	Outputs []Slot `json:"outputs"`
}

// NewOperation builds a single-input, single-output descriptor.
func NewOperation(name string, in, out Slot) Operation {
	return Operation{
		Name:    name,
		Inputs:  []Slot{in},
		Outputs: []Slot{out},
	}
}

// Single reports whether the operation has exactly one input and one output.
func (o Operation) Single() bool {
	return len(o.Inputs) == 1 && len(o.Outputs) == 1
}

// Input returns the sole input slot. It panics on multi-slot descriptors;
// callers check Single first.
func (o Operation) Input() Slot {
	if len(o.Inputs) != 1 {
		panic(fmt.Sprintf("ir: operation %q has %d inputs", o.Name, len(o.Inputs)))
	}
	return o.Inputs[0]
}

// Output returns the sole output slot. It panics on multi-slot descriptors;
// callers check Single first.
func (o Operation) Output() Slot {
	if len(o.Outputs) != 1 {
		panic(fmt.Sprintf("ir: operation %q has %d outputs", o.Name, len(o.Outputs)))
	}
	return o.Outputs[0]
}

// Clone returns a deep copy so that callers cannot mutate shared slot slices.
func (o Operation) Clone() Operation {
	return Operation{
		Name:    o.Name,
		Inputs:  append([]Slot(nil), o.Inputs...),
		Outputs: append([]Slot(nil), o.Outputs...),
	}
}
