package graph

import "slices"

// FindPath walks backwards from destination until it reaches an operation
// whose input is source, and returns the chain ordered source to destination.
//
// At each step the first operation, in export order, whose output equals the
// currently needed definition is chosen. If that operation is already on the
// path the walk stops with ErrCodeCycleDetected; if nothing produces the
// definition it stops with ErrCodePathNotFound. Every step adds a distinct
// operation, so the walk ends within Len steps.
func FindPath(l *Lookup, destination, source string) ([]string, error) {
	if err := l.CheckShapes(); err != nil {
		return nil, err
	}

	dest, ok := l.entries[destination]
	if !ok {
		return nil, newUnknownOperationError(destination)
	}

	needed := dest.Inputs[0].Definition
	path := []string{destination}
	onPath := map[string]bool{destination: true}

	for needed != source {
		producer, found := l.firstProducer(needed)
		if !found {
			return nil, newNoProducerError(needed, slices.Clone(path))
		}
		if onPath[producer] {
			return nil, newCycleError(producer, needed, slices.Clone(path))
		}
		path = append(path, producer)
		onPath[producer] = true
		needed = l.entries[producer].Inputs[0].Definition
	}

	slices.Reverse(path)
	return path, nil
}

// firstProducer returns the first operation in export order whose output
// definition equals def.
func (l *Lookup) firstProducer(def string) (string, bool) {
	for _, name := range l.names {
		if l.entries[name].Outputs[0].Definition == def {
			return name, true
		}
	}
	return "", false
}
