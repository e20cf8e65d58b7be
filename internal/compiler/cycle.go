package compiler

import (
	"fmt"
	"strings"

	"github.com/roach88/shouldi/internal/ir"
)

// CycleWarning represents a cycle among declared operations.
//
// Cycles are warnings, not errors: a catalog may contain a loop that no
// path request ever walks into. Requests that do walk into one fail with a
// cycle error from the path reconstructor.
type CycleWarning struct {
	Path    []string `json:"path"`    // Cycle path: ["op-a", "op-b", "op-a"]
	Message string   `json:"message"` // Human-readable description
	Level   string   `json:"level"`   // "warning"
}

// AnalyzeCycles performs static cycle analysis on a catalog.
//
// The algorithm:
//  1. Build producer → consumer edges: A → B when an output definition of A
//     is an input definition of B
//  2. Use Tarjan's algorithm to find strongly connected components
//  3. Report each SCC with size > 1 or a self-loop as a warning
//
// Nodes are visited in declaration order so the warnings are deterministic.
// A DAG returns an empty warning list.
func AnalyzeCycles(ops []ir.Operation) []CycleWarning {
	warnings := []CycleWarning{}
	if len(ops) == 0 {
		return warnings
	}

	graph, order := buildDependencyGraph(ops)
	for _, scc := range tarjanSCC(graph, order) {
		if len(scc) > 1 || hasSelfLoop(scc[0], graph) {
			warnings = append(warnings, cycleSCCToWarning(scc, graph))
		}
	}
	return warnings
}

// dependencyGraph maps operation name → operations consuming its outputs.
type dependencyGraph map[string][]string

// buildDependencyGraph returns the edge map and the node order.
func buildDependencyGraph(ops []ir.Operation) (dependencyGraph, []string) {
	graph := make(dependencyGraph, len(ops))
	order := make([]string, 0, len(ops))

	// definition → consumers, in declaration order
	consumers := make(map[string][]string)
	for _, op := range ops {
		for _, in := range op.Inputs {
			consumers[in.Definition] = append(consumers[in.Definition], op.Name)
		}
	}

	for _, op := range ops {
		if _, seen := graph[op.Name]; !seen {
			order = append(order, op.Name)
			graph[op.Name] = []string{}
		}
		for _, out := range op.Outputs {
			graph[op.Name] = append(graph[op.Name], consumers[out.Definition]...)
		}
	}

	return graph, order
}

// hasSelfLoop checks if a node has an edge to itself.
func hasSelfLoop(node string, graph dependencyGraph) bool {
	for _, neighbor := range graph[node] {
		if neighbor == node {
			return true
		}
	}
	return false
}

// tarjanSCC finds strongly connected components using Tarjan's algorithm.
func tarjanSCC(graph dependencyGraph, order []string) [][]string {
	var (
		index   = 0
		stack   []string
		indices = make(map[string]int)
		lowlink = make(map[string]int)
		onStack = make(map[string]bool)
		sccs    [][]string
	)

	var strongConnect func(string)
	strongConnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range graph[v] {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		// v is a root node: pop the stack and emit an SCC
		if lowlink[v] == indices[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}

	for _, node := range order {
		if _, visited := indices[node]; !visited {
			strongConnect(node)
		}
	}

	return sccs
}

// cycleSCCToWarning converts an SCC to a CycleWarning.
func cycleSCCToWarning(scc []string, graph dependencyGraph) CycleWarning {
	if len(scc) == 1 {
		name := scc[0]
		return CycleWarning{
			Path:    []string{name, name},
			Message: fmt.Sprintf("Operation consumes its own output: %s → %s", name, name),
			Level:   "warning",
		}
	}

	path := reconstructCyclePath(scc, graph)
	return CycleWarning{
		Path:    path,
		Message: fmt.Sprintf("Cycle among operations: %s", strings.Join(path, " → ")),
		Level:   "warning",
	}
}

// reconstructCyclePath follows edges inside the SCC from its last-popped
// member (the Tarjan root) until returning to it.
func reconstructCyclePath(scc []string, graph dependencyGraph) []string {
	members := make(map[string]bool, len(scc))
	for _, node := range scc {
		members[node] = true
	}

	start := scc[len(scc)-1]
	current := start
	path := []string{current}
	visited := make(map[string]bool)

	for {
		visited[current] = true

		var next string
		for _, neighbor := range graph[current] {
			if members[neighbor] && (!visited[neighbor] || neighbor == start) {
				next = neighbor
				break
			}
		}
		if next == "" {
			break
		}

		path = append(path, next)
		if next == start {
			break
		}
		current = next
	}

	return path
}
