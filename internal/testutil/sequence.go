package testutil

import (
	"fmt"
	"sync"
)

// SequentialRunIDGenerator yields "run-1", "run-2", ... in call order.
//
// Tests that run several contexts use it to check that every context gets
// its own run ID. Because contexts run concurrently, the ID a given context
// receives is not fixed; compare the set, not the positions.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type SequentialRunIDGenerator struct {
	mu  sync.Mutex
	seq int64
}

// NewSequentialRunIDGenerator creates a generator whose first ID is "run-1".
func NewSequentialRunIDGenerator() *SequentialRunIDGenerator {
	return &SequentialRunIDGenerator{}
}

// Generate returns the next run identifier.
func (g *SequentialRunIDGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	return fmt.Sprintf("run-%d", g.seq)
}

// Issued returns how many identifiers have been generated.
func (g *SequentialRunIDGenerator) Issued() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.seq
}

// Reset restarts the sequence. The next Generate returns "run-1".
func (g *SequentialRunIDGenerator) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq = 0
}
