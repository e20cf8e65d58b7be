package testutil

// FixedRunIDGenerator returns the same run identifier every time.
//
// Golden snapshots of install output embed the run ID, so tests pin it.
//
// Thread-safety: FixedRunIDGenerator is stateless and safe for concurrent use.
type FixedRunIDGenerator struct {
	id string
}

// NewFixedRunIDGenerator creates a generator that always yields id.
// If id is empty, Generate returns "test-run-default".
func NewFixedRunIDGenerator(id string) *FixedRunIDGenerator {
	if id == "" {
		id = "test-run-default"
	}
	return &FixedRunIDGenerator{id: id}
}

// Generate returns the fixed run identifier.
func (g *FixedRunIDGenerator) Generate() string {
	return g.id
}
