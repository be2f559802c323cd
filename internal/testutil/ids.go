package testutil

import (
	"fmt"
	"sync"
)

// SequenceIDGenerator generates predictable record IDs: prefix_1, prefix_2, ...
//
// Used in place of UUIDv7 generation so CLI output can be compared against
// golden files.
//
// Thread-safety: Generate is safe for concurrent use.
type SequenceIDGenerator struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequenceIDGenerator creates a generator for the given prefix.
// If prefix is empty, "test" is used.
func NewSequenceIDGenerator(prefix string) *SequenceIDGenerator {
	if prefix == "" {
		prefix = "test"
	}
	return &SequenceIDGenerator{prefix: prefix}
}

// Generate returns the next ID in the sequence.
func (g *SequenceIDGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s_%d", g.prefix, g.n)
}
