package testutil

import (
	"fmt"
	"sync"
)

// SequenceIDs generates predictable import run IDs: "run-0001", "run-0002", ...
//
// Thread-safety: SequenceIDs is safe for concurrent use via internal mutex.
type SequenceIDs struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequenceIDs creates a generator. An empty prefix defaults to "run".
func NewSequenceIDs(prefix string) *SequenceIDs {
	if prefix == "" {
		prefix = "run"
	}
	return &SequenceIDs{prefix: prefix}
}

// NewID returns the next ID in the sequence.
func (g *SequenceIDs) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%04d", g.prefix, g.n)
}
