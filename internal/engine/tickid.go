package engine

import (
	"sync"

	"github.com/google/uuid"
)

// TickIDGenerator generates identifiers that correlate the log lines of
// one recurrence tick.
type TickIDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 tick IDs.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
//
// Panics if UUID generation fails (should never happen in practice).
func (g UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// FixedGenerator returns predetermined tick IDs for testing. Once the
// list is exhausted it keeps returning the last one.
//
// Thread-safety: FixedGenerator is safe for concurrent use via internal mutex.
type FixedGenerator struct {
	mu  sync.Mutex
	ids []string
	idx int
}

// NewFixedGenerator creates a generator that returns ids in order.
//
// Example:
//
//	gen := NewFixedGenerator("tick-1", "tick-2")
//	gen.Generate() // "tick-1"
//	gen.Generate() // "tick-2"
//	gen.Generate() // "tick-2"
func NewFixedGenerator(ids ...string) *FixedGenerator {
	if len(ids) == 0 {
		panic("FixedGenerator: no ids")
	}
	return &FixedGenerator{ids: ids}
}

// Generate returns the next predetermined id.
func (g *FixedGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	id := g.ids[g.idx]
	if g.idx < len(g.ids)-1 {
		g.idx++
	}
	return id
}
