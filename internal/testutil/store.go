// Package testutil provides shared fixtures for tests: temp-file stores,
// fake clocks and chore definitions.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/roach88/chores/internal/store"
)

// NewStore opens a store in a fresh temp directory and closes it when the
// test ends.
func NewStore(t testing.TB) *store.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chores.db")
	s, err := store.Open(path)
	if err != nil {
		t.Fatalf("store.Open(%q) failed: %v", path, err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}
