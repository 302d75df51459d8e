package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/roach88/chores/internal/chore"
)

// createTestStore creates a new temp-file store for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func ts(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

// createTestOccurrence builds an assigned occurrence with a two hour overdue
// offset and a one day expiration offset.
func createTestOccurrence(title, expected string) chore.Occurrence {
	at := ts(expected)
	expiration := at.Add(24 * time.Hour)
	return chore.Occurrence{
		Title:      title,
		Expected:   at,
		Status:     chore.StatusAssigned,
		CreatedAt:  at.Add(-time.Hour),
		Overdue:    at.Add(2 * time.Hour),
		Expiration: &expiration,
	}
}
