package testutil

import (
	"testing"
	"time"

	"github.com/roach88/chores/internal/chore"
)

// Definition builds a chore definition or fails the test.
func Definition(t testing.TB, title, rule string, overdue, expiration time.Duration) chore.Definition {
	t.Helper()
	def, err := chore.NewDefinition(title, "", rule, overdue, expiration)
	if err != nil {
		t.Fatalf("chore.NewDefinition(%q, %q) failed: %v", title, rule, err)
	}
	return def
}

// Trash is the Sunday-evening chore used across tests: fires Sundays at
// 18:00 UTC, overdue after 2h, expires after 24h.
func Trash(t testing.TB) chore.Definition {
	t.Helper()
	def := Definition(t, "trash", "0 18 * * 0", 2*time.Hour, 24*time.Hour)
	def.Description = "Take the bins out"
	return def
}

// Dishes fires daily at 09:00 UTC, overdue after 1h, and expires when the
// next day's occurrence is due.
func Dishes(t testing.TB) chore.Definition {
	t.Helper()
	def := Definition(t, "dishes", "0 9 * * *", time.Hour, 0)
	def.Description = "Empty the dishwasher"
	return def
}
