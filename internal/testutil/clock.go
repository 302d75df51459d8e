package testutil

import (
	"time"

	"github.com/roach88/chores/internal/clock"
)

// Time parses an RFC 3339 timestamp and returns it in UTC.
// Panics on malformed input; intended for literals in tests.
func Time(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic("testutil.Time: " + err.Error())
	}
	return t.UTC()
}

// FakeClock returns a fake clock starting at the RFC 3339 timestamp s.
func FakeClock(s string) *clock.FakeClock {
	return clock.Fake(Time(s))
}
