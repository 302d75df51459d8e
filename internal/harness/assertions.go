package harness

import (
	"context"
	"fmt"
	"time"

	"github.com/roach88/chores/internal/chore"
)

// evaluate checks a single assertion against the final state.
func (r *runner) evaluate(ctx context.Context, a Assertion) error {
	switch a.Type {
	case AssertStatus, AssertStoredStatus:
		return r.assertStatus(ctx, a)
	case AssertAssignedCount:
		return r.assertAssignedCount(ctx, a)
	case AssertActiveFlashes:
		return r.assertActiveFlashes(ctx, a)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

// assertStatus checks the effective (status) or persisted (stored_status)
// status of one occurrence.
func (r *runner) assertStatus(ctx context.Context, a Assertion) error {
	expected, err := time.Parse(time.RFC3339, a.Expected)
	if err != nil {
		return err
	}
	key := chore.Key{Title: chore.NormalizeTitle(a.Title), Expected: expected.UTC()}

	o, err := r.store.GetOccurrence(ctx, key)
	if err != nil {
		return err
	}

	got := o.Status.String()
	if a.Type == AssertStatus {
		got = o.Resolve(r.clock.Now()).String()
	}
	if got != a.Status {
		return fmt.Errorf("%s is %s, expected %s", key, got, a.Status)
	}
	return nil
}

// assertAssignedCount checks how many assigned occurrences a chore holds.
func (r *runner) assertAssignedCount(ctx context.Context, a Assertion) error {
	title := chore.NormalizeTitle(a.Title)
	n, err := r.store.CountAssigned(ctx, title)
	if err != nil {
		return err
	}
	if n != a.Count {
		return fmt.Errorf("%s has %d assigned occurrences, expected %d", title, n, a.Count)
	}
	return nil
}

// assertActiveFlashes checks the number of unacknowledged flashes.
func (r *runner) assertActiveFlashes(ctx context.Context, a Assertion) error {
	flashes, err := r.store.ListActiveFlashes(ctx)
	if err != nil {
		return err
	}
	if len(flashes) != a.Count {
		return fmt.Errorf("%d active flashes, expected %d", len(flashes), a.Count)
	}
	return nil
}
