package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/roach88/chores/internal/chore"
)

// Complete marks the occurrence (title, expected) completed.
//
// Only a stored-assigned occurrence can be completed; its effective status
// may be overdue, or even past expiration if no sweep has run yet. The
// title is normalised and expected is truncated to whole seconds in UTC,
// the store's resolution.
//
// Returns chore.ErrNotFound if no such occurrence exists and
// chore.ErrConflict if it is already completed or missed. Of two
// concurrent completions exactly one succeeds.
func (e *Engine) Complete(ctx context.Context, title string, expected time.Time) error {
	key := chore.Key{
		Title:    chore.NormalizeTitle(title),
		Expected: expected.UTC().Truncate(time.Second),
	}

	if err := e.store.CompleteOccurrence(ctx, key); err != nil {
		return err
	}

	slog.Info("occurrence completed", "title", key.Title, "expected", key.Expected)
	return nil
}
