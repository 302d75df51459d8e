package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/roach88/chores/internal/chore"
)

// DefaultLookback is how far back List reaches for terminal occurrences.
const DefaultLookback = 7 * 24 * time.Hour

// ListOptions controls List.
type ListOptions struct {
	// Lookback includes terminal occurrences expected within this window
	// before now. Zero uses DefaultLookback; negative includes everything.
	Lookback time.Duration
}

// List returns the client view of recent occurrences at the current time:
// every stored-assigned occurrence plus every occurrence expected within
// the lookback window. Ordered by expected time, then title.
//
// Occurrences of chores no longer configured are skipped with a warning.
func (e *Engine) List(ctx context.Context, opts ListOptions) ([]chore.View, error) {
	now := e.clock.Now()

	lookback := opts.Lookback
	if lookback == 0 {
		lookback = DefaultLookback
	}
	var since time.Time
	if lookback > 0 {
		since = now.Add(-lookback)
	}

	occurrences, err := e.store.ListOccurrences(ctx, since)
	if err != nil {
		return nil, err
	}

	views := make([]chore.View, 0, len(occurrences))
	for _, o := range occurrences {
		def, ok := e.byTitle[o.Title]
		if !ok {
			slog.Warn("skipping occurrence of unknown chore", "title", o.Title, "expected", o.Expected)
			continue
		}
		views = append(views, chore.NewView(o, def.Description, now))
	}
	return views, nil
}
