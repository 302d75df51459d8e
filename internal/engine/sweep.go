package engine

import (
	"context"
	"log/slog"
	"time"
)

// Sweep moves every assigned occurrence whose expiration is at or before
// now to missed. Returns how many occurrences it transitioned.
//
// Each transition is its own conditional update. An occurrence completed
// between selection and update is skipped silently, so running Sweep
// twice transitions nothing the second time. Cancellation is checked
// between rows; rows already transitioned stay transitioned.
func (e *Engine) Sweep(ctx context.Context, now time.Time) (int, error) {
	keys, err := e.store.ExpiredAssigned(ctx, now)
	if err != nil {
		return 0, err
	}

	transitioned := 0
	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return transitioned, err
		}

		ok, err := e.store.MarkMissed(ctx, key)
		if err != nil {
			return transitioned, err
		}
		if !ok {
			slog.Debug("sweep skipped occurrence no longer assigned", "title", key.Title, "expected", key.Expected)
			continue
		}

		transitioned++
		slog.Info("occurrence missed", "title", key.Title, "expected", key.Expected)
	}

	if transitioned > 0 {
		slog.Debug("sweep finished", "transitioned", transitioned, "candidates", len(keys))
	}
	return transitioned, nil
}
