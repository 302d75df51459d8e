package engine

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// Default scheduler intervals.
const (
	DefaultRecurrenceInterval = time.Minute
	DefaultSweepInterval      = time.Minute
)

// Scheduler runs recurrence ticks and sweeps periodically.
type Scheduler struct {
	engine             *Engine
	recurrenceInterval time.Duration
	sweepInterval      time.Duration
}

// NewScheduler creates a Scheduler for e. Non-positive intervals fall back
// to the defaults.
func NewScheduler(e *Engine, recurrenceInterval, sweepInterval time.Duration) *Scheduler {
	if recurrenceInterval <= 0 {
		recurrenceInterval = DefaultRecurrenceInterval
	}
	if sweepInterval <= 0 {
		sweepInterval = DefaultSweepInterval
	}
	return &Scheduler{
		engine:             e,
		recurrenceInterval: recurrenceInterval,
		sweepInterval:      sweepInterval,
	}
}

// Run ticks both loops once immediately and then on their intervals until
// ctx is cancelled. A failed tick is logged and retried on the next one.
//
// Returns ctx.Err() on shutdown, after both loops have exited.
func (s *Scheduler) Run(ctx context.Context) error {
	slog.Info("scheduler starting",
		"chores", len(s.engine.defs),
		"recurrence_interval", s.recurrenceInterval,
		"sweep_interval", s.sweepInterval,
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.loop(gctx, s.recurrenceInterval, s.recur)
	})
	g.Go(func() error {
		return s.loop(gctx, s.sweepInterval, s.sweep)
	})

	err := g.Wait()
	slog.Info("scheduler stopped")
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return err
}

func (s *Scheduler) loop(ctx context.Context, interval time.Duration, fn func(context.Context)) error {
	ticker := s.engine.clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		fn(ctx)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (s *Scheduler) recur(ctx context.Context) {
	// Tick logs per-chore failures itself.
	if _, err := s.engine.Tick(ctx); err != nil && ctx.Err() == nil {
		slog.Warn("recurrence tick incomplete", "failed", FailedTitles(err))
	}
}

func (s *Scheduler) sweep(ctx context.Context) {
	sctx, cancel := context.WithTimeout(ctx, s.engine.storeTimeout)
	defer cancel()

	if _, err := s.engine.Sweep(sctx, s.engine.clock.Now()); err != nil && ctx.Err() == nil {
		slog.Error("sweep failed", "error", err)
	}
}
