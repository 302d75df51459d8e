package engine

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/roach88/chores/internal/chore"
	"github.com/roach88/chores/internal/clock"
)

// Store is the persistence the engine writes through. Implemented by
// *store.Store.
type Store interface {
	InsertOccurrence(ctx context.Context, o chore.Occurrence) (bool, error)
	LatestOccurrence(ctx context.Context, title string) (*chore.Occurrence, error)
	CompleteOccurrence(ctx context.Context, key chore.Key) error
	MarkMissed(ctx context.Context, key chore.Key) (bool, error)
	ExpiredAssigned(ctx context.Context, now time.Time) ([]chore.Key, error)
	ListOccurrences(ctx context.Context, since time.Time) ([]chore.Occurrence, error)
}

// DefaultStoreTimeout bounds each store call made on behalf of a tick.
const DefaultStoreTimeout = 5 * time.Second

// Engine creates, completes and sweeps chore occurrences.
//
// Thread-safety: all methods are safe for concurrent use. The engine keeps
// no mutable state; definitions are fixed at construction.
type Engine struct {
	store        Store
	clock        clock.Clock
	defs         []chore.Definition
	byTitle      map[string]chore.Definition
	storeTimeout time.Duration
	tickIDs      TickIDGenerator
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the clock used for "now". Default: clock.Real().
func WithClock(c clock.Clock) Option {
	return func(e *Engine) {
		e.clock = c
	}
}

// WithStoreTimeout bounds each store call made during a tick or sweep.
//
// Default: 5s (DefaultStoreTimeout)
func WithStoreTimeout(d time.Duration) Option {
	return func(e *Engine) {
		e.storeTimeout = d
	}
}

// WithTickIDGenerator sets the tick ID source. Default: UUIDv7Generator.
func WithTickIDGenerator(g TickIDGenerator) Option {
	return func(e *Engine) {
		e.tickIDs = g
	}
}

// New creates an Engine over s for the given definitions.
//
// The definitions slice is copied and its order is kept: Tick processes
// chores in declaration order. Duplicate titles are rejected with
// chore.ErrInvalidDefinition.
func New(s Store, defs []chore.Definition, opts ...Option) (*Engine, error) {
	e := &Engine{
		store:        s,
		clock:        clock.Real(),
		defs:         make([]chore.Definition, len(defs)),
		byTitle:      make(map[string]chore.Definition, len(defs)),
		storeTimeout: DefaultStoreTimeout,
		tickIDs:      UUIDv7Generator{},
	}
	copy(e.defs, defs)

	for _, def := range e.defs {
		if _, dup := e.byTitle[def.Title]; dup {
			return nil, &chore.Error{
				Code:    chore.ErrCodeInvalidDefinition,
				Title:   def.Title,
				Field:   "title",
				Message: "duplicate chore title",
			}
		}
		e.byTitle[def.Title] = def
	}

	for _, opt := range opts {
		opt(e)
	}

	return e, nil
}

// Definitions returns the configured definitions in declaration order.
func (e *Engine) Definitions() []chore.Definition {
	defs := make([]chore.Definition, len(e.defs))
	copy(defs, e.defs)
	return defs
}

// Definition returns the definition with the given title.
func (e *Engine) Definition(title string) (chore.Definition, bool) {
	def, ok := e.byTitle[chore.NormalizeTitle(title)]
	return def, ok
}

// Clock returns the engine's clock.
func (e *Engine) Clock() clock.Clock {
	return e.clock
}

// NextCandidate computes the expected time of the occurrence that should
// follow last, or reports false if none is due.
//
// No candidate exists while last is still stored assigned. Otherwise the
// candidate is the firing that follows last.Expected, as long as an
// occurrence expected then would not already be expired at now. A chore
// whose expiration falls on its next firing therefore never loses the
// period after a miss. When that firing has expired too, the chore was
// offline for a while and resumes at the first firing strictly after now
// instead of back-filling.
//
// Returns chore.ErrUnsatisfiable if the rule has no further firing.
func NextCandidate(def chore.Definition, last *chore.Occurrence, now time.Time) (time.Time, bool, error) {
	now = now.UTC()
	if last != nil {
		if last.Status == chore.StatusAssigned {
			return time.Time{}, false, nil
		}
		following, err := def.Rule.Next(last.Expected)
		if err != nil {
			return time.Time{}, false, unsatisfiable(def, err)
		}
		exp := def.NewOccurrence(following, now).Expiration
		if exp == nil || exp.After(now) {
			return following, true, nil
		}
	}

	next, err := def.Rule.Next(now)
	if err != nil {
		return time.Time{}, false, unsatisfiable(def, err)
	}
	return next, true, nil
}

func unsatisfiable(def chore.Definition, err error) error {
	return &chore.Error{
		Code:    chore.ErrCodeUnsatisfiable,
		Title:   def.Title,
		Message: "recurrence rule has no further firing",
		Err:     err,
	}
}

// Ensure creates the next occurrence of def if the chore has no assigned
// occurrence. Returns whether a row was created.
//
// A concurrent Ensure for the same chore may win the insert; the loser
// returns (false, nil).
func (e *Engine) Ensure(ctx context.Context, def chore.Definition) (bool, error) {
	last, err := e.store.LatestOccurrence(ctx, def.Title)
	if err != nil {
		return false, err
	}

	now := e.clock.Now()
	expected, due, err := NextCandidate(def, last, now)
	if err != nil || !due {
		return false, err
	}

	o := def.NewOccurrence(expected, now)
	created, err := e.store.InsertOccurrence(ctx, o)
	if err != nil {
		return false, err
	}

	if created {
		slog.Info("occurrence created",
			"title", o.Title,
			"expected", o.Expected,
			"overdue", o.Overdue,
		)
	} else {
		slog.Debug("occurrence already present", "title", o.Title, "expected", o.Expected)
	}
	return created, nil
}

// Tick runs Ensure for every definition, each bounded by the store
// timeout. A failure for one chore is logged and does not stop the rest.
//
// Returns the number of occurrences created and the failures joined with
// errors.Join (each a *ChoreError). If ctx is cancelled Tick stops early
// and ctx.Err() is part of the returned error.
func (e *Engine) Tick(ctx context.Context) (int, error) {
	tickID := e.tickIDs.Generate()
	slog.Debug("recurrence tick starting", "tick_id", tickID, "chores", len(e.defs))

	var (
		created int
		errs    []error
	)
	for _, def := range e.defs {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		ok, err := e.ensureBounded(ctx, def)
		if err != nil {
			if ctx.Err() != nil {
				errs = append(errs, ctx.Err())
				break
			}
			slog.Error("ensure failed",
				"tick_id", tickID,
				"title", def.Title,
				"error", err,
			)
			errs = append(errs, &ChoreError{Title: def.Title, Op: "ensure", TickID: tickID, Err: err})
			continue
		}
		if ok {
			created++
		}
	}

	slog.Debug("recurrence tick finished", "tick_id", tickID, "created", created, "failed", len(errs))
	return created, errors.Join(errs...)
}

func (e *Engine) ensureBounded(ctx context.Context, def chore.Definition) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, e.storeTimeout)
	defer cancel()
	return e.Ensure(ctx, def)
}
