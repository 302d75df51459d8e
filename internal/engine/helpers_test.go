package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/roach88/chores/internal/chore"
	"github.com/roach88/chores/internal/clock"
	"github.com/roach88/chores/internal/store"
	"github.com/roach88/chores/internal/testutil"
)

var at = testutil.Time

// newTestEngine builds an engine over a temp store with a fake clock at
// start.
func newTestEngine(t *testing.T, start string, defs ...chore.Definition) (*Engine, *store.Store, *clock.FakeClock) {
	t.Helper()
	s := testutil.NewStore(t)
	c := testutil.FakeClock(start)
	e, err := New(s, defs, WithClock(c), WithTickIDGenerator(NewFixedGenerator("tick-test")))
	require.NoError(t, err)
	return e, s, c
}

func latest(t *testing.T, s *store.Store, title string) *chore.Occurrence {
	t.Helper()
	o, err := s.LatestOccurrence(context.Background(), title)
	require.NoError(t, err)
	return o
}

// faultyStore fails selected operations and delegates the rest.
type faultyStore struct {
	Store

	mu         sync.Mutex
	failTitles map[string]error
	failMarks  int
}

var errInjected = chore.Unavailable("injected", errors.New("database is locked"))

func (f *faultyStore) LatestOccurrence(ctx context.Context, title string) (*chore.Occurrence, error) {
	f.mu.Lock()
	err := f.failTitles[title]
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return f.Store.LatestOccurrence(ctx, title)
}

func (f *faultyStore) MarkMissed(ctx context.Context, key chore.Key) (bool, error) {
	f.mu.Lock()
	fail := f.failMarks > 0
	if fail {
		f.failMarks--
	}
	f.mu.Unlock()
	if fail {
		return false, errInjected
	}
	return f.Store.MarkMissed(ctx, key)
}

// blockingStore blocks LatestOccurrence until ctx is done.
type blockingStore struct {
	Store
}

func (b blockingStore) LatestOccurrence(ctx context.Context, title string) (*chore.Occurrence, error) {
	<-ctx.Done()
	return nil, chore.Unavailable("latest occurrence", ctx.Err())
}

func daysOf(d int) time.Duration { return time.Duration(d) * 24 * time.Hour }
