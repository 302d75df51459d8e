package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/chores/internal/chore"
)

func TestCreateFlash(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	f, err := s.CreateFlash(ctx, "Water is off until noon", ts("2024-01-07T08:00:00Z"))
	require.NoError(t, err)
	assert.NotZero(t, f.ID)
	assert.False(t, f.Acknowledged)
	assert.Nil(t, f.AcknowledgedAt)

	got, err := s.GetFlash(ctx, f.ID)
	require.NoError(t, err)
	assert.Equal(t, f, got)
}

func TestCreateFlash_RejectsEmpty(t *testing.T) {
	s := createTestStore(t)
	_, err := s.CreateFlash(context.Background(), "   ", ts("2024-01-07T08:00:00Z"))
	require.Error(t, err)
	assert.True(t, chore.IsConfigError(err))
}

func TestListActiveFlashes_MostRecentFirst(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	first, err := s.CreateFlash(ctx, "first", ts("2024-01-07T08:00:00Z"))
	require.NoError(t, err)
	second, err := s.CreateFlash(ctx, "second", ts("2024-01-07T09:00:00Z"))
	require.NoError(t, err)
	// Same second as "second": the higher id wins the tie.
	third, err := s.CreateFlash(ctx, "third", ts("2024-01-07T09:00:00Z"))
	require.NoError(t, err)

	active, err := s.ListActiveFlashes(ctx)
	require.NoError(t, err)
	require.Len(t, active, 3)
	assert.Equal(t, []int64{third.ID, second.ID, first.ID}, []int64{active[0].ID, active[1].ID, active[2].ID})
}

func TestListActiveFlashes_EmptyNotNil(t *testing.T) {
	s := createTestStore(t)
	active, err := s.ListActiveFlashes(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, active)
	assert.Empty(t, active)
}

func TestAcknowledgeFlash(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	f, err := s.CreateFlash(ctx, "Water is off until noon", ts("2024-01-07T08:00:00Z"))
	require.NoError(t, err)
	keep, err := s.CreateFlash(ctx, "Recycling moved to Tuesday", ts("2024-01-07T08:30:00Z"))
	require.NoError(t, err)

	require.NoError(t, s.AcknowledgeFlash(ctx, f.ID, ts("2024-01-07T12:00:00Z")))

	got, err := s.GetFlash(ctx, f.ID)
	require.NoError(t, err)
	assert.True(t, got.Acknowledged)
	require.NotNil(t, got.AcknowledgedAt)
	assert.Equal(t, ts("2024-01-07T12:00:00Z"), *got.AcknowledgedAt)

	active, err := s.ListActiveFlashes(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, keep.ID, active[0].ID)
}

func TestAcknowledgeFlash_Idempotent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	f, err := s.CreateFlash(ctx, "hello", ts("2024-01-07T08:00:00Z"))
	require.NoError(t, err)

	require.NoError(t, s.AcknowledgeFlash(ctx, f.ID, ts("2024-01-07T12:00:00Z")))
	require.NoError(t, s.AcknowledgeFlash(ctx, f.ID, ts("2024-01-07T13:00:00Z")))

	got, err := s.GetFlash(ctx, f.ID)
	require.NoError(t, err)
	require.NotNil(t, got.AcknowledgedAt)
	assert.Equal(t, ts("2024-01-07T12:00:00Z"), *got.AcknowledgedAt, "second acknowledge must not move the timestamp")
}

func TestAcknowledgeFlash_NotFound(t *testing.T) {
	s := createTestStore(t)
	err := s.AcknowledgeFlash(context.Background(), 42, ts("2024-01-07T12:00:00Z"))
	assert.True(t, chore.IsNotFound(err))

	_, err = s.GetFlash(context.Background(), 42)
	assert.True(t, chore.IsNotFound(err))
}
