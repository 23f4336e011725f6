package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anonchat/models"
	"anonchat/repository"
)

type failingStore struct {
	*repository.MemoryStore
}

func (f *failingStore) ListExpiredRooms(ctx context.Context, asOf time.Time) ([]string, error) {
	return nil, errors.New("backend unavailable")
}

func seedRoom(t *testing.T, store repository.Store, name string, expireAt time.Time) {
	t.Helper()
	require.NoError(t, store.InsertRoom(context.Background(), &models.Room{
		Name:      name,
		Creator:   "alice",
		CreatedAt: expireAt.Add(-time.Hour),
		ExpireAt:  expireAt,
		Users:     []string{"alice"},
	}))
	require.NoError(t, store.InsertMessage(context.Background(), &models.Message{
		RoomName: name, Username: "alice", MessageType: models.MessageTypeText,
		Content: "hi", Timestamp: expireAt.Add(-time.Hour),
	}))
}

func TestSweepOnceEvictsOnlyExpiredRooms(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	now := time.Now()

	seedRoom(t, store, "stale", now.Add(-time.Minute))
	seedRoom(t, store, "fresh", now.Add(time.Hour))

	sweeper := NewSweeper(store, discardLogger(), time.Minute)
	require.NoError(t, sweeper.SweepOnce(ctx))

	stale, err := store.FindRoom(ctx, "stale")
	require.NoError(t, err)
	assert.Nil(t, stale)

	staleMsgs, err := store.ListMessages(ctx, "stale")
	require.NoError(t, err)
	assert.Empty(t, staleMsgs)

	fresh, err := store.FindRoom(ctx, "fresh")
	require.NoError(t, err)
	require.NotNil(t, fresh)

	freshMsgs, err := store.ListMessages(ctx, "fresh")
	require.NoError(t, err)
	assert.Len(t, freshMsgs, 1)
}

func TestSweepOnceNothingExpired(t *testing.T) {
	store := repository.NewMemoryStore()
	seedRoom(t, store, "fresh", time.Now().Add(time.Hour))

	sweeper := NewSweeper(store, discardLogger(), time.Minute)
	assert.NoError(t, sweeper.SweepOnce(context.Background()))
}

func TestSweepOnceUsesSweepStartTime(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	seedRoom(t, store, "boundary", base)

	sweeper := NewSweeper(store, discardLogger(), time.Minute)

	// Not yet past its expiry at sweep start.
	sweeper.now = func() time.Time { return base }
	require.NoError(t, sweeper.SweepOnce(ctx))
	room, err := store.FindRoom(ctx, "boundary")
	require.NoError(t, err)
	assert.NotNil(t, room)

	sweeper.now = func() time.Time { return base.Add(time.Second) }
	require.NoError(t, sweeper.SweepOnce(ctx))
	room, err = store.FindRoom(ctx, "boundary")
	require.NoError(t, err)
	assert.Nil(t, room)
}

func TestSweepOnceReportsBackendFailure(t *testing.T) {
	store := &failingStore{MemoryStore: repository.NewMemoryStore()}
	sweeper := NewSweeper(store, discardLogger(), time.Minute)

	assert.Error(t, sweeper.SweepOnce(context.Background()))
}

func TestRunStopsOnCancel(t *testing.T) {
	store := repository.NewMemoryStore()
	sweeper := NewSweeper(store, discardLogger(), 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sweeper.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after cancellation")
	}
}
