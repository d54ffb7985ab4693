package memory_test

import (
	"context"
	"testing"
	"time"

	"pulsehub/internal/core/domain"
	"pulsehub/internal/infrastructure/repositories/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRoom(id domain.StreamID, streamer domain.UserID) *domain.StreamRoom {
	return &domain.StreamRoom{
		ID:         id,
		StreamerID: streamer,
		Title:      "test",
		Viewers:    make(map[domain.UserID]struct{}),
		StartedAt:  time.Now(),
	}
}

func TestStreamRepository_Viewers(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewStreamRepository()
	require.NoError(t, repo.Create(ctx, newRoom("stream-1", "dana")))

	require.NoError(t, repo.AddViewer(ctx, "stream-1", "eve"))
	assert.ErrorIs(t, repo.AddViewer(ctx, "stream-2", "eve"), domain.ErrStreamNotFound)

	room, err := repo.Get(ctx, "stream-1")
	require.NoError(t, err)
	assert.Equal(t, 1, room.ViewerCount())

	removed, err := repo.RemoveViewer(ctx, "stream-1", "eve")
	require.NoError(t, err)
	assert.True(t, removed)

	// Removing someone who never joined reports false, not an error.
	removed, err = repo.RemoveViewer(ctx, "stream-1", "eve")
	require.NoError(t, err)
	assert.False(t, removed)

	_, err = repo.RemoveViewer(ctx, "stream-2", "eve")
	assert.ErrorIs(t, err, domain.ErrStreamNotFound)
}

func TestStreamRepository_RemoveReturnsRoomOnce(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewStreamRepository()
	require.NoError(t, repo.Create(ctx, newRoom("stream-1", "dana")))

	room, err := repo.Remove(ctx, "stream-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StreamID("stream-1"), room.ID)

	_, err = repo.Remove(ctx, "stream-1")
	assert.ErrorIs(t, err, domain.ErrStreamNotFound)
}

func TestStreamRepository_FindByStreamer(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewStreamRepository()
	require.NoError(t, repo.Create(ctx, newRoom("stream-1", "dana")))

	room, err := repo.FindByStreamer(ctx, "dana")
	require.NoError(t, err)
	assert.Equal(t, domain.StreamID("stream-1"), room.ID)

	_, err = repo.FindByStreamer(ctx, "eve")
	assert.ErrorIs(t, err, domain.ErrStreamNotFound)
}

func TestStreamRepository_RemoveViewerEverywhere(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewStreamRepository()
	require.NoError(t, repo.Create(ctx, newRoom("stream-1", "dana")))
	require.NoError(t, repo.Create(ctx, newRoom("stream-2", "frank")))
	require.NoError(t, repo.AddViewer(ctx, "stream-1", "eve"))
	require.NoError(t, repo.AddViewer(ctx, "stream-2", "eve"))

	affected, err := repo.RemoveViewerEverywhere(ctx, "eve")
	require.NoError(t, err)
	assert.ElementsMatch(t, []domain.StreamID{"stream-1", "stream-2"}, affected)

	affected, err = repo.RemoveViewerEverywhere(ctx, "eve")
	require.NoError(t, err)
	assert.Empty(t, affected)
}
