package memory

import (
	"context"
	"fmt"
	"sync"

	"pulsehub/internal/core/domain"
	"pulsehub/internal/core/ports"
)

type StreamRepository struct {
	rooms map[domain.StreamID]*domain.StreamRoom
	mu    sync.RWMutex
}

func NewStreamRepository() ports.StreamRepository {
	return &StreamRepository{
		rooms: make(map[domain.StreamID]*domain.StreamRoom),
	}
}

func (r *StreamRepository) Create(ctx context.Context, room *domain.StreamRoom) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.rooms[room.ID]; exists {
		return fmt.Errorf("stream room already exists: %s", room.ID)
	}

	if room.Viewers == nil {
		room.Viewers = make(map[domain.UserID]struct{})
	}

	r.rooms[room.ID] = room
	return nil
}

func (r *StreamRepository) Get(ctx context.Context, streamID domain.StreamID) (*domain.StreamRoom, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room, exists := r.rooms[streamID]
	if !exists {
		return nil, domain.ErrStreamNotFound
	}

	return room, nil
}

func (r *StreamRepository) AddViewer(ctx context.Context, streamID domain.StreamID, viewerID domain.UserID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, exists := r.rooms[streamID]
	if !exists {
		return domain.ErrStreamNotFound
	}

	room.Viewers[viewerID] = struct{}{}
	return nil
}

func (r *StreamRepository) RemoveViewer(ctx context.Context, streamID domain.StreamID, viewerID domain.UserID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, exists := r.rooms[streamID]
	if !exists {
		return false, domain.ErrStreamNotFound
	}

	if _, member := room.Viewers[viewerID]; !member {
		return false, nil
	}

	delete(room.Viewers, viewerID)
	return true, nil
}

func (r *StreamRepository) Remove(ctx context.Context, streamID domain.StreamID) (*domain.StreamRoom, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, exists := r.rooms[streamID]
	if !exists {
		return nil, domain.ErrStreamNotFound
	}

	delete(r.rooms, streamID)
	room.Viewers = make(map[domain.UserID]struct{})
	return room, nil
}

func (r *StreamRepository) FindByStreamer(ctx context.Context, streamerID domain.UserID) (*domain.StreamRoom, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, room := range r.rooms {
		if room.StreamerID == streamerID {
			return room, nil
		}
	}

	return nil, domain.ErrStreamNotFound
}

func (r *StreamRepository) RemoveViewerEverywhere(ctx context.Context, viewerID domain.UserID) ([]domain.StreamID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var affected []domain.StreamID
	for id, room := range r.rooms {
		if _, member := room.Viewers[viewerID]; member {
			delete(room.Viewers, viewerID)
			affected = append(affected, id)
		}
	}

	return affected, nil
}

func (r *StreamRepository) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.rooms), nil
}
