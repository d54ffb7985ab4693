package memory

import (
	"context"
	"fmt"
	"sync"

	"pulsehub/internal/core/domain"
	"pulsehub/internal/core/ports"
)

type CallRepository struct {
	sessions map[domain.RoomID]*domain.CallSession
	mu       sync.RWMutex
}

func NewCallRepository() ports.CallRepository {
	return &CallRepository{
		sessions: make(map[domain.RoomID]*domain.CallSession),
	}
}

func (r *CallRepository) Create(ctx context.Context, session *domain.CallSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[session.RoomID]; exists {
		return fmt.Errorf("call session already exists: %s", session.RoomID)
	}

	r.sessions[session.RoomID] = session
	return nil
}

func (r *CallRepository) Get(ctx context.Context, roomID domain.RoomID) (*domain.CallSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, exists := r.sessions[roomID]
	if !exists {
		return nil, domain.ErrSessionNotFound
	}

	return session, nil
}

func (r *CallRepository) Remove(ctx context.Context, roomID domain.RoomID) (*domain.CallSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, exists := r.sessions[roomID]
	if !exists {
		// Concurrent terminal transitions race on the same room; the
		// loser observes the absence and treats it as a no-op.
		return nil, domain.ErrSessionNotFound
	}

	delete(r.sessions, roomID)
	return session, nil
}

func (r *CallRepository) RemoveByParticipant(ctx context.Context, userID domain.UserID) ([]*domain.CallSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var removed []*domain.CallSession
	for roomID, session := range r.sessions {
		if session.Involves(userID) {
			removed = append(removed, session)
			delete(r.sessions, roomID)
		}
	}

	return removed, nil
}

func (r *CallRepository) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.sessions), nil
}
