package memory

import (
	"context"
	"sync"

	"pulsehub/internal/core/domain"
	"pulsehub/internal/core/ports"
)

type PresenceRepository struct {
	entries map[domain.UserID]domain.ConnectionID
	mu      sync.RWMutex
}

func NewPresenceRepository() ports.PresenceRepository {
	return &PresenceRepository{
		entries: make(map[domain.UserID]domain.ConnectionID),
	}
}

func (r *PresenceRepository) Register(ctx context.Context, userID domain.UserID, connID domain.ConnectionID) (domain.ConnectionID, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev, replaced := r.entries[userID]
	r.entries[userID] = connID
	return prev, replaced, nil
}

func (r *PresenceRepository) Unregister(ctx context.Context, userID domain.UserID, connID domain.ConnectionID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// A superseded connection's late disconnect must not evict the
	// newer registration for the same user.
	current, exists := r.entries[userID]
	if !exists || current != connID {
		return false, nil
	}

	delete(r.entries, userID)
	return true, nil
}

func (r *PresenceRepository) Resolve(ctx context.Context, userID domain.UserID) (domain.ConnectionID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	connID, exists := r.entries[userID]
	if !exists {
		return "", domain.ErrNotConnected
	}

	return connID, nil
}

func (r *PresenceRepository) ListOnline(ctx context.Context) ([]domain.UserID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]domain.UserID, 0, len(r.entries))
	for userID := range r.entries {
		users = append(users, userID)
	}

	return users, nil
}

func (r *PresenceRepository) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.entries), nil
}
