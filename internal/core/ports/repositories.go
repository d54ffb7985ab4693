package ports

import (
	"context"

	"pulsehub/internal/core/domain"
)

// PresenceRepository is the single source of truth for "who is online".
// At most one entry exists per user; a second login replaces the first.
type PresenceRepository interface {
	// Register inserts or replaces the mapping for userID. It returns the
	// previous connection id when one was replaced.
	Register(ctx context.Context, userID domain.UserID, connID domain.ConnectionID) (prev domain.ConnectionID, replaced bool, err error)

	// Unregister removes the mapping only if it still points at connID,
	// so a late disconnect of a superseded connection cannot erase a
	// newer registration. It reports whether the entry was removed.
	Unregister(ctx context.Context, userID domain.UserID, connID domain.ConnectionID) (removed bool, err error)

	// Resolve returns the connection id for userID, or ErrNotConnected.
	Resolve(ctx context.Context, userID domain.UserID) (domain.ConnectionID, error)

	ListOnline(ctx context.Context) ([]domain.UserID, error)
	Count(ctx context.Context) (int, error)
}

// CallRepository owns the call session table.
type CallRepository interface {
	Create(ctx context.Context, session *domain.CallSession) error
	Get(ctx context.Context, roomID domain.RoomID) (*domain.CallSession, error)

	// Remove atomically deletes and returns the session, or
	// ErrSessionNotFound when it is already gone. Terminal operations
	// racing on the same room see the absence and treat it as a no-op.
	Remove(ctx context.Context, roomID domain.RoomID) (*domain.CallSession, error)

	// RemoveByParticipant deletes and returns every session the user is a
	// party of. Used by the disconnect cascade.
	RemoveByParticipant(ctx context.Context, userID domain.UserID) ([]*domain.CallSession, error)

	Count(ctx context.Context) (int, error)
}

// StreamRepository owns the livestream room table.
type StreamRepository interface {
	Create(ctx context.Context, room *domain.StreamRoom) error
	Get(ctx context.Context, streamID domain.StreamID) (*domain.StreamRoom, error)
	AddViewer(ctx context.Context, streamID domain.StreamID, viewerID domain.UserID) error
	RemoveViewer(ctx context.Context, streamID domain.StreamID, viewerID domain.UserID) (bool, error)

	// Remove atomically deletes and returns the room, or ErrStreamNotFound.
	Remove(ctx context.Context, streamID domain.StreamID) (*domain.StreamRoom, error)

	// FindByStreamer returns the room the user is currently streaming,
	// or ErrStreamNotFound.
	FindByStreamer(ctx context.Context, streamerID domain.UserID) (*domain.StreamRoom, error)

	// RemoveViewerEverywhere drops the user from every viewer set and
	// returns the ids of the affected rooms.
	RemoveViewerEverywhere(ctx context.Context, viewerID domain.UserID) ([]domain.StreamID, error)

	Count(ctx context.Context) (int, error)
}
