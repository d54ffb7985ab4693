package ports

import (
	"context"
	"encoding/json"

	"pulsehub/internal/core/domain"
)

// NotificationService routes social notifications to online recipients.
// Notifications to offline users are dropped, never queued.
type NotificationService interface {
	FriendRequest(ctx context.Context, ev domain.FriendEvent)
	FriendAccepted(ctx context.Context, ev domain.FriendEvent)
	PostReaction(ctx context.Context, r domain.Reaction)
	PostComment(ctx context.Context, c domain.Comment)
}

// CallService owns the call state machine: initiated until accepted,
// rejected, ended, or invalidated by a participant's disconnect.
type CallService interface {
	Initiate(ctx context.Context, caller domain.Connection, calleeID domain.UserID, callType domain.CallType) error
	Accept(ctx context.Context, acceptor domain.Connection, roomID domain.RoomID) error
	Reject(ctx context.Context, roomID domain.RoomID) error
	End(ctx context.Context, roomID domain.RoomID, reason string) error

	// Forward relays a signaling payload verbatim to the other members of
	// the call room, tagged with the sender's id.
	Forward(ctx context.Context, sender domain.Connection, roomID domain.RoomID, eventType string, payload json.RawMessage)

	// EndAllFor terminates every session the user participates in.
	// Part of the disconnect cascade; idempotent.
	EndAllFor(ctx context.Context, userID domain.UserID, reason string) error

	ActiveCount(ctx context.Context) int
}

// StreamService owns livestream rooms: one streamer, N viewers.
type StreamService interface {
	Start(ctx context.Context, streamer domain.Connection, title, description string) (*domain.StreamRoom, error)
	Join(ctx context.Context, viewer domain.Connection, streamID domain.StreamID) error
	Leave(ctx context.Context, viewer domain.Connection, streamID domain.StreamID) error
	End(ctx context.Context, streamID domain.StreamID, reason string) error

	ForwardOffer(ctx context.Context, sender domain.Connection, streamID domain.StreamID, payload json.RawMessage)
	ForwardAnswer(ctx context.Context, sender domain.Connection, streamerID domain.UserID, payload json.RawMessage)
	ForwardCandidate(ctx context.Context, sender domain.Connection, targetID domain.UserID, payload json.RawMessage)

	// HandleDisconnect tears down the user's room when they are streaming
	// and drops them from any viewer sets otherwise.
	HandleDisconnect(ctx context.Context, user domain.Connection) error

	ActiveCount(ctx context.Context) int
}
