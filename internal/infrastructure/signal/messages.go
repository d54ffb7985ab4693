package signal

import (
	"encoding/json"
	"time"

	"pulsehub/internal/core/domain"
)

// Message is the inbound envelope: a type discriminator plus an opaque
// payload decoded per event type.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Outbound is the envelope pushed to clients.
type Outbound struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}

type friendPayload struct {
	RecipientID domain.UserID `json:"recipientId"`
	SenderID    domain.UserID `json:"senderId"`
	SenderName  string        `json:"senderName"`
}

type reactionPayload struct {
	PostID       string        `json:"postId"`
	UserID       domain.UserID `json:"userId"`
	UserName     string        `json:"userName"`
	ReactionType string        `json:"reactionType"`
	PostOwnerID  domain.UserID `json:"postOwnerId"`
}

type commentPayload struct {
	PostID      string        `json:"postId"`
	CommentID   string        `json:"commentId"`
	UserID      domain.UserID `json:"userId"`
	UserName    string        `json:"userName"`
	Content     string        `json:"content"`
	PostOwnerID domain.UserID `json:"postOwnerId"`
}

type callInitiatePayload struct {
	CalleeID domain.UserID   `json:"calleeId"`
	CallType domain.CallType `json:"callType"`
}

type callRoomPayload struct {
	RoomID domain.RoomID `json:"roomId"`
}

// callSignalPayload covers webrtc:offer / webrtc:answer / webrtc:iceCandidate;
// exactly one of the signaling fields is set, depending on the event type.
type callSignalPayload struct {
	RoomID    domain.RoomID   `json:"roomId"`
	Offer     json.RawMessage `json:"offer,omitempty"`
	Answer    json.RawMessage `json:"answer,omitempty"`
	Candidate json.RawMessage `json:"candidate,omitempty"`
}

type streamStartPayload struct {
	Title       string `json:"streamTitle"`
	Description string `json:"streamDescription"`
}

type streamRoomPayload struct {
	StreamID domain.StreamID `json:"streamId"`
}

type streamSignalPayload struct {
	StreamID   domain.StreamID `json:"streamId"`
	Offer      json.RawMessage `json:"offer,omitempty"`
	Answer     json.RawMessage `json:"answer,omitempty"`
	Candidate  json.RawMessage `json:"candidate,omitempty"`
	StreamerID domain.UserID   `json:"streamerId,omitempty"`
	TargetID   domain.UserID   `json:"targetId,omitempty"`
}
