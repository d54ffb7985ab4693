package domain

type UserID string
type ConnectionID string
type RoomID string
type StreamID string

// Connection describes an authenticated real-time session. The transport
// handle itself lives in the signal layer; everything else addresses the
// connection through its ConnectionID.
type Connection struct {
	ID          ConnectionID
	UserID      UserID
	DisplayName string
}
