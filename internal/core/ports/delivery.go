package ports

import "pulsehub/internal/core/domain"

// EventSender delivers outbound events over already-open connections.
// Delivery is fire-and-forget: a failed write to a dead connection is the
// recipient's problem, never the sender's. Implemented by the signal hub.
type EventSender interface {
	// SendToUser resolves the user through presence and delivers the
	// event, or reports false when the user is offline (event dropped).
	SendToUser(userID domain.UserID, eventType string, payload interface{}) bool

	SendToConn(connID domain.ConnectionID, eventType string, payload interface{})

	// SendToRoom delivers to every member of the room, excluding the
	// given connection (pass "" to include everyone).
	SendToRoom(roomID domain.RoomID, exclude domain.ConnectionID, eventType string, payload interface{})

	// Broadcast delivers to every connected client, excluding the given
	// connection (pass "" to include everyone).
	Broadcast(exclude domain.ConnectionID, eventType string, payload interface{})

	JoinRoom(roomID domain.RoomID, connID domain.ConnectionID)
	LeaveRoom(roomID domain.RoomID, connID domain.ConnectionID)

	// CloseRoom removes every member and deletes the room.
	CloseRoom(roomID domain.RoomID)
}
