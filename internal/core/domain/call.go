package domain

import (
	"fmt"
	"time"
)

type CallType string

const (
	CallTypeAudio CallType = "audio"
	CallTypeVideo CallType = "video"
)

// CallSession is one two-party call negotiation. A session exists from
// initiate until a terminal transition (accept-then-end, reject, end,
// or participant disconnect); terminal sessions are deleted, not archived.
type CallSession struct {
	RoomID    RoomID
	CallerID  UserID
	CalleeID  UserID
	Type      CallType
	CreatedAt time.Time
}

// Involves reports whether the user is either party of the session.
func (c *CallSession) Involves(userID UserID) bool {
	return c.CallerID == userID || c.CalleeID == userID
}

// NewCallRoomID builds a room id unique even for rapid repeat calls
// between the same pair.
func NewCallRoomID(caller, callee UserID, at time.Time) RoomID {
	return RoomID(fmt.Sprintf("call_%s_%s_%d", caller, callee, at.UnixMilli()))
}
