package domain

import (
	"fmt"
	"time"
)

// StreamRoom is one livestream: exactly one streamer plus any number of
// viewers. Viewers join and leave freely; the room lives until the streamer
// ends it or disconnects.
type StreamRoom struct {
	ID          StreamID
	StreamerID  UserID
	Title       string
	Description string
	Viewers     map[UserID]struct{}
	StartedAt   time.Time
}

func (s *StreamRoom) ViewerCount() int {
	return len(s.Viewers)
}

// NewStreamID builds a stream id unique per streamer and start time.
func NewStreamID(streamer UserID, at time.Time) StreamID {
	return StreamID(fmt.Sprintf("stream_%s_%d", streamer, at.UnixMilli()))
}
