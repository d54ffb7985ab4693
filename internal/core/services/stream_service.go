package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"pulsehub/internal/core/domain"
	"pulsehub/internal/core/ports"

	"go.uber.org/zap"
)

// streamService owns one-to-many livestream rooms. The streamer anchors the
// room: when they end the stream or disconnect the room is torn down, while
// viewers come and go without affecting room existence.
type streamService struct {
	streams ports.StreamRepository
	sender  ports.EventSender
	logger  *zap.SugaredLogger
}

func NewStreamService(streams ports.StreamRepository, sender ports.EventSender, logger *zap.SugaredLogger) ports.StreamService {
	return &streamService{
		streams: streams,
		sender:  sender,
		logger:  logger,
	}
}

func (s *streamService) Start(ctx context.Context, streamer domain.Connection, title, description string) (*domain.StreamRoom, error) {
	now := time.Now()
	room := &domain.StreamRoom{
		ID:          domain.NewStreamID(streamer.UserID, now),
		StreamerID:  streamer.UserID,
		Title:       title,
		Description: description,
		Viewers:     make(map[domain.UserID]struct{}),
		StartedAt:   now,
	}

	if err := s.streams.Create(ctx, room); err != nil {
		return nil, err
	}

	s.sender.JoinRoom(domain.RoomID(room.ID), streamer.ID)

	// Discovery is push-based: everyone currently online learns about
	// the new stream immediately.
	s.sender.Broadcast(streamer.ID, domain.EvStreamStarted, map[string]interface{}{
		"streamId":     room.ID,
		"streamerId":   room.StreamerID,
		"streamerName": streamer.DisplayName,
		"title":        room.Title,
		"description":  room.Description,
		"startTime":    room.StartedAt,
	})

	s.sender.SendToConn(streamer.ID, domain.EvStreamReady, map[string]interface{}{
		"streamId": room.ID,
	})

	s.logger.Infow("livestream started",
		"stream_id", room.ID,
		"streamer_id", room.StreamerID,
		"title", title,
	)

	return room, nil
}

func (s *streamService) Join(ctx context.Context, viewer domain.Connection, streamID domain.StreamID) error {
	if err := s.streams.AddViewer(ctx, streamID, viewer.UserID); err != nil {
		return err
	}

	roomID := domain.RoomID(streamID)
	s.sender.JoinRoom(roomID, viewer.ID)

	s.sender.SendToRoom(roomID, viewer.ID, domain.EvStreamViewerJoined, map[string]interface{}{
		"viewerId":   viewer.UserID,
		"viewerName": viewer.DisplayName,
	})

	s.logger.Infow("viewer joined livestream", "stream_id", streamID, "viewer_id", viewer.UserID)
	return nil
}

func (s *streamService) Leave(ctx context.Context, viewer domain.Connection, streamID domain.StreamID) error {
	removed, err := s.streams.RemoveViewer(ctx, streamID, viewer.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrStreamNotFound) {
			// Stream already ended; leaving is a no-op.
			return nil
		}
		return err
	}

	roomID := domain.RoomID(streamID)
	s.sender.LeaveRoom(roomID, viewer.ID)

	if removed {
		s.sender.SendToRoom(roomID, viewer.ID, domain.EvStreamViewerLeft, map[string]interface{}{
			"viewerId": viewer.UserID,
		})
	}

	return nil
}

func (s *streamService) End(ctx context.Context, streamID domain.StreamID, reason string) error {
	room, err := s.streams.Remove(ctx, streamID)
	if err != nil {
		if errors.Is(err, domain.ErrStreamNotFound) {
			return nil
		}
		return err
	}

	payload := map[string]interface{}{
		"streamId": streamID,
	}
	if reason != "" {
		payload["reason"] = reason
	}

	roomID := domain.RoomID(streamID)
	s.sender.SendToRoom(roomID, "", domain.EvStreamEnded, payload)
	s.sender.CloseRoom(roomID)

	s.logger.Infow("livestream ended",
		"stream_id", streamID,
		"streamer_id", room.StreamerID,
		"reason", reason,
	)

	return nil
}

func (s *streamService) ForwardOffer(ctx context.Context, sender domain.Connection, streamID domain.StreamID, payload json.RawMessage) {
	// The streamer offers once to the whole room.
	s.sender.SendToRoom(domain.RoomID(streamID), sender.ID, domain.EvStreamOffer, map[string]interface{}{
		"offer":      payload,
		"streamerId": sender.UserID,
	})
}

func (s *streamService) ForwardAnswer(ctx context.Context, sender domain.Connection, streamerID domain.UserID, payload json.RawMessage) {
	// Each viewer answers the streamer privately.
	s.sender.SendToUser(streamerID, domain.EvStreamAnswer, map[string]interface{}{
		"answer":   payload,
		"viewerId": sender.UserID,
	})
}

func (s *streamService) ForwardCandidate(ctx context.Context, sender domain.Connection, targetID domain.UserID, payload json.RawMessage) {
	s.sender.SendToUser(targetID, domain.EvStreamCandidate, map[string]interface{}{
		"candidate": payload,
		"senderId":  sender.UserID,
	})
}

func (s *streamService) HandleDisconnect(ctx context.Context, user domain.Connection) error {
	// Streamer gone means the room goes with them, immediately.
	for {
		room, err := s.streams.FindByStreamer(ctx, user.UserID)
		if err != nil {
			break
		}
		if err := s.End(ctx, room.ID, "disconnect"); err != nil {
			return err
		}
	}

	affected, err := s.streams.RemoveViewerEverywhere(ctx, user.UserID)
	if err != nil {
		return err
	}

	for _, streamID := range affected {
		s.sender.SendToRoom(domain.RoomID(streamID), user.ID, domain.EvStreamViewerLeft, map[string]interface{}{
			"viewerId": user.UserID,
		})
	}

	return nil
}

func (s *streamService) ActiveCount(ctx context.Context) int {
	count, err := s.streams.Count(ctx)
	if err != nil {
		return 0
	}
	return count
}
