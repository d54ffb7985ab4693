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

// Messages surfaced to the initiating client as call:error events.
const (
	msgCalleeOffline = "User is offline"
	msgCallerOffline = "Caller is offline"
	msgCallNotFound  = "Call not found"
)

// callService mediates two-party call negotiation. A session is created on
// initiate and deleted on accept-then-end, reject, explicit end, or either
// participant's disconnect; it never outlives its terminal transition.
type callService struct {
	calls    ports.CallRepository
	presence ports.PresenceRepository
	sender   ports.EventSender
	logger   *zap.SugaredLogger
}

func NewCallService(calls ports.CallRepository, presence ports.PresenceRepository, sender ports.EventSender, logger *zap.SugaredLogger) ports.CallService {
	return &callService{
		calls:    calls,
		presence: presence,
		sender:   sender,
		logger:   logger,
	}
}

func (s *callService) Initiate(ctx context.Context, caller domain.Connection, calleeID domain.UserID, callType domain.CallType) error {
	if _, err := s.presence.Resolve(ctx, calleeID); err != nil {
		s.sendCallError(caller.ID, msgCalleeOffline)
		return domain.ErrCalleeOffline
	}

	now := time.Now()
	session := &domain.CallSession{
		RoomID:    domain.NewCallRoomID(caller.UserID, calleeID, now),
		CallerID:  caller.UserID,
		CalleeID:  calleeID,
		Type:      callType,
		CreatedAt: now,
	}

	if err := s.calls.Create(ctx, session); err != nil {
		s.sendCallError(caller.ID, msgCalleeOffline)
		return err
	}

	delivered := s.sender.SendToUser(calleeID, domain.EvCallIncoming, map[string]interface{}{
		"roomId":     session.RoomID,
		"callerId":   caller.UserID,
		"callerName": caller.DisplayName,
		"callType":   callType,
	})
	if !delivered {
		// Callee dropped between resolve and delivery.
		s.calls.Remove(ctx, session.RoomID)
		s.sendCallError(caller.ID, msgCalleeOffline)
		return domain.ErrCalleeOffline
	}

	s.logger.Infow("call initiated",
		"room_id", session.RoomID,
		"caller_id", caller.UserID,
		"callee_id", calleeID,
		"call_type", callType,
	)

	return nil
}

func (s *callService) Accept(ctx context.Context, acceptor domain.Connection, roomID domain.RoomID) error {
	session, err := s.calls.Get(ctx, roomID)
	if err != nil {
		s.sendCallError(acceptor.ID, msgCallNotFound)
		return domain.ErrSessionNotFound
	}

	callerConn, err := s.presence.Resolve(ctx, session.CallerID)
	if err != nil {
		s.calls.Remove(ctx, roomID)
		s.sendCallError(acceptor.ID, msgCallerOffline)
		return domain.ErrCallerOffline
	}

	// Both parties share a delivery group keyed by the room id; all
	// further signaling for this call routes through it.
	s.sender.JoinRoom(roomID, acceptor.ID)
	s.sender.JoinRoom(roomID, callerConn)

	s.sender.SendToConn(callerConn, domain.EvCallAccepted, map[string]interface{}{
		"roomId": roomID,
	})

	s.logger.Infow("call accepted", "room_id", roomID, "acceptor_id", acceptor.UserID)
	return nil
}

func (s *callService) Reject(ctx context.Context, roomID domain.RoomID) error {
	session, err := s.calls.Remove(ctx, roomID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			// Already gone; rejecting twice is legitimate under races.
			return nil
		}
		return err
	}

	s.sender.SendToUser(session.CallerID, domain.EvCallRejected, map[string]interface{}{
		"roomId": roomID,
	})

	s.logger.Infow("call rejected", "room_id", roomID)
	return nil
}

func (s *callService) End(ctx context.Context, roomID domain.RoomID, reason string) error {
	_, err := s.calls.Remove(ctx, roomID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			// Both parties may race to end; the loser sees a no-op.
			return nil
		}
		return err
	}

	s.broadcastEnded(roomID, reason)
	s.logger.Infow("call ended", "room_id", roomID, "reason", reason)
	return nil
}

func (s *callService) Forward(ctx context.Context, sender domain.Connection, roomID domain.RoomID, eventType string, payload json.RawMessage) {
	key := forwardPayloadKey(eventType)
	if key == "" {
		return
	}

	// Pure pass-through: the payload is never parsed, only tagged with
	// the sender so the peer knows where it came from.
	s.sender.SendToRoom(roomID, sender.ID, eventType, map[string]interface{}{
		key:        payload,
		"senderId": sender.UserID,
	})
}

func (s *callService) EndAllFor(ctx context.Context, userID domain.UserID, reason string) error {
	sessions, err := s.calls.RemoveByParticipant(ctx, userID)
	if err != nil {
		return err
	}

	for _, session := range sessions {
		s.broadcastEnded(session.RoomID, reason)
		s.logger.Infow("call ended by disconnect",
			"room_id", session.RoomID,
			"user_id", userID,
		)
	}

	return nil
}

func (s *callService) ActiveCount(ctx context.Context) int {
	count, err := s.calls.Count(ctx)
	if err != nil {
		return 0
	}
	return count
}

func (s *callService) broadcastEnded(roomID domain.RoomID, reason string) {
	payload := map[string]interface{}{
		"roomId": roomID,
	}
	if reason != "" {
		payload["reason"] = reason
	}

	s.sender.SendToRoom(roomID, "", domain.EvCallEnded, payload)
	s.sender.CloseRoom(roomID)
}

func (s *callService) sendCallError(connID domain.ConnectionID, message string) {
	s.sender.SendToConn(connID, domain.EvCallError, map[string]interface{}{
		"message": message,
	})
}

func forwardPayloadKey(eventType string) string {
	switch eventType {
	case domain.EvWebRTCOffer:
		return "offer"
	case domain.EvWebRTCAnswer:
		return "answer"
	case domain.EvWebRTCCandidate:
		return "candidate"
	}
	return ""
}
