package signal

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"pulsehub/internal/core/domain"
	"pulsehub/internal/core/ports"
	"pulsehub/internal/core/services"
	"pulsehub/pkg/validation"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Origin policy is enforced by the CORS layer in front
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// client is one live authenticated connection. The write mutex serializes
// pushes from the connection's own loop and from fan-out paths.
type client struct {
	conn *websocket.Conn
	info domain.Connection

	writeMu sync.Mutex
}

// WebSocketServer is the connection lifecycle controller: it authenticates
// inbound connections, registers presence, dispatches each connection's
// events strictly in arrival order, and cascades cleanup on disconnect.
// It also implements ports.EventSender for every other component.
type WebSocketServer struct {
	auth     services.AuthService
	presence ports.PresenceRepository
	mirror   ports.PresenceMirror
	metrics  ports.Metrics

	// Bound after construction; the services deliver through this hub.
	notifications ports.NotificationService
	calls         ports.CallService
	streams       ports.StreamService

	clients map[domain.ConnectionID]*client
	rooms   map[domain.RoomID]map[domain.ConnectionID]struct{}
	mu      sync.RWMutex

	pingInterval   time.Duration
	pongTimeout    time.Duration
	writeTimeout   time.Duration
	maxMessageSize int64
	msgRate        rate.Limit
	msgBurst       int

	logger *zap.SugaredLogger
}

func NewWebSocketServer(auth services.AuthService, presence ports.PresenceRepository, mirror ports.PresenceMirror, metrics ports.Metrics, logger *zap.SugaredLogger) *WebSocketServer {
	return &WebSocketServer{
		auth:         auth,
		presence:     presence,
		mirror:       mirror,
		metrics:      metrics,
		clients:      make(map[domain.ConnectionID]*client),
		rooms:        make(map[domain.RoomID]map[domain.ConnectionID]struct{}),
		pingInterval: 30 * time.Second,
		pongTimeout:  60 * time.Second,
		writeTimeout: 10 * time.Second,
		logger:       logger,
	}
}

// Bind wires the event-handling services. Must be called before the first
// connection is accepted; the services and the hub reference each other.
func (s *WebSocketServer) Bind(notifications ports.NotificationService, calls ports.CallService, streams ports.StreamService) {
	s.notifications = notifications
	s.calls = calls
	s.streams = streams
}

// SetPingInterval sets ping interval for WebSocket connections.
func (s *WebSocketServer) SetPingInterval(interval time.Duration) {
	s.pingInterval = interval
}

// SetPongTimeout sets pong timeout for WebSocket connections.
func (s *WebSocketServer) SetPongTimeout(timeout time.Duration) {
	s.pongTimeout = timeout
}

// SetWriteTimeout sets the per-write deadline for outbound frames.
func (s *WebSocketServer) SetWriteTimeout(timeout time.Duration) {
	s.writeTimeout = timeout
}

// SetMessageLimit enables per-connection inbound rate limiting.
func (s *WebSocketServer) SetMessageLimit(perSecond float64, burst int) {
	s.msgRate = rate.Limit(perSecond)
	s.msgBurst = burst
}

// SetMaxMessageSize caps the size of a single inbound message in bytes.
func (s *WebSocketServer) SetMaxMessageSize(bytes int64) {
	s.maxMessageSize = bytes
}

func (s *WebSocketServer) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	claims, err := s.auth.VerifyToken(bearerToken(r))
	if err != nil {
		// Failed verification: the connection is never established and
		// no state exists to clean up afterwards.
		s.logger.Warnw("websocket authentication failed", "error", err)
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Errorw("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	c := &client{
		conn: conn,
		info: domain.Connection{
			ID:          domain.ConnectionID(uuid.NewString()),
			UserID:      claims.UserID,
			DisplayName: claims.Name,
		},
	}

	s.connect(c)
	defer s.disconnect(c)

	if s.maxMessageSize > 0 {
		conn.SetReadLimit(s.maxMessageSize)
	}
	conn.SetReadDeadline(time.Now().Add(s.pongTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(s.pongTimeout))
		return nil
	})

	pingTicker := time.NewTicker(s.pingInterval)
	defer pingTicker.Stop()

	var limiter *rate.Limiter
	if s.msgRate > 0 {
		limiter = rate.NewLimiter(s.msgRate, s.msgBurst)
	}

	messageChan := make(chan Message, 10)
	errorChan := make(chan error, 1)

	// done unblocks the reader if the serve loop exits through the ping
	// path while messageChan is full.
	done := make(chan struct{})
	defer close(done)

	go func() {
		for {
			var msg Message
			if err := conn.ReadJSON(&msg); err != nil {
				select {
				case errorChan <- err:
				case <-done:
				}
				return
			}
			conn.SetReadDeadline(time.Now().Add(s.pongTimeout))
			select {
			case messageChan <- msg:
			case <-done:
				return
			}
		}
	}()

	// One connection's events are handled strictly in arrival order; the
	// call state machine depends on it.
	for {
		select {
		case msg := <-messageChan:
			if limiter != nil && !limiter.Allow() {
				s.sendError(c, "rate limit exceeded")
				continue
			}
			s.metrics.IncEvent(msg.Type)
			if err := s.dispatch(context.Background(), c, msg); err != nil {
				s.logger.Debugw("event rejected",
					"user_id", c.info.UserID,
					"event", msg.Type,
					"error", err,
				)
				s.sendError(c, err.Error())
			}

		case <-pingTicker.C:
			c.writeMu.Lock()
			conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
			err := conn.WriteMessage(websocket.PingMessage, nil)
			c.writeMu.Unlock()
			if err != nil {
				s.logger.Debugw("ping failed", "user_id", c.info.UserID, "error", err)
				return
			}

		case err := <-errorChan:
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				s.logger.Infow("read error", "user_id", c.info.UserID, "error", err)
			}
			return
		}
	}
}

// connect registers presence and announces the new connection. A second
// login for the same user replaces the presence entry; the superseded
// connection stays open until it disconnects on its own, which is harmless
// for routing since the registry always points at the latest.
func (s *WebSocketServer) connect(c *client) {
	ctx := context.Background()

	s.mu.Lock()
	s.clients[c.info.ID] = c
	s.mu.Unlock()

	prev, replaced, _ := s.presence.Register(ctx, c.info.UserID, c.info.ID)
	if replaced {
		s.logger.Infow("presence superseded",
			"user_id", c.info.UserID,
			"old_conn", prev,
			"new_conn", c.info.ID,
		)
	} else {
		s.mirror.UserOnline(ctx, c.info.UserID)
	}

	s.logger.Infow("user connected", "user_id", c.info.UserID, "name", c.info.DisplayName)

	s.Broadcast("", domain.EvUserOnline, map[string]interface{}{
		"userId":   c.info.UserID,
		"userName": c.info.DisplayName,
	})

	if online, err := s.presence.ListOnline(ctx); err == nil {
		s.SendToConn(c.info.ID, domain.EvOnlineUsers, online)
	}
}

// disconnect runs the ordered cleanup cascade: call sessions, then stream
// rooms, then presence. Each step is idempotent so a partial earlier
// cleanup (duplicate-login race) cannot break it.
func (s *WebSocketServer) disconnect(c *client) {
	ctx := context.Background()

	if err := s.calls.EndAllFor(ctx, c.info.UserID, "disconnect"); err != nil {
		s.logger.Warnw("call cleanup failed", "user_id", c.info.UserID, "error", err)
	}
	if err := s.streams.HandleDisconnect(ctx, c.info); err != nil {
		s.logger.Warnw("stream cleanup failed", "user_id", c.info.UserID, "error", err)
	}

	removed, _ := s.presence.Unregister(ctx, c.info.UserID, c.info.ID)
	if removed {
		s.mirror.UserOffline(ctx, c.info.UserID)
		s.Broadcast(c.info.ID, domain.EvUserOffline, map[string]interface{}{
			"userId": c.info.UserID,
		})
	}

	s.mu.Lock()
	delete(s.clients, c.info.ID)
	for roomID, members := range s.rooms {
		delete(members, c.info.ID)
		if len(members) == 0 {
			delete(s.rooms, roomID)
		}
	}
	s.mu.Unlock()

	s.logger.Infow("user disconnected", "user_id", c.info.UserID, "superseded", !removed)
}

func (s *WebSocketServer) dispatch(ctx context.Context, c *client, msg Message) error {
	switch msg.Type {
	case domain.EvFriendRequest, domain.EvFriendAccepted:
		var p friendPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return fmt.Errorf("invalid %s payload: %w", msg.Type, err)
		}
		if err := validation.ValidateUserID(string(p.RecipientID), "recipientId"); err != nil {
			return err
		}
		ev := domain.FriendEvent{RecipientID: p.RecipientID, SenderID: p.SenderID, SenderName: p.SenderName}
		if msg.Type == domain.EvFriendRequest {
			s.notifications.FriendRequest(ctx, ev)
		} else {
			s.notifications.FriendAccepted(ctx, ev)
		}

	case domain.EvPostReact:
		var p reactionPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return fmt.Errorf("invalid post:react payload: %w", err)
		}
		s.notifications.PostReaction(ctx, domain.Reaction{
			PostID:       p.PostID,
			UserID:       p.UserID,
			UserName:     p.UserName,
			ReactionType: p.ReactionType,
			PostOwnerID:  p.PostOwnerID,
		})

	case domain.EvPostComment:
		var p commentPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return fmt.Errorf("invalid post:comment payload: %w", err)
		}
		if err := validation.ValidateCommentContent(p.Content); err != nil {
			return err
		}
		s.notifications.PostComment(ctx, domain.Comment{
			PostID:      p.PostID,
			CommentID:   p.CommentID,
			UserID:      p.UserID,
			UserName:    p.UserName,
			Content:     p.Content,
			PostOwnerID: p.PostOwnerID,
		})

	case domain.EvCallInitiate:
		var p callInitiatePayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return fmt.Errorf("invalid call:initiate payload: %w", err)
		}
		if err := validation.ValidateUserID(string(p.CalleeID), "calleeId"); err != nil {
			return err
		}
		// Call failures reach the caller as call:error events, not as
		// generic protocol errors.
		if err := s.calls.Initiate(ctx, c.info, p.CalleeID, p.CallType); err != nil {
			s.logger.Debugw("call initiate failed", "caller_id", c.info.UserID, "error", err)
		}

	case domain.EvCallAccept:
		var p callRoomPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return fmt.Errorf("invalid call:accept payload: %w", err)
		}
		if err := validation.ValidateRoomID(string(p.RoomID), "roomId"); err != nil {
			return err
		}
		if err := s.calls.Accept(ctx, c.info, p.RoomID); err != nil {
			s.logger.Debugw("call accept failed", "room_id", p.RoomID, "error", err)
		}

	case domain.EvCallReject:
		var p callRoomPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return fmt.Errorf("invalid call:reject payload: %w", err)
		}
		if err := validation.ValidateRoomID(string(p.RoomID), "roomId"); err != nil {
			return err
		}
		return s.calls.Reject(ctx, p.RoomID)

	case domain.EvCallEnd:
		var p callRoomPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return fmt.Errorf("invalid call:end payload: %w", err)
		}
		if err := validation.ValidateRoomID(string(p.RoomID), "roomId"); err != nil {
			return err
		}
		return s.calls.End(ctx, p.RoomID, "")

	case domain.EvWebRTCOffer, domain.EvWebRTCAnswer, domain.EvWebRTCCandidate:
		var p callSignalPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return fmt.Errorf("invalid %s payload: %w", msg.Type, err)
		}
		var raw json.RawMessage
		switch msg.Type {
		case domain.EvWebRTCOffer:
			raw = p.Offer
		case domain.EvWebRTCAnswer:
			raw = p.Answer
		case domain.EvWebRTCCandidate:
			raw = p.Candidate
		}
		s.calls.Forward(ctx, c.info, p.RoomID, msg.Type, raw)

	case domain.EvStreamStart:
		var p streamStartPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return fmt.Errorf("invalid livestream:start payload: %w", err)
		}
		if err := validation.ValidateStreamTitle(p.Title); err != nil {
			return err
		}
		if _, err := s.streams.Start(ctx, c.info, p.Title, p.Description); err != nil {
			return fmt.Errorf("failed to start livestream: %w", err)
		}

	case domain.EvStreamJoin:
		var p streamRoomPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return fmt.Errorf("invalid livestream:join payload: %w", err)
		}
		if err := validation.ValidateRoomID(string(p.StreamID), "streamId"); err != nil {
			return err
		}
		return s.streams.Join(ctx, c.info, p.StreamID)

	case domain.EvStreamLeave:
		var p streamRoomPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return fmt.Errorf("invalid livestream:leave payload: %w", err)
		}
		if err := validation.ValidateRoomID(string(p.StreamID), "streamId"); err != nil {
			return err
		}
		return s.streams.Leave(ctx, c.info, p.StreamID)

	case domain.EvStreamEnd:
		var p streamRoomPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return fmt.Errorf("invalid livestream:end payload: %w", err)
		}
		if err := validation.ValidateRoomID(string(p.StreamID), "streamId"); err != nil {
			return err
		}
		return s.streams.End(ctx, p.StreamID, "")

	case domain.EvStreamOffer:
		var p streamSignalPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return fmt.Errorf("invalid livestream:offer payload: %w", err)
		}
		s.streams.ForwardOffer(ctx, c.info, p.StreamID, p.Offer)

	case domain.EvStreamAnswer:
		var p streamSignalPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return fmt.Errorf("invalid livestream:answer payload: %w", err)
		}
		s.streams.ForwardAnswer(ctx, c.info, p.StreamerID, p.Answer)

	case domain.EvStreamCandidate:
		var p streamSignalPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return fmt.Errorf("invalid livestream:iceCandidate payload: %w", err)
		}
		s.streams.ForwardCandidate(ctx, c.info, p.TargetID, p.Candidate)

	default:
		return fmt.Errorf("unknown message type: %s", msg.Type)
	}

	return nil
}

// --- ports.EventSender ---

func (s *WebSocketServer) SendToUser(userID domain.UserID, eventType string, payload interface{}) bool {
	connID, err := s.presence.Resolve(context.Background(), userID)
	if err != nil {
		return false
	}
	return s.deliver(connID, eventType, payload)
}

func (s *WebSocketServer) SendToConn(connID domain.ConnectionID, eventType string, payload interface{}) {
	s.deliver(connID, eventType, payload)
}

func (s *WebSocketServer) SendToRoom(roomID domain.RoomID, exclude domain.ConnectionID, eventType string, payload interface{}) {
	s.mu.RLock()
	members := make([]*client, 0, len(s.rooms[roomID]))
	for connID := range s.rooms[roomID] {
		if connID == exclude {
			continue
		}
		if c, ok := s.clients[connID]; ok {
			members = append(members, c)
		}
	}
	s.mu.RUnlock()

	out := s.envelope(eventType, payload)
	for _, c := range members {
		s.write(c, out)
	}
}

func (s *WebSocketServer) Broadcast(exclude domain.ConnectionID, eventType string, payload interface{}) {
	s.mu.RLock()
	targets := make([]*client, 0, len(s.clients))
	for connID, c := range s.clients {
		if connID == exclude {
			continue
		}
		targets = append(targets, c)
	}
	s.mu.RUnlock()

	out := s.envelope(eventType, payload)
	for _, c := range targets {
		s.write(c, out)
	}
}

func (s *WebSocketServer) JoinRoom(roomID domain.RoomID, connID domain.ConnectionID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	members, exists := s.rooms[roomID]
	if !exists {
		members = make(map[domain.ConnectionID]struct{})
		s.rooms[roomID] = members
	}
	members[connID] = struct{}{}
}

func (s *WebSocketServer) LeaveRoom(roomID domain.RoomID, connID domain.ConnectionID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if members, exists := s.rooms[roomID]; exists {
		delete(members, connID)
		if len(members) == 0 {
			delete(s.rooms, roomID)
		}
	}
}

func (s *WebSocketServer) CloseRoom(roomID domain.RoomID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.rooms, roomID)
}

// RoomSize reports current membership; used by the liveness surface.
func (s *WebSocketServer) RoomSize(roomID domain.RoomID) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.rooms[roomID])
}

// ConnectionCount is the number of open connections, which can briefly
// exceed the presence count during a duplicate-login handover.
func (s *WebSocketServer) ConnectionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.clients)
}

func (s *WebSocketServer) deliver(connID domain.ConnectionID, eventType string, payload interface{}) bool {
	s.mu.RLock()
	c, exists := s.clients[connID]
	s.mu.RUnlock()

	if !exists {
		return false
	}

	return s.write(c, s.envelope(eventType, payload))
}

// write pushes one event, fire-and-forget. A failed write means the
// recipient is effectively offline; the connection's own read loop will
// notice and run the disconnect cascade.
func (s *WebSocketServer) write(c *client, out Outbound) bool {
	c.writeMu.Lock()
	c.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
	err := c.conn.WriteJSON(out)
	c.writeMu.Unlock()

	if err != nil {
		s.logger.Debugw("delivery failed",
			"user_id", c.info.UserID,
			"event", out.Type,
			"error", err,
		)
		return false
	}

	s.metrics.IncDelivery()
	return true
}

func (s *WebSocketServer) envelope(eventType string, payload interface{}) Outbound {
	return Outbound{
		Type:      eventType,
		Timestamp: time.Now(),
		Payload:   payload,
	}
}

func (s *WebSocketServer) sendError(c *client, message string) {
	s.write(c, s.envelope(domain.EvError, map[string]interface{}{
		"message": message,
	}))
}

// bearerToken extracts the credential from the connection-establishment
// metadata: the token query parameter (browser clients) or a standard
// Authorization header.
func bearerToken(r *http.Request) string {
	if token := r.URL.Query().Get("token"); token != "" {
		return token
	}

	header := r.Header.Get("Authorization")
	if parts := strings.Split(header, " "); len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}

	return ""
}
