package services

import (
	"context"
	"fmt"
	"time"

	"pulsehub/internal/core/domain"
	"pulsehub/internal/core/ports"

	"go.uber.org/zap"
)

const commentPreviewLimit = 50

// notificationService is stateless routing logic: resolve the target
// through presence, deliver if online, drop otherwise. No retries, no
// queues.
type notificationService struct {
	sender  ports.EventSender
	metrics ports.Metrics
	logger  *zap.SugaredLogger
}

func NewNotificationService(sender ports.EventSender, metrics ports.Metrics, logger *zap.SugaredLogger) ports.NotificationService {
	return &notificationService{
		sender:  sender,
		metrics: metrics,
		logger:  logger,
	}
}

func (s *notificationService) FriendRequest(ctx context.Context, ev domain.FriendEvent) {
	s.deliverToUser(ev.RecipientID, domain.EvNotifyFriendRequest, map[string]interface{}{
		"type":       "friend_request",
		"message":    fmt.Sprintf("%s sent you a friend request", ev.SenderName),
		"senderId":   ev.SenderID,
		"senderName": ev.SenderName,
		"timestamp":  time.Now(),
	})
}

func (s *notificationService) FriendAccepted(ctx context.Context, ev domain.FriendEvent) {
	s.deliverToUser(ev.RecipientID, domain.EvNotifyFriendAccepted, map[string]interface{}{
		"type":       "friend_accepted",
		"message":    fmt.Sprintf("%s accepted your friend request", ev.SenderName),
		"senderId":   ev.SenderID,
		"senderName": ev.SenderName,
		"timestamp":  time.Now(),
	})
}

func (s *notificationService) PostReaction(ctx context.Context, r domain.Reaction) {
	// Live update for everyone with an open feed, independent of the
	// owner notification below.
	s.sender.Broadcast("", domain.EvReactionUpdate, map[string]interface{}{
		"postId":       r.PostID,
		"userId":       r.UserID,
		"userName":     r.UserName,
		"reactionType": r.ReactionType,
		"timestamp":    time.Now(),
	})

	if r.PostOwnerID == "" || r.UserID == r.PostOwnerID {
		return
	}

	s.deliverToUser(r.PostOwnerID, domain.EvNotifyReaction, map[string]interface{}{
		"type":         "post_reaction",
		"message":      fmt.Sprintf("%s reacted %s to your post", r.UserName, r.ReactionType),
		"postId":       r.PostID,
		"userId":       r.UserID,
		"userName":     r.UserName,
		"reactionType": r.ReactionType,
		"timestamp":    time.Now(),
	})
}

func (s *notificationService) PostComment(ctx context.Context, c domain.Comment) {
	s.sender.Broadcast("", domain.EvNewComment, map[string]interface{}{
		"postId":    c.PostID,
		"commentId": c.CommentID,
		"userId":    c.UserID,
		"userName":  c.UserName,
		"content":   c.Content,
		"timestamp": time.Now(),
	})

	if c.PostOwnerID == "" || c.UserID == c.PostOwnerID {
		return
	}

	s.deliverToUser(c.PostOwnerID, domain.EvNotifyComment, map[string]interface{}{
		"type":      "post_comment",
		"message":   fmt.Sprintf("%s commented: %q", c.UserName, previewOf(c.Content)),
		"postId":    c.PostID,
		"commentId": c.CommentID,
		"userId":    c.UserID,
		"userName":  c.UserName,
		"timestamp": time.Now(),
	})
}

func (s *notificationService) deliverToUser(target domain.UserID, eventType string, payload map[string]interface{}) {
	if s.sender.SendToUser(target, eventType, payload) {
		return
	}

	// Offline recipient: by design the event is dropped, not queued.
	s.metrics.IncDroppedNotification()
	s.logger.Debugw("notification dropped, recipient offline",
		"event", eventType,
		"recipient", target,
	)
}

func previewOf(content string) string {
	runes := []rune(content)
	if len(runes) > commentPreviewLimit {
		runes = runes[:commentPreviewLimit]
	}
	return string(runes) + "..."
}
