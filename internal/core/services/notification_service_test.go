package services_test

import (
	"context"
	"strings"
	"testing"

	"pulsehub/internal/core/domain"
	"pulsehub/internal/core/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// countingMetrics tracks the counters the notification path touches.
type countingMetrics struct {
	events     int
	deliveries int
	dropped    int
}

func (m *countingMetrics) IncEvent(string)         { m.events++ }
func (m *countingMetrics) IncDelivery()            { m.deliveries++ }
func (m *countingMetrics) IncDroppedNotification() { m.dropped++ }

func TestNotificationService_FriendRequest(t *testing.T) {
	ctx := context.Background()

	t.Run("delivered when recipient online", func(t *testing.T) {
		sender := newFakeSender()
		metrics := &countingMetrics{}
		svc := services.NewNotificationService(sender, metrics, zap.NewNop().Sugar())

		svc.FriendRequest(ctx, domain.FriendEvent{
			RecipientID: "bob",
			SenderID:    "alice",
			SenderName:  "Alice",
		})

		got := sender.byType(domain.EvNotifyFriendRequest)
		require.Len(t, got, 1)
		assert.Equal(t, "bob", got[0].target)

		payload := got[0].payload.(map[string]interface{})
		assert.Equal(t, "friend_request", payload["type"])
		assert.Equal(t, "Alice sent you a friend request", payload["message"])
		assert.Equal(t, domain.UserID("alice"), payload["senderId"])
		assert.Zero(t, metrics.dropped)
	})

	t.Run("dropped when recipient offline", func(t *testing.T) {
		sender := newFakeSender()
		sender.failFor["bob"] = true
		metrics := &countingMetrics{}
		svc := services.NewNotificationService(sender, metrics, zap.NewNop().Sugar())

		svc.FriendRequest(ctx, domain.FriendEvent{
			RecipientID: "bob",
			SenderID:    "alice",
			SenderName:  "Alice",
		})

		assert.Empty(t, sender.byType(domain.EvNotifyFriendRequest))
		assert.Equal(t, 1, metrics.dropped)
	})
}

func TestNotificationService_FriendAccepted(t *testing.T) {
	sender := newFakeSender()
	svc := services.NewNotificationService(sender, &countingMetrics{}, zap.NewNop().Sugar())

	svc.FriendAccepted(context.Background(), domain.FriendEvent{
		RecipientID: "alice",
		SenderID:    "bob",
		SenderName:  "Bob",
	})

	got := sender.byType(domain.EvNotifyFriendAccepted)
	require.Len(t, got, 1)
	assert.Equal(t, "alice", got[0].target)
	payload := got[0].payload.(map[string]interface{})
	assert.Equal(t, "Bob accepted your friend request", payload["message"])
}

func TestNotificationService_PostReaction(t *testing.T) {
	ctx := context.Background()
	reaction := domain.Reaction{
		PostID:       "post-1",
		UserID:       "alice",
		UserName:     "Alice",
		ReactionType: "like",
		PostOwnerID:  "bob",
	}

	t.Run("feed update reaches everyone and owner gets a notification", func(t *testing.T) {
		sender := newFakeSender()
		svc := services.NewNotificationService(sender, &countingMetrics{}, zap.NewNop().Sugar())

		svc.PostReaction(ctx, reaction)

		updates := sender.byType(domain.EvReactionUpdate)
		require.Len(t, updates, 1)
		assert.Equal(t, "broadcast", updates[0].kind)
		assert.Equal(t, domain.ConnectionID(""), updates[0].exclude)

		notified := sender.byType(domain.EvNotifyReaction)
		require.Len(t, notified, 1)
		assert.Equal(t, "bob", notified[0].target)
		payload := notified[0].payload.(map[string]interface{})
		assert.Equal(t, "Alice reacted like to your post", payload["message"])
	})

	t.Run("own post reaction skips the owner notification", func(t *testing.T) {
		sender := newFakeSender()
		svc := services.NewNotificationService(sender, &countingMetrics{}, zap.NewNop().Sugar())

		self := reaction
		self.UserID = "bob"
		svc.PostReaction(ctx, self)

		assert.Len(t, sender.byType(domain.EvReactionUpdate), 1)
		assert.Empty(t, sender.byType(domain.EvNotifyReaction))
	})

	t.Run("missing owner skips the owner notification", func(t *testing.T) {
		sender := newFakeSender()
		svc := services.NewNotificationService(sender, &countingMetrics{}, zap.NewNop().Sugar())

		anon := reaction
		anon.PostOwnerID = ""
		svc.PostReaction(ctx, anon)

		assert.Len(t, sender.byType(domain.EvReactionUpdate), 1)
		assert.Empty(t, sender.byType(domain.EvNotifyReaction))
	})
}

func TestNotificationService_PostComment(t *testing.T) {
	ctx := context.Background()
	sender := newFakeSender()
	svc := services.NewNotificationService(sender, &countingMetrics{}, zap.NewNop().Sugar())

	long := strings.Repeat("x", 80)
	svc.PostComment(ctx, domain.Comment{
		PostID:      "post-1",
		CommentID:   "comment-1",
		UserID:      "alice",
		UserName:    "Alice",
		Content:     long,
		PostOwnerID: "bob",
	})

	broadcasts := sender.byType(domain.EvNewComment)
	require.Len(t, broadcasts, 1)
	assert.Equal(t, long, broadcasts[0].payload.(map[string]interface{})["content"])

	notified := sender.byType(domain.EvNotifyComment)
	require.Len(t, notified, 1)
	message := notified[0].payload.(map[string]interface{})["message"].(string)
	assert.Contains(t, message, strings.Repeat("x", 50)+"...")
	assert.NotContains(t, message, strings.Repeat("x", 51))
}
