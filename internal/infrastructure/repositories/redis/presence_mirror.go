package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"pulsehub/internal/core/domain"
	"pulsehub/internal/core/ports"
	"pulsehub/pkg/circuitbreaker"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	onlineSetKey    = "pulsehub:online"
	presenceChannel = "pulsehub:presence"
)

type presenceEvent struct {
	Event     string        `json:"event"`
	UserID    domain.UserID `json:"userId"`
	Timestamp time.Time     `json:"timestamp"`
}

// PresenceMirror reflects online/offline transitions into Redis: the
// online-users set can be read by the HTTP backend, and the pub/sub
// channel feeds anything that wants presence change events. Best-effort
// only; the in-memory registry remains the source of truth. A circuit
// breaker keeps a dead Redis from slowing down every connect and
// disconnect.
type PresenceMirror struct {
	client  *redis.Client
	breaker *circuitbreaker.CircuitBreaker
	logger  *zap.SugaredLogger
}

func NewPresenceMirror(client *redis.Client, logger *zap.SugaredLogger) ports.PresenceMirror {
	breaker := circuitbreaker.New(circuitbreaker.DefaultConfig())
	breaker.OnStateChange(func(from, to circuitbreaker.State) {
		logger.Warnw("presence mirror circuit state changed",
			"from", from.String(),
			"to", to.String(),
		)
	})

	return &PresenceMirror{
		client:  client,
		breaker: breaker,
		logger:  logger,
	}
}

func (m *PresenceMirror) UserOnline(ctx context.Context, userID domain.UserID) {
	m.execute(userID, "SAdd", func() error {
		return m.client.SAdd(ctx, onlineSetKey, string(userID)).Err()
	})

	m.publish(ctx, presenceEvent{Event: "online", UserID: userID, Timestamp: time.Now()})
}

func (m *PresenceMirror) UserOffline(ctx context.Context, userID domain.UserID) {
	m.execute(userID, "SRem", func() error {
		return m.client.SRem(ctx, onlineSetKey, string(userID)).Err()
	})

	m.publish(ctx, presenceEvent{Event: "offline", UserID: userID, Timestamp: time.Now()})
}

func (m *PresenceMirror) publish(ctx context.Context, ev presenceEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}

	m.execute(ev.UserID, "Publish", func() error {
		return m.client.Publish(ctx, presenceChannel, data).Err()
	})
}

// execute runs one mirror write through the breaker. Failures are logged
// and swallowed; mirror writes never propagate errors to connection
// handling.
func (m *PresenceMirror) execute(userID domain.UserID, op string, fn func() error) {
	err := m.breaker.Execute(fn)
	if err == nil {
		return
	}

	if errors.Is(err, circuitbreaker.ErrOpen) {
		// Redis is known dead; skip quietly until the breaker probes.
		return
	}

	m.logger.Warnw("presence mirror write failed",
		"op", op,
		"user_id", userID,
		"error", err,
	)
}
