package ports

import (
	"context"

	"pulsehub/internal/core/domain"
)

// PresenceMirror reflects presence transitions to an external system so
// sibling backend services can query who is online. The in-memory registry
// stays authoritative; mirror failures are advisory and never propagate.
type PresenceMirror interface {
	UserOnline(ctx context.Context, userID domain.UserID)
	UserOffline(ctx context.Context, userID domain.UserID)
}

type nopMirror struct{}

func (nopMirror) UserOnline(context.Context, domain.UserID)  {}
func (nopMirror) UserOffline(context.Context, domain.UserID) {}

// NopMirror is used when no mirror backend is configured.
func NopMirror() PresenceMirror { return nopMirror{} }
