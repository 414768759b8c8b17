package ports

import (
	"context"
	"time"

	"github.com/arielspace/listing-board/internal/core/session"
)

// SessionStatus describes a server-side session at one instant.
type SessionStatus struct {
	SessionID        string
	User             session.User
	State            string
	LastActivity     time.Time
	ExpiresAt        time.Time
	RemainingSeconds int
}

// SessionService enforces the idle timeout on the server. Touch and Peek
// return domain.ErrSessionNotFound or domain.ErrSessionExpired.
type SessionService interface {
	Start(ctx context.Context, user session.User) (string, error)
	Touch(ctx context.Context, sessionID string) (*SessionStatus, error)
	Peek(ctx context.Context, sessionID string) (*SessionStatus, error)
	End(ctx context.Context, sessionID string) error
}
