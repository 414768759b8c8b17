package ports

import (
	"context"
	"time"

	"github.com/arielspace/listing-board/internal/core/domain"
)

type SignupInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     *string
}

// LoginResult is what a successful login hands back to the transport layer.
type LoginResult struct {
	User      *domain.User
	Token     string
	SessionID string
	ExpiresAt time.Time
}

type AuthService interface {
	Signup(ctx context.Context, in SignupInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Logout(ctx context.Context, sessionID string) error
	Me(ctx context.Context, userID string) (*domain.User, error)
}
