package ports

import (
	"context"

	"github.com/arielspace/listing-board/internal/core/domain"
)

// UserRepository persists accounts. Emails are stored normalized; Create
// returns domain.ErrEmailTaken when the unique constraint rejects the row.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
}
