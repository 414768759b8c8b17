package ports

import (
	"context"

	"github.com/arielspace/listing-board/internal/core/domain"
)

// ListingFilter narrows List. An empty Query returns everything.
type ListingFilter struct {
	// Query is matched case-insensitively against title and short description.
	Query string
}

// ListingRepository defines persistence operations for listings. Every
// lookup by id returns domain.ErrListingNotFound for unknown or malformed ids.
type ListingRepository interface {
	// List returns listings newest first.
	List(ctx context.Context, filter ListingFilter) ([]*domain.Listing, error)
	FindByID(ctx context.Context, id string) (*domain.Listing, error)
	Create(ctx context.Context, l *domain.Listing) (*domain.Listing, error)
	// Update overwrites the mutable fields and bumps updated_at.
	Update(ctx context.Context, l *domain.Listing) (*domain.Listing, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
	CountCertified(ctx context.Context) (int64, error)
}
