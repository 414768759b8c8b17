package ports

import (
	"context"
	"time"

	"github.com/arielspace/listing-board/internal/core/domain"
)

// ListingInput carries the caller-supplied fields of a listing.
type ListingInput struct {
	Title            string
	ShortDescription string
	FullDetails      string
	HasCertification bool
	ApplyURL         string
	Location         *string
	Duration         *string
	Deadline         *time.Time
}

type ListingService interface {
	List(ctx context.Context, filter ListingFilter) ([]*domain.Listing, error)
	Get(ctx context.Context, id string) (*domain.Listing, error)
	// Create records createdBy as the author; pass "" for none.
	Create(ctx context.Context, in ListingInput, createdBy string) (*domain.Listing, error)
	Update(ctx context.Context, id string, in ListingInput) (*domain.Listing, error)
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context) (*domain.ListingStats, error)
}
