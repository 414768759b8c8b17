package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/arielspace/listing-board/internal/core/domain"
	"github.com/arielspace/listing-board/internal/core/ports"
)

const maxShortDescription = 200

// ListingService implements listing CRUD on top of a ListingRepository.
type ListingService struct {
	repo     ports.ListingRepository
	capacity int
	now      func() time.Time
	logger   zerolog.Logger
}

// NewListingService returns a service. A capacity of zero or less disables
// the ceiling on the number of listings.
func NewListingService(repo ports.ListingRepository, capacity int, logger zerolog.Logger) *ListingService {
	if capacity < 0 {
		capacity = 0
	}
	return &ListingService{
		repo:     repo,
		capacity: capacity,
		now:      func() time.Time { return time.Now().UTC() },
		logger:   logger,
	}
}

func (s *ListingService) List(ctx context.Context, filter ports.ListingFilter) ([]*domain.Listing, error) {
	filter.Query = strings.TrimSpace(filter.Query)
	items, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list listings: %w", err)
	}
	return items, nil
}

func (s *ListingService) Get(ctx context.Context, id string) (*domain.Listing, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domain.ErrListingNotFound
	}
	return s.repo.FindByID(ctx, id)
}

func (s *ListingService) Create(ctx context.Context, in ports.ListingInput, createdBy string) (*domain.Listing, error) {
	in, err := normalizeListingInput(in)
	if err != nil {
		return nil, err
	}

	if s.capacity > 0 {
		n, err := s.repo.Count(ctx)
		if err != nil {
			return nil, fmt.Errorf("create listing: %w", err)
		}
		if n >= int64(s.capacity) {
			return nil, domain.ErrCapacityReached
		}
	}

	now := s.now()
	l := &domain.Listing{
		CreatedAt: now,
		UpdatedAt: now,
	}
	applyListingInput(l, in)
	if createdBy != "" {
		l.CreatedBy = &createdBy
	}

	created, err := s.repo.Create(ctx, l)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("listing_id", created.ID).Str("title", created.Title).Msg("listing created")
	return created, nil
}

func (s *ListingService) Update(ctx context.Context, id string, in ports.ListingInput) (*domain.Listing, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domain.ErrListingNotFound
	}
	in, err := normalizeListingInput(in)
	if err != nil {
		return nil, err
	}

	l := &domain.Listing{ID: id, UpdatedAt: s.now()}
	applyListingInput(l, in)

	updated, err := s.repo.Update(ctx, l)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("listing_id", id).Msg("listing updated")
	return updated, nil
}

func (s *ListingService) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return domain.ErrListingNotFound
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info().Str("listing_id", id).Msg("listing deleted")
	return nil
}

func (s *ListingService) Stats(ctx context.Context) (*domain.ListingStats, error) {
	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing stats: %w", err)
	}
	certified, err := s.repo.CountCertified(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing stats: %w", err)
	}

	stats := &domain.ListingStats{Total: total, Certified: certified, Capacity: s.capacity}
	if s.capacity > 0 && int64(s.capacity) > total {
		stats.Remaining = s.capacity - int(total)
	}
	return stats, nil
}

// normalizeListingInput trims text fields and enforces required fields.
func normalizeListingInput(in ports.ListingInput) (ports.ListingInput, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.ShortDescription = strings.TrimSpace(in.ShortDescription)
	in.FullDetails = strings.TrimSpace(in.FullDetails)
	in.ApplyURL = strings.TrimSpace(in.ApplyURL)
	in.Location = trimOptional(in.Location)
	in.Duration = trimOptional(in.Duration)

	var missing []string
	if in.Title == "" {
		missing = append(missing, "title")
	}
	if in.ShortDescription == "" {
		missing = append(missing, "short_description")
	}
	if in.FullDetails == "" {
		missing = append(missing, "full_details")
	}
	if in.ApplyURL == "" {
		missing = append(missing, "apply_url")
	}
	if len(missing) > 0 {
		return in, domain.NewValidationError("missing required fields: " + strings.Join(missing, ", "))
	}
	if utf8.RuneCountInString(in.ShortDescription) > maxShortDescription {
		return in, domain.NewValidationError(fmt.Sprintf("short_description must be at most %d characters", maxShortDescription))
	}
	return in, nil
}

func applyListingInput(l *domain.Listing, in ports.ListingInput) {
	l.Title = in.Title
	l.ShortDescription = in.ShortDescription
	l.FullDetails = in.FullDetails
	l.HasCertification = in.HasCertification
	l.ApplyURL = in.ApplyURL
	l.Location = in.Location
	l.Duration = in.Duration
	if in.Deadline != nil {
		d := time.Date(in.Deadline.Year(), in.Deadline.Month(), in.Deadline.Day(), 0, 0, 0, 0, time.UTC)
		l.Deadline = &d
	}
}

func trimOptional(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	if v == "" {
		return nil
	}
	return &v
}
