package handler

import (
	"time"

	"github.com/arielspace/listing-board/internal/core/domain"
	"github.com/arielspace/listing-board/internal/core/ports"
)

// --- Request → Service input ---

// toListingInput assumes req passed validation, so Deadline parses.
func toListingInput(req listingRequest) (ports.ListingInput, error) {
	in := ports.ListingInput{
		Title:            req.Title,
		ShortDescription: req.ShortDescription,
		FullDetails:      req.FullDetails,
		HasCertification: req.HasCertification,
		ApplyURL:         req.ApplyURL,
		Location:         req.Location,
		Duration:         req.Duration,
	}
	if req.Deadline != nil && *req.Deadline != "" {
		d, err := time.Parse(domain.DeadlineLayout, *req.Deadline)
		if err != nil {
			return ports.ListingInput{}, domain.NewValidationError("deadline must be a date in 2006-01-02 format")
		}
		in.Deadline = &d
	}
	return in, nil
}

// --- Service result → HTTP response ---

func toListingResponse(l *domain.Listing) listingResponse {
	resp := listingResponse{
		ID:               l.ID,
		Title:            l.Title,
		ShortDescription: l.ShortDescription,
		FullDetails:      l.FullDetails,
		HasCertification: l.HasCertification,
		ApplyURL:         l.ApplyURL,
		Location:         l.Location,
		Duration:         l.Duration,
		CreatedAt:        l.CreatedAt.UTC(),
		UpdatedAt:        l.UpdatedAt.UTC(),
		CreatedBy:        l.CreatedBy,
	}
	if l.Deadline != nil {
		d := l.Deadline.Format(domain.DeadlineLayout)
		resp.Deadline = &d
	}
	return resp
}

// toListingDetailResponse adds the parsed detail blocks shown on the
// listing page.
func toListingDetailResponse(l *domain.Listing) listingResponse {
	resp := toListingResponse(l)
	resp.DetailBlocks = domain.ParseDetails(l.FullDetails)
	return resp
}

func toListingsResponse(items []*domain.Listing) []listingResponse {
	out := make([]listingResponse, len(items))
	for i, l := range items {
		out[i] = toListingResponse(l)
	}
	return out
}

func toStatsResponse(s *domain.ListingStats) statsResponse {
	return statsResponse{
		Total:     s.Total,
		Certified: s.Certified,
		Capacity:  s.Capacity,
		Remaining: s.Remaining,
	}
}
