package handler

import (
	"time"

	"github.com/arielspace/listing-board/internal/core/domain"
)

// listingRequest is the body of POST /listings and PUT /listings/{id}.
type listingRequest struct {
	Title            string  `json:"title" validate:"required,max=255"`
	ShortDescription string  `json:"short_description" validate:"required,max=200"`
	FullDetails      string  `json:"full_details" validate:"required"`
	HasCertification bool    `json:"has_certification"`
	ApplyURL         string  `json:"apply_url" validate:"required,url,max=500"`
	Location         *string `json:"location,omitempty" validate:"omitempty,max=255"`
	Duration         *string `json:"duration,omitempty" validate:"omitempty,max=100"`
	// Deadline is a calendar date, YYYY-MM-DD.
	Deadline *string `json:"deadline,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

type listingResponse struct {
	ID               string         `json:"id"`
	Title            string         `json:"title"`
	ShortDescription string         `json:"short_description"`
	FullDetails      string         `json:"full_details"`
	DetailBlocks     []domain.Block `json:"detail_blocks,omitempty"`
	HasCertification bool           `json:"has_certification"`
	ApplyURL         string         `json:"apply_url"`
	Location         *string        `json:"location,omitempty"`
	Duration         *string        `json:"duration,omitempty"`
	Deadline         *string        `json:"deadline,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	CreatedBy        *string        `json:"created_by,omitempty"`
}

type listingEnvelope struct {
	Listing listingResponse `json:"listing"`
}

type listingsEnvelope struct {
	Listings []listingResponse `json:"listings"`
}

type statsResponse struct {
	Total     int64 `json:"total"`
	Certified int64 `json:"certified"`
	Capacity  int   `json:"capacity"`
	Remaining int   `json:"remaining"`
}
