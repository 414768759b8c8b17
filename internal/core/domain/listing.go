package domain

import "time"

// DeadlineLayout is the wire and storage format of Listing.Deadline.
const DeadlineLayout = "2006-01-02"

// Listing is an internship or project opportunity.
type Listing struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	ShortDescription string     `json:"short_description"`
	FullDetails      string     `json:"full_details"`
	HasCertification bool       `json:"has_certification"`
	ApplyURL         string     `json:"apply_url"`
	Location         *string    `json:"location,omitempty"`
	Duration         *string    `json:"duration,omitempty"`
	Deadline         *time.Time `json:"deadline,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	// CreatedBy is a weak reference; the user may no longer exist.
	CreatedBy *string `json:"created_by,omitempty"`
}

// ListingStats backs the admin dashboard counters.
type ListingStats struct {
	Total     int64
	Certified int64
	// Capacity is zero when no ceiling is configured.
	Capacity  int
	Remaining int
}
