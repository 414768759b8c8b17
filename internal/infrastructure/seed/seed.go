// Package seed bootstraps a fresh deployment: the admin account and the
// default listings. Both steps are idempotent.
package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/arielspace/listing-board/internal/core/domain"
	"github.com/arielspace/listing-board/internal/core/ports"
)

// ErrNoAdminCredentials is returned by Admin when either value is empty.
var ErrNoAdminCredentials = errors.New("seed: ADMIN_EMAIL and ADMIN_PASSWORD are required")

type Seeder struct {
	users      ports.UserRepository
	listings   ports.ListingRepository
	bcryptCost int
	now        func() time.Time
	log        zerolog.Logger
}

func New(users ports.UserRepository, listings ports.ListingRepository, log zerolog.Logger) *Seeder {
	return &Seeder{
		users:      users,
		listings:   listings,
		bcryptCost: bcrypt.DefaultCost,
		now:        func() time.Time { return time.Now().UTC() },
		log:        log,
	}
}

// Admin creates the admin account unless the address is already registered.
// It reports whether a row was inserted.
func (s *Seeder) Admin(ctx context.Context, email, password string) (bool, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return false, ErrNoAdminCredentials
	}

	_, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		s.log.Info().Str("email", email).Msg("admin user already exists")
		return false, nil
	case !errors.Is(err, domain.ErrUserNotFound):
		return false, fmt.Errorf("seed admin: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return false, fmt.Errorf("seed admin: hash password: %w", err)
	}

	now := s.now()
	user, err := s.users.Create(ctx, &domain.User{
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    "Admin",
		LastName:     "User",
		Role:         domain.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if errors.Is(err, domain.ErrEmailTaken) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("seed admin: %w", err)
	}

	s.log.Info().Str("user_id", user.ID).Str("email", email).Msg("admin user created")
	return true, nil
}

// Listings inserts items only when the board is empty and returns how many
// were written.
func (s *Seeder) Listings(ctx context.Context, items []domain.Listing) (int, error) {
	n, err := s.listings.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("seed listings: %w", err)
	}
	if n > 0 {
		s.log.Info().Int64("existing", n).Msg("listings already present, skipping")
		return 0, nil
	}

	inserted := 0
	for i := range items {
		l := items[i]
		if l.CreatedAt.IsZero() {
			l.CreatedAt = s.now()
		}
		l.UpdatedAt = l.CreatedAt
		created, err := s.listings.Create(ctx, &l)
		if err != nil {
			return inserted, fmt.Errorf("seed listing %q: %w", l.Title, err)
		}
		inserted++
		s.log.Debug().Str("listing_id", created.ID).Str("title", created.Title).Msg("listing seeded")
	}

	s.log.Info().Int("inserted", inserted).Msg("default listings seeded")
	return inserted, nil
}
