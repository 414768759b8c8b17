package seed

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/arielspace/listing-board/internal/core/domain"
	"github.com/arielspace/listing-board/internal/core/ports"
)

type stubUsers struct {
	users map[string]*domain.User
}

func (r *stubUsers) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	if u, ok := r.users[email]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUsers) FindByID(context.Context, string) (*domain.User, error) {
	return nil, domain.ErrUserNotFound
}

func (r *stubUsers) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	c := *u
	c.ID = "user-" + u.Email
	r.users[u.Email] = &c
	return &c, nil
}

type stubListings struct {
	items    []*domain.Listing
	countErr error
}

func (r *stubListings) List(context.Context, ports.ListingFilter) ([]*domain.Listing, error) {
	return r.items, nil
}

func (r *stubListings) FindByID(context.Context, string) (*domain.Listing, error) {
	return nil, domain.ErrListingNotFound
}

func (r *stubListings) Create(_ context.Context, l *domain.Listing) (*domain.Listing, error) {
	c := *l
	c.ID = fmt.Sprintf("listing-%d", len(r.items)+1)
	r.items = append(r.items, &c)
	return &c, nil
}

func (r *stubListings) Update(context.Context, *domain.Listing) (*domain.Listing, error) {
	return nil, domain.ErrListingNotFound
}

func (r *stubListings) Delete(context.Context, string) error {
	return domain.ErrListingNotFound
}

func (r *stubListings) Count(context.Context) (int64, error) {
	return int64(len(r.items)), r.countErr
}

func (r *stubListings) CountCertified(context.Context) (int64, error) {
	return 0, nil
}

func newTestSeeder() (*Seeder, *stubUsers, *stubListings) {
	users := &stubUsers{users: map[string]*domain.User{}}
	listings := &stubListings{}
	s := New(users, listings, zerolog.Nop())
	s.bcryptCost = bcrypt.MinCost
	return s, users, listings
}

func TestSeeder_AdminIsIdempotent(t *testing.T) {
	s, users, _ := newTestSeeder()
	ctx := context.Background()

	created, err := s.Admin(ctx, " Admin@ArielSpace.com ", "s3cret!")
	if err != nil || !created {
		t.Fatalf("expected admin created, got %v, %v", created, err)
	}
	u := users.users["admin@arielspace.com"]
	if u == nil || u.Role != domain.RoleAdmin {
		t.Fatalf("expected stored admin, got %+v", u)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("s3cret!")) != nil {
		t.Fatalf("stored hash does not match")
	}

	created, err = s.Admin(ctx, "admin@arielspace.com", "other")
	if err != nil || created {
		t.Fatalf("expected no-op on second run, got %v, %v", created, err)
	}

	if _, err := s.Admin(ctx, "admin@arielspace.com", ""); !errors.Is(err, ErrNoAdminCredentials) {
		t.Fatalf("expected ErrNoAdminCredentials, got %v", err)
	}
}

func TestSeeder_ListingsOnlyIntoEmptyBoard(t *testing.T) {
	s, _, listings := newTestSeeder()
	ctx := context.Background()

	n, err := s.Listings(ctx, DefaultListings())
	if err != nil {
		t.Fatalf("Listings: %v", err)
	}
	if n != 3 || len(listings.items) != 3 {
		t.Fatalf("expected 3 listings seeded, got %d (%d stored)", n, len(listings.items))
	}
	for _, l := range listings.items {
		if l.Title == "" || l.ApplyURL == "" || l.FullDetails == "" || l.ShortDescription == "" {
			t.Fatalf("seed listing missing required field: %+v", l)
		}
		if !l.UpdatedAt.Equal(l.CreatedAt) {
			t.Fatalf("expected updated_at = created_at, got %+v", l)
		}
	}

	n, err = s.Listings(ctx, DefaultListings())
	if err != nil || n != 0 || len(listings.items) != 3 {
		t.Fatalf("expected second run to skip, got %d, %v", n, err)
	}

	listings.countErr = errors.New("pool closed")
	if _, err := s.Listings(ctx, DefaultListings()); err == nil {
		t.Fatalf("expected count error to surface")
	}
}
