package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arielspace/listing-board/internal/core/domain"
	"github.com/arielspace/listing-board/internal/core/ports"
)

const listingColumns = `id, title, short_description, full_details, has_certification, apply_url,
	location, duration, deadline, created_at, updated_at, created_by`

// likeEscaper makes a search term match literally inside an ILIKE pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func containsPattern(q string) string {
	return "%" + likeEscaper.Replace(q) + "%"
}

// ListingRepository implements ports.ListingRepository on PostgreSQL.
// Every call holds exactly one pooled connection and releases it on return.
type ListingRepository struct {
	pool *pgxpool.Pool
}

func NewListingRepository(pool *pgxpool.Pool) *ListingRepository {
	return &ListingRepository{pool: pool}
}

func (r *ListingRepository) List(ctx context.Context, f ports.ListingFilter) ([]*domain.Listing, error) {
	const selectSQL = `
		SELECT ` + listingColumns + `
		FROM listings
		WHERE $1 = '' OR title ILIKE $2 ESCAPE '\' OR short_description ILIKE $2 ESCAPE '\'
		ORDER BY created_at DESC`

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("postgres: acquire: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, selectSQL, f.Query, containsPattern(f.Query))
	if err != nil {
		return nil, fmt.Errorf("postgres: list listings: %w", err)
	}
	defer rows.Close()

	items := make([]*domain.Listing, 0)
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan listing: %w", err)
		}
		items = append(items, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list listings: %w", err)
	}
	return items, nil
}

func (r *ListingRepository) FindByID(ctx context.Context, id string) (*domain.Listing, error) {
	const selectSQL = `SELECT ` + listingColumns + ` FROM listings WHERE id = $1`

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("postgres: acquire: %w", err)
	}
	defer conn.Release()

	l, err := scanListing(conn.QueryRow(ctx, selectSQL, id))
	if err != nil {
		return nil, notFoundOr(err, "find listing")
	}
	return l, nil
}

func (r *ListingRepository) Create(ctx context.Context, l *domain.Listing) (*domain.Listing, error) {
	const insertSQL = `
		INSERT INTO listings (title, short_description, full_details, has_certification, apply_url,
			location, duration, deadline, created_at, updated_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + listingColumns

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("postgres: acquire: %w", err)
	}
	defer conn.Release()

	created, err := scanListing(conn.QueryRow(ctx, insertSQL,
		l.Title, l.ShortDescription, l.FullDetails, l.HasCertification, l.ApplyURL,
		l.Location, l.Duration, l.Deadline, l.CreatedAt, l.UpdatedAt, l.CreatedBy))
	if err != nil {
		return nil, fmt.Errorf("postgres: create listing: %w", err)
	}
	return created, nil
}

func (r *ListingRepository) Update(ctx context.Context, l *domain.Listing) (*domain.Listing, error) {
	const updateSQL = `
		UPDATE listings
		SET title = $2, short_description = $3, full_details = $4, has_certification = $5, apply_url = $6,
			location = $7, duration = $8, deadline = $9, updated_at = $10
		WHERE id = $1
		RETURNING ` + listingColumns

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("postgres: acquire: %w", err)
	}
	defer conn.Release()

	updated, err := scanListing(conn.QueryRow(ctx, updateSQL,
		l.ID, l.Title, l.ShortDescription, l.FullDetails, l.HasCertification, l.ApplyURL,
		l.Location, l.Duration, l.Deadline, l.UpdatedAt))
	if err != nil {
		return nil, notFoundOr(err, "update listing")
	}
	return updated, nil
}

func (r *ListingRepository) Delete(ctx context.Context, id string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("postgres: acquire: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `DELETE FROM listings WHERE id = $1`, id)
	if err != nil {
		return notFoundOr(err, "delete listing")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrListingNotFound
	}
	return nil
}

func (r *ListingRepository) Count(ctx context.Context) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM listings`)
}

func (r *ListingRepository) CountCertified(ctx context.Context) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM listings WHERE has_certification`)
}

func (r *ListingRepository) count(ctx context.Context, query string) (int64, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return 0, fmt.Errorf("postgres: acquire: %w", err)
	}
	defer conn.Release()

	var n int64
	if err := conn.QueryRow(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("postgres: count listings: %w", err)
	}
	return n, nil
}

// notFoundOr maps a missing row or a malformed uuid to ErrListingNotFound.
func notFoundOr(err error, op string) error {
	if errors.Is(err, pgx.ErrNoRows) || pgCode(err) == codeInvalidTextRepr {
		return domain.ErrListingNotFound
	}
	return fmt.Errorf("postgres: %s: %w", op, err)
}

func scanListing(row pgx.Row) (*domain.Listing, error) {
	var l domain.Listing
	err := row.Scan(
		&l.ID,
		&l.Title,
		&l.ShortDescription,
		&l.FullDetails,
		&l.HasCertification,
		&l.ApplyURL,
		&l.Location,
		&l.Duration,
		&l.Deadline,
		&l.CreatedAt,
		&l.UpdatedAt,
		&l.CreatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}
