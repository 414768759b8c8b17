package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/arielspace/listing-board/internal/core/domain"
	"github.com/arielspace/listing-board/internal/core/ports"
)

const collectionListings = "listings"

type ListingRepository struct {
	col *mongo.Collection
}

func NewListingRepository(db *mongo.Database) *ListingRepository {
	return &ListingRepository{col: db.Collection(collectionListings)}
}

type mongoListing struct {
	ID               string     `bson:"_id"`
	Title            string     `bson:"title"`
	ShortDescription string     `bson:"short_description"`
	FullDetails      string     `bson:"full_details"`
	HasCertification bool       `bson:"has_certification"`
	ApplyURL         string     `bson:"apply_url"`
	Location         *string    `bson:"location,omitempty"`
	Duration         *string    `bson:"duration,omitempty"`
	Deadline         *time.Time `bson:"deadline,omitempty"`
	CreatedAt        time.Time  `bson:"created_at"`
	UpdatedAt        time.Time  `bson:"updated_at"`
	CreatedBy        *string    `bson:"created_by,omitempty"`
}

func bsonKey(field string, order int) bson.D {
	return bson.D{{Key: field, Value: order}}
}

// List returns listings newest first, optionally filtered by a
// case-insensitive substring of title or short description.
func (r *ListingRepository) List(ctx context.Context, f ports.ListingFilter) ([]*domain.Listing, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{}
	if f.Query != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(f.Query), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"title": re},
			bson.M{"short_description": re},
		}
	}

	cursor, err := r.col.Find(ctx, filter, options.Find().SetSort(bsonKey("created_at", -1)))
	if err != nil {
		return nil, fmt.Errorf("find listings: %w", err)
	}
	defer cursor.Close(ctx)

	items := make([]*domain.Listing, 0)
	for cursor.Next(ctx) {
		var ml mongoListing
		if err := cursor.Decode(&ml); err != nil {
			return nil, fmt.Errorf("decode listing: %w", err)
		}
		items = append(items, ml.toDomain())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("iterate listings: %w", err)
	}
	return items, nil
}

func (r *ListingRepository) FindByID(ctx context.Context, id string) (*domain.Listing, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var ml mongoListing
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&ml); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrListingNotFound
		}
		return nil, fmt.Errorf("find listing: %w", err)
	}
	return ml.toDomain(), nil
}

func (r *ListingRepository) Create(ctx context.Context, l *domain.Listing) (*domain.Listing, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := fromDomain(l)
	doc.ID = uuid.NewString()
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert listing: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *ListingRepository) Update(ctx context.Context, l *domain.Listing) (*domain.Listing, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := fromDomain(l)
	set := bson.M{
		"title":             doc.Title,
		"short_description": doc.ShortDescription,
		"full_details":      doc.FullDetails,
		"has_certification": doc.HasCertification,
		"apply_url":         doc.ApplyURL,
		"location":          doc.Location,
		"duration":          doc.Duration,
		"deadline":          doc.Deadline,
		"updated_at":        doc.UpdatedAt,
	}

	var updated mongoListing
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": l.ID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrListingNotFound
		}
		return nil, fmt.Errorf("update listing: %w", err)
	}
	return updated.toDomain(), nil
}

func (r *ListingRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete listing: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrListingNotFound
	}
	return nil
}

func (r *ListingRepository) Count(ctx context.Context) (int64, error) {
	return r.count(ctx, bson.M{})
}

func (r *ListingRepository) CountCertified(ctx context.Context) (int64, error) {
	return r.count(ctx, bson.M{"has_certification": true})
}

func (r *ListingRepository) count(ctx context.Context, filter bson.M) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("count listings: %w", err)
	}
	return n, nil
}

func fromDomain(l *domain.Listing) mongoListing {
	return mongoListing{
		ID:               l.ID,
		Title:            l.Title,
		ShortDescription: l.ShortDescription,
		FullDetails:      l.FullDetails,
		HasCertification: l.HasCertification,
		ApplyURL:         l.ApplyURL,
		Location:         l.Location,
		Duration:         l.Duration,
		Deadline:         l.Deadline,
		CreatedAt:        l.CreatedAt.UTC(),
		UpdatedAt:        l.UpdatedAt.UTC(),
		CreatedBy:        l.CreatedBy,
	}
}

func (ml mongoListing) toDomain() *domain.Listing {
	l := &domain.Listing{
		ID:               ml.ID,
		Title:            ml.Title,
		ShortDescription: ml.ShortDescription,
		FullDetails:      ml.FullDetails,
		HasCertification: ml.HasCertification,
		ApplyURL:         ml.ApplyURL,
		Location:         ml.Location,
		Duration:         ml.Duration,
		CreatedAt:        ml.CreatedAt.UTC(),
		UpdatedAt:        ml.UpdatedAt.UTC(),
		CreatedBy:        ml.CreatedBy,
	}
	if ml.Deadline != nil {
		d := ml.Deadline.UTC()
		l.Deadline = &d
	}
	return l
}
