package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/opulent-living/property-service/internal/listing/domain"
	"github.com/opulent-living/property-service/internal/platform/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	listingsCollection = "listings"
	countersCollection = "counters"
	listingCounterID   = "listings"
)

// fieldKeys maps filterable fields to document keys.
var fieldKeys = map[domain.Field]string{
	domain.FieldIsFeatured: "is_featured",
	domain.FieldOwnerID:    "created_by",
}

type ListingRepository struct {
	collection *mongo.Collection
	counters   *mongo.Collection
	logger     *logger.Logger
	now        func() time.Time
}

func NewListingRepository(db *mongo.Database, log *logger.Logger) *ListingRepository {
	return &ListingRepository{
		collection: db.Collection(listingsCollection),
		counters:   db.Collection(countersCollection),
		logger:     log,
		now:        time.Now,
	}
}

// EnsureIndexes creates the indexes the list queries rely on.
func (r *ListingRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "is_featured", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "created_by", Value: 1}, {Key: "created_at", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create listing indexes: %w", err)
	}
	return nil
}

// buildQuery translates a plan into a filter document and find options.
func buildQuery(plan domain.QueryPlan) (bson.D, *options.FindOptions, error) {
	query := bson.D{}
	for _, p := range plan.Predicates {
		key, ok := fieldKeys[p.Field]
		if !ok {
			return nil, nil, fmt.Errorf("unsupported filter field %s", p.Field)
		}
		query = append(query, bson.E{Key: key, Value: p.Value})
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	if plan.Limit != nil {
		opts.SetLimit(int64(*plan.Limit))
	}
	return query, opts, nil
}

func (r *ListingRepository) List(ctx context.Context, filter domain.Filter) ([]*domain.Listing, error) {
	plan := filter.Plan()
	// Mongo reads a zero limit as "no limit".
	if plan.Limit != nil && *plan.Limit == 0 {
		return []*domain.Listing{}, nil
	}
	query, opts, err := buildQuery(plan)
	if err != nil {
		return nil, err
	}

	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		r.logger.Error("ListingRepository.List: Find failed", "error", err)
		return nil, fmt.Errorf("failed to query listings: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []*listingDocument
	if err := cursor.All(ctx, &docs); err != nil {
		r.logger.Error("ListingRepository.List: cursor decode failed", "error", err)
		return nil, fmt.Errorf("failed to decode listings: %w", err)
	}
	return toDomainListings(docs), nil
}

func (r *ListingRepository) GetByID(ctx context.Context, id int64) (*domain.Listing, error) {
	var doc listingDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrListingNotFound
		}
		r.logger.Error("ListingRepository.GetByID: FindOne failed", "listing_id", id, "error", err)
		return nil, fmt.Errorf("failed to load listing %d: %w", id, err)
	}
	return toDomainListing(&doc), nil
}

func (r *ListingRepository) Insert(ctx context.Context, nl domain.NewListing) (*domain.Listing, error) {
	id, err := r.nextID(ctx)
	if err != nil {
		return nil, err
	}
	doc := toListingDocument(id, nl, r.now().UTC().Truncate(time.Millisecond))
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		r.logger.Error("ListingRepository.Insert: InsertOne failed", "listing_id", id, "error", err)
		return nil, fmt.Errorf("failed to insert listing: %w", err)
	}
	r.logger.Debug("ListingRepository.Insert: listing stored", "listing_id", id)
	return toDomainListing(doc), nil
}

// nextID atomically increments the listing sequence.
func (r *ListingRepository) nextID(ctx context.Context) (int64, error) {
	var counter counterDocument
	err := r.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": listingCounterID},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		r.logger.Error("ListingRepository.nextID: counter increment failed", "error", err)
		return 0, fmt.Errorf("failed to allocate listing id: %w", err)
	}
	return counter.Seq, nil
}

func (r *ListingRepository) Update(ctx context.Context, id int64, fields domain.ListingFields) (*domain.Listing, error) {
	var doc listingDocument
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": fieldsUpdate(fields, r.now().UTC().Truncate(time.Millisecond))},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrListingNotFound
		}
		r.logger.Error("ListingRepository.Update: FindOneAndUpdate failed", "listing_id", id, "error", err)
		return nil, fmt.Errorf("failed to update listing %d: %w", id, err)
	}
	return toDomainListing(&doc), nil
}

func (r *ListingRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		r.logger.Error("ListingRepository.Delete: DeleteOne failed", "listing_id", id, "error", err)
		return fmt.Errorf("failed to delete listing %d: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrListingNotFound
	}
	return nil
}
