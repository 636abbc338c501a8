package cache

import (
	"context"

	"github.com/opulent-living/property-service/internal/listing/domain"
	"github.com/opulent-living/property-service/internal/platform/logger"
)

type listingCache interface {
	GetListing(ctx context.Context, id int64) (*domain.Listing, error)
	SetListing(ctx context.Context, listing *domain.Listing) error
	DeleteListing(ctx context.Context, id int64) error
}

// CachedRepository serves GetByID through the cache and drops entries on
// every write. Cache faults are logged and fall through to the store.
type CachedRepository struct {
	domain.ListingRepository
	cache  listingCache
	logger *logger.Logger
}

func NewCachedRepository(repo domain.ListingRepository, cache listingCache, log *logger.Logger) *CachedRepository {
	return &CachedRepository{ListingRepository: repo, cache: cache, logger: log}
}

func (r *CachedRepository) GetByID(ctx context.Context, id int64) (*domain.Listing, error) {
	cached, err := r.cache.GetListing(ctx, id)
	if err != nil {
		r.logger.Warn("CachedRepository.GetByID: cache read failed", "listing_id", id, "error", err.Error())
	} else if cached != nil {
		return cached, nil
	}

	listing, err := r.ListingRepository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := r.cache.SetListing(ctx, listing); err != nil {
		r.logger.Warn("CachedRepository.GetByID: cache write failed", "listing_id", id, "error", err.Error())
	}
	return listing, nil
}

func (r *CachedRepository) Update(ctx context.Context, id int64, fields domain.ListingFields) (*domain.Listing, error) {
	r.invalidate(ctx, id)
	listing, err := r.ListingRepository.Update(ctx, id, fields)
	r.invalidate(ctx, id)
	return listing, err
}

func (r *CachedRepository) Delete(ctx context.Context, id int64) error {
	err := r.ListingRepository.Delete(ctx, id)
	r.invalidate(ctx, id)
	return err
}

func (r *CachedRepository) invalidate(ctx context.Context, id int64) {
	if err := r.cache.DeleteListing(ctx, id); err != nil {
		r.logger.Warn("CachedRepository: cache invalidation failed", "listing_id", id, "error", err.Error())
	}
}
