package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/opulent-living/property-service/internal/listing/domain"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "listing:"

type ListingCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewListingCache(ctx context.Context, addr string, ttl time.Duration) (*ListingCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return &ListingCache{client: client, ttl: ttl}, nil
}

func cacheKey(id int64) string {
	return keyPrefix + strconv.FormatInt(id, 10)
}

// GetListing returns nil, nil on a cache miss.
func (c *ListingCache) GetListing(ctx context.Context, id int64) (*domain.Listing, error) {
	data, err := c.client.Get(ctx, cacheKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var listing domain.Listing
	if err := json.Unmarshal(data, &listing); err != nil {
		return nil, err
	}
	return &listing, nil
}

func (c *ListingCache) SetListing(ctx context.Context, listing *domain.Listing) error {
	data, err := json.Marshal(listing)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, cacheKey(listing.ID), data, c.ttl).Err()
}

func (c *ListingCache) DeleteListing(ctx context.Context, id int64) error {
	return c.client.Del(ctx, cacheKey(id)).Err()
}

func (c *ListingCache) Close() error {
	return c.client.Close()
}
