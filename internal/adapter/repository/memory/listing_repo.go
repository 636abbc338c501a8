// Package memory is an in-process listing repository for local runs and
// tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/opulent-living/property-service/internal/listing/domain"
)

type ListingRepository struct {
	mu     sync.RWMutex
	nextID int64
	rows   map[int64]domain.Listing
	now    func() time.Time
}

func NewListingRepository() *ListingRepository {
	return &ListingRepository{rows: make(map[int64]domain.Listing), now: time.Now}
}

// WithClock overrides the timestamp source.
func (r *ListingRepository) WithClock(now func() time.Time) *ListingRepository {
	r.now = now
	return r
}

func (r *ListingRepository) List(_ context.Context, filter domain.Filter) ([]*domain.Listing, error) {
	plan := filter.Plan()

	r.mu.RLock()
	matched := make([]*domain.Listing, 0, len(r.rows))
	for _, row := range r.rows {
		row := row
		if plan.Matches(&row) {
			matched = append(matched, &row)
		}
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})
	if plan.Limit != nil && *plan.Limit < len(matched) {
		matched = matched[:*plan.Limit]
	}
	return matched, nil
}

func (r *ListingRepository) GetByID(_ context.Context, id int64) (*domain.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	row, ok := r.rows[id]
	if !ok {
		return nil, domain.ErrListingNotFound
	}
	return &row, nil
}

func (r *ListingRepository) Insert(_ context.Context, nl domain.NewListing) (*domain.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	now := r.now().UTC()
	row := domain.Listing{
		ID:        r.nextID,
		CreatedAt: now,
		UpdatedAt: now,
		OwnerID:   nl.OwnerID,
		Image:     nl.Image,
	}
	row.Apply(nl.Fields)
	r.rows[row.ID] = row
	return &row, nil
}

func (r *ListingRepository) Update(_ context.Context, id int64, fields domain.ListingFields) (*domain.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	row, ok := r.rows[id]
	if !ok {
		return nil, domain.ErrListingNotFound
	}
	row.Apply(fields)
	row.UpdatedAt = r.now().UTC()
	r.rows[id] = row
	return &row, nil
}

func (r *ListingRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return domain.ErrListingNotFound
	}
	delete(r.rows, id)
	return nil
}

func (r *ListingRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rows)
}
