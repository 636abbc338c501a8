package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/opulent-living/property-service/internal/listing/domain"
	"github.com/opulent-living/property-service/internal/platform/logger"
)

const schema = `
CREATE TABLE IF NOT EXISTS properties (
	id               BIGSERIAL PRIMARY KEY,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
	created_by       VARCHAR(255) NOT NULL,
	title            VARCHAR(255) NOT NULL,
	description      VARCHAR(255) NOT NULL,
	property_type    VARCHAR(255) NOT NULL,
	price            BIGINT NOT NULL CHECK (price >= 0),
	number_of_beds   BIGINT NOT NULL CHECK (number_of_beds >= 0),
	number_of_baths  BIGINT NOT NULL CHECK (number_of_baths >= 0),
	sqft             BIGINT NOT NULL CHECK (sqft >= 0),
	is_featured      BOOLEAN NOT NULL DEFAULT false,
	is_active        BOOLEAN NOT NULL DEFAULT true,
	is_sold          BOOLEAN NOT NULL DEFAULT false,
	image_object_id  TEXT NOT NULL DEFAULT '',
	image_original   TEXT NOT NULL DEFAULT '',
	image_full       TEXT NOT NULL DEFAULT '',
	image_thumbnail  TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS properties_featured_created_idx ON properties (is_featured, created_at DESC);
CREATE INDEX IF NOT EXISTS properties_owner_created_idx ON properties (created_by, created_at DESC);
`

const selectColumns = `id, created_at, updated_at, created_by, title, description, property_type,
	price, number_of_beds, number_of_baths, sqft, is_featured, is_active, is_sold,
	image_object_id, image_original, image_full, image_thumbnail`

// columns maps filterable fields to table columns.
var columns = map[domain.Field]string{
	domain.FieldIsFeatured: "is_featured",
	domain.FieldOwnerID:    "created_by",
}

type ListingRepository struct {
	pool   *pgxpool.Pool
	logger *logger.Logger
}

func NewListingRepository(pool *pgxpool.Pool, log *logger.Logger) (*ListingRepository, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgxpool.Pool cannot be nil")
	}
	return &ListingRepository{pool: pool, logger: log}, nil
}

func (r *ListingRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create properties schema: %w", err)
	}
	return nil
}

// buildListQuery renders a plan as a parameterised SELECT.
func buildListQuery(plan domain.QueryPlan) (string, []interface{}, error) {
	var (
		conditions []string
		args       []interface{}
	)
	for _, p := range plan.Predicates {
		col, ok := columns[p.Field]
		if !ok {
			return "", nil, fmt.Errorf("unsupported filter field %s", p.Field)
		}
		args = append(args, p.Value)
		conditions = append(conditions, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(selectColumns)
	sb.WriteString(" FROM properties")
	if len(conditions) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(conditions, " AND "))
	}
	sb.WriteString(" ORDER BY created_at DESC, id DESC")
	if plan.Limit != nil {
		args = append(args, *plan.Limit)
		fmt.Fprintf(&sb, " LIMIT $%d", len(args))
	}
	return sb.String(), args, nil
}

func scanListing(row pgx.Row) (*domain.Listing, error) {
	var l domain.Listing
	err := row.Scan(
		&l.ID, &l.CreatedAt, &l.UpdatedAt, &l.OwnerID, &l.Title, &l.Description, &l.PropertyType,
		&l.Price, &l.NumberOfBeds, &l.NumberOfBaths, &l.Sqft, &l.IsFeatured, &l.IsActive, &l.IsSold,
		&l.Image.ObjectID, &l.Image.URLs.Original, &l.Image.URLs.Full, &l.Image.URLs.Thumbnail,
	)
	if err != nil {
		return nil, err
	}
	l.CreatedAt = l.CreatedAt.UTC()
	l.UpdatedAt = l.UpdatedAt.UTC()
	return &l, nil
}

func (r *ListingRepository) List(ctx context.Context, filter domain.Filter) ([]*domain.Listing, error) {
	query, args, err := buildListQuery(filter.Plan())
	if err != nil {
		return nil, err
	}
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("ListingRepository.List: query failed", "error", err)
		return nil, fmt.Errorf("failed to query listings: %w", err)
	}
	defer rows.Close()

	listings := make([]*domain.Listing, 0)
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan listing: %w", err)
		}
		listings = append(listings, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate listings: %w", err)
	}
	return listings, nil
}

func (r *ListingRepository) GetByID(ctx context.Context, id int64) (*domain.Listing, error) {
	row := r.pool.QueryRow(ctx, "SELECT "+selectColumns+" FROM properties WHERE id = $1", id)
	l, err := scanListing(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrListingNotFound
		}
		r.logger.Error("ListingRepository.GetByID: query failed", "listing_id", id, "error", err)
		return nil, fmt.Errorf("failed to load listing %d: %w", id, err)
	}
	return l, nil
}

func (r *ListingRepository) Insert(ctx context.Context, nl domain.NewListing) (*domain.Listing, error) {
	f := nl.Fields
	row := r.pool.QueryRow(ctx, `
		INSERT INTO properties (created_by, title, description, property_type, price, number_of_beds,
			number_of_baths, sqft, is_featured, is_active, is_sold,
			image_object_id, image_original, image_full, image_thumbnail)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING `+selectColumns,
		nl.OwnerID, f.Title, f.Description, f.PropertyType, f.Price, f.NumberOfBeds,
		f.NumberOfBaths, f.Sqft, f.IsFeatured, f.IsActive, f.IsSold,
		nl.Image.ObjectID, nl.Image.URLs.Original, nl.Image.URLs.Full, nl.Image.URLs.Thumbnail,
	)
	l, err := scanListing(row)
	if err != nil {
		r.logger.Error("ListingRepository.Insert: insert failed", "user_id", nl.OwnerID, "error", err)
		return nil, fmt.Errorf("failed to insert listing: %w", err)
	}
	return l, nil
}

func (r *ListingRepository) Update(ctx context.Context, id int64, f domain.ListingFields) (*domain.Listing, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE properties SET title = $2, description = $3, property_type = $4, price = $5,
			number_of_beds = $6, number_of_baths = $7, sqft = $8, is_featured = $9,
			is_active = $10, is_sold = $11, updated_at = now()
		WHERE id = $1
		RETURNING `+selectColumns,
		id, f.Title, f.Description, f.PropertyType, f.Price, f.NumberOfBeds,
		f.NumberOfBaths, f.Sqft, f.IsFeatured, f.IsActive, f.IsSold,
	)
	l, err := scanListing(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrListingNotFound
		}
		r.logger.Error("ListingRepository.Update: update failed", "listing_id", id, "error", err)
		return nil, fmt.Errorf("failed to update listing %d: %w", id, err)
	}
	return l, nil
}

func (r *ListingRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, "DELETE FROM properties WHERE id = $1", id)
	if err != nil {
		r.logger.Error("ListingRepository.Delete: delete failed", "listing_id", id, "error", err)
		return fmt.Errorf("failed to delete listing %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrListingNotFound
	}
	return nil
}
