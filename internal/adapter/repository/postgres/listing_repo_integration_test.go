//go:build integration

package postgres

import (
	"context"
	"fmt"
	"log"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/opulent-living/property-service/internal/listing/domain"
	"github.com/opulent-living/property-service/internal/platform/logger"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testPool *pgxpool.Pool

func TestMain(m *testing.M) {
	pool, err := dockertest.NewPool("")
	if err != nil {
		log.Fatalf("Could not construct pool: %s", err)
	}
	if err := pool.Client.Ping(); err != nil {
		log.Fatalf("Could not connect to Docker: %s", err)
	}

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16",
		Env: []string{
			"POSTGRES_USER=postgres",
			"POSTGRES_PASSWORD=secret",
			"POSTGRES_DB=properties_test",
		},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		log.Fatalf("Could not start Postgres resource: %s", err)
	}
	dsn := fmt.Sprintf("postgres://postgres:secret@%s/properties_test?sslmode=disable", resource.GetHostPort("5432/tcp"))

	if err := pool.Retry(func() error {
		var errRetry error
		testPool, errRetry = pgxpool.New(context.Background(), dsn)
		if errRetry != nil {
			return errRetry
		}
		if errRetry = testPool.Ping(context.Background()); errRetry != nil {
			testPool.Close()
			return errRetry
		}
		return nil
	}); err != nil {
		log.Fatalf("Could not connect to Postgres: %s", err)
	}

	code := m.Run()

	testPool.Close()
	if err := pool.Purge(resource); err != nil {
		log.Fatalf("Could not purge Postgres resource: %s", err)
	}
	os.Exit(code)
}

func newTestRepository(t *testing.T) *ListingRepository {
	t.Helper()
	ctx := context.Background()
	repo, err := NewListingRepository(testPool, logger.NewNop())
	require.NoError(t, err)
	require.NoError(t, repo.EnsureSchema(ctx))
	_, err = testPool.Exec(ctx, "TRUNCATE properties RESTART IDENTITY")
	require.NoError(t, err)
	return repo
}

func TestListingRepository_CRUD(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	created, err := repo.Insert(ctx, domain.NewListing{
		OwnerID: "user_1",
		Fields:  domain.ListingFields{Title: "A", Description: "B", PropertyType: "house", Price: 100000, NumberOfBeds: 2, NumberOfBaths: 1, Sqft: 900, IsActive: true},
		Image:   domain.ImageRef{ObjectID: "properties/x.jpg", URLs: domain.ImageURLs{Original: "http://img/x.jpg"}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	updated, err := repo.Update(ctx, created.ID, domain.ListingFields{Title: "A2", Description: "B", PropertyType: "house", Price: 1, IsSold: true})
	require.NoError(t, err)
	assert.Equal(t, "A2", updated.Title)
	assert.Equal(t, int64(1), updated.Price)
	assert.True(t, updated.IsSold)
	assert.False(t, updated.IsActive)
	assert.Equal(t, "user_1", updated.OwnerID)
	assert.Equal(t, "properties/x.jpg", updated.Image.ObjectID)
	assert.Equal(t, "http://img/x.jpg", updated.Image.URLs.Original)
	assert.False(t, updated.UpdatedAt.Before(created.UpdatedAt))

	require.NoError(t, repo.Delete(ctx, created.ID))
	assert.ErrorIs(t, repo.Delete(ctx, created.ID), domain.ErrListingNotFound)
	_, err = repo.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrListingNotFound)
}

func TestListingRepository_UpdateMissing(t *testing.T) {
	repo := newTestRepository(t)

	_, err := repo.Update(context.Background(), 404, domain.ListingFields{Title: "t", Description: "d", PropertyType: "house"})
	assert.ErrorIs(t, err, domain.ErrListingNotFound)
}

func TestListingRepository_ListFilters(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	for i, featured := range []bool{true, false, true, false, true} {
		_, err := repo.Insert(ctx, domain.NewListing{
			OwnerID: fmt.Sprintf("user_%d", i%2),
			Fields:  domain.ListingFields{Title: "t", Description: "d", PropertyType: "house", IsFeatured: featured},
		})
		require.NoError(t, err)
	}

	all, err := repo.List(ctx, domain.Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 5)

	limit, featured := 2, true
	top, err := repo.List(ctx, domain.Filter{IsFeatured: &featured, Limit: &limit})
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, int64(5), top[0].ID)
	assert.Equal(t, int64(3), top[1].ID)

	owner := "user_1"
	mine, err := repo.List(ctx, domain.Filter{OwnerID: &owner})
	require.NoError(t, err)
	require.Len(t, mine, 2)
	for _, l := range mine {
		assert.Equal(t, "user_1", l.OwnerID)
	}
}
