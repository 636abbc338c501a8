package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/opulent-living/property-service/internal/adapter/identity/clerk"
	"github.com/opulent-living/property-service/internal/adapter/identity/jwt"
	natsAdapter "github.com/opulent-living/property-service/internal/adapter/messaging/nats"
	"github.com/opulent-living/property-service/internal/adapter/repository/cache"
	"github.com/opulent-living/property-service/internal/adapter/repository/memory"
	"github.com/opulent-living/property-service/internal/adapter/repository/mongodb"
	"github.com/opulent-living/property-service/internal/adapter/repository/postgres"
	"github.com/opulent-living/property-service/internal/config"
	"github.com/opulent-living/property-service/internal/listing/domain"
	"github.com/opulent-living/property-service/internal/mailer"
	"github.com/opulent-living/property-service/internal/platform/logger"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const connectTimeout = 10 * time.Second

func buildRepository(ctx context.Context, cfg *config.Config, log *logger.Logger) (domain.ListingRepository, func(), error) {
	repo, closeStore, err := buildStore(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}
	if cfg.RedisAddress == "" {
		return repo, closeStore, nil
	}

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	listingCache, err := cache.NewListingCache(pingCtx, cfg.RedisAddress, cfg.CacheTTL)
	if err != nil {
		closeStore()
		return nil, nil, fmt.Errorf("redis: %w", err)
	}
	log.Info("Listing cache enabled", "address", cfg.RedisAddress, "ttl", cfg.CacheTTL)
	return cache.NewCachedRepository(repo, listingCache, log), func() {
		if err := listingCache.Close(); err != nil {
			log.Error("Failed to close redis client", "error", err)
		}
		closeStore()
	}, nil
}

func buildStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (domain.ListingRepository, func(), error) {
	connCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	switch cfg.StorageDriver {
	case config.StorageMongo:
		client, err := mongo.Connect(connCtx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			return nil, nil, fmt.Errorf("mongo connect: %w", err)
		}
		closeFn := func() {
			log.Info("Disconnecting from MongoDB...")
			if err := client.Disconnect(context.Background()); err != nil {
				log.Error("Error disconnecting from MongoDB", "error", err)
			}
		}
		if err := client.Ping(connCtx, nil); err != nil {
			closeFn()
			return nil, nil, fmt.Errorf("mongo ping: %w", err)
		}
		repo := mongodb.NewListingRepository(client.Database(cfg.MongoDB), log)
		if err := repo.EnsureIndexes(connCtx); err != nil {
			closeFn()
			return nil, nil, err
		}
		log.Info("Connected to MongoDB", "database", cfg.MongoDB)
		return repo, closeFn, nil

	case config.StoragePostgres:
		pool, err := pgxpool.New(connCtx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres pool: %w", err)
		}
		if err := pool.Ping(connCtx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("postgres ping: %w", err)
		}
		repo, err := postgres.NewListingRepository(pool, log)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		if err := repo.EnsureSchema(connCtx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		log.Info("Connected to PostgreSQL")
		return repo, pool.Close, nil

	case config.StorageMemory:
		log.Warn("Using in-memory listing storage, data is lost on restart")
		return memory.NewListingRepository(), func() {}, nil
	}
	return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
}

func buildPublisher(cfg *config.Config, log *logger.Logger) (domain.EventPublisher, func(), error) {
	if cfg.NATSURL == "" {
		log.Info("NATS_URL not set, listing events are not published")
		return natsAdapter.NopPublisher{}, func() {}, nil
	}
	publisher, err := natsAdapter.NewPublisher(cfg.NATSURL, log)
	if err != nil {
		return nil, nil, err
	}
	log.Info("NATS publisher initialized", "url", cfg.NATSURL)
	return publisher, publisher.Close, nil
}

func buildNotifier(cfg *config.Config, log *logger.Logger) domain.Notifier {
	if !cfg.SMTPEnabled() {
		log.Info("SMTP not configured, moderation emails disabled")
		return mailer.NopNotifier{}
	}
	return mailer.NewSMTPMailer(mailer.Config{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		From:     cfg.SMTPEmail,
		Password: cfg.SMTPPassword,
		To:       cfg.ModerationEmail,
	}, log)
}

func buildIdentityProvider(cfg *config.Config) (domain.IdentityProvider, error) {
	switch cfg.AuthProvider {
	case config.AuthClerk:
		return clerk.NewClient(cfg.ClerkAPIURL, cfg.ClerkSecretKey, nil), nil
	case config.AuthJWT:
		return jwt.NewVerifier(cfg.JWTSecret), nil
	}
	return nil, fmt.Errorf("unknown auth provider %q", cfg.AuthProvider)
}
