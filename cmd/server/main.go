package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/opulent-living/property-service/internal/adapter/rest"
	"github.com/opulent-living/property-service/internal/adapter/storage/s3"
	"github.com/opulent-living/property-service/internal/config"
	"github.com/opulent-living/property-service/internal/listing/usecase"
	"github.com/opulent-living/property-service/internal/platform/logger"
	"github.com/opulent-living/property-service/internal/platform/metrics"
	"github.com/opulent-living/property-service/internal/platform/tracer"
)

const (
	serviceName      = "property-service"
	metricsNamespace = "property_service"
	shutdownTimeout  = 10 * time.Second
)

func main() {
	appLogger := logger.NewLogger()
	defer func() { _ = appLogger.Sync() }()
	appLogger.Info("Application starting...", "service_name", serviceName)

	// 1. Configuration
	cfg, err := config.Load()
	if err != nil {
		appLogger.Fatal("Failed to load configuration", "error", err)
	}
	appLogger.Info("Configuration loaded",
		"http_port", cfg.HTTPPort,
		"app_env", cfg.AppEnv,
		"storage_driver", cfg.StorageDriver,
		"auth_provider", cfg.AuthProvider,
		"cache_enabled", cfg.RedisAddress != "",
		"nats_enabled", cfg.NATSURL != "",
		"smtp_enabled", cfg.SMTPEnabled(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. Tracing
	tp, err := tracer.InitTracer(ctx, cfg.OTelEndpoint, serviceName)
	if err != nil {
		appLogger.Fatal("Failed to initialize tracer", "error", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			appLogger.Error("Failed to shutdown tracer provider", "error", err)
		}
	}()

	// 3. Listing storage, optionally behind the redis cache
	listingRepo, closeRepo, err := buildRepository(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize listing repository", "driver", cfg.StorageDriver, "error", err)
	}
	defer closeRepo()

	// 4. Image store
	imageStore, err := s3.NewS3Storage(ctx, s3.Options{
		Endpoint:      cfg.MinIOEndpoint,
		AccessKey:     cfg.MinIOAccessKey,
		SecretKey:     cfg.MinIOSecretKey,
		Bucket:        cfg.MinIOBucket,
		UseSSL:        cfg.MinIOUseSSL,
		PublicBaseURL: cfg.ImagePublicBaseURL,
	}, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize image storage", "error", err)
	}

	// 5. Events and notifications
	events, closeEvents, err := buildPublisher(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize NATS publisher", "error", err)
	}
	defer closeEvents()
	notifier := buildNotifier(cfg, appLogger)

	// 6. Identity provider
	identity, err := buildIdentityProvider(cfg)
	if err != nil {
		appLogger.Fatal("Failed to initialize identity provider", "error", err)
	}

	// 7. Metrics
	metricsManager := metrics.NewManager(metricsNamespace)
	go func() {
		if err := metrics.StartServer(cfg.MetricsPort, appLogger, metricsManager); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("Metrics server failed", "error", err)
		}
	}()

	// 8. Use cases and HTTP transport
	listingUsecase := usecase.NewListingUsecase(listingRepo, imageStore, events, notifier, metricsManager, appLogger)
	sessionVerifier := usecase.NewSessionVerifier(identity, appLogger)
	handler := rest.NewHandler(listingUsecase, cfg.MaxUploadBytes, appLogger)
	router := rest.NewRouter(handler, sessionVerifier, metricsManager, appLogger, rest.RouterConfig{
		AllowedOrigin: cfg.AllowedOrigin(),
	})
	server := rest.NewServer(cfg.HTTPPort, router, appLogger)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	// 9. Graceful shutdown
	select {
	case <-ctx.Done():
		appLogger.Info("Received shutdown signal")
	case err := <-serverErr:
		if err != nil {
			appLogger.Fatal("HTTP server stopped unexpectedly", "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Stop(shutdownCtx); err != nil {
		appLogger.Error("HTTP server shutdown failed", "error", err)
	}
	appLogger.Info("Application shutting down...")
}
