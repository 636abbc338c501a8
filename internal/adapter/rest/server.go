package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/opulent-living/property-service/internal/adapter/rest/middleware"
	"github.com/opulent-living/property-service/internal/platform/logger"
	"github.com/opulent-living/property-service/internal/platform/metrics"
)

type RouterConfig struct {
	AllowedOrigin string
}

func NewRouter(h *Handler, auth middleware.Authorizer, m *metrics.Manager, log *logger.Logger, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Tracing)
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.Metrics(m))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.AllowedOrigin},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.SessionIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/", h.Banner)
	r.Get("/healthz", h.Health)

	r.Route("/properties", func(r chi.Router) {
		r.Get("/", h.ListListings)
		r.Get("/user/{ownerId}", h.ListOwnerListings)
		r.Get("/{id}", h.GetListing)

		r.Group(func(r chi.Router) {
			r.Use(middleware.SessionAuth(auth, log))
			r.Post("/", h.CreateListing)
			r.Put("/{id}", h.UpdateListing)
			r.Delete("/{id}", h.DeleteListing)
		})
	})

	log.Info("HTTP router configured", "allowed_origin", cfg.AllowedOrigin)
	return r
}

type Server struct {
	httpServer *http.Server
	logger     *logger.Logger
}

func NewServer(port string, handler http.Handler, log *logger.Logger) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              ":" + port,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: log,
	}
}

// Start blocks until the server stops. A graceful Stop is not an error.
func (s *Server) Start() error {
	s.logger.Info("Starting HTTP server", "address", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("could not start server: %w", err)
	}
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping HTTP server")
	return s.httpServer.Shutdown(ctx)
}
