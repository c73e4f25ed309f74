// Package server provides the HTTP API for reviewcheck.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hyperjump/reviewcheck/internal/analysis"
	"github.com/hyperjump/reviewcheck/internal/config"
	"github.com/hyperjump/reviewcheck/internal/embedding"
	"github.com/hyperjump/reviewcheck/internal/models"
	"github.com/hyperjump/reviewcheck/pkg/utils"
	"go.uber.org/zap"
)

// EntityLister exposes the catalog to the listing endpoints.
type EntityLister interface {
	Entity(id string) (*models.Entity, bool)
	Entities() []*models.Entity
}

// StatsSource reports embedding cache usage.
type StatsSource interface {
	Stats() embedding.CacheStats
}

// Server is the HTTP server for the reviewcheck API.
type Server struct {
	analyzer *analysis.Analyzer
	entities EntityLister
	stats    StatsSource
	model    string
	config   *config.ServerConfig
	logger   *zap.Logger
	server   *http.Server
}

// NewServer creates a server with the given dependencies. stats may be nil.
func NewServer(
	analyzer *analysis.Analyzer,
	entities EntityLister,
	stats StatsSource,
	model string,
	cfg *config.ServerConfig,
	logger *zap.Logger,
) *Server {
	s := &Server{
		analyzer: analyzer,
		entities: entities,
		stats:    stats,
		model:    model,
		config:   cfg,
		logger:   utils.OrNop(logger),
	}
	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the API router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	// Batch analysis may make several provider calls of up to 30s each.
	r.Use(middleware.Timeout(120 * time.Second))

	r.Get("/health", s.handleHealth)
	r.Get("/api/entities", s.handleListEntities)
	r.Get("/api/entities/{id}", s.handleGetEntity)
	r.Get("/api/analyze/{id}", s.handleAnalyze)
	r.Post("/api/custom_review", s.handleCustomReview)
	r.Get("/api/stats", s.handleStats)
	return r
}

// Start starts the HTTP server and blocks until it stops.
// It returns http.ErrServerClosed after Stop.
func (s *Server) Start() error {
	s.logger.Info("Starting server", zap.String("addr", s.server.Addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
