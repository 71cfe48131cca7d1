// Package api exposes the search operations over plain HTTP next to the MCP
// stream, together with health and Prometheus endpoints.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"mcpnvidia/engine"
	"mcpnvidia/metrics"
	"mcpnvidia/search"
)

// Searcher is the engine surface served over HTTP.
type Searcher interface {
	Search(ctx context.Context, q search.Query) (search.ResultSet, error)
	Discover(ctx context.Context, req engine.DiscoverRequest) (search.ResultSet, error)
	Domains() []string
}

type Server struct {
	searcher Searcher
	metrics  *metrics.Metrics
	logger   *zap.Logger
	srv      *http.Server
}

func NewServer(addr string, searcher Searcher, m *metrics.Metrics, logger *zap.Logger) *Server {
	s := &Server{
		searcher: searcher,
		metrics:  m,
		logger:   logger,
	}
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
	}
	return s
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(requestLogger(s.logger))
	r.Use(metricsMiddleware(s.metrics))

	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	r.Get("/search", s.handleSearchQuery)
	r.Post("/search", s.handleSearch)
	r.Get("/discover", s.handleDiscoverQuery)
	r.Post("/discover", s.handleDiscover)
	return r
}

// Start blocks serving HTTP until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("Starting HTTP server", zap.String("addr", s.srv.Addr))
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
