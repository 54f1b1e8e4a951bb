// Package server exposes geocoding, NUTS lookup, routing and distance
// calculations over a small JSON HTTP API.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/gisco-cli/internal/feature"
	"github.com/sells-group/gisco-cli/internal/geo"
	"github.com/sells-group/gisco-cli/internal/nuts"
	"github.com/sells-group/gisco-cli/pkg/gisco"
)

// Router computes driving routes. *gisco.Client implements it.
type Router interface {
	Route(ctx context.Context, coords []geo.Coordinate, opts gisco.RouteOptions) (*gisco.Route, error)
}

// Deps are the services behind the API. Resolver and Router may be nil, in
// which case their endpoints answer 503.
type Deps struct {
	Geocoder feature.Geocoder
	Provider string
	Resolver nuts.Resolver
	Router   Router
	Levels   []int
}

// Options configure the HTTP layer.
type Options struct {
	AllowedOrigins  []string
	ShutdownTimeout time.Duration
}

// Server is the HTTP API.
type Server struct {
	deps     Deps
	opts     Options
	registry *prometheus.Registry
	metrics  *Metrics
}

// New creates a Server with its own metrics registry.
func New(deps Deps, opts Options) *Server {
	if len(deps.Levels) == 0 {
		deps.Levels = nuts.Levels
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return &Server{
		deps:     deps,
		opts:     opts,
		registry: reg,
		metrics:  NewMetrics(reg),
	}
}

// Metrics returns the collectors, for wiring geocode.WithObserver.
func (s *Server) Metrics() *Metrics { return s.metrics }

// Handler builds the routed handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	r.Use(s.metrics.middleware)

	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	r.Route("/v1", func(r chi.Router) {
		r.Get("/geocode", s.handleGeocode)
		r.Get("/reverse", s.handleReverse)
		r.Get("/nuts", s.handleNUTS)
		r.Get("/route", s.handleRoute)
		r.Get("/distance", s.handleDistance)
	})

	return r
}

// ListenAndServe serves on port until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zap.L().Info("starting server", zap.Int("port", port))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return eris.Wrap(err, "server: listen")
	case <-ctx.Done():
	}

	zap.L().Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return eris.Wrap(err, "server: shutdown")
	}
	return nil
}
