// Package server exposes the rendering pipeline over HTTP.
//
// Routes:
//
//	POST /v1/render?format=svg|png|pdf|json|dot   render the table in the body
//	POST /v1/inspect                              aggregate the table, return JSON
//	GET  /healthz                                 liveness and build info
//	GET  /metrics                                 Prometheus metrics
//
// The request body is a CSV, JSON, YAML or TOML table. Its format comes from
// the "input" query parameter or, failing that, the Content-Type header.
// Every other query parameter is a pipeline option named like its config
// file key (width, order, colormap, flow_alpha, viz_type, ...).
package server

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/sankey/pkg/pipeline"
)

// DefaultMaxBodyBytes limits the size of uploaded tables.
const DefaultMaxBodyBytes = 8 << 20

const shutdownTimeout = 10 * time.Second

// Server serves the HTTP API.
type Server struct {
	runner   *pipeline.Runner
	logger   *log.Logger
	gatherer prometheus.Gatherer
	maxBody  int64
	defaults pipeline.Options
}

// Option configures a [Server].
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l *log.Logger) Option { return func(s *Server) { s.logger = l } }

// WithGatherer sets the registry served on /metrics. The default is the
// global Prometheus registry.
func WithGatherer(g prometheus.Gatherer) Option { return func(s *Server) { s.gatherer = g } }

// WithMaxBodyBytes limits request bodies to n bytes.
func WithMaxBodyBytes(n int64) Option { return func(s *Server) { s.maxBody = n } }

// WithDefaults sets the options that query parameters are overlaid on.
func WithDefaults(opts pipeline.Options) Option { return func(s *Server) { s.defaults = opts } }

// New creates a server around runner.
func New(runner *pipeline.Runner, opts ...Option) *Server {
	s := &Server{
		runner:   runner,
		logger:   runner.Logger,
		gatherer: prometheus.DefaultGatherer,
		maxBody:  DefaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.Recoverer)
	r.Use(s.instrument)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	r.Route("/v1", func(r chi.Router) {
		r.Post("/render", s.handleRender)
		r.Post("/inspect", s.handleInspect)
	})
	return r
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("listening", "addr", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
