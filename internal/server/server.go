// Package server exposes column classification, chart suggestions and chart
// shaping over HTTP.
//
// # Usage
//
//	srv, err := server.New(server.Config{Address: ":8080", EnableCORS: true})
//	if err != nil {
//		return err
//	}
//	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
//		return err
//	}
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/felixgeelhaar/bolt/v3"
	"go.opentelemetry.io/otel/metric"

	"github.com/KaramelBytes/chartly-cli/internal/logging"
)

// Config configures the HTTP server.
type Config struct {
	// Address is the HTTP listen address (default ":8080").
	Address string

	// EnableCORS enables Cross-Origin Resource Sharing.
	EnableCORS bool

	// ReadTimeout is the HTTP read timeout.
	ReadTimeout time.Duration

	// WriteTimeout is the HTTP write timeout.
	WriteTimeout time.Duration

	// MaxBodyBytes caps request bodies (default 32 MiB).
	MaxBodyBytes int64

	// Logger receives access logs. Defaults to the package logger.
	Logger *bolt.Logger

	// MeterProvider records request metrics. Defaults to the global provider.
	MeterProvider metric.MeterProvider
}

// Server is the chart suggestion HTTP server.
type Server struct {
	config     Config
	httpServer *http.Server
	mux        *http.ServeMux
	log        *bolt.Logger
	metrics    *metrics
}

// New creates a server with routes registered.
func New(cfg Config) (*Server, error) {
	if cfg.Address == "" {
		cfg.Address = ":8080"
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 30 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 30 * time.Second
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 32 << 20
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Get()
	}

	m, err := newMetrics(cfg.MeterProvider)
	if err != nil {
		return nil, err
	}

	s := &Server{
		config:  cfg,
		mux:     http.NewServeMux(),
		log:     cfg.Logger,
		metrics: m,
	}
	s.setupRoutes()
	return s, nil
}

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("GET /{$}", s.handleHealth)
	s.mux.HandleFunc("POST /api/charts/suggestions", s.handleSuggestions)
	s.mux.HandleFunc("POST /api/charts/bindings", s.handleBindings)
	s.mux.HandleFunc("POST /api/charts/shape", s.handleShape)
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return s.withMiddleware(s.mux)
}

// Addr returns the configured listen address.
func (s *Server) Addr() string { return s.config.Address }

// Start listens and serves until Shutdown is called.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         s.config.Address,
		Handler:      s.Handler(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	logging.NewEvent(s.log.Info()).
		Add(logging.Component("server")).
		Add(logging.Str("addr", s.config.Address)).
		Msg("listening")
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
