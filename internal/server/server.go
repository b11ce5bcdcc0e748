// Package server exposes the download engine over HTTP to the frontend layer.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vidgrab/vidgrab/internal/model"
	"github.com/vidgrab/vidgrab/internal/store"
)

// Engine is the download orchestration surface the server fronts.
// Satisfied by *download.Service.
type Engine interface {
	GetInfo(ctx context.Context, userID int64, url string) (model.VideoSummary, error)
	DownloadResolution(ctx context.Context, userID int64, targetHeight int) (model.DownloadResult, error)
	CleanupFile(path string)
	ClearSession(userID int64)
}

// Stats supplies the counters shown on the stats endpoint.
// Satisfied by *store.Store.
type Stats interface {
	UserCount() (int, error)
	DownloadCount() (int, error)
}

// UserTracker upserts users as they make requests. Satisfied by *store.Store.
type UserTracker interface {
	UpsertUser(user store.User) error
}

// Broadcaster fans a message out to every known user.
// Satisfied by *broadcast.Service.
type Broadcaster interface {
	SendToAll(ctx context.Context, text string) (sent, failed int, err error)
}

// Config holds server configuration.
type Config struct {
	// Address to listen on (e.g., ":8080")
	Address string

	// Registry for the /metrics endpoint; nil disables it.
	Registry *prometheus.Registry

	// Logger for request logging.
	Logger *slog.Logger
}

// Server is the HTTP front of the service.
type Server struct {
	cfg         Config
	engine      Engine
	stats       Stats
	tracker     UserTracker
	broadcaster Broadcaster
	logger      *slog.Logger
	httpServer  *http.Server
}

// Option configures optional server features.
type Option func(*Server)

// WithBroadcaster enables the broadcast endpoint.
func WithBroadcaster(b Broadcaster) Option {
	return func(s *Server) {
		s.broadcaster = b
	}
}

// New creates a server. stats and tracker may be nil, which disables the
// stats endpoint counters and user tracking respectively.
func New(cfg Config, engine Engine, stats Stats, tracker UserTracker, opts ...Option) *Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Address == "" {
		cfg.Address = ":8080"
	}

	s := &Server{
		cfg:     cfg,
		engine:  engine,
		stats:   stats,
		tracker: tracker,
		logger:  cfg.Logger,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.httpServer = &http.Server{
		Addr:              cfg.Address,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(s.requestLogger)

	r.Get("/healthz", s.handleHealthz)
	if s.cfg.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.cfg.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.With(s.trackUser).Post("/info", s.handleInfo)
		r.With(s.trackUser).Post("/download", s.handleDownload)
		r.Delete("/file", s.handleCleanupFile)
		r.Delete("/session/{userID}", s.handleClearSession)
		r.Get("/stats", s.handleStats)
		r.Post("/broadcast", s.handleBroadcast)
	})

	return r
}

// Handler returns the HTTP handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start begins serving and blocks until the listener closes.
func (s *Server) Start() error {
	s.logger.Info("server listening", "address", s.cfg.Address)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
