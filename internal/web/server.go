// Package web provides the HTTP/JSON API server for domaindeck.
package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/evcraddock/domaindeck/internal/auth"
	"github.com/evcraddock/domaindeck/internal/clock"
	"github.com/evcraddock/domaindeck/internal/comment"
	"github.com/evcraddock/domaindeck/internal/config"
	"github.com/evcraddock/domaindeck/internal/logging"
	"github.com/evcraddock/domaindeck/internal/message"
	"github.com/evcraddock/domaindeck/internal/metrics"
	"github.com/evcraddock/domaindeck/internal/project"
	"github.com/evcraddock/domaindeck/internal/store"
	"github.com/evcraddock/domaindeck/internal/user"
)

// Server is the API HTTP server.
type Server struct {
	cfg      config.Config
	logger   *slog.Logger
	users    *user.Repository
	projects *project.Repository
	comments *comment.Service
	messages *message.Service
	auth     *auth.Authenticator
	metrics  *metrics.Metrics
	mux      *http.ServeMux
	handler  http.Handler
}

type options struct {
	clock    clock.Clock
	hashCost int
}

// Option configures a Server.
type Option func(*options)

// WithClock overrides the clock used for timestamps.
func WithClock(c clock.Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithHashCost sets the bcrypt cost for new passwords.
func WithHashCost(cost int) Option {
	return func(o *options) { o.hashCost = cost }
}

// NewServer creates a server whose records live in backend.
func NewServer(backend store.Backend, cfg config.Config, logger *slog.Logger, opts ...Option) *Server {
	o := options{clock: clock.NewMonotonic(), hashCost: bcrypt.DefaultCost}
	for _, opt := range opts {
		opt(&o)
	}
	if logger == nil {
		logger = slog.Default()
	}

	users := user.NewRepository(backend, user.WithHashCost(o.hashCost))
	s := &Server{
		cfg:      cfg,
		logger:   logger,
		users:    users,
		projects: project.NewRepository(backend, o.clock),
		comments: comment.NewService(backend, o.clock),
		messages: message.NewService(backend, users, o.clock),
		auth:     auth.New(users, o.clock, cfg.HeartbeatInterval, logger),
		metrics:  metrics.New(),
		mux:      http.NewServeMux(),
	}
	s.routes()
	s.handler = logging.RequestLogger(logger, s.mux)
	return s
}

// EnsureAdmin seeds the configured admin when no users exist yet.
func (s *Server) EnsureAdmin(ctx context.Context) error {
	if s.cfg.AdminEmail == "" {
		return nil
	}
	created, err := s.users.EnsureAdmin(ctx, s.cfg.AdminName, s.cfg.AdminEmail, s.cfg.AdminPassword)
	if err != nil {
		return err
	}
	if created {
		s.logger.Info("seeded admin user", "email", s.cfg.AdminEmail)
	}
	return nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting API server", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.logger.Info("API server stopped")
	return nil
}
