// Package ui provides the HTTP API server for the QueryDesk workspace.
package ui

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"
	"golang.org/x/sync/errgroup"

	"github.com/querydesk/querydesk/internal/schema"
	"github.com/querydesk/querydesk/internal/session"
	"github.com/querydesk/querydesk/internal/state"
	"github.com/querydesk/querydesk/internal/ui/notifier"
	"github.com/querydesk/querydesk/internal/ui/router"
)

// Server is the workspace API server.
type Server struct {
	workspace    *session.Session
	schemaCache  *schema.Cache
	catalog      *session.Catalog
	store        state.Store
	sessionStore *sessions.CookieStore
	notifier     *notifier.Notifier
	port         int
	watch        bool
	logger       *slog.Logger
}

// Config holds configuration for the API server.
type Config struct {
	Workspace     *session.Session
	SchemaCache   *schema.Cache
	Catalog       *session.Catalog
	Store         state.Store
	Port          int
	Watch         bool
	SessionSecret string
	Logger        *slog.Logger
}

// NewServer creates a new API server instance.
func NewServer(cfg Config) *Server {
	sessionStore := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	sessionStore.MaxAge(86400 * 30) // 30 days
	sessionStore.Options.Path = "/"
	sessionStore.Options.HttpOnly = true
	sessionStore.Options.SameSite = http.SameSiteLaxMode

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	n := notifier.New()
	if cfg.Catalog != nil {
		// Nudge connected SSE clients whenever the catalog reloads
		cfg.Catalog.OnReload(n.Broadcast)
	}

	return &Server{
		workspace:    cfg.Workspace,
		schemaCache:  cfg.SchemaCache,
		catalog:      cfg.Catalog,
		store:        cfg.Store,
		sessionStore: sessionStore,
		notifier:     n,
		port:         cfg.Port,
		watch:        cfg.Watch,
		logger:       logger,
	}
}

// Serve starts the API server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("starting API server", "addr", fmt.Sprintf("http://localhost:%d", s.port))

	eg, egctx := errgroup.WithContext(ctx)

	r := chi.NewMux()
	r.Use(
		middleware.Logger,
		middleware.Recoverer,
		middleware.Compress(5),
	)

	router.SetupRoutes(r, router.Deps{
		Workspace:    s.workspace,
		SchemaCache:  s.schemaCache,
		Catalog:      s.catalog,
		Store:        s.store,
		SessionStore: s.sessionStore,
		Notifier:     s.notifier,
		Logger:       s.logger,
	})

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Hot-reload the template catalog while the server runs
	if s.watch && s.catalog != nil {
		eg.Go(func() error {
			return s.catalog.Watch(egctx)
		})
	}

	// Start HTTP server
	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down API server...")

		// Persist the open tabs so the next session restores them
		if err := s.workspace.Snapshot(); err != nil {
			s.logger.Warn("failed to snapshot tabs", "error", err)
		}
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}
