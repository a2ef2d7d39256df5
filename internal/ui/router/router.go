// Package router sets up HTTP routes for the API server.
package router

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	"github.com/querydesk/querydesk/internal/schema"
	"github.com/querydesk/querydesk/internal/session"
	"github.com/querydesk/querydesk/internal/state"
	resultsFeature "github.com/querydesk/querydesk/internal/ui/features/resultset"
	schemaFeature "github.com/querydesk/querydesk/internal/ui/features/schemabrowser"
	workspaceFeature "github.com/querydesk/querydesk/internal/ui/features/workspace"
	"github.com/querydesk/querydesk/internal/ui/notifier"
)

// Deps carries the workspace collaborators the features handle requests with.
type Deps struct {
	Workspace    *session.Session
	SchemaCache  *schema.Cache
	Catalog      *session.Catalog
	Store        state.Store
	SessionStore *sessions.CookieStore
	Notifier     *notifier.Notifier
	Logger       *slog.Logger
}

// SetupRoutes configures all routes for the API server.
func SetupRoutes(router chi.Router, deps Deps) {
	workspaceFeature.SetupRoutes(router, workspaceFeature.Deps{
		Workspace:    deps.Workspace,
		Catalog:      deps.Catalog,
		Store:        deps.Store,
		SessionStore: deps.SessionStore,
		Notifier:     deps.Notifier,
		Logger:       deps.Logger,
	})

	schemaFeature.SetupRoutes(router, deps.SchemaCache, deps.Logger)

	resultsFeature.SetupRoutes(router, deps.Logger)
}
