// Package schemabrowser exposes the cached target-database metadata over
// the workspace API.
package schemabrowser

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/querydesk/querydesk/internal/adapter"
	"github.com/querydesk/querydesk/internal/schema"
	"github.com/querydesk/querydesk/internal/ui/features/common"
)

// Handlers provides HTTP handlers for browsing the target schema.
type Handlers struct {
	cache  *schema.Cache
	logger *slog.Logger
}

// SetupRoutes mounts the schema routes.
func SetupRoutes(r chi.Router, cache *schema.Cache, logger *slog.Logger) {
	h := &Handlers{cache: cache, logger: logger}

	r.Route("/api/schema", func(r chi.Router) {
		r.Get("/tables", h.ListTables)
		r.Get("/tables/{name}", h.TableDetails)
		r.Get("/suggestions", h.Suggestions)
		r.Post("/refresh", h.Refresh)
	})
}

// ListTables returns the tables visible in the target database.
func (h *Handlers) ListTables(w http.ResponseWriter, r *http.Request) {
	tables, err := h.cache.ListTables(r.Context())
	if err != nil {
		common.WriteError(w, http.StatusBadGateway, err)
		return
	}
	if tables == nil {
		tables = []adapter.TableInfo{}
	}
	common.WriteJSON(w, http.StatusOK, tables)
}

// TableDetails returns columns, keys, and indexes for one table.
func (h *Handlers) TableDetails(w http.ResponseWriter, r *http.Request) {
	details, err := h.cache.TableDetails(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		common.WriteError(w, http.StatusNotFound, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, details)
}

// Suggestions returns completion candidates: table names, qualified
// columns, and SQL keywords. Metadata failures degrade to keywords only.
func (h *Handlers) Suggestions(w http.ResponseWriter, r *http.Request) {
	common.WriteJSON(w, http.StatusOK, h.cache.Suggestions(r.Context()))
}

// Refresh drops all memoized metadata so the next lookup hits the target.
func (h *Handlers) Refresh(w http.ResponseWriter, _ *http.Request) {
	h.cache.Refresh()
	w.WriteHeader(http.StatusNoContent)
}
