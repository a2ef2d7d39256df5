// Package workspace provides the tab, execution, history, saved-query, and
// template handlers for the workspace API.
package workspace

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"

	"github.com/querydesk/querydesk/internal/gate"
	"github.com/querydesk/querydesk/internal/querybuilder"
	"github.com/querydesk/querydesk/internal/session"
	"github.com/querydesk/querydesk/internal/state"
	"github.com/querydesk/querydesk/internal/ui/features/common"
	"github.com/querydesk/querydesk/internal/ui/notifier"
)

const sessionCookieName = "querydesk_session"

// Deps carries the collaborators the workspace handlers operate on.
type Deps struct {
	Workspace    *session.Session
	Catalog      *session.Catalog
	Store        state.Store
	SessionStore *sessions.CookieStore
	Notifier     *notifier.Notifier
	Logger       *slog.Logger
}

// Handlers provides HTTP handlers for the workspace feature.
type Handlers struct {
	workspace    *session.Session
	catalog      *session.Catalog
	store        state.Store
	sessionStore *sessions.CookieStore
	notifier     *notifier.Notifier
	logger       *slog.Logger
}

// SetupRoutes mounts the workspace routes.
func SetupRoutes(r chi.Router, deps Deps) {
	h := &Handlers{
		workspace:    deps.Workspace,
		catalog:      deps.Catalog,
		store:        deps.Store,
		sessionStore: deps.SessionStore,
		notifier:     deps.Notifier,
		logger:       deps.Logger,
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(h.ensureSession)

		r.Get("/tabs", h.ListTabs)
		r.Post("/tabs", h.CreateTab)
		r.Put("/tabs/{id}", h.UpdateTab)
		r.Delete("/tabs/{id}", h.CloseTab)
		r.Post("/tabs/{id}/activate", h.ActivateTab)

		r.Post("/compile", h.Compile)
		r.Post("/execute", h.Execute)
		r.Post("/cancel", h.CancelConfirmation)

		r.Get("/history", h.ListHistory)
		r.Delete("/history", h.ClearHistory)
		r.Delete("/history/{id}", h.DeleteHistory)

		r.Get("/saved", h.ListSaved)
		r.Post("/saved", h.SaveQuery)
		r.Delete("/saved/{id}", h.DeleteSaved)
		r.Post("/saved/{id}/open", h.OpenSaved)

		r.Get("/templates", h.ListTemplates)
		r.Get("/events", h.Events)
	})
}

// ensureSession guarantees the client carries a workspace session cookie.
func (h *Handlers) ensureSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, _ := h.sessionStore.Get(r, sessionCookieName)
		if sess.IsNew {
			sess.Values["workspace_id"] = uuid.New().String()
			if err := sess.Save(r, w); err != nil {
				h.logger.Warn("failed to save session cookie", "error", err)
			}
		}
		next.ServeHTTP(w, r)
	})
}

// tabView is the JSON projection of one tab.
type tabView struct {
	ID     string             `json:"id"`
	Name   string             `json:"name"`
	Text   string             `json:"text"`
	Model  querybuilder.Query `json:"model"`
	Active bool               `json:"active"`
}

func (h *Handlers) tabViews() []tabView {
	active := h.workspace.ActiveTab()
	tabs := h.workspace.Tabs()
	out := make([]tabView, len(tabs))
	for i, t := range tabs {
		out[i] = tabView{
			ID:     t.ID,
			Name:   t.Name,
			Text:   t.Text,
			Model:  t.Model,
			Active: t.ID == active.ID,
		}
	}
	return out
}

// ListTabs returns the open tabs in order.
func (h *Handlers) ListTabs(w http.ResponseWriter, _ *http.Request) {
	common.WriteJSON(w, http.StatusOK, h.tabViews())
}

// CreateTab opens a new empty tab and makes it active.
func (h *Handlers) CreateTab(w http.ResponseWriter, _ *http.Request) {
	t := h.workspace.NewTab()
	common.WriteJSON(w, http.StatusCreated, tabView{
		ID: t.ID, Name: t.Name, Text: t.Text, Model: t.Model, Active: true,
	})
}

// updateTabRequest carries a tab edit: a rename, a hand-written SQL text, or
// a structured model replacement.
type updateTabRequest struct {
	Name  *string             `json:"name,omitempty"`
	Text  *string             `json:"text,omitempty"`
	Model *querybuilder.Query `json:"model,omitempty"`
}

// UpdateTab applies a tab edit.
func (h *Handlers) UpdateTab(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req updateTabRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, http.StatusBadRequest, err)
		return
	}

	if req.Name != nil {
		if err := h.workspace.Rename(id, *req.Name); err != nil {
			h.writeTabError(w, err)
			return
		}
	}
	if req.Model != nil {
		if err := h.workspace.SetModel(id, *req.Model); err != nil {
			h.writeTabError(w, err)
			return
		}
	}
	if req.Text != nil {
		if err := h.workspace.SetText(id, *req.Text); err != nil {
			h.writeTabError(w, err)
			return
		}
	}

	common.WriteJSON(w, http.StatusOK, h.tabViews())
}

// CloseTab closes a tab. Closing the last tab is rejected.
func (h *Handlers) CloseTab(w http.ResponseWriter, r *http.Request) {
	if err := h.workspace.CloseTab(chi.URLParam(r, "id")); err != nil {
		h.writeTabError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, h.tabViews())
}

// ActivateTab switches the active tab.
func (h *Handlers) ActivateTab(w http.ResponseWriter, r *http.Request) {
	if err := h.workspace.Activate(chi.URLParam(r, "id")); err != nil {
		h.writeTabError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, h.tabViews())
}

func (h *Handlers) writeTabError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrTabNotFound):
		common.WriteError(w, http.StatusNotFound, err)
	case errors.Is(err, session.ErrLastTab):
		common.WriteError(w, http.StatusConflict, err)
	default:
		common.WriteError(w, http.StatusInternalServerError, err)
	}
}

// Compile turns a structured query model into SQL text without executing it.
func (h *Handlers) Compile(w http.ResponseWriter, r *http.Request) {
	var model querybuilder.Query
	if err := common.DecodeJSON(r, &model); err != nil {
		common.WriteError(w, http.StatusBadRequest, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, map[string]string{
		"sql": querybuilder.Compile(model),
	})
}

// executeRequest carries the per-attempt execution flags.
type executeRequest struct {
	ReadOnly  bool `json:"readOnly"`
	DryRun    bool `json:"dryRun"`
	Confirmed bool `json:"confirmed"`
}

// executeResponse is the JSON form of a gate result.
type executeResponse struct {
	Columns              []string `json:"columns,omitempty"`
	Rows                 [][]any  `json:"rows,omitempty"`
	RowCount             int      `json:"rowCount"`
	DurationMS           int64    `json:"durationMs"`
	Error                string   `json:"error,omitempty"`
	RequiresConfirmation bool     `json:"requiresConfirmation,omitempty"`
	DangerousOperation   string   `json:"dangerousOperation,omitempty"`
}

// Execute runs the active tab's text through the gate. A dangerous statement
// without confirmation yields 409 with a requires-confirmation payload and
// never touches the target database.
func (h *Handlers) Execute(w http.ResponseWriter, r *http.Request) {
	var req executeRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, http.StatusBadRequest, err)
		return
	}

	res, err := h.workspace.Execute(r.Context(), session.ExecuteOptions{
		ReadOnly:  req.ReadOnly,
		DryRun:    req.DryRun,
		Confirmed: req.Confirmed,
	})
	if err != nil {
		common.WriteError(w, http.StatusInternalServerError, err)
		return
	}

	if res.RequiresConfirmation {
		common.WriteJSON(w, http.StatusConflict, executeResponse{
			RequiresConfirmation: true,
			DangerousOperation:   string(res.DangerousOperation),
		})
		return
	}

	resp := executeResponse{DurationMS: res.Duration.Milliseconds()}
	if res.Err != nil {
		resp.Error = res.Err.Error()
		var pv *gate.PolicyViolationError
		if errors.As(res.Err, &pv) {
			common.WriteJSON(w, http.StatusForbidden, resp)
			return
		}
		common.WriteJSON(w, http.StatusUnprocessableEntity, resp)
		return
	}

	if res.Table != nil {
		resp.Columns = res.Table.Columns
		resp.Rows = res.Table.Rows
		resp.RowCount = res.Table.RowCount()
	}
	common.WriteJSON(w, http.StatusOK, resp)
}

// CancelConfirmation resolves a pending confirmation prompt without
// executing.
func (h *Handlers) CancelConfirmation(w http.ResponseWriter, _ *http.Request) {
	h.workspace.Cancel()
	common.WriteJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

// ListHistory returns the persisted history, newest first.
func (h *Handlers) ListHistory(w http.ResponseWriter, _ *http.Request) {
	items, err := h.workspace.History()
	if err != nil {
		common.WriteError(w, http.StatusInternalServerError, err)
		return
	}
	if items == nil {
		items = []*state.HistoryItem{}
	}
	common.WriteJSON(w, http.StatusOK, items)
}

// DeleteHistory removes one history entry.
func (h *Handlers) DeleteHistory(w http.ResponseWriter, r *http.Request) {
	if err := h.workspace.DeleteHistory(chi.URLParam(r, "id")); err != nil {
		common.WriteError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ClearHistory removes all history entries.
func (h *Handlers) ClearHistory(w http.ResponseWriter, _ *http.Request) {
	if err := h.workspace.ClearHistory(); err != nil {
		common.WriteError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListSaved returns the saved queries.
func (h *Handlers) ListSaved(w http.ResponseWriter, _ *http.Request) {
	queries, err := h.workspace.SavedQueries()
	if err != nil {
		common.WriteError(w, http.StatusInternalServerError, err)
		return
	}
	if queries == nil {
		queries = []*state.SavedQuery{}
	}
	common.WriteJSON(w, http.StatusOK, queries)
}

// SaveQuery upserts a saved query.
func (h *Handlers) SaveQuery(w http.ResponseWriter, r *http.Request) {
	var q state.SavedQuery
	if err := common.DecodeJSON(r, &q); err != nil {
		common.WriteError(w, http.StatusBadRequest, err)
		return
	}
	if q.Name == "" || q.Query == "" {
		common.WriteError(w, http.StatusBadRequest, fmt.Errorf("name and query are required"))
		return
	}
	if q.ID == "" {
		q.ID = uuid.New().String()
	}
	if err := h.workspace.SaveQuery(&q); err != nil {
		common.WriteError(w, http.StatusInternalServerError, err)
		return
	}
	common.WriteJSON(w, http.StatusCreated, q)
}

// DeleteSaved removes a saved query.
func (h *Handlers) DeleteSaved(w http.ResponseWriter, r *http.Request) {
	if err := h.workspace.DeleteSavedQuery(chi.URLParam(r, "id")); err != nil {
		common.WriteError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// OpenSaved loads a saved query into a new active tab.
func (h *Handlers) OpenSaved(w http.ResponseWriter, r *http.Request) {
	t, err := h.workspace.OpenSaved(chi.URLParam(r, "id"))
	if err != nil {
		common.WriteError(w, http.StatusNotFound, err)
		return
	}
	common.WriteJSON(w, http.StatusCreated, tabView{
		ID: t.ID, Name: t.Name, Text: t.Text, Model: t.Model, Active: true,
	})
}

// ListTemplates returns the template catalog, sorted by name.
func (h *Handlers) ListTemplates(w http.ResponseWriter, _ *http.Request) {
	if h.catalog == nil {
		common.WriteJSON(w, http.StatusOK, []*session.Template{})
		return
	}
	common.WriteJSON(w, http.StatusOK, h.catalog.List())
}

// Events streams a ping over SSE whenever the template catalog reloads.
func (h *Handlers) Events(w http.ResponseWriter, r *http.Request) {
	if h.notifier == nil {
		http.Error(w, "events not available", http.StatusNotFound)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := h.notifier.Subscribe()
	defer cancel()

	_, _ = fmt.Fprint(w, "data: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ch:
			_, _ = fmt.Fprint(w, "data: templates\n\n")
			flusher.Flush()
		}
	}
}
