// Package resultset applies client-side result transforms, filtering,
// sorting, pagination, chart projection, and export, to a posted row set.
package resultset

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/querydesk/querydesk/internal/results"
	"github.com/querydesk/querydesk/internal/ui/features/common"
)

// Handlers provides HTTP handlers for result-set processing.
type Handlers struct {
	logger *slog.Logger
}

// SetupRoutes mounts the result-set routes.
func SetupRoutes(r chi.Router, logger *slog.Logger) {
	h := &Handlers{logger: logger}

	r.Route("/api/results", func(r chi.Router) {
		r.Post("/process", h.Process)
		r.Post("/export", h.Export)
	})
}

// processRequest carries a raw result set plus the view transforms to
// apply to it, in filter, sort, paginate order.
type processRequest struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`

	Filter   string `json:"filter,omitempty"`
	SortBy   string `json:"sortBy,omitempty"`
	SortDesc bool   `json:"sortDesc,omitempty"`
	PageSize int    `json:"pageSize,omitempty"`
	Page     int    `json:"page,omitempty"`
	Chart    bool   `json:"chart,omitempty"`
}

// processResponse is the transformed view. TotalRows counts rows after
// filtering but before pagination so clients can size their pagers.
type processResponse struct {
	Columns   []string       `json:"columns"`
	Rows      [][]any        `json:"rows"`
	TotalRows int            `json:"totalRows"`
	Chart     *results.Chart `json:"chart,omitempty"`
}

// Process applies filter, sort, and pagination to the posted rows and
// optionally projects a chart from the paged view.
func (h *Handlers) Process(w http.ResponseWriter, r *http.Request) {
	var req processRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, http.StatusBadRequest, err)
		return
	}

	view := results.NewTable(req.Columns, req.Rows)
	if req.Filter != "" {
		view = view.Filter(req.Filter)
	}
	if req.SortBy != "" {
		view = view.Sort(req.SortBy, req.SortDesc)
	}
	total := view.RowCount()
	if req.PageSize > 0 {
		view = view.Paginate(req.PageSize, req.Page)
	}

	resp := processResponse{
		Columns:   view.Columns,
		Rows:      view.Rows,
		TotalRows: total,
	}
	if req.Chart {
		resp.Chart = view.Chart()
	}
	common.WriteJSON(w, http.StatusOK, resp)
}

// exportRequest carries the current view plus the serialization to write.
// The server exports exactly what it is given: clients post the filtered
// and sorted rows they are looking at.
type exportRequest struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`

	Format    string `json:"format"`
	TableName string `json:"tableName,omitempty"`
}

var exportContentTypes = map[results.Format]string{
	results.FormatCSV:       "text/csv",
	results.FormatJSON:      "application/json",
	results.FormatSQLInsert: "application/sql",
}

// Export streams the posted view in the requested format.
func (h *Handlers) Export(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, http.StatusBadRequest, err)
		return
	}

	format := results.Format(req.Format)
	contentType, ok := exportContentTypes[format]
	if !ok {
		common.WriteError(w, http.StatusBadRequest,
			&unsupportedFormatError{format: req.Format})
		return
	}

	table := results.NewTable(req.Columns, req.Rows)
	w.Header().Set("Content-Type", contentType)
	if err := table.Export(w, format, req.TableName); err != nil {
		h.logger.Warn("failed to export result set", "format", req.Format, "error", err)
	}
}

type unsupportedFormatError struct {
	format string
}

func (e *unsupportedFormatError) Error() string {
	return "unsupported export format: " + e.format
}
