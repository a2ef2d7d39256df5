// Package state persists the workspace's local records using SQLite:
// query history, saved queries, and open tab snapshots.
package state

import (
	"errors"
	"time"
)

// ErrNotFound marks lookups for records that do not exist, so callers can
// branch with errors.Is.
var ErrNotFound = errors.New("not found")

// HistoryCap is the maximum number of history items retained. Appending
// beyond the cap evicts the oldest entries by execution time.
const HistoryCap = 100

// HistoryItem is one execution attempt, successful or not. Items are
// append-only; they are never mutated, and removed only by explicit user
// delete or clear-all (or cap eviction).
type HistoryItem struct {
	ID          string    `json:"id"`
	Query       string    `json:"query"`
	ExecutedAt  time.Time `json:"executedAt"`
	ExecutionMS int64     `json:"executionTimeMs,omitempty"`
	Success     bool      `json:"success"`
	Error       string    `json:"error,omitempty"`
}

// SavedQuery is a user-curated query that persists until deleted.
type SavedQuery struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Query       string `json:"query"`
	Description string `json:"description,omitempty"`
}

// TabRecord is the persisted snapshot of one open query buffer.
type TabRecord struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	QueryText string `json:"queryText"`
	Position  int    `json:"position"`
	Active    bool   `json:"active"`
}

// Store is the persistence interface for workspace records. It is local and
// single-writer; implementations do not need cross-process locking.
type Store interface {
	Open(path string) error
	Close() error
	Migrate() error

	// History operations. AppendHistory prunes to HistoryCap, evicting the
	// oldest entries by ExecutedAt first.
	AppendHistory(item *HistoryItem) error
	ListHistory() ([]*HistoryItem, error)
	DeleteHistory(id string) error
	ClearHistory() error

	// Saved query operations. SaveQuery inserts or, when the ID already
	// exists, updates in place. GetSavedQuery wraps ErrNotFound for
	// unknown IDs.
	SaveQuery(q *SavedQuery) error
	GetSavedQuery(id string) (*SavedQuery, error)
	ListSavedQueries() ([]*SavedQuery, error)
	DeleteSavedQuery(id string) error

	// Tab snapshot operations. SaveTabs replaces the whole snapshot.
	SaveTabs(tabs []*TabRecord) error
	LoadTabs() ([]*TabRecord, error)
}
