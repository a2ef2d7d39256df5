package state

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore creates a new SQLite store instance.
func NewSQLiteStore() *SQLiteStore {
	return &SQLiteStore{}
}

// Open opens a connection to the SQLite database.
// Use ":memory:" for an in-memory database.
func (s *SQLiteStore) Open(path string) error {
	dsn := path
	if path != ":memory:" {
		dsn = fmt.Sprintf("%s?_foreign_keys=on&_journal_mode=WAL", path)
	} else {
		dsn = ":memory:?_foreign_keys=on"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	s.db = db
	s.path = path
	return nil
}

// Close closes the SQLite database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// generateID creates a new UUID.
func generateID() string {
	return uuid.New().String()
}

// --- History operations ---

// AppendHistory records an execution attempt and prunes the history to
// HistoryCap, evicting the oldest entries first.
func (s *SQLiteStore) AppendHistory(item *HistoryItem) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	if item.ID == "" {
		item.ID = generateID()
	}
	if item.ExecutedAt.IsZero() {
		item.ExecutedAt = time.Now().UTC()
	}

	var errPtr *string
	if item.Error != "" {
		errPtr = &item.Error
	}

	_, err := s.db.Exec(
		`INSERT INTO history (id, query, executed_at, execution_ms, success, error) VALUES (?, ?, ?, ?, ?, ?)`,
		item.ID, item.Query, item.ExecutedAt, item.ExecutionMS, item.Success, errPtr,
	)
	if err != nil {
		return fmt.Errorf("failed to append history: %w", err)
	}

	_, err = s.db.Exec(
		`DELETE FROM history WHERE id NOT IN (
			SELECT id FROM history ORDER BY executed_at DESC, rowid DESC LIMIT ?
		)`,
		HistoryCap,
	)
	if err != nil {
		return fmt.Errorf("failed to prune history: %w", err)
	}

	return nil
}

// ListHistory returns all history items, newest first.
func (s *SQLiteStore) ListHistory() ([]*HistoryItem, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.Query(
		`SELECT id, query, executed_at, execution_ms, success, error
		 FROM history ORDER BY executed_at DESC, rowid DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	defer rows.Close()

	var items []*HistoryItem
	for rows.Next() {
		item := &HistoryItem{}
		var errMsg sql.NullString

		if err := rows.Scan(&item.ID, &item.Query, &item.ExecutedAt, &item.ExecutionMS, &item.Success, &errMsg); err != nil {
			return nil, fmt.Errorf("failed to scan history item: %w", err)
		}
		if errMsg.Valid {
			item.Error = errMsg.String
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

// DeleteHistory removes a single history item by ID.
func (s *SQLiteStore) DeleteHistory(id string) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	result, err := s.db.Exec(`DELETE FROM history WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete history item: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("history item not found: %s", id)
	}

	return nil
}

// ClearHistory removes all history items.
func (s *SQLiteStore) ClearHistory() error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	if _, err := s.db.Exec(`DELETE FROM history`); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

// --- Saved query operations ---

// SaveQuery inserts a saved query, or updates it when the ID exists.
func (s *SQLiteStore) SaveQuery(q *SavedQuery) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	if q.ID == "" {
		q.ID = generateID()
	}

	var descPtr *string
	if q.Description != "" {
		descPtr = &q.Description
	}

	_, err := s.db.Exec(
		`INSERT INTO saved_queries (id, name, query, description, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET name = excluded.name, query = excluded.query,
		   description = excluded.description, updated_at = excluded.updated_at`,
		q.ID, q.Name, q.Query, descPtr, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save query: %w", err)
	}

	return nil
}

// GetSavedQuery retrieves a saved query by ID.
func (s *SQLiteStore) GetSavedQuery(id string) (*SavedQuery, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	q := &SavedQuery{}
	var desc sql.NullString

	err := s.db.QueryRow(
		`SELECT id, name, query, description FROM saved_queries WHERE id = ?`,
		id,
	).Scan(&q.ID, &q.Name, &q.Query, &desc)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("saved query not found: %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get saved query: %w", err)
	}

	if desc.Valid {
		q.Description = desc.String
	}
	return q, nil
}

// ListSavedQueries returns all saved queries ordered by name.
func (s *SQLiteStore) ListSavedQueries() ([]*SavedQuery, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.Query(`SELECT id, name, query, description FROM saved_queries ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list saved queries: %w", err)
	}
	defer rows.Close()

	var queries []*SavedQuery
	for rows.Next() {
		q := &SavedQuery{}
		var desc sql.NullString

		if err := rows.Scan(&q.ID, &q.Name, &q.Query, &desc); err != nil {
			return nil, fmt.Errorf("failed to scan saved query: %w", err)
		}
		if desc.Valid {
			q.Description = desc.String
		}
		queries = append(queries, q)
	}

	return queries, rows.Err()
}

// DeleteSavedQuery removes a saved query by ID.
func (s *SQLiteStore) DeleteSavedQuery(id string) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	result, err := s.db.Exec(`DELETE FROM saved_queries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete saved query: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("saved query not found: %s: %w", id, ErrNotFound)
	}

	return nil
}

// --- Tab snapshot operations ---

// SaveTabs replaces the persisted tab snapshot.
func (s *SQLiteStore) SaveTabs(tabs []*TabRecord) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM tabs`); err != nil {
		return fmt.Errorf("failed to clear tabs: %w", err)
	}

	for _, tab := range tabs {
		if tab.ID == "" {
			tab.ID = generateID()
		}
		_, err := tx.Exec(
			`INSERT INTO tabs (id, name, query_text, position, active) VALUES (?, ?, ?, ?, ?)`,
			tab.ID, tab.Name, tab.QueryText, tab.Position, tab.Active,
		)
		if err != nil {
			return fmt.Errorf("failed to insert tab: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// LoadTabs returns the persisted tab snapshot in position order.
func (s *SQLiteStore) LoadTabs() ([]*TabRecord, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.Query(`SELECT id, name, query_text, position, active FROM tabs ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to load tabs: %w", err)
	}
	defer rows.Close()

	var tabs []*TabRecord
	for rows.Next() {
		tab := &TabRecord{}
		if err := rows.Scan(&tab.ID, &tab.Name, &tab.QueryText, &tab.Position, &tab.Active); err != nil {
			return nil, fmt.Errorf("failed to scan tab: %w", err)
		}
		tabs = append(tabs, tab)
	}

	return tabs, rows.Err()
}

// Ensure SQLiteStore implements the Store interface.
var _ Store = (*SQLiteStore)(nil)
