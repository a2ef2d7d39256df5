// Package sqlite provides a SQLite database adapter for QueryDesk, using
// the pure-Go modernc driver.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/querydesk/querydesk/internal/adapter"
	"github.com/querydesk/querydesk/internal/results"

	_ "modernc.org/sqlite" // sqlite driver
)

// Adapter implements the adapter.Adapter interface for SQLite.
type Adapter struct {
	adapter.BaseSQLAdapter
}

// New creates a new SQLite adapter instance.
func New(logger *slog.Logger) *Adapter {
	a := &Adapter{}
	a.Logger = logger
	return a
}

func init() {
	adapter.Register("sqlite", func(logger *slog.Logger) adapter.Adapter {
		return New(logger)
	})
}

// Connect opens the SQLite database file. Use ":memory:" for an in-memory
// database.
func (a *Adapter) Connect(ctx context.Context, cfg adapter.Config) error {
	path := cfg.Database
	if path == "" {
		path = ":memory:"
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to open sqlite connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping sqlite: %w", err)
	}

	a.DB = db
	a.Cfg = cfg
	return nil
}

// Explain runs EXPLAIN QUERY PLAN for the statement.
func (a *Adapter) Explain(ctx context.Context, sqlStr string) (*results.Table, error) {
	return a.Execute(ctx, "EXPLAIN QUERY PLAN "+sqlStr)
}

// ListTables returns tables and views from sqlite_master.
func (a *Adapter) ListTables(ctx context.Context) ([]adapter.TableInfo, error) {
	if a.DB == nil {
		return nil, fmt.Errorf("database connection not established")
	}

	rows, err := a.DB.QueryContext(ctx, `
		SELECT name, type
		FROM sqlite_master
		WHERE type IN ('table', 'view') AND name NOT LIKE 'sqlite_%'
		ORDER BY type, name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var tables []adapter.TableInfo
	for rows.Next() {
		var info adapter.TableInfo
		if err := rows.Scan(&info.Name, &info.Type); err != nil {
			return nil, fmt.Errorf("failed to scan table info: %w", err)
		}
		tables = append(tables, info)
	}

	return tables, rows.Err()
}

// TableDetails reads column, key, and index metadata via SQLite pragmas.
func (a *Adapter) TableDetails(ctx context.Context, table string) (*adapter.TableDetails, error) {
	if a.DB == nil {
		return nil, fmt.Errorf("database connection not established")
	}

	details := &adapter.TableDetails{Name: table}

	rows, err := a.DB.QueryContext(ctx, `SELECT cid, name, type, "notnull", pk FROM pragma_table_info(?)`, table)
	if err != nil {
		return nil, fmt.Errorf("failed to query table info: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			cid     int
			col     adapter.ColumnMeta
			notNull int
			pk      int
		)
		if err := rows.Scan(&cid, &col.Name, &col.Type, &notNull, &pk); err != nil {
			return nil, fmt.Errorf("failed to scan column: %w", err)
		}
		col.Position = cid + 1
		col.Nullable = notNull == 0
		col.PrimaryKey = pk > 0
		if col.PrimaryKey {
			details.PrimaryKeys = append(details.PrimaryKeys, col.Name)
		}
		details.Columns = append(details.Columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating columns: %w", err)
	}

	if len(details.Columns) == 0 {
		return nil, fmt.Errorf("table %s not found", table)
	}

	if err := a.loadForeignKeys(ctx, details); err != nil {
		return nil, err
	}
	if err := a.loadIndexes(ctx, details); err != nil {
		return nil, err
	}

	return details, nil
}

func (a *Adapter) loadForeignKeys(ctx context.Context, details *adapter.TableDetails) error {
	rows, err := a.DB.QueryContext(ctx, `SELECT "from", "table", "to" FROM pragma_foreign_key_list(?)`, details.Name)
	if err != nil {
		return fmt.Errorf("failed to query foreign keys: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var fk adapter.ForeignKey
		var refColumn sql.NullString
		if err := rows.Scan(&fk.Column, &fk.RefTable, &refColumn); err != nil {
			return fmt.Errorf("failed to scan foreign key: %w", err)
		}
		if refColumn.Valid {
			fk.RefColumn = refColumn.String
		}
		details.ForeignKeys = append(details.ForeignKeys, fk)
	}
	return rows.Err()
}

func (a *Adapter) loadIndexes(ctx context.Context, details *adapter.TableDetails) error {
	rows, err := a.DB.QueryContext(ctx, `SELECT name, "unique" FROM pragma_index_list(?)`, details.Name)
	if err != nil {
		return fmt.Errorf("failed to query indexes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var idx adapter.Index
		var unique int
		if err := rows.Scan(&idx.Name, &unique); err != nil {
			return fmt.Errorf("failed to scan index: %w", err)
		}
		idx.Unique = unique == 1
		details.Indexes = append(details.Indexes, idx)
	}
	return rows.Err()
}

// Ensure Adapter implements the interface.
var _ adapter.Adapter = (*Adapter)(nil)
