// Package duckdb provides a DuckDB database adapter for QueryDesk.
package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/querydesk/querydesk/internal/adapter"
	"github.com/querydesk/querydesk/internal/results"

	_ "github.com/marcboeker/go-duckdb" // duckdb driver
)

// Adapter implements the adapter.Adapter interface for DuckDB.
type Adapter struct {
	adapter.BaseSQLAdapter
}

// New creates a new DuckDB adapter instance.
func New(logger *slog.Logger) *Adapter {
	a := &Adapter{}
	a.Logger = logger
	return a
}

func init() {
	adapter.Register("duckdb", func(logger *slog.Logger) adapter.Adapter {
		return New(logger)
	})
}

// Connect establishes a connection to DuckDB.
// An empty database path opens an in-memory database.
func (a *Adapter) Connect(ctx context.Context, cfg adapter.Config) error {
	path := cfg.Database
	if path == ":memory:" {
		path = ""
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return fmt.Errorf("failed to open duckdb connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping duckdb: %w", err)
	}

	a.DB = db
	a.Cfg = cfg
	return nil
}

// Explain runs an EXPLAIN plan for the statement.
func (a *Adapter) Explain(ctx context.Context, sqlStr string) (*results.Table, error) {
	return a.Execute(ctx, "EXPLAIN "+sqlStr)
}

// ListTables returns the tables and views in the configured schema.
func (a *Adapter) ListTables(ctx context.Context) ([]adapter.TableInfo, error) {
	return a.ListTablesInformationSchema(ctx, a.schema())
}

// TableDetails returns column and key metadata for a table.
func (a *Adapter) TableDetails(ctx context.Context, table string) (*adapter.TableDetails, error) {
	schema, name := adapter.ParseQualifiedName(table, a.schema())

	columns, err := a.ColumnsInformationSchema(ctx, schema, name)
	if err != nil {
		return nil, err
	}

	details := &adapter.TableDetails{Name: name, Columns: columns}

	// DuckDB exposes constraints through its own catalog function.
	rows, err := a.DB.QueryContext(ctx, `
		SELECT constraint_column_names
		FROM duckdb_constraints()
		WHERE schema_name = ? AND table_name = ? AND constraint_type = 'PRIMARY KEY'
	`, schema, name)
	if err == nil {
		defer func() { _ = rows.Close() }()
		for rows.Next() {
			var cols []any
			if err := rows.Scan(&cols); err != nil {
				continue
			}
			for _, c := range cols {
				if s, ok := c.(string); ok {
					details.PrimaryKeys = append(details.PrimaryKeys, s)
				}
			}
		}
	}

	markPrimaryKeys(details)
	return details, nil
}

func (a *Adapter) schema() string {
	if a.Cfg.Schema != "" {
		return a.Cfg.Schema
	}
	return "main"
}

// markPrimaryKeys flags columns named in PrimaryKeys.
func markPrimaryKeys(d *adapter.TableDetails) {
	for _, pk := range d.PrimaryKeys {
		for i := range d.Columns {
			if d.Columns[i].Name == pk {
				d.Columns[i].PrimaryKey = true
			}
		}
	}
}

// Ensure Adapter implements the interface.
var _ adapter.Adapter = (*Adapter)(nil)
