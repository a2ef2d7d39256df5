// Package postgres provides a PostgreSQL database adapter for QueryDesk,
// built on the pgx stdlib driver.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/querydesk/querydesk/internal/adapter"
	"github.com/querydesk/querydesk/internal/results"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx database/sql driver
)

// Adapter implements the adapter.Adapter interface for PostgreSQL.
type Adapter struct {
	adapter.BaseSQLAdapter
}

// New creates a new PostgreSQL adapter instance.
func New(logger *slog.Logger) *Adapter {
	a := &Adapter{}
	a.Logger = logger
	return a
}

func init() {
	adapter.Register("postgres", func(logger *slog.Logger) adapter.Adapter {
		return New(logger)
	})
}

// Connect establishes a connection to PostgreSQL.
func (a *Adapter) Connect(ctx context.Context, cfg adapter.Config) error {
	db, err := sql.Open("pgx", connString(cfg))
	if err != nil {
		return fmt.Errorf("failed to open postgres connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping postgres: %w", err)
	}

	a.DB = db
	a.Cfg = cfg
	return nil
}

// connString builds a postgres connection URL from the config.
func connString(cfg adapter.Config) string {
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}
	port := cfg.Port
	if port == 0 {
		port = 5432
	}

	u := &url.URL{
		Scheme: "postgres",
		Host:   fmt.Sprintf("%s:%d", host, port),
		Path:   "/" + cfg.Database,
	}
	if cfg.User != "" {
		if cfg.Password != "" {
			u.User = url.UserPassword(cfg.User, cfg.Password)
		} else {
			u.User = url.User(cfg.User)
		}
	}

	q := u.Query()
	for k, v := range cfg.Options {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()

	return u.String()
}

// Explain runs an EXPLAIN plan for the statement.
func (a *Adapter) Explain(ctx context.Context, sqlStr string) (*results.Table, error) {
	return a.Execute(ctx, "EXPLAIN "+sqlStr)
}

// ListTables returns tables and views in the configured schema.
func (a *Adapter) ListTables(ctx context.Context) ([]adapter.TableInfo, error) {
	if a.DB == nil {
		return nil, fmt.Errorf("database connection not established")
	}

	rows, err := a.DB.QueryContext(ctx, `
		SELECT table_name, table_type
		FROM information_schema.tables
		WHERE table_schema = $1
		ORDER BY table_name
	`, a.schema())
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var tables []adapter.TableInfo
	for rows.Next() {
		var name, tableType string
		if err := rows.Scan(&name, &tableType); err != nil {
			return nil, fmt.Errorf("failed to scan table info: %w", err)
		}
		info := adapter.TableInfo{Name: name, Type: "table"}
		if tableType == "VIEW" {
			info.Type = "view"
		}
		tables = append(tables, info)
	}

	return tables, rows.Err()
}

// TableDetails returns column, key, and index metadata for a table.
func (a *Adapter) TableDetails(ctx context.Context, table string) (*adapter.TableDetails, error) {
	if a.DB == nil {
		return nil, fmt.Errorf("database connection not established")
	}

	schema, name := adapter.ParseQualifiedName(table, a.schema())
	details := &adapter.TableDetails{Name: name}

	rows, err := a.DB.QueryContext(ctx, `
		SELECT column_name, data_type, is_nullable, ordinal_position
		FROM information_schema.columns
		WHERE table_schema = $1 AND table_name = $2
		ORDER BY ordinal_position
	`, schema, name)
	if err != nil {
		return nil, fmt.Errorf("failed to query column metadata: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var col adapter.ColumnMeta
		var nullable string
		if err := rows.Scan(&col.Name, &col.Type, &nullable, &col.Position); err != nil {
			return nil, fmt.Errorf("failed to scan column metadata: %w", err)
		}
		col.Nullable = nullable == "YES"
		details.Columns = append(details.Columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating column metadata: %w", err)
	}

	if len(details.Columns) == 0 {
		return nil, fmt.Errorf("table %s not found", table)
	}

	if err := a.loadKeys(ctx, schema, details); err != nil {
		return nil, err
	}
	if err := a.loadIndexes(ctx, schema, details); err != nil {
		return nil, err
	}

	return details, nil
}

func (a *Adapter) schema() string {
	if a.Cfg.Schema != "" {
		return a.Cfg.Schema
	}
	return "public"
}

// loadKeys reads primary and foreign keys from information_schema.
func (a *Adapter) loadKeys(ctx context.Context, schema string, details *adapter.TableDetails) error {
	rows, err := a.DB.QueryContext(ctx, `
		SELECT kcu.column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
		  ON kcu.constraint_name = tc.constraint_name AND kcu.table_schema = tc.table_schema
		WHERE tc.table_schema = $1 AND tc.table_name = $2 AND tc.constraint_type = 'PRIMARY KEY'
		ORDER BY kcu.ordinal_position
	`, schema, details.Name)
	if err != nil {
		return fmt.Errorf("failed to query primary keys: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var col string
		if err := rows.Scan(&col); err != nil {
			return fmt.Errorf("failed to scan primary key: %w", err)
		}
		details.PrimaryKeys = append(details.PrimaryKeys, col)
		for i := range details.Columns {
			if details.Columns[i].Name == col {
				details.Columns[i].PrimaryKey = true
			}
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	fkRows, err := a.DB.QueryContext(ctx, `
		SELECT kcu.column_name, ccu.table_name, ccu.column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
		  ON kcu.constraint_name = tc.constraint_name AND kcu.table_schema = tc.table_schema
		JOIN information_schema.constraint_column_usage ccu
		  ON ccu.constraint_name = tc.constraint_name AND ccu.table_schema = tc.table_schema
		WHERE tc.table_schema = $1 AND tc.table_name = $2 AND tc.constraint_type = 'FOREIGN KEY'
	`, schema, details.Name)
	if err != nil {
		return fmt.Errorf("failed to query foreign keys: %w", err)
	}
	defer func() { _ = fkRows.Close() }()

	for fkRows.Next() {
		var fk adapter.ForeignKey
		if err := fkRows.Scan(&fk.Column, &fk.RefTable, &fk.RefColumn); err != nil {
			return fmt.Errorf("failed to scan foreign key: %w", err)
		}
		details.ForeignKeys = append(details.ForeignKeys, fk)
	}
	return fkRows.Err()
}

func (a *Adapter) loadIndexes(ctx context.Context, schema string, details *adapter.TableDetails) error {
	rows, err := a.DB.QueryContext(ctx, `
		SELECT indexname, indexdef LIKE 'CREATE UNIQUE%'
		FROM pg_indexes
		WHERE schemaname = $1 AND tablename = $2
		ORDER BY indexname
	`, schema, details.Name)
	if err != nil {
		return fmt.Errorf("failed to query indexes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var idx adapter.Index
		if err := rows.Scan(&idx.Name, &idx.Unique); err != nil {
			return fmt.Errorf("failed to scan index: %w", err)
		}
		details.Indexes = append(details.Indexes, idx)
	}
	return rows.Err()
}

// Ensure Adapter implements the interface.
var _ adapter.Adapter = (*Adapter)(nil)
