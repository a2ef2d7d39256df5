package adapter

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/querydesk/querydesk/internal/results"
)

// BaseSQLAdapter provides common database/sql functionality for adapters.
// Embed this struct in concrete implementations to get standard Close,
// Execute, and information_schema helpers.
type BaseSQLAdapter struct {
	DB     *sql.DB
	Cfg    Config
	Logger *slog.Logger
}

// Close closes the database connection.
func (b *BaseSQLAdapter) Close() error {
	if b.DB != nil {
		if b.Logger != nil {
			b.Logger.Debug("closing database connection")
		}
		return b.DB.Close()
	}
	return nil
}

// IsConnected returns true if the database connection is established.
func (b *BaseSQLAdapter) IsConnected() bool {
	return b.DB != nil
}

// Execute runs a statement and collects its result set. Statements that
// produce no rows yield an empty table.
func (b *BaseSQLAdapter) Execute(ctx context.Context, sqlStr string) (*results.Table, error) {
	if b.DB == nil {
		return nil, fmt.Errorf("database connection not established")
	}
	rows, err := b.DB.QueryContext(ctx, sqlStr)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return CollectRows(rows)
}

// CollectRows drains sql.Rows into a results.Table, converting []byte
// cells to strings for display.
func CollectRows(rows *sql.Rows) (*results.Table, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}

	var collected [][]any
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		for i, v := range values {
			if bs, ok := v.([]byte); ok {
				values[i] = string(bs)
			}
		}
		collected = append(collected, values)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return results.NewTable(cols, collected), nil
}

// ParseQualifiedName splits a table reference into schema and name,
// falling back to the given default schema.
func ParseQualifiedName(table, defaultSchema string) (schema, name string) {
	if parts := strings.Split(table, "."); len(parts) == 2 {
		return parts[0], parts[1]
	}
	return defaultSchema, table
}

// ListTablesInformationSchema lists tables and views via the standard
// information_schema, which DuckDB and Postgres both support.
func (b *BaseSQLAdapter) ListTablesInformationSchema(ctx context.Context, schema string) ([]TableInfo, error) {
	if b.DB == nil {
		return nil, fmt.Errorf("database connection not established")
	}

	query := `
		SELECT table_name, table_type
		FROM information_schema.tables
		WHERE table_schema = ?
		ORDER BY table_name
	`

	rows, err := b.DB.QueryContext(ctx, query, schema)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var tables []TableInfo
	for rows.Next() {
		var name, tableType string
		if err := rows.Scan(&name, &tableType); err != nil {
			return nil, fmt.Errorf("failed to scan table info: %w", err)
		}
		tables = append(tables, TableInfo{Name: name, Type: normalizeTableType(tableType)})
	}

	return tables, rows.Err()
}

// ColumnsInformationSchema reads column metadata via information_schema.
func (b *BaseSQLAdapter) ColumnsInformationSchema(ctx context.Context, schema, table string) ([]ColumnMeta, error) {
	if b.DB == nil {
		return nil, fmt.Errorf("database connection not established")
	}

	query := `
		SELECT column_name, data_type, is_nullable, ordinal_position
		FROM information_schema.columns
		WHERE table_schema = ? AND table_name = ?
		ORDER BY ordinal_position
	`

	rows, err := b.DB.QueryContext(ctx, query, schema, table)
	if err != nil {
		return nil, fmt.Errorf("failed to query column metadata: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var columns []ColumnMeta
	for rows.Next() {
		var col ColumnMeta
		var nullable string
		if err := rows.Scan(&col.Name, &col.Type, &nullable, &col.Position); err != nil {
			return nil, fmt.Errorf("failed to scan column metadata: %w", err)
		}
		col.Nullable = nullable == "YES"
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating column metadata: %w", err)
	}

	if len(columns) == 0 {
		return nil, fmt.Errorf("table %s not found", table)
	}

	return columns, nil
}

// normalizeTableType converts database-specific table types to standard ones.
func normalizeTableType(t string) string {
	t = strings.ToLower(t)
	switch {
	case strings.Contains(t, "view"):
		return "view"
	case strings.Contains(t, "table"):
		return "table"
	default:
		return t
	}
}
