// Package adapter defines the database adapter contract for QueryDesk's
// execution and schema services. Concrete implementations live in
// subdirectories and register themselves via init().
//
// Classification and read-only enforcement happen in the gate before any
// adapter call; adapters are handed already-gated text.
package adapter

import (
	"context"

	"github.com/querydesk/querydesk/internal/results"
)

// Config holds configuration for connecting to a database target.
type Config struct {
	Type     string
	Database string // file path or database name
	Host     string
	Port     int
	User     string
	Password string
	Schema   string
	Options  map[string]string
}

// ColumnMeta describes one column of a table.
type ColumnMeta struct {
	Name       string `json:"name"`
	Type       string `json:"dataType"`
	Nullable   bool   `json:"nullable"`
	PrimaryKey bool   `json:"primaryKey,omitempty"`
	Position   int    `json:"position"`
}

// TableInfo identifies a table or view in the target database.
type TableInfo struct {
	Name string `json:"name"`
	Type string `json:"type"` // "table" or "view"
}

// ForeignKey describes one foreign key reference.
type ForeignKey struct {
	Column    string `json:"column"`
	RefTable  string `json:"refTable"`
	RefColumn string `json:"refColumn"`
}

// Index describes one index on a table.
type Index struct {
	Name    string   `json:"name"`
	Columns []string `json:"columns,omitempty"`
	Unique  bool     `json:"unique"`
}

// TableDetails holds the full metadata for one table.
type TableDetails struct {
	Name        string       `json:"name"`
	Columns     []ColumnMeta `json:"columns"`
	PrimaryKeys []string     `json:"primaryKeys,omitempty"`
	ForeignKeys []ForeignKey `json:"foreignKeys,omitempty"`
	Indexes     []Index      `json:"indexes,omitempty"`
}

// Adapter is the interface all database adapters implement. A connected
// adapter also satisfies the gate's Executor interface.
type Adapter interface {
	// Connect establishes a connection using the provided config.
	Connect(ctx context.Context, cfg Config) error

	// Close closes the connection and releases resources.
	Close() error

	// Execute runs a statement and returns its result set. Statements
	// that produce no rows return an empty table.
	Execute(ctx context.Context, sql string) (*results.Table, error)

	// Explain runs an explain-style dry run of the statement.
	Explain(ctx context.Context, sql string) (*results.Table, error)

	// ListTables returns the tables and views visible to the connection.
	ListTables(ctx context.Context) ([]TableInfo, error)

	// TableDetails returns column, key, and index metadata for a table.
	TableDetails(ctx context.Context, table string) (*TableDetails, error)
}
