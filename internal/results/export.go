package results

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Format identifies an export serialization.
type Format string

// Export formats.
const (
	FormatCSV       Format = "csv"
	FormatJSON      Format = "json"
	FormatSQLInsert Format = "sql-insert"
)

// Export serializes the table as-is. Callers export the filtered and
// sorted view they are currently looking at, never the raw input.
func (t *Table) Export(w io.Writer, format Format, tableName string) error {
	switch format {
	case FormatCSV:
		return t.exportCSV(w)
	case FormatJSON:
		return t.exportJSON(w)
	case FormatSQLInsert:
		return t.exportSQLInsert(w, tableName)
	default:
		return fmt.Errorf("unsupported export format: %s", format)
	}
}

func (t *Table) exportCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	record := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		for i := range t.Columns {
			record[i] = stringify(cellAt(row, i))
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func (t *Table) exportJSON(w io.Writer) error {
	out := make([]map[string]any, 0, len(t.Rows))
	for _, row := range t.Rows {
		obj := make(map[string]any, len(t.Columns))
		for i, col := range t.Columns {
			obj[col] = cellAt(row, i)
		}
		out = append(out, obj)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func (t *Table) exportSQLInsert(w io.Writer, tableName string) error {
	if tableName == "" {
		tableName = "exported"
	}
	cols := strings.Join(t.Columns, ", ")
	for _, row := range t.Rows {
		values := make([]string, len(t.Columns))
		for i := range t.Columns {
			values[i] = sqlLiteral(cellAt(row, i))
		}
		if _, err := fmt.Fprintf(w, "INSERT INTO %s (%s) VALUES (%s);\n",
			tableName, cols, strings.Join(values, ", ")); err != nil {
			return fmt.Errorf("failed to write insert statement: %w", err)
		}
	}
	return nil
}

// sqlLiteral renders a cell as a SQL literal: NULL for nil, bare for
// numbers and booleans, quoted with doubling otherwise.
func sqlLiteral(v any) string {
	if v == nil {
		return "NULL"
	}
	if _, ok := asNumber(v); ok {
		return stringify(v)
	}
	if b, ok := v.(bool); ok {
		if b {
			return "TRUE"
		}
		return "FALSE"
	}
	return "'" + strings.ReplaceAll(stringify(v), "'", "''") + "'"
}

// cellAt guards against ragged rows from misbehaving drivers.
func cellAt(row []any, i int) any {
	if i >= len(row) {
		return nil
	}
	return row[i]
}
