// Package output renders query results for the CLI in table, json, csv,
// and markdown formats.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/querydesk/querydesk/internal/adapter"
	"github.com/querydesk/querydesk/internal/results"
)

// ResolveFormat maps the "auto" format to a concrete one based on whether
// output goes to a terminal.
func ResolveFormat(format string, isTTY bool) string {
	if format != "auto" && format != "" {
		return format
	}
	if isTTY {
		return "table"
	}
	return "csv"
}

// Render writes the result table to w in the given format.
func Render(w io.Writer, t *results.Table, format string) error {
	if t == nil {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return nil
	}

	switch format {
	case "json":
		return renderJSON(w, t)
	case "csv":
		return renderCSV(w, t)
	case "md", "markdown":
		return renderMarkdown(w, t)
	default:
		return renderTable(w, t)
	}
}

func renderTable(w io.Writer, t *results.Table) error {
	if len(t.Rows) == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return nil
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)

	headerRow := make(table.Row, len(t.Columns))
	for i, col := range t.Columns {
		headerRow[i] = col
	}
	tw.AppendHeader(headerRow)

	for _, r := range t.Rows {
		row := make(table.Row, len(t.Columns))
		for i := range t.Columns {
			row[i] = formatValue(cell(r, i))
		}
		tw.AppendRow(row)
	}

	tw.Render()
	_, _ = fmt.Fprintf(w, "(%d rows)\n", len(t.Rows))
	return nil
}

func renderJSON(w io.Writer, t *results.Table) error {
	out := make([]map[string]any, 0, len(t.Rows))
	for _, r := range t.Rows {
		row := make(map[string]any, len(t.Columns))
		for i, col := range t.Columns {
			row[col] = cell(r, i)
		}
		out = append(out, row)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func renderCSV(w io.Writer, t *results.Table) error {
	_, _ = fmt.Fprintln(w, strings.Join(t.Columns, ","))

	for _, r := range t.Rows {
		values := make([]string, len(t.Columns))
		for i := range t.Columns {
			values[i] = escapeCSV(formatValue(cell(r, i)))
		}
		_, _ = fmt.Fprintln(w, strings.Join(values, ","))
	}
	return nil
}

func renderMarkdown(w io.Writer, t *results.Table) error {
	if len(t.Rows) == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return nil
	}

	_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(t.Columns, " | "))
	seps := make([]string, len(t.Columns))
	for i := range seps {
		seps[i] = "---"
	}
	_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(seps, " | "))

	for _, r := range t.Rows {
		values := make([]string, len(t.Columns))
		for i := range t.Columns {
			values[i] = formatValue(cell(r, i))
		}
		_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(values, " | "))
	}
	return nil
}

// RenderTableList writes the table listing in the given format.
func RenderTableList(w io.Writer, tables []adapter.TableInfo, format string) error {
	rows := make([][]any, len(tables))
	for i, ti := range tables {
		rows[i] = []any{ti.Name, ti.Type}
	}
	return Render(w, results.NewTable([]string{"name", "type"}, rows), format)
}

// RenderTableDetails writes a table's column metadata, keys, and indexes.
func RenderTableDetails(w io.Writer, d *adapter.TableDetails, format string) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(d)
	}

	_, _ = fmt.Fprintf(w, "Table: %s\n", d.Name)
	_, _ = fmt.Fprintln(w, strings.Repeat("-", 60))

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"Column", "Type", "Nullable", "Key"})

	for _, col := range d.Columns {
		nullable := "YES"
		if !col.Nullable {
			nullable = "NO"
		}
		key := ""
		if col.PrimaryKey {
			key = "PK"
		}
		tw.AppendRow(table.Row{col.Name, col.Type, nullable, key})
	}
	tw.Render()

	if len(d.ForeignKeys) > 0 {
		_, _ = fmt.Fprintln(w)
		_, _ = fmt.Fprintln(w, "Foreign keys:")
		for _, fk := range d.ForeignKeys {
			_, _ = fmt.Fprintf(w, "  %s -> %s.%s\n", fk.Column, fk.RefTable, fk.RefColumn)
		}
	}
	if len(d.Indexes) > 0 {
		_, _ = fmt.Fprintln(w)
		_, _ = fmt.Fprintln(w, "Indexes:")
		for _, idx := range d.Indexes {
			_, _ = fmt.Fprintf(w, "  %s\n", idx.Name)
		}
	}
	return nil
}

func cell(row []any, i int) any {
	if i < len(row) {
		return row[i]
	}
	return nil
}

func formatValue(v any) string {
	if v == nil {
		return "NULL"
	}
	return fmt.Sprintf("%v", v)
}

func escapeCSV(s string) string {
	if strings.ContainsAny(s, ",\"\n") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}
