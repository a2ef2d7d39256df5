// Package results processes raw query output on the client side:
// filtering, stable sorting, pagination, export, and chart projection.
// All operations are views over the input; the raw row set is never
// modified.
package results

import (
	"fmt"
	"sort"
	"strings"
)

// Table is a raw result set: column names plus rows of arbitrary values.
type Table struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// NewTable builds a Table from columns and rows.
func NewTable(columns []string, rows [][]any) *Table {
	return &Table{Columns: columns, Rows: rows}
}

// RowCount returns the number of rows in the table.
func (t *Table) RowCount() int {
	return len(t.Rows)
}

// Filter keeps rows where any stringified cell contains term,
// case-insensitively. An empty term keeps every row.
func (t *Table) Filter(term string) *Table {
	if term == "" {
		return t.clone(t.Rows)
	}
	needle := strings.ToLower(term)
	var kept [][]any
	for _, row := range t.Rows {
		for _, cell := range row {
			if strings.Contains(strings.ToLower(stringify(cell)), needle) {
				kept = append(kept, row)
				break
			}
		}
	}
	return t.clone(kept)
}

// Sort orders rows by the named column, stably. When both values are
// numeric they compare as numbers, otherwise as strings. Nil values always
// sort after non-nil values, for both directions. An unknown column returns
// the table unchanged.
func (t *Table) Sort(column string, desc bool) *Table {
	idx := t.columnIndex(column)
	if idx < 0 {
		return t.clone(t.Rows)
	}

	rows := make([][]any, len(t.Rows))
	copy(rows, t.Rows)

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := cellAt(rows[i], idx), cellAt(rows[j], idx)

		// Nils sink to the bottom regardless of direction.
		if a == nil || b == nil {
			if a == nil && b == nil {
				return false
			}
			return b == nil
		}

		c := compareValues(a, b)
		if desc {
			return c > 0
		}
		return c < 0
	})

	return t.clone(rows)
}

// compareValues compares two non-nil cells: numerically when both are
// numbers, lexically otherwise.
func compareValues(a, b any) int {
	an, aok := asNumber(a)
	bn, bok := asNumber(b)
	if aok && bok {
		switch {
		case an < bn:
			return -1
		case an > bn:
			return 1
		}
		return 0
	}
	return strings.Compare(stringify(a), stringify(b))
}

// Paginate slices the table to the given page (zero-based) of pageSize
// rows. A non-positive pageSize returns the table unchanged.
func (t *Table) Paginate(pageSize, page int) *Table {
	if pageSize <= 0 {
		return t.clone(t.Rows)
	}
	start := page * pageSize
	if start < 0 || start >= len(t.Rows) {
		return t.clone(nil)
	}
	end := start + pageSize
	if end > len(t.Rows) {
		end = len(t.Rows)
	}
	return t.clone(t.Rows[start:end])
}

// clone returns a new Table sharing columns with the receiver.
func (t *Table) clone(rows [][]any) *Table {
	return &Table{Columns: t.Columns, Rows: rows}
}

func (t *Table) columnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// stringify renders a cell for filtering, sorting, and export.
func stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	default:
		return fmt.Sprintf("%v", x)
	}
}

// asNumber reports whether the value is numeric and returns it as float64.
func asNumber(v any) (float64, bool) {
	switch x := v.(type) {
	case int:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	case float32:
		return float64(x), true
	case float64:
		return x, true
	}
	return 0, false
}
