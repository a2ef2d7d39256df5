package querybuilder

import (
	"strconv"
	"strings"
)

// Placeholder is emitted when no table is selected. It is a comment, not a
// terminated statement, so downstream layers have nothing runnable.
const Placeholder = "-- Select a table to build a query"

// Compile renders the query model as SQL text. It is total and
// deterministic: it never fails, and an unchanged model always yields
// byte-identical output. Partial models degrade to best-effort SQL.
func Compile(q Query) string {
	if q.Table == nil || q.Table.Name == "" {
		return Placeholder
	}

	var b strings.Builder

	b.WriteString("SELECT ")
	if q.Distinct {
		b.WriteString("DISTINCT ")
	}
	if len(q.Columns) == 0 {
		b.WriteString("*")
	} else {
		b.WriteString(strings.Join(q.Columns, ", "))
	}

	b.WriteString("\nFROM ")
	b.WriteString(q.Table.Name)
	if q.Table.Alias != "" {
		b.WriteString(" AS ")
		b.WriteString(q.Table.Alias)
	}

	for _, j := range q.Joins {
		b.WriteString("\n")
		b.WriteString(string(j.Kind))
		b.WriteString(" JOIN ")
		b.WriteString(j.Table)
		if j.Alias != "" {
			b.WriteString(" AS ")
			b.WriteString(j.Alias)
		}
		b.WriteString(" ON ")
		b.WriteString(j.Condition)
	}

	if len(q.Where) > 0 {
		b.WriteString("\nWHERE ")
		for i, c := range q.Where {
			if i > 0 {
				b.WriteString(" ")
				b.WriteString(string(c.Logical))
				b.WriteString(" ")
			}
			b.WriteString(c.Column)
			b.WriteString(" ")
			b.WriteString(string(c.Operator))
			writeValue(&b, c)
		}
	}

	if len(q.GroupBy) > 0 {
		b.WriteString("\nGROUP BY ")
		b.WriteString(strings.Join(q.GroupBy, ", "))
	}

	if len(q.OrderBy) > 0 {
		b.WriteString("\nORDER BY ")
		for i, o := range q.OrderBy {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(o.Column)
			b.WriteString(" ")
			b.WriteString(string(o.Direction))
		}
	}

	if q.Limit != "" {
		b.WriteString("\nLIMIT ")
		b.WriteString(q.Limit)
	}

	b.WriteString(";")
	return b.String()
}

// writeValue emits the value segment of a condition. The shape depends on
// the operator: LIKE operators get substring wildcards, IN passes the raw
// list through, null checks carry no value at all.
func writeValue(b *strings.Builder, c Condition) {
	switch c.Operator {
	case OpIsNull, OpIsNotNull:
		return
	case OpLike, OpILike:
		b.WriteString(" '%")
		b.WriteString(c.Value)
		b.WriteString("%'")
	case OpIn:
		b.WriteString(" (")
		b.WriteString(c.Value)
		b.WriteString(")")
	default:
		b.WriteString(" ")
		b.WriteString(literal(c.Value))
	}
}

// literal renders a condition value: decimal numbers stay bare, everything
// else becomes a quoted string with embedded quotes doubled.
func literal(v string) string {
	if isNumeric(v) {
		return v
	}
	return "'" + strings.ReplaceAll(v, "'", "''") + "'"
}

// isNumeric accepts plain decimal literals only. ParseFloat alone is too
// permissive for SQL: it also takes "Inf", "NaN" and hex floats, none of
// which may be emitted unquoted.
func isNumeric(v string) bool {
	if v == "" {
		return false
	}
	for _, r := range v {
		if !strings.ContainsRune("0123456789+-.eE", r) {
			return false
		}
	}
	_, err := strconv.ParseFloat(v, 64)
	return err == nil
}
