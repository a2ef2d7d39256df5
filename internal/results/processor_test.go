package results

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable() *Table {
	return NewTable(
		[]string{"id", "name", "score"},
		[][]any{
			{1, "alice", 90.5},
			{2, "Bob", nil},
			{3, "carol", 70.0},
			{4, "dave", 85.0},
		},
	)
}

func TestFilter_CaseInsensitiveSubstring(t *testing.T) {
	got := sampleTable().Filter("BO")
	require.Equal(t, 1, got.RowCount())
	assert.Equal(t, "Bob", got.Rows[0][1])
}

func TestFilter_MatchesStringifiedNumbers(t *testing.T) {
	got := sampleTable().Filter("90.5")
	assert.Equal(t, 1, got.RowCount())
}

func TestFilter_EmptyTermKeepsAll(t *testing.T) {
	assert.Equal(t, 4, sampleTable().Filter("").RowCount())
}

func TestFilter_DoesNotMutateInput(t *testing.T) {
	tab := sampleTable()
	_ = tab.Filter("alice")
	assert.Equal(t, 4, tab.RowCount())
}

func TestSort_NumericColumn(t *testing.T) {
	got := sampleTable().Sort("score", false)
	scores := make([]any, 0, 4)
	for _, row := range got.Rows {
		scores = append(scores, row[2])
	}
	assert.Equal(t, []any{70.0, 85.0, 90.5, nil}, scores)
}

func TestSort_NilsLastBothDirections(t *testing.T) {
	for _, desc := range []bool{false, true} {
		got := sampleTable().Sort("score", desc)
		assert.Nil(t, got.Rows[len(got.Rows)-1][2], "desc=%v", desc)
	}
}

func TestSort_LexicalFallback(t *testing.T) {
	got := sampleTable().Sort("name", false)
	// Lexical comparison is case-sensitive: "Bob" sorts before lowercase.
	assert.Equal(t, "Bob", got.Rows[0][1])
	assert.Equal(t, "alice", got.Rows[1][1])
}

func TestSort_Stable(t *testing.T) {
	tab := NewTable(
		[]string{"g", "n"},
		[][]any{{"a", 1}, {"b", 2}, {"a", 3}, {"b", 4}},
	)
	got := tab.Sort("g", false)
	assert.Equal(t, [][]any{{"a", 1}, {"a", 3}, {"b", 2}, {"b", 4}}, got.Rows)
}

func TestSort_RaggedRowsTreatMissingCellsAsNil(t *testing.T) {
	tab := NewTable(
		[]string{"a", "b"},
		[][]any{{"x", 2}, {"y"}, {"z", 1}},
	)
	got := tab.Sort("b", false)
	// The short row has no "b" cell, so it sinks last like a nil.
	assert.Equal(t, [][]any{{"z", 1}, {"x", 2}, {"y"}}, got.Rows)

	got = tab.Sort("b", true)
	assert.Equal(t, [][]any{{"x", 2}, {"z", 1}, {"y"}}, got.Rows)
}

func TestSort_UnknownColumnUnchanged(t *testing.T) {
	got := sampleTable().Sort("missing", false)
	assert.Equal(t, sampleTable().Rows, got.Rows)
}

func TestPaginate(t *testing.T) {
	tests := []struct {
		name     string
		pageSize int
		page     int
		wantIDs  []any
	}{
		{"first page", 2, 0, []any{1, 2}},
		{"second page", 2, 1, []any{3, 4}},
		{"partial last page", 3, 1, []any{4}},
		{"past the end", 2, 5, nil},
		{"zero size keeps all", 0, 0, []any{1, 2, 3, 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sampleTable().Paginate(tt.pageSize, tt.page)
			var ids []any
			for _, row := range got.Rows {
				ids = append(ids, row[0])
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestExportCSV_UsesCurrentView(t *testing.T) {
	view := sampleTable().Filter("a").Sort("score", true)

	var buf strings.Builder
	require.NoError(t, view.Export(&buf, FormatCSV, ""))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	// Header plus exactly the filtered rows, in sorted order.
	require.Len(t, lines, 1+view.RowCount())
	assert.Equal(t, "id,name,score", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "1,alice"))
}

func TestExportJSON(t *testing.T) {
	var buf strings.Builder
	require.NoError(t, sampleTable().Paginate(1, 0).Export(&buf, FormatJSON, ""))
	assert.Contains(t, buf.String(), `"name": "alice"`)
	assert.NotContains(t, buf.String(), "Bob")
}

func TestExportSQLInsert(t *testing.T) {
	tab := NewTable([]string{"id", "name"}, [][]any{{7, "O'Brien"}, {8, nil}})

	var buf strings.Builder
	require.NoError(t, tab.Export(&buf, FormatSQLInsert, "users"))

	assert.Contains(t, buf.String(), "INSERT INTO users (id, name) VALUES (7, 'O''Brien');")
	assert.Contains(t, buf.String(), "VALUES (8, NULL);")
}

func TestExport_UnknownFormat(t *testing.T) {
	var buf strings.Builder
	err := sampleTable().Export(&buf, Format("xml"), "")
	assert.Error(t, err)
}

func TestChart_Projection(t *testing.T) {
	c := sampleTable().Chart()
	require.NotNil(t, c)
	// id is fully numeric, name is not: label = name, value = id.
	assert.Equal(t, "name", c.LabelColumn)
	assert.Equal(t, "id", c.ValueColumn)
	assert.Equal(t, []string{"alice", "Bob", "carol", "dave"}, c.Labels)
}

func TestChart_NumericWithNullsStillNumeric(t *testing.T) {
	tab := NewTable([]string{"label", "v"}, [][]any{{"a", 1}, {"b", nil}})
	c := tab.Chart()
	require.NotNil(t, c)
	assert.Equal(t, "v", c.ValueColumn)
}

func TestChart_NoNumericColumn(t *testing.T) {
	tab := NewTable([]string{"a", "b"}, [][]any{{"x", "y"}})
	assert.Nil(t, tab.Chart())
}

func TestChart_CapsAtTwentyRows(t *testing.T) {
	rows := make([][]any, 30)
	for i := range rows {
		rows[i] = []any{"row", i}
	}
	c := NewTable([]string{"label", "v"}, rows).Chart()
	require.NotNil(t, c)
	assert.Len(t, c.Values, 20)
}

func TestChart_AllNumericUsesFirstColumnAsLabel(t *testing.T) {
	tab := NewTable([]string{"x", "y"}, [][]any{{1, 2}, {3, 4}})
	c := tab.Chart()
	require.NotNil(t, c)
	assert.Equal(t, "x", c.LabelColumn)
	assert.Equal(t, "x", c.ValueColumn)
}
