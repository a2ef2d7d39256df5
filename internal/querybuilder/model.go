// Package querybuilder provides the structured query model and its SQL
// compiler. A Query is an immutable value: every edit operation returns a
// new Query and leaves the receiver untouched, so compilation is always a
// pure function of the model.
package querybuilder

// JoinKind identifies the join type emitted into the compiled SQL.
type JoinKind string

// Join kind constants.
const (
	JoinInner JoinKind = "INNER"
	JoinLeft  JoinKind = "LEFT"
	JoinRight JoinKind = "RIGHT"
	JoinFull  JoinKind = "FULL"
)

// Operator is a comparison operator in a WHERE condition.
type Operator string

// Supported condition operators.
const (
	OpEqual          Operator = "="
	OpNotEqual       Operator = "!="
	OpGreaterThan    Operator = ">"
	OpLessThan       Operator = "<"
	OpGreaterOrEqual Operator = ">="
	OpLessOrEqual    Operator = "<="
	OpLike           Operator = "LIKE"
	OpILike          Operator = "ILIKE"
	OpIn             Operator = "IN"
	OpIsNull         Operator = "IS NULL"
	OpIsNotNull      Operator = "IS NOT NULL"
)

// LogicalOp connects a condition to the one before it.
type LogicalOp string

// Logical connectors.
const (
	LogicalAnd LogicalOp = "AND"
	LogicalOr  LogicalOp = "OR"
)

// Direction is a sort direction in an ORDER BY clause.
type Direction string

// Sort directions.
const (
	Ascending  Direction = "ASC"
	Descending Direction = "DESC"
)

// SelectedTable is the table a query selects from.
type SelectedTable struct {
	Name  string `json:"name"`
	Alias string `json:"alias,omitempty"`
}

// Join is one JOIN clause. Joins compile in insertion order.
type Join struct {
	Kind      JoinKind `json:"kind"`
	Table     string   `json:"table"`
	Alias     string   `json:"alias,omitempty"`
	Condition string   `json:"condition"`
}

// Condition is one predicate in the WHERE clause. The Logical connector of
// the first condition in a list is never emitted; every later one is.
type Condition struct {
	Column   string    `json:"column"`
	Operator Operator  `json:"operator"`
	Value    string    `json:"value"`
	Logical  LogicalOp `json:"logicalOp"`
}

// OrderBy is one ORDER BY clause entry.
type OrderBy struct {
	Column    string    `json:"column"`
	Direction Direction `json:"direction"`
}

// Query is the structured representation of one query under construction.
// The zero value is a valid, empty query that compiles to the placeholder.
type Query struct {
	Table    *SelectedTable `json:"table,omitempty"`
	Columns  []string       `json:"columns"`
	Distinct bool           `json:"distinct"`
	Joins    []Join         `json:"joins"`
	Where    []Condition    `json:"where"`
	GroupBy  []string       `json:"groupBy"`
	OrderBy  []OrderBy      `json:"orderBy"`
	Limit    string         `json:"limit,omitempty"`
}

// SetTable replaces the selected table. An empty name clears the selection.
func (q Query) SetTable(name, alias string) Query {
	if name == "" {
		q.Table = nil
		return q
	}
	q.Table = &SelectedTable{Name: name, Alias: alias}
	return q
}

// ToggleColumn adds the column to the projection if absent, removes it if
// present. An empty projection compiles to "*".
func (q Query) ToggleColumn(column string) Query {
	for i, c := range q.Columns {
		if c == column {
			cols := make([]string, 0, len(q.Columns)-1)
			cols = append(cols, q.Columns[:i]...)
			cols = append(cols, q.Columns[i+1:]...)
			q.Columns = cols
			return q
		}
	}
	q.Columns = append(cloneSlice(q.Columns), column)
	return q
}

// SetDistinct sets the DISTINCT flag.
func (q Query) SetDistinct(distinct bool) Query {
	q.Distinct = distinct
	return q
}

// AddJoin appends a join clause.
func (q Query) AddJoin(j Join) Query {
	q.Joins = append(cloneSlice(q.Joins), j)
	return q
}

// UpdateJoin replaces the join at index i. Out-of-range indexes are ignored.
func (q Query) UpdateJoin(i int, j Join) Query {
	if i < 0 || i >= len(q.Joins) {
		return q
	}
	joins := cloneSlice(q.Joins)
	joins[i] = j
	q.Joins = joins
	return q
}

// RemoveJoin removes the join at index i. Out-of-range indexes are ignored.
func (q Query) RemoveJoin(i int) Query {
	if i < 0 || i >= len(q.Joins) {
		return q
	}
	joins := make([]Join, 0, len(q.Joins)-1)
	joins = append(joins, q.Joins[:i]...)
	joins = append(joins, q.Joins[i+1:]...)
	q.Joins = joins
	return q
}

// AddCondition appends a WHERE condition.
func (q Query) AddCondition(c Condition) Query {
	q.Where = append(cloneSlice(q.Where), c)
	return q
}

// UpdateCondition replaces the condition at index i. Out-of-range indexes
// are ignored.
func (q Query) UpdateCondition(i int, c Condition) Query {
	if i < 0 || i >= len(q.Where) {
		return q
	}
	where := cloneSlice(q.Where)
	where[i] = c
	q.Where = where
	return q
}

// RemoveCondition removes the condition at index i. Out-of-range indexes are
// ignored.
func (q Query) RemoveCondition(i int) Query {
	if i < 0 || i >= len(q.Where) {
		return q
	}
	where := make([]Condition, 0, len(q.Where)-1)
	where = append(where, q.Where[:i]...)
	where = append(where, q.Where[i+1:]...)
	q.Where = where
	return q
}

// SetGroupBy replaces the GROUP BY column list.
func (q Query) SetGroupBy(columns []string) Query {
	q.GroupBy = cloneSlice(columns)
	return q
}

// AddOrderBy appends an ORDER BY entry.
func (q Query) AddOrderBy(o OrderBy) Query {
	q.OrderBy = append(cloneSlice(q.OrderBy), o)
	return q
}

// UpdateOrderBy replaces the ORDER BY entry at index i. Out-of-range indexes
// are ignored.
func (q Query) UpdateOrderBy(i int, o OrderBy) Query {
	if i < 0 || i >= len(q.OrderBy) {
		return q
	}
	order := cloneSlice(q.OrderBy)
	order[i] = o
	q.OrderBy = order
	return q
}

// RemoveOrderBy removes the ORDER BY entry at index i. Out-of-range indexes
// are ignored.
func (q Query) RemoveOrderBy(i int) Query {
	if i < 0 || i >= len(q.OrderBy) {
		return q
	}
	order := make([]OrderBy, 0, len(q.OrderBy)-1)
	order = append(order, q.OrderBy[:i]...)
	order = append(order, q.OrderBy[i+1:]...)
	q.OrderBy = order
	return q
}

// SetLimit replaces the LIMIT value. An empty string clears it.
func (q Query) SetLimit(limit string) Query {
	q.Limit = limit
	return q
}

// cloneSlice copies a slice so edit operations never alias the original
// query's backing arrays.
func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	out := make([]T, len(s))
	copy(out, s)
	return out
}
