package querybuilder

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuery_EditsDoNotMutateOriginal(t *testing.T) {
	base := Query{}.
		SetTable("users", "").
		ToggleColumn("id").
		AddCondition(Condition{Column: "id", Operator: OpEqual, Value: "1"}).
		AddJoin(Join{Kind: JoinInner, Table: "roles", Condition: "roles.user_id = users.id"}).
		AddOrderBy(OrderBy{Column: "id", Direction: Ascending})

	snapshot := Compile(base)

	_ = base.ToggleColumn("name")
	_ = base.UpdateCondition(0, Condition{Column: "id", Operator: OpEqual, Value: "2"})
	_ = base.RemoveJoin(0)
	_ = base.UpdateOrderBy(0, OrderBy{Column: "name", Direction: Descending})
	_ = base.SetGroupBy([]string{"id"})

	assert.Equal(t, snapshot, Compile(base))
}

func TestQuery_ToggleColumnRemovesExisting(t *testing.T) {
	q := Query{}.ToggleColumn("a").ToggleColumn("b").ToggleColumn("a")
	assert.Equal(t, []string{"b"}, q.Columns)
}

func TestQuery_OutOfRangeEditsAreNoOps(t *testing.T) {
	q := Query{}.
		SetTable("t", "").
		AddCondition(Condition{Column: "a", Operator: OpEqual, Value: "1"})

	assert.Equal(t, q, q.UpdateCondition(5, Condition{}))
	assert.Equal(t, q, q.RemoveCondition(-1))
	assert.Equal(t, q, q.UpdateJoin(0, Join{}))
	assert.Equal(t, q, q.RemoveJoin(0))
	assert.Equal(t, q, q.UpdateOrderBy(0, OrderBy{}))
	assert.Equal(t, q, q.RemoveOrderBy(0))
}

func TestQuery_SetTableEmptyClearsSelection(t *testing.T) {
	q := Query{}.SetTable("users", "u").SetTable("", "")
	assert.Nil(t, q.Table)
	assert.Equal(t, Placeholder, Compile(q))
}

func TestQuery_RemoveCondition(t *testing.T) {
	q := Query{}.
		AddCondition(Condition{Column: "a", Operator: OpEqual, Value: "1"}).
		AddCondition(Condition{Column: "b", Operator: OpEqual, Value: "2"}).
		RemoveCondition(0)

	assert.Len(t, q.Where, 1)
	assert.Equal(t, "b", q.Where[0].Column)
}
