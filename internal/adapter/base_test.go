package adapter

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseSQLAdapter_ExecuteWithoutConnection(t *testing.T) {
	base := &BaseSQLAdapter{}
	_, err := base.Execute(context.Background(), "SELECT 1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database connection not established")
}

func TestBaseSQLAdapter_ExecuteCollectsRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT id, name FROM users").WillReturnRows(
		sqlmock.NewRows([]string{"id", "name"}).
			AddRow(1, "alice").
			AddRow(2, []byte("bob")),
	)

	base := &BaseSQLAdapter{DB: db}
	table, err := base.Execute(context.Background(), "SELECT id, name FROM users")
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "name"}, table.Columns)
	require.Equal(t, 2, table.RowCount())
	// []byte cells convert to strings for display.
	assert.Equal(t, "bob", table.Rows[1][1])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBaseSQLAdapter_ExecuteEmptyResult(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("DELETE FROM users").WillReturnRows(sqlmock.NewRows(nil))

	base := &BaseSQLAdapter{DB: db}
	table, err := base.Execute(context.Background(), "DELETE FROM users")
	require.NoError(t, err)
	assert.Equal(t, 0, table.RowCount())
}

func TestBaseSQLAdapter_Close(t *testing.T) {
	base := &BaseSQLAdapter{}
	assert.NoError(t, base.Close())

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	mock.ExpectClose()
	base.DB = db
	assert.NoError(t, base.Close())
}

func TestParseQualifiedName(t *testing.T) {
	tests := []struct {
		input      string
		wantSchema string
		wantName   string
	}{
		{"users", "main", "users"},
		{"analytics.events", "analytics", "events"},
	}

	for _, tt := range tests {
		schema, name := ParseQualifiedName(tt.input, "main")
		assert.Equal(t, tt.wantSchema, schema)
		assert.Equal(t, tt.wantName, name)
	}
}
