package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemplate(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestCatalog_LoadsSQLFiles(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "top_users.sql", "SELECT * FROM users LIMIT 10;\n")
	writeTemplate(t, dir, "row_counts.sql", "SELECT count(*) FROM orders;")
	writeTemplate(t, dir, "notes.txt", "not a template")

	c, err := NewCatalog(dir, nil)
	require.NoError(t, err)

	list := c.List()
	require.Len(t, list, 2)
	assert.Equal(t, "row_counts", list[0].Name)
	assert.Equal(t, "top_users", list[1].Name)
	assert.Equal(t, "SELECT * FROM users LIMIT 10;", list[1].Query)
}

func TestCatalog_SidecarOverridesNameAndDescription(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "top_users.sql", "SELECT * FROM users LIMIT 10;")
	writeTemplate(t, dir, "top_users.yaml", "name: Top Users\ndescription: The ten newest accounts\n")

	c, err := NewCatalog(dir, nil)
	require.NoError(t, err)

	tmpl := c.Get("Top Users")
	require.NotNil(t, tmpl)
	assert.Equal(t, "The ten newest accounts", tmpl.Description)
	assert.Nil(t, c.Get("top_users"))
}

func TestCatalog_MissingDirIsEmpty(t *testing.T) {
	c, err := NewCatalog(filepath.Join(t.TempDir(), "nope"), nil)
	require.NoError(t, err)
	assert.Empty(t, c.List())
}

func TestCatalog_ReloadPicksUpChanges(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "a.sql", "SELECT 1;")

	c, err := NewCatalog(dir, nil)
	require.NoError(t, err)
	require.Len(t, c.List(), 1)

	writeTemplate(t, dir, "b.sql", "SELECT 2;")
	require.NoError(t, os.Remove(filepath.Join(dir, "a.sql")))

	require.NoError(t, c.reload())
	list := c.List()
	require.Len(t, list, 1)
	assert.Equal(t, "b", list[0].Name)
}

func TestCatalog_BrokenSidecarSkipsTemplate(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "good.sql", "SELECT 1;")
	writeTemplate(t, dir, "bad.sql", "SELECT 2;")
	writeTemplate(t, dir, "bad.yaml", ":\tnot yaml {{{")

	c, err := NewCatalog(dir, nil)
	require.NoError(t, err)

	list := c.List()
	require.Len(t, list, 1)
	assert.Equal(t, "good", list[0].Name)
}
