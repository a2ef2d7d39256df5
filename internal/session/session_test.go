package session

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/querydesk/querydesk/internal/gate"
	"github.com/querydesk/querydesk/internal/querybuilder"
	"github.com/querydesk/querydesk/internal/results"
	"github.com/querydesk/querydesk/internal/state"
)

// memStore is an in-memory state.Store for session tests.
type memStore struct {
	history []*state.HistoryItem
	saved   map[string]*state.SavedQuery
	tabs    []*state.TabRecord
}

func newMemStore() *memStore {
	return &memStore{saved: make(map[string]*state.SavedQuery)}
}

func (m *memStore) Open(string) error { return nil }
func (m *memStore) Close() error      { return nil }
func (m *memStore) Migrate() error    { return nil }

func (m *memStore) AppendHistory(item *state.HistoryItem) error {
	m.history = append(m.history, item)
	return nil
}

func (m *memStore) ListHistory() ([]*state.HistoryItem, error) {
	out := make([]*state.HistoryItem, len(m.history))
	for i, item := range m.history {
		out[len(m.history)-1-i] = item
	}
	return out, nil
}

func (m *memStore) DeleteHistory(id string) error {
	for i, item := range m.history {
		if item.ID == id {
			m.history = append(m.history[:i], m.history[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *memStore) ClearHistory() error {
	m.history = nil
	return nil
}

func (m *memStore) SaveQuery(q *state.SavedQuery) error {
	m.saved[q.ID] = q
	return nil
}

func (m *memStore) GetSavedQuery(id string) (*state.SavedQuery, error) {
	q, ok := m.saved[id]
	if !ok {
		return nil, fmt.Errorf("saved query not found: %s", id)
	}
	return q, nil
}

func (m *memStore) ListSavedQueries() ([]*state.SavedQuery, error) {
	out := make([]*state.SavedQuery, 0, len(m.saved))
	for _, q := range m.saved {
		out = append(out, q)
	}
	return out, nil
}

func (m *memStore) DeleteSavedQuery(id string) error {
	delete(m.saved, id)
	return nil
}

func (m *memStore) SaveTabs(tabs []*state.TabRecord) error {
	m.tabs = tabs
	return nil
}

func (m *memStore) LoadTabs() ([]*state.TabRecord, error) {
	return m.tabs, nil
}

// okExecutor returns a one-cell table for every statement.
type okExecutor struct {
	fail bool
}

func (e *okExecutor) Execute(_ context.Context, sql string) (*results.Table, error) {
	if e.fail {
		return nil, errors.New("syntax error")
	}
	return results.NewTable([]string{"sql"}, [][]any{{sql}}), nil
}

func (e *okExecutor) Explain(_ context.Context, sql string) (*results.Table, error) {
	return results.NewTable([]string{"plan"}, [][]any{{"SCAN"}}), nil
}

func newTestSession(store state.Store, exec gate.Executor) *Session {
	return New(gate.New(gate.Policy{}, exec, nil), store, nil)
}

func TestSession_StartsWithOneTab(t *testing.T) {
	s := newTestSession(newMemStore(), &okExecutor{})

	tabs := s.Tabs()
	require.Len(t, tabs, 1)
	assert.Equal(t, "Query 1", tabs[0].Name)
	assert.Equal(t, tabs[0], s.ActiveTab())
	assert.Equal(t, querybuilder.Placeholder, tabs[0].Text)
}

func TestSession_NewTabBecomesActive(t *testing.T) {
	s := newTestSession(newMemStore(), &okExecutor{})

	t2 := s.NewTab()
	assert.Equal(t, "Query 2", t2.Name)
	assert.Equal(t, t2, s.ActiveTab())
	assert.Len(t, s.Tabs(), 2)
}

func TestSession_CloseLastTabDisallowed(t *testing.T) {
	s := newTestSession(newMemStore(), &okExecutor{})

	err := s.CloseTab(s.ActiveTab().ID)
	assert.ErrorIs(t, err, ErrLastTab)
	assert.Len(t, s.Tabs(), 1)
}

func TestSession_CloseActiveActivatesNeighbor(t *testing.T) {
	s := newTestSession(newMemStore(), &okExecutor{})
	first := s.ActiveTab()
	second := s.NewTab()

	require.NoError(t, s.CloseTab(second.ID))
	assert.Equal(t, first, s.ActiveTab())
	assert.Len(t, s.Tabs(), 1)
}

func TestSession_CloseUnknownTab(t *testing.T) {
	s := newTestSession(newMemStore(), &okExecutor{})
	s.NewTab()

	err := s.CloseTab("no-such-id")
	assert.ErrorIs(t, err, ErrTabNotFound)
}

func TestSession_SwitchingPreservesOtherTabs(t *testing.T) {
	s := newTestSession(newMemStore(), &okExecutor{})
	first := s.ActiveTab()
	require.NoError(t, s.SetText(first.ID, "SELECT 1;"))

	second := s.NewTab()
	require.NoError(t, s.SetText(second.ID, "SELECT 2;"))

	require.NoError(t, s.Activate(first.ID))
	assert.Equal(t, "SELECT 1;", s.ActiveTab().Text)

	require.NoError(t, s.Activate(second.ID))
	assert.Equal(t, "SELECT 2;", s.ActiveTab().Text)
}

func TestSession_SetModelCompilesText(t *testing.T) {
	s := newTestSession(newMemStore(), &okExecutor{})
	tab := s.ActiveTab()

	var q querybuilder.Query
	q = q.SetTable("users", "")
	require.NoError(t, s.SetModel(tab.ID, q))
	assert.Equal(t, "SELECT *\nFROM users;", s.ActiveTab().Text)
}

func TestSession_ManualEditStopsRecompile(t *testing.T) {
	s := newTestSession(newMemStore(), &okExecutor{})
	tab := s.ActiveTab()

	require.NoError(t, s.SetText(tab.ID, "SELECT 42;"))

	var q querybuilder.Query
	q = q.SetTable("users", "")
	require.NoError(t, s.SetModel(tab.ID, q))
	assert.Equal(t, "SELECT 42;", s.ActiveTab().Text)

	tab.ResetModel()
	assert.Equal(t, "SELECT *\nFROM users;", tab.Text)
}

func TestSession_ExecuteRecordsSuccess(t *testing.T) {
	store := newMemStore()
	s := newTestSession(store, &okExecutor{})
	require.NoError(t, s.SetText(s.ActiveTab().ID, "SELECT 1;"))

	res, err := s.Execute(context.Background(), ExecuteOptions{})
	require.NoError(t, err)
	require.True(t, res.Terminal())
	require.NoError(t, res.Err)

	require.Len(t, store.history, 1)
	assert.Equal(t, "SELECT 1;", store.history[0].Query)
	assert.True(t, store.history[0].Success)
	assert.Empty(t, store.history[0].Error)
}

func TestSession_ExecuteRecordsFailure(t *testing.T) {
	store := newMemStore()
	s := newTestSession(store, &okExecutor{fail: true})
	require.NoError(t, s.SetText(s.ActiveTab().ID, "SELEC oops"))

	res, err := s.Execute(context.Background(), ExecuteOptions{})
	require.NoError(t, err)
	require.True(t, res.Terminal())
	require.Error(t, res.Err)

	require.Len(t, store.history, 1)
	assert.False(t, store.history[0].Success)
	assert.Equal(t, "syntax error", store.history[0].Error)
}

func TestSession_ConfirmationPromptNotRecorded(t *testing.T) {
	store := newMemStore()
	s := newTestSession(store, &okExecutor{})
	require.NoError(t, s.SetText(s.ActiveTab().ID, "DELETE FROM users"))

	res, err := s.Execute(context.Background(), ExecuteOptions{})
	require.NoError(t, err)
	require.True(t, res.RequiresConfirmation)
	assert.Empty(t, store.history)

	res, err = s.Execute(context.Background(), ExecuteOptions{Confirmed: true})
	require.NoError(t, err)
	require.True(t, res.Terminal())
	require.Len(t, store.history, 1)
	assert.Equal(t, "DELETE FROM users", store.history[0].Query)
}

func TestSession_SnapshotAndRestore(t *testing.T) {
	store := newMemStore()
	s := newTestSession(store, &okExecutor{})
	first := s.ActiveTab()
	require.NoError(t, s.SetText(first.ID, "SELECT 1;"))
	second := s.NewTab()
	require.NoError(t, s.SetText(second.ID, "SELECT 2;"))
	require.NoError(t, s.Activate(first.ID))

	require.NoError(t, s.Snapshot())

	restored := newTestSession(store, &okExecutor{})
	require.NoError(t, restored.Restore())

	tabs := restored.Tabs()
	require.Len(t, tabs, 2)
	assert.Equal(t, "SELECT 1;", tabs[0].Text)
	assert.Equal(t, "SELECT 2;", tabs[1].Text)
	assert.Equal(t, tabs[0], restored.ActiveTab())
}

func TestSession_RestoreEmptySnapshotKeepsDefaultTab(t *testing.T) {
	s := newTestSession(newMemStore(), &okExecutor{})
	require.NoError(t, s.Restore())
	assert.Len(t, s.Tabs(), 1)
}

func TestSession_OpenSavedLoadsIntoNewTab(t *testing.T) {
	store := newMemStore()
	s := newTestSession(store, &okExecutor{})
	require.NoError(t, s.SaveQuery(&state.SavedQuery{
		ID:    "sq-1",
		Name:  "Top users",
		Query: "SELECT * FROM users LIMIT 10;",
	}))

	tab, err := s.OpenSaved("sq-1")
	require.NoError(t, err)
	assert.Equal(t, "Top users", tab.Name)
	assert.Equal(t, "SELECT * FROM users LIMIT 10;", tab.Text)
	assert.Equal(t, tab, s.ActiveTab())
	assert.Len(t, s.Tabs(), 2)
}

func TestSession_OpenSavedUnknownID(t *testing.T) {
	// Against the real store, not the in-memory fake, so the missing-row
	// path goes through SQLite.
	store := state.NewSQLiteStore()
	require.NoError(t, store.Open(":memory:"))
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Migrate())

	s := newTestSession(store, &okExecutor{})

	tab, err := s.OpenSaved("no-such-id")
	require.Error(t, err)
	assert.ErrorIs(t, err, state.ErrNotFound)
	assert.Nil(t, tab)
	assert.Len(t, s.Tabs(), 1)
}
