// Package session manages the multi-tab query workspace: an ordered list of
// query buffers with one active tab, execution routed through the safety
// gate, and history/saved-query persistence via the state store.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/querydesk/querydesk/internal/gate"
	"github.com/querydesk/querydesk/internal/querybuilder"
	"github.com/querydesk/querydesk/internal/state"
)

// ErrLastTab is returned when closing the only remaining tab. The workspace
// always keeps at least one tab open.
var ErrLastTab = errors.New("cannot close the last tab")

// ErrTabNotFound is returned when a tab ID does not match any open tab.
var ErrTabNotFound = errors.New("tab not found")

// Session is the query workspace. All tab mutations go through it so the
// active-tab invariant holds. It is safe for concurrent use.
type Session struct {
	mu     sync.Mutex
	tabs   []*Tab
	active int
	nextID int // monotonic counter for default tab names

	gate   *gate.Gate
	store  state.Store
	logger *slog.Logger
}

// New creates a session with a single empty tab. The store may be nil, in
// which case history is not recorded and tab snapshots are not persisted.
func New(g *gate.Gate, store state.Store, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Session{
		gate:   g,
		store:  store,
		logger: logger,
		nextID: 1,
	}
	s.tabs = []*Tab{newTab(s.defaultName())}
	return s
}

func (s *Session) defaultName() string {
	name := fmt.Sprintf("Query %d", s.nextID)
	s.nextID++
	return name
}

// Tabs returns the open tabs in order.
func (s *Session) Tabs() []*Tab {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Tab, len(s.tabs))
	copy(out, s.tabs)
	return out
}

// ActiveTab returns the currently active tab.
func (s *Session) ActiveTab() *Tab {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tabs[s.active]
}

// NewTab appends a new empty tab and makes it active.
func (s *Session) NewTab() *Tab {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := newTab(s.defaultName())
	s.tabs = append(s.tabs, t)
	s.active = len(s.tabs) - 1
	return t
}

// CloseTab removes the tab with the given ID. Closing the last remaining
// tab is an error. Closing the active tab activates its left neighbor.
func (s *Session) CloseTab(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.tabs) == 1 {
		return ErrLastTab
	}
	idx := s.indexOf(id)
	if idx < 0 {
		return ErrTabNotFound
	}

	s.tabs = append(s.tabs[:idx], s.tabs[idx+1:]...)
	switch {
	case s.active > idx:
		s.active--
	case s.active == idx && s.active >= len(s.tabs):
		s.active = len(s.tabs) - 1
	}
	return nil
}

// Activate switches the active tab. Other tabs keep their text untouched.
func (s *Session) Activate(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexOf(id)
	if idx < 0 {
		return ErrTabNotFound
	}
	s.active = idx
	return nil
}

// Rename sets a tab's display name.
func (s *Session) Rename(id, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexOf(id)
	if idx < 0 {
		return ErrTabNotFound
	}
	s.tabs[idx].Name = name
	return nil
}

// SetText replaces a tab's SQL text with a hand edit.
func (s *Session) SetText(id, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexOf(id)
	if idx < 0 {
		return ErrTabNotFound
	}
	s.tabs[idx].SetText(text)
	return nil
}

// SetModel replaces a tab's query model and recompiles its text.
func (s *Session) SetModel(id string, q querybuilder.Query) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexOf(id)
	if idx < 0 {
		return ErrTabNotFound
	}
	s.tabs[idx].SetModel(q)
	return nil
}

func (s *Session) indexOf(id string) int {
	for i, t := range s.tabs {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// ExecuteOptions carries the per-attempt execution flags.
type ExecuteOptions struct {
	ReadOnly  bool
	DryRun    bool
	Confirmed bool
}

// Execute runs the active tab's text through the gate. Every terminal result
// is recorded as one history item; confirmation prompts are not recorded.
func (s *Session) Execute(ctx context.Context, opts ExecuteOptions) (*gate.Result, error) {
	if s.gate == nil {
		return nil, fmt.Errorf("session has no gate")
	}

	s.mu.Lock()
	text := s.tabs[s.active].Text
	s.mu.Unlock()

	res, err := s.gate.Execute(ctx, gate.Request{
		Text:      text,
		ReadOnly:  opts.ReadOnly,
		DryRun:    opts.DryRun,
		Confirmed: opts.Confirmed,
	})
	if err != nil {
		return nil, err
	}

	if res.Terminal() {
		s.recordHistory(text, res)
	}
	return res, nil
}

// Cancel resolves a pending confirmation prompt without executing.
func (s *Session) Cancel() {
	if s.gate != nil {
		s.gate.Cancel()
	}
}

func (s *Session) recordHistory(text string, res *gate.Result) {
	if s.store == nil {
		return
	}
	item := &state.HistoryItem{
		Query:       text,
		ExecutionMS: res.Duration.Milliseconds(),
		Success:     res.Err == nil,
	}
	if res.Err != nil {
		item.Error = res.Err.Error()
	}
	if err := s.store.AppendHistory(item); err != nil {
		s.logger.Warn("failed to record history", "error", err)
	}
}

// History returns the persisted history, newest first.
func (s *Session) History() ([]*state.HistoryItem, error) {
	if s.store == nil {
		return nil, nil
	}
	return s.store.ListHistory()
}

// DeleteHistory removes a single history item.
func (s *Session) DeleteHistory(id string) error {
	if s.store == nil {
		return nil
	}
	return s.store.DeleteHistory(id)
}

// ClearHistory removes all history items.
func (s *Session) ClearHistory() error {
	if s.store == nil {
		return nil
	}
	return s.store.ClearHistory()
}

// SaveQuery upserts a saved query.
func (s *Session) SaveQuery(q *state.SavedQuery) error {
	if s.store == nil {
		return fmt.Errorf("no store configured")
	}
	return s.store.SaveQuery(q)
}

// SavedQueries lists the saved queries.
func (s *Session) SavedQueries() ([]*state.SavedQuery, error) {
	if s.store == nil {
		return nil, nil
	}
	return s.store.ListSavedQueries()
}

// DeleteSavedQuery removes a saved query.
func (s *Session) DeleteSavedQuery(id string) error {
	if s.store == nil {
		return fmt.Errorf("no store configured")
	}
	return s.store.DeleteSavedQuery(id)
}

// OpenSaved loads a saved query into a new tab and activates it.
func (s *Session) OpenSaved(id string) (*Tab, error) {
	if s.store == nil {
		return nil, fmt.Errorf("no store configured")
	}
	q, err := s.store.GetSavedQuery(id)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, fmt.Errorf("saved query not found: %s", id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	t := newTab(q.Name)
	t.SetText(q.Query)
	s.tabs = append(s.tabs, t)
	s.active = len(s.tabs) - 1
	return t, nil
}

// Snapshot persists the current tab layout to the store.
func (s *Session) Snapshot() error {
	if s.store == nil {
		return nil
	}

	s.mu.Lock()
	records := make([]*state.TabRecord, len(s.tabs))
	for i, t := range s.tabs {
		records[i] = &state.TabRecord{
			ID:        t.ID,
			Name:      t.Name,
			QueryText: t.Text,
			Position:  i,
			Active:    i == s.active,
		}
	}
	s.mu.Unlock()

	return s.store.SaveTabs(records)
}

// Restore replaces the session's tabs with the persisted snapshot. An empty
// snapshot leaves the session unchanged.
func (s *Session) Restore() error {
	if s.store == nil {
		return nil
	}
	records, err := s.store.LoadTabs()
	if err != nil {
		return fmt.Errorf("failed to load tab snapshot: %w", err)
	}
	if len(records) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	tabs := make([]*Tab, 0, len(records))
	active := 0
	for i, r := range records {
		t := &Tab{ID: r.ID, Name: r.Name}
		t.SetText(r.QueryText)
		tabs = append(tabs, t)
		if r.Active {
			active = i
		}
	}
	s.tabs = tabs
	s.active = active
	return nil
}
