package session

import (
	"github.com/google/uuid"

	"github.com/querydesk/querydesk/internal/querybuilder"
)

// Tab is one query buffer in the workspace. It carries both the structured
// model and the SQL text; the text tracks the model until the user edits it
// by hand, after which the text is authoritative.
type Tab struct {
	ID    string             `json:"id"`
	Name  string             `json:"name"`
	Model querybuilder.Query `json:"model"`
	Text  string             `json:"text"`

	// manual is set once the user edits the text directly. Model changes
	// stop overwriting the text until the model is rebuilt from scratch.
	manual bool
}

// newTab creates an empty tab with a fresh ID.
func newTab(name string) *Tab {
	return &Tab{
		ID:   uuid.New().String(),
		Name: name,
		Text: querybuilder.Placeholder,
	}
}

// SetModel replaces the tab's query model and recompiles the text unless the
// user has taken over the text manually.
func (t *Tab) SetModel(q querybuilder.Query) {
	t.Model = q
	if !t.manual {
		t.Text = querybuilder.Compile(q)
	}
}

// SetText replaces the tab's SQL text directly. The structured model is left
// untouched so the builder state survives a round of hand edits.
func (t *Tab) SetText(text string) {
	t.Text = text
	t.manual = true
}

// ResetModel discards manual edits and recompiles the text from the model.
func (t *Tab) ResetModel() {
	t.manual = false
	t.Text = querybuilder.Compile(t.Model)
}
