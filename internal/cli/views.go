package cli

import (
	"fmt"
	"strings"
	"time"

	"outline-cli/internal/model"
	"outline-cli/internal/outline"
)

type noteView struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	RootID    string    `json:"rootId"`
	Current   bool      `json:"current,omitempty"`
	Deleted   bool      `json:"deleted,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func newNoteView(n model.Note, currentID string) noteView {
	return noteView{
		ID:        n.ID,
		Title:     n.Title,
		RootID:    n.RootID,
		Current:   currentID != "" && n.ID == currentID,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}
}

func (v noteView) Text() string {
	mark := " "
	if v.Current {
		mark = "*"
	}
	return fmt.Sprintf("%s %s  %s", mark, v.ID, v.Title)
}

type noteListView struct {
	Notes []noteView `json:"notes"`
}

func (v noteListView) Text() string {
	if len(v.Notes) == 0 {
		return "(no notes)"
	}
	lines := make([]string, 0, len(v.Notes))
	for _, n := range v.Notes {
		lines = append(lines, n.Text())
	}
	return strings.Join(lines, "\n")
}

// outlineView is the payload of every outline command: the visible rows after the command ran.
type outlineView struct {
	NoteID  string                `json:"noteId"`
	RootID  string                `json:"rootId,omitempty"`
	Changed *bool                 `json:"changed,omitempty"`
	FocusID string                `json:"focusId,omitempty"`
	Nodes   []outline.DisplayNode `json:"nodes"`
}

func newOutlineView(st outline.State) outlineView {
	nodes := st.Display
	if nodes == nil {
		nodes = []outline.DisplayNode{}
	}
	return outlineView{
		NoteID:  st.NoteID,
		RootID:  st.RootID,
		FocusID: st.FocusID,
		Nodes:   nodes,
	}
}

func (v outlineView) withChanged(changed bool) outlineView {
	v.Changed = &changed
	return v
}

func (v outlineView) Text() string {
	if len(v.Nodes) == 0 {
		return "(empty outline)"
	}
	var b strings.Builder
	for i, n := range v.Nodes {
		if i > 0 {
			b.WriteString("\n")
		}
		twisty := "•"
		if n.HasChildren {
			twisty = "▾"
			if n.IsCollapsed {
				twisty = "▸"
			}
		}
		text := strings.ReplaceAll(n.Text, "\n", " ")
		fmt.Fprintf(&b, "%s%s %s  (%s)", strings.Repeat("  ", n.Depth), twisty, text, n.ID)
	}
	return b.String()
}
