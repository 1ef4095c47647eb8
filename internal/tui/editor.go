package tui

import (
	"context"
	"strings"

	"outline-cli/internal/outline"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type (
	loadedMsg   struct{ err error }
	changedMsg  struct{}
	insertedMsg struct {
		id  string
		err error
	}
)

type editorModel struct {
	ctx     context.Context
	c       *outline.Coordinator
	title   string
	changes <-chan struct{}
	startAt string

	st         outline.State
	cursor     int
	selectedID string
	input      textinput.Model

	width  int
	height int
	offset int

	inserting bool
	status    string
}

func newEditorModel(ctx context.Context, c *outline.Coordinator, title string, changes <-chan struct{}) editorModel {
	in := textinput.New()
	in.Prompt = ""
	in.Placeholder = "(empty)"
	in.CharLimit = 0
	in.Focus()

	m := editorModel{
		ctx:     ctx,
		c:       c,
		title:   strings.TrimSpace(title),
		changes: changes,
		input:   in,
		width:   80,
		height:  24,
	}
	m.sync()
	return m
}

func (m editorModel) Init() tea.Cmd {
	return tea.Batch(m.loadCmd(), waitForChange(m.changes), textinput.Blink)
}

func (m editorModel) loadCmd() tea.Cmd {
	c, ctx := m.c, m.ctx
	return func() tea.Msg {
		return loadedMsg{err: c.Load(ctx)}
	}
}

func waitForChange(ch <-chan struct{}) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return changedMsg{}
	}
}

func (m editorModel) insertCmd(afterID string) tea.Cmd {
	c, ctx := m.c, m.ctx
	return func() tea.Msg {
		var id string
		var err error
		if afterID == "" {
			id, err = c.InsertFirst(ctx)
		} else {
			id, err = c.InsertAfter(ctx, afterID)
		}
		return insertedMsg{id: id, err: err}
	}
}

func (m editorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = m.rowTextWidth()
		m.clampOffset()
		return m, nil

	case loadedMsg:
		if msg.err != nil {
			m.status = "load failed"
		}
		m.sync()
		if m.startAt != "" {
			if idx := outline.IndexOf(m.st.Display, m.startAt); idx >= 0 {
				m.selectIndex(idx)
			}
			m.startAt = ""
		}
		return m, nil

	case changedMsg:
		m.sync()
		return m, waitForChange(m.changes)

	case insertedMsg:
		m.inserting = false
		switch {
		case msg.err != nil:
			m.status = "insert failed: " + msg.err.Error()
		case msg.id == "":
			m.status = "nothing to insert after"
		default:
			m.status = ""
		}
		m.sync()
		return m, nil

	case tea.KeyMsg:
		return m.updateKey(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m editorModel) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		m.c.FlushEdits()
		return m, tea.Quit

	case "up", "ctrl+p":
		m.moveCursor(-1)
		return m, nil

	case "down", "ctrl+n":
		m.moveCursor(1)
		return m, nil

	case "enter":
		if m.inserting || m.st.Loading {
			return m, nil
		}
		m.inserting = true
		return m, m.insertCmd(m.selectedID)

	case "tab":
		if m.selectedID != "" {
			m.c.Indent(m.selectedID)
			m.sync()
		}
		return m, nil

	case "shift+tab":
		if m.selectedID != "" {
			m.c.Outdent(m.selectedID)
			m.sync()
		}
		return m, nil

	case "ctrl+d":
		m.deleteSelected()
		return m, nil

	case "ctrl+t":
		if n, ok := m.selected(); ok && n.HasChildren {
			m.c.ToggleCollapse(n.ID)
			m.sync()
		}
		return m, nil

	case "backspace":
		if m.selectedID != "" && m.input.Value() == "" {
			m.deleteSelected()
			return m, nil
		}
	}

	if m.selectedID == "" {
		return m, nil
	}
	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if after := m.input.Value(); after != before {
		m.c.EditContent(m.selectedID, after)
		m.sync()
	}
	return m, cmd
}

func (m *editorModel) deleteSelected() {
	if m.selectedID == "" {
		return
	}
	if m.c.Delete(m.selectedID) {
		m.sync()
	}
}

func (m *editorModel) moveCursor(delta int) {
	if len(m.st.Display) == 0 {
		return
	}
	next := m.cursor + delta
	if next < 0 || next >= len(m.st.Display) {
		return
	}
	m.selectIndex(next)
}

func (m *editorModel) selectIndex(idx int) {
	m.cursor = idx
	m.selectedID = m.st.Display[idx].ID
	m.input.SetValue(m.st.Display[idx].Text)
	m.input.CursorEnd()
	m.clampOffset()
}

func (m editorModel) selected() (outline.DisplayNode, bool) {
	if m.cursor < 0 || m.cursor >= len(m.st.Display) || m.selectedID == "" {
		return outline.DisplayNode{}, false
	}
	return m.st.Display[m.cursor], true
}

// sync pulls the coordinator's latest state. A pending focus target wins over the current
// selection and is cleared once applied; otherwise the selected node keeps the cursor.
func (m *editorModel) sync() {
	m.st = m.c.Snapshot()
	seq := m.st.Display

	if m.st.FocusID != "" {
		if idx := outline.IndexOf(seq, m.st.FocusID); idx >= 0 {
			m.selectIndex(idx)
			m.c.ClearFocus()
			m.st = m.c.Snapshot()
			return
		}
		// Not visible (e.g. indented under a collapsed parent): drop it and fall through.
		m.c.ClearFocus()
		m.st = m.c.Snapshot()
		seq = m.st.Display
	}

	if len(seq) == 0 {
		m.cursor = 0
		m.selectedID = ""
		m.input.SetValue("")
		m.offset = 0
		return
	}
	if idx := outline.IndexOf(seq, m.selectedID); idx >= 0 {
		// Keep the input as typed; only the position may have moved.
		m.cursor = idx
		m.clampOffset()
		return
	}
	idx := m.cursor
	if idx >= len(seq) {
		idx = len(seq) - 1
	}
	if idx < 0 {
		idx = 0
	}
	m.selectIndex(idx)
}
