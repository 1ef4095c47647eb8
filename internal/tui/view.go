package tui

import (
	"strings"

	"outline-cli/internal/outline"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

const (
	// header line + blank line above the rows, blank + help line below.
	chromeLines = 4
	indentWidth = 2
)

func (m editorModel) View() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")

	rows := m.visibleRows()
	switch {
	case m.st.Loading && len(m.st.Display) == 0:
		b.WriteString(styleMuted().Render("Loading…"))
	case len(m.st.Display) == 0:
		b.WriteString(styleMuted().Render("Empty outline. Press enter to add the first node."))
	default:
		for i, line := range rows {
			if i > 0 {
				b.WriteString("\n")
			}
			b.WriteString(line)
		}
	}

	b.WriteString("\n\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m editorModel) renderHeader() string {
	title := m.title
	if title == "" {
		title = m.st.NoteID
	}
	head := styleTitle().Render(title)
	if m.st.Err != "" {
		head += "  " + styleError().Render(m.st.Err)
	} else if m.status != "" {
		head += "  " + styleMuted().Render(m.status)
	}
	return truncateLine(head, m.width)
}

func (m editorModel) renderFooter() string {
	help := "enter new · tab/shift+tab indent · ctrl+t fold · ctrl+d delete · esc quit"
	return styleMuted().Render(truncateLine(help, m.width))
}

// visibleRows renders the window of rows that fits the terminal height.
func (m editorModel) visibleRows() []string {
	seq := m.st.Display
	end := m.offset + m.rowsHeight()
	if end > len(seq) {
		end = len(seq)
	}
	out := make([]string, 0, end-m.offset)
	for i := m.offset; i < end; i++ {
		out = append(out, m.renderRow(seq[i], i == m.cursor && seq[i].ID == m.selectedID))
	}
	return out
}

func (m editorModel) renderRow(n outline.DisplayNode, focused bool) string {
	lead := strings.Repeat(" ", n.Depth*indentWidth) + twisty(n) + " "
	if focused {
		line := lead + renderInputLine(m.input.View())
		return fillRow(styleSelected(), line, m.width)
	}
	text := strings.ReplaceAll(n.Text, "\n", " ")
	if text == "" {
		text = styleMuted().Render("(empty)")
	}
	return truncateLine(lead+text, m.width)
}

func twisty(n outline.DisplayNode) string {
	switch {
	case n.HasChildren && n.IsCollapsed:
		return glyphTwistyCollapsed()
	case n.HasChildren:
		return glyphTwistyExpanded()
	default:
		return glyphBullet()
	}
}

// renderInputLine keeps the text input on a single visual line.
func renderInputLine(inputView string) string {
	inputView = strings.ReplaceAll(inputView, "\n", " ")
	return strings.ReplaceAll(inputView, "\r", " ")
}

// fillRow pads the row so the selection background covers the full width.
func fillRow(style lipgloss.Style, line string, width int) string {
	if width <= 0 {
		return style.Render(line)
	}
	w := xansi.StringWidth(line)
	if w > width {
		// Terminate ANSI styling to prevent bleed.
		return xansi.Cut(line, 0, width) + "\x1b[0m"
	}
	return style.Render(line + strings.Repeat(" ", width-w))
}

func truncateLine(s string, width int) string {
	if width <= 0 || xansi.StringWidth(s) <= width {
		return s
	}
	return xansi.Truncate(s, width, glyphEllipsis())
}

func (m editorModel) rowsHeight() int {
	h := m.height - chromeLines
	if h < 1 {
		h = 1
	}
	return h
}

func (m editorModel) rowTextWidth() int {
	w := m.width - 4
	if n, ok := m.selected(); ok {
		w -= n.Depth * indentWidth
	}
	if w < 10 {
		w = 10
	}
	return w
}

// clampOffset scrolls just enough to keep the cursor row on screen.
func (m *editorModel) clampOffset() {
	h := m.rowsHeight()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+h {
		m.offset = m.cursor - h + 1
	}
	if limit := len(m.st.Display) - h; m.offset > limit {
		m.offset = limit
	}
	if m.offset < 0 {
		m.offset = 0
	}
}
