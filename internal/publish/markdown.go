package publish

import (
	"bytes"
	"strings"

	"outline-cli/internal/outline"
)

type RenderOptions struct {
	// Title becomes a level-1 heading when set.
	Title string
	// MarkCollapsed appends a marker to collapsed nodes whose children are hidden.
	MarkCollapsed bool
}

// RenderMarkdown renders a display sequence as a nested bullet list (two spaces per depth).
func RenderMarkdown(seq []outline.DisplayNode, opt RenderOptions) string {
	var buf bytes.Buffer
	writeLn := func(s string) {
		buf.WriteString(s)
		buf.WriteString("\n")
	}

	if t := strings.TrimSpace(opt.Title); t != "" {
		writeLn("# " + t)
		writeLn("")
	}
	for _, n := range seq {
		text := strings.TrimSpace(n.Text)
		// Multi-line blocks continue under their bullet.
		lines := strings.Split(text, "\n")
		indent := strings.Repeat("  ", n.Depth)
		head := indent + "- " + strings.TrimSpace(lines[0])
		if opt.MarkCollapsed && n.IsCollapsed && n.HasChildren {
			head += " …"
		}
		writeLn(strings.TrimRight(head, " "))
		for _, l := range lines[1:] {
			writeLn(indent + "  " + strings.TrimSpace(l))
		}
	}
	return buf.String()
}
