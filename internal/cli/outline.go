package cli

import (
	"strings"

	"outline-cli/internal/model"
	"outline-cli/internal/outline"
	"outline-cli/internal/publish"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

func newShowCmd(app *App) *cobra.Command {
	var collapsed []string
	var render bool
	var width int
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the visible outline of the current note",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openEditor(cmd.Context(), app, outline.Options{})
			if err != nil {
				return writeErr(cmd, err)
			}
			defer c.Close()

			for _, id := range collapsed {
				if id = strings.TrimSpace(id); id != "" {
					c.ToggleCollapse(id)
				}
			}
			st := c.Snapshot()
			if !render {
				return writeOut(cmd, app, newOutlineView(st))
			}
			out, err := renderOutlineMarkdown(st.Display, width)
			if err != nil {
				return writeErr(cmd, err)
			}
			_, err = cmd.OutOrStdout().Write([]byte(out))
			return err
		},
	}
	cmd.Flags().StringSliceVar(&collapsed, "collapsed", nil, "Node ids to show collapsed (comma-separated or repeated)")
	cmd.Flags().BoolVar(&render, "render", false, "Render as styled markdown instead of --format output")
	cmd.Flags().IntVar(&width, "width", 80, "Word-wrap width for --render")
	return cmd
}

// renderOutlineMarkdown styles the outline for a terminal. Plain markdown is used when stdout
// has no color support.
func renderOutlineMarkdown(seq []outline.DisplayNode, width int) (string, error) {
	md := publish.RenderMarkdown(seq, publish.RenderOptions{MarkCollapsed: true})
	style := "dark"
	if termenv.EnvColorProfile() == termenv.Ascii {
		style = "notty"
	} else if !termenv.HasDarkBackground() {
		style = "light"
	}
	if width <= 0 {
		width = 80
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", err
	}
	return r.Render(md)
}

func newInsertCmd(app *App) *cobra.Command {
	var after string
	var text string
	cmd := &cobra.Command{
		Use:   "insert",
		Short: "Insert a node after another node (default: after the last top-level node)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openEditor(cmd.Context(), app, outline.Options{})
			if err != nil {
				return writeErr(cmd, err)
			}
			defer c.Close()

			afterID := strings.TrimSpace(after)
			explicit := afterID != ""
			if !explicit {
				afterID = lastTopLevelID(c.Snapshot().Display)
			}

			var id string
			if afterID == "" {
				id, err = c.InsertFirst(cmd.Context())
			} else {
				id, err = c.InsertAfter(cmd.Context(), afterID)
			}
			if err != nil {
				return writeErr(cmd, err)
			}
			if id == "" {
				if explicit {
					return writeErr(cmd, nodeNotFoundError{id: afterID})
				}
				return writeErr(cmd, errNothingInserted)
			}
			if text != "" {
				c.EditContent(id, text)
				c.FlushEdits()
			}
			return writeOut(cmd, app, newOutlineView(c.Snapshot()).withChanged(true))
		},
	}
	cmd.Flags().StringVar(&after, "after", "", "Insert after this node id")
	cmd.Flags().StringVar(&text, "text", "", "Text of the new node")
	return cmd
}

func lastTopLevelID(seq []outline.DisplayNode) string {
	for i := len(seq) - 1; i >= 0; i-- {
		if seq[i].Depth == 0 {
			return seq[i].ID
		}
	}
	return ""
}

func newEditCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <node-id> <text>",
		Short: "Replace a node's text",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openEditor(cmd.Context(), app, outline.Options{})
			if err != nil {
				return writeErr(cmd, err)
			}
			defer c.Close()

			id := strings.TrimSpace(args[0])
			if !hasLiveNode(c.Snapshot(), id) {
				return writeErr(cmd, nodeNotFoundError{id: id})
			}
			c.EditContent(id, args[1])
			c.FlushEdits()
			return writeOut(cmd, app, newOutlineView(c.Snapshot()).withChanged(true))
		},
	}
}

func hasLiveNode(st outline.State, id string) bool {
	for _, n := range st.Nodes {
		if n.ID == id {
			return !n.Deleted && !model.IsRoot(n)
		}
	}
	return false
}

func newDeleteCmd(app *App) *cobra.Command {
	return newStructureCmd(app, "delete", "Delete a node (its subtree disappears with it)",
		func(c *outline.Coordinator, id string) bool { return c.Delete(id) })
}

func newIndentCmd(app *App) *cobra.Command {
	return newStructureCmd(app, "indent", "Make a node the first child of its previous sibling",
		func(c *outline.Coordinator, id string) bool { return c.Indent(id) })
}

func newOutdentCmd(app *App) *cobra.Command {
	return newStructureCmd(app, "outdent", "Move a node up one level, right after its parent",
		func(c *outline.Coordinator, id string) bool { return c.Outdent(id) })
}

// newStructureCmd wires a single-node structural edit. A no-op (e.g. indenting a first
// sibling) is reported with changed=false rather than an error.
func newStructureCmd(app *App, use, short string, apply func(*outline.Coordinator, string) bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <node-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openEditor(cmd.Context(), app, outline.Options{})
			if err != nil {
				return writeErr(cmd, err)
			}
			id := strings.TrimSpace(args[0])
			if !hasLiveNode(c.Snapshot(), id) {
				return writeErr(cmd, nodeNotFoundError{id: id})
			}
			changed := apply(c, id)
			// Remote writes run in the background; wait so the process doesn't exit first.
			c.Wait()
			return writeOut(cmd, app, newOutlineView(c.Snapshot()).withChanged(changed))
		},
	}
}
