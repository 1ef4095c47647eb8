package tui

import (
	"context"
	"time"

	"outline-cli/internal/outline"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

type Options struct {
	Title    string
	Debounce time.Duration
	Logger   *zap.Logger

	// StartAt selects this node once the outline has loaded, if it is visible.
	StartAt string
	// OnExit receives the node selected when the editor closed ("" for none).
	OnExit func(nodeID string)
}

// Run edits one note interactively until the user quits. Pending edits are flushed and
// background writes awaited before it returns.
func Run(ctx context.Context, p outline.Persistence, noteID string, opts Options) error {
	applyThemePreference()
	applyColorProfilePreference()
	applyGlyphPreference()

	changes := make(chan struct{}, 1)
	c := outline.NewCoordinator(p, noteID, outline.Options{
		Debounce: opts.Debounce,
		Logger:   opts.Logger,
		OnChange: func(outline.State) { notify(changes) },
	})
	defer c.Close()

	m := newEditorModel(ctx, c, opts.Title, changes)
	m.startAt = opts.StartAt
	final, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil {
		return err
	}
	if em, ok := final.(editorModel); ok && opts.OnExit != nil {
		opts.OnExit(em.selectedID)
	}
	return nil
}

// notify never blocks: one pending signal is enough since the model re-reads the snapshot.
func notify(ch chan<- struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}
