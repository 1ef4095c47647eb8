package cli

import (
	"os"
	"path/filepath"

	"outline-cli/internal/store"
	"outline-cli/internal/tui"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newTUICmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Edit the current note interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, app)
		},
	}
}

func runTUI(cmd *cobra.Command, app *App) error {
	noteID, err := app.currentNoteID()
	if err != nil {
		return writeErr(cmd, err)
	}
	p, err := app.persistence()
	if err != nil {
		return writeErr(cmd, err)
	}

	// The screen belongs to the editor; logs go to a file next to the config.
	log := zap.NewNop()
	if dir, err := store.ConfigDir(); err == nil && os.MkdirAll(dir, 0o755) == nil {
		if l, err := newLogger(app.cfg.LogLevel, filepath.Join(dir, "outline.log")); err == nil {
			log = l
			defer func() { _ = l.Sync() }()
		}
	}

	title := noteID
	if app.cfg.Backend == store.BackendSQLite {
		s, err := app.localStore()
		if err == nil {
			if n, err := s.FindNote(cmd.Context(), noteID); err == nil {
				title = n.Title
			}
		}
	}

	opts := tui.Options{
		Title:    title,
		Debounce: app.cfg.Debounce,
		Logger:   log,
	}
	// The last cursor position is kept locally whatever the backend.
	if dir, err := app.cfg.DataDir(); err == nil {
		ui := store.Store{Dir: dir}
		if st, err := ui.LoadTUIState(); err == nil {
			opts.StartAt = st.LastNodeID[noteID]
		}
		opts.OnExit = func(nodeID string) {
			if err := ui.RememberNode(noteID, nodeID); err != nil {
				log.Warn("save tui state failed", zap.Error(err))
			}
		}
	}
	return tui.Run(cmd.Context(), p, noteID, opts)
}
