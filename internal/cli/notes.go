package cli

import (
	"errors"
	"strings"

	"outline-cli/internal/store"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newNotesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notes",
		Short: "Manage notes (local store)",
	}
	cmd.AddCommand(newNotesCreateCmd(app))
	cmd.AddCommand(newNotesListCmd(app))
	cmd.AddCommand(newNotesUseCmd(app))
	cmd.AddCommand(newNotesDeleteCmd(app))
	return cmd
}

func newNotesCreateCmd(app *App) *cobra.Command {
	var use bool
	cmd := &cobra.Command{
		Use:   "create <title>",
		Short: "Create a note with an empty outline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := strings.TrimSpace(args[0])
			if title == "" {
				return writeErr(cmd, errors.New("missing title"))
			}
			s, err := app.localStore()
			if err != nil {
				return writeErr(cmd, err)
			}
			n, err := s.CreateNote(cmd.Context(), title)
			if err != nil {
				return writeErr(cmd, err)
			}
			current := app.cfg.CurrentNote
			if use {
				if err := app.setCurrentNote(n.ID); err != nil {
					return writeErr(cmd, err)
				}
				current = n.ID
			}
			app.log.Info("note created", zap.String("note_id", n.ID))
			return writeOut(cmd, app, newNoteView(n, current))
		},
	}
	cmd.Flags().BoolVar(&use, "use", false, "Make the new note the current note")
	return cmd
}

func newNotesListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List notes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.localStore()
			if err != nil {
				return writeErr(cmd, err)
			}
			notes, err := s.ListNotes(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			out := noteListView{Notes: make([]noteView, 0, len(notes))}
			for _, n := range notes {
				out.Notes = append(out.Notes, newNoteView(n, app.cfg.CurrentNote))
			}
			return writeOut(cmd, app, out)
		},
	}
}

func newNotesUseCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "use <note-id>",
		Short: "Set the current note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(args[0])
			// The local store can check the id; the remote service is trusted as-is.
			if app.cfg.Backend == store.BackendSQLite {
				s, err := app.localStore()
				if err != nil {
					return writeErr(cmd, err)
				}
				n, err := s.FindNote(cmd.Context(), id)
				if err != nil {
					return writeErr(cmd, err)
				}
				if err := app.setCurrentNote(n.ID); err != nil {
					return writeErr(cmd, err)
				}
				return writeOut(cmd, app, newNoteView(n, n.ID))
			}
			if err := app.setCurrentNote(id); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"currentNote": id})
		},
	}
}

func newNotesDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <note-id>",
		Short: "Delete a note (it stops showing up in notes list)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.localStore()
			if err != nil {
				return writeErr(cmd, err)
			}
			n, err := s.FindNote(cmd.Context(), strings.TrimSpace(args[0]))
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := s.DeleteNote(cmd.Context(), n.ID); err != nil {
				return writeErr(cmd, err)
			}
			if app.cfg.CurrentNote == n.ID {
				if err := app.setCurrentNote(""); err != nil {
					return writeErr(cmd, err)
				}
			}
			app.log.Info("note deleted", zap.String("note_id", n.ID))
			v := newNoteView(n, "")
			v.Deleted = true
			return writeOut(cmd, app, v)
		},
	}
}

// setCurrentNote persists currentNote to the config file. Flag/env overrides are not written back.
func (app *App) setCurrentNote(id string) error {
	cfg, err := store.LoadConfig()
	if err != nil {
		return err
	}
	cfg.CurrentNote = id
	if err := store.SaveConfig(cfg); err != nil {
		return err
	}
	app.cfg.CurrentNote = id
	return nil
}
