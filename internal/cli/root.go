package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"outline-cli/internal/format"
	"outline-cli/internal/outline"
	"outline-cli/internal/remote"
	"outline-cli/internal/store"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type App struct {
	Dir         string
	Backend     string
	RemoteURL   string
	RemoteToken string
	NoteID      string
	PrettyJSON  bool
	Format      string
	LogLevel    string

	cfg *store.Config
	log *zap.Logger
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "outline",
		Short:        "Outline note editor (CLI + TUI)",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Create a note and make it current
  outline notes create "Weekly plan" --use

  # Start the interactive editor on the current note
  outline

  # Scriptable edits
  outline insert --text "Buy milk"
  outline indent <node-id>
  outline show --format text
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive editor.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(cmd, app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return app.init(cmd)
	}
	cmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		if app.log != nil {
			_ = app.log.Sync()
		}
		return nil
	}

	cmd.PersistentFlags().StringVar(&app.Dir, "dir", envOr("OUTLINE_DIR", ""), "Path to the local store dir (overrides config)")
	cmd.PersistentFlags().StringVar(&app.Backend, "backend", envOr("OUTLINE_BACKEND", ""), "Persistence backend (sqlite|http)")
	cmd.PersistentFlags().StringVar(&app.RemoteURL, "remote-url", envOr("OUTLINE_REMOTE_URL", ""), "Base URL of the note service (http backend)")
	cmd.PersistentFlags().StringVar(&app.RemoteToken, "remote-token", envOr("OUTLINE_REMOTE_TOKEN", ""), "Bearer token for the note service")
	cmd.PersistentFlags().StringVar(&app.NoteID, "note", envOr("OUTLINE_NOTE", ""), "Note id (default: currentNote from config)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("OUTLINE_FORMAT", "json"), "Output format (json|text)")
	cmd.PersistentFlags().StringVar(&app.LogLevel, "log-level", envOr("OUTLINE_LOG_LEVEL", ""), "Log level (debug|info|warn|error)")

	cmd.AddCommand(newNotesCmd(app))
	cmd.AddCommand(newShowCmd(app))
	cmd.AddCommand(newInsertCmd(app))
	cmd.AddCommand(newEditCmd(app))
	cmd.AddCommand(newDeleteCmd(app))
	cmd.AddCommand(newIndentCmd(app))
	cmd.AddCommand(newOutdentCmd(app))
	cmd.AddCommand(newPublishCmd(app))
	cmd.AddCommand(newTUICmd(app))

	return cmd
}

// init resolves config (file < env < flags) and builds the logger.
func (app *App) init(cmd *cobra.Command) error {
	cfg, err := store.LoadConfig()
	if err != nil {
		return writeErr(cmd, fmt.Errorf("load config: %w", err))
	}
	if app.Dir != "" {
		cfg.Dir = app.Dir
	}
	if app.Backend != "" {
		cfg.Backend = strings.ToLower(strings.TrimSpace(app.Backend))
	}
	if app.RemoteURL != "" {
		cfg.Remote.BaseURL = app.RemoteURL
	}
	if app.RemoteToken != "" {
		cfg.Remote.Token = app.RemoteToken
	}
	if app.LogLevel != "" {
		cfg.LogLevel = strings.ToLower(strings.TrimSpace(app.LogLevel))
	}
	if err := cfg.Validate(); err != nil {
		return writeErr(cmd, fmt.Errorf("config: %w", err))
	}
	app.cfg = cfg

	log, err := newLogger(cfg.LogLevel, "stderr")
	if err != nil {
		return writeErr(cmd, err)
	}
	app.log = log
	return nil
}

func (app *App) localStore() (store.Store, error) {
	if app.cfg.Backend != store.BackendSQLite {
		return store.Store{}, errors.New("notes are managed by the remote service; this command needs --backend sqlite")
	}
	dir, err := app.cfg.DataDir()
	if err != nil {
		return store.Store{}, err
	}
	return store.Store{Dir: dir}, nil
}

func (app *App) persistence() (outline.Persistence, error) {
	switch app.cfg.Backend {
	case store.BackendHTTP:
		return remote.New(app.cfg.Remote.BaseURL, app.cfg.Remote.Token), nil
	default:
		return app.localStore()
	}
}

func (app *App) currentNoteID() (string, error) {
	if id := strings.TrimSpace(app.NoteID); id != "" {
		return id, nil
	}
	if id := strings.TrimSpace(app.cfg.CurrentNote); id != "" {
		return id, nil
	}
	return "", errors.New("no current note; run `outline notes use <note-id>` (or pass --note)")
}

// openEditor builds a coordinator for the current note and loads it.
func openEditor(ctx context.Context, app *App, opts outline.Options) (*outline.Coordinator, error) {
	noteID, err := app.currentNoteID()
	if err != nil {
		return nil, err
	}
	p, err := app.persistence()
	if err != nil {
		return nil, err
	}
	if opts.Debounce <= 0 {
		opts.Debounce = app.cfg.Debounce
	}
	if opts.Logger == nil {
		opts.Logger = app.log
	}
	c := outline.NewCoordinator(p, noteID, opts)
	if err := c.Load(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
