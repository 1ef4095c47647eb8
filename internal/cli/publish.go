package cli

import (
	"outline-cli/internal/outline"
	"outline-cli/internal/publish"

	"github.com/spf13/cobra"
)

func newPublishCmd(app *App) *cobra.Command {
	var to string
	var overwrite bool
	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Write the current note as a markdown file (<to>/notes/<note-id>.md)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.localStore()
			if err != nil {
				return writeErr(cmd, err)
			}
			noteID, err := app.currentNoteID()
			if err != nil {
				return writeErr(cmd, err)
			}
			note, err := s.FindNote(cmd.Context(), noteID)
			if err != nil {
				return writeErr(cmd, err)
			}
			nodes, err := s.ListNodes(cmd.Context(), note.ID)
			if err != nil {
				return writeErr(cmd, err)
			}
			// Published files always carry the full outline.
			seq := outline.BuildDisplaySequence(nodes, note.RootID, nil)
			res, err := publish.WriteNote(note, seq, to, publish.WriteOptions{Overwrite: overwrite})
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, res)
		},
	}
	cmd.Flags().StringVar(&to, "to", "", "Output directory")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite an existing file")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}
