package publish

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"outline-cli/internal/model"
	"outline-cli/internal/outline"
)

type WriteOptions struct {
	Overwrite bool
}

type WriteResult struct {
	Written []string `json:"written"`
}

// WriteNote writes <toDir>/notes/<note-id>.md with the note's full (uncollapsed) outline.
func WriteNote(note model.Note, seq []outline.DisplayNode, toDir string, opt WriteOptions) (WriteResult, error) {
	if strings.TrimSpace(note.ID) == "" {
		return WriteResult{}, errors.New("missing note id")
	}
	toDir = strings.TrimSpace(toDir)
	if toDir == "" {
		return WriteResult{}, errors.New("missing --to")
	}
	toDir = filepath.Clean(toDir)

	md := RenderMarkdown(seq, RenderOptions{Title: note.Title})

	outDir := filepath.Join(toDir, "notes")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return WriteResult{}, err
	}
	outPath := filepath.Join(outDir, note.ID+".md")
	if err := writeFile(outPath, []byte(md), opt.Overwrite); err != nil {
		return WriteResult{}, err
	}
	return WriteResult{Written: []string{outPath}}, nil
}

func writeFile(path string, b []byte, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return errors.New("file exists (use --overwrite): " + path)
		}
	}
	return os.WriteFile(path, b, 0o644)
}
