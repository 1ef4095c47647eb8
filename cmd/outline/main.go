package main

import (
	"os"
	"strings"

	"outline-cli/internal/cli"

	"github.com/google/uuid"
	_ "github.com/joho/godotenv/autoload"
)

func isNoteID(s string) bool {
	_, err := uuid.Parse(strings.TrimSpace(s))
	return err == nil
}

func rewriteDirectNoteArgs(argv []string) []string {
	// Convenience: `outline <note-id>` works like `outline tui --note <note-id>`.
	//
	// Cobra treats the first non-flag token as a subcommand, so we rewrite argv before parsing.
	// Persistent flags may come first (e.g. `outline --dir ... <note-id>`), so we look for the
	// first positional token rather than argv[1].
	if len(argv) < 2 {
		return argv
	}

	valueFlags := map[string]bool{
		"--dir":          true,
		"--backend":      true,
		"--remote-url":   true,
		"--remote-token": true,
		"--note":         true,
		"--format":       true,
		"--log-level":    true,
	}

	rewrite := func(i int) []string {
		out := make([]string, 0, len(argv)+2)
		out = append(out, argv[:i]...)
		out = append(out, "tui", "--note", strings.TrimSpace(argv[i]))
		return append(out, argv[i+1:]...)
	}

	for i := 1; i < len(argv); i++ {
		a := strings.TrimSpace(argv[i])
		if a == "" {
			continue
		}
		if a == "--" {
			if i+1 < len(argv) && isNoteID(argv[i+1]) {
				out := append([]string{}, argv[:i]...)
				return append(out, "tui", "--note", strings.TrimSpace(argv[i+1]))
			}
			return argv
		}
		if strings.HasPrefix(a, "-") {
			if !strings.Contains(a, "=") && valueFlags[a] {
				i++
			}
			continue
		}
		if isNoteID(a) {
			return rewrite(i)
		}
		return argv
	}
	return argv
}

func main() {
	os.Args = rewriteDirectNoteArgs(os.Args)

	cmd := cli.NewRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
