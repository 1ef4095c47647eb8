package store

import (
	"os"
	"path/filepath"
)

const sqliteFileName = "outline.sqlite"

// Store is the local SQLite-backed persistence for notes and their outline nodes.
// Every call opens its own connection; the database tolerates several processes.
type Store struct {
	Dir string
}

func (s Store) Ensure() error {
	return os.MkdirAll(s.Dir, 0o755)
}

func (s Store) sqlitePath() string {
	return filepath.Join(s.Dir, sqliteFileName)
}
