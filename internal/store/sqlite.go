package store

import (
	"context"
	"database/sql"
	"strings"

	_ "modernc.org/sqlite"
)

func (s Store) openSQLite(ctx context.Context) (*sql.DB, error) {
	if err := s.Ensure(); err != nil {
		return nil, err
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", s.sqlitePath())
	if err != nil {
		return nil, err
	}
	// Pragmas below are per-connection.
	db.SetMaxOpenConns(1)
	// WAL enables one writer + many readers (CLI and TUI may run side by side);
	// busy_timeout helps avoid "database is locked" flakiness.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := migrateSQLite(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func migrateSQLite(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS notes (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			root_id TEXT NOT NULL,
			deleted INTEGER NOT NULL DEFAULT 0,
			created_at_unixms INTEGER NOT NULL,
			updated_at_unixms INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS nodes (
			id TEXT PRIMARY KEY,
			note_id TEXT NOT NULL REFERENCES notes(id),
			parent_id TEXT NOT NULL,
			order_key REAL NOT NULL,
			text TEXT NOT NULL,
			visible INTEGER NOT NULL,
			deleted INTEGER NOT NULL,
			created_at_unixms INTEGER NOT NULL,
			updated_at_unixms INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_nodes_note ON nodes(note_id);`,
		`CREATE INDEX IF NOT EXISTS idx_nodes_parent ON nodes(note_id, parent_id);`,
	}
	for _, st := range stmts {
		if _, err := db.ExecContext(ctx, st); err != nil {
			return err
		}
	}
	// Stores created before notes could be deleted.
	return ensureColumn(ctx, db, "notes", "deleted", "INTEGER NOT NULL DEFAULT 0")
}

func ensureColumn(ctx context.Context, db *sql.DB, table, column, decl string) error {
	rows, err := db.QueryContext(ctx, `SELECT name FROM pragma_table_info(?)`, table)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return err
		}
		if name == column {
			return nil
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	_ = rows.Close()
	_, err = db.ExecContext(ctx, `ALTER TABLE `+table+` ADD COLUMN `+column+` `+decl)
	return err
}

// normalizeParent stores every "no parent" spelling as the empty string.
func normalizeParent(parentID string) string {
	p := strings.TrimSpace(parentID)
	if p == nilID {
		return ""
	}
	return p
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
