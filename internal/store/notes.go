package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"outline-cli/internal/model"
)

// CreateNote creates a note together with its (never displayed) root node.
func (s Store) CreateNote(ctx context.Context, title string) (model.Note, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return model.Note{}, errors.New("missing note title")
	}
	db, err := s.openSQLite(ctx)
	if err != nil {
		return model.Note{}, err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return model.Note{}, err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC().Truncate(time.Millisecond)
	n := model.Note{
		ID:        newID(),
		Title:     title,
		RootID:    newID(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO notes(id, title, root_id, created_at_unixms, updated_at_unixms) VALUES(?, ?, ?, ?, ?)`,
		n.ID, n.Title, n.RootID, now.UnixMilli(), now.UnixMilli()); err != nil {
		return model.Note{}, err
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO nodes(id, note_id, parent_id, order_key, text, visible, deleted, created_at_unixms, updated_at_unixms)
		VALUES(?, ?, '', 0, ?, 1, 0, ?, ?)`,
		n.RootID, n.ID, n.Title, now.UnixMilli(), now.UnixMilli()); err != nil {
		return model.Note{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Note{}, err
	}
	return n, nil
}

func (s Store) ListNotes(ctx context.Context) ([]model.Note, error) {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, `SELECT id, title, root_id, created_at_unixms, updated_at_unixms FROM notes WHERE deleted = 0 ORDER BY created_at_unixms, rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s Store) FindNote(ctx context.Context, id string) (model.Note, error) {
	id = strings.TrimSpace(id)
	db, err := s.openSQLite(ctx)
	if err != nil {
		return model.Note{}, err
	}
	defer db.Close()
	return findNote(ctx, db, id)
}

// DeleteNote soft-deletes a note. Its nodes are kept but the note no longer resolves.
func (s Store) DeleteNote(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	db, err := s.openSQLite(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	now := time.Now().UTC().UnixMilli()
	res, err := db.ExecContext(ctx, `UPDATE notes SET deleted = 1, updated_at_unixms = ? WHERE id = ? AND deleted = 0`, now, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errNotFound("note", id)
	}
	return nil
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func findNote(ctx context.Context, q queryer, id string) (model.Note, error) {
	row := q.QueryRowContext(ctx, `SELECT id, title, root_id, created_at_unixms, updated_at_unixms FROM notes WHERE id = ? AND deleted = 0`, id)
	n, err := scanNote(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Note{}, errNotFound("note", id)
	}
	return n, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanNote(sc scanner) (model.Note, error) {
	var n model.Note
	var created, updated int64
	if err := sc.Scan(&n.ID, &n.Title, &n.RootID, &created, &updated); err != nil {
		return model.Note{}, err
	}
	n.CreatedAt = time.UnixMilli(created).UTC()
	n.UpdatedAt = time.UnixMilli(updated).UTC()
	return n, nil
}
