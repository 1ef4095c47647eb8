package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"outline-cli/internal/model"
)

const nodeColumns = `id, note_id, parent_id, order_key, text, visible, deleted, created_at_unixms, updated_at_unixms`

// ListNodes returns every node of a note, deleted ones included, in creation order.
func (s Store) ListNodes(ctx context.Context, noteID string) ([]model.Node, error) {
	noteID = strings.TrimSpace(noteID)
	db, err := s.openSQLite(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	if _, err := findNote(ctx, db, noteID); err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, `SELECT `+nodeColumns+` FROM nodes WHERE note_id = ? ORDER BY rowid`, noteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Node{}
	for rows.Next() {
		n, err := scanNode(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// CreateNode stores a new visible node and returns it with its generated id.
func (s Store) CreateNode(ctx context.Context, noteID, parentID, text string, orderKey float64) (model.Node, error) {
	noteID = strings.TrimSpace(noteID)
	parentID = normalizeParent(parentID)

	db, err := s.openSQLite(ctx)
	if err != nil {
		return model.Node{}, err
	}
	defer db.Close()

	if _, err := findNote(ctx, db, noteID); err != nil {
		return model.Node{}, err
	}
	if parentID != "" {
		if _, err := findNode(ctx, db, noteID, parentID); err != nil {
			return model.Node{}, err
		}
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	n := model.Node{
		ID:        newID(),
		NoteID:    noteID,
		ParentID:  parentID,
		OrderKey:  orderKey,
		Text:      text,
		Visible:   true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	// Autocommit writes only: background updates for the same note may be running.
	if _, err := db.ExecContext(ctx, `INSERT INTO nodes(`+nodeColumns+`) VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		n.ID, n.NoteID, n.ParentID, n.OrderKey, n.Text, boolToInt(n.Visible), boolToInt(n.Deleted), now.UnixMilli(), now.UnixMilli()); err != nil {
		return model.Node{}, err
	}
	touchNote(ctx, db, noteID, now)
	return n, nil
}

// UpdateNode applies a sparse patch. Fields left nil keep their stored values.
func (s Store) UpdateNode(ctx context.Context, noteID, nodeID string, patch model.NodePatch) error {
	noteID = strings.TrimSpace(noteID)
	nodeID = strings.TrimSpace(nodeID)
	if patch.IsEmpty() {
		return nil
	}

	var sets []string
	var args []any
	if patch.ParentID != nil {
		p := normalizeParent(*patch.ParentID)
		if p == nodeID {
			return errors.New("node cannot be its own parent")
		}
		sets = append(sets, "parent_id = ?")
		args = append(args, p)
		patch.ParentID = &p
	}
	if patch.OrderKey != nil {
		sets = append(sets, "order_key = ?")
		args = append(args, *patch.OrderKey)
	}
	if patch.Text != nil {
		sets = append(sets, "text = ?")
		args = append(args, *patch.Text)
	}
	if patch.Visible != nil {
		sets = append(sets, "visible = ?")
		args = append(args, boolToInt(*patch.Visible))
	}
	if patch.Deleted != nil {
		sets = append(sets, "deleted = ?")
		args = append(args, boolToInt(*patch.Deleted))
	}

	db, err := s.openSQLite(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	if patch.ParentID != nil && *patch.ParentID != "" {
		if _, err := findNode(ctx, db, noteID, *patch.ParentID); err != nil {
			return err
		}
	}

	now := time.Now().UTC()
	sets = append(sets, "updated_at_unixms = ?")
	args = append(args, now.UnixMilli(), nodeID, noteID)
	res, err := db.ExecContext(ctx, `UPDATE nodes SET `+strings.Join(sets, ", ")+` WHERE id = ? AND note_id = ?`, args...)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errNotFound("node", nodeID)
	}
	touchNote(ctx, db, noteID, now)
	return nil
}

// touchNote bumps the note's updated timestamp. Best-effort.
func touchNote(ctx context.Context, db *sql.DB, noteID string, now time.Time) {
	_, _ = db.ExecContext(ctx, `UPDATE notes SET updated_at_unixms = ? WHERE id = ?`, now.UnixMilli(), noteID)
}

func findNode(ctx context.Context, q queryer, noteID, nodeID string) (model.Node, error) {
	row := q.QueryRowContext(ctx, `SELECT `+nodeColumns+` FROM nodes WHERE id = ? AND note_id = ?`, nodeID, noteID)
	n, err := scanNode(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Node{}, errNotFound("node", nodeID)
	}
	return n, err
}

func scanNode(sc scanner) (model.Node, error) {
	var n model.Node
	var visible, deleted int
	var created, updated int64
	if err := sc.Scan(&n.ID, &n.NoteID, &n.ParentID, &n.OrderKey, &n.Text, &visible, &deleted, &created, &updated); err != nil {
		return model.Node{}, err
	}
	n.Visible = visible != 0
	n.Deleted = deleted != 0
	n.CreatedAt = time.UnixMilli(created).UTC()
	n.UpdatedAt = time.UnixMilli(updated).UTC()
	return n, nil
}
