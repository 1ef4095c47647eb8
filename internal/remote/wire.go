package remote

import "outline-cli/internal/model"

type navListRequest struct {
	NoteID string `json:"note-id"`
}

type navListResponse struct {
	NavList []navInfo `json:"nav-list"`
}

// navInfo is one outline block as the service sends it.
type navInfo struct {
	ID            string  `json:"id"`
	ParID         *string `json:"parid"`
	SameDeepOrder float64 `json:"same-deep-order"`
	Content       string  `json:"content"`
	NoteID        string  `json:"note-id,omitempty"`
	IsDisplay     *bool   `json:"is-display,omitempty"`
	IsDelete      bool    `json:"is-delete"`
}

func (n navInfo) toNode() model.Node {
	out := model.Node{
		ID:       n.ID,
		NoteID:   n.NoteID,
		OrderKey: n.SameDeepOrder,
		Text:     n.Content,
		Visible:  true,
		Deleted:  n.IsDelete,
	}
	if n.ParID != nil {
		out.ParentID = *n.ParID
	}
	if n.IsDisplay != nil {
		out.Visible = *n.IsDisplay
	}
	return out
}

// navUpsertRequest creates a block when ID is empty, otherwise patches it.
// Nil fields are omitted so the service leaves them unchanged.
type navUpsertRequest struct {
	NoteID    string   `json:"note-id"`
	ID        string   `json:"id,omitempty"`
	ParID     *string  `json:"parid,omitempty"`
	Content   *string  `json:"content,omitempty"`
	IsDelete  *bool    `json:"is-delete,omitempty"`
	IsDisplay *bool    `json:"is-display,omitempty"`
	Order     *float64 `json:"order,omitempty"`
}

type navUpsertResponse struct {
	Success   bool     `json:"success"`
	ID        string   `json:"id,omitempty"`
	Nav       *navInfo `json:"nav,omitempty"`
	BackendTS int64    `json:"backend-ts,omitempty"`
}
