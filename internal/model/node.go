package model

import (
	"strings"
	"time"
)

// NilID is the well-known all-zero identifier some backends use as "no parent".
const NilID = "00000000-0000-0000-0000-000000000000"

type Note struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	RootID    string    `json:"rootId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Node is one outline block. Siblings (same ParentID) are ordered by OrderKey.
type Node struct {
	ID       string  `json:"id"`
	NoteID   string  `json:"noteId,omitempty"`
	ParentID string  `json:"parentId,omitempty"`
	OrderKey float64 `json:"orderKey"`
	Text     string  `json:"text"`
	Visible  bool    `json:"visible"`
	Deleted  bool    `json:"deleted"`

	CreatedAt time.Time `json:"createdAt,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

// NodePatch is a sparse update: nil fields are left unchanged.
type NodePatch struct {
	Text     *string  `json:"text,omitempty"`
	ParentID *string  `json:"parentId,omitempty"`
	OrderKey *float64 `json:"orderKey,omitempty"`
	Deleted  *bool    `json:"deleted,omitempty"`
	Visible  *bool    `json:"visible,omitempty"`
}

func (p NodePatch) IsEmpty() bool {
	return p.Text == nil && p.ParentID == nil && p.OrderKey == nil && p.Deleted == nil && p.Visible == nil
}

// Apply returns a copy of n with the patch applied.
func (p NodePatch) Apply(n Node) Node {
	if p.Text != nil {
		n.Text = *p.Text
	}
	if p.ParentID != nil {
		n.ParentID = *p.ParentID
	}
	if p.OrderKey != nil {
		n.OrderKey = *p.OrderKey
	}
	if p.Deleted != nil {
		n.Deleted = *p.Deleted
	}
	if p.Visible != nil {
		n.Visible = *p.Visible
	}
	return n
}

// IsNoParent reports whether parentID means "no parent" for the node with the given id:
// empty/blank, self-referential, or the all-zero identifier.
func IsNoParent(id, parentID string) bool {
	p := strings.TrimSpace(parentID)
	return p == "" || p == strings.TrimSpace(id) || p == NilID
}

// IsRoot reports whether n is the conceptual root of its note.
func IsRoot(n Node) bool { return IsNoParent(n.ID, n.ParentID) }

func StringPtr(s string) *string  { return &s }
func FloatPtr(f float64) *float64 { return &f }
func BoolPtr(b bool) *bool        { return &b }
