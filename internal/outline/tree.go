package outline

import (
	"sort"
	"strings"

	"outline-cli/internal/model"
)

// OrderGap is how far past the last sibling a new end-of-list key is placed.
const OrderGap = 200.0

// DisplayNode is one row of the flattened outline.
type DisplayNode struct {
	ID       string  `json:"id"`
	ParentID string  `json:"parentId,omitempty"`
	Text     string  `json:"text"`
	OrderKey float64 `json:"orderKey"`
	Visible  bool    `json:"visible"`

	Depth       int  `json:"depth"`
	HasChildren bool `json:"hasChildren"`
	IsCollapsed bool `json:"isCollapsed"`
}

// Direction selects which way FindSibling scans.
type Direction int

const (
	Previous Direction = iota
	Next
)

// parentKey maps every "no parent" spelling onto the empty bucket.
func parentKey(n model.Node) string {
	if model.IsRoot(n) {
		return ""
	}
	return strings.TrimSpace(n.ParentID)
}

func (d DisplayNode) parentKey() string {
	return parentKey(model.Node{ID: d.ID, ParentID: d.ParentID})
}

// BuildDisplaySequence flattens nodes into a depth-annotated pre-order sequence starting at
// the children of rootID. Deleted nodes (and therefore their subtrees) are skipped, as are the
// descendants of collapsed nodes. An empty rootID starts from the nodes that have no parent.
func BuildDisplaySequence(nodes []model.Node, rootID string, collapsed map[string]bool) []DisplayNode {
	if len(nodes) == 0 {
		return nil
	}

	// Build parent -> children buckets (input order preserved for stable tie-breaks).
	children := map[string][]model.Node{}
	for _, n := range nodes {
		if n.Deleted {
			continue
		}
		k := parentKey(n)
		children[k] = append(children[k], n)
	}
	for k := range children {
		sibs := children[k]
		sort.SliceStable(sibs, func(i, j int) bool { return sibs[i].OrderKey < sibs[j].OrderKey })
	}

	var out []DisplayNode
	var walk func(parentID string, depth int)
	walk = func(parentID string, depth int) {
		for _, n := range children[parentID] {
			isCollapsed := collapsed[n.ID]
			out = append(out, DisplayNode{
				ID:          n.ID,
				ParentID:    n.ParentID,
				Text:        n.Text,
				OrderKey:    n.OrderKey,
				Visible:     n.Visible,
				Depth:       depth,
				HasChildren: len(children[n.ID]) > 0,
				IsCollapsed: isCollapsed,
			})
			if isCollapsed {
				continue
			}
			walk(n.ID, depth+1)
		}
	}
	walk(strings.TrimSpace(rootID), 0)
	return out
}

// AllocateOrderKey returns the midpoint between prev and next. A nil prev counts as 0; a nil
// next is synthesized as prev+OrderGap.
//
// This is plain float bisection: enough repeated inserts at one position will eventually
// return one of the bounds.
func AllocateOrderKey(prev, next *float64) float64 {
	p := 0.0
	if prev != nil {
		p = *prev
	}
	n := p + OrderGap
	if next != nil {
		n = *next
	}
	return p + (n-p)/2
}

// FindSibling scans seq from index in dir and returns the first entry that shares the
// current entry's parent and depth. The scan stops at the first entry shallower than the
// current one: a pre-order sequence keeps each subtree contiguous, so a shallower entry
// means the sibling group has ended.
func FindSibling(seq []DisplayNode, index int, dir Direction) (DisplayNode, bool) {
	if index < 0 || index >= len(seq) {
		return DisplayNode{}, false
	}
	cur := seq[index]
	step := 1
	if dir == Previous {
		step = -1
	}
	for i := index + step; i >= 0 && i < len(seq); i += step {
		n := seq[i]
		if n.Depth < cur.Depth {
			break
		}
		if n.Depth == cur.Depth && n.parentKey() == cur.parentKey() {
			return n, true
		}
	}
	return DisplayNode{}, false
}

// IndexOf returns the position of id in seq, or -1.
func IndexOf(seq []DisplayNode, id string) int {
	for i, n := range seq {
		if n.ID == id {
			return i
		}
	}
	return -1
}
