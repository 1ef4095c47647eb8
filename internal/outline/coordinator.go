package outline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"outline-cli/internal/model"

	"go.uber.org/zap"
)

const (
	// DefaultDebounce is the quiet period after the last edit to a node before it is sent.
	DefaultDebounce = 500 * time.Millisecond

	// FirstChildOrderKey is the key an indented node gets under its new parent.
	FirstChildOrderKey = 1.0

	// OutdentOrderOffset places an outdented node right after its former parent.
	OutdentOrderOffset = 0.5
)

// Persistence is the remote side of an outline. Implementations do the actual I/O.
type Persistence interface {
	ListNodes(ctx context.Context, noteID string) ([]model.Node, error)
	CreateNode(ctx context.Context, noteID, parentID, text string, orderKey float64) (model.Node, error)
	UpdateNode(ctx context.Context, noteID, nodeID string, patch model.NodePatch) error
}

// State is the externally visible state of one note being edited.
type State struct {
	NoteID    string          `json:"noteId"`
	RootID    string          `json:"rootId,omitempty"`
	Nodes     []model.Node    `json:"-"`
	Display   []DisplayNode   `json:"display"`
	Loading   bool            `json:"loading"`
	Err       string          `json:"error,omitempty"`
	FocusID   string          `json:"focusId,omitempty"`
	Collapsed map[string]bool `json:"collapsed,omitempty"`
}

type Options struct {
	Debounce time.Duration
	Logger   *zap.Logger

	// OnChange is called (outside the coordinator's lock) after every state change.
	OnChange func(State)
}

// Coordinator owns the in-memory outline of one note. Local state changes are applied
// synchronously; remote writes are fire-and-forget except for Load and inserts, which wait
// for the collaborator before touching visible state.
type Coordinator struct {
	store    Persistence
	noteID   string
	debounce time.Duration
	log      *zap.Logger
	onChange func(State)
	ctx      context.Context

	mu    sync.Mutex
	st    State
	saves map[string]*pendingSave

	// Tracks debounced saves and background remote calls.
	inflight sync.WaitGroup
}

type pendingSave struct {
	timer *time.Timer
	text  string
}

func NewCoordinator(store Persistence, noteID string, opts Options) *Coordinator {
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	noteID = strings.TrimSpace(noteID)
	return &Coordinator{
		store:    store,
		noteID:   noteID,
		debounce: debounce,
		log:      log.With(zap.String("note_id", noteID)),
		onChange: opts.OnChange,
		ctx:      context.Background(),
		st:       State{NoteID: noteID, Collapsed: map[string]bool{}},
		saves:    map[string]*pendingSave{},
	}
}

// Snapshot returns the current state. Slices and maps in it are never mutated afterwards.
func (c *Coordinator) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.st
}

// update applies fn to the state, recomputes the display sequence and notifies OnChange.
func (c *Coordinator) update(fn func(st *State)) {
	c.mu.Lock()
	fn(&c.st)
	c.st.Display = BuildDisplaySequence(c.st.Nodes, c.st.RootID, c.st.Collapsed)
	snap := c.st
	c.mu.Unlock()
	if c.onChange != nil {
		c.onChange(snap)
	}
}

// Load replaces the node collection with the collaborator's copy. On failure the previous
// nodes are kept and the error is recorded in the state.
func (c *Coordinator) Load(ctx context.Context) error {
	c.update(func(st *State) {
		st.Loading = true
		st.Err = ""
	})

	nodes, err := c.store.ListNodes(ctx, c.noteID)
	if err != nil {
		c.log.Error("load outline failed", zap.Error(err))
		msg := strings.TrimSpace(err.Error())
		if msg == "" {
			msg = "Failed to load outline"
		}
		c.update(func(st *State) {
			st.Loading = false
			st.Err = msg
		})
		return &LoadError{NoteID: c.noteID, Err: err}
	}

	rootID := ""
	for _, n := range nodes {
		if model.IsRoot(n) {
			rootID = n.ID
			break
		}
	}
	c.update(func(st *State) {
		st.Nodes = nodes
		st.RootID = rootID
		st.Loading = false
	})
	return nil
}

// EditContent updates a node's text locally and schedules a debounced remote save.
// A newer edit to the same node replaces the pending save.
func (c *Coordinator) EditContent(nodeID, text string) {
	nodeID = strings.TrimSpace(nodeID)
	c.update(func(st *State) {
		var found bool
		st.Nodes, found = replaceNode(st.Nodes, nodeID, func(n model.Node) model.Node {
			n.Text = text
			return n
		})
		if found {
			c.scheduleSaveLocked(nodeID, text)
		}
	})
}

// scheduleSaveLocked replaces any pending save for nodeID. c.mu must be held, so the
// local text and the text that will be sent never diverge.
func (c *Coordinator) scheduleSaveLocked(nodeID, text string) {
	if prev := c.saves[nodeID]; prev != nil && prev.timer.Stop() {
		c.inflight.Done()
	}
	ps := &pendingSave{text: text}
	c.inflight.Add(1)
	ps.timer = time.AfterFunc(c.debounce, func() { c.fireSave(nodeID, ps) })
	c.saves[nodeID] = ps
}

func (c *Coordinator) fireSave(nodeID string, ps *pendingSave) {
	defer c.inflight.Done()
	c.mu.Lock()
	if c.saves[nodeID] != ps {
		// Superseded after the timer already fired.
		c.mu.Unlock()
		return
	}
	delete(c.saves, nodeID)
	c.mu.Unlock()
	c.saveText(nodeID, ps.text)
}

func (c *Coordinator) saveText(nodeID, text string) {
	if err := c.store.UpdateNode(c.ctx, c.noteID, nodeID, model.NodePatch{Text: &text}); err != nil {
		c.log.Warn("save content failed", zap.String("op", "edit"), zap.String("node_id", nodeID), zap.Error(err))
	}
}

// FlushEdits sends every pending debounced edit now and waits for those sends.
func (c *Coordinator) FlushEdits() {
	type due struct{ nodeID, text string }
	var out []due
	c.mu.Lock()
	for id, ps := range c.saves {
		if ps.timer.Stop() {
			delete(c.saves, id)
			out = append(out, due{nodeID: id, text: ps.text})
		}
	}
	c.mu.Unlock()
	for _, d := range out {
		c.saveText(d.nodeID, d.text)
		c.inflight.Done()
	}
}

// Wait blocks until pending debounced saves and background remote calls have finished.
func (c *Coordinator) Wait() { c.inflight.Wait() }

// Close flushes pending edits and waits for in-flight remote calls.
func (c *Coordinator) Close() {
	c.FlushEdits()
	c.Wait()
}

// InsertAfter creates an empty sibling right after afterID. The node is added locally only
// once the collaborator returned its id; it then becomes the focus target. An unknown
// afterID is a no-op.
func (c *Coordinator) InsertAfter(ctx context.Context, afterID string) (string, error) {
	c.mu.Lock()
	seq := c.st.Display
	c.mu.Unlock()

	idx := IndexOf(seq, strings.TrimSpace(afterID))
	if idx < 0 {
		return "", nil
	}
	cur := seq[idx]
	var next *float64
	if sib, ok := FindSibling(seq, idx, Next); ok {
		next = &sib.OrderKey
	}
	key := AllocateOrderKey(&cur.OrderKey, next)
	return c.create(ctx, "insert", cur.ParentID, key)
}

// InsertFirst creates an empty node directly under the root. Used when the outline is empty.
func (c *Coordinator) InsertFirst(ctx context.Context) (string, error) {
	c.mu.Lock()
	rootID := c.st.RootID
	c.mu.Unlock()
	if rootID == "" {
		return "", nil
	}
	return c.create(ctx, "insert-first", rootID, FirstChildOrderKey)
}

func (c *Coordinator) create(ctx context.Context, op, parentID string, key float64) (string, error) {
	created, err := c.store.CreateNode(ctx, c.noteID, parentID, "", key)
	if err == nil && strings.TrimSpace(created.ID) == "" {
		err = ErrMissingNodeID
	}
	if err != nil {
		c.log.Warn("create node failed", zap.String("op", op), zap.String("parent_id", parentID), zap.Error(err))
		return "", err
	}

	n := model.Node{
		ID:        created.ID,
		NoteID:    c.noteID,
		ParentID:  parentID,
		OrderKey:  key,
		Visible:   true,
		CreatedAt: created.CreatedAt,
		UpdatedAt: created.UpdatedAt,
	}
	c.update(func(st *State) {
		nodes := make([]model.Node, 0, len(st.Nodes)+1)
		nodes = append(nodes, st.Nodes...)
		st.Nodes = append(nodes, n)
		st.FocusID = n.ID
	})
	return n.ID, nil
}

// Delete flags nodeID deleted and moves focus to the entry displayed before it.
// The remote write happens in the background.
func (c *Coordinator) Delete(nodeID string) bool {
	nodeID = strings.TrimSpace(nodeID)
	changed := false
	c.update(func(st *State) {
		idx := IndexOf(st.Display, nodeID)
		if idx < 0 {
			return
		}
		focus := ""
		if idx > 0 {
			focus = st.Display[idx-1].ID
		}
		st.Nodes, changed = replaceNode(st.Nodes, nodeID, func(n model.Node) model.Node {
			n.Deleted = true
			return n
		})
		st.FocusID = focus
	})
	if !changed {
		return false
	}
	c.push("delete", nodeID, model.NodePatch{Deleted: model.BoolPtr(true)})
	return true
}

// Indent makes nodeID the first child of its previous sibling. No previous sibling => no-op.
func (c *Coordinator) Indent(nodeID string) bool {
	nodeID = strings.TrimSpace(nodeID)
	var patch model.NodePatch
	changed := false
	c.update(func(st *State) {
		idx := IndexOf(st.Display, nodeID)
		if idx < 0 {
			return
		}
		prev, ok := FindSibling(st.Display, idx, Previous)
		if !ok {
			return
		}
		patch = model.NodePatch{
			ParentID: model.StringPtr(prev.ID),
			OrderKey: model.FloatPtr(FirstChildOrderKey),
		}
		st.Nodes, changed = replaceNode(st.Nodes, nodeID, patch.Apply)
		st.FocusID = nodeID
	})
	if !changed {
		return false
	}
	c.push("indent", nodeID, patch)
	return true
}

// Outdent moves nodeID to its grandparent, right after its former parent. A node whose
// parent is the root (or missing) is left alone.
func (c *Coordinator) Outdent(nodeID string) bool {
	nodeID = strings.TrimSpace(nodeID)
	var patch model.NodePatch
	changed := false
	c.update(func(st *State) {
		cur, ok := findNode(st.Nodes, nodeID)
		if !ok || cur.Deleted || model.IsRoot(cur) {
			return
		}
		parent, ok := findNode(st.Nodes, cur.ParentID)
		if !ok || parent.ID == st.RootID || model.IsRoot(parent) {
			return
		}
		patch = model.NodePatch{
			ParentID: model.StringPtr(parent.ParentID),
			OrderKey: model.FloatPtr(parent.OrderKey + OutdentOrderOffset),
		}
		st.Nodes, changed = replaceNode(st.Nodes, nodeID, patch.Apply)
		st.FocusID = nodeID
	})
	if !changed {
		return false
	}
	c.push("outdent", nodeID, patch)
	return true
}

// ToggleCollapse flips nodeID's collapse state. Local only.
func (c *Coordinator) ToggleCollapse(nodeID string) {
	nodeID = strings.TrimSpace(nodeID)
	if nodeID == "" {
		return
	}
	c.update(func(st *State) {
		next := make(map[string]bool, len(st.Collapsed)+1)
		for id := range st.Collapsed {
			next[id] = true
		}
		if next[nodeID] {
			delete(next, nodeID)
		} else {
			next[nodeID] = true
		}
		st.Collapsed = next
	})
}

// ClearFocus drops the pending focus target once the renderer has consumed it.
func (c *Coordinator) ClearFocus() {
	c.update(func(st *State) { st.FocusID = "" })
}

func (c *Coordinator) push(op, nodeID string, patch model.NodePatch) {
	c.inflight.Add(1)
	go func() {
		defer c.inflight.Done()
		if err := c.store.UpdateNode(c.ctx, c.noteID, nodeID, patch); err != nil {
			c.log.Warn("remote update failed", zap.String("op", op), zap.String("node_id", nodeID), zap.Error(err))
		}
	}()
}

func findNode(nodes []model.Node, id string) (model.Node, bool) {
	id = strings.TrimSpace(id)
	if id == "" {
		return model.Node{}, false
	}
	for _, n := range nodes {
		if n.ID == id {
			return n, true
		}
	}
	return model.Node{}, false
}

// replaceNode returns a copy of nodes with fn applied to the node with the given id.
func replaceNode(nodes []model.Node, id string, fn func(model.Node) model.Node) ([]model.Node, bool) {
	idx := -1
	for i, n := range nodes {
		if n.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nodes, false
	}
	out := make([]model.Node, len(nodes))
	copy(out, nodes)
	out[idx] = fn(out[idx])
	return out, true
}

// ErrMissingNodeID is returned when the collaborator confirms a create without an id.
var ErrMissingNodeID = errors.New("create returned no node id")

// LoadError wraps a failed Load.
type LoadError struct {
	NoteID string
	Err    error
}

func (e *LoadError) Error() string { return "load note " + e.NoteID + ": " + e.Err.Error() }
func (e *LoadError) Unwrap() error { return e.Err }
