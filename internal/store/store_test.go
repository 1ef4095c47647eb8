package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"outline-cli/internal/model"
	"outline-cli/internal/outline"
)

var _ outline.Persistence = Store{}

func newTestStore(t *testing.T) Store {
	t.Helper()
	return Store{Dir: filepath.Join(t.TempDir(), "data")}
}

func TestCreateNote_CreatesRootNode(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	note, err := s.CreateNote(ctx, "Groceries")
	if err != nil {
		t.Fatalf("create note: %v", err)
	}
	nodes, err := s.ListNodes(ctx, note.ID)
	if err != nil {
		t.Fatalf("list nodes: %v", err)
	}
	if len(nodes) != 1 || nodes[0].ID != note.RootID || !model.IsRoot(nodes[0]) {
		t.Fatalf("expected a single root node, got %+v", nodes)
	}

	notes, err := s.ListNotes(ctx)
	if err != nil {
		t.Fatalf("list notes: %v", err)
	}
	if len(notes) != 1 || notes[0].Title != "Groceries" {
		t.Fatalf("unexpected notes %+v", notes)
	}
}

func TestDeleteNote_SoftDeletes(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	keep, err := s.CreateNote(ctx, "Keep")
	if err != nil {
		t.Fatalf("create note: %v", err)
	}
	gone, err := s.CreateNote(ctx, "Gone")
	if err != nil {
		t.Fatalf("create note: %v", err)
	}
	if err := s.DeleteNote(ctx, gone.ID); err != nil {
		t.Fatalf("delete note: %v", err)
	}

	notes, err := s.ListNotes(ctx)
	if err != nil {
		t.Fatalf("list notes: %v", err)
	}
	if len(notes) != 1 || notes[0].ID != keep.ID {
		t.Fatalf("expected only %s, got %+v", keep.ID, notes)
	}

	var nf NotFoundError
	if _, err := s.FindNote(ctx, gone.ID); !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError for a deleted note, got %v", err)
	}
	if err := s.DeleteNote(ctx, gone.ID); !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError on second delete, got %v", err)
	}
	if err := s.DeleteNote(ctx, "missing"); !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError for an unknown note, got %v", err)
	}
}

func TestCreateNode_RoundTripsThroughList(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	note, err := s.CreateNote(ctx, "n")
	if err != nil {
		t.Fatalf("create note: %v", err)
	}

	a, err := s.CreateNode(ctx, note.ID, note.RootID, "alpha", 1)
	if err != nil {
		t.Fatalf("create a: %v", err)
	}
	b, err := s.CreateNode(ctx, note.ID, note.RootID, "", 1.5)
	if err != nil {
		t.Fatalf("create b: %v", err)
	}
	if a.ID == "" || a.ID == b.ID {
		t.Fatalf("expected distinct ids, got %q %q", a.ID, b.ID)
	}

	nodes, err := s.ListNodes(ctx, note.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(nodes) != 3 {
		t.Fatalf("expected 3 nodes, got %d", len(nodes))
	}
	got := nodes[2]
	if got.ID != b.ID || got.ParentID != note.RootID || got.OrderKey != 1.5 || !got.Visible || got.Deleted {
		t.Fatalf("unexpected stored node %+v", got)
	}
}

func TestCreateNode_UnknownParentOrNote(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	note, err := s.CreateNote(ctx, "n")
	if err != nil {
		t.Fatalf("create note: %v", err)
	}

	_, err = s.CreateNode(ctx, note.ID, "nope", "", 1)
	var nf NotFoundError
	if !errors.As(err, &nf) || nf.Kind != "node" {
		t.Fatalf("expected node NotFoundError, got %v", err)
	}
	_, err = s.CreateNode(ctx, "missing-note", note.RootID, "", 1)
	if !errors.As(err, &nf) || nf.Kind != "note" {
		t.Fatalf("expected note NotFoundError, got %v", err)
	}
}

func TestUpdateNode_SparsePatch(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	note, _ := s.CreateNote(ctx, "n")
	a, _ := s.CreateNode(ctx, note.ID, note.RootID, "alpha", 1)
	b, _ := s.CreateNode(ctx, note.ID, note.RootID, "beta", 2)

	if err := s.UpdateNode(ctx, note.ID, b.ID, model.NodePatch{ParentID: model.StringPtr(a.ID), OrderKey: model.FloatPtr(1)}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := s.UpdateNode(ctx, note.ID, a.ID, model.NodePatch{Deleted: model.BoolPtr(true)}); err != nil {
		t.Fatalf("update: %v", err)
	}

	nodes, _ := s.ListNodes(ctx, note.ID)
	byID := map[string]model.Node{}
	for _, n := range nodes {
		byID[n.ID] = n
	}
	if got := byID[b.ID]; got.ParentID != a.ID || got.OrderKey != 1 || got.Text != "beta" {
		t.Fatalf("expected reparent only, got %+v", got)
	}
	if got := byID[a.ID]; !got.Deleted || got.Text != "alpha" || got.OrderKey != 1 {
		t.Fatalf("expected delete flag only, got %+v", got)
	}
}

func TestUpdateNode_Errors(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	note, _ := s.CreateNote(ctx, "n")
	a, _ := s.CreateNode(ctx, note.ID, note.RootID, "alpha", 1)

	var nf NotFoundError
	if err := s.UpdateNode(ctx, note.ID, "ghost", model.NodePatch{Text: model.StringPtr("x")}); !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if err := s.UpdateNode(ctx, note.ID, a.ID, model.NodePatch{ParentID: model.StringPtr(a.ID)}); err == nil {
		t.Fatalf("expected self-parent to be rejected")
	}
	if err := s.UpdateNode(ctx, note.ID, "ghost", model.NodePatch{}); err != nil {
		t.Fatalf("expected empty patch to be a no-op, got %v", err)
	}
}

func TestStore_DrivesCoordinator(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	note, _ := s.CreateNote(ctx, "n")

	c := outline.NewCoordinator(s, note.ID, outline.Options{Debounce: 10 * time.Millisecond})
	if err := c.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	first, err := c.InsertFirst(ctx)
	if err != nil {
		t.Fatalf("insert first: %v", err)
	}
	second, err := c.InsertAfter(ctx, first)
	if err != nil {
		t.Fatalf("insert after: %v", err)
	}
	c.EditContent(second, "child")
	if !c.Indent(second) {
		t.Fatalf("expected indent")
	}
	c.Close()

	// A fresh coordinator sees the persisted tree.
	c2 := outline.NewCoordinator(s, note.ID, outline.Options{})
	if err := c2.Load(ctx); err != nil {
		t.Fatalf("reload: %v", err)
	}
	st := c2.Snapshot()
	if len(st.Display) != 2 || st.Display[1].ID != second || st.Display[1].Depth != 1 || st.Display[1].Text != "child" {
		t.Fatalf("unexpected persisted display %+v", st.Display)
	}
}

func TestConfig_LoadDefaultsAndSave(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("OUTLINE_CONFIG_DIR", dir)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Backend != BackendSQLite || cfg.Debounce != 500*time.Millisecond {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	d, err := cfg.DataDir()
	if err != nil || d != filepath.Join(dir, "data") {
		t.Fatalf("unexpected data dir %q (%v)", d, err)
	}

	cfg.Backend = BackendHTTP
	if err := SaveConfig(cfg); err == nil {
		t.Fatalf("expected http backend without base url to fail validation")
	}
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "baseUrl") {
		t.Fatalf("expected error to name the baseUrl key, got %v", err)
	}
	cfg.Remote.BaseURL = "https://example.test/api/"
	cfg.Debounce = 250 * time.Millisecond
	if err := SaveConfig(cfg); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "config.yaml")); err != nil {
		t.Fatalf("expected config.yaml: %v", err)
	}
	got, err := LoadConfig()
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.Backend != BackendHTTP || got.Remote.BaseURL != "https://example.test/api/" || got.Debounce != 250*time.Millisecond {
		t.Fatalf("unexpected reloaded config %+v", got)
	}
}

func TestConfigValidate_NamesYAMLKeys(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Backend = "ftp"
	cfg.LogLevel = "loud"
	err := cfg.Validate()
	if err == nil {
		t.Fatalf("expected validation error")
	}
	for _, key := range []string{"backend:", "logLevel:"} {
		if !strings.Contains(err.Error(), key) {
			t.Fatalf("expected error to mention %q, got %q", key, err.Error())
		}
	}
}

func TestTUIState_RememberNodeRoundTripsPerNote(t *testing.T) {
	s := Store{Dir: t.TempDir()}

	st, err := s.LoadTUIState()
	if err != nil {
		t.Fatalf("load missing state: %v", err)
	}
	if len(st.LastNodeID) != 0 {
		t.Fatalf("expected empty state, got %v", st.LastNodeID)
	}

	if err := s.RememberNode("note-a", "n1"); err != nil {
		t.Fatalf("remember: %v", err)
	}
	if err := s.RememberNode("note-b", "n2"); err != nil {
		t.Fatalf("remember: %v", err)
	}
	if err := s.RememberNode("note-a", ""); err != nil {
		t.Fatalf("forget: %v", err)
	}

	st, err = s.LoadTUIState()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, ok := st.LastNodeID["note-a"]; ok {
		t.Fatalf("expected note-a to be forgotten, got %v", st.LastNodeID)
	}
	if st.LastNodeID["note-b"] != "n2" {
		t.Fatalf("expected note-b -> n2, got %v", st.LastNodeID)
	}
}

func TestTUIState_CorruptFileIsTreatedAsMissing(t *testing.T) {
	s := Store{Dir: t.TempDir()}
	if err := os.WriteFile(filepath.Join(s.Dir, tuiStateFileName), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	st, err := s.LoadTUIState()
	if err != nil {
		t.Fatalf("expected corrupt state to load as empty, got %v", err)
	}
	if st.Version != 1 || len(st.LastNodeID) != 0 {
		t.Fatalf("unexpected state %+v", st)
	}
}
