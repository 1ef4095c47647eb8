package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"outline-cli/internal/model"
	"outline-cli/internal/outline"
)

var _ outline.Persistence = (*Client)(nil)

func TestListNodes_DecodesNavList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/hulunote/get-note-navs" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("expected bearer token, got %q", got)
		}
		var req map[string]any
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req["note-id"] != "note-1" {
			t.Errorf("expected note-id, got %v", req)
		}
		_, _ = w.Write([]byte(`{"nav-list":[
			{"id":"r","parid":null,"same-deep-order":0,"content":""},
			{"id":"a","parid":"r","same-deep-order":1.5,"content":"alpha","is-display":false,"is-delete":true}
		]}`))
	}))
	defer srv.Close()

	c := New(srv.URL+"/api/", "tok")
	nodes, err := c.ListNodes(context.Background(), "note-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(nodes) != 2 {
		t.Fatalf("expected 2 nodes, got %d", len(nodes))
	}
	if !model.IsRoot(nodes[0]) || !nodes[0].Visible {
		t.Fatalf("expected visible root, got %+v", nodes[0])
	}
	if a := nodes[1]; a.ParentID != "r" || a.OrderKey != 1.5 || a.Text != "alpha" || a.Visible || !a.Deleted {
		t.Fatalf("unexpected node %+v", a)
	}
}

func TestUpdateNode_SendsOnlyPatchedFields(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	err := c.UpdateNode(context.Background(), "note-1", "a", model.NodePatch{Deleted: model.BoolPtr(true)})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	want := map[string]any{"note-id": "note-1", "id": "a", "is-delete": true}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for k, v := range want {
		if got[k] != v {
			t.Fatalf("expected %s=%v, got %v", k, v, got[k])
		}
	}
}

func TestCreateNode_UsesReturnedID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req["parid"] != "r" || req["order"] != 1.5 || req["content"] != "" {
			t.Errorf("unexpected create payload %v", req)
		}
		if _, ok := req["id"]; ok {
			t.Errorf("create must not send an id")
		}
		_, _ = w.Write([]byte(`{"success":true,"id":"new-1"}`))
	}))
	defer srv.Close()

	n, err := New(srv.URL, "").CreateNode(context.Background(), "note-1", "r", "", 1.5)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if n.ID != "new-1" || n.ParentID != "r" || n.OrderKey != 1.5 {
		t.Fatalf("unexpected node %+v", n)
	}
}

func TestCreateNode_IDWithoutSuccessFlag(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"nav":{"id":"new-2","parid":"r","same-deep-order":3,"content":""}}`))
	}))
	defer srv.Close()

	n, err := New(srv.URL, "").CreateNode(context.Background(), "note-1", "r", "", 3)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if n.ID != "new-2" || n.ParentID != "r" || n.OrderKey != 3 {
		t.Fatalf("unexpected node %+v", n)
	}
}

func TestCreateNode_NoIDIsAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	if _, err := New(srv.URL, "").CreateNode(context.Background(), "note-1", "r", "", 3); err == nil {
		t.Fatalf("expected an error when no id comes back")
	}
}

func TestPost_ErrorStatusAndFailureFlag(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/hulunote/get-note-navs" {
			http.Error(w, "nope", http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"success":false}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	_, err := c.ListNodes(context.Background(), "note-1")
	var se *StatusError
	if !errors.As(err, &se) || se.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 StatusError, got %v", err)
	}
	if err := c.UpdateNode(context.Background(), "note-1", "a", model.NodePatch{Text: model.StringPtr("x")}); err == nil {
		t.Fatalf("expected success=false to be an error")
	}
}
