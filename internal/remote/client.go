package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"outline-cli/internal/model"
)

const (
	pathListNodes  = "hulunote/get-note-navs"
	pathUpsertNode = "hulunote/create-or-update-nav"
)

// Client talks to the note service's JSON API. Every endpoint is a POST.
type Client struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
}

func New(baseURL, token string) *Client {
	return &Client{
		BaseURL: strings.TrimSpace(baseURL),
		Token:   strings.TrimSpace(token),
		HTTP:    &http.Client{Timeout: 30 * time.Second},
	}
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Path string
	Code int
	Body string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s: HTTP %d", e.Path, e.Code)
	if b := strings.TrimSpace(e.Body); b != "" {
		msg += ": " + b
	}
	return msg
}

func (c *Client) ListNodes(ctx context.Context, noteID string) ([]model.Node, error) {
	var resp navListResponse
	if err := c.post(ctx, pathListNodes, navListRequest{NoteID: noteID}, &resp); err != nil {
		return nil, err
	}
	out := make([]model.Node, 0, len(resp.NavList))
	for _, n := range resp.NavList {
		out = append(out, n.toNode())
	}
	return out, nil
}

func (c *Client) CreateNode(ctx context.Context, noteID, parentID, text string, orderKey float64) (model.Node, error) {
	req := navUpsertRequest{
		NoteID:  noteID,
		ParID:   &parentID,
		Content: &text,
		Order:   &orderKey,
	}
	var resp navUpsertResponse
	if err := c.post(ctx, pathUpsertNode, req, &resp); err != nil {
		return model.Node{}, err
	}
	// A returned id means the node exists, whatever the success flag says.
	n := model.Node{NoteID: noteID, ParentID: parentID, OrderKey: orderKey, Text: text, Visible: true}
	if resp.Nav != nil && resp.Nav.ID != "" {
		n = resp.Nav.toNode()
	}
	if resp.ID != "" {
		n.ID = resp.ID
	}
	if n.ID == "" {
		if !resp.Success {
			return model.Node{}, errors.New("create node: server reported failure")
		}
		return model.Node{}, errors.New("create node: response carried no id")
	}
	return n, nil
}

func (c *Client) UpdateNode(ctx context.Context, noteID, nodeID string, patch model.NodePatch) error {
	req := navUpsertRequest{
		NoteID:    noteID,
		ID:        nodeID,
		ParID:     patch.ParentID,
		Content:   patch.Text,
		IsDelete:  patch.Deleted,
		IsDisplay: patch.Visible,
		Order:     patch.OrderKey,
	}
	var resp navUpsertResponse
	if err := c.post(ctx, pathUpsertNode, req, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("update node %s: server reported failure", nodeID)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}
	url := strings.TrimRight(c.BaseURL, "/") + "/" + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	hc := c.HTTP
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet := string(raw)
		if len(snippet) > 200 {
			snippet = snippet[:200]
		}
		return &StatusError{Path: path, Code: resp.StatusCode, Body: snippet}
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", path, err)
	}
	return nil
}
