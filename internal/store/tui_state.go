package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

const tuiStateFileName = "tui_state.json"

// TUIState stores small editor state for restoring the cursor on relaunch.
// It is best effort: callers should tolerate missing/invalid data.
type TUIState struct {
	Version int `json:"version"`

	// LastNodeID maps note id -> node id selected when the editor last closed.
	LastNodeID map[string]string `json:"lastNodeId,omitempty"`
}

func (s Store) tuiStatePath() string {
	return filepath.Join(s.Dir, tuiStateFileName)
}

func (s Store) LoadTUIState() (*TUIState, error) {
	empty := &TUIState{Version: 1, LastNodeID: map[string]string{}}
	if strings.TrimSpace(s.Dir) == "" {
		return empty, nil
	}
	b, err := os.ReadFile(s.tuiStatePath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return empty, nil
		}
		return nil, err
	}
	var st TUIState
	if err := json.Unmarshal(b, &st); err != nil {
		// Corrupted: treat as missing.
		return empty, nil
	}
	if st.Version == 0 {
		st.Version = 1
	}
	if st.LastNodeID == nil {
		st.LastNodeID = map[string]string{}
	}
	return &st, nil
}

func (s Store) SaveTUIState(st *TUIState) error {
	if st == nil || strings.TrimSpace(s.Dir) == "" {
		return nil
	}
	if err := s.Ensure(); err != nil {
		return err
	}
	if st.Version == 0 {
		st.Version = 1
	}
	b, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	return atomicWriteFile(s.Dir, tuiStateFileName+".*.tmp", s.tuiStatePath(), b, 0o644)
}

// RememberNode records nodeID as the last selected node of noteID. An empty nodeID forgets it.
func (s Store) RememberNode(noteID, nodeID string) error {
	st, err := s.LoadTUIState()
	if err != nil {
		return err
	}
	if strings.TrimSpace(nodeID) == "" {
		delete(st.LastNodeID, noteID)
	} else {
		st.LastNodeID[noteID] = nodeID
	}
	return s.SaveTUIState(st)
}
