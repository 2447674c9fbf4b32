package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"clinicdesk/internal/models"
)

// State is the persisted authentication state.
type State struct {
	Token     string              `json:"token"`
	UserID    string              `json:"userId"`
	Role      string              `json:"role"`
	User      *models.UserDetails `json:"user,omitempty"`
	LoggedIn  time.Time           `json:"loggedIn"`
	ExpiresAt *time.Time          `json:"expiresAt,omitempty"`
}

// Authenticated reports whether the state carries a token.
func (s *State) Authenticated() bool {
	return s != nil && s.Token != ""
}

// Store persists the session between process runs.
type Store interface {
	Load() (*State, error)
	Save(s *State) error
	Clear() error
}

// FileStore keeps the session as a JSON file readable only by the owner.
type FileStore struct {
	Path string
}

// NewFileStore creates a store persisting the session at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

// Load returns nil without error when no session file exists.
func (f *FileStore) Load() (*State, error) {
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", f.Path, err)
	}
	return &s, nil
}

// Save writes s atomically with owner-only permissions.
func (f *FileStore) Save(s *State) error {
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	tmp := f.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return os.Rename(tmp, f.Path)
}

// Clear removes the session file. A missing file is not an error.
func (f *FileStore) Clear() error {
	if err := os.Remove(f.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}

// MemoryStore keeps the session in process only.
type MemoryStore struct {
	state *State
}

// Load returns the held state, or nil.
func (m *MemoryStore) Load() (*State, error) {
	if m.state == nil {
		return nil, nil
	}
	s := *m.state
	return &s, nil
}

// Save holds a copy of s.
func (m *MemoryStore) Save(s *State) error {
	c := *s
	m.state = &c
	return nil
}

// Clear forgets the held state.
func (m *MemoryStore) Clear() error {
	m.state = nil
	return nil
}
