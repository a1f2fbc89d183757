// Package session holds the current authenticated identity. The Store is the
// single source of truth for "who is logged in"; components that need the
// identity or its token get the store injected and never read the persisted
// session file themselves.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"vereinsportal/internal/models"
)

// Store keeps the live session, if any, and owns its on-disk copy.
// A store created with an empty path keeps the session in memory only.
type Store struct {
	mu      sync.Mutex
	path    string
	current *models.Session
}

// NewStore creates a store that persists the session to the given file.
// Pass an empty path for a memory-only store.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load restores a previously persisted session from disk. A missing file is
// not an error; the store simply starts out logged out.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return nil
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read session file: %w", err)
	}
	var sess models.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return fmt.Errorf("failed to parse session file %s: %w", s.path, err)
	}
	if sess.Token == "" {
		return nil
	}
	s.current = &sess
	return nil
}

// Current returns the live session and whether one exists.
func (s *Store) Current() (models.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return models.Session{}, false
	}
	return *s.current, true
}

// Token returns the credential of the live session, if any.
func (s *Store) Token() (string, bool) {
	sess, ok := s.Current()
	if !ok {
		return "", false
	}
	return sess.Token, true
}

// Set replaces the live session and persists it.
func (s *Store) Set(sess models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = &sess
	if s.path == "" {
		return nil
	}
	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}

// Clear resets the store to "no session" and removes the persisted copy.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = nil
	if s.path == "" {
		return nil
	}
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}
