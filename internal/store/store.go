// Package store persists chat sessions as JSON documents keyed by session id.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/mfigueira/bananachat/internal/models"
)

// Store manages session persistence. One file per session under
// <baseDir>/sessions, named by session id.
type Store struct {
	baseDir string
	mu      sync.RWMutex
}

// NewStore creates a new session store rooted at baseDir.
func NewStore(baseDir string) (*Store, error) {
	sessionsDir := filepath.Join(baseDir, "sessions")
	if err := os.MkdirAll(sessionsDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create sessions directory: %w", err)
	}

	return &Store{
		baseDir: sessionsDir,
	}, nil
}

// Upsert inserts or replaces a session record.
func (s *Store) Upsert(sess *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.saveSession(sess)
}

// Delete removes a session record.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.sessionPath(id)
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("session not found: %s", id)
		}
		return fmt.Errorf("failed to delete session: %w", err)
	}

	return nil
}

// ListAll loads every session record. Corrupted files are skipped.
func (s *Store) ListAll() ([]*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read sessions directory: %w", err)
	}

	var sessions []*models.Session
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}

		id := entry.Name()[:len(entry.Name())-5] // Remove .json
		sess, err := s.loadSession(id)
		if err != nil {
			continue // Skip corrupted files
		}
		sessions = append(sessions, sess)
	}

	return sessions, nil
}

// Internal methods

func (s *Store) sessionPath(id string) string {
	return filepath.Join(s.baseDir, id+".json")
}

func (s *Store) loadSession(id string) (*models.Session, error) {
	path := s.sessionPath(id)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("session not found: %s", id)
		}
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	var sess models.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("failed to parse session: %w", err)
	}

	return &sess, nil
}

func (s *Store) saveSession(sess *models.Session) error {
	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	path := s.sessionPath(sess.ID)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}

	return nil
}
