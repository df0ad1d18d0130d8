package chat

import (
	"fmt"
	"sync"

	"github.com/mfigueira/bananachat/internal/models"
)

// memStore is an in-memory SessionStore for tests.
type memStore struct {
	mu       sync.Mutex
	sessions map[string]*models.Session
	upserts  int
	failAll  bool
}

func newMemStore() *memStore {
	return &memStore{sessions: make(map[string]*models.Session)}
}

func (s *memStore) Upsert(sess *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAll {
		return fmt.Errorf("store unavailable")
	}
	clone := *sess
	clone.Messages = append([]models.Message(nil), sess.Messages...)
	s.sessions[sess.ID] = &clone
	s.upserts++
	return nil
}

func (s *memStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAll {
		return fmt.Errorf("store unavailable")
	}
	if _, ok := s.sessions[id]; !ok {
		return fmt.Errorf("session not found: %s", id)
	}
	delete(s.sessions, id)
	return nil
}

func (s *memStore) ListAll() ([]*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Session
	for _, sess := range s.sessions {
		out = append(out, sess)
	}
	return out, nil
}

func (s *memStore) get(id string) *models.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[id]
}

// memCache is an in-memory KeyValueStore for tests.
type memCache struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemCache() *memCache {
	return &memCache{data: make(map[string]string)}
}

func (c *memCache) Get(key string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.data[key]
}

func (c *memCache) Set(key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func pngPart(data string) models.MessagePart {
	return models.ImagePart("image/png", data)
}
