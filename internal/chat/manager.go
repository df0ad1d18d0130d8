// Package chat implements the turn lifecycle: session state, the generation
// orchestrator, and the operations the UI invokes.
package chat

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/mfigueira/bananachat/internal/logfeed"
	"github.com/mfigueira/bananachat/internal/models"
)

// SessionStore is the persistence contract the chat core consumes.
type SessionStore interface {
	Upsert(sess *models.Session) error
	Delete(id string) error
	ListAll() ([]*models.Session, error)
}

// KeyValueStore is a simple string-keyed cache for small settings, the analog
// of the web client's local storage.
type KeyValueStore interface {
	Get(key string) string
	Set(key, value string) error
}

// SpeechCapture transcribes microphone input into prompt text. The terminal
// client ships without a recorder; implementations are injected by callers
// that have one.
type SpeechCapture interface {
	Capture(ctx context.Context) (string, error)
}

// Cache keys mirroring the web client's local storage.
const (
	KeyActiveSession  = "active_session_id"
	KeyLegacySessions = "chat_sessions"
	KeyBaseURL        = "gemini_base_url"
)

// Manager owns the session list and the active-session pointer. All mutations
// go through its methods; every mutation is mirrored to the session store.
// Store failures are logged and swallowed: the in-memory model stays
// authoritative for the running process.
type Manager struct {
	mu       sync.RWMutex
	store    SessionStore
	cache    KeyValueStore
	feed     *logfeed.Feed
	sessions []*models.Session // ordered by CreatedAt descending
	activeID string
}

// NewManager creates a manager over the given store and cache.
func NewManager(store SessionStore, cache KeyValueStore, feed *logfeed.Feed) *Manager {
	if feed == nil {
		feed = logfeed.New(nil)
	}
	return &Manager{
		store: store,
		cache: cache,
		feed:  feed,
	}
}

// Load populates the manager from the store. When the store is empty it tries
// a one-time import of the legacy flat session list from the cache, and
// failing that creates a fresh session, so at least one session always
// exists. The active session id is restored from the cache when it still
// resolves; otherwise the first session becomes active.
func (m *Manager) Load() error {
	list, err := m.store.ListAll()
	if err != nil {
		return err
	}

	if len(list) == 0 {
		list = m.importLegacy()
	}

	if len(list) == 0 {
		fresh := models.NewSession(models.DefaultAssistantID)
		m.persistOrLog(fresh)
		list = []*models.Session{fresh}
	}

	sort.Slice(list, func(i, j int) bool {
		return list[i].CreatedAt > list[j].CreatedAt
	})

	m.mu.Lock()
	m.sessions = list
	m.activeID = list[0].ID
	if stored := m.cache.Get(KeyActiveSession); stored != "" {
		for _, s := range list {
			if s.ID == stored {
				m.activeID = stored
				break
			}
		}
	}
	active := m.activeID
	m.mu.Unlock()

	m.rememberActive(active)
	m.feed.Successf("initialized with %d session(s)", len(list))
	return nil
}

// importLegacy reads the flat legacy session list from the cache and imports
// it into the store. Runs at most once per fresh store: after a successful
// import the store is no longer empty.
func (m *Manager) importLegacy() []*models.Session {
	raw := m.cache.Get(KeyLegacySessions)
	if raw == "" {
		return nil
	}

	var legacy []*models.Session
	if err := json.Unmarshal([]byte(raw), &legacy); err != nil {
		m.feed.Errorf("legacy session migration failed: %v", err)
		return nil
	}
	if len(legacy) == 0 {
		return nil
	}

	for _, s := range legacy {
		m.persistOrLog(s)
	}

	m.feed.Infof("migrated %d legacy session(s)", len(legacy))
	return legacy
}

// Sessions returns the session list, newest first.
func (m *Manager) Sessions() []*models.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*models.Session, len(m.sessions))
	copy(out, m.sessions)
	return out
}

// SessionByID returns the session with the given id, or nil.
func (m *Manager) SessionByID(id string) *models.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.findLocked(id)
}

// ActiveSession returns the active session. The active id always resolves:
// when it does not, the first session is the fallback.
func (m *Manager) ActiveSession() *models.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if s := m.findLocked(m.activeID); s != nil {
		return s
	}
	if len(m.sessions) > 0 {
		return m.sessions[0]
	}
	return nil
}

// SetActive switches the active session. Unknown ids are ignored.
func (m *Manager) SetActive(id string) bool {
	m.mu.Lock()
	if m.findLocked(id) == nil {
		m.mu.Unlock()
		return false
	}
	m.activeID = id
	m.mu.Unlock()

	m.rememberActive(id)
	return true
}

// NewSession creates an empty session, makes it active and persists it.
func (m *Manager) NewSession() *models.Session {
	fresh := models.NewSession(models.DefaultAssistantID)

	m.mu.Lock()
	m.sessions = append([]*models.Session{fresh}, m.sessions...)
	m.activeID = fresh.ID
	m.mu.Unlock()

	m.persistOrLog(fresh)
	m.rememberActive(fresh.ID)
	m.feed.Infof("created new chat")
	return fresh
}

// DeleteSession removes a session. Deleting the last remaining session
// synchronously creates a fresh empty one, so the list never goes empty.
func (m *Manager) DeleteSession(id string) {
	if err := m.store.Delete(id); err != nil {
		m.feed.Warnf("failed to delete session from store: %v", err)
	}

	m.mu.Lock()
	kept := m.sessions[:0]
	for _, s := range m.sessions {
		if s.ID != id {
			kept = append(kept, s)
		}
	}
	m.sessions = kept

	needFresh := len(m.sessions) == 0
	wasActive := m.activeID == id
	var newActive string
	if wasActive && !needFresh {
		newActive = m.sessions[0].ID
		m.activeID = newActive
	}
	m.mu.Unlock()

	m.feed.Warnf("deleted chat session")

	if needFresh {
		m.NewSession()
		return
	}
	if wasActive {
		m.rememberActive(newActive)
	}
}

// RenameSession updates a session's title. Unknown ids are ignored.
func (m *Manager) RenameSession(id, title string) {
	m.mu.Lock()
	s := m.findLocked(id)
	if s != nil {
		s.Title = title
	}
	m.mu.Unlock()

	if s != nil {
		m.persistOrLog(s)
	}
}

// SetAssistant switches the assistant profile of a session.
func (m *Manager) SetAssistant(id, assistantID string) {
	m.mu.Lock()
	s := m.findLocked(id)
	if s != nil {
		s.AssistantID = assistantID
	}
	m.mu.Unlock()

	if s != nil {
		m.persistOrLog(s)
		m.feed.Infof("switched assistant to %s", assistantID)
	}
}

// HistorySnapshot returns a copy of a session's message history.
func (m *Manager) HistorySnapshot(id string) []models.Message {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := m.findLocked(id)
	if s == nil {
		return nil
	}
	out := make([]models.Message, len(s.Messages))
	copy(out, s.Messages)
	return out
}

// ReplaceMessages swaps a session's whole message history in one assignment
// and persists the session. An empty newTitle keeps the current title. The
// session is addressed by id, so results of a turn land in the session that
// was active at send time.
func (m *Manager) ReplaceMessages(id string, messages []models.Message, newTitle string) {
	m.mu.Lock()
	s := m.findLocked(id)
	if s != nil {
		s.Messages = messages
		if newTitle != "" {
			s.Title = newTitle
		}
	}
	m.mu.Unlock()

	if s != nil {
		m.persistOrLog(s)
	}
}

// findLocked must be called with m.mu held.
func (m *Manager) findLocked(id string) *models.Session {
	for _, s := range m.sessions {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// persistOrLog mirrors a session to the store, swallowing failures. The UI
// never blocks on storage.
func (m *Manager) persistOrLog(s *models.Session) {
	if err := m.store.Upsert(s); err != nil {
		m.feed.Warnf("failed to persist session %s: %v", s.ID, err)
	}
}

func (m *Manager) rememberActive(id string) {
	if err := m.cache.Set(KeyActiveSession, id); err != nil {
		m.feed.Warnf("failed to remember active session: %v", err)
	}
}
