package models

import (
	"fmt"
	"time"
)

// DefaultTitle is the placeholder title of a freshly created session.
// A session still bearing it is eligible for auto-titling on its first turn.
const DefaultTitle = "New Chat"

// Session is one conversation: an ordered message history bound to an
// assistant. Sessions are displayed sorted by CreatedAt descending.
type Session struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Messages    []Message `json:"messages"`
	AssistantID string    `json:"assistantId"`
	CreatedAt   int64     `json:"createdAt"` // Unix milliseconds
}

// NewSession creates an empty session for the given assistant.
func NewSession(assistantID string) *Session {
	return &Session{
		ID:          NewSessionID(),
		Title:       DefaultTitle,
		Messages:    []Message{},
		AssistantID: assistantID,
		CreatedAt:   time.Now().UnixMilli(),
	}
}

// IndexOf returns the position of a message in the history, or -1.
func (s *Session) IndexOf(messageID string) int {
	for i := range s.Messages {
		if s.Messages[i].ID == messageID {
			return i
		}
	}
	return -1
}

// NewSessionID returns a time-based session id. Nanosecond resolution makes
// collisions negligible for a single process.
func NewSessionID() string {
	return fmt.Sprintf("sess-%d", time.Now().UnixNano())
}
