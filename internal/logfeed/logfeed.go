// Package logfeed keeps an in-memory feed of user-visible activity entries,
// mirrored to the process logger.
package logfeed

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Level classifies a feed entry.
type Level string

// Entry levels
const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Entry is one line in the activity feed.
type Entry struct {
	ID        string
	Timestamp time.Time
	Level     Level
	Message   string
}

const defaultMaxEntries = 500

// Feed is a bounded, append-only activity log. Safe for concurrent use; the
// batch goroutines of one turn all write to it.
type Feed struct {
	mu      sync.RWMutex
	entries []Entry
	max     int
	logger  *slog.Logger
}

// New creates a feed mirroring entries to logger. A nil logger uses the
// default slog logger.
func New(logger *slog.Logger) *Feed {
	if logger == nil {
		logger = slog.Default()
	}
	return &Feed{
		max:    defaultMaxEntries,
		logger: logger,
	}
}

// Add appends an entry at the given level.
func (f *Feed) Add(level Level, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)

	f.mu.Lock()
	f.entries = append(f.entries, Entry{
		ID:        uuid.NewString(),
		Timestamp: time.Now(),
		Level:     level,
		Message:   msg,
	})
	if len(f.entries) > f.max {
		f.entries = f.entries[len(f.entries)-f.max:]
	}
	f.mu.Unlock()

	switch level {
	case LevelWarning:
		f.logger.Warn(msg)
	case LevelError:
		f.logger.Error(msg)
	default:
		f.logger.Info(msg)
	}
}

// Infof appends an info entry.
func (f *Feed) Infof(format string, args ...any) { f.Add(LevelInfo, format, args...) }

// Successf appends a success entry.
func (f *Feed) Successf(format string, args ...any) { f.Add(LevelSuccess, format, args...) }

// Warnf appends a warning entry.
func (f *Feed) Warnf(format string, args ...any) { f.Add(LevelWarning, format, args...) }

// Errorf appends an error entry.
func (f *Feed) Errorf(format string, args ...any) { f.Add(LevelError, format, args...) }

// Entries returns a copy of the current feed contents.
func (f *Feed) Entries() []Entry {
	f.mu.RLock()
	defer f.mu.RUnlock()

	out := make([]Entry, len(f.entries))
	copy(out, f.entries)
	return out
}

// Len returns the number of entries currently retained.
func (f *Feed) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.entries)
}
