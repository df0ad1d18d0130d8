package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const localCacheFileName = "localcache.json"

// LocalCache is a simple string-keyed cache backed by a single JSON file,
// the analog of the web client's local storage. It holds small settings
// (active session id, endpoint override) and the legacy flat session list
// that predates the session store.
type LocalCache struct {
	path string
	mu   sync.RWMutex
	data map[string]string
}

// NewLocalCache opens (or lazily creates) the cache file under baseDir.
func NewLocalCache(baseDir string) (*LocalCache, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	c := &LocalCache{
		path: filepath.Join(baseDir, localCacheFileName),
		data: make(map[string]string),
	}

	raw, err := os.ReadFile(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return nil, fmt.Errorf("failed to read cache file: %w", err)
	}

	if err := json.Unmarshal(raw, &c.data); err != nil {
		// A corrupted cache is not fatal; start over empty.
		c.data = make(map[string]string)
	}

	return c, nil
}

// Get returns the value for key, or "" when absent.
func (c *LocalCache) Get(key string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.data[key]
}

// Set stores a value and writes the cache file through.
func (c *LocalCache) Set(key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data[key] = value
	return c.save()
}

// Remove deletes a key and writes the cache file through.
func (c *LocalCache) Remove(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.data, key)
	return c.save()
}

func (c *LocalCache) save() error {
	data, err := json.MarshalIndent(c.data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal cache: %w", err)
	}

	if err := os.WriteFile(c.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}

	return nil
}
