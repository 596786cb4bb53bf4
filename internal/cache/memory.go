package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Memory is an in-process cache with per-entry TTL, used for knowledge-base
// lookups within a run.
type Memory struct {
	entries *gocache.Cache
}

// NewMemory creates a memory cache with the given default TTL.
func NewMemory(defaultTTL, cleanupInterval time.Duration) *Memory {
	return &Memory{entries: gocache.New(defaultTTL, cleanupInterval)}
}

// Get retrieves a value from the cache.
func (m *Memory) Get(key string) ([]byte, bool) {
	if val, found := m.entries.Get(key); found {
		return val.([]byte), true
	}
	return nil, false
}

// Set stores a value; a zero ttl uses the cache default.
func (m *Memory) Set(key string, value []byte, ttl time.Duration) error {
	if ttl == 0 {
		ttl = gocache.DefaultExpiration
	}
	m.entries.Set(key, value, ttl)
	return nil
}

// Delete removes a value from the cache.
func (m *Memory) Delete(key string) error {
	m.entries.Delete(key)
	return nil
}

// Clear removes all values from the cache.
func (m *Memory) Clear() error {
	m.entries.Flush()
	return nil
}
