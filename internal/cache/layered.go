package cache

import "time"

// Layered checks memory first and falls back to disk, promoting disk hits
// into memory. The mining client uses it so repeated fetches of the same
// immutable record batch skip the network.
type Layered struct {
	memory Cache
	disk   Cache
}

// NewLayered creates a memory+disk cache.
func NewLayered(memoryTTL time.Duration, diskDir string, diskTTL time.Duration) *Layered {
	return &Layered{
		memory: NewMemory(memoryTTL, 10*time.Minute),
		disk:   NewDisk(diskDir, diskTTL),
	}
}

// Get checks memory, then disk.
func (l *Layered) Get(key string) ([]byte, bool) {
	if val, found := l.memory.Get(key); found {
		return val, true
	}

	if val, found := l.disk.Get(key); found {
		_ = l.memory.Set(key, val, 0)
		return val, true
	}

	return nil, false
}

// Set stores the value in both layers.
func (l *Layered) Set(key string, value []byte, ttl time.Duration) error {
	if err := l.memory.Set(key, value, ttl); err != nil {
		return err
	}
	return l.disk.Set(key, value, ttl)
}

// Delete removes the value from both layers.
func (l *Layered) Delete(key string) error {
	_ = l.memory.Delete(key)
	_ = l.disk.Delete(key)
	return nil
}

// Clear empties both layers.
func (l *Layered) Clear() error {
	_ = l.memory.Clear()
	return l.disk.Clear()
}
