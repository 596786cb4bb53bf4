// Package cache provides response caching for the external API clients.
// Mined literature records are immutable, so fetch responses are safe to
// reuse across runs; knowledge-base lookups are cached per query so
// validating the same candidate set twice is byte-identical and cheap.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache is the minimal caching capability the API clients depend on.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key builds a namespaced cache key from an arbitrary payload, typically a
// request URL or a joined id list.
func Key(namespace, payload string) string {
	hash := sha256.Sum256([]byte(payload))
	return "repurpose:v1:" + namespace + ":" + hex.EncodeToString(hash[:])
}
