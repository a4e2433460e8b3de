package cache

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// Memory is an in-process Store. Expired entries are dropped lazily on
// read, which is enough for the handful of page-cache keys this holds.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemory creates a new in-memory store
func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Get retrieves a value, treating expired entries as absent
func (c *Memory) Get(ctx context.Context, key string) (string, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return "", ErrCacheMiss
	}
	if c.now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return "", ErrCacheMiss
	}
	return entry.value, nil
}

// Set stores a value with the given TTL
func (c *Memory) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	c.mu.Lock()
	c.entries[key] = memoryEntry{
		value:     value,
		expiresAt: c.now().Add(ttl),
	}
	c.mu.Unlock()
	return nil
}

// Delete removes a key
func (c *Memory) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}

// Close is a no-op for the in-memory store
func (c *Memory) Close() error {
	return nil
}
