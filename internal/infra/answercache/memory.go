package answercache

import (
	"context"
	"sync"
	"time"

	"github.com/kaabil/faqrag/internal/domain/rag"
)

type entry struct {
	answer    string
	expiresAt time.Time
}

// MemoryCache is the in-process cache used for tests and single-node runs.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[int]entry
}

var _ rag.AnswerCache = (*MemoryCache)(nil)

// NewMemoryCache constructs the cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[int]entry)}
}

// Get returns a cached answer if present and unexpired.
func (c *MemoryCache) Get(_ context.Context, recordID int) (string, bool, error) {
	c.mu.RLock()
	e, ok := c.entries[recordID]
	c.mu.RUnlock()
	if !ok {
		return "", false, nil
	}
	if !e.expiresAt.IsZero() && time.Now().After(e.expiresAt) {
		c.mu.Lock()
		delete(c.entries, recordID)
		c.mu.Unlock()
		return "", false, nil
	}
	return e.answer, true, nil
}

// Set stores an answer with an optional TTL.
func (c *MemoryCache) Set(_ context.Context, recordID int, answer string, ttl time.Duration) error {
	var expires time.Time
	if ttl > 0 {
		expires = time.Now().Add(ttl)
	}
	c.mu.Lock()
	c.entries[recordID] = entry{answer: answer, expiresAt: expires}
	c.mu.Unlock()
	return nil
}
