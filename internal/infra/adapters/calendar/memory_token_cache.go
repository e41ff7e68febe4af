package calendar

import (
	"context"
	"sync"
	"time"

	"meeting-brief-service/internal/domain/ports/repository"
)

var _ repository.TokenCache = (*MemoryTokenCache)(nil)

// MemoryTokenCache is the fallback token store for deployments without redis.
type MemoryTokenCache struct {
	mu      sync.Mutex
	entries map[string]memoryToken
}

type memoryToken struct {
	value     string
	expiresAt time.Time
}

func NewMemoryTokenCache() *MemoryTokenCache {
	return &MemoryTokenCache{entries: make(map[string]memoryToken)}
}

func (c *MemoryTokenCache) Get(ctx context.Context, key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || time.Now().After(e.expiresAt) {
		delete(c.entries, key)
		return "", false, nil
	}
	return e.value, true, nil
}

func (c *MemoryTokenCache) Set(ctx context.Context, key, value string, expiresAt time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = memoryToken{value: value, expiresAt: expiresAt}
	return nil
}

func (c *MemoryTokenCache) Invalidate(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}
