// Package cache is a small TTL cache for storefront reads.
package cache

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"
)

type entry struct {
	data      []byte
	expiresAt time.Time
}

// Cache keeps JSON-encoded values until their TTL passes.
type Cache struct {
	mu      sync.RWMutex
	items   map[string]entry
	ttl     time.Duration
	nowFunc func() time.Time
}

// New returns a cache whose entries live for ttl. A ttl <= 0 disables caching.
func New(ttl time.Duration) *Cache {
	return &Cache{
		items:   make(map[string]entry),
		ttl:     ttl,
		nowFunc: time.Now,
	}
}

func (c *Cache) enabled() bool { return c != nil && c.ttl > 0 }

// Store encodes value under key.
func (c *Cache) Store(key string, value interface{}) error {
	if !c.enabled() {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = entry{data: data, expiresAt: c.nowFunc().Add(c.ttl)}
	return nil
}

// Load decodes the value under key into target. It reports false on a miss or
// an expired entry.
func (c *Cache) Load(key string, target interface{}) (bool, error) {
	if !c.enabled() {
		return false, nil
	}
	c.mu.RLock()
	e, ok := c.items[key]
	c.mu.RUnlock()
	if !ok || c.nowFunc().After(e.expiresAt) {
		return false, nil
	}
	if err := json.Unmarshal(e.data, target); err != nil {
		return false, err
	}
	return true, nil
}

// DeleteByPrefix drops every key starting with prefix.
func (c *Cache) DeleteByPrefix(prefix string) {
	if !c.enabled() {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.items {
		if strings.HasPrefix(key, prefix) {
			delete(c.items, key)
		}
	}
}

// Len is the number of stored entries, expired ones included.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Sweep removes expired entries.
func (c *Cache) Sweep() {
	if !c.enabled() {
		return
	}
	now := c.nowFunc()
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, e := range c.items {
		if now.After(e.expiresAt) {
			delete(c.items, key)
		}
	}
}

// RunJanitor sweeps every interval until ctx is done.
func (c *Cache) RunJanitor(ctx context.Context, interval time.Duration) {
	if !c.enabled() {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Sweep()
		}
	}
}
