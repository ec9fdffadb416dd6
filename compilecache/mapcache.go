package compilecache

import (
	"context"
	"strings"
	"sync"
	"time"
)

// MapCache is an in-memory Cache (teacher's doc comment on Cache: "e.g.
// Redis, Memcached, in-memory" — this is the in-memory option, provided and
// exercised by tests rather than left unimplemented). The helixc CLI does
// not use it or any other Cache.
type MapCache struct {
	mu    sync.Mutex
	items map[string]mapItem
}

type mapItem struct {
	value     []byte
	expiresAt time.Time // zero means no expiry
}

// NewMapCache returns an empty MapCache.
func NewMapCache() *MapCache {
	return &MapCache{items: make(map[string]mapItem)}
}

func (c *MapCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	item, ok := c.items[key]
	if !ok {
		return nil, nil
	}
	if !item.expiresAt.IsZero() && time.Now().After(item.expiresAt) {
		delete(c.items, key)
		return nil, nil
	}
	return item.value, nil
}

func (c *MapCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl)
	}
	c.items[key] = mapItem{value: value, expiresAt: expiresAt}
	return nil
}

func (c *MapCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
	return nil
}

func (c *MapCache) DeletePrefix(_ context.Context, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.items {
		if strings.HasPrefix(k, prefix) {
			delete(c.items, k)
		}
	}
	return nil
}

func (c *MapCache) Clear(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]mapItem)
	return nil
}
