// Package cache implements ports.Cache over an in-process, TTL-expiring
// LRU, the same hashicorp/golang-lru backend pkg/refpath uses for parsed
// reference paths (spec.md §5, Per-request pooling; §9 reference-path
// caching). It is the default Cache adapter for deployments that don't
// run a shared cache tier.
package cache

import (
	"context"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// LRUCache is a bounded, TTL-expiring ports.Cache implementation.
type LRUCache struct {
	mu        sync.Mutex
	lru       *lru.Cache[string, entry]
	defaultTTL time.Duration
}

type entry struct {
	value   interface{}
	expires time.Time
}

// New returns an LRUCache holding at most size entries. defaultTTL is used
// when Set is called with ttlSeconds <= 0.
func New(size int, defaultTTL time.Duration) (*LRUCache, error) {
	l, err := lru.New[string, entry](size)
	if err != nil {
		return nil, err
	}
	return &LRUCache{lru: l, defaultTTL: defaultTTL}, nil
}

func (c *LRUCache) Get(ctx context.Context, key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.lru.Get(key)
	if !ok {
		return nil, false
	}
	if time.Now().After(e.expires) {
		c.lru.Remove(key)
		return nil, false
	}
	return e.value, true
}

func (c *LRUCache) Set(ctx context.Context, key string, value interface{}, ttlSeconds int) error {
	ttl := c.defaultTTL
	if ttlSeconds > 0 {
		ttl = time.Duration(ttlSeconds) * time.Second
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Add(key, entry{value: value, expires: time.Now().Add(ttl)})
	return nil
}

func (c *LRUCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Remove(key)
	return nil
}
