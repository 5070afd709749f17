// Package refpath caches the cost of turning a Reference into a
// resolved path lookup: the parsed path segments (spec.md §4.7, §5
// Per-request pooling).
// Entries are bounded by count and by age, since a long-lived process
// serves many unrelated requests and must not retain every path it has
// ever seen.
package refpath

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Cache is a bounded, TTL-expiring cache of parsed reference paths,
// keyed by the raw reference string.
type Cache struct {
	mu  sync.Mutex
	lru *lru.Cache[string, entry]
	ttl time.Duration
}

type entry struct {
	segments []string
	expires  time.Time
}

// New returns a Cache holding at most size entries, each valid for ttl.
func New(size int, ttl time.Duration) (*Cache, error) {
	l, err := lru.New[string, entry](size)
	if err != nil {
		return nil, err
	}
	return &Cache{lru: l, ttl: ttl}, nil
}

// Get returns the cached parsed segments for raw, if present and not
// expired.
func (c *Cache) Get(raw string) ([]string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.lru.Get(raw)
	if !ok {
		return nil, false
	}
	if time.Now().After(e.expires) {
		c.lru.Remove(raw)
		return nil, false
	}
	return e.segments, true
}

// Put caches the parsed segments for raw.
func (c *Cache) Put(raw string, segments []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Add(raw, entry{segments: segments, expires: time.Now().Add(c.ttl)})
}

// Len reports the current number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}
