// Package cache keeps successful Toolhub lookups for a bounded time.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/toolhub-scripting/go-toolhub/src/value"
)

// ResponseCache is a thread-safe TTL cache of decoded responses. A cache
// built with a non-positive TTL stores nothing.
type ResponseCache struct {
	mu         sync.RWMutex
	items      map[string]entry
	ttl        time.Duration
	maxEntries int
	nextIdx    int64

	statsMu sync.Mutex
	hits    int64
	misses  int64
	evicted int64
}

type entry struct {
	val       value.Value
	expiry    time.Time
	insertIdx int64
}

// New creates a ResponseCache. maxEntries <= 0 means unbounded.
func New(ttl time.Duration, maxEntries int) *ResponseCache {
	return &ResponseCache{
		items:      make(map[string]entry),
		ttl:        ttl,
		maxEntries: maxEntries,
	}
}

// Enabled reports whether the cache stores anything.
func (c *ResponseCache) Enabled() bool {
	return c != nil && c.ttl > 0
}

// Key builds a cache key from an HTTP method and URL.
func Key(method, url string) string {
	hasher := sha256.New()
	hasher.Write([]byte(method))
	hasher.Write([]byte("\n"))
	hasher.Write([]byte(url))
	return hex.EncodeToString(hasher.Sum(nil))
}

// Get returns a cached value if present and not expired.
func (c *ResponseCache) Get(key string) (value.Value, bool) {
	if !c.Enabled() {
		return value.Value{}, false
	}
	c.mu.RLock()
	e, ok := c.items[key]
	c.mu.RUnlock()

	if !ok || time.Now().After(e.expiry) {
		if ok {
			c.Invalidate(key)
		}
		c.record(false)
		return value.Value{}, false
	}
	c.record(true)
	return e.val, true
}

// Set stores v under key, evicting the oldest entry when full.
func (c *ResponseCache) Set(key string, v value.Value) {
	if !c.Enabled() {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.items[key]; !exists && c.maxEntries > 0 && len(c.items) >= c.maxEntries {
		c.evictOldest()
	}
	c.nextIdx++
	c.items[key] = entry{
		val:       v,
		expiry:    time.Now().Add(c.ttl),
		insertIdx: c.nextIdx,
	}
}

// evictOldest drops the entry with the smallest insertion index. Caller holds mu.
func (c *ResponseCache) evictOldest() {
	var oldestKey string
	var oldestIdx int64 = -1
	for k, e := range c.items {
		if oldestIdx < 0 || e.insertIdx < oldestIdx {
			oldestKey = k
			oldestIdx = e.insertIdx
		}
	}
	if oldestIdx >= 0 {
		delete(c.items, oldestKey)
		c.statsMu.Lock()
		c.evicted++
		c.statsMu.Unlock()
	}
}

// Invalidate removes a single entry.
func (c *ResponseCache) Invalidate(key string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
}

// InvalidateAll clears the cache.
func (c *ResponseCache) InvalidateAll() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.items = make(map[string]entry)
	c.mu.Unlock()
}

// CleanExpired removes expired entries.
func (c *ResponseCache) CleanExpired() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for k, e := range c.items {
		if now.After(e.expiry) {
			delete(c.items, k)
		}
	}
}

// StartCleanupRoutine starts a background goroutine to periodically clean expired entries
func (c *ResponseCache) StartCleanupRoutine(ctx context.Context, interval time.Duration) {
	if !c.Enabled() || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.CleanExpired()
			}
		}
	}()
}

func (c *ResponseCache) record(hit bool) {
	c.statsMu.Lock()
	if hit {
		c.hits++
	} else {
		c.misses++
	}
	c.statsMu.Unlock()
}

// Stats returns cache performance statistics
func (c *ResponseCache) Stats() Stats {
	if c == nil {
		return Stats{}
	}
	c.mu.RLock()
	size := len(c.items)
	c.mu.RUnlock()

	c.statsMu.Lock()
	defer c.statsMu.Unlock()
	return Stats{
		Hits:    c.hits,
		Misses:  c.misses,
		Evicted: c.evicted,
		Size:    size,
	}
}

// Stats holds cache performance metrics
type Stats struct {
	Hits    int64
	Misses  int64
	Evicted int64
	Size    int
}

// HitRate returns hits / (hits + misses), or 0 before any lookup.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0.0
	}
	return float64(s.Hits) / float64(total)
}
