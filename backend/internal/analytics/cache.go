package analytics

import (
	"sync"
	"time"
)

// cacheEntry pairs a computed result with its expiry. Entries are swapped
// whole so readers never observe a value with someone else's expiry.
type cacheEntry struct {
	stats     *Stats
	expiresAt time.Time
}

// Cache is a single-entry TTL cache for aggregated stats. The clock is
// injectable so tests can drive expiry without sleeping.
type Cache struct {
	mu    sync.RWMutex
	entry *cacheEntry
	ttl   time.Duration
	now   func() time.Time
}

// NewCache creates a cache with the given TTL and the wall clock
func NewCache(ttl time.Duration) *Cache {
	return &Cache{ttl: ttl, now: time.Now}
}

// Get returns the cached stats if present and not expired
func (c *Cache) Get() (*Stats, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.entry == nil || !c.now().Before(c.entry.expiresAt) {
		return nil, false
	}
	return c.entry.stats, true
}

// Stale returns the last cached stats regardless of expiry, or nil.
// Used as a fallback when the store is unreachable.
func (c *Cache) Stale() *Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.entry == nil {
		return nil
	}
	return c.entry.stats
}

// Set replaces the cache entry with a fresh value and expiry
func (c *Cache) Set(stats *Stats) {
	entry := &cacheEntry{stats: stats, expiresAt: c.now().Add(c.ttl)}
	c.mu.Lock()
	c.entry = entry
	c.mu.Unlock()
}

// Clear drops the cache entry; the next Aggregate recomputes
func (c *Cache) Clear() {
	c.mu.Lock()
	c.entry = nil
	c.mu.Unlock()
}
