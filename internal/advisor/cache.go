package advisor

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

// cacheEntry represents a cached piece of advice.
type cacheEntry struct {
	expiry time.Time
	advice string
}

// adviceCache provides thread-safe caching of advice keyed by prompt. Asking
// again about the same purchase with the same answers returns the same text.
type adviceCache struct {
	entries map[string]cacheEntry
	now     func() time.Time
	ttl     time.Duration
	mu      sync.RWMutex
}

// newAdviceCache creates a new cache with the specified TTL.
func newAdviceCache(ttl time.Duration) *adviceCache {
	if ttl == 0 {
		ttl = 15 * time.Minute
	}

	return &adviceCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func cacheKey(prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return hex.EncodeToString(sum[:])
}

// get retrieves advice from the cache if it exists and hasn't expired.
func (c *adviceCache) get(prompt string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.entries[cacheKey(prompt)]
	if !exists || c.now().After(entry.expiry) {
		return "", false
	}
	return entry.advice, true
}

// set stores advice in the cache and drops expired entries.
func (c *adviceCache) set(prompt, advice string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, entry := range c.entries {
		if now.After(entry.expiry) {
			delete(c.entries, key)
		}
	}
	c.entries[cacheKey(prompt)] = cacheEntry{
		advice: advice,
		expiry: now.Add(c.ttl),
	}
}

// size returns the number of entries in the cache.
func (c *adviceCache) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
