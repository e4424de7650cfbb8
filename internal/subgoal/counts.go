package subgoal

import (
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/notpogix/twitch-subgoal-overlay/internal/metrics"
)

// CountCache provides in-memory caching of subscriber counts with TTL-based
// expiration. Overlay pages poll every few seconds per channel; without the
// cache each poll would cost a Twitch API round trip and burn through the
// Helix rate limit.
type CountCache struct {
	mu      sync.RWMutex
	entries map[string]*countEntry
	ttl     time.Duration
	clock   clockwork.Clock
}

type countEntry struct {
	count     int
	expiresAt time.Time
}

// NewCountCache creates a new count cache with the specified TTL.
// Recommended TTL: 10 seconds (subscriber counts move slowly).
func NewCountCache(ttl time.Duration, clock clockwork.Clock) *CountCache {
	return &CountCache{
		entries: make(map[string]*countEntry),
		ttl:     ttl,
		clock:   clock,
	}
}

// Get retrieves a cached count if present and not expired.
// Returns (count, true) on cache hit, (0, false) on cache miss or expiry.
func (c *CountCache) Get(channelID string) (int, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[channelID]
	if !ok {
		return 0, false
	}

	// Expired entry, treat as cache miss.
	// Note: no delete here (read lock only). Eviction happens periodically.
	if c.clock.Now().After(entry.expiresAt) {
		return 0, false
	}

	return entry.count, true
}

// Set stores a count in the cache with current timestamp + TTL.
func (c *CountCache) Set(channelID string, count int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[channelID] = &countEntry{
		count:     count,
		expiresAt: c.clock.Now().Add(c.ttl),
	}
}

// Invalidate explicitly removes a count from the cache.
// Used after reauthorization to force a fresh fetch.
func (c *CountCache) Invalidate(channelID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, channelID)
}

// Clear removes all entries from the cache.
func (c *CountCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*countEntry)
}

// Size returns the current number of entries in the cache (including expired).
func (c *CountCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// EvictExpired removes all expired entries from the cache and returns the count evicted.
// This prevents unbounded cache growth over time.
func (c *CountCache) EvictExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	evicted := 0

	for channelID, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, channelID)
			evicted++
		}
	}

	return evicted
}

// StartEvictionTimer starts a background goroutine that periodically evicts
// expired entries. Returns a stop function to clean up the goroutine.
func (c *CountCache) StartEvictionTimer(interval time.Duration) func() {
	ticker := c.clock.NewTicker(interval)
	done := make(chan bool)

	go func() {
		for {
			select {
			case <-ticker.Chan():
				evicted := c.EvictExpired()
				if evicted > 0 {
					slog.Debug("Evicted expired count cache entries",
						"count", evicted,
						"remaining", c.Size(),
					)
					metrics.CountCacheEvictions.Add(float64(evicted))
				}
				metrics.CountCacheSize.Set(float64(c.Size()))

			case <-done:
				ticker.Stop()
				return
			}
		}
	}()

	return func() {
		close(done)
	}
}
