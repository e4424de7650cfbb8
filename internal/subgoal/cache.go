package subgoal

import (
	"sync"

	"github.com/notpogix/twitch-subgoal-overlay/internal/domain"
	"github.com/notpogix/twitch-subgoal-overlay/internal/metrics"
)

// CredentialCache is the in-memory mirror of the credential store. Every
// read during metric fetching is served from here; the durable store is
// only touched on writes and at startup. Writes go to the store first,
// then the canonical record lands here.
type CredentialCache struct {
	mu      sync.RWMutex
	entries map[string]domain.Credential
}

func NewCredentialCache() *CredentialCache {
	return &CredentialCache{
		entries: make(map[string]domain.Credential),
	}
}

// Get returns a copy of the cached credential for the channel, if present.
func (c *CredentialCache) Get(channelID string) (*domain.Credential, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	cred, ok := c.entries[channelID]
	if !ok {
		return nil, false
	}
	return &cred, true
}

// Set stores a credential, replacing any previous entry for the channel.
func (c *CredentialCache) Set(cred domain.Credential) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[cred.ChannelID] = cred
	metrics.CredentialCacheSize.Set(float64(len(c.entries)))
}

// Delete removes the credential for the channel.
func (c *CredentialCache) Delete(channelID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, channelID)
	metrics.CredentialCacheSize.Set(float64(len(c.entries)))
}

// LoadAll replaces the cache contents with the given credentials.
// Called at startup to hydrate the mirror from the durable store.
func (c *CredentialCache) LoadAll(creds []domain.Credential) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]domain.Credential, len(creds))
	for _, cred := range creds {
		c.entries[cred.ChannelID] = cred
	}
	metrics.CredentialCacheSize.Set(float64(len(c.entries)))
}

// Size returns the current number of cached credentials.
func (c *CredentialCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
