package sync

import (
	"context"
	"sync"
	"time"

	"github.com/desertthunder/trax/internal/track"
)

const (
	// sessionTTL bounds how long an unlinked discovery stays recallable.
	sessionTTL = 30 * time.Minute
	// sweepInterval is how often expired discoveries are purged.
	sweepInterval = 5 * time.Minute
)

type sessionEntry struct {
	item   *track.Item
	seenAt time.Time
}

// SessionCache holds unlinked discoveries keyed by canonical key. Entries
// expire a fixed window after their first observation regardless of later
// activity; nothing in the cache is persisted until the user links it.
type SessionCache struct {
	mu      sync.Mutex
	entries map[string]sessionEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewSessionCache creates an empty cache with the default TTL.
func NewSessionCache() *SessionCache {
	return &SessionCache{
		entries: map[string]sessionEntry{},
		ttl:     sessionTTL,
		now:     time.Now,
	}
}

// Put stores or updates a discovery. Expiry is anchored to the first
// observation: repeat puts refresh the item but not the retention window.
func (c *SessionCache) Put(item *track.Item) {
	c.mu.Lock()
	defer c.mu.Unlock()
	seenAt := c.now()
	if existing, ok := c.entries[item.Key]; ok {
		seenAt = existing.seenAt
	}
	c.entries[item.Key] = sessionEntry{item: item.Clone(), seenAt: seenAt}
}

// Get returns a clone of the cached discovery, or nil when absent or expired.
func (c *SessionCache) Get(key string) *track.Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok || c.now().Sub(entry.seenAt) > c.ttl {
		return nil
	}
	return entry.item.Clone()
}

// Take returns the cached discovery and removes it, or nil when absent or
// expired. Linking takes the entry out of the cache.
func (c *SessionCache) Take(key string) *track.Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok {
		return nil
	}
	delete(c.entries, key)
	if c.now().Sub(entry.seenAt) > c.ttl {
		return nil
	}
	return entry.item
}

// Snapshot returns clones of all live discoveries.
func (c *SessionCache) Snapshot() []*track.Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	items := make([]*track.Item, 0, len(c.entries))
	for _, entry := range c.entries {
		if now.Sub(entry.seenAt) > c.ttl {
			continue
		}
		items = append(items, entry.item.Clone())
	}
	return items
}

// sweep removes expired entries.
func (c *SessionCache) sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	for key, entry := range c.entries {
		if now.Sub(entry.seenAt) > c.ttl {
			delete(c.entries, key)
		}
	}
}

// Run sweeps the cache periodically until the context is cancelled.
func (c *SessionCache) Run(ctx context.Context) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.sweep()
		}
	}
}
