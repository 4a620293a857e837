// Package sessionstore keeps a short-lived in-memory view of submissions so
// the status endpoint can answer without touching the database.
package sessionstore

import (
	"context"
	"sync"
	"time"

	"github.com/angleinstitute/backend/internal/model"
)

// DefaultTTL is how long a session stays visible after it is stored.
const DefaultTTL = 24 * time.Hour

// Cache is the store abstraction used by the submission service.
type Cache interface {
	// Get returns a copy of the session. Expired entries are dropped and
	// reported as absent.
	Get(id string) (model.Session, bool)
	// Set inserts or replaces a session, expiring it after the cache TTL.
	Set(s model.Session)
	// Update mutates the session in place. It returns false when absent.
	Update(id string, fn func(*model.Session)) bool
	// Expire reschedules the entry to expire after d.
	Expire(id string, d time.Duration)
	Delete(id string)
}

type entry struct {
	session   model.Session
	expiresAt time.Time
}

// MemoryCache is a mutex-guarded map of sessions with per-entry expiry.
type MemoryCache struct {
	mu    sync.Mutex
	items map[string]*entry
	ttl   time.Duration
	now   func() time.Time
}

var _ Cache = (*MemoryCache)(nil)

// NewMemoryCache creates a MemoryCache. A non-positive ttl uses DefaultTTL.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryCache{
		items: make(map[string]*entry),
		ttl:   ttl,
		now:   time.Now,
	}
}

// WithClock replaces the time source. Intended for tests.
func (c *MemoryCache) WithClock(now func() time.Time) *MemoryCache {
	c.now = now
	return c
}

func (c *MemoryCache) Get(id string) (model.Session, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.live(id)
	if !ok {
		return model.Session{}, false
	}
	return e.session, true
}

func (c *MemoryCache) Set(s model.Session) {
	c.mu.Lock()
	c.items[s.ID] = &entry{session: s, expiresAt: c.now().Add(c.ttl)}
	c.mu.Unlock()
}

func (c *MemoryCache) Update(id string, fn func(*model.Session)) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.live(id)
	if !ok {
		return false
	}
	fn(&e.session)
	return true
}

func (c *MemoryCache) Expire(id string, d time.Duration) {
	c.mu.Lock()
	if e, ok := c.items[id]; ok {
		if at := c.now().Add(d); at.Before(e.expiresAt) {
			e.expiresAt = at
		}
	}
	c.mu.Unlock()
}

func (c *MemoryCache) Delete(id string) {
	c.mu.Lock()
	delete(c.items, id)
	c.mu.Unlock()
}

// Len returns the number of entries, expired or not.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Sweep drops every expired entry and returns how many were removed.
func (c *MemoryCache) Sweep() int {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	removed := 0
	for id, e := range c.items {
		if !now.Before(e.expiresAt) {
			delete(c.items, id)
			removed++
		}
	}
	return removed
}

// Run sweeps every interval until ctx is done.
func (c *MemoryCache) Run(ctx context.Context, interval time.Duration) {
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

// live must be called with mu held.
func (c *MemoryCache) live(id string) (*entry, bool) {
	e, ok := c.items[id]
	if !ok {
		return nil, false
	}
	if !c.now().Before(e.expiresAt) {
		delete(c.items, id)
		return nil, false
	}
	return e, true
}
