package citydata

import (
	"context"
	"sync"
	"time"

	"github.com/seoulfit/seoulfit-api/pkg/util"
)

// Cache keeps recent upstream answers keyed by POI code.
type Cache interface {
	Get(ctx context.Context, code string) (Area, bool, error)
	Put(ctx context.Context, area Area) error
}

type cacheEntry struct {
	area      Area
	expiresAt time.Time
}

// MemoryCache is a process-local Cache with a fixed TTL.
type MemoryCache struct {
	ttl time.Duration
	now util.Clock

	mu      sync.Mutex
	entries map[string]cacheEntry
}

// NewMemoryCache builds a cache whose entries live for ttl. A zero ttl
// keeps entries forever.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{ttl: ttl, now: util.NowUTC, entries: make(map[string]cacheEntry)}
}

// Get returns a live entry and evicts an expired one.
func (c *MemoryCache) Get(_ context.Context, code string) (Area, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[code]
	if !ok {
		return Area{}, false, nil
	}
	if !entry.expiresAt.IsZero() && !c.now().Before(entry.expiresAt) {
		delete(c.entries, code)
		return Area{}, false, nil
	}
	return entry.area, true, nil
}

// Put stores area under its code.
func (c *MemoryCache) Put(_ context.Context, area Area) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry := cacheEntry{area: area}
	if c.ttl > 0 {
		entry.expiresAt = c.now().Add(c.ttl)
	}
	c.entries[area.Code] = entry
	return nil
}

// Len reports the number of stored entries, expired ones included.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

var _ Cache = (*MemoryCache)(nil)
