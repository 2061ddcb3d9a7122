package cache

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/lborres/inkwell/core"
)

var _ core.CacheWithStats = (*InMemoryCache)(nil)

// InMemoryCache keeps verified sessions keyed by token hash so repeated
// requests skip the store. Entries live for TTL or until the session itself
// expires, whichever comes first.
type InMemoryCache struct {
	mu      sync.RWMutex
	entries map[string]*entry
	ttl     time.Duration
	maxSize int
	now     func() time.Time

	hits, misses, sets, deletes, evictions atomic.Int64
}

type entry struct {
	session  *core.Session
	cachedAt time.Time
}

const (
	DefaultTTL     = 5 * time.Minute
	DefaultMaxSize = 500
)

// NewInMemoryCache applies DefaultTTL and DefaultMaxSize to unset fields.
func NewInMemoryCache(c core.CacheConfig) *InMemoryCache {
	if c.TTL <= 0 {
		c.TTL = DefaultTTL
	}
	if c.MaxSize <= 0 {
		c.MaxSize = DefaultMaxSize
	}

	return &InMemoryCache{
		entries: make(map[string]*entry),
		ttl:     c.TTL,
		maxSize: c.MaxSize,
		now:     time.Now,
	}
}

// Get returns ErrCacheNotFound for unknown keys and for entries that are
// stale or whose session has expired. Stale entries are dropped.
func (c *InMemoryCache) Get(tokenHash string) (*core.Session, error) {
	c.mu.RLock()
	e, ok := c.entries[tokenHash]
	c.mu.RUnlock()

	if !ok {
		c.misses.Add(1)
		return nil, core.ErrCacheNotFound
	}

	now := c.now()
	if now.Sub(e.cachedAt) > c.ttl || now.After(e.session.ExpiresAt) {
		c.misses.Add(1)
		_ = c.Delete(tokenHash)
		return nil, core.ErrCacheNotFound
	}

	c.hits.Add(1)
	return e.session, nil
}

// Set stores a session in cache, evicting the oldest entry when full.
func (c *InMemoryCache) Set(tokenHash string, session *core.Session) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, replacing := c.entries[tokenHash]; !replacing && len(c.entries) >= c.maxSize {
		c.evictOldestLocked()
	}

	c.entries[tokenHash] = &entry{session: session, cachedAt: c.now()}
	c.sets.Add(1)
	return nil
}

// evictOldestLocked drops the entry cached longest ago. c.mu must be held.
func (c *InMemoryCache) evictOldestLocked() {
	var oldestKey string
	var oldest time.Time
	for k, e := range c.entries {
		if oldestKey == "" || e.cachedAt.Before(oldest) {
			oldestKey, oldest = k, e.cachedAt
		}
	}
	if oldestKey != "" {
		delete(c.entries, oldestKey)
		c.evictions.Add(1)
	}
}

func (c *InMemoryCache) Delete(tokenHash string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[tokenHash]; ok {
		delete(c.entries, tokenHash)
		c.deletes.Add(1)
	}
	return nil
}

func (c *InMemoryCache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*entry)
	return nil
}

func (c *InMemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *InMemoryCache) Stats() core.CacheStats {
	return core.CacheStats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Sets:      c.sets.Load(),
		Deletes:   c.deletes.Load(),
		Evictions: c.evictions.Load(),
		Size:      c.Len(),
		TTL:       c.ttl,
	}
}
