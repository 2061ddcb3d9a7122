package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lborres/inkwell/core"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func newTestCache(ttl time.Duration, maxSize int) (*InMemoryCache, *fakeClock) {
	clock := &fakeClock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	c := NewInMemoryCache(core.CacheConfig{TTL: ttl, MaxSize: maxSize})
	c.now = clock.Now
	return c, clock
}

func testSession(clock *fakeClock, id string) *core.Session {
	return &core.Session{
		ID:        id,
		UserID:    "user-" + id,
		TokenHash: "hash-" + id,
		ExpiresAt: clock.Now().Add(24 * time.Hour),
		CreatedAt: clock.Now(),
		UpdatedAt: clock.Now(),
	}
}

func TestInMemoryCacheGetSet(t *testing.T) {
	// Requirement: a stored session is returned by its token hash and
	// unknown hashes report ErrCacheNotFound.
	c, clock := newTestCache(5*time.Minute, 10)
	session := testSession(clock, "a")

	require.NoError(t, c.Set(session.TokenHash, session))

	got, err := c.Get(session.TokenHash)
	require.NoError(t, err)
	assert.Equal(t, session.ID, got.ID)
	assert.Equal(t, session.UserID, got.UserID)

	_, err = c.Get("missing")
	assert.ErrorIs(t, err, core.ErrCacheNotFound)
}

func TestInMemoryCacheExpiry(t *testing.T) {
	tests := []struct {
		name    string
		ttl     time.Duration
		sessTTL time.Duration
		advance time.Duration
		wantHit bool
	}{
		{name: "within ttl", ttl: time.Minute, sessTTL: time.Hour, advance: 30 * time.Second, wantHit: true},
		{name: "cache ttl elapsed", ttl: time.Minute, sessTTL: time.Hour, advance: 2 * time.Minute, wantHit: false},
		{name: "session expired before cache ttl", ttl: time.Hour, sessTTL: time.Minute, advance: 2 * time.Minute, wantHit: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			c, clock := newTestCache(tt.ttl, 10)
			session := testSession(clock, "a")
			session.ExpiresAt = clock.Now().Add(tt.sessTTL)
			require.NoError(t, c.Set(session.TokenHash, session))

			// Act
			clock.Advance(tt.advance)
			_, err := c.Get(session.TokenHash)

			// Assert
			if tt.wantHit {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, core.ErrCacheNotFound)
			assert.Equal(t, 0, c.Len(), "stale entry should be dropped on read")
		})
	}
}

func TestInMemoryCacheDeleteAndClear(t *testing.T) {
	c, clock := newTestCache(time.Minute, 10)
	for _, id := range []string{"a", "b", "c"} {
		s := testSession(clock, id)
		require.NoError(t, c.Set(s.TokenHash, s))
	}

	require.NoError(t, c.Delete("hash-a"))
	require.NoError(t, c.Delete("never-there"))
	assert.Equal(t, 2, c.Len())

	_, err := c.Get("hash-a")
	assert.ErrorIs(t, err, core.ErrCacheNotFound)

	require.NoError(t, c.Clear())
	assert.Equal(t, 0, c.Len())
}

func TestInMemoryCacheEvictsOldestWhenFull(t *testing.T) {
	// Requirement: the cache never grows past MaxSize and drops the entry
	// that was cached first.
	c, clock := newTestCache(time.Hour, 3)
	for _, id := range []string{"a", "b", "c"} {
		s := testSession(clock, id)
		require.NoError(t, c.Set(s.TokenHash, s))
		clock.Advance(time.Second)
	}

	d := testSession(clock, "d")
	require.NoError(t, c.Set(d.TokenHash, d))

	assert.Equal(t, 3, c.Len())
	_, err := c.Get("hash-a")
	assert.ErrorIs(t, err, core.ErrCacheNotFound)
	_, err = c.Get("hash-d")
	assert.NoError(t, err)
	assert.Equal(t, int64(1), c.Stats().Evictions)
}

func TestInMemoryCacheOverwriteDoesNotEvict(t *testing.T) {
	c, clock := newTestCache(time.Hour, 2)
	a := testSession(clock, "a")
	b := testSession(clock, "b")
	require.NoError(t, c.Set(a.TokenHash, a))
	require.NoError(t, c.Set(b.TokenHash, b))

	require.NoError(t, c.Set(a.TokenHash, a))

	assert.Equal(t, 2, c.Len())
	assert.Equal(t, int64(0), c.Stats().Evictions)
}

func TestInMemoryCacheStats(t *testing.T) {
	c, clock := newTestCache(time.Minute, 10)
	s := testSession(clock, "a")

	require.NoError(t, c.Set(s.TokenHash, s))
	_, _ = c.Get(s.TokenHash)
	_, _ = c.Get(s.TokenHash)
	_, _ = c.Get("missing")
	require.NoError(t, c.Delete(s.TokenHash))

	stats := c.Stats()
	assert.Equal(t, int64(2), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, int64(1), stats.Sets)
	assert.Equal(t, int64(1), stats.Deletes)
	assert.Equal(t, 0, stats.Size)
	assert.Equal(t, time.Minute, stats.TTL)
}

func TestInMemoryCacheDefaults(t *testing.T) {
	c := NewInMemoryCache(core.CacheConfig{})
	assert.Equal(t, 5*time.Minute, c.ttl)
	assert.Equal(t, 500, c.maxSize)
}

func TestInMemoryCacheConcurrentAccess(t *testing.T) {
	c, clock := newTestCache(time.Minute, 1000)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s := testSession(clock, fmt.Sprintf("%d", i))
			_ = c.Set(s.TokenHash, s)
			_, _ = c.Get(s.TokenHash)
			_ = c.Delete(s.TokenHash)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 0, c.Len())
}
