package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"golang.org/x/exp/maps"
	"golang.org/x/sync/singleflight"

	"github.com/de-tools/alert-atlas/pkg/models/domain"
)

// Key identifies one memoized result. Filter must be the canonical
// filter string so semantically identical requests share an entry.
type Key struct {
	View        domain.View
	Filter      string
	Granularity domain.Granularity
	Metric      string
	Horizon     int
}

// Hash renders the deterministic cache key.
func (k Key) Hash() string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%s|%s|%d",
		k.View, k.Filter, k.Granularity, k.Metric, k.Horizon)))
	return hex.EncodeToString(sum[:])
}

// Recorder receives cache hit/miss events. Implemented by pkg/metrics;
// a nil Recorder disables recording.
type Recorder interface {
	Hit()
	Miss()
}

type entry struct {
	view      domain.View
	value     interface{}
	expiresAt time.Time
}

// Cache memoizes aggregation and forecast results with a TTL. Concurrent
// callers for the same key share a single computation via singleflight;
// distinct keys compute in parallel. Failed computations are never
// stored.
type Cache struct {
	mu       sync.RWMutex
	entries  map[string]entry
	ttl      time.Duration
	group    singleflight.Group
	recorder Recorder

	sweepOnce sync.Once
	stop      chan struct{}
}

func New(ttl time.Duration, recorder Recorder) *Cache {
	return &Cache{
		entries:  make(map[string]entry),
		ttl:      ttl,
		recorder: recorder,
		stop:     make(chan struct{}),
	}
}

// GetOrCompute returns the cached value for key, or runs compute once
// for all concurrent callers and caches the result on success.
func (c *Cache) GetOrCompute(
	ctx context.Context,
	key Key,
	compute func(ctx context.Context) (interface{}, error),
) (interface{}, error) {
	hash := key.Hash()

	if v, ok := c.lookup(hash); ok {
		c.hit()
		return v, nil
	}
	c.miss()

	v, err, _ := c.group.Do(hash, func() (interface{}, error) {
		// A loser of an earlier flight may have already stored the value.
		if v, ok := c.lookup(hash); ok {
			return v, nil
		}
		v, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		c.store(hash, key.View, v)
		return v, nil
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}

// InvalidateView drops every entry belonging to one view. Called when
// the underlying dataset refreshes.
func (c *Cache) InvalidateView(view domain.View) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for hash, e := range c.entries {
		if e.view == view {
			delete(c.entries, hash)
		}
	}
}

// InvalidateAll drops everything.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	maps.Clear(c.entries)
}

// Len reports the number of entries, expired ones included.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// StartSweeper proactively evicts expired entries on the given interval.
// Lazy eviction in lookup keeps the cache correct without it.
func (c *Cache) StartSweeper(interval time.Duration) {
	c.sweepOnce.Do(func() {
		go func() {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					c.sweep(time.Now())
				case <-c.stop:
					return
				}
			}
		}()
	})
}

// Stop terminates the sweeper goroutine, if started.
func (c *Cache) Stop() {
	close(c.stop)
}

func (c *Cache) lookup(hash string) (interface{}, bool) {
	c.mu.RLock()
	e, ok := c.entries[hash]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if time.Now().After(e.expiresAt) {
		c.mu.Lock()
		// Re-check under the write lock; another goroutine may have
		// refreshed the entry meanwhile.
		if cur, still := c.entries[hash]; still && time.Now().After(cur.expiresAt) {
			delete(c.entries, hash)
		}
		c.mu.Unlock()
		return nil, false
	}
	return e.value, true
}

func (c *Cache) store(hash string, view domain.View, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[hash] = entry{
		view:      view,
		value:     value,
		expiresAt: time.Now().Add(c.ttl),
	}
}

func (c *Cache) sweep(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for hash, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, hash)
		}
	}
}

func (c *Cache) hit() {
	if c.recorder != nil {
		c.recorder.Hit()
	}
}

func (c *Cache) miss() {
	if c.recorder != nil {
		c.recorder.Miss()
	}
}
