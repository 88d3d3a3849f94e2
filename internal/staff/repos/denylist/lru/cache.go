package lru

import (
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/haukened/staffdir/internal/staff/domain"
	"github.com/haukened/staffdir/internal/staff/repos/denylist"
)

// decisionCache is an LRU-backed implementation of denylist.DecisionCache.
// It tracks basic metrics: hits, misses, and evictions.
type decisionCache struct {
	lru       *lru.Cache[string, domain.DenyDecision]
	capacity  int
	hits      uint64
	misses    uint64
	evictions uint64
}

// disabledCache is a no-op DecisionCache used when size <= 0.
type disabledCache struct{}

// New creates a new DecisionCache with the given capacity. If size <= 0, a
// disabled no-op cache is returned that always misses and tracks no metrics.
func New(size int) (denylist.DecisionCache, error) {
	if size <= 0 {
		return &disabledCache{}, nil
	}
	dc := &decisionCache{capacity: size}
	// NewWithEvict observes evictions, including Purge-induced ones.
	cache, err := lru.NewWithEvict(size, func(_ string, _ domain.DenyDecision) {
		atomic.AddUint64(&dc.evictions, 1)
	})
	if err != nil {
		return nil, err
	}
	dc.lru = cache
	return dc, nil
}

// Get looks up a decision by value. When found, increments hits; otherwise increments misses.
func (c *decisionCache) Get(value string) (domain.DenyDecision, bool) {
	if val, ok := c.lru.Get(value); ok {
		atomic.AddUint64(&c.hits, 1)
		return val, true
	}
	atomic.AddUint64(&c.misses, 1)
	return domain.DenyDecision{}, false
}

// Put stores a decision by value.
func (c *decisionCache) Put(value string, d domain.DenyDecision) {
	c.lru.Add(value, d)
}

// Len returns the number of entries in the cache.
func (c *decisionCache) Len() int { return c.lru.Len() }

// Purge clears all entries. Evictions are counted via the eviction callback.
func (c *decisionCache) Purge() { c.lru.Purge() }

// Stats returns a snapshot of the cache counters.
func (c *decisionCache) Stats() denylist.CacheStats {
	return denylist.CacheStats{
		Capacity:  c.capacity,
		Size:      c.lru.Len(),
		Hits:      atomic.LoadUint64(&c.hits),
		Misses:    atomic.LoadUint64(&c.misses),
		Evictions: atomic.LoadUint64(&c.evictions),
	}
}

func (d *disabledCache) Get(string) (domain.DenyDecision, bool) {
	return domain.DenyDecision{}, false
}

func (d *disabledCache) Put(string, domain.DenyDecision) {}

func (d *disabledCache) Len() int { return 0 }

func (d *disabledCache) Purge() {}

func (d *disabledCache) Stats() denylist.CacheStats { return denylist.CacheStats{} }

var _ denylist.DecisionCache = (*decisionCache)(nil)
var _ denylist.DecisionCache = (*disabledCache)(nil)
