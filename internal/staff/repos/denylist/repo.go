package denylist

import (
	"sync"

	"github.com/haukened/staffdir/internal/staff/common/log"
	"github.com/haukened/staffdir/internal/staff/common/utils"
	"github.com/haukened/staffdir/internal/staff/domain"
)

// repository implements Repository by composing a Store, a Bloom filter (via
// factory), and a DecisionCache. It applies a bloom → cache → store pipeline
// on reads and performs atomic snapshot updates on writes.
type repository struct {
	mu      sync.RWMutex
	store   Store
	cache   DecisionCache
	bloom   BloomFilter
	factory BloomFactory
	fpRate  float64
	logger  log.Logger
}

// NewRepository constructs a Repository.
// fpRate is the target false-positive rate for the Bloom filter when rebuilding.
func NewRepository(store Store, cache DecisionCache, factory BloomFactory, fpRate float64, logger log.Logger) Repository {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &repository{store: store, cache: cache, factory: factory, fpRate: fpRate, logger: logger}
}

// Decide returns a DenyDecision for the candidate.
// Policy: on internal errors, prefer Allow (not denied).
func (r *repository) Decide(value string) domain.DenyDecision {
	cv := utils.CanonicalSecret(value)
	if cv == "" {
		return domain.AllowDecision()
	}
	// 1) checkBloom: early-allow if definitively negative
	if !r.checkBloom(cv) {
		return domain.AllowDecision()
	}
	// 2) checkCache
	if d, ok := r.checkCache(cv); ok {
		return d
	}
	// 3) checkStore
	dec := r.checkStore(cv)
	// 4) updateCache
	r.updateCache(cv, dec)
	return dec
}

// UpdateAll performs an atomic snapshot update across store, bloom, and cache.
func (r *repository) UpdateAll(entries []domain.DenyEntry, version uint64, updatedUnix int64) error {
	// 1) Rebuild the persistent store first.
	if err := r.store.RebuildAll(entries, version, updatedUnix); err != nil {
		return err
	}

	// 2) Build a fresh Bloom filter sized for the dataset.
	bf := r.factory.New(uint64(len(entries)), r.fpRate)
	for _, e := range entries {
		bf.Add([]byte(e.Value))
	}

	// 3) Swap bloom and purge decision cache under lock.
	r.mu.Lock()
	r.bloom = bf
	r.cache.Purge()
	r.mu.Unlock()

	r.logger.Info(map[string]any{"entries": len(entries), "version": version}, "denylist_updated")
	return nil
}

// Stats returns cache and store counters.
func (r *repository) Stats() RepoStats {
	r.mu.RLock()
	loaded := r.bloom != nil
	cs := r.cache.Stats()
	r.mu.RUnlock()
	return RepoStats{Cache: cs, Store: r.store.Stats(), BloomLoaded: loaded}
}

// checkBloom returns true if we should consult the store (maybe-positive),
// or false if we can early-allow (definitely negative). If no bloom is loaded,
// returns true to allow authoritative checking.
func (r *repository) checkBloom(cv string) bool {
	r.mu.RLock()
	bf := r.bloom
	r.mu.RUnlock()
	if bf == nil {
		return true
	}
	return bf.MightContain([]byte(cv))
}

// checkCache returns a cached decision when present.
func (r *repository) checkCache(cv string) (domain.DenyDecision, bool) {
	r.mu.RLock()
	d, ok := r.cache.Get(cv)
	r.mu.RUnlock()
	return d, ok
}

// checkStore consults the authoritative store and materializes a decision.
// On any error or miss, returns Allow.
func (r *repository) checkStore(cv string) domain.DenyDecision {
	entry, ok, err := r.store.Lookup(cv)
	if err != nil {
		r.logger.Warn(map[string]any{"error": err}, "denylist_store_lookup_failed")
		return domain.AllowDecision()
	}
	if ok {
		return domain.DenyDecision{Denied: true, Source: entry.Source}
	}
	return domain.AllowDecision()
}

// updateCache writes the final decision.
func (r *repository) updateCache(cv string, dec domain.DenyDecision) {
	r.mu.Lock()
	r.cache.Put(cv, dec)
	r.mu.Unlock()
}
