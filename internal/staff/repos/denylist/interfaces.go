package denylist

import "github.com/haukened/staffdir/internal/staff/domain"

// BloomFactory builds Bloom filters sized for a capacity and target FP rate.
type BloomFactory interface {
	New(capacity uint64, fpRate float64) BloomFilter
}

// BloomSizer computes Bloom filter parameters from capacity (n) and target FP rate (p).
// It returns m (number of bits) and k (number of hash functions).
type BloomSizer interface {
	Size(n uint64, p float64) (m uint64, k uint8)
}

// BloomFilter is the minimal interface the repository needs from Bloom filters.
type BloomFilter interface {
	Add(key []byte)
	MightContain(key []byte) bool
}

// DecisionCache caches deny decisions by canonical value with basic metrics.
type DecisionCache interface {
	Get(value string) (domain.DenyDecision, bool)
	Put(value string, d domain.DenyDecision)
	Len() int
	Purge()
	Stats() CacheStats
}

// Store is the persistent, authoritative index of denied values.
// - Lookup: exact match on a canonical value
// - RebuildAll: atomically replace every entry and the snapshot metadata
type Store interface {
	Lookup(value string) (domain.DenyEntry, bool, error)
	RebuildAll(entries []domain.DenyEntry, version uint64, updatedUnix int64) error
	Stats() StoreStats
	Close() error
}

// Repository is the composition layer that wires bloom → cache → store.
// Decide returns a value-type DenyDecision for a candidate.
// UpdateAll rebuilds the store, refreshes the Bloom filter, and clears the cache.
type Repository interface {
	Decide(value string) domain.DenyDecision
	UpdateAll(entries []domain.DenyEntry, version uint64, updatedUnix int64) error
	Stats() RepoStats
}
