package denylist

// CacheStats reports lightweight cache metrics.
// All fields are best-effort snapshots and may be updated concurrently.
type CacheStats struct {
	Capacity  int    `json:"capacity" yaml:"capacity"`   // configured capacity (0 for disabled cache)
	Size      int    `json:"size" yaml:"size"`           // current number of entries
	Hits      uint64 `json:"hits" yaml:"hits"`           // total cache hits since construction
	Misses    uint64 `json:"misses" yaml:"misses"`       // total cache misses since construction
	Evictions uint64 `json:"evictions" yaml:"evictions"` // total evictions since construction
}

// StoreStats reports store counts and snapshot metadata.
type StoreStats struct {
	Entries     uint64 `json:"entries" yaml:"entries"`
	Version     uint64 `json:"version" yaml:"version"`           // snapshot version (0 if unknown)
	UpdatedUnix int64  `json:"updated_unix" yaml:"updated_unix"` // last updated unix time (0 if unknown)
}

// RepoStats exposes repository-level counters and underlying store stats.
type RepoStats struct {
	Cache       CacheStats `json:"cache" yaml:"cache"`
	Store       StoreStats `json:"store" yaml:"store"`
	BloomLoaded bool       `json:"bloom_loaded" yaml:"bloom_loaded"`
}
