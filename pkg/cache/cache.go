// Package cache provides pluggable byte caches and the key scheme used to
// cache catalogs and optimization results.
//
// Backends share one small interface: a file cache for CLI usage, an
// in-memory cache for the API server and tests, a Redis cache for shared
// deployments, and a null cache that disables caching entirely.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented cache with TTL support.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key was
	// present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A non-positive ttl means the entry never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the backend.
	Close() error
}

// Time-to-live per entry kind. Catalog entries are keyed by content hash and
// never go stale; results embed the solve options in their key, so they only
// expire to bound storage.
const (
	TTLCatalog = 0
	TTLResult  = 7 * 24 * time.Hour
)

// ResultKeyOpts are the solve parameters that change the optimization
// outcome. Two runs with equal catalog hashes and equal ResultKeyOpts are
// interchangeable, so they share a cache entry.
type ResultKeyOpts struct {
	TimeLimit         time.Duration `json:"time_limit"`
	MaxNodes          int64         `json:"max_nodes"`
	StallLimit        time.Duration `json:"stall_limit"`
	Seed              int64         `json:"seed"`
	ExactThreshold    int           `json:"exact_threshold"`
	LazyPairThreshold int           `json:"lazy_pair_threshold"`
}

// Keyer generates cache keys. Implementations may add scoping prefixes.
type Keyer interface {
	// CatalogKey generates a key for a parsed catalog, from the content hash
	// of the catalog file.
	CatalogKey(catalogHash string) string

	// ResultKey generates a key for an optimization result over the catalog
	// with the given content hash.
	ResultKey(catalogHash string, opts ResultKeyOpts) string
}

// DefaultKeyer is the standard key scheme.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// CatalogKey returns "catalog:<hash>".
func (k *DefaultKeyer) CatalogKey(catalogHash string) string {
	return "catalog:" + catalogHash
}

// ResultKey returns "result:<hash(catalogHash, opts)>" so every option that
// changes the outcome changes the key.
func (k *DefaultKeyer) ResultKey(catalogHash string, opts ResultKeyOpts) string {
	return hashKey("result", catalogHash, opts)
}

var _ Keyer = (*DefaultKeyer)(nil)
