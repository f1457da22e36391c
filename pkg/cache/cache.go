// Package cache stores alignment results keyed by a hash of their inputs.
//
// Only outputs are cached (MSA rows, consensus sequences), never graphs.
// Keys are derived by a [Keyer] from a SHA-256 of the input sequences and
// the parameters that influence the result, so a changed scoring parameter
// or input base always misses.
//
// Backends:
//   - [FileCache]: one JSON file per entry, for the CLI
//   - [RedisCache]: shared cache for the HTTP server
//   - [MongoCache]: shared cache with a TTL index
//   - [NullCache]: caching disabled
//
// [Open] picks a backend from a URL.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with expiry.
//
// Get reports a miss as (nil, false, nil); errors are reserved for backend
// failures. A ttl of zero means the entry does not expire.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Entry lifetimes.
const (
	TTLMSA       = 7 * 24 * time.Hour
	TTLConsensus = 7 * 24 * time.Hour
)

// ResultKeyOpts holds the request properties that change a cached result
// beyond the input sequences.
type ResultKeyOpts struct {
	// Params is a stable encoding of the engine parameters.
	Params string
	// IncludeConsensus marks MSA results that carry a consensus row.
	IncludeConsensus bool
}

// Keyer derives cache keys.
type Keyer interface {
	MSAKey(inputHash string, opts ResultKeyOpts) string
	ConsensusKey(inputHash string, opts ResultKeyOpts) string
}

// DefaultKeyer produces unscoped keys of the form "kind:sha256".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// MSAKey returns the key of an alignment result.
func (DefaultKeyer) MSAKey(inputHash string, opts ResultKeyOpts) string {
	return hashKey("msa", inputHash, opts.Params, opts.IncludeConsensus)
}

// ConsensusKey returns the key of a consensus result.
func (DefaultKeyer) ConsensusKey(inputHash string, opts ResultKeyOpts) string {
	return hashKey("consensus", inputHash, opts.Params)
}
