// Package cache provides byte-oriented caches for package database answers.
//
// Querying a package manager is slow (each dependency lookup forks a process),
// so pacstage keeps the answers of "depends" and "search" queries in a cache
// between runs. Three backends implement [Cache]:
//
//   - [FileCache]: JSON entry files under a directory (CLI default)
//   - [RedisCache]: a shared Redis instance (server deployments)
//   - [NullCache]: disables caching (--no-cache)
//
// Keys are derived by a [Keyer]. [ScopedKeyer] namespaces keys per query
// backend so answers from different package databases never mix.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte values with an optional time-to-live.
//
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the cached value and true on a hit. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Keyer derives cache keys.
type Keyer interface {
	// QueryKey returns the key for one package database query.
	// kind is the query type ("depends", "search").
	QueryKey(kind, name string) string

	// ClosureKey returns the key for a full resolution result.
	ClosureKey(seeds []string, opts ClosureKeyOpts) string
}

// ClosureKeyOpts holds the options that change a resolution result.
type ClosureKeyOpts struct {
	MaxDepth int    `json:"max_depth,omitempty"`
	Sentinel string `json:"sentinel,omitempty"`
}

// DefaultKeyer is the standard [Keyer].
type DefaultKeyer struct{}

// NewDefaultKeyer creates a DefaultKeyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// QueryKey returns "query:<kind>:<name>". Names are short and safe, so they
// are kept readable rather than hashed.
func (DefaultKeyer) QueryKey(kind, name string) string {
	return "query:" + kind + ":" + name
}

// ClosureKey hashes the ordered seed list together with the options.
// Seed order is significant because it determines discovery order.
func (DefaultKeyer) ClosureKey(seeds []string, opts ClosureKeyOpts) string {
	return hashKey("closure", seeds, opts)
}
