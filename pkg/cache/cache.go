// Package cache defines the cache collaborator boundary for the decision
// engine. The engine only chooses keys, TTLs, and staleness rules; eviction,
// persistence, and replication belong to the backing store.
package cache

import (
	"context"
	"time"
)

// Strategy hints how a write should be applied by the backing store.
type Strategy string

// Replace overwrites any existing entry unconditionally. Last write wins;
// concurrent writers for the same key are functionally interchangeable.
const Replace Strategy = "replace"

// Store is the minimal contract the engine needs from a cache backend.
// Implementations must treat Get and Set as potentially blocking I/O and
// bound their own timeouts; the engine never retries a failed call.
type Store interface {
	// Get returns the stored value and whether the key was present.
	Get(ctx context.Context, key string) (value []byte, hit bool, err error)

	// Set stores value under key for at most ttl.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration, strategy Strategy) error
}
