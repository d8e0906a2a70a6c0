package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/maypok86/otter/v2"
)

// memoryMaxTTL caps how long any entry can live in the otter cache.
// Per-entry expiry below it is enforced through the stored ExpiresAt.
const memoryMaxTTL = time.Hour

type memoryEntry struct {
	ExpiresAt time.Time
	Data      []byte
}

// Memory is an in-process Store backed by an otter cache. Entries carry
// their own expiry so callers can mix TTLs within one cache instance.
type Memory struct {
	cache  *otter.Cache[string, memoryEntry]
	logger *slog.Logger
}

// NewMemory creates an in-process cache suitable for both decision and
// context tiers.
func NewMemory(logger *slog.Logger) *Memory {
	c := otter.Must(&otter.Options[string, memoryEntry]{
		MaximumSize:      100_000,
		InitialCapacity:  1_000,
		ExpiryCalculator: otter.ExpiryWriting[string, memoryEntry](memoryMaxTTL),
	})
	return &Memory{cache: c, logger: logger}
}

// Get returns the value stored under key, if present and not expired.
func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	entry, found := m.cache.GetIfPresent(key)
	if !found {
		m.logger.Debug("cache miss", "key", key, "reason", "not_found")
		return nil, false, nil
	}

	// Otter evicts on its own schedule; double-check the entry expiry.
	if time.Now().After(entry.ExpiresAt) {
		m.logger.Debug("cache miss", "key", key, "reason", "expired", "expired_at", entry.ExpiresAt)
		m.cache.Invalidate(key)
		return nil, false, nil
	}

	return entry.Data, true, nil
}

// Set stores value under key for at most ttl.
func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration, _ Strategy) error {
	entry := memoryEntry{
		Data:      value,
		ExpiresAt: time.Now().Add(ttl),
	}
	m.cache.Set(key, entry)
	m.logger.Debug("cache set", "key", key, "expires_at", entry.ExpiresAt, "size", len(value))
	return nil
}

// Len reports the estimated number of live entries.
func (m *Memory) Len() int {
	return int(m.cache.EstimatedSize())
}
