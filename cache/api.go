package cache

import (
	"context"
	"time"
)

// Hierarchy is the two-tier cache: a bounded in-process LRU front (L1)
// backed by a sharded TTL store (L2). Reads consult L1 first and promote
// L2 hits; writes go through both tiers. All methods are safe for
// concurrent use by many goroutines.
//
// Typical operation cost is O(1) expected: a map access and constant
// pointer fixes under a single lock (the L1 mutex or one shard's mutex,
// never both at once).
type Hierarchy[K comparable, V any] interface {
	// Start is a lifecycle hook reserved for warm-up; safe to call
	// repeatedly.
	Start()

	// Stop cancels the L2 background sweep and waits for it to exit.
	// The cache stays usable; expired entries are then removed only
	// lazily on read.
	Stop()

	// Get returns the value for k and a presence flag. A key that was
	// never set and a key that has expired are indistinguishable.
	Get(k K) (V, bool)

	// GetOrLoad returns the value for k, loading it via Options.Loader on
	// miss. Concurrent loads for the same key are coalesced. Returns
	// ErrNoLoader when no loader was configured.
	GetOrLoad(ctx context.Context, k K) (V, error)

	// Set writes k→v through both tiers with the default TTL.
	Set(k K, v V)

	// SetWithTTL writes k→v through both tiers with a per-key TTL.
	// A non-positive ttl disables expiration for this entry.
	SetWithTTL(k K, v V, ttl time.Duration)

	// Delete removes k from both tiers; the return value reports L1
	// presence only.
	Delete(k K) bool

	// Clear empties L1 and replaces L2 with a fresh store (new shards,
	// new locks, sweep restarted).
	Clear()

	// Size returns both tiers' entry counts; not a consistent snapshot.
	Size() (l1, l2 int)

	// Snapshot copies the hit/miss/get/set counters.
	Snapshot() Snapshot

	// Store exposes the current L2 tier for diagnostics.
	Store() *Store[K, V]

	// HealthCheck runs a set/get/delete round trip with the given probe.
	HealthCheck(probe K, value V) bool
}
