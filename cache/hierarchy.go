package cache

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/opsdash/tiercache/internal/singleflight"
	"github.com/opsdash/tiercache/internal/util"
)

// ErrNoLoader is returned by GetOrLoad when no Loader was configured.
var ErrNoLoader = errors.New("cache: no Loader provided")

// hierarchy composes the L1 LRU tier and the L2 sharded TTL store into one
// logical cache with read-through promotion and write-through sets.
type hierarchy[K comparable, V any] struct {
	l1  *LRU[K, V]
	l2  atomic.Pointer[Store[K, V]]
	opt Options[K, V]

	sf singleflight.Group[K, V]

	// Monotonic counters, padded to separate cache lines: under load every
	// Get touches two of them from many goroutines at once.
	_        util.CacheLinePad
	l1Hits   util.PaddedAtomicInt64
	l1Misses util.PaddedAtomicInt64
	l2Hits   util.PaddedAtomicInt64
	l2Misses util.PaddedAtomicInt64
	gets     util.PaddedAtomicInt64
	sets     util.PaddedAtomicInt64
}

// New constructs a two-tier cache from the given Options. Configuration is
// normalized, never rejected (see Options); the zero Options value yields a
// usable cache with defaults. The background sweep starts immediately when
// CleanupInterval is positive.
//
// The returned Hierarchy is caller-owned: construct it once, share it by
// injection, and Stop it at teardown. The package keeps no global instance.
func New[K comparable, V any](opt Options[K, V]) Hierarchy[K, V] {
	opt = opt.withDefaults()
	h := &hierarchy[K, V]{
		l1:  NewLRU[K, V](opt.L1MaxSize),
		opt: opt,
	}
	h.l1.onEvict = opt.OnEvict
	h.l2.Store(NewStore[K, V](opt))
	return h
}

// Start is reserved for warm-up logic; currently a no-op, safe to repeat.
func (h *hierarchy[K, V]) Start() {}

// Stop shuts down the L2 background sweep and waits for it. Get/Set remain
// valid afterwards; entries then expire only lazily on read.
func (h *hierarchy[K, V]) Stop() {
	h.l2.Load().Close()
}

// Get consults L1 first, then L2. An L2 hit is promoted into L1 so the
// next read of the same key is an L1 hit. L1 is only ever populated from a
// successful L2 read or from a Set that also wrote L2, so it never holds a
// value L2 has not seen.
func (h *hierarchy[K, V]) Get(k K) (V, bool) {
	h.gets.Add(1)

	if v, ok := h.l1.Get(k); ok {
		h.l1Hits.Add(1)
		h.opt.Metrics.Hit(TierL1)
		return v, true
	}
	h.l1Misses.Add(1)
	h.opt.Metrics.Miss(TierL1)

	if v, ok := h.l2.Load().Get(k); ok {
		h.l2Hits.Add(1)
		h.opt.Metrics.Hit(TierL2)
		h.l1.Set(k, v) // promote
		return v, true
	}
	h.l2Misses.Add(1)
	h.opt.Metrics.Miss(TierL2)

	var zero V
	return zero, false
}

// Set writes through both tiers with the default TTL.
func (h *hierarchy[K, V]) Set(k K, v V) {
	h.sets.Add(1)
	h.l1.Set(k, v)
	l2 := h.l2.Load()
	l2.Set(k, v)
	h.opt.Metrics.Size(h.l1.Len(), l2.Len())
}

// SetWithTTL writes through both tiers with a per-key TTL. A non-positive
// ttl disables expiration for this entry.
func (h *hierarchy[K, V]) SetWithTTL(k K, v V, ttl time.Duration) {
	h.sets.Add(1)
	h.l1.Set(k, v)
	l2 := h.l2.Load()
	l2.SetWithTTL(k, v, ttl)
	h.opt.Metrics.Size(h.l1.Len(), l2.Len())
}

// Delete removes k from both tiers and reports whether the front tier held
// it. Callers treating the hierarchy as one logical store should not read
// anything into a false return beyond "it was not cached up front".
func (h *hierarchy[K, V]) Delete(k K) bool {
	present := h.l1.Delete(k)
	h.l2.Load().Delete(k)
	return present
}

// Clear empties L1 and replaces L2 wholesale: a fresh store with fresh
// shards, fresh locks and a restarted sweep is simpler and cheaper than
// draining every partition of the old one in place. The old store is
// closed after the swap, so concurrent readers that already picked it up
// finish against a consistent (if doomed) store.
func (h *hierarchy[K, V]) Clear() {
	h.l1.Clear()
	old := h.l2.Swap(NewStore[K, V](h.opt))
	old.Close()
}

// Size returns the entry counts of both tiers. Diagnostic only; the two
// numbers are not read atomically with respect to each other.
func (h *hierarchy[K, V]) Size() (l1, l2 int) {
	return h.l1.Len(), h.l2.Load().Len()
}

// Snapshot copies the hierarchy's counters.
func (h *hierarchy[K, V]) Snapshot() Snapshot {
	return Snapshot{
		L1Hits:   h.l1Hits.Load(),
		L1Misses: h.l1Misses.Load(),
		L2Hits:   h.l2Hits.Load(),
		L2Misses: h.l2Misses.Load(),
		Gets:     h.gets.Load(),
		Sets:     h.sets.Load(),
	}
}

// Store exposes the current L2 tier for diagnostics (hot shards, per-shard
// stats). Clear replaces the store, so do not retain the pointer across
// calls that may clear the cache.
func (h *hierarchy[K, V]) Store() *Store[K, V] {
	return h.l2.Load()
}

// GetOrLoad returns the value for k, loading it via Options.Loader on
// miss. Concurrent loads for the same key are coalesced so the loader runs
// at most once per in-flight key.
func (h *hierarchy[K, V]) GetOrLoad(ctx context.Context, k K) (V, error) {
	if v, ok := h.Get(k); ok {
		return v, nil
	}
	if h.opt.Loader == nil {
		var zero V
		return zero, ErrNoLoader
	}

	return h.sf.Do(ctx, k, func() (V, error) {
		// Re-check after joining the flight: a concurrent leader may have
		// populated the cache already.
		if v, ok := h.Get(k); ok {
			return v, nil
		}
		v, err := h.opt.Loader(ctx, k)
		if err == nil {
			h.Set(k, v)
		}
		return v, err
	})
}

// HealthCheck exercises a set/get/delete round trip through both tiers
// with the supplied probe key and value. It reports false when the written
// key cannot be read back. The probe traffic counts toward metrics like
// any other traffic.
func (h *hierarchy[K, V]) HealthCheck(probe K, value V) bool {
	h.Set(probe, value)
	_, ok := h.Get(probe)
	h.Delete(probe)
	return ok
}
