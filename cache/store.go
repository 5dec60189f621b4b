package cache

import (
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/opsdash/tiercache/internal/util"
)

// Store is the sharded TTL tier (L2): a fixed set of independently locked
// partitions, each owning a map of keys to expiring entries. Expiration is
// enforced twice over: lazily when an expired entry is read, and by a
// periodic background sweep that bounds memory growth from keys that are
// written once and never read again. Both mechanisms are load-bearing;
// the sweep may be disabled, lazy expiry may not.
//
// All methods are safe for concurrent use.
type Store[K comparable, V any] struct {
	shards []*shard[K, V]
	hash   func(K) uint64

	ttl      time.Duration
	interval time.Duration

	metrics Metrics
	clock   Clock
	log     *zap.Logger
	onEvict func(K, V, EvictReason)

	// sweep lifecycle
	stop      chan struct{}
	done      chan struct{}
	sweeping  bool
	closeOnce sync.Once
}

// shard is one partition of the key space. mu is the sole mutation gate for
// m and for the contention counters; n mirrors len(m) so Len can read shard
// sizes without taking any lock (eventually consistent, diagnostics only).
type shard[K comparable, V any] struct {
	mu sync.Mutex
	m  map[K]entry[V]

	// contention bookkeeping, guarded by mu; never reset
	contended uint64
	waitNanos int64

	n atomic.Int64
}

// NewStore constructs the L2 tier from the store-relevant Options fields
// and starts the background sweep when CleanupInterval is positive.
// Construction never fails: bad shard counts are normalized, not rejected.
func NewStore[K comparable, V any](opt Options[K, V]) *Store[K, V] {
	opt = opt.withDefaults()

	shards := make([]*shard[K, V], opt.Shards)
	for i := range shards {
		shards[i] = &shard[K, V]{m: make(map[K]entry[V])}
	}

	s := &Store[K, V]{
		shards:   shards,
		hash:     opt.Hash,
		ttl:      opt.DefaultTTL,
		interval: opt.CleanupInterval,
		metrics:  opt.Metrics,
		clock:    opt.Clock,
		log:      opt.Logger,
		onEvict:  opt.OnEvict,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}

	if s.interval > 0 {
		s.sweeping = true
		go s.sweep()
		s.log.Debug("cache sweep started",
			zap.Duration("interval", s.interval),
			zap.Int("shards", len(s.shards)),
		)
	}
	return s
}

// Set writes k→v with the store's default TTL, replacing any prior entry.
func (s *Store[K, V]) Set(k K, v V) {
	s.SetWithTTL(k, v, s.ttl)
}

// SetWithTTL writes k→v with a per-key TTL. A non-positive ttl disables
// expiration for this entry.
func (s *Store[K, V]) SetWithTTL(k K, v V, ttl time.Duration) {
	sh := s.shardFor(k)
	s.lock(sh)
	defer sh.mu.Unlock()

	if _, ok := sh.m[k]; !ok {
		sh.n.Add(1)
	}
	sh.m[k] = entry[V]{val: v, exp: s.deadline(ttl)}
}

// Get returns the value for k. An entry whose deadline has passed is
// removed under the same lock and reported as a miss (lazy expiration).
func (s *Store[K, V]) Get(k K) (V, bool) {
	sh := s.shardFor(k)
	s.lock(sh)
	defer sh.mu.Unlock()

	e, ok := sh.m[k]
	if !ok {
		var zero V
		return zero, false
	}
	if e.expired(s.now()) {
		s.expireLocked(sh, k, e)
		var zero V
		return zero, false
	}
	return e.val, true
}

// Delete removes k and reports whether it was present. Deleting an absent
// key is a no-op.
func (s *Store[K, V]) Delete(k K) bool {
	sh := s.shardFor(k)
	s.lock(sh)
	defer sh.mu.Unlock()

	if _, ok := sh.m[k]; !ok {
		return false
	}
	delete(sh.m, k)
	sh.n.Add(-1)
	return true
}

// CleanupExpired removes expired entries from every shard, one shard at a
// time. Each shard's lock is released before the next is acquired, so a
// sweep in progress never blocks foreground operations on other shards.
// Returns the number of entries removed.
func (s *Store[K, V]) CleanupExpired() int {
	removed := 0
	for _, sh := range s.shards {
		now := s.now()
		s.lock(sh)
		for k, e := range sh.m {
			if e.expired(now) {
				s.expireLocked(sh, k, e)
				removed++
			}
		}
		sh.mu.Unlock()
	}
	return removed
}

// Close stops the background sweep and waits for it to exit. Idempotent.
// The store remains readable and writable afterwards; entries then expire
// only lazily.
func (s *Store[K, V]) Close() {
	s.closeOnce.Do(func() {
		if !s.sweeping {
			return
		}
		close(s.stop)
		<-s.done
		s.log.Debug("cache sweep stopped")
	})
}

// Len returns the total entry count across all shards. The count is read
// without locks and is only eventually consistent under concurrent
// mutation; use it for diagnostics, not invariants.
func (s *Store[K, V]) Len() int {
	total := int64(0)
	for _, sh := range s.shards {
		total += sh.n.Load()
	}
	return int(total)
}

// ShardSizes returns the per-shard entry counts (same consistency caveat
// as Len).
func (s *Store[K, V]) ShardSizes() []int {
	sizes := make([]int, len(s.shards))
	for i, sh := range s.shards {
		sizes[i] = int(sh.n.Load())
	}
	return sizes
}

// -------------------- internals --------------------

// shardFor maps a key to its partition. The mapping is a pure function of
// the key and the shard count, fixed for the lifetime of the store.
func (s *Store[K, V]) shardFor(k K) *shard[K, V] {
	return s.shards[util.ShardIndex(s.hash(k), len(s.shards))]
}

// shardIndex is shardFor without the dereference, for diagnostics/tests.
func (s *Store[K, V]) shardIndex(k K) int {
	return util.ShardIndex(s.hash(k), len(s.shards))
}

// lock acquires the shard's mutex. When the shard is already held the
// caller has to wait; that acquisition counts as contention and its wait
// latency is recorded under the lock just obtained.
func (s *Store[K, V]) lock(sh *shard[K, V]) {
	if sh.mu.TryLock() {
		return
	}
	start := s.now()
	sh.mu.Lock()
	wait := s.now() - start
	sh.contended++
	sh.waitNanos += wait
	s.metrics.Contention(time.Duration(wait))
}

// expireLocked removes an expired entry. Caller holds sh.mu.
func (s *Store[K, V]) expireLocked(sh *shard[K, V], k K, e entry[V]) {
	delete(sh.m, k)
	sh.n.Add(-1)
	s.metrics.Evict(EvictTTL)
	if s.onEvict != nil {
		s.onEvict(k, e.val, EvictTTL)
	}
}

func (s *Store[K, V]) now() int64 {
	if s.clock != nil {
		return s.clock.NowUnixNano()
	}
	return time.Now().UnixNano()
}

// deadline converts a relative TTL into an absolute UnixNano deadline.
// Non-positive ttl returns 0 (no expiration).
func (s *Store[K, V]) deadline(ttl time.Duration) int64 {
	if ttl <= 0 {
		return 0
	}
	return s.now() + int64(ttl)
}

// sweep is the background expiration loop: sleep for the configured
// interval, run one cleanup pass, repeat. It exits only via Close.
func (s *Store[K, V]) sweep() {
	defer close(s.done)

	tick := time.NewTicker(s.interval)
	defer tick.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-tick.C:
			s.sweepPass()
		}
	}
}

// sweepPass runs one cleanup pass. A panic inside the pass is recovered
// and logged so the loop keeps its schedule; it must never propagate to
// foreground callers or kill the sweep.
func (s *Store[K, V]) sweepPass() {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("cache sweep pass failed", zap.Any("panic", r))
		}
	}()

	if removed := s.CleanupExpired(); removed > 0 {
		s.log.Debug("expired cache entries removed", zap.Int("count", removed))
	}
}
