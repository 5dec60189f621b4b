package cache

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/opsdash/tiercache/internal/util"
)

// Recommended defaults for callers that do not carry their own settings
// layer. New applies DefaultL1MaxSize automatically; TTL and sweep interval
// are left to the caller because zero is meaningful for both.
const (
	DefaultL1MaxSize       = 5000
	DefaultTTL             = 60 * time.Second
	DefaultCleanupInterval = 30 * time.Second
)

// Clock provides time in UnixNano; useful for deterministic tests.
type Clock interface{ NowUnixNano() int64 }

// Options configures a Hierarchy (and the Store it owns). The zero value is
// usable; New normalizes it:
//   - L1MaxSize <= 0  => DefaultL1MaxSize
//   - Shards == 0     => auto (≈2*GOMAXPROCS, power of two, <= 256)
//   - Shards < 0      => 1
//   - nil Metrics     => NoopMetrics
//   - nil Logger      => zap.NewNop()
//   - nil Hash        => util.StableHash (FNV-1a)
type Options[K comparable, V any] struct {
	// L1MaxSize bounds the front tier's entry count.
	L1MaxSize int

	// DefaultTTL applies to Set when no per-key TTL is given.
	// Zero or negative disables expiration for those writes.
	DefaultTTL time.Duration

	// CleanupInterval is the period between background sweep passes over
	// the L2 shards. Non-positive disables the sweep goroutine entirely;
	// expired entries are then removed only lazily on read.
	CleanupInterval time.Duration

	// Shards is the number of L2 partitions. The key→shard mapping is fixed
	// for the lifetime of the store; changing the count requires a new store.
	Shards int

	// Hash overrides the shard-selection hash. It must be a pure function
	// of the key and stable across process runs, or hot-shard reports stop
	// meaning anything. Defaults to FNV-1a.
	Hash func(K) uint64

	// Loader fetches a value on miss; used by GetOrLoad.
	Loader func(ctx context.Context, k K) (V, error)

	// OnEvict is called for L1 capacity evictions and L2 TTL removals,
	// under the owning lock. Keep callbacks lightweight.
	OnEvict func(k K, v V, reason EvictReason)

	// Metrics receives hit/miss/evict/size/contention signals.
	Metrics Metrics

	// Clock overrides the time source (tests). Nil => time.Now().
	Clock Clock

	// Logger receives sweep lifecycle, sweep failure, and hot-shard events.
	Logger *zap.Logger
}

// withDefaults returns a normalized copy; see the Options doc for the rules.
func (o Options[K, V]) withDefaults() Options[K, V] {
	if o.L1MaxSize <= 0 {
		o.L1MaxSize = DefaultL1MaxSize
	}
	if o.Shards == 0 {
		o.Shards = util.DefaultShardCount()
	} else if o.Shards < 0 {
		o.Shards = 1
	}
	if o.Hash == nil {
		o.Hash = util.StableHash[K]
	}
	if o.Metrics == nil {
		o.Metrics = NoopMetrics{}
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}
