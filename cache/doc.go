// Package cache provides a generic two-tier in-memory cache: a small,
// bounded LRU front tier (L1) backed by a larger sharded TTL store (L2),
// with per-shard locking, lazy plus periodic expiration, hit/miss
// analytics, and hot-shard detection.
//
// # Design
//
//   - Tiers: every Get consults L1 first; on a miss the key's L2 shard is
//     consulted, and a hit there is promoted into L1. Sets write through
//     both tiers. L1 is therefore only ever populated from data L2 has
//     seen.
//
//   - Concurrency: L1 sits behind a single mutex; L2 is split into a fixed
//     number of shards, each with its own mutex. No operation ever holds
//     more than one lock at a time, so foreground operations cannot
//     deadlock each other by construction.
//
//   - Sharding: keys map to shards via a stable FNV-1a hash modulo the
//     shard count. The mapping never changes for the lifetime of a Store,
//     and never changes across process runs, so hot-shard reports stay
//     comparable between restarts.
//
//   - TTL: entries carry absolute UnixNano deadlines. Expiration is
//     enforced lazily on read and by a periodic background sweep that
//     visits one shard at a time. The two mechanisms are deliberately
//     redundant: lazy expiry keeps reads correct even with the sweep
//     disabled, the sweep bounds memory held by keys nobody reads again.
//
//   - Observability: the hierarchy keeps monotonic hit/miss/get/set
//     counters (Snapshot), each L2 shard tracks lock contention and wait
//     latency (ShardStats), and HotShards flags occupancy skew. Plug
//     metrics/prom for Prometheus export.
//
// # Basic usage
//
//	c := cache.New[string, []byte](cache.Options[string, []byte]{
//	    L1MaxSize:       2000,
//	    DefaultTTL:      cache.DefaultTTL,
//	    CleanupInterval: cache.DefaultCleanupInterval,
//	    Shards:          8,
//	})
//	defer c.Stop()
//
//	c.Set("a", []byte("1"))
//	if v, ok := c.Get("a"); ok {
//	    _ = v
//	}
//
// # With a loader
//
//	c := cache.New[string, string](cache.Options[string, string]{
//	    Loader: func(ctx context.Context, k string) (string, error) {
//	        return fetch(ctx, k) // e.g. from a database
//	    },
//	})
//	v, err := c.GetOrLoad(ctx, "key")
//
// # Diagnostics
//
//	snap := c.Snapshot()
//	fmt.Println(snap.HitRatio(), snap.L1HitRatio())
//	for _, st := range c.Store().ShardStats() {
//	    fmt.Println(st.Index, st.Size, st.Contention, st.AvgWait)
//	}
//	hot := c.Store().HotShards(0.8)
package cache
