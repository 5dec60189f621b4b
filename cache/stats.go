package cache

import (
	"sort"
	"time"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"
)

// ShardStat describes one L2 partition for operational diagnostics.
type ShardStat struct {
	Index int
	Size  int

	// Contention is the number of lock acquisitions on this shard that had
	// to wait because the shard was already held. AvgWait is the mean wait
	// of those acquisitions. Both grow monotonically until the store is
	// recreated.
	Contention uint64
	AvgWait    time.Duration
}

// ShardStats returns a per-shard view of sizes and lock contention. Each
// shard is locked briefly in turn; the result is not a transactionally
// consistent snapshot across shards.
func (s *Store[K, V]) ShardStats() []ShardStat {
	stats := make([]ShardStat, len(s.shards))
	for i, sh := range s.shards {
		s.lock(sh)
		st := ShardStat{
			Index:      i,
			Size:       len(sh.m),
			Contention: sh.contended,
		}
		if sh.contended > 0 {
			st.AvgWait = time.Duration(sh.waitNanos / int64(sh.contended))
		}
		sh.mu.Unlock()
		stats[i] = st
	}
	return stats
}

// HotShards returns the indices of shards whose entry count is at or above
// the given quantile of all shard sizes. The quantile is clamped to [0,1]
// and computed with linear interpolation. Empty shards are never reported
// as hot, whatever the threshold. A non-empty result indicates key or
// access skew and is logged at Warn level.
func (s *Store[K, V]) HotShards(threshold float64) []int {
	if threshold < 0 {
		threshold = 0
	} else if threshold > 1 {
		threshold = 1
	}

	sizes := s.ShardSizes()
	sorted := make([]float64, len(sizes))
	for i, n := range sizes {
		sorted[i] = float64(n)
	}
	sort.Float64s(sorted)
	cutoff := stat.Quantile(threshold, stat.LinInterp, sorted, nil)

	var hot []int
	for i, n := range sizes {
		if n > 0 && float64(n) >= cutoff {
			hot = append(hot, i)
		}
	}

	if len(hot) > 0 {
		hotSizes := make([]int, len(hot))
		for i, idx := range hot {
			hotSizes[i] = sizes[idx]
		}
		s.log.Warn("hot cache shards detected",
			zap.Ints("shards", hot),
			zap.Ints("sizes", hotSizes),
			zap.Float64("threshold", threshold),
		)
	}
	return hot
}
