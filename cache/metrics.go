package cache

import "time"

// Tier identifies one of the two cache levels.
type Tier int

const (
	// TierL1 is the bounded in-process LRU front tier.
	TierL1 Tier = iota + 1
	// TierL2 is the sharded TTL store.
	TierL2
)

// String returns a stable label value for the tier.
func (t Tier) String() string {
	if t == TierL1 {
		return "l1"
	}
	return "l2"
}

// EvictReason explains why an entry was removed.
type EvictReason int

const (
	// EvictCapacity means the entry was displaced by the L1 capacity
	// bound (LRU order).
	EvictCapacity EvictReason = iota
	// EvictTTL means the entry expired, lazily on read or by the sweep.
	EvictTTL
)

// Metrics exposes observability hooks for both tiers.
// NoopMetrics is used when no backend is configured.
type Metrics interface {
	Hit(Tier)
	Miss(Tier)
	Evict(EvictReason)
	Size(l1, l2 int)
	// Contention records one lock acquisition that had to wait because the
	// shard was already held, together with the observed wait.
	Contention(wait time.Duration)
}

// NoopMetrics is a drop-in Metrics implementation that does nothing.
type NoopMetrics struct{}

func (NoopMetrics) Hit(Tier)                 {}
func (NoopMetrics) Miss(Tier)                {}
func (NoopMetrics) Evict(EvictReason)        {}
func (NoopMetrics) Size(int, int)            {}
func (NoopMetrics) Contention(time.Duration) {}

var _ Metrics = NoopMetrics{}

// Snapshot is a point-in-time copy of the hierarchy's monotonic counters.
// Ratios are derived on demand and report 0 when the denominator is zero.
type Snapshot struct {
	L1Hits   int64
	L1Misses int64
	L2Hits   int64
	L2Misses int64
	Gets     int64
	Sets     int64
}

// L1HitRatio is L1 hits over all L1 lookups.
func (s Snapshot) L1HitRatio() float64 { return ratio(s.L1Hits, s.L1Hits+s.L1Misses) }

// L2HitRatio is L2 hits over all L2 lookups (one per L1 miss).
func (s Snapshot) L2HitRatio() float64 { return ratio(s.L2Hits, s.L2Hits+s.L2Misses) }

// HitRatio is the share of Gets served by either tier.
func (s Snapshot) HitRatio() float64 { return ratio(s.L1Hits+s.L2Hits, s.Gets) }

func ratio(num, den int64) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}
