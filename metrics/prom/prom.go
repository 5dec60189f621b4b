// Package prom exports tiercache metrics to Prometheus.
package prom

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/opsdash/tiercache/cache"
)

// Adapter implements cache.Metrics on top of Prometheus collectors.
// Safe for concurrent use; all Prometheus metric types are goroutine-safe.
type Adapter struct {
	hits      *prometheus.CounterVec
	misses    *prometheus.CounterVec
	evicts    *prometheus.CounterVec
	size      *prometheus.GaugeVec
	contended prometheus.Counter
	lockWait  prometheus.Histogram
}

// New constructs a Prometheus metrics adapter and registers its collectors.
//   - reg:         registry to register with (nil => prometheus.DefaultRegisterer)
//   - ns, sub:     Prometheus namespace and subsystem
//   - constLabels: static labels applied to all metrics (may be nil)
func New(reg prometheus.Registerer, ns, sub string, constLabels prometheus.Labels) *Adapter {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	a := &Adapter{
		hits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "hits_total",
			Help:        "Cache hits by tier",
			ConstLabels: constLabels,
		}, []string{"tier"}),
		misses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "misses_total",
			Help:        "Cache misses by tier",
			ConstLabels: constLabels,
		}, []string{"tier"}),
		evicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "evictions_total",
			Help:        "Cache evictions by reason",
			ConstLabels: constLabels,
		}, []string{"reason"}),
		size: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "size_entries",
			Help:        "Resident entries by tier",
			ConstLabels: constLabels,
		}, []string{"tier"}),
		contended: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "shard_lock_contention_total",
			Help:        "Shard lock acquisitions that had to wait",
			ConstLabels: constLabels,
		}),
		lockWait: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "shard_lock_wait_seconds",
			Help:        "Wait latency of contended shard lock acquisitions",
			ConstLabels: constLabels,
			Buckets:     prometheus.ExponentialBuckets(1e-6, 4, 10),
		}),
	}
	reg.MustRegister(a.hits, a.misses, a.evicts, a.size, a.contended, a.lockWait)
	return a
}

// Hit increments the hit counter for the tier.
func (a *Adapter) Hit(t cache.Tier) { a.hits.WithLabelValues(t.String()).Inc() }

// Miss increments the miss counter for the tier.
func (a *Adapter) Miss(t cache.Tier) { a.misses.WithLabelValues(t.String()).Inc() }

// Evict increments the eviction counter with a reason label.
func (a *Adapter) Evict(r cache.EvictReason) {
	a.evicts.WithLabelValues(reason(r)).Inc()
}

// Size updates both tier size gauges.
func (a *Adapter) Size(l1, l2 int) {
	a.size.WithLabelValues(cache.TierL1.String()).Set(float64(l1))
	a.size.WithLabelValues(cache.TierL2.String()).Set(float64(l2))
}

// Contention records one contended shard lock acquisition and its wait.
func (a *Adapter) Contention(wait time.Duration) {
	a.contended.Inc()
	a.lockWait.Observe(wait.Seconds())
}

// reason maps EvictReason to a stable label value.
func reason(r cache.EvictReason) string {
	if r == cache.EvictTTL {
		return "ttl"
	}
	return "capacity"
}

// Compile-time check: Adapter implements cache.Metrics.
var _ cache.Metrics = (*Adapter)(nil)
