package util

import (
	"math/bits"
	"runtime"
)

// IsPowerOfTwo reports whether x is a power of two (> 0).
func IsPowerOfTwo(x uint64) bool {
	return x != 0 && x&(x-1) == 0
}

// NextPow2 returns the smallest power of two >= x (1 for x <= 1,
// clamped to 1<<63 near the top of the range).
func NextPow2(x uint64) uint64 {
	if x <= 1 {
		return 1
	}
	n := bits.Len64(x - 1)
	if n >= 64 {
		return 1 << 63
	}
	return 1 << n
}

// DefaultShardCount picks a practical shard count from CPU parallelism:
// nextPow2(2*GOMAXPROCS), clamped to [1..256]. Enough to spread lock
// contention without bloating per-shard overhead.
func DefaultShardCount() int {
	p := runtime.GOMAXPROCS(0)
	if p < 1 {
		p = 1
	}
	n := int(NextPow2(uint64(2 * p)))
	if n > 256 {
		n = 256
	}
	return n
}

// ShardIndex maps a 64-bit hash to a shard index. Power-of-two counts use
// the mask fast path; arbitrary counts fall back to modulo. The mapping is
// pure: same hash and count always yield the same index.
func ShardIndex(hash uint64, shards int) int {
	if shards <= 1 {
		return 0
	}
	if IsPowerOfTwo(uint64(shards)) {
		return int(hash & uint64(shards-1))
	}
	return int(hash % uint64(shards))
}
