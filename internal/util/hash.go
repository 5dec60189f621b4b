// Package util contains internal helpers (hashing, sharding, padding).
//revive:disable:var-naming  // allow 'util' as an internal helpers package name
package util

import "fmt"

// 64-bit FNV-1a parameters.
const (
	fnvOffset64 uint64 = 14695981039346656037
	fnvPrime64  uint64 = 1099511628211
)

// StableHash hashes common key types with 64-bit FNV-1a.
// The result depends only on the key's bytes, never on process state, so a
// shard index derived from it is identical across runs. Shard assignment is
// surfaced by diagnostics (hot-shard reports), which would be meaningless
// under a per-process randomized hash.
//
// Supported: string, all int/uint widths, uintptr, bool, and fmt.Stringer
// as a last resort. Unsupported key types panic: silently hashing a poor
// rendering of the key would hide bad distribution.
func StableHash[K comparable](k K) uint64 {
	switch v := any(k).(type) {
	case string:
		return hashString(v)
	case int:
		return hashUint64(uint64(v))
	case int8:
		return hashUint64(uint64(uint8(v)))
	case int16:
		return hashUint64(uint64(uint16(v)))
	case int32:
		return hashUint64(uint64(uint32(v)))
	case int64:
		return hashUint64(uint64(v))
	case uint:
		return hashUint64(uint64(v))
	case uint8:
		return hashUint64(uint64(v))
	case uint16:
		return hashUint64(uint64(v))
	case uint32:
		return hashUint64(uint64(v))
	case uint64:
		return hashUint64(v)
	case uintptr:
		return hashUint64(uint64(v))
	case bool:
		if v {
			return hashUint64(1)
		}
		return hashUint64(0)
	case fmt.Stringer:
		return hashString(v.String())
	default:
		panic(fmt.Sprintf("util.StableHash: unsupported key type %T; use a string key or supply a custom hasher", k))
	}
}

func hashString(s string) uint64 {
	h := fnvOffset64
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= fnvPrime64
	}
	return h
}

// hashUint64 folds the 8 little-endian bytes of u into the hash without
// allocating.
func hashUint64(u uint64) uint64 {
	h := fnvOffset64
	for i := 0; i < 8; i++ {
		h ^= u & 0xff
		h *= fnvPrime64
		u >>= 8
	}
	return h
}
