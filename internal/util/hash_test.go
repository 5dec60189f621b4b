package util

import "testing"

// Golden FNV-1a values: the hash must never drift, or shard assignments
// silently reshuffle between releases.
func TestStableHash_Golden(t *testing.T) {
	t.Parallel()

	if got := StableHash(""); got != 0xcbf29ce484222325 {
		t.Fatalf("StableHash(\"\") = %#x", got)
	}
	if got := StableHash("a"); got != 0xaf63dc4c8601ec8c {
		t.Fatalf("StableHash(\"a\") = %#x", got)
	}
}

func TestStableHash_Deterministic(t *testing.T) {
	t.Parallel()

	keys := []string{"", "a", "key:123", "αβγ", "🙂"}
	for _, k := range keys {
		if StableHash(k) != StableHash(k) {
			t.Fatalf("hash of %q not deterministic", k)
		}
	}
	if StableHash(42) != StableHash(42) {
		t.Fatal("int hash not deterministic")
	}
	if StableHash(int64(42)) != StableHash(uint64(42)) {
		t.Fatal("same bytes must hash the same across integer widths")
	}
}

func TestShardIndex(t *testing.T) {
	t.Parallel()

	for _, shards := range []int{1, 2, 3, 7, 8, 16, 100} {
		for h := uint64(0); h < 1000; h++ {
			idx := ShardIndex(h*2654435761, shards)
			if idx < 0 || idx >= shards {
				t.Fatalf("ShardIndex out of range: %d for %d shards", idx, shards)
			}
		}
	}
	if ShardIndex(12345, 0) != 0 || ShardIndex(12345, 1) != 0 {
		t.Fatal("degenerate shard counts must map to 0")
	}
}

func TestNextPow2(t *testing.T) {
	t.Parallel()

	cases := map[uint64]uint64{
		0: 1, 1: 1, 2: 2, 3: 4, 4: 4, 5: 8, 1023: 1024, 1024: 1024, 1025: 2048,
	}
	for in, want := range cases {
		if got := NextPow2(in); got != want {
			t.Fatalf("NextPow2(%d) = %d, want %d", in, got, want)
		}
	}
	if got := NextPow2(1<<63 + 1); got != 1<<63 {
		t.Fatalf("NextPow2 near overflow = %d, want 1<<63", got)
	}
}

func TestDefaultShardCount(t *testing.T) {
	t.Parallel()

	n := DefaultShardCount()
	if n < 1 || n > 256 {
		t.Fatalf("DefaultShardCount = %d, want within [1, 256]", n)
	}
	if !IsPowerOfTwo(uint64(n)) {
		t.Fatalf("DefaultShardCount = %d, want a power of two", n)
	}
}
