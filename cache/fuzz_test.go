package cache

import (
	"strings"
	"testing"
)

// Fuzz basic Set/Get/Delete semantics under arbitrary string inputs.
// Guards against panics and checks the round-trip invariants. Key/value
// lengths are capped to keep fuzzing memory bounded; the invariants are
// unaffected.
func FuzzHierarchy_SetGetDelete(f *testing.F) {
	f.Add("", "")
	f.Add("a", "1")
	f.Add("αβγ", "δ")
	f.Add("emoji🙂", "🙂🙂")
	f.Add("long", strings.Repeat("x", 1024))

	f.Fuzz(func(t *testing.T, k, v string) {
		const limit = 1 << 12
		if len(k) > limit {
			k = k[:limit]
		}
		if len(v) > limit {
			v = v[:limit]
		}

		h := New[string, string](Options[string, string]{L1MaxSize: 16, Shards: 4})
		t.Cleanup(h.Stop)

		// Set -> Get must return the same value from L1.
		h.Set(k, v)
		if got, ok := h.Get(k); !ok || got != v {
			t.Fatalf("after Set/Get: want %q, got %q ok=%v", v, got, ok)
		}

		// The write went through to L2 as well.
		if got, ok := h.Store().Get(k); !ok || got != v {
			t.Fatalf("L2 after Set: want %q, got %q ok=%v", v, got, ok)
		}

		// Delete removes from both tiers; a repeat is a no-op.
		if !h.Delete(k) {
			t.Fatal("Delete must report true for an L1-resident key")
		}
		if _, ok := h.Get(k); ok {
			t.Fatal("key must be absent after Delete")
		}
		if h.Delete(k) {
			t.Fatal("repeated Delete must report false")
		}
	})
}
