package cache

import (
	"math/rand"
	"runtime"
	"strconv"
	"sync"
	"testing"
	"time"
)

// A mixed workload of concurrent Get/Set/SetWithTTL/Delete plus occasional
// diagnostics and Clear calls. Should pass under `-race` without reports.
func TestRace_MixedWorkload(t *testing.T) {
	h := New[string, []byte](Options[string, []byte]{
		L1MaxSize:       2_048,
		DefaultTTL:      time.Second,
		CleanupInterval: 20 * time.Millisecond,
		Shards:          16,
	})
	t.Cleanup(h.Stop)

	workers := 4 * runtime.GOMAXPROCS(0)
	keyspace := 20_000
	deadline := time.Now().Add(2 * time.Second)

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(id int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(id)*9973))
			for time.Now().Before(deadline) {
				k := "k:" + strconv.Itoa(r.Intn(keyspace))
				switch r.Intn(1000) {
				case 0: // rare: Clear (swaps the L2 store under load)
					h.Clear()
				case 1, 2, 3: // diagnostics race with mutation
					h.Snapshot()
					h.Size()
					h.Store().HotShards(0.9)
				default:
					switch r.Intn(100) {
					case 0, 1, 2, 3, 4: // ~5% Delete
						h.Delete(k)
					case 5, 6, 7, 8, 9: // ~5% SetWithTTL
						h.SetWithTTL(k, []byte("x"), time.Duration(10+r.Intn(20))*time.Millisecond)
					case 10, 11, 12, 13, 14, 15, 16, 17, 18, 19: // ~10% Set
						h.Set(k, []byte("x"))
					default: // ~80% Get
						h.Get(k)
					}
				}
			}
		}(w)
	}
	wg.Wait()
}

// Concurrent callers on the same store; per-shard serialization must keep
// every read observing either a complete value or a miss.
func TestRace_StoreOnly(t *testing.T) {
	s := NewStore[string, string](Options[string, string]{
		DefaultTTL:      50 * time.Millisecond,
		CleanupInterval: 10 * time.Millisecond,
		Shards:          8,
	})
	t.Cleanup(s.Close)

	deadline := time.Now().Add(time.Second)
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(int64(id) + 1))
			for time.Now().Before(deadline) {
				k := "k:" + strconv.Itoa(r.Intn(512))
				switch r.Intn(10) {
				case 0:
					s.Delete(k)
				case 1:
					s.CleanupExpired()
				default:
					s.Set(k, "v")
					if v, ok := s.Get(k); ok && v != "v" {
						t.Errorf("torn read: %q", v)
						return
					}
				}
			}
		}(w)
	}
	wg.Wait()
}
