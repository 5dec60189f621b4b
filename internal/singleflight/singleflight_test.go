package singleflight

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestGroup_CoalescesConcurrentCalls(t *testing.T) {
	var g Group[string, string]
	var calls int64

	const n = 50
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(n)

	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			<-start
			v, err := g.Do(context.Background(), "k", func() (string, error) {
				atomic.AddInt64(&calls, 1)
				time.Sleep(2 * time.Millisecond)
				return "v", nil
			})
			if err != nil || v != "v" {
				t.Errorf("Do = %q, %v", v, err)
			}
		}()
	}
	close(start)
	wg.Wait()

	if got := atomic.LoadInt64(&calls); got != 1 {
		t.Fatalf("fn ran %d times, want 1", got)
	}
}

// Distinct keys do not share flights.
func TestGroup_IndependentKeys(t *testing.T) {
	t.Parallel()

	var g Group[int, int]
	for k := 0; k < 10; k++ {
		v, err := g.Do(context.Background(), k, func() (int, error) { return k * 2, nil })
		if err != nil || v != k*2 {
			t.Fatalf("Do(%d) = %d, %v", k, v, err)
		}
	}
}

// A cancelled follower unblocks with ctx.Err while the leader finishes.
func TestGroup_FollowerCancellation(t *testing.T) {
	t.Parallel()

	var g Group[string, string]
	leaderStarted := make(chan struct{})
	release := make(chan struct{})

	go func() {
		_, _ = g.Do(context.Background(), "k", func() (string, error) {
			close(leaderStarted)
			<-release
			return "v", nil
		})
	}()
	<-leaderStarted

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := g.Do(ctx, "k", func() (string, error) { return "other", nil }); !errors.Is(err, context.Canceled) {
		t.Fatalf("follower err = %v, want context.Canceled", err)
	}
	close(release)
}

// The leader's error is shared, and a finished flight is forgotten so the
// next call runs fn again.
func TestGroup_ErrorsNotSticky(t *testing.T) {
	t.Parallel()

	var g Group[string, int]
	boom := errors.New("boom")

	if _, err := g.Do(context.Background(), "k", func() (int, error) { return 0, boom }); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	v, err := g.Do(context.Background(), "k", func() (int, error) { return 7, nil })
	if err != nil || v != 7 {
		t.Fatalf("second Do = %d, %v", v, err)
	}
}
