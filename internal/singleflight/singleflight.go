// Package singleflight coalesces concurrent calls for the same key so the
// underlying function runs at most once per in-flight key.
package singleflight

import (
	"context"
	"sync"
)

// flight is one in-progress call. val and err are published before done is
// closed, so any read after <-done observes the final values.
type flight[V any] struct {
	done chan struct{}
	val  V
	err  error
}

// Group deduplicates concurrent Do calls per key. The zero value is ready
// for use. The first caller for a key runs fn; later callers block until
// the shared result is published.
type Group[K comparable, V any] struct {
	mu      sync.Mutex
	inQueue map[K]*flight[V]
}

// Do executes fn once for key, sharing the result with concurrent callers.
// A follower whose ctx is cancelled returns ctx.Err() and stops waiting;
// the leader's fn is not interrupted. Thread ctx into fn if the work itself
// must be cancellable.
func (g *Group[K, V]) Do(ctx context.Context, key K, fn func() (V, error)) (V, error) {
	g.mu.Lock()
	if g.inQueue == nil {
		g.inQueue = make(map[K]*flight[V])
	}
	if f, ok := g.inQueue[key]; ok {
		g.mu.Unlock()
		return g.wait(ctx, f)
	}
	f := &flight[V]{done: make(chan struct{})}
	g.inQueue[key] = f
	g.mu.Unlock()

	f.val, f.err = fn()
	close(f.done)

	g.mu.Lock()
	delete(g.inQueue, key)
	g.mu.Unlock()

	return f.val, f.err
}

func (g *Group[K, V]) wait(ctx context.Context, f *flight[V]) (V, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero V
		return zero, ctx.Err()
	}
}
