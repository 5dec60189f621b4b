package cache

import "sync"

// LRU is the bounded in-process front tier (L1): a map plus an intrusive
// MRU/LRU doubly linked list behind a single mutex. It has no TTL of its
// own; entries live until evicted by capacity, deleted, or cleared.
// Every exported method is individually atomic.
type LRU[K comparable, V any] struct {
	mu      sync.Mutex
	m       map[K]*node[K, V]
	head    *node[K, V] // MRU
	tail    *node[K, V] // LRU
	max     int
	onEvict func(K, V, EvictReason)
}

// NewLRU constructs an L1 tier holding at most maxSize entries.
// A non-positive maxSize is clamped to 1 so the tier is always usable.
func NewLRU[K comparable, V any](maxSize int) *LRU[K, V] {
	if maxSize < 1 {
		maxSize = 1
	}
	return &LRU[K, V]{
		m:   make(map[K]*node[K, V], maxSize),
		max: maxSize,
	}
}

// Get returns the value for k and marks it most recently used.
func (l *LRU[K, V]) Get(k K) (V, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	n, ok := l.m[k]
	if !ok {
		var zero V
		return zero, false
	}
	l.moveToFront(n)
	return n.val, true
}

// Set inserts or overwrites k→v and refreshes its recency. If the insert
// pushes the tier over capacity, the single least recently used entry is
// evicted, so len never exceeds max outside this call.
func (l *LRU[K, V]) Set(k K, v V) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if n, ok := l.m[k]; ok {
		n.val = v
		l.moveToFront(n)
		return
	}

	n := &node[K, V]{key: k, val: v}
	l.m[k] = n
	l.pushFront(n)

	if len(l.m) > l.max {
		lru := l.tail
		l.unlink(lru)
		delete(l.m, lru.key)
		if l.onEvict != nil {
			// Callback runs under the tier lock; keep it lightweight.
			l.onEvict(lru.key, lru.val, EvictCapacity)
		}
	}
}

// Delete removes k and reports whether it was present.
func (l *LRU[K, V]) Delete(k K) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	n, ok := l.m[k]
	if !ok {
		return false
	}
	l.unlink(n)
	delete(l.m, k)
	return true
}

// Clear removes all entries.
func (l *LRU[K, V]) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.m = make(map[K]*node[K, V], l.max)
	l.head, l.tail = nil, nil
}

// Len returns the current entry count.
func (l *LRU[K, V]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.m)
}

// -------------------- list operations (mu held) --------------------

// pushFront inserts n at MRU in O(1).
func (l *LRU[K, V]) pushFront(n *node[K, V]) {
	n.prev = nil
	n.next = l.head
	if l.head != nil {
		l.head.prev = n
	}
	l.head = n
	if l.tail == nil {
		l.tail = n
	}
}

// moveToFront promotes n to MRU in O(1).
func (l *LRU[K, V]) moveToFront(n *node[K, V]) {
	if n == l.head {
		return
	}
	l.unlink(n)
	l.pushFront(n)
}

// unlink detaches n from the list in O(1).
func (l *LRU[K, V]) unlink(n *node[K, V]) {
	if n.prev != nil {
		n.prev.next = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	}
	if l.head == n {
		l.head = n.next
	}
	if l.tail == n {
		l.tail = n.prev
	}
	n.prev, n.next = nil, nil
}
