package cache

// node is an intrusive doubly linked list element owned by the L1 tier.
// head is MRU, tail is LRU.
type node[K comparable, V any] struct {
	key K
	val V

	prev *node[K, V]
	next *node[K, V]
}
