package cache

// entry is a single L2 value plus its absolute expiration deadline in
// UnixNano (0 = never expires). Entries are replaced wholesale on overwrite;
// nothing mutates one in place after creation.
type entry[V any] struct {
	val V
	exp int64
}

// expired reports whether the entry is logically absent at the given
// instant. An expired entry may still be physically present until the next
// read of its key or the next sweep pass.
func (e entry[V]) expired(now int64) bool {
	return e.exp != 0 && now > e.exp
}
