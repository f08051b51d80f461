// Package arena implements the "free everything at once on failure"
// allocator the original pool-allocates every read into: a scoped,
// owning collection of records that discards as a unit. It is not
// required for correctness in a garbage-collected language, but it
// keeps the PV reader's failure model simple — a half-built PV view
// is released in one call instead of tracking every partial
// allocation by hand.
package arena

// Arena owns a set of heap values allocated during one logical
// operation (one ReadDisk call). Discard drops every reference so the
// garbage collector can reclaim them; it does not otherwise free
// anything explicitly, since Go has no manual deallocation — the
// contract it upholds is "the caller need not track partial state
// itself," matching the pool_alloc/pool_free pairing in the original.
type Arena struct {
	owned []interface{}
}

// New returns an empty Arena.
func New() *Arena {
	return &Arena{}
}

// Own records v as belonging to this arena and returns it unchanged,
// so call sites can write `x := arena.Own(&Foo{...}).(*Foo)`-style
// wrapping where useful, or simply call it for bookkeeping.
func (a *Arena) Own(v interface{}) interface{} {
	a.owned = append(a.owned, v)
	return v
}

// Discard releases every value this arena owns. Call it on any
// failure path so a partially built view is torn down as a unit.
func (a *Arena) Discard() {
	a.owned = nil
}
