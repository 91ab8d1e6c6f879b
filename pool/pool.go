// Package pool provides the append-only, handle-indexed object pool used
// throughout the PAR pipeline (spec §3 "Entities are referred to by stable
// handles (indices into pools)... lookups are O(1)... Handles are the
// primary means of expressing ownership relationships and breaking
// cycles"). Grounded on the original implementation's ObjPool<T>
// (xc2par/src/objpool.rs), reworked as a generic Go type.
package pool

// Handle indexes a single T inside its owning Pool. The zero Handle is
// valid (it names the first-allocated element); callers that need an
// explicit "no handle" sentinel use a pointer or a separate bool, matching
// the optionality already expressed in the data model (e.g. Net.Driver is
// paired with Net.HasDriver).
type Handle[T any] int

// Pool is an append-only vector of T, paired with typed Handles. Iteration
// follows insertion order, which is what gives the pipeline its
// determinism guarantee (spec §5: "Iteration over pool contents uses
// insertion order").
type Pool[T any] struct {
	items []T
}

// Alloc appends v and returns its handle.
func (p *Pool[T]) Alloc(v T) Handle[T] {
	p.items = append(p.items, v)
	return Handle[T](len(p.items) - 1)
}

// Get returns the element named by h.
func (p *Pool[T]) Get(h Handle[T]) T {
	return p.items[h]
}

// GetPtr returns a pointer to the element named by h, for in-place
// mutation (used during PAR, which only ever mutates the AssignedLocation
// side-table of an already-frozen topology).
func (p *Pool[T]) GetPtr(h Handle[T]) *T {
	return &p.items[h]
}

// Set overwrites the element named by h.
func (p *Pool[T]) Set(h Handle[T], v T) {
	p.items[h] = v
}

// Len returns the number of allocated elements.
func (p *Pool[T]) Len() int {
	return len(p.items)
}

// All returns handles for every element, in insertion (pool) order.
func (p *Pool[T]) All() []Handle[T] {
	out := make([]Handle[T], len(p.items))
	for i := range p.items {
		out[i] = Handle[T](i)
	}
	return out
}
