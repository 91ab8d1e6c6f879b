package pool_test

import (
	"testing"

	"github.com/azonenberg/xc2par/pool"
)

func TestPoolAllocPreservesInsertionOrder(t *testing.T) {
	var p pool.Pool[string]
	h0 := p.Alloc("a")
	h1 := p.Alloc("b")
	h2 := p.Alloc("c")

	if p.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", p.Len())
	}
	if p.Get(h0) != "a" || p.Get(h1) != "b" || p.Get(h2) != "c" {
		t.Fatalf("Get() returned unexpected values for handles %v %v %v", h0, h1, h2)
	}

	all := p.All()
	want := []pool.Handle[string]{h0, h1, h2}
	for i, h := range all {
		if h != want[i] {
			t.Fatalf("All()[%d] = %v, want %v", i, h, want[i])
		}
	}
}

func TestPoolSetAndGetPtrMutateInPlace(t *testing.T) {
	var p pool.Pool[int]
	h := p.Alloc(1)

	p.Set(h, 2)
	if got := p.Get(h); got != 2 {
		t.Fatalf("Get() after Set() = %d, want 2", got)
	}

	*p.GetPtr(h) += 40
	if got := p.Get(h); got != 42 {
		t.Fatalf("Get() after GetPtr mutation = %d, want 42", got)
	}
}
