package placer_test

import (
	"testing"

	"github.com/azonenberg/xc2par/device"
	"github.com/azonenberg/xc2par/placer"
	"github.com/azonenberg/xc2par/xc2input"
	"github.com/azonenberg/xc2par/xc2log"
)

// buildSmallGraph constructs a tiny input graph directly (bypassing
// xc2netlist/xc2gather) with a handful of unregistered-input macrocells, to
// exercise the placer in isolation.
func buildSmallGraph(n int) *xc2input.Graph {
	g := &xc2input.Graph{}
	for i := 0; i < n; i++ {
		g.Macrocells.Alloc(xc2input.Macrocell{
			Name: "mc",
			Type: xc2input.PinInputUnreg,
			IO:   xc2input.IOBits{Present: true},
		})
	}
	return g
}

func TestPlaceFitsWithinCapacity(t *testing.T) {
	f := device.FactsFor(device.XC2C32)
	// Pin-input macrocells need a pad site; every fourth slot of an FB is
	// buried, leaving 12 pad sites per FB.
	g := buildSmallGraph(f.NumFBs * (device.MacrocellsPerFB - device.MacrocellsPerFB/4))

	res, err := placer.Place(g, f, placer.Options{MaxIter: placer.DefaultMaxIter}, xc2log.Discard())
	if err != nil {
		t.Fatalf("Place() error = %v", err)
	}
	if len(res.Macrocells) != g.Macrocells.Len() {
		t.Fatalf("placed %d macrocells, want %d", len(res.Macrocells), g.Macrocells.Len())
	}

	seen := map[placer.AssignedLocation]bool{}
	for _, loc := range res.Macrocells {
		if seen[loc] {
			t.Fatalf("duplicate assigned location %+v", loc)
		}
		seen[loc] = true
	}
}

func TestPlaceFailsOverCapacity(t *testing.T) {
	f := device.FactsFor(device.XC2C32)
	g := buildSmallGraph(f.NumFBs*device.MacrocellsPerFB + 1)

	_, err := placer.Place(g, f, placer.Options{MaxIter: placer.DefaultMaxIter}, xc2log.Discard())
	if err == nil {
		t.Fatal("Place() succeeded, want a capacity failure")
	}
}

func TestPlaceIsDeterministic(t *testing.T) {
	f := device.FactsFor(device.XC2C64)
	g := buildSmallGraph(20)
	seed := placer.Seed{1, 2, 3, 4}

	r1, err := placer.Place(g, f, placer.Options{MaxIter: placer.DefaultMaxIter, Seed: seed}, xc2log.Discard())
	if err != nil {
		t.Fatalf("first Place() error = %v", err)
	}
	r2, err := placer.Place(g, f, placer.Options{MaxIter: placer.DefaultMaxIter, Seed: seed}, xc2log.Discard())
	if err != nil {
		t.Fatalf("second Place() error = %v", err)
	}
	for h, loc := range r1.Macrocells {
		if r2.Macrocells[h] != loc {
			t.Fatalf("placement differs across runs with the same seed: mc %v got %+v and %+v", h, loc, r2.Macrocells[h])
		}
	}
}
