package zia_test

import (
	"testing"

	"github.com/azonenberg/xc2par/device"
	"github.com/azonenberg/xc2par/placer"
	"github.com/azonenberg/xc2par/xc2input"
	"github.com/azonenberg/xc2par/xc2log"
	"github.com/azonenberg/xc2par/zia"
)

// buildGraphWithPTerm constructs a tiny graph: one unregistered input
// macrocell, one buried-comb macrocell whose single P-term reads the
// input's pin feedback, exercising one IBuf demand and leaving every other
// FB with no demand at all.
func buildGraphWithPTerm() (*xc2input.Graph, xc2input.MacrocellHandle) {
	g := &xc2input.Graph{}
	in := g.Macrocells.Alloc(xc2input.Macrocell{
		Name: "in",
		Type: xc2input.PinInputUnreg,
		IO:   xc2input.IOBits{Present: true},
	})
	pt := g.PTerms.Alloc(xc2input.PTerm{
		Name:       "p",
		InputsTrue: []xc2input.PTermInputRef{{Kind: xc2input.FeedbackPin, Macrocell: in}},
	})
	out := g.Macrocells.Alloc(xc2input.Macrocell{
		Name: "out",
		Type: xc2input.BuriedComb,
		Xor:  xc2input.XorBits{Present: true, OrTerms: []xc2input.PTermHandle{pt}},
	})
	_ = out
	return g, in
}

func TestRouteCoversDemandedSource(t *testing.T) {
	g, in := buildGraphWithPTerm()
	f := device.FactsFor(device.XC2C32)

	placed, err := placer.Place(g, f, placer.Options{MaxIter: placer.DefaultMaxIter}, xc2log.Discard())
	if err != nil {
		t.Fatalf("Place() error = %v", err)
	}

	routing, err := zia.Route(g, placed, device.XC2C32, xc2log.Discard())
	if err != nil {
		t.Fatalf("Route() error = %v", err)
	}

	loc := placed.Macrocells[in]
	want := device.ZIASource{Kind: device.ZIAIBuf, IBuf: int(in)}
	found := false
	for _, row := range routing[loc.FB] {
		if row.Source == want {
			found = true
			break
		}
	}
	if !found {
		t.Fatalf("FB %d routing does not cover demanded source %v: %+v", loc.FB, want, routing[loc.FB])
	}
}

func TestRouteIsDeterministic(t *testing.T) {
	g, _ := buildGraphWithPTerm()
	f := device.FactsFor(device.XC2C32)

	placed, err := placer.Place(g, f, placer.Options{MaxIter: placer.DefaultMaxIter}, xc2log.Discard())
	if err != nil {
		t.Fatalf("Place() error = %v", err)
	}

	r1, err := zia.Route(g, placed, device.XC2C32, xc2log.Discard())
	if err != nil {
		t.Fatalf("first Route() error = %v", err)
	}
	r2, err := zia.Route(g, placed, device.XC2C32, xc2log.Discard())
	if err != nil {
		t.Fatalf("second Route() error = %v", err)
	}
	for fb := range r1 {
		for row := range r1[fb] {
			if r1[fb][row] != r2[fb][row] {
				t.Fatalf("routing differs across identical runs: fb %d row %d got %+v and %+v", fb, row, r1[fb][row], r2[fb][row])
			}
		}
	}
}
