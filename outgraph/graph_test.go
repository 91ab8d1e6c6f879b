package outgraph_test

import (
	"testing"

	"github.com/azonenberg/xc2par/device"
	"github.com/azonenberg/xc2par/outgraph"
	"github.com/azonenberg/xc2par/placer"
	"github.com/azonenberg/xc2par/xc2input"
	"github.com/azonenberg/xc2par/xc2log"
	"github.com/azonenberg/xc2par/zia"
)

func buildGraphWithPTerm() *xc2input.Graph {
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
	g.Macrocells.Alloc(xc2input.Macrocell{
		Name: "out",
		Type: xc2input.BuriedComb,
		Xor:  xc2input.XorBits{Present: true, OrTerms: []xc2input.PTermHandle{pt}},
	})
	return g
}

func TestBuildResolvesAndTerm(t *testing.T) {
	g := buildGraphWithPTerm()
	f := device.FactsFor(device.XC2C32)

	placed, err := placer.Place(g, f, placer.Options{MaxIter: placer.DefaultMaxIter}, xc2log.Discard())
	if err != nil {
		t.Fatalf("Place() error = %v", err)
	}
	routing, err := zia.Route(g, placed, device.XC2C32, xc2log.Discard())
	if err != nil {
		t.Fatalf("Route() error = %v", err)
	}
	out, err := outgraph.Build(g, placed, routing, device.XC2C32, xc2log.Discard())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	var found *outgraph.AndTerm
	for fb := range out.FBs {
		for _, at := range out.FBs[fb].PTerms {
			if at != nil {
				found = at
			}
		}
	}
	if found == nil {
		t.Fatal("expected one resolved AND term")
	}
	if len(found.TrueRows) != 1 {
		t.Fatalf("got %d true rows, want 1", len(found.TrueRows))
	}
}
