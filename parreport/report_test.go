package parreport_test

import (
	"strings"
	"testing"

	"github.com/azonenberg/xc2par/device"
	"github.com/azonenberg/xc2par/outgraph"
	"github.com/azonenberg/xc2par/parreport"
	"github.com/azonenberg/xc2par/placer"
	"github.com/azonenberg/xc2par/xc2errs"
	"github.com/azonenberg/xc2par/xc2input"
	"github.com/azonenberg/xc2par/xc2log"
	"github.com/azonenberg/xc2par/zia"
)

func buildGraph(t *testing.T) *outgraph.Graph {
	t.Helper()
	g := &xc2input.Graph{}
	g.Macrocells.Alloc(xc2input.Macrocell{Name: "in", Type: xc2input.PinInputUnreg, IO: xc2input.IOBits{Present: true}})

	d := device.XC2C32
	f := device.FactsFor(d)
	placed, err := placer.Place(g, f, placer.Options{MaxIter: placer.DefaultMaxIter}, xc2log.Discard())
	if err != nil {
		t.Fatalf("Place() error = %v", err)
	}
	routing, err := zia.Route(g, placed, d, xc2log.Discard())
	if err != nil {
		t.Fatalf("Route() error = %v", err)
	}
	out, err := outgraph.Build(g, placed, routing, d, xc2log.Discard())
	if err != nil {
		t.Fatalf("outgraph.Build() error = %v", err)
	}
	return out
}

func TestWriteTableIncludesOccupancy(t *testing.T) {
	out := buildGraph(t)
	r := parreport.New(device.XC2C32, out)
	rendered := r.WriteTable()
	if !strings.Contains(rendered, "Function block occupancy") {
		t.Fatalf("rendered table missing occupancy title:\n%s", rendered)
	}
	if !strings.Contains(rendered, "1/16") {
		t.Fatalf("rendered table missing the one placed macrocell's occupancy count:\n%s", rendered)
	}
}

func TestWriteTableIncludesSanityFailures(t *testing.T) {
	report := &xc2errs.SanityReport{
		Macrocells: []xc2errs.UnassignedMacrocell{{Name: "mc_a", Reason: "no compatible site"}},
		ZIARows:    []xc2errs.UnroutableZIARow{{FB: 1, Row: -1, Reason: "no legal source", Demands: []string{"mc_a"}}},
	}
	r := parreport.NewFailed(device.XC2C32, xc2errs.NewSanityCheckFailed(report))
	rendered := r.WriteTable()
	if !strings.Contains(rendered, "Sanity check failures") {
		t.Fatalf("rendered table missing sanity-failure title:\n%s", rendered)
	}
	if !strings.Contains(rendered, "mc_a") {
		t.Fatalf("rendered table missing offending macrocell name:\n%s", rendered)
	}
}
