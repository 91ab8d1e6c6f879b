// Package zia implements stage E of the pipeline (spec §4.5): for each
// function block it solves a bipartite-matching row assignment so every
// P-term input demanded within that FB is carried by one of the FB's 40 ZIA
// rows, using only the legal per-row sources from device.BuildZIATable.
package zia

import (
	"sort"

	"github.com/azonenberg/xc2par/device"
	"github.com/azonenberg/xc2par/placer"
	"github.com/azonenberg/xc2par/xc2errs"
	"github.com/azonenberg/xc2par/xc2input"
	"github.com/azonenberg/xc2par/xc2log"
)

// RowAssignment is the resolved source and its index into that row's legal
// choice list (the index is what the assembler encodes as the row's ZIA
// select bits).
type RowAssignment struct {
	Source     device.ZIASource
	ChoiceIdx  int
}

// FBRouting is one FB's complete 40-row assignment.
type FBRouting [device.ZIARowsPerFB]RowAssignment

// Routing is the per-FB routing solution for an entire device.
type Routing []FBRouting

// Route solves the ZIA row assignment for every FB (spec §4.5).
func Route(g *xc2input.Graph, placed *placer.Result, d device.Device, log xc2log.Logger) (Routing, error) {
	log = xc2log.Stage(log, "zia")
	f := device.FactsFor(d)
	table := device.BuildZIATable(d)

	demands := demandsPerFB(g, placed, f)

	routing := make(Routing, f.NumFBs)
	for fb := 0; fb < f.NumFBs; fb++ {
		r, err := routeOneFB(fb, table[fb], demands[fb])
		if err != nil {
			return nil, err
		}
		routing[fb] = r
	}

	log.V(1).Info("ZIA routing complete", "fbs", f.NumFBs)
	return routing, nil
}

// demandsPerFB resolves every P-term literal to the ZIASource its
// referenced macrocell's placed location represents, grouped by the FB that
// consumes it (spec §4.5 "the number of P-term inputs in that FB that
// demand a source").
func demandsPerFB(g *xc2input.Graph, placed *placer.Result, f device.Facts) [][]device.ZIASource {
	out := make([][]device.ZIASource, f.NumFBs)
	seen := make([]map[device.ZIASource]bool, f.NumFBs)
	for i := range seen {
		seen[i] = map[device.ZIASource]bool{}
	}

	for _, h := range g.PTerms.All() {
		loc, ok := placed.PTerms[h]
		if !ok {
			continue
		}
		pt := g.PTerms.Get(h)
		for _, ref := range append(append([]xc2input.PTermInputRef{}, pt.InputsTrue...), pt.InputsComp...) {
			src := resolveSource(g, placed, ref)
			if !seen[loc.FB][src] {
				seen[loc.FB][src] = true
				out[loc.FB] = append(out[loc.FB], src)
			}
		}
	}
	return out
}

// resolveSource maps a P-term literal to the ZIA source it demands. A
// reference to a pin-only macrocell (no XOR/register logic of its own)
// reads that pin's input buffer, a ZIAIBuf source numbered by the
// macrocell's handle; every other reference reads the
// referenced macrocell's shared ZIA output at its placed location (spec §3:
// "the pin/reg/xor triple shares the ZIA output").
func resolveSource(g *xc2input.Graph, placed *placer.Result, ref xc2input.PTermInputRef) device.ZIASource {
	mc := g.Macrocells.Get(ref.Macrocell)
	if (mc.Type == xc2input.PinInputUnreg || mc.Type == xc2input.PinInputReg) && !mc.Reg.Present {
		return device.ZIASource{Kind: device.ZIAIBuf, IBuf: int(ref.Macrocell)}
	}
	loc := placed.Macrocells[ref.Macrocell]
	return device.ZIASource{Kind: device.ZIAMacrocell, FB: loc.FB, FF: loc.I}
}

// routeOneFB solves the bipartite matching between demanded sources and
// rows that legally carry them (Kuhn's augmenting-path algorithm), then
// fills every unmatched row with the first choice (index 0) of its table row.
func routeOneFB(fb int, table [device.ZIARowsPerFB][]device.ZIASource, demand []device.ZIASource) (FBRouting, error) {
	sort.Slice(demand, func(i, j int) bool { return demand[i].String() < demand[j].String() })

	rowForDemand := make([]int, len(demand))
	for i := range rowForDemand {
		rowForDemand[i] = -1
	}
	demandForRow := make([]int, device.ZIARowsPerFB)
	for i := range demandForRow {
		demandForRow[i] = -1
	}

	candidateRows := make([][]int, len(demand))
	for di, d := range demand {
		for row := 0; row < device.ZIARowsPerFB; row++ {
			if choiceIndex(table[row], d) >= 0 {
				candidateRows[di] = append(candidateRows[di], row)
			}
		}
	}

	var tryAssign func(di int, visited []bool) bool
	tryAssign = func(di int, visited []bool) bool {
		for _, row := range candidateRows[di] {
			if visited[row] {
				continue
			}
			visited[row] = true
			if demandForRow[row] == -1 || tryAssign(demandForRow[row], visited) {
				demandForRow[row] = di
				rowForDemand[di] = row
				return true
			}
		}
		return false
	}

	for di := range demand {
		visited := make([]bool, device.ZIARowsPerFB)
		tryAssign(di, visited)
	}

	var unrouted []string
	for di, row := range rowForDemand {
		if row == -1 {
			unrouted = append(unrouted, demand[di].String())
		}
	}
	if len(unrouted) > 0 {
		return FBRouting{}, xc2errs.NewSanityCheckFailed(&xc2errs.SanityReport{
			ZIARows: []xc2errs.UnroutableZIARow{{FB: fb, Row: -1, Reason: "no legal row covers every demanded source", Demands: unrouted}},
		})
	}

	var routing FBRouting
	for row := range routing {
		if di := demandForRow[row]; di != -1 {
			idx := choiceIndex(table[row], demand[di])
			routing[row] = RowAssignment{Source: demand[di], ChoiceIdx: idx}
			continue
		}
		routing[row] = RowAssignment{Source: table[row][0], ChoiceIdx: 0}
	}
	return routing, nil
}

func choiceIndex(choices []device.ZIASource, want device.ZIASource) int {
	for i, c := range choices {
		if c == want {
			return i
		}
	}
	return -1
}
