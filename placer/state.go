// Package placer implements stage D of the pipeline (spec §4.4): a
// simulated-annealing assignment of each input macrocell to a physical
// (FB, macrocell-index) site and each input P-term to a physical (FB, slot)
// site, honoring compatibility, LOC constraints, and P-term coalescing.
// Grounded on the bounded local-search driver pattern the teacher uses for
// its own program/stage loop (sarchlab-zeonica/core) and on the annealing
// description of xc2par/src/... referenced by spec §4.4 (no direct upstream
// source file covers the annealing loop itself; see DESIGN.md).
package placer

import (
	"github.com/azonenberg/xc2par/device"
	"github.com/azonenberg/xc2par/xc2errs"
	"github.com/azonenberg/xc2par/xc2input"
)

// AssignedLocation is a final (fb, i) placement (spec §3).
type AssignedLocation struct {
	FB int
	I  int
}

// Seed is the 128-bit PRNG seed threaded from the run options down to the
// placer's tie-breaking and move-proposal randomness (spec §5 determinism
// contract).
type Seed [16]byte

// Options configures one placer run.
type Options struct {
	MaxIter int
	Seed    Seed
}

// DefaultMaxIter matches spec §4.4 "bounded by max_iter (default 1000)".
const DefaultMaxIter = 1000

// Result is the frozen placement handed to the ZIA router and assembler.
type Result struct {
	Macrocells map[xc2input.MacrocellHandle]AssignedLocation
	PTerms     map[xc2input.PTermHandle]AssignedLocation
}

// mcSite is one (fb, i) macrocell slot's occupancy.
type mcSite struct {
	exists   bool
	occupied bool
	mc       xc2input.MacrocellHandle
}

// ptSite is one (fb, slot) P-term slot's occupancy. A slot may be shared by
// more than one equivalent P-term (spec §4.4's slot-sharing rule), so it
// tracks every occupant rather than a single one.
type ptSite struct {
	occupants []xc2input.PTermHandle
}

// state is the mutable placement grid for one placer run.
type state struct {
	g *xc2input.Graph
	f device.Facts

	mcSites [][]mcSite  // [fb][slot]
	ptSites [][]ptSite  // [fb][slot]

	mcLoc map[xc2input.MacrocellHandle]AssignedLocation
	ptLoc map[xc2input.PTermHandle]AssignedLocation
}

func newState(g *xc2input.Graph, f device.Facts) *state {
	s := &state{
		g:     g,
		f:     f,
		mcLoc: map[xc2input.MacrocellHandle]AssignedLocation{},
		ptLoc: map[xc2input.PTermHandle]AssignedLocation{},
	}
	s.mcSites = make([][]mcSite, f.NumFBs)
	s.ptSites = make([][]ptSite, f.NumFBs)
	for fb := 0; fb < f.NumFBs; fb++ {
		s.mcSites[fb] = make([]mcSite, device.MacrocellsPerFB)
		for i := range s.mcSites[fb] {
			s.mcSites[fb][i] = mcSite{exists: true}
		}
		s.ptSites[fb] = make([]ptSite, device.PTermsPerFB)
	}
	return s
}

// siteHasPad approximates the device-specific dense-to-sparse macrocell
// slot -> IOB map (spec §3 "Placement location"): every fourth slot in an
// FB is buried-only (no pad), the rest have a pad. The exact vendor mapping
// is silicon-specific partdb data this spec does not enumerate; see
// DESIGN.md.
func siteHasPad(f device.Facts, fb, slot int) bool {
	return slot%4 != 3
}

// macrocellCompatible implements the §4.4 macrocell compatibility
// predicate.
func (s *state) macrocellCompatible(mc *xc2input.Macrocell, fb, i int) bool {
	if mc.Loc != nil {
		if mc.Loc.IsPTerm {
			return false
		}
		if mc.Loc.FB != fb {
			return false
		}
		if mc.Loc.Index != nil && *mc.Loc.Index != i {
			return false
		}
	}
	site := &s.mcSites[fb][i]
	if !site.exists {
		return false
	}
	hasPad := siteHasPad(s.f, fb, i)

	switch mc.Type {
	case xc2input.PinOutput, xc2input.PinInputUnreg, xc2input.PinInputReg:
		return hasPad
	case xc2input.BuriedReg:
		// A buried register anchor whose XOR also carries combinational
		// feedback (an OrTerm driving out, not just the register D input)
		// needs a pad-capable site just like a comb anchor would.
		if mc.XorFeedbackUsed && !mc.RegFeedbackUsed {
			return hasPad
		}
		return true
	case xc2input.BuriedComb:
		return true
	default:
		return false
	}
}

// canPlacePTermAt implements the §4.4 P-term compatibility predicate: the
// requested LOC (if any) must match, and the slot must either be empty or
// hold only P-terms equivalent to pt (the slot-sharing/coalescing rule).
func (s *state) canPlacePTermAt(pt *xc2input.PTerm, fb, slot int) bool {
	if pt.Loc != nil {
		if !pt.Loc.IsPTerm {
			return false
		}
		if pt.Loc.FB != fb {
			return false
		}
		if pt.Loc.Index != nil && *pt.Loc.Index != slot {
			return false
		}
	}
	site := &s.ptSites[fb][slot]
	for _, occ := range site.occupants {
		occPt := s.g.PTerms.Get(occ)
		if !xc2input.Equivalent(&occPt, pt) {
			return false
		}
	}
	return true
}

// place records mc at (fb,i).
func (s *state) placeMacrocell(h xc2input.MacrocellHandle, fb, i int) {
	site := &s.mcSites[fb][i]
	site.occupied = true
	site.mc = h
	s.mcLoc[h] = AssignedLocation{FB: fb, I: i}
}

func (s *state) unplaceMacrocell(h xc2input.MacrocellHandle) {
	if loc, ok := s.mcLoc[h]; ok {
		s.mcSites[loc.FB][loc.I].occupied = false
	}
	delete(s.mcLoc, h)
}

func (s *state) placePTerm(h xc2input.PTermHandle, fb, slot int) {
	site := &s.ptSites[fb][slot]
	site.occupants = append(site.occupants, h)
	s.ptLoc[h] = AssignedLocation{FB: fb, I: slot}
}

// sanity builds the final SanityReport, used both for the success check and
// for the iterations-exceeded failure path (spec §4.4 Termination).
func (s *state) sanity(g *xc2input.Graph) *xc2errs.SanityReport {
	report := &xc2errs.SanityReport{}
	for _, h := range g.Macrocells.All() {
		if _, ok := s.mcLoc[h]; !ok {
			mc := g.Macrocells.Get(h)
			report.Macrocells = append(report.Macrocells, xc2errs.UnassignedMacrocell{Name: mc.Name, Reason: "no compatible site found"})
		}
	}
	for _, h := range g.PTerms.All() {
		if _, ok := s.ptLoc[h]; !ok {
			pt := g.PTerms.Get(h)
			report.PTerms = append(report.PTerms, xc2errs.UnassignedPTerm{Name: pt.Name, Reason: "no compatible slot found"})
		}
	}
	return report
}
