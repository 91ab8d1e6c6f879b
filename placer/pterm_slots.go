package placer

import (
	"github.com/azonenberg/xc2par/device"
	"github.com/azonenberg/xc2par/xc2input"
)

// ptermRoleKind is the closed set of "what does this P-term feed" roles a
// duplicated stage-C P-term can have; exactly one applies per handle,
// because stage C never shares a P-term between two distinct uses (spec §9
// "Duplication instead of fanout sharing").
type ptermRoleKind int

const (
	roleOrTerm ptermRoleKind = iota
	rolePTC
	roleCE
	roleClock
	roleSet
	roleReset
	roleOE
)

// ptermRole names which macrocell (and, for OR-sum members, which of the
// per-macrocell dedicated slots) a P-term feeds.
type ptermRole struct {
	Kind      ptermRoleKind
	Macrocell xc2input.MacrocellHandle
	OrIndex   int // valid when Kind == roleOrTerm
}

// Per-FB special control-term slots (spec §3 "the special slots CTC, CTR,
// CTS, CTE"). The remaining macrocell-dedicated slots (3 per macrocell) and
// a small general-purpose pool fill out the 56 P-term slots of an FB; see
// DESIGN.md for why this specific split was chosen.
const (
	slotsPerMacrocell = 3
	ctcSlot           = device.MacrocellsPerFB * slotsPerMacrocell // 48: shared clock term
	ctrSlot           = ctcSlot + 1                                // 49: shared reset term
	ctsSlot           = ctcSlot + 2                                // 50: shared set term
	cteSlot           = ctcSlot + 3                                // 51: shared output-enable term
	generalPoolStart  = ctcSlot + 4                                // 52..55: overflow / PTC / CE pool
)

// buildPtermRoles classifies every P-term in g by walking each macrocell's
// sub-records, the same traversal xc2input.sanityCheck uses to find
// consumers.
func buildPtermRoles(g *xc2input.Graph) map[xc2input.PTermHandle]ptermRole {
	roles := map[xc2input.PTermHandle]ptermRole{}
	for _, h := range g.Macrocells.All() {
		mc := g.Macrocells.Get(h)
		if mc.Xor.Present {
			for i, pt := range mc.Xor.OrTerms {
				roles[pt] = ptermRole{Kind: roleOrTerm, Macrocell: h, OrIndex: i}
			}
			if mc.Xor.PTC.Kind == xc2input.SourcePTerm {
				roles[mc.Xor.PTC.PTerm] = ptermRole{Kind: rolePTC, Macrocell: h}
			}
		}
		if mc.Reg.Present {
			if mc.Reg.Clock.Kind == xc2input.SourcePTerm {
				roles[mc.Reg.Clock.PTerm] = ptermRole{Kind: roleClock, Macrocell: h}
			}
			if mc.Reg.Set.Kind == xc2input.SourcePTerm {
				roles[mc.Reg.Set.PTerm] = ptermRole{Kind: roleSet, Macrocell: h}
			}
			if mc.Reg.Reset.Kind == xc2input.SourcePTerm {
				roles[mc.Reg.Reset.PTerm] = ptermRole{Kind: roleReset, Macrocell: h}
			}
			if mc.Reg.CE.Kind == xc2input.SourcePTerm {
				roles[mc.Reg.CE.PTerm] = ptermRole{Kind: roleCE, Macrocell: h}
			}
		}
		if mc.IO.Present && mc.IO.OE.Kind == xc2input.SourcePTerm {
			roles[mc.IO.OE.PTerm] = ptermRole{Kind: roleOE, Macrocell: h}
		}
	}
	return roles
}

// placePTerms assigns every P-term a slot once every macrocell has a final
// location, applying the per-macrocell dedicated slots, the per-FB shared
// control slots, and the general overflow pool with coalescing.
func placePTerms(s *state, g *xc2input.Graph, roles map[xc2input.PTermHandle]ptermRole) {
	for _, h := range g.PTerms.All() {
		pt := g.PTerms.Get(h)
		role, ok := roles[h]
		if !ok {
			continue // unreferenced P-term (should not occur; left unassigned, reported by sanity)
		}

		loc, ok := s.mcLoc[role.Macrocell]
		if !ok {
			continue // consumer macrocell itself unplaced; reported by sanity
		}
		fb := loc.FB

		switch role.Kind {
		case roleOrTerm:
			if role.OrIndex < slotsPerMacrocell {
				slot := loc.I*slotsPerMacrocell + role.OrIndex
				s.placePTerm(h, fb, slot)
				continue
			}
			placeInPool(s, h, &pt, fb)
		case rolePTC, roleCE:
			placeInPool(s, h, &pt, fb)
		case roleClock:
			placeShared(s, h, &pt, fb, ctcSlot)
		case roleReset:
			placeShared(s, h, &pt, fb, ctrSlot)
		case roleSet:
			placeShared(s, h, &pt, fb, ctsSlot)
		case roleOE:
			placeShared(s, h, &pt, fb, cteSlot)
		}
	}
}

// placeShared places pt at the FB's single shared control slot if that slot
// is empty or already holds an equivalent P-term; otherwise pt is left
// unassigned for the sanity report (a real conflict: two macrocells in one
// FB want a P-term-sourced control signal computing different functions,
// which the device's single shared control term per FB cannot satisfy).
func placeShared(s *state, h xc2input.PTermHandle, pt *xc2input.PTerm, fb, slot int) {
	if s.canPlacePTermAt(pt, fb, slot) {
		s.placePTerm(h, fb, slot)
	}
}

// placeInPool places pt into the first compatible slot of the FB's
// general-purpose overflow pool (slots 52-55), coalescing with an
// equivalent occupant where possible.
func placeInPool(s *state, h xc2input.PTermHandle, pt *xc2input.PTerm, fb int) {
	for slot := generalPoolStart; slot < device.PTermsPerFB; slot++ {
		if s.canPlacePTermAt(pt, fb, slot) {
			s.placePTerm(h, fb, slot)
			return
		}
	}
	// Pool exhausted; left unassigned, reported by sanity.
}
