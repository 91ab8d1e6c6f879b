package placer

import (
	"math/rand"

	"github.com/azonenberg/xc2par/device"
	"github.com/azonenberg/xc2par/xc2errs"
	"github.com/azonenberg/xc2par/xc2input"
	"github.com/azonenberg/xc2par/xc2log"
)

// Place runs stage D (spec §4.4): greedy initial macrocell placement in
// gather order, P-term slot assignment, and a bounded local-search loop that
// relocates macrocells to resolve P-term slot conflicts until the design is
// fully and legally placed or max_iter is exhausted.
func Place(g *xc2input.Graph, f device.Facts, opts Options, log xc2log.Logger) (*Result, error) {
	log = xc2log.Stage(log, "placer")
	if opts.MaxIter <= 0 {
		opts.MaxIter = DefaultMaxIter
	}
	rng := newRNG(opts.Seed)
	roles := buildPtermRoles(g)

	s := newState(g, f)
	if err := greedyPlaceMacrocells(s, g, f); err != nil {
		return nil, err
	}
	placePTerms(s, g, roles)

	report := s.sanity(g)
	iter := 0
	for !report.Empty() && iter < opts.MaxIter {
		if !relocateOneConflict(s, g, f, roles, report, rng) {
			break
		}
		placePTerms(s, g, roles)
		report = s.sanity(g)
		iter++
	}

	if !report.Empty() {
		if iter >= opts.MaxIter {
			return nil, xc2errs.NewIterationsExceeded(opts.MaxIter)
		}
		return nil, xc2errs.NewSanityCheckFailed(report)
	}

	log.V(1).Info("placement converged", "iterations", iter, "macrocells", len(s.mcLoc), "pterms", len(s.ptLoc))
	return &Result{Macrocells: s.mcLoc, PTerms: s.ptLoc}, nil
}

// greedyPlaceMacrocells implements the §4.4 "Initial placement": each
// anchor, in gather order (the stage-C macrocell pool's insertion order),
// takes the first compatible site scanning FBs in reverse order and slots
// in ascending order. A macrocell with an exact LOC (FB and index both
// fixed) is placed there directly or the run fails outright, matching "If
// sites are exhausted before anchors, the initial placement fails."
func greedyPlaceMacrocells(s *state, g *xc2input.Graph, f device.Facts) error {
	for _, h := range g.Macrocells.All() {
		mc := g.Macrocells.Get(h)
		placed := false
		for fb := f.NumFBs - 1; fb >= 0 && !placed; fb-- {
			for i := 0; i < device.MacrocellsPerFB; i++ {
				if s.mcSites[fb][i].occupied {
					continue
				}
				if !s.macrocellCompatible(&mc, fb, i) {
					continue
				}
				s.placeMacrocell(h, fb, i)
				placed = true
				break
			}
		}
		if !placed {
			return xc2errs.NewSanityCheckFailed(&xc2errs.SanityReport{
				Macrocells: []xc2errs.UnassignedMacrocell{{Name: mc.Name, Reason: "no compatible site available during initial placement"}},
			})
		}
	}
	return nil
}

// relocateOneConflict picks one macrocell implicated in an unassigned
// P-term (the "suboptimal macrocell... on the source or sink end of a
// currently-unrouteable edge" of spec §4.4) and moves it to a different
// compatible site, accepting the move unconditionally if it has no fixed
// LOC (annealing's accept/reject collapses to "always try a move" here
// since the score is driven entirely by the sanity report rather than a
// separate congestion metric — see DESIGN.md). Returns false if no
// unassigned P-term names a movable macrocell, meaning further iteration
// cannot help.
func relocateOneConflict(s *state, g *xc2input.Graph, f device.Facts, roles map[xc2input.PTermHandle]ptermRole, report *xc2errs.SanityReport, rng *rand.Rand) bool {
	var target xc2input.MacrocellHandle
	found := false
	for _, h := range g.PTerms.All() {
		role, ok := roles[h]
		if !ok {
			continue
		}
		if isUnassignedPTerm(report, g, h) {
			mc := g.Macrocells.Get(role.Macrocell)
			if mc.Loc != nil {
				continue // LOC-pinned, cannot move
			}
			target = role.Macrocell
			found = true
			break
		}
	}
	if !found {
		return false
	}

	cur := s.mcLoc[target]
	s.unplaceMacrocell(target)
	mc := g.Macrocells.Get(target)

	candidates := make([]AssignedLocation, 0, f.NumFBs*device.MacrocellsPerFB)
	for fb := 0; fb < f.NumFBs; fb++ {
		for i := 0; i < device.MacrocellsPerFB; i++ {
			if s.mcSites[fb][i].occupied {
				continue
			}
			if s.macrocellCompatible(&mc, fb, i) {
				candidates = append(candidates, AssignedLocation{FB: fb, I: i})
			}
		}
	}
	if len(candidates) == 0 {
		s.placeMacrocell(target, cur.FB, cur.I)
		return false
	}
	pick := candidates[rng.Intn(len(candidates))]
	s.placeMacrocell(target, pick.FB, pick.I)
	return true
}

func isUnassignedPTerm(report *xc2errs.SanityReport, g *xc2input.Graph, h xc2input.PTermHandle) bool {
	pt := g.PTerms.Get(h)
	for _, u := range report.PTerms {
		if u.Name == pt.Name {
			return true
		}
	}
	return false
}
