// Package outgraph implements stage F of the pipeline (spec §4.6): once PAR
// and ZIA routing succeed, it canonicalizes every macrocell, P-term, and
// global-buffer record into its final per-FB physical form — resolving
// every handle-based reference (macrocell, P-term, ZIA source) into the
// plain FB/row/slot coordinates the bitstream assembler walks in fixed
// order. Grounded on xc2par/src/netlist.rs's OutputGraph construction
// (original_source) and on the "assembler walks a canonical, already-placed
// graph" shape spec.md §4.6 describes.
package outgraph

import (
	"github.com/azonenberg/xc2par/device"
	"github.com/azonenberg/xc2par/placer"
	"github.com/azonenberg/xc2par/xc2errs"
	"github.com/azonenberg/xc2par/xc2input"
	"github.com/azonenberg/xc2par/xc2log"
	"github.com/azonenberg/xc2par/zia"
)

// Source is a resolved control/AND-array input: either tied, absent, a
// specific P-term slot within the owning FB, or a specific global buffer.
type Source struct {
	Kind   xc2input.SourceRefKind
	Row    int // valid when Kind == SourcePTerm: P-term slot (0..55) in the owning FB
	Global GlobalBuffer
}

// AndTerm is one FB-local P-term, fully resolved to the ZIA rows it reads
// (spec §4.6 "AND array" bits).
type AndTerm struct {
	Slot     int
	TrueRows []int
	CompRows []int
}

// Macrocell is one FB-local macrocell in its final physical form.
type Macrocell struct {
	Index int
	Type  xc2input.MacrocellType

	IOPresent  bool
	IsOutput   bool
	OE         Source
	Schmitt    bool
	Term       bool
	Slew       bool
	DataGate   bool
	OpenDrain  bool

	RegPresent  bool
	RegMode     int
	ClockInvert bool
	DDR         bool
	InitHigh    bool
	Clock       Source
	Set         Source
	Reset       Source
	CE          Source

	XorPresent bool
	OrSlots    []int // slots (within this FB) of the P-terms summed into the OR term
	PTC        Source
	XorInvert  bool
}

// GlobalBuffer is a resolved global-network record (spec §3).
type GlobalBuffer struct {
	Kind   xc2input.GlobalBufferKind
	Invert bool
	FB     int
	Index  int
}

// FB is one function block's complete, physically-placed contents.
type FB struct {
	ZIA        [device.ZIARowsPerFB]zia.RowAssignment
	Macrocells [device.MacrocellsPerFB]*Macrocell
	PTerms     [device.PTermsPerFB]*AndTerm
}

// Graph is the canonical, fully-resolved output of stage F.
type Graph struct {
	Device  device.Device
	FBs     []FB
	Globals []GlobalBuffer
}

// Build resolves g (stage C's input graph) against its placement and ZIA
// routing into the canonical output graph the assembler consumes.
func Build(g *xc2input.Graph, placed *placer.Result, routing zia.Routing, d device.Device, log xc2log.Logger) (*Graph, error) {
	log = xc2log.Stage(log, "outgraph")
	f := device.FactsFor(d)

	out := &Graph{Device: d, FBs: make([]FB, f.NumFBs)}
	for fb := range out.FBs {
		out.FBs[fb].ZIA = routing[fb]
	}

	rowOf := make([]map[device.ZIASource]int, f.NumFBs)
	for fb := 0; fb < f.NumFBs; fb++ {
		rowOf[fb] = map[device.ZIASource]int{}
		for row, a := range routing[fb] {
			if a.Source.Kind == device.ZIAMacrocell || a.Source.Kind == device.ZIAIBuf {
				rowOf[fb][a.Source] = row
			}
		}
	}

	resolvePTermSource := func(fb int, ref xc2input.PTermInputRef) (int, error) {
		mc := g.Macrocells.Get(ref.Macrocell)
		var src device.ZIASource
		if (mc.Type == xc2input.PinInputUnreg || mc.Type == xc2input.PinInputReg) && !mc.Reg.Present {
			src = device.ZIASource{Kind: device.ZIAIBuf, IBuf: int(ref.Macrocell)}
		} else {
			loc := placed.Macrocells[ref.Macrocell]
			src = device.ZIASource{Kind: device.ZIAMacrocell, FB: loc.FB, FF: loc.I}
		}
		row, ok := rowOf[fb][src]
		if !ok {
			return 0, xc2errs.New(xc2errs.KindSanityCheckFailed, mc.Name, "no ZIA row routes source %v into FB %d", src, fb)
		}
		return row, nil
	}

	resolveAndTerm := func(h xc2input.PTermHandle) (*AndTerm, error) {
		loc, ok := placed.PTerms[h]
		if !ok {
			return nil, nil
		}
		pt := g.PTerms.Get(h)
		at := &AndTerm{Slot: loc.I}
		for _, ref := range pt.InputsTrue {
			row, err := resolvePTermSource(loc.FB, ref)
			if err != nil {
				return nil, err
			}
			at.TrueRows = append(at.TrueRows, row)
		}
		for _, ref := range pt.InputsComp {
			row, err := resolvePTermSource(loc.FB, ref)
			if err != nil {
				return nil, err
			}
			at.CompRows = append(at.CompRows, row)
		}
		out.FBs[loc.FB].PTerms[loc.I] = at
		return at, nil
	}

	resolveSourceRef := func(sr xc2input.SourceRef, fb int) (Source, error) {
		switch sr.Kind {
		case xc2input.SourceNone, xc2input.SourceTiedLow, xc2input.SourceOpenDrain:
			return Source{Kind: sr.Kind}, nil
		case xc2input.SourcePTerm:
			at, err := resolveAndTerm(sr.PTerm)
			if err != nil {
				return Source{}, err
			}
			if at == nil {
				return Source{}, xc2errs.New(xc2errs.KindSanityCheckFailed, "", "control P-term has no placement")
			}
			return Source{Kind: xc2input.SourcePTerm, Row: at.Slot}, nil
		case xc2input.SourceGlobal:
			gb := g.Globals.Get(sr.Global)
			srcLoc, ok := placed.Macrocells[gb.Source]
			if !ok {
				return Source{}, xc2errs.New(xc2errs.KindSanityCheckFailed, "", "global buffer source has no placement")
			}
			return Source{Kind: xc2input.SourceGlobal, Global: GlobalBuffer{Kind: gb.Kind, Invert: gb.Invert, FB: srcLoc.FB, Index: srcLoc.I}}, nil
		default:
			return Source{Kind: sr.Kind}, nil
		}
	}

	for _, h := range g.Macrocells.All() {
		loc, ok := placed.Macrocells[h]
		if !ok {
			continue
		}
		mc := g.Macrocells.Get(h)
		om := &Macrocell{Index: loc.I, Type: mc.Type}

		if mc.IO.Present {
			om.IOPresent = true
			om.IsOutput = mc.IO.IsOutput
			om.Schmitt = mc.IO.Schmitt
			om.Term = mc.IO.Term
			om.Slew = mc.IO.Slew
			om.DataGate = mc.IO.DataGate
			oe, err := resolveSourceRef(mc.IO.OE, loc.FB)
			if err != nil {
				return nil, err
			}
			om.OE = oe
			om.OpenDrain = oe.Kind == xc2input.SourceOpenDrain
		}

		if mc.Reg.Present {
			om.RegPresent = true
			om.RegMode = int(mc.Reg.Mode)
			om.ClockInvert = mc.Reg.ClockInvert
			om.DDR = mc.Reg.DDR
			om.InitHigh = mc.Reg.InitHigh
			var err error
			if om.Clock, err = resolveSourceRef(mc.Reg.Clock, loc.FB); err != nil {
				return nil, err
			}
			if om.Set, err = resolveSourceRef(mc.Reg.Set, loc.FB); err != nil {
				return nil, err
			}
			if om.Reset, err = resolveSourceRef(mc.Reg.Reset, loc.FB); err != nil {
				return nil, err
			}
			if om.CE, err = resolveSourceRef(mc.Reg.CE, loc.FB); err != nil {
				return nil, err
			}
		}

		if mc.Xor.Present {
			om.XorPresent = true
			om.XorInvert = mc.Xor.Invert
			for _, pt := range mc.Xor.OrTerms {
				at, err := resolveAndTerm(pt)
				if err != nil {
					return nil, err
				}
				if at != nil {
					om.OrSlots = append(om.OrSlots, at.Slot)
				}
			}
			ptc, err := resolveSourceRef(mc.Xor.PTC, loc.FB)
			if err != nil {
				return nil, err
			}
			om.PTC = ptc
		}

		out.FBs[loc.FB].Macrocells[loc.I] = om
	}

	for _, h := range g.Globals.All() {
		gb := g.Globals.Get(h)
		srcLoc, ok := placed.Macrocells[gb.Source]
		if !ok {
			return nil, xc2errs.New(xc2errs.KindSanityCheckFailed, "", "global buffer source has no placement")
		}
		out.Globals = append(out.Globals, GlobalBuffer{Kind: gb.Kind, Invert: gb.Invert, FB: srcLoc.FB, Index: srcLoc.I})
	}

	log.V(1).Info("output graph built", "fbs", len(out.FBs), "globals", len(out.Globals))
	return out, nil
}
