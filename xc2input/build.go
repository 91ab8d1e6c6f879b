package xc2input

import (
	"fmt"

	"github.com/azonenberg/xc2par/pool"
	"github.com/azonenberg/xc2par/xc2errs"
	"github.com/azonenberg/xc2par/xc2gather"
	"github.com/azonenberg/xc2par/xc2log"
	"github.com/azonenberg/xc2par/xc2netlist"
)

// feedbackRef is the resolved (macrocell, path) pair a node handle
// represents once it has been bundled into an anchor.
type feedbackRef struct {
	Macrocell MacrocellHandle
	Kind      FeedbackKind
}

type builder struct {
	src *xc2netlist.Graph
	out *Graph
	log xc2log.Logger

	// nodeFeedback maps an intermediate node (IOBuf/InBuf/Register/Xor) to
	// the macrocell feedback path it now represents.
	nodeFeedback map[xc2netlist.NodeHandle]feedbackRef

	// nodeGlobal maps a Bufg* node to the GlobalBuffer record built for it.
	nodeGlobal map[xc2netlist.NodeHandle]pool.Handle[GlobalBuffer]
}

// Build materializes the PAR-ready input graph from the anchor sequence
// produced by xc2gather.Gather (spec §4.3).
func Build(src *xc2netlist.Graph, anchors []xc2gather.Anchor, log xc2log.Logger) (*Graph, error) {
	log = xc2log.Stage(log, "xc2input")

	b := &builder{
		src:          src,
		out:          &Graph{},
		log:          log,
		nodeFeedback: map[xc2netlist.NodeHandle]feedbackRef{},
		nodeGlobal:   map[xc2netlist.NodeHandle]pool.Handle[GlobalBuffer]{},
	}

	mcHandles := make([]MacrocellHandle, len(anchors))
	for i, a := range anchors {
		h, err := b.allocateMacrocell(a)
		if err != nil {
			return nil, err
		}
		mcHandles[i] = h
	}

	if err := b.buildGlobalBuffers(); err != nil {
		return nil, err
	}

	for i, a := range anchors {
		if err := b.fillMacrocell(mcHandles[i], a); err != nil {
			return nil, err
		}
	}

	if err := b.sanityCheck(); err != nil {
		return nil, err
	}

	log.V(1).Info("built input graph", "macrocells", b.out.Macrocells.Len(), "pterms", b.out.PTerms.Len(), "globals", b.out.Globals.Len())
	return b.out, nil
}

// allocateMacrocell determines the merged name, unioned LOC, and type of one
// anchor, registers its node-to-feedback mappings, and allocates the (as yet
// empty) Macrocell record. Sub-record content is filled in by fillMacrocell
// once every macrocell has a handle, since P-term resolution needs the
// complete nodeFeedback map.
func (b *builder) allocateMacrocell(a xc2gather.Anchor) (MacrocellHandle, error) {
	var nameParts []string
	var loc *xc2netlist.RequestedLocation

	merge := func(nodeHandle xc2netlist.NodeHandle, name string, nodeLoc *xc2netlist.RequestedLocation) error {
		nameParts = append(nameParts, name)
		if nodeLoc == nil {
			return nil
		}
		if loc == nil {
			loc = nodeLoc
			return nil
		}
		if loc.FB != nodeLoc.FB {
			return xc2errs.New(xc2errs.KindLOCMismatchedFB, name, "LOC FB mismatch within merged macrocell")
		}
		return nil
	}

	if a.HasIOBuf {
		n := b.src.Nodes.Get(a.IOBuf)
		if err := merge(a.IOBuf, n.Name, n.Loc); err != nil {
			return 0, err
		}
	}
	if a.HasRegister {
		n := b.src.Nodes.Get(a.Register)
		if err := merge(a.Register, n.Name, n.Loc); err != nil {
			return 0, err
		}
	}
	if a.HasXor {
		n := b.src.Nodes.Get(a.Xor)
		if err := merge(a.Xor, n.Name, n.Loc); err != nil {
			return 0, err
		}
	}
	if a.HasInBuf {
		n := b.src.Nodes.Get(a.InBuf)
		if err := merge(a.InBuf, n.Name, n.Loc); err != nil {
			return 0, err
		}
	}

	name := nameParts[0]
	for _, p := range nameParts[1:] {
		name = name + "_" + p
	}

	mtype := macrocellType(a)

	h := b.out.Macrocells.Alloc(Macrocell{Name: name, Loc: loc, Type: mtype})

	if a.HasIOBuf {
		b.nodeFeedback[a.IOBuf] = feedbackRef{Macrocell: h, Kind: FeedbackPin}
	}
	if a.HasInBuf {
		b.nodeFeedback[a.InBuf] = feedbackRef{Macrocell: h, Kind: FeedbackPin}
	}
	if a.HasRegister {
		b.nodeFeedback[a.Register] = feedbackRef{Macrocell: h, Kind: FeedbackReg}
	}
	if a.HasXor {
		b.nodeFeedback[a.Xor] = feedbackRef{Macrocell: h, Kind: FeedbackXor}
	}

	return h, nil
}

func macrocellType(a xc2gather.Anchor) MacrocellType {
	switch a.Kind {
	case xc2gather.AnchorIOBuf:
		return PinOutput
	case xc2gather.AnchorBuriedReg:
		return BuriedReg
	case xc2gather.AnchorBuriedComb:
		return BuriedComb
	case xc2gather.AnchorRegisteredIn:
		return PinInputReg
	default:
		return PinInputUnreg
	}
}

// buildGlobalBuffers scans every Bufg* node in the source graph (these are
// never gather anchors themselves) and builds a GlobalBuffer record whose
// Source is the IO macrocell feeding it.
func (b *builder) buildGlobalBuffers() error {
	for _, h := range b.src.Nodes.All() {
		n := b.src.Nodes.Get(h)
		var kind GlobalBufferKind
		var inputNet xc2netlist.NetHandle
		var invert bool
		switch n.Kind {
		case xc2netlist.NodeBufgClk:
			kind, inputNet = GlobalClock, n.BufgClk.Input
		case xc2netlist.NodeBufgGTS:
			kind, inputNet, invert = GlobalTristate, n.BufgGTS.Input, n.BufgGTS.Invert
		case xc2netlist.NodeBufgGSR:
			kind, inputNet, invert = GlobalSetReset, n.BufgGSR.Input, n.BufgGSR.Invert
		default:
			continue
		}

		net := b.src.Nets.Get(inputNet)
		if !net.HasDriver || net.IsConst {
			return xc2errs.New(xc2errs.KindIllegalNodeDriver, n.Name, "global buffer input is not driven by a macrocell")
		}
		fb, ok := b.nodeFeedback[net.Driver]
		if !ok || fb.Kind != FeedbackPin {
			return xc2errs.New(xc2errs.KindIllegalNodeDriver, n.Name, "global buffer input must come from an IO macrocell")
		}

		gh := b.out.Globals.Alloc(GlobalBuffer{Kind: kind, Invert: invert, Source: fb.Macrocell})
		b.nodeGlobal[h] = gh
	}
	return nil
}

// fillMacrocell resolves the IO/Reg/Xor sub-record contents of one already-
// allocated macrocell, including P-term materialization and feedback-usage
// flagging.
func (b *builder) fillMacrocell(h MacrocellHandle, a xc2gather.Anchor) error {
	mc := b.out.Macrocells.GetPtr(h)

	if a.HasIOBuf {
		n := b.src.Nodes.Get(a.IOBuf)
		oe, err := b.resolveOptControl(n.Name, n.IOBuf.OE, controlOE)
		if err != nil {
			return err
		}
		mc.IO = IOBits{
			Present:  true,
			IsOutput: n.IOBuf.Input != nil,
			OE:       oe,
			Schmitt:  n.IOBuf.Schmitt,
			Term:     n.IOBuf.Term,
			Slew:     n.IOBuf.Slew,
			DataGate: n.IOBuf.DataGate,
		}
	} else if a.HasInBuf {
		n := b.src.Nodes.Get(a.InBuf)
		mc.IO = IOBits{
			Present:  true,
			IsOutput: false,
			Schmitt:  n.InBuf.Schmitt,
			Term:     n.InBuf.Term,
			DataGate: n.InBuf.DataGate,
		}
	}

	if a.HasRegister {
		n := b.src.Nodes.Get(a.Register)
		clock, err := b.resolveControl(n.Name, &n.Register.Clock, controlClock)
		if err != nil {
			return err
		}
		set, err := b.resolveOptControl(n.Name, n.Register.Set, controlSetReset)
		if err != nil {
			return err
		}
		reset, err := b.resolveOptControl(n.Name, n.Register.Reset, controlSetReset)
		if err != nil {
			return err
		}
		var ce SourceRef
		if n.Register.Mode == xc2netlist.RegDFFCE {
			if n.Register.CE == nil {
				return xc2errs.New(xc2errs.KindMissingRequiredConn, n.Name, "DFFCE register missing CE input")
			}
			ce, err = b.resolveControl(n.Name, n.Register.CE, controlCE)
			if err != nil {
				return err
			}
		}
		mc.Reg = RegBits{
			Present:     true,
			Mode:        n.Register.Mode,
			ClockInvert: n.Register.ClockInvert,
			DDR:         n.Register.DDR,
			InitHigh:    n.Register.InitHigh,
			Clock:       clock,
			Set:         set,
			Reset:       reset,
			CE:          ce,
		}
	}

	if a.HasXor {
		n := b.src.Nodes.Get(a.Xor)
		invert := n.Xor.Invert

		var ptc SourceRef
		if n.Xor.PTermInput != nil {
			net := b.src.Nets.Get(*n.Xor.PTermInput)
			switch {
			case net.IsConst && net.ConstHigh:
				invert = !invert
				ptc = SourceRef{Kind: SourceTiedLow}
			case net.IsConst && !net.ConstHigh:
				ptc = SourceRef{Kind: SourceTiedLow}
			default:
				pt, err := b.materializeControlPTerm(net, n.Name+"_ptc")
				if err != nil {
					return err
				}
				ptc = SourceRef{Kind: SourcePTerm, PTerm: pt}
			}
		}

		var orTerms []PTermHandle
		if n.Xor.OrInput != nil {
			net := b.src.Nets.Get(*n.Xor.OrInput)
			if !net.HasDriver || net.IsConst {
				return xc2errs.New(xc2errs.KindIllegalNodeDriver, n.Name, "XOR OR-input is not driven by an OR term")
			}
			driver := b.src.Nodes.Get(net.Driver)
			if driver.Kind != xc2netlist.NodeOrTerm {
				return xc2errs.New(xc2errs.KindIllegalNodeDriver, n.Name, "XOR OR-input must be driven by an ORTERM")
			}
			for _, inputNet := range driver.OrTerm.Inputs {
				pt, err := b.materializeControlPTerm(b.src.Nets.Get(inputNet), fmt.Sprintf("%s_or%d", n.Name, len(orTerms)))
				if err != nil {
					return err
				}
				orTerms = append(orTerms, pt)
			}
		}

		mc.Xor = XorBits{Present: true, OrTerms: orTerms, PTC: ptc, Invert: invert}
	}

	if mc.FeedbackCount() > 2 {
		return xc2errs.New(xc2errs.KindTooManyFeedbacksUsed, mc.Name, "macrocell uses all three feedback paths")
	}

	return nil
}
