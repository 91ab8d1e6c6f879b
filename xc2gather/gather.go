// Package xc2gather implements stage B of the pipeline (spec §4.2): it walks
// the intermediate graph produced by xc2netlist and produces the canonical,
// deterministic sequence of macrocell anchors that stage C will materialize.
// Grounded on the four-pass walk of xc2par/src/netlist.rs's gather_macrocells
// (original_source).
package xc2gather

import (
	"sort"

	"github.com/azonenberg/xc2par/xc2errs"
	"github.com/azonenberg/xc2par/xc2log"
	"github.com/azonenberg/xc2par/xc2netlist"
)

// AnchorKind names which intermediate node a macrocell anchor is keyed on.
type AnchorKind int

const (
	// AnchorIOBuf anchors on an IOBUFE node (pass 1).
	AnchorIOBuf AnchorKind = iota
	// AnchorBuriedReg anchors on a Register node fed by an unconsumed XOR (pass 2).
	AnchorBuriedReg
	// AnchorBuriedComb anchors on an XOR node with no register sink (pass 2).
	AnchorBuriedComb
	// AnchorRegisteredIn anchors on a Register node fed by an InBuf (pass 3).
	AnchorRegisteredIn
	// AnchorUnregisteredIn anchors on a bare InBuf node (pass 4).
	AnchorUnregisteredIn
)

// Anchor is one macrocell-shaped grouping discovered by Gather, carrying
// handles to every intermediate node it subsumes. Not every field is
// populated for every Kind; xc2input reads only the fields that apply.
type Anchor struct {
	Kind AnchorKind

	IOBuf xc2netlist.NodeHandle
	HasIOBuf bool

	Register xc2netlist.NodeHandle
	HasRegister bool

	Xor    xc2netlist.NodeHandle
	HasXor bool

	InBuf    xc2netlist.NodeHandle
	HasInBuf bool
}

// Gather produces the ordered anchor sequence for g (spec §4.2). Anchors
// appear in the order: all IOBUFE anchors (sorted by IOBUFE node name for
// determinism), then buried XOR/register anchors, then registered IBUFs,
// then remaining unregistered IBUFs.
func Gather(g *xc2netlist.Graph, log xc2log.Logger) ([]Anchor, error) {
	log = xc2log.Stage(log, "xc2gather")

	consumedXor := map[xc2netlist.NodeHandle]bool{}
	consumedReg := map[xc2netlist.NodeHandle]bool{}
	consumedInBuf := map[xc2netlist.NodeHandle]bool{}
	anchored := map[xc2netlist.NodeHandle]bool{}

	var anchors []Anchor

	// Pass 1: IOBUFE.
	ioHandles := nodesOfKind(g, xc2netlist.NodeIOBuf)
	for _, h := range ioHandles {
		a := Anchor{Kind: AnchorIOBuf, IOBuf: h, HasIOBuf: true}

		driverXor, driverReg, err := ioInputPath(g, h)
		if err != nil {
			return nil, err
		}
		if driverReg.HasRegister {
			a.Register = driverReg.Register
			a.HasRegister = true
			consumedReg[driverReg.Register] = true
		}
		if driverXor.HasXor {
			a.Xor = driverXor.Xor
			a.HasXor = true
			consumedXor[driverXor.Xor] = true
		}
		anchors = append(anchors, a)
		anchored[h] = true
	}

	// Pass 2: buried XORs / registers not consumed by pass 1.
	xorHandles := nodesOfKind(g, xc2netlist.NodeXor)
	for _, h := range xorHandles {
		if consumedXor[h] {
			continue
		}
		reg, hasReg, err := xorRegisterSink(g, h)
		if err != nil {
			return nil, err
		}
		if hasReg {
			if consumedReg[reg] {
				return nil, xc2errs.New(xc2errs.KindTooManyFeedbacksUsed, g.Nodes.Get(h).Name, "register already consumed by another anchor")
			}
			anchors = append(anchors, Anchor{Kind: AnchorBuriedReg, Register: reg, HasRegister: true, Xor: h, HasXor: true})
			consumedReg[reg] = true
		} else {
			anchors = append(anchors, Anchor{Kind: AnchorBuriedComb, Xor: h, HasXor: true})
		}
		consumedXor[h] = true
	}

	// Pass 3: registered IBUF (register fed directly by an InBuf).
	regHandles := nodesOfKind(g, xc2netlist.NodeRegister)
	for _, h := range regHandles {
		if consumedReg[h] {
			continue
		}
		in, hasIn := registerInBufSource(g, h)
		if !hasIn {
			continue
		}
		anchors = append(anchors, Anchor{Kind: AnchorRegisteredIn, Register: h, HasRegister: true, InBuf: in, HasInBuf: true})
		consumedReg[h] = true
		consumedInBuf[in] = true
	}

	// Pass 4: remaining unregistered IBUFs, in sorted-name order (this
	// ordering seeds the greedy initial placement, spec §4.2).
	inHandles := nodesOfKind(g, xc2netlist.NodeInBuf)
	for _, h := range inHandles {
		if consumedInBuf[h] {
			continue
		}
		anchors = append(anchors, Anchor{Kind: AnchorUnregisteredIn, InBuf: h, HasInBuf: true})
	}

	log.V(1).Info("gathered anchors", "count", len(anchors))
	return anchors, nil
}

// nodesOfKind returns every node handle of the given kind, sorted by node
// name to give the pass a deterministic order independent of pool insertion
// order (insertion order already tracks JSON cell iteration, which is
// itself sorted, but sorting again here makes the dependency explicit and
// cheap).
func nodesOfKind(g *xc2netlist.Graph, kind xc2netlist.NodeKind) []xc2netlist.NodeHandle {
	var out []xc2netlist.NodeHandle
	for _, h := range g.Nodes.All() {
		if g.Nodes.Get(h).Kind == kind {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return g.Nodes.Get(out[i]).Name < g.Nodes.Get(out[j]).Name
	})
	return out
}

// xorHandleResult bundles an optional Xor/Register lookup result so
// ioInputPath can return two of them without naming four variables.
type xorHandleResult struct {
	Xor         xc2netlist.NodeHandle
	HasXor      bool
	Register    xc2netlist.NodeHandle
	HasRegister bool
}

// ioInputPath walks backward from an IOBUFE's input to find the XOR and/or
// register driving it, enforcing the three legal shapes from spec §4.2:
// XOR→IOBUFE, XOR→FF→IOBUFE, or IOBUFE→FF→IOBUFE (self-loop, handled by the
// register-only case below). A register whose D/T is tied to a constant is
// also accepted, register only.
func ioInputPath(g *xc2netlist.Graph, ioHandle xc2netlist.NodeHandle) (xorResult, regResult xorHandleResult, err error) {
	io := g.Nodes.Get(ioHandle)
	if io.IOBuf.Input == nil {
		return xorHandleResult{}, xorHandleResult{}, nil
	}
	net := g.Nets.Get(*io.IOBuf.Input)
	if !net.HasDriver || net.IsConst {
		return xorHandleResult{}, xorHandleResult{}, nil
	}
	driver := g.Nodes.Get(net.Driver)

	switch driver.Kind {
	case xc2netlist.NodeXor:
		return xorHandleResult{Xor: net.Driver, HasXor: true}, xorHandleResult{}, nil
	case xc2netlist.NodeRegister:
		reg := xorHandleResult{Register: net.Driver, HasRegister: true}
		dNet := g.Nets.Get(driver.Register.D)
		if dNet.HasDriver && !dNet.IsConst {
			dDriver := g.Nodes.Get(dNet.Driver)
			if dDriver.Kind == xc2netlist.NodeXor {
				return xorHandleResult{Xor: dNet.Driver, HasXor: true}, reg, nil
			}
			if dDriver.Kind == xc2netlist.NodeIOBuf {
				// IOBUFE -> FF -> IOBUFE self-loop: register only, no XOR.
				return xorHandleResult{}, reg, nil
			}
			return xorHandleResult{}, xorHandleResult{}, xc2errs.New(xc2errs.KindIllegalNodeDriver, io.Name, "register feeding IOBUFE has an unsupported D/T driver")
		}
		return xorHandleResult{}, reg, nil
	default:
		return xorHandleResult{}, xorHandleResult{}, xc2errs.New(xc2errs.KindIllegalNodeDriver, io.Name, "IOBUFE input driven by unsupported node kind")
	}
}

// xorRegisterSink reports the single register fed by an XOR's output, if
// any; an XOR driving more than one register is rejected as too many
// feedback uses.
func xorRegisterSink(g *xc2netlist.Graph, xorHandle xc2netlist.NodeHandle) (xc2netlist.NodeHandle, bool, error) {
	xorNode := g.Nodes.Get(xorHandle)
	net := g.Nets.Get(xorNode.Xor.Output)

	var found xc2netlist.NodeHandle
	count := 0
	for _, sinkHandle := range net.Sinks {
		sink := g.Nodes.Get(sinkHandle)
		if sink.Kind == xc2netlist.NodeRegister {
			found = sinkHandle
			count++
		}
	}
	if count > 1 {
		return 0, false, xc2errs.New(xc2errs.KindTooManyFeedbacksUsed, xorNode.Name, "XOR drives more than one register")
	}
	return found, count == 1, nil
}

// registerInBufSource reports the InBuf directly driving a register's D/T
// input, if any.
func registerInBufSource(g *xc2netlist.Graph, regHandle xc2netlist.NodeHandle) (xc2netlist.NodeHandle, bool) {
	reg := g.Nodes.Get(regHandle)
	dNet := g.Nets.Get(reg.Register.D)
	if !dNet.HasDriver || dNet.IsConst {
		return 0, false
	}
	driver := g.Nodes.Get(dNet.Driver)
	if driver.Kind != xc2netlist.NodeInBuf {
		return 0, false
	}
	return dNet.Driver, true
}
