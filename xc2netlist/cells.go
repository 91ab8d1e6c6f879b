package xc2netlist

import (
	"strings"

	"github.com/azonenberg/xc2par/xc2errs"
)

// buildNodes maps each cell, in sorted-name order, to the Node it
// represents (spec §4.1's cell-type table). Connection BitVals are resolved
// to NetHandles via bitvalToNet; LOC attributes are parsed into
// RequestedLocation.
func (l *loader) buildNodes() error {
	l.nodeByCell = map[string]NodeHandle{}

	for _, cellName := range l.sortedCellNames() {
		cell := l.module.Cells[cellName]

		loc, err := l.cellLocation(cellName, cell)
		if err != nil {
			return err
		}

		node, err := l.buildOneNode(cellName, cell)
		if err != nil {
			return err
		}
		node.Name = cellName
		node.Loc = loc

		h := l.graph.Nodes.Alloc(node)
		l.nodeByCell[cellName] = h
	}
	return nil
}

func (l *loader) buildOneNode(name string, cell Cell) (Node, error) {
	switch cell.CellType {
	case "IOBUFE":
		return l.buildIOBuf(name, cell)
	case "IBUF":
		return l.buildInBuf(name, cell)
	case "ANDTERM":
		return l.buildAndTerm(name, cell)
	case "ORTERM":
		return l.buildOrTerm(name, cell)
	case "MACROCELL_XOR":
		return l.buildXor(name, cell)
	case "BUFG":
		return l.buildBufgClk(name, cell)
	case "BUFGTS":
		return l.buildBufgGTS(name, cell)
	case "BUFGSR":
		return l.buildBufgGSR(name, cell)
	case "FDCP", "FDCP_N", "FDDCP", "LDCP", "LDCP_N", "FTCP", "FTCP_N", "FTDCP",
		"FDCPE", "FDCPE_N", "FDDCPE":
		return l.buildRegister(name, cell)
	default:
		return Node{}, xc2errs.New(xc2errs.KindUnsupportedCellType, name, "unsupported cell type %q", cell.CellType)
	}
}

// --- connection / parameter helpers, grounded on frontend.rs's
// numeric_param / single_required_connection / single_optional_connection /
// multiple_required_connection closures ---

func (l *loader) numericParam(cellName string, cell Cell, param string) (int, error) {
	v, ok := cell.Parameters[param]
	if !ok {
		return 0, xc2errs.New(xc2errs.KindMissingRequiredParam, cellName, "missing required parameter %s", param)
	}
	n, ok := v.ToNumber()
	if !ok {
		return 0, xc2errs.New(xc2errs.KindNumericParse, cellName, "parameter %s is not numeric", param)
	}
	return n, nil
}

func (l *loader) boolAttrib(cell Cell, attrib string) bool {
	v, ok := cell.Attributes[attrib]
	if !ok {
		return false
	}
	n, ok := v.ToNumber()
	return ok && n != 0
}

func (l *loader) stringBoolAttrib(cell Cell, attrib, truthy string) bool {
	v, ok := cell.Attributes[attrib]
	if !ok {
		return false
	}
	s, ok := v.ToStringIfString()
	return ok && strings.EqualFold(s, truthy)
}

func (l *loader) singleRequired(cellName string, cell Cell, conn string) (BitVal, error) {
	bits, ok := cell.Connections[conn]
	if !ok || len(bits) == 0 {
		return BitVal{}, xc2errs.New(xc2errs.KindMissingRequiredConn, cellName, "missing required connection %s", conn)
	}
	if len(bits) != 1 {
		return BitVal{}, xc2errs.New(xc2errs.KindTooManyConnections, cellName, "connection %s has %d bits, want 1", conn, len(bits))
	}
	return bits[0], nil
}

func (l *loader) singleOptional(cell Cell, conn string) (BitVal, bool) {
	bits, ok := cell.Connections[conn]
	if !ok || len(bits) == 0 {
		return BitVal{}, false
	}
	return bits[0], true
}

func (l *loader) multipleRequired(cellName string, cell Cell, conn string) ([]BitVal, error) {
	bits, ok := cell.Connections[conn]
	if !ok {
		return nil, xc2errs.New(xc2errs.KindMissingRequiredConn, cellName, "missing required connection %s", conn)
	}
	return bits, nil
}

func (l *loader) resolveNets(cellName string, bits []BitVal) ([]NetHandle, error) {
	out := make([]NetHandle, len(bits))
	for i, b := range bits {
		h, err := l.bitvalToNet(cellName, b)
		if err != nil {
			return nil, err
		}
		out[i] = h
	}
	return out, nil
}

func (l *loader) resolveNet(cellName string, b BitVal) (NetHandle, error) {
	return l.bitvalToNet(cellName, b)
}

func (l *loader) resolveOptNet(cellName string, b BitVal, ok bool) (*NetHandle, error) {
	if !ok {
		return nil, nil
	}
	h, err := l.bitvalToNet(cellName, b)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

// --- per-cell-type builders ---

func (l *loader) buildIOBuf(name string, cell Cell) (Node, error) {
	iBits, iOk := l.singleOptional(cell, "I")
	eBits, eOk := l.singleOptional(cell, "E")
	oBits, oOk := l.singleOptional(cell, "O")

	input, err := l.resolveOptNet(name, iBits, iOk)
	if err != nil {
		return Node{}, err
	}
	oe, err := l.resolveOptNet(name, eBits, eOk)
	if err != nil {
		return Node{}, err
	}
	output, err := l.resolveOptNet(name, oBits, oOk)
	if err != nil {
		return Node{}, err
	}

	slewFast := l.stringBoolAttrib(cell, "SLEW", "fast")
	return Node{
		Kind: NodeIOBuf,
		IOBuf: IOBufData{
			Input:     input,
			OE:        oe,
			Output:    output,
			Schmitt:   l.boolAttrib(cell, "SCHMITT_TRIGGER"),
			Term:      l.boolAttrib(cell, "TERM"),
			Slew:      slewFast,
			DataGate:  l.boolAttrib(cell, "DATA_GATE"),
			OpenDrain: l.boolAttrib(cell, "OPEN_DRAIN"),
		},
	}, nil
}

func (l *loader) buildInBuf(name string, cell Cell) (Node, error) {
	oBits, err := l.singleRequired(name, cell, "O")
	if err != nil {
		return Node{}, err
	}
	output, err := l.resolveNet(name, oBits)
	if err != nil {
		return Node{}, err
	}
	return Node{
		Kind: NodeInBuf,
		InBuf: InBufData{
			Output:   output,
			Schmitt:  l.boolAttrib(cell, "SCHMITT_TRIGGER"),
			Term:     l.boolAttrib(cell, "TERM"),
			DataGate: l.boolAttrib(cell, "DATA_GATE"),
		},
	}, nil
}

func (l *loader) buildAndTerm(name string, cell Cell) (Node, error) {
	trueInp, err := l.numericParam(name, cell, "TRUE_INP")
	if err != nil {
		return Node{}, err
	}
	compInp, err := l.numericParam(name, cell, "COMP_INP")
	if err != nil {
		return Node{}, err
	}

	inBits, err := l.multipleRequired(name, cell, "IN")
	if err != nil {
		return Node{}, err
	}
	inBBits, err := l.multipleRequired(name, cell, "IN_B")
	if err != nil {
		return Node{}, err
	}
	if len(inBits) != trueInp {
		return Node{}, xc2errs.New(xc2errs.KindMismatchedInputCount, name, "IN has %d bits, TRUE_INP=%d", len(inBits), trueInp)
	}
	if len(inBBits) != compInp {
		return Node{}, xc2errs.New(xc2errs.KindMismatchedInputCount, name, "IN_B has %d bits, COMP_INP=%d", len(inBBits), compInp)
	}

	trueNets, err := l.resolveNets(name, inBits)
	if err != nil {
		return Node{}, err
	}
	compNets, err := l.resolveNets(name, inBBits)
	if err != nil {
		return Node{}, err
	}
	outBits, err := l.singleRequired(name, cell, "OUT")
	if err != nil {
		return Node{}, err
	}
	output, err := l.resolveNet(name, outBits)
	if err != nil {
		return Node{}, err
	}

	return Node{
		Kind: NodeAndTerm,
		AndTerm: AndTermData{
			TrueInputs: trueNets,
			CompInputs: compNets,
			Output:     output,
		},
	}, nil
}

func (l *loader) buildOrTerm(name string, cell Cell) (Node, error) {
	width, err := l.numericParam(name, cell, "WIDTH")
	if err != nil {
		return Node{}, err
	}
	inBits, err := l.multipleRequired(name, cell, "IN")
	if err != nil {
		return Node{}, err
	}
	if len(inBits) != width {
		return Node{}, xc2errs.New(xc2errs.KindMismatchedInputCount, name, "IN has %d bits, WIDTH=%d", len(inBits), width)
	}
	inNets, err := l.resolveNets(name, inBits)
	if err != nil {
		return Node{}, err
	}
	outBits, err := l.singleRequired(name, cell, "OUT")
	if err != nil {
		return Node{}, err
	}
	output, err := l.resolveNet(name, outBits)
	if err != nil {
		return Node{}, err
	}
	return Node{
		Kind: NodeOrTerm,
		OrTerm: OrTermData{
			Inputs: inNets,
			Output: output,
		},
	}, nil
}

func (l *loader) buildXor(name string, cell Cell) (Node, error) {
	ptcBits, ptcOk := l.singleOptional(cell, "IN_PTC")
	orBits, orOk := l.singleOptional(cell, "IN_ORTERM")

	ptcNet, err := l.resolveOptNet(name, ptcBits, ptcOk)
	if err != nil {
		return Node{}, err
	}
	orNet, err := l.resolveOptNet(name, orBits, orOk)
	if err != nil {
		return Node{}, err
	}

	invert := l.boolAttrib(cell, "INVERT_OUT")

	outBits, err := l.singleRequired(name, cell, "OUT")
	if err != nil {
		return Node{}, err
	}
	output, err := l.resolveNet(name, outBits)
	if err != nil {
		return Node{}, err
	}

	return Node{
		Kind: NodeXor,
		Xor: XorData{
			PTermInput: ptcNet,
			OrInput:    orNet,
			Invert:     invert,
			Output:     output,
		},
	}, nil
}

func (l *loader) buildBufgClk(name string, cell Cell) (Node, error) {
	iBits, err := l.singleRequired(name, cell, "I")
	if err != nil {
		return Node{}, err
	}
	input, err := l.resolveNet(name, iBits)
	if err != nil {
		return Node{}, err
	}
	oBits, err := l.singleRequired(name, cell, "O")
	if err != nil {
		return Node{}, err
	}
	output, err := l.resolveNet(name, oBits)
	if err != nil {
		return Node{}, err
	}
	return Node{Kind: NodeBufgClk, BufgClk: BufgClkData{Input: input, Output: output}}, nil
}

func (l *loader) buildBufgGTS(name string, cell Cell) (Node, error) {
	iBits, err := l.singleRequired(name, cell, "I")
	if err != nil {
		return Node{}, err
	}
	input, err := l.resolveNet(name, iBits)
	if err != nil {
		return Node{}, err
	}
	oBits, err := l.singleRequired(name, cell, "O")
	if err != nil {
		return Node{}, err
	}
	output, err := l.resolveNet(name, oBits)
	if err != nil {
		return Node{}, err
	}
	return Node{Kind: NodeBufgGTS, BufgGTS: BufgGTSData{Input: input, Output: output, Invert: l.boolAttrib(cell, "INVERT")}}, nil
}

func (l *loader) buildBufgGSR(name string, cell Cell) (Node, error) {
	iBits, err := l.singleRequired(name, cell, "I")
	if err != nil {
		return Node{}, err
	}
	input, err := l.resolveNet(name, iBits)
	if err != nil {
		return Node{}, err
	}
	oBits, err := l.singleRequired(name, cell, "O")
	if err != nil {
		return Node{}, err
	}
	output, err := l.resolveNet(name, oBits)
	if err != nil {
		return Node{}, err
	}
	return Node{Kind: NodeBufgGSR, BufgGSR: BufgGSRData{Input: input, Output: output, Invert: l.boolAttrib(cell, "INVERT")}}, nil
}

// buildRegister handles the FDCP/LDCP/FTCP/*CPE family. The mode and clock
// polarity/DDR behavior are derived entirely from the cell type name
// (frontend.rs's exact match), not from a parameter.
func (l *loader) buildRegister(name string, cell Cell) (Node, error) {
	var mode RegisterMode
	switch {
	case strings.HasPrefix(cell.CellType, "LDCP"):
		mode = RegLatch
	case strings.HasPrefix(cell.CellType, "FTCP"), strings.HasPrefix(cell.CellType, "FTDCP"):
		mode = RegTFF
	case strings.Contains(cell.CellType, "CPE"):
		mode = RegDFFCE
	default:
		mode = RegDFF
	}

	clockInvert := strings.HasSuffix(cell.CellType, "_N")
	ddr := strings.Contains(cell.CellType, "FDDCP") || strings.Contains(cell.CellType, "FTDCP")

	dtConn := "D"
	if mode == RegTFF {
		dtConn = "T"
	}
	clkConn := "C"
	if mode == RegLatch {
		clkConn = "G"
	}

	preBits, preOk := l.singleOptional(cell, "PRE")
	clrBits, clrOk := l.singleOptional(cell, "CLR")
	set, err := l.resolveOptNet(name, preBits, preOk)
	if err != nil {
		return Node{}, err
	}
	reset, err := l.resolveOptNet(name, clrBits, clrOk)
	if err != nil {
		return Node{}, err
	}

	var ce *NetHandle
	if mode == RegDFFCE {
		ceBits, err := l.singleRequired(name, cell, "CE")
		if err != nil {
			return Node{}, err
		}
		h, err := l.resolveNet(name, ceBits)
		if err != nil {
			return Node{}, err
		}
		ce = &h
	}

	dtBits, err := l.singleRequired(name, cell, dtConn)
	if err != nil {
		return Node{}, err
	}
	dt, err := l.resolveNet(name, dtBits)
	if err != nil {
		return Node{}, err
	}

	clkBits, err := l.singleRequired(name, cell, clkConn)
	if err != nil {
		return Node{}, err
	}
	clk, err := l.resolveNet(name, clkBits)
	if err != nil {
		return Node{}, err
	}

	qBits, err := l.singleRequired(name, cell, "Q")
	if err != nil {
		return Node{}, err
	}
	output, err := l.resolveNet(name, qBits)
	if err != nil {
		return Node{}, err
	}

	initHigh := l.boolAttrib(cell, "INIT")

	return Node{
		Kind: NodeRegister,
		Register: RegisterData{
			Mode:        mode,
			ClockInvert: clockInvert,
			DDR:         ddr,
			InitHigh:    initHigh,
			Set:         set,
			Reset:       reset,
			CE:          ce,
			D:           dt,
			Clock:       clk,
			Output:      output,
		},
	}, nil
}

// resolveDriversAndSinks walks every built node in pool (insertion) order,
// registering it as the sink of each net it reads and the sole driver of
// each net it writes, then checks every non-constant net has a driver.
func (l *loader) resolveDriversAndSinks() error {
	setSource := func(output NetHandle, driver NodeHandle) error {
		n := l.graph.Nets.GetPtr(output)
		if n.HasDriver {
			return xc2errs.New(xc2errs.KindMultipleNetDrivers, netDisplayName(n), "net already has a driver")
		}
		n.HasDriver = true
		n.Driver = driver
		return nil
	}
	addSink := func(input NetHandle, sink NodeHandle) {
		n := l.graph.Nets.GetPtr(input)
		n.Sinks = append(n.Sinks, sink)
	}

	for _, h := range l.graph.Nodes.All() {
		node := l.graph.Nodes.Get(h)
		switch node.Kind {
		case NodeAndTerm:
			for _, in := range node.AndTerm.TrueInputs {
				addSink(in, h)
			}
			for _, in := range node.AndTerm.CompInputs {
				addSink(in, h)
			}
			if err := setSource(node.AndTerm.Output, h); err != nil {
				return err
			}
		case NodeOrTerm:
			for _, in := range node.OrTerm.Inputs {
				addSink(in, h)
			}
			if err := setSource(node.OrTerm.Output, h); err != nil {
				return err
			}
		case NodeXor:
			if node.Xor.OrInput != nil {
				addSink(*node.Xor.OrInput, h)
			}
			if node.Xor.PTermInput != nil {
				addSink(*node.Xor.PTermInput, h)
			}
			if err := setSource(node.Xor.Output, h); err != nil {
				return err
			}
		case NodeRegister:
			if node.Register.Set != nil {
				addSink(*node.Register.Set, h)
			}
			if node.Register.Reset != nil {
				addSink(*node.Register.Reset, h)
			}
			if node.Register.CE != nil {
				addSink(*node.Register.CE, h)
			}
			addSink(node.Register.D, h)
			addSink(node.Register.Clock, h)
			if err := setSource(node.Register.Output, h); err != nil {
				return err
			}
		case NodeBufgClk:
			addSink(node.BufgClk.Input, h)
			if err := setSource(node.BufgClk.Output, h); err != nil {
				return err
			}
		case NodeBufgGTS:
			addSink(node.BufgGTS.Input, h)
			if err := setSource(node.BufgGTS.Output, h); err != nil {
				return err
			}
		case NodeBufgGSR:
			addSink(node.BufgGSR.Input, h)
			if err := setSource(node.BufgGSR.Output, h); err != nil {
				return err
			}
		case NodeIOBuf:
			if node.IOBuf.Input != nil {
				addSink(*node.IOBuf.Input, h)
			}
			if node.IOBuf.OE != nil {
				addSink(*node.IOBuf.OE, h)
			}
			if node.IOBuf.Output != nil {
				if err := setSource(*node.IOBuf.Output, h); err != nil {
					return err
				}
			}
		case NodeInBuf:
			if err := setSource(node.InBuf.Output, h); err != nil {
				return err
			}
		}
	}

	for _, h := range l.graph.Nets.All() {
		if h == l.graph.VddNet || h == l.graph.VssNet {
			continue
		}
		n := l.graph.Nets.Get(h)
		if !n.HasDriver {
			return xc2errs.New(xc2errs.KindNoNetDriver, netDisplayName(n), "net has no driver")
		}
	}
	return nil
}

func netDisplayName(n *Net) string {
	if n.Name == "" {
		return "<unnamed net>"
	}
	return n.Name
}
