package xc2netlist

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"

	"github.com/azonenberg/xc2par/xc2errs"
	"github.com/azonenberg/xc2par/xc2log"
)

// LoadFromJSON parses a Yosys-style synthesis netlist and normalizes it into
// a Graph (spec §4.1). It is the only entry point into stage A.
func LoadFromJSON(data []byte, log xc2log.Logger) (*Graph, error) {
	log = xc2log.Stage(log, "xc2netlist")

	var nl Netlist
	if err := json.Unmarshal(data, &nl); err != nil {
		return nil, fmt.Errorf("decoding netlist JSON: %w", err)
	}

	topName, top, err := selectTopModule(nl)
	if err != nil {
		return nil, err
	}
	log.V(1).Info("selected top module", "module", topName)

	g := NewGraph()

	l := &loader{graph: g, module: top, netByBit: map[int]NetHandle{}, log: log}
	l.markModulePorts()
	if err := l.allocateNetsFromCells(); err != nil {
		return nil, err
	}
	if err := l.applyNetnames(); err != nil {
		return nil, err
	}
	if err := l.buildNodes(); err != nil {
		return nil, err
	}
	if err := l.resolveDriversAndSinks(); err != nil {
		return nil, err
	}

	return g, nil
}

// selectTopModule finds the single module carrying a truthy `top` attribute.
func selectTopModule(nl Netlist) (string, Module, error) {
	var foundName string
	var found Module
	count := 0

	names := make([]string, 0, len(nl.Modules))
	for name := range nl.Modules {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		m := nl.Modules[name]
		if m.IsTop() {
			foundName, found = name, m
			count++
		}
	}
	if count > 1 {
		return "", Module{}, xc2errs.New(xc2errs.KindMultipleTopLevelModules, "", "netlist has %d top-level modules, want exactly 1", count)
	}
	if count == 0 {
		return "", Module{}, xc2errs.New(xc2errs.KindNoTopLevelModule, "", "netlist has no top-level module")
	}
	return foundName, found, nil
}

// loader holds the working state for one LoadFromJSON call.
type loader struct {
	graph   *Graph
	module  Module
	log     xc2log.Logger

	// modulePorts is the set of yosys bit indices that belong to a
	// top-module port. These bits never get a separate allocated net: the
	// pad IS the IO cell (spec §4.1).
	modulePorts map[int]bool

	// netByBit maps an already-allocated yosys bit index to its NetHandle.
	netByBit map[int]NetHandle

	// nodeByCell records the NodeHandle built for each cell name, keyed in
	// the same sorted order cells were processed in.
	nodeByCell map[string]NodeHandle
}

func (l *loader) markModulePorts() {
	l.modulePorts = map[int]bool{}
	for _, port := range l.module.Ports {
		for _, b := range port.Bits {
			if b.IsNet {
				l.modulePorts[b.Net] = true
			}
		}
	}
}

// sortedCellNames returns cell names in sorted order, matching the
// determinism contract (spec §5: "cells and netnames are processed in
// sorted-key order").
func (l *loader) sortedCellNames() []string {
	names := make([]string, 0, len(l.module.Cells))
	for name := range l.module.Cells {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// allocateNetsFromCells walks every cell connection in sorted (cell,
// connection) order, allocating one net per previously-unseen bit index that
// is not a module-port bit.
func (l *loader) allocateNetsFromCells() error {
	for _, cellName := range l.sortedCellNames() {
		cell := l.module.Cells[cellName]

		connNames := make([]string, 0, len(cell.Connections))
		for cn := range cell.Connections {
			connNames = append(connNames, cn)
		}
		sort.Strings(connNames)

		for _, cn := range connNames {
			for _, b := range cell.Connections[cn] {
				if !b.IsNet {
					continue
				}
				if l.modulePorts[b.Net] {
					continue
				}
				if _, ok := l.netByBit[b.Net]; ok {
					continue
				}
				h := l.graph.Nets.Alloc(Net{})
				l.netByBit[b.Net] = h
			}
		}
	}
	return nil
}

// applyNetnames names existing nets (or allocates+names new ones for bits
// that appeared only in a netname record) in sorted netname order.
func (l *loader) applyNetnames() error {
	names := make([]string, 0, len(l.module.Netnames))
	for name := range l.module.Netnames {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		nn := l.module.Netnames[name]
		for _, b := range nn.Bits {
			if !b.IsNet {
				continue
			}
			if l.modulePorts[b.Net] {
				continue
			}
			h, ok := l.netByBit[b.Net]
			if !ok {
				h = l.graph.Nets.Alloc(Net{})
				l.netByBit[b.Net] = h
			}
			n := l.graph.Nets.GetPtr(h)
			if n.Name != "" && n.Name != name {
				l.log.V(1).Info("netname overwrites existing net name", "net", b.Net, "old", n.Name, "new", name)
			}
			n.Name = name
		}
	}
	return nil
}

// bitvalToNet resolves a BitVal to a NetHandle: a net index looks up an
// already-allocated net (or a module-port bit, which is not separately
// tracked and is an error if referenced here), "0"/"1" resolve to the two
// constant nets, "x"/"z" are illegal.
func (l *loader) bitvalToNet(entity string, b BitVal) (NetHandle, error) {
	if b.IsNet {
		if l.modulePorts[b.Net] {
			return 0, xc2errs.New(xc2errs.KindIllegalBitValue, entity, "bit %d refers to a module port bit directly, expected an IO cell connection", b.Net)
		}
		h, ok := l.netByBit[b.Net]
		if !ok {
			return 0, xc2errs.New(xc2errs.KindIllegalBitValue, entity, "bit %d was never allocated a net", b.Net)
		}
		return h, nil
	}
	switch b.Special {
	case Bit0:
		return l.graph.VssNet, nil
	case Bit1:
		return l.graph.VddNet, nil
	default:
		return 0, xc2errs.New(xc2errs.KindIllegalBitValue, entity, "unconstrained bit value %q is not legal here", b.Special)
	}
}

var locRe = regexp.MustCompile(`^FB(\d+)(?:_(P)?(\d+))?$`)

// parseLocation implements the "FBn" / "FBn_m" / "FBn_Pm" LOC grammar
// (spec §4.1). The source grammar is 1-based for FB and for a bare
// macrocell index; a "_Pm" P-term slot index is already 0-based.
func parseLocation(s string) (*RequestedLocation, error) {
	m := locRe.FindStringSubmatch(s)
	if m == nil {
		return nil, xc2errs.New(xc2errs.KindMalformedLOC, s, "does not match FBn / FBn_m / FBn_Pm")
	}
	fb, err := strconv.Atoi(m[1])
	if err != nil || fb < 1 {
		return nil, xc2errs.New(xc2errs.KindMalformedLOC, s, "illegal FB number")
	}
	loc := &RequestedLocation{FB: fb - 1}
	if m[3] == "" {
		return loc, nil
	}
	idx, err := strconv.Atoi(m[3])
	if err != nil {
		return nil, xc2errs.New(xc2errs.KindMalformedLOC, s, "illegal index")
	}
	if m[2] == "P" {
		loc.IsPTerm = true
		loc.Index = &idx
	} else {
		mc := idx - 1
		loc.Index = &mc
	}
	return loc, nil
}

func (l *loader) cellLocation(cellName string, cell Cell) (*RequestedLocation, error) {
	v, ok := cell.Attributes["LOC"]
	if !ok {
		return nil, nil
	}
	s, ok := v.ToStringIfString()
	if !ok {
		return nil, xc2errs.New(xc2errs.KindMalformedLOC, cellName, "LOC attribute is not a string")
	}
	return parseLocation(s)
}
