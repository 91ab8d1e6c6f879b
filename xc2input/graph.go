// Package xc2input implements stage C of the pipeline (spec §4.3): it
// consumes the gathered anchor sequence from xc2gather and produces the
// PAR-ready input graph of macrocells, P-terms, and global-buffer records,
// performing the connectivity sanity checks the placer relies on.
// Grounded on xc2par/src/netlist.rs's InputGraph construction
// (original_source).
package xc2input

import (
	"github.com/azonenberg/xc2par/pool"
	"github.com/azonenberg/xc2par/xc2errs"
	"github.com/azonenberg/xc2par/xc2netlist"
)

// MacrocellHandle names a Macrocell in a Graph's macrocell pool.
type MacrocellHandle = pool.Handle[Macrocell]

// PTermHandle names a PTerm in a Graph's P-term pool.
type PTermHandle = pool.Handle[PTerm]

// MacrocellType classifies a macrocell by which sub-records are present and
// whether its IO side drives a pad or reads one (spec §3).
type MacrocellType int

const (
	PinOutput MacrocellType = iota
	PinInputUnreg
	PinInputReg
	BuriedComb
	BuriedReg
)

func (t MacrocellType) String() string {
	switch t {
	case PinOutput:
		return "PinOutput"
	case PinInputUnreg:
		return "PinInputUnreg"
	case PinInputReg:
		return "PinInputReg"
	case BuriedComb:
		return "BuriedComb"
	case BuriedReg:
		return "BuriedReg"
	default:
		return "?"
	}
}

// FeedbackKind names which of a macrocell's three ZIA feedback paths a
// P-term input reads (spec §3 Input P-term).
type FeedbackKind int

const (
	FeedbackPin FeedbackKind = iota
	FeedbackXor
	FeedbackReg
)

// PTermInputRef is one literal of a P-term.
type PTermInputRef struct {
	Kind      FeedbackKind
	Macrocell MacrocellHandle
}

// PTerm is one input product term: two disjoint, duplicate-free literal
// lists (spec §3 Input P-term, §8 property 3).
type PTerm struct {
	Name       string
	Loc        *xc2netlist.RequestedLocation
	InputsTrue []PTermInputRef
	InputsComp []PTermInputRef
}

// GlobalBufferKind is the closed set of global low-skew networks.
type GlobalBufferKind int

const (
	GlobalClock GlobalBufferKind = iota
	GlobalTristate
	GlobalSetReset
)

// GlobalBuffer is one GCK/GTS/GSR record; its source is always an IO
// macrocell (spec §3 Global-buffer records).
type GlobalBuffer struct {
	Kind   GlobalBufferKind
	Invert bool
	Source MacrocellHandle
}

// SourceRefKind is the closed set of places a register/IOB control input
// can legally come from (spec §4.3: "Clock inputs must resolve to either a
// P-term or a GCK buffer; ...").
type SourceRefKind int

const (
	SourceNone SourceRefKind = iota
	SourceTiedLow
	SourcePTerm
	SourceGlobal
	SourceOpenDrain
)

// SourceRef names the resolved source of a control input.
type SourceRef struct {
	Kind   SourceRefKind
	PTerm  PTermHandle
	Global pool.Handle[GlobalBuffer]
}

// IOBits is the IO sub-record of a macrocell (spec §3 Input macrocell).
type IOBits struct {
	Present  bool
	IsOutput bool // true when the pad is driven (IOBUFE.Input connected)
	OE       SourceRef
	Schmitt  bool
	Term     bool
	Slew     bool
	DataGate bool
}

// RegBits is the register sub-record of a macrocell.
type RegBits struct {
	Present     bool
	Mode        xc2netlist.RegisterMode
	ClockInvert bool
	DDR         bool
	InitHigh    bool
	Clock       SourceRef
	Set         SourceRef
	Reset       SourceRef
	CE          SourceRef
}

// XorBits is the XOR sub-record of a macrocell.
type XorBits struct {
	Present bool
	OrTerms []PTermHandle
	PTC     SourceRef // SourceNone, SourceTiedLow (folded away), or SourcePTerm
	Invert  bool
}

// Macrocell is one canonical (IO, REG, XOR) grouping (spec §3 Input
// macrocell).
type Macrocell struct {
	Name string
	Loc  *xc2netlist.RequestedLocation
	Type MacrocellType

	IO  IOBits
	Reg RegBits
	Xor XorBits

	IOFeedbackUsed  bool
	RegFeedbackUsed bool
	XorFeedbackUsed bool
}

// FeedbackCount returns how many of the three feedback paths are in use
// (spec §8 property 2: at most two may be true).
func (m *Macrocell) FeedbackCount() int {
	n := 0
	if m.IOFeedbackUsed {
		n++
	}
	if m.RegFeedbackUsed {
		n++
	}
	if m.XorFeedbackUsed {
		n++
	}
	return n
}

// Graph is the PAR-ready input graph produced by stage C.
type Graph struct {
	Macrocells pool.Pool[Macrocell]
	PTerms     pool.Pool[PTerm]
	Globals    pool.Pool[GlobalBuffer]
}

// Equivalent reports whether two P-terms compute the same function: the
// spec's equality predicate ignores name and LOC and compares only the
// unordered pair of input-literal sets (spec §9 "Duplication instead of
// fanout sharing"), used by the placer to coalesce duplicated P-terms back
// onto a shared slot.
func Equivalent(a, b *PTerm) bool {
	return sameRefSet(a.InputsTrue, b.InputsTrue) && sameRefSet(a.InputsComp, b.InputsComp)
}

func sameRefSet(a, b []PTermInputRef) bool {
	if len(a) != len(b) {
		return false
	}
	count := map[PTermInputRef]int{}
	for _, r := range a {
		count[r]++
	}
	for _, r := range b {
		count[r]--
	}
	for _, c := range count {
		if c != 0 {
			return false
		}
	}
	return true
}

// disjointAndUnique validates spec §8 property 3 for one freshly-built
// P-term.
func disjointAndUnique(entity string, trueSet, compSet []PTermInputRef) error {
	seen := map[PTermInputRef]bool{}
	for _, r := range trueSet {
		if seen[r] {
			return xc2errs.New(xc2errs.KindWrongPtermInputs, entity, "duplicate true input")
		}
		seen[r] = true
	}
	compSeen := map[PTermInputRef]bool{}
	for _, r := range compSet {
		if compSeen[r] {
			return xc2errs.New(xc2errs.KindWrongPtermInputs, entity, "duplicate complement input")
		}
		compSeen[r] = true
		if seen[r] {
			return xc2errs.New(xc2errs.KindWrongPtermInputs, entity, "input appears in both true and complement sets")
		}
	}
	return nil
}
