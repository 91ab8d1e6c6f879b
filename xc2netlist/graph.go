// Package xc2netlist implements stage A of the pipeline (spec §4.1): it
// parses the synthesis JSON into a typed intermediate node/net graph,
// enforcing a single driver per net, resolving the two constant nets, and
// attaching LOC annotations.
package xc2netlist

import "github.com/azonenberg/xc2par/pool"

// NetHandle names a Net inside a Graph's net pool.
type NetHandle = pool.Handle[Net]

// NodeHandle names a Node inside a Graph's node pool.
type NodeHandle = pool.Handle[Node]

// Net is a directed hyperedge: one driver and zero or more sinks (spec §3
// "Net"). The two process-wide constants have no driving node; they are
// marked IsConst, and HasDriver is set on them too, so no cell output can
// also claim them.
type Net struct {
	Name      string
	IsConst   bool // true for the two reserved Vdd/Vss handles
	ConstHigh bool // valid when IsConst: true=Vdd, false=Vss
	HasDriver bool
	Driver    NodeHandle
	Sinks     []NodeHandle
}

// RequestedLocation is a user LOC constraint attached to an intermediate
// node (spec §3). Index is nil for a bare "FBn" location; otherwise it is
// a macrocell index (0-based) or, when IsPTerm, a P-term slot index.
type RequestedLocation struct {
	FB      int
	Index   *int
	IsPTerm bool
}

// NodeKind is the closed set of intermediate node variants (spec §3
// "Intermediate node"). Decoding never falls back to a structural test;
// every consumer switches exhaustively over Kind.
type NodeKind int

const (
	NodeAndTerm NodeKind = iota
	NodeOrTerm
	NodeXor
	NodeRegister
	NodeIOBuf
	NodeInBuf
	NodeBufgClk
	NodeBufgGTS
	NodeBufgGSR
)

// RegisterMode is the closed set of register behaviors (spec §3).
type RegisterMode int

const (
	RegDFF RegisterMode = iota
	RegLatch
	RegTFF
	RegDFFCE
)

// AndTermData is the AND-term variant payload.
type AndTermData struct {
	TrueInputs []NetHandle
	CompInputs []NetHandle
	Output     NetHandle
}

// OrTermData is the OR-term variant payload.
type OrTermData struct {
	Inputs []NetHandle
	Output NetHandle
}

// XorData is the XOR variant payload.
type XorData struct {
	OrInput    *NetHandle
	PTermInput *NetHandle
	Invert     bool
	Output     NetHandle
}

// RegisterData is the register variant payload.
type RegisterData struct {
	Mode        RegisterMode
	ClockInvert bool
	DDR         bool
	InitHigh    bool
	Set         *NetHandle
	Reset       *NetHandle
	CE          *NetHandle
	D           NetHandle
	Clock       NetHandle
	Output      NetHandle
}

// IOBufData is the bidirectional IO buffer variant payload.
type IOBufData struct {
	Input    *NetHandle
	OE       *NetHandle
	Output   *NetHandle
	Schmitt  bool
	Term     bool
	Slew     bool
	DataGate bool
	OpenDrain bool
}

// InBufData is the input-only buffer variant payload.
type InBufData struct {
	Output   NetHandle
	Schmitt  bool
	Term     bool
	DataGate bool
}

// BufgClkData is the global clock buffer variant payload.
type BufgClkData struct {
	Input, Output NetHandle
}

// BufgGTSData is the global tristate buffer variant payload.
type BufgGTSData struct {
	Input, Output NetHandle
	Invert        bool
}

// BufgGSRData is the global set/reset buffer variant payload.
type BufgGSRData struct {
	Input, Output NetHandle
	Invert        bool
}

// Node is one intermediate netlist primitive: a fixed tag plus exactly one
// populated payload field, matching spec §9's "tag-free data
// classification... tagged sum types with a fixed, documented case set".
type Node struct {
	Name string
	Loc  *RequestedLocation
	Kind NodeKind

	AndTerm  AndTermData
	OrTerm   OrTermData
	Xor      XorData
	Register RegisterData
	IOBuf    IOBufData
	InBuf    InBufData
	BufgClk  BufgClkData
	BufgGTS  BufgGTSData
	BufgGSR  BufgGSRData
}

// Graph is the output of stage A: a typed node/net graph with the two
// constant nets pre-allocated.
type Graph struct {
	Nets  pool.Pool[Net]
	Nodes pool.Pool[Node]

	VddNet NetHandle
	VssNet NetHandle
}

// NewGraph allocates an empty Graph with its two constant nets.
func NewGraph() *Graph {
	g := &Graph{}
	g.VddNet = g.Nets.Alloc(Net{Name: "$VDD", IsConst: true, ConstHigh: true, HasDriver: true})
	g.VssNet = g.Nets.Alloc(Net{Name: "$VSS", IsConst: true, ConstHigh: false, HasDriver: true})
	return g
}
