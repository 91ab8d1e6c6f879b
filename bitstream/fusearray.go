// Package bitstream implements stages G and H of the pipeline (spec §4.6,
// §4.7, §4.8): it assembles a canonicalized output graph into a logical
// fuse vector and a physical fuse array, and frames both as JEDEC and
// crbit text. Grounded on xc2bit/src/bitstream.rs and xc2bit/src/fusemap.rs
// (original_source) for the bit-ordering and framing conventions, and on
// the teacher's byte-oriented wire codec style (sarchlab-zeonica's
// packet/flit encoders) for the writer/reader shape.
package bitstream

import "github.com/azonenberg/xc2par/device"

// LogicalFuses is the 1-D fuse vector indexed by the offsets device.FuseLayout
// computes (spec §3 "Logical fuse vector").
type LogicalFuses struct {
	bits []bool
}

// NewLogicalFuses allocates a zeroed vector of n fuses.
func NewLogicalFuses(n int) *LogicalFuses {
	return &LogicalFuses{bits: make([]bool, n)}
}

func (f *LogicalFuses) Len() int { return len(f.bits) }

func (f *LogicalFuses) Set(i int, v bool) { f.bits[i] = v }

func (f *LogicalFuses) Get(i int) bool { return f.bits[i] }

// FuseArray is the 2-D physical fuse bitmap (spec §3 "Fuse array
// (physical)"), computer-graphics coordinates with origin top-left.
type FuseArray struct {
	w, h int
	bits []bool
}

// NewFuseArray allocates a zeroed w x h array.
func NewFuseArray(w, h int) *FuseArray {
	return &FuseArray{w: w, h: h, bits: make([]bool, w*h)}
}

func (a *FuseArray) Width() int  { return a.w }
func (a *FuseArray) Height() int { return a.h }

func (a *FuseArray) Set(x, y int, v bool) { a.bits[y*a.w+x] = v }

func (a *FuseArray) Get(x, y int) bool { return a.bits[y*a.w+x] }

// Bitstream is the pair of equivalent fuse representations stage G produces
// plus the device they describe, consumed directly by the JEDEC/crbit
// framers.
type Bitstream struct {
	Device   device.Device
	Logical  *LogicalFuses
	Physical *FuseArray
}
