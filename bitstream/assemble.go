package bitstream

import (
	"github.com/azonenberg/xc2par/device"
	"github.com/azonenberg/xc2par/outgraph"
	"github.com/azonenberg/xc2par/xc2log"
)

// cursor writes sequential fields into a LogicalFuses vector starting at a
// base offset, tracking how many bits have been consumed.
type cursor struct {
	f   *LogicalFuses
	pos int
}

func (c *cursor) writeBool(v bool) {
	c.f.Set(c.pos, v)
	c.pos++
}

// writeBits writes the low `width` bits of v, MSB first.
func (c *cursor) writeBits(v, width int) {
	for i := width - 1; i >= 0; i-- {
		c.f.Set(c.pos, (v>>uint(i))&1 != 0)
		c.pos++
	}
}

// Assemble runs stages G/H's logical half (spec §4.6): it walks every FB in
// a fixed order (ZIA rows, then AND array, then OR array, then each
// macrocell's fields in a fixed order) and writes the corresponding bits of
// the logical fuse vector, then derives the physical array from the same
// decisions via the device's fuse layout.
func Assemble(g *outgraph.Graph, log xc2log.Logger) (*Bitstream, error) {
	log = xc2log.Stage(log, "bitstream")
	f := device.FactsFor(g.Device)
	layout := device.LayoutFor(g.Device)

	logical := NewLogicalFuses(layout.LogicalFuseCount)
	physical := NewFuseArray(layout.PhysicalWidth, layout.PhysicalHeight)

	for fb := 0; fb < f.NumFBs; fb++ {
		base := layout.FBLogicalBase[fb]
		c := &cursor{f: logical, pos: base}

		fbg := g.FBs[fb]
		for row := 0; row < device.ZIARowsPerFB; row++ {
			c.writeBits(fbg.ZIA[row].ChoiceIdx, 3)
		}

		for slot := 0; slot < device.PTermsPerFB; slot++ {
			at := fbg.PTerms[slot]
			trueSet, compSet := map[int]bool{}, map[int]bool{}
			if at != nil {
				for _, r := range at.TrueRows {
					trueSet[r] = true
				}
				for _, r := range at.CompRows {
					compSet[r] = true
				}
			}
			for row := 0; row < device.ZIARowsPerFB; row++ {
				c.writeBool(trueSet[row])
				c.writeBool(compSet[row])
			}
		}

		for slot := 0; slot < device.PTermsPerFB; slot++ {
			at := fbg.PTerms[slot]
			for mcIdx := 0; mcIdx < device.MacrocellsPerFB; mcIdx++ {
				used := false
				if mc := fbg.Macrocells[mcIdx]; mc != nil && at != nil {
					for _, s := range mc.OrSlots {
						if s == slot {
							used = true
							break
						}
					}
				}
				c.writeBool(used)
			}
		}

		for mcIdx := 0; mcIdx < device.MacrocellsPerFB; mcIdx++ {
			packMacrocell(c, fbg.Macrocells[mcIdx])
		}

		if c.pos-base != device.MCFieldBits*device.MacrocellsPerFB+
			device.ZIARowsPerFB*3+device.PTermsPerFB*device.ZIARowsPerFB*2+device.PTermsPerFB*device.MacrocellsPerFB {
			// Defensive only: the per-field widths above are a closed-form
			// decomposition of the FB bit budget (device.tables.go); a
			// mismatch here means the two fell out of sync.
			panic("bitstream: per-FB bit budget mismatch")
		}
	}

	fillPhysical(g.Device, logical, layout, physical)

	log.V(1).Info("bitstream assembled", "logical_bits", logical.Len(), "physical", layout.PhysicalWidth, layout.PhysicalHeight)
	return &Bitstream{Device: g.Device, Logical: logical, Physical: physical}, nil
}

// packMacrocell writes one macrocell's 32-bit field (device.MCFieldBits) in
// fixed order; an absent macrocell (nil, meaning the site is unused) writes
// all zero bits.
func packMacrocell(c *cursor, mc *outgraph.Macrocell) {
	if mc == nil {
		c.pos += device.MCFieldBits
		return
	}
	c.writeBool(mc.IOPresent)
	c.writeBool(mc.IsOutput)
	c.writeBool(mc.Schmitt)
	c.writeBool(mc.Term)
	c.writeBool(mc.Slew)
	c.writeBool(mc.DataGate)
	c.writeBool(mc.RegPresent)
	c.writeBool(mc.ClockInvert)
	c.writeBool(mc.DDR)
	c.writeBool(mc.InitHigh)
	c.writeBool(mc.XorPresent)
	c.writeBool(mc.XorInvert)
	c.writeBits(mc.RegMode, 2)
	c.writeBits(int(mc.OE.Kind), 3)
	c.writeBits(int(mc.Clock.Kind), 3)
	c.writeBits(int(mc.Set.Kind), 3)
	c.writeBits(int(mc.Reset.Kind), 3)
	c.writeBits(int(mc.CE.Kind), 3)
	c.writeBits(int(mc.PTC.Kind), 3)
}

// fillPhysical derives the physical fuse array from the same logical
// decisions. It lays each FB's logical fuses (from its base up to the next
// FB's base, or up to GlobalLogicalBase for the last FB) out row by row in a
// contiguous column band of width layout.PhysicalWidth/NumFBs, which is a
// structural stand-in for the vendor's actual column assignment (see
// DESIGN.md). layout.McRowOffset is not applied, the global-net fuses are
// not placed, and fuses that fall outside the array are dropped.
func fillPhysical(d device.Device, logical *LogicalFuses, layout device.FuseLayout, physical *FuseArray) {
	f := device.FactsFor(d)
	if f.NumFBs == 0 || layout.PhysicalWidth == 0 {
		return
	}
	colWidth := layout.PhysicalWidth / f.NumFBs
	if colWidth == 0 {
		colWidth = 1
	}

	for fb := 0; fb < f.NumFBs; fb++ {
		base := layout.FBLogicalBase[fb]
		next := layout.GlobalLogicalBase
		if fb+1 < f.NumFBs {
			next = layout.FBLogicalBase[fb+1]
		}
		count := next - base
		x0 := fb * colWidth
		for i := 0; i < count; i++ {
			x := x0 + i%colWidth
			y := i / colWidth
			if x >= layout.PhysicalWidth || y >= layout.PhysicalHeight {
				continue
			}
			physical.Set(x, y, logical.Get(base+i))
		}
	}
}
