// Command xc2structuretest self-checks every device's fuse coordinate
// table (device.LayoutFor): every function-block logical fuse (the range
// below GlobalLogicalBase) must map to exactly one in-bounds physical (x,y)
// cell, and the physical cells no such fuse reaches are counted and
// reported as reserved. The global-net fuses are not checked. Grounded on
// xc2bit/src/bin/xc2structuretest.rs (original_source), which walks the
// device structure table print every node/wire/connection it finds; this
// version checks the same "every fuse accounted for" property the Rust
// tool's output makes visually inspectable, instead of printing the
// structure.
package main

import (
	"fmt"
	"os"

	"github.com/azonenberg/xc2par/device"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	devices := device.All()
	if len(args) == 1 {
		d, err := parseDeviceArg(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "xc2structuretest: %v\n", err)
			return 2
		}
		devices = []device.Device{d}
	} else if len(args) > 1 {
		fmt.Fprintf(os.Stderr, "usage: xc2structuretest [<device>]\n")
		return 2
	}

	exit := 0
	for _, d := range devices {
		if err := checkDevice(d); err != nil {
			fmt.Fprintf(os.Stderr, "xc2structuretest: %s: %v\n", d.String(), err)
			exit = 1
			continue
		}
		fmt.Printf("%s: ok\n", d.String())
	}
	return exit
}

func parseDeviceArg(name string) (device.Device, error) {
	for _, d := range device.All() {
		if d.String() == name {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unrecognized device %q", name)
}

// checkDevice mirrors bitstream.fillPhysical's column-band mapping to
// verify every function-block logical fuse reaches a distinct, in-bounds
// physical cell,
// and reports which physical cells no fuse ever reaches (reserved).
func checkDevice(d device.Device) error {
	f := device.FactsFor(d)
	layout := device.LayoutFor(d)

	if len(layout.FBLogicalBase) != f.NumFBs {
		return fmt.Errorf("FBLogicalBase has %d entries, want %d (NumFBs)", len(layout.FBLogicalBase), f.NumFBs)
	}
	for fb := 1; fb < f.NumFBs; fb++ {
		if layout.FBLogicalBase[fb] <= layout.FBLogicalBase[fb-1] {
			return fmt.Errorf("FBLogicalBase not strictly increasing at FB %d", fb)
		}
	}
	if f.NumFBs > 0 && layout.FBLogicalBase[0] != 0 {
		return fmt.Errorf("FBLogicalBase[0] = %d, want 0", layout.FBLogicalBase[0])
	}

	if layout.PhysicalWidth == 0 || layout.PhysicalHeight == 0 {
		return fmt.Errorf("physical dimensions are zero (%dx%d)", layout.PhysicalWidth, layout.PhysicalHeight)
	}

	colWidth := layout.PhysicalWidth / f.NumFBs
	if colWidth == 0 {
		return fmt.Errorf("physical width %d too small for %d FBs", layout.PhysicalWidth, f.NumFBs)
	}

	reached := make(map[[2]int]bool)
	outOfBounds := 0
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
				outOfBounds++
				continue
			}
			key := [2]int{x, y}
			if reached[key] {
				return fmt.Errorf("physical cell (%d,%d) reached by more than one logical fuse", x, y)
			}
			reached[key] = true
		}
	}
	if outOfBounds > 0 {
		return fmt.Errorf("%d logical fuse(s) map outside the physical array", outOfBounds)
	}

	total := layout.PhysicalWidth * layout.PhysicalHeight
	reserved := total - len(reached)
	fmt.Printf("%s: %d/%d logical fuses mapped, %d physical cell(s) reserved/unused\n",
		d.String(), len(reached), layout.LogicalFuseCount, reserved)
	return nil
}
