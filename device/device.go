// Package device holds the closed set of eight Coolrunner-II device
// variants this toolchain targets, their part-name grammar (spec §6), and
// the per-device physical/logical layout tables consumed by the placer,
// the ZIA router, and the bitstream assembler.
package device

import "fmt"

// Device is one of the eight supported Coolrunner-II parts.
type Device int

const (
	XC2C32 Device = iota
	XC2C32A
	XC2C64
	XC2C64A
	XC2C128
	XC2C256
	XC2C384
	XC2C512
)

var allDevices = [...]Device{XC2C32, XC2C32A, XC2C64, XC2C64A, XC2C128, XC2C256, XC2C384, XC2C512}

func (d Device) String() string {
	switch d {
	case XC2C32:
		return "XC2C32"
	case XC2C32A:
		return "XC2C32A"
	case XC2C64:
		return "XC2C64"
	case XC2C64A:
		return "XC2C64A"
	case XC2C128:
		return "XC2C128"
	case XC2C256:
		return "XC2C256"
	case XC2C384:
		return "XC2C384"
	case XC2C512:
		return "XC2C512"
	default:
		return fmt.Sprintf("Device(%d)", int(d))
	}
}

// IOArch distinguishes the two macrocell/IOB pinout styles named in spec §3
// ("Placement location" / device-specific dense-to-sparse map).
type IOArch int

const (
	// SmallIO is used by the 32/64-macrocell devices.
	SmallIO IOArch = iota
	// LargeIO is used by the 128-macrocell-and-larger devices.
	LargeIO
)

// Facts is the set of device-wide constants that everything else
// (placement legality, ZIA table selection, fuse layout) is derived from.
type Facts struct {
	Device        Device
	Macrocells    int // total macrocells across the device
	NumFBs        int // Macrocells / 16
	IOArch        IOArch
	HasClockDiv   bool // clock-divider bits exist on 128-macrocell-and-larger devices
	DedicatedInIx int  // number of dedicated-input-only pins (not also IOB pads)
}

var facts = map[Device]Facts{
	XC2C32:   {XC2C32, 32, 2, SmallIO, false, 1},
	XC2C32A:  {XC2C32A, 32, 2, SmallIO, false, 1},
	XC2C64:   {XC2C64, 64, 4, SmallIO, false, 1},
	XC2C64A:  {XC2C64A, 64, 4, SmallIO, false, 1},
	XC2C128:  {XC2C128, 128, 8, LargeIO, true, 1},
	XC2C256:  {XC2C256, 256, 16, LargeIO, true, 1},
	XC2C384:  {XC2C384, 384, 24, LargeIO, true, 1},
	XC2C512:  {XC2C512, 512, 32, LargeIO, true, 1},
}

// FactsFor returns the device-wide constants for d.
func FactsFor(d Device) Facts { return facts[d] }

// All returns every supported device, in the canonical order used for
// deterministic iteration.
func All() []Device {
	out := make([]Device, len(allDevices))
	copy(out, allDevices[:])
	return out
}

const (
	// MacrocellsPerFB is fixed across the whole family (spec glossary: FB).
	MacrocellsPerFB = 16
	// PTermsPerFB is fixed across the whole family.
	PTermsPerFB = 56
	// ZIARowsPerFB is fixed across the whole family (spec §3 "ZIA row piece").
	ZIARowsPerFB = 40
	// InputsPerAndTerm is the width of a P-term (spec glossary).
	InputsPerAndTerm = ZIARowsPerFB
)
