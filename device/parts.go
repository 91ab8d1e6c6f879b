package device

import (
	"regexp"
	"strconv"

	"github.com/azonenberg/xc2par/xc2errs"
)

// Speed is a device's speed grade, e.g. 6 in "XC2C256-6TQ144".
type Speed int

// Package is one of the package codes named in spec §6.
type Package string

const (
	PC44   Package = "PC44"
	QFG32  Package = "QFG32"
	VQ44   Package = "VQ44"
	QFG48  Package = "QFG48"
	CP56   Package = "CP56"
	VQ100  Package = "VQ100"
	CP132  Package = "CP132"
	TQ144  Package = "TQ144"
	PQ208  Package = "PQ208"
	FT256  Package = "FT256"
	FG324  Package = "FG324"
)

// PartSpec is the fully-resolved (device, speed, package) triple the CLI's
// -p/--part flag parses into (spec §6).
type PartSpec struct {
	Device  Device
	Speed   Speed
	Package Package
}

var partNameRe = regexp.MustCompile(`^(XC2C32A|XC2C32|XC2C64A|XC2C64|XC2C128|XC2C256|XC2C384|XC2C512)-(4|5|6|7|10)(PC44|QFG32|VQ44|QFG48|CP56|VQ100|CP132|TQ144|PQ208|FT256|FG324)$`)

var deviceByName = map[string]Device{
	"XC2C32": XC2C32, "XC2C32A": XC2C32A,
	"XC2C64": XC2C64, "XC2C64A": XC2C64A,
	"XC2C128": XC2C128, "XC2C256": XC2C256,
	"XC2C384": XC2C384, "XC2C512": XC2C512,
}

// legalCombos enumerates, per device, the speed grades and packages the
// vendor actually sells that device in (spec §6: "per-device restrictions,
// e.g. XC2C128 only 6/7 and only VQ100/CP132/TQ144").
var legalCombos = map[Device]struct {
	Speeds   []Speed
	Packages []Package
}{
	XC2C32:  {[]Speed{4, 6}, []Package{PC44, QFG32, VQ44}},
	XC2C32A: {[]Speed{4, 6}, []Package{PC44, QFG32, VQ44, CP56}},
	XC2C64:  {[]Speed{5, 7, 10}, []Package{PC44, VQ44, QFG48, CP56}},
	XC2C64A: {[]Speed{5, 7, 10}, []Package{PC44, VQ44, QFG48, CP56}},
	XC2C128: {[]Speed{6, 7}, []Package{VQ100, CP132, TQ144}},
	XC2C256: {[]Speed{6, 7}, []Package{VQ100, CP132, TQ144, PQ208, FT256, FG324}},
	XC2C384: {[]Speed{7, 10}, []Package{TQ144, PQ208, FT256, FG324}},
	XC2C512: {[]Speed{7, 10}, []Package{PQ208, FT256, FG324}},
}

// ParsePartName parses a `<device>-<speed><package>` string (e.g.
// "XC2C256-7TQ144") into a PartSpec, and rejects any combination not in
// the closed legal-combination table of spec §6.
func ParsePartName(s string) (PartSpec, error) {
	m := partNameRe.FindStringSubmatch(s)
	if m == nil {
		return PartSpec{}, xc2errs.New(xc2errs.KindBadDeviceName, s, "does not match <device>-<speed><package> grammar")
	}
	dev, ok := deviceByName[m[1]]
	if !ok {
		return PartSpec{}, xc2errs.New(xc2errs.KindBadDeviceName, s, "unknown device %q", m[1])
	}
	speedN, err := strconv.Atoi(m[2])
	if err != nil {
		return PartSpec{}, xc2errs.New(xc2errs.KindNumericParse, s, "speed grade: %v", err)
	}
	spec := PartSpec{Device: dev, Speed: Speed(speedN), Package: Package(m[3])}
	if err := spec.Validate(); err != nil {
		return PartSpec{}, err
	}
	return spec, nil
}

// Validate rejects (device, speed, package) triples outside the legal
// combination table, even if each component is individually well-formed.
func (p PartSpec) Validate() error {
	combo, ok := legalCombos[p.Device]
	if !ok {
		return xc2errs.New(xc2errs.KindBadDeviceName, p.Device.String(), "unknown device")
	}
	speedOK := false
	for _, s := range combo.Speeds {
		if s == p.Speed {
			speedOK = true
			break
		}
	}
	if !speedOK {
		return xc2errs.New(xc2errs.KindBadDeviceName, p.Device.String(), "speed grade %d is not offered for this device", p.Speed)
	}
	pkgOK := false
	for _, pk := range combo.Packages {
		if pk == p.Package {
			pkgOK = true
			break
		}
	}
	if !pkgOK {
		return xc2errs.New(xc2errs.KindBadDeviceName, p.Device.String(), "package %s is not offered for this device", p.Package)
	}
	return nil
}

func (p PartSpec) String() string {
	return p.Device.String() + "-" + strconv.Itoa(int(p.Speed)) + string(p.Package)
}
