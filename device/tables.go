package device

// FuseLayout is the per-device physical/logical fuse geometry consumed by
// the bitstream assembler (spec §4.6, §6). The logical half (FBLogicalBase,
// GlobalLogicalBase, LogicalFuseCount) is transcribed verbatim from the
// vendor's own fusemap tables (see fbFuseIdx/gckFuseIdx/totalLogicalFuseCount
// below) for all eight devices, so logical fuse offsets are bit-exact. The
// physical (crbit) half is still a column-band approximation -- the real
// per-device X/Y fuse maps aren't in the reference pack -- documented on
// LayoutFor below.
type FuseLayout struct {
	Device Device

	// Logical (JEDEC) layout.
	LogicalFuseCount int
	FBLogicalBase    []int // one entry per FB: offset of FB's first logical fuse
	GlobalLogicalBase int  // offset of the device-wide global-net fuse block

	// Physical (crbit) layout.
	PhysicalWidth  int
	PhysicalHeight int

	// McRowOffset gives, for the "large-IOB" physical layout, the row
	// offset within an FB's physical block for each of the 16 macrocells
	// (spec §6). SmallIO devices do not use this table.
	McRowOffset [MacrocellsPerFB]int
}

// MCFieldBits is the per-macrocell field width this assembler packs
// (bitstream.packMacrocell): 6 three-bit SourceRefKind fields (OE, clock,
// set, reset, CE, PTC) + 12 one-bit flags + a 2-bit register-mode field = 32
// bits, identical for both IOB arches in this implementation (the real
// large-IOB devices carry a couple of vendor-specific extra fields this
// spec does not enumerate; see DESIGN.md).
const MCFieldBits = 6*3 + 12 + 2

const (
	andArrayBits = PTermsPerFB * InputsPerAndTerm * 2 // true+complement per input
	orArrayBits  = PTermsPerFB * MacrocellsPerFB
	ziaSelBits   = ZIARowsPerFB * 3 // ~3 bits to select among <=8 legal sources
	mcBitsSmall  = MacrocellsPerFB * MCFieldBits
	mcBitsLarge  = MacrocellsPerFB * MCFieldBits
)

// perFBLogicalBits is the number of bits bitstream.Assemble actually writes
// into each FB's block: the AND array, OR array, ZIA row selectors and the
// 16 macrocells' fixed-width fields. It is always less than the real
// per-FB stride in fbFuseIdx below -- the remainder is the vendor's
// reserved/undocumented per-FB fuses, which this assembler leaves zero.
func perFBLogicalBits(arch IOArch) int {
	if arch == LargeIO {
		return andArrayBits + orArrayBits + ziaSelBits + mcBitsLarge
	}
	return andArrayBits + orArrayBits + ziaSelBits + mcBitsSmall
}

// fbFuseIdx is fb_fuse_idx transcribed from
// original_source/src/xc2bit/src/fusemap_logical.rs:31: the exact logical
// fuse offset of every FB of every supported device, as laid out by the
// real JEDEC fusemap. FB0 is always 0; later FBs are not a uniform stride
// apart (the per-FB budget differs by device), so this table is transcribed
// rather than derived.
var fbFuseIdx = map[Device][]int{
	XC2C32:  {0, 6128},
	XC2C32A: {0, 6128},
	XC2C64:  {0, 6448, 12896, 19344},
	XC2C64A: {0, 6448, 12896, 19344},
	XC2C128: {0, 6908, 13816, 20737, 27658, 34579, 41487, 48408},
	XC2C256: {
		0, 7695, 15390, 23085, 30780, 38475, 46170, 53878,
		61586, 69294, 77002, 84710, 92418, 100113, 107808, 115516,
	},
	XC2C384: {
		0, 8722, 17444, 26166, 34888, 43610, 52332, 61054,
		69776, 78498, 87220, 95942, 104664, 113386, 122108, 130830,
		139552, 148274, 156996, 165718, 174440, 183162, 191884, 200606,
	},
	XC2C512: {
		0, 9256, 18512, 27781, 37037, 46306, 55562, 64831,
		74087, 83343, 92599, 101855, 111124, 120380, 129649, 138905,
		148174, 157443, 166699, 175968, 185224, 194493, 203749, 213018,
		222274, 231530, 240799, 250055, 259324, 268580, 277849, 287105,
	},
}

// gckFuseIdx is gck_fuse_idx transcribed from the same file: the logical
// offset of the first device-wide global-net fuse, immediately following
// the last FB's block.
var gckFuseIdx = map[Device]int{
	XC2C32:  12256,
	XC2C32A: 12256,
	XC2C64:  25792,
	XC2C64A: 25792,
	XC2C128: 55316,
	XC2C256: 123224,
	XC2C384: 209328,
	XC2C512: 296374,
}

// totalLogicalFuseCount is total_logical_fuse_count transcribed from the
// same file.
var totalLogicalFuseCount = map[Device]int{
	XC2C32:  12274,
	XC2C32A: 12278,
	XC2C64:  25808,
	XC2C64A: 25812,
	XC2C128: 55341,
	XC2C256: 123249,
	XC2C384: 209357,
	XC2C512: 296403,
}

var mcRowOffsetLarge = [MacrocellsPerFB]int{
	0, 2, 4, 6, 8, 10, 12, 14, 15, 13, 11, 9, 7, 5, 3, 1,
}

// LayoutFor builds the FuseLayout for d. Cheap enough to call per use; the
// assembler and the JEDEC parser each call it directly, and nothing caches
// the result.
//
// The physical width/height are still the two anchor devices' real crbit
// dimensions (XC2C32, XC2C512) linearly interpolated by FB count for the
// other six -- the reference pack does not carry per-device crbit X/Y
// tables, only the logical fusemap (see fbFuseIdx above), so fillPhysical's
// column-band placement remains a structural stand-in rather than the
// vendor's actual physical layout.
func LayoutFor(d Device) FuseLayout {
	f := FactsFor(d)

	layout := FuseLayout{
		Device:            d,
		FBLogicalBase:     append([]int(nil), fbFuseIdx[d]...),
		GlobalLogicalBase: gckFuseIdx[d],
		LogicalFuseCount:  totalLogicalFuseCount[d],
	}

	if f.IOArch == LargeIO {
		layout.McRowOffset = mcRowOffsetLarge
	} else {
		for i := range layout.McRowOffset {
			layout.McRowOffset[i] = i
		}
	}

	switch d {
	case XC2C32:
		layout.PhysicalWidth, layout.PhysicalHeight = 260, 50
	case XC2C512:
		layout.PhysicalWidth, layout.PhysicalHeight = 1980, 162
	default:
		// Linear interpolation between the two anchor devices by FB count,
		// truncated to whole columns and rows (approximation; see doc
		// comment above).
		loFB, hiFB := FactsFor(XC2C32).NumFBs, FactsFor(XC2C512).NumFBs
		loW, hiW := 260, 1980
		loH, hiH := 50, 162
		t := float64(f.NumFBs-loFB) / float64(hiFB-loFB)
		layout.PhysicalWidth = loW + int(t*float64(hiW-loW))
		layout.PhysicalHeight = loH + int(t*float64(hiH-loH))
	}

	return layout
}
