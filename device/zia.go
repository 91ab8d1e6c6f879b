package device

// ZIASourceKind enumerates the closed set of ZIA row piece variants from
// spec §3 ("ZIA row piece").
type ZIASourceKind int

const (
	ZIAZero ZIASourceKind = iota
	ZIAOne
	ZIAMacrocell
	ZIAIBuf
	ZIADedicatedInput
)

// ZIASource is one legal choice for a single ZIA row. Only Macrocell and
// IBuf carry payload (FB/FF or ibuf index); the others are singletons.
type ZIASource struct {
	Kind ZIASourceKind
	FB   int // valid when Kind == ZIAMacrocell
	FF   int // valid when Kind == ZIAMacrocell: macrocell index within FB
	IBuf int // valid when Kind == ZIAIBuf
}

func (s ZIASource) String() string {
	switch s.Kind {
	case ZIAZero:
		return "0"
	case ZIAOne:
		return "1"
	case ZIAMacrocell:
		return "FB" + itoa(s.FB) + "_MC" + itoa(s.FF)
	case ZIAIBuf:
		return "IBUF" + itoa(s.IBuf)
	case ZIADedicatedInput:
		return "DedicatedInput"
	default:
		return "?"
	}
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [12]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// ZIATable is the per-device, per-row set of legal ZIA source choices
// (spec §4.5: "between 6 and 8 choices exist... not symmetric across
// rows"). Index 0 is FB index, index 1 is row index 0..39.
type ZIATable [][ZIARowsPerFB][]ZIASource

// xc2c32ZIARows is the XC2C32's ZIA legal-source table, transcribed
// verbatim from ZIA_BIT_TO_CHOICE_32 in
// original_source/src/xc2bit/src/zia.rs:44 (a concrete 40x6 table of
// IBuf/Macrocell choices — the vendor never lists an explicit Zero/One/
// DedicatedInput entry in any of the 40 rows, and the router fills an
// unrouted row with that row's first listed choice rather than with one of
// those kinds). FB indices here are 0/1, the two function blocks of the base
// 2-FB unit every larger device's ZIA replicates per FB-pair (see
// BuildZIATable).
var xc2c32ZIARows = [ZIARowsPerFB][6]ZIASource{
	{{ZIAIBuf, 0, 0, 0}, {ZIAIBuf, 0, 0, 10}, {ZIAIBuf, 0, 0, 21}, {ZIAMacrocell, 0, 1, 0}, {ZIAMacrocell, 0, 13, 0}, {ZIAMacrocell, 1, 9, 0}},
	{{ZIAIBuf, 0, 0, 1}, {ZIAIBuf, 0, 0, 11}, {ZIAIBuf, 0, 0, 22}, {ZIAMacrocell, 0, 8, 0}, {ZIAMacrocell, 0, 15, 0}, {ZIAMacrocell, 1, 12, 0}},
	{{ZIAIBuf, 0, 0, 2}, {ZIAIBuf, 0, 0, 12}, {ZIAIBuf, 0, 0, 29}, {ZIAMacrocell, 0, 2, 0}, {ZIAMacrocell, 1, 4, 0}, {ZIAMacrocell, 1, 11, 0}},
	{{ZIAIBuf, 0, 0, 3}, {ZIAIBuf, 0, 0, 13}, {ZIAIBuf, 0, 0, 25}, {ZIAMacrocell, 0, 9, 0}, {ZIAMacrocell, 0, 14, 0}, {ZIAMacrocell, 1, 6, 0}},
	{{ZIAIBuf, 0, 0, 4}, {ZIAIBuf, 0, 0, 14}, {ZIAIBuf, 0, 0, 27}, {ZIAMacrocell, 0, 5, 0}, {ZIAMacrocell, 0, 11, 0}, {ZIAMacrocell, 1, 10, 0}},
	{{ZIAIBuf, 0, 0, 5}, {ZIAIBuf, 0, 0, 15}, {ZIAIBuf, 0, 0, 30}, {ZIAMacrocell, 0, 7, 0}, {ZIAMacrocell, 1, 1, 0}, {ZIAMacrocell, 1, 7, 0}},
	{{ZIAIBuf, 0, 0, 6}, {ZIAIBuf, 0, 0, 32}, {ZIAIBuf, 0, 0, 20}, {ZIAMacrocell, 0, 0, 0}, {ZIAMacrocell, 1, 3, 0}, {ZIAMacrocell, 1, 13, 0}},
	{{ZIAIBuf, 0, 0, 7}, {ZIAIBuf, 0, 0, 16}, {ZIAIBuf, 0, 0, 26}, {ZIAIBuf, 0, 0, 31}, {ZIAMacrocell, 0, 12, 0}, {ZIAMacrocell, 1, 15, 0}},
	{{ZIAIBuf, 0, 0, 8}, {ZIAIBuf, 0, 0, 17}, {ZIAIBuf, 0, 0, 24}, {ZIAMacrocell, 0, 6, 0}, {ZIAMacrocell, 0, 10, 0}, {ZIAMacrocell, 1, 8, 0}},
	{{ZIAIBuf, 0, 0, 9}, {ZIAIBuf, 0, 0, 18}, {ZIAIBuf, 0, 0, 23}, {ZIAMacrocell, 0, 4, 0}, {ZIAMacrocell, 1, 2, 0}, {ZIAMacrocell, 1, 5, 0}},
	{{ZIAIBuf, 0, 0, 7}, {ZIAIBuf, 0, 0, 19}, {ZIAIBuf, 0, 0, 28}, {ZIAMacrocell, 0, 3, 0}, {ZIAMacrocell, 1, 0, 0}, {ZIAMacrocell, 1, 14, 0}},
	{{ZIAIBuf, 0, 0, 0}, {ZIAIBuf, 0, 0, 11}, {ZIAIBuf, 0, 0, 22}, {ZIAMacrocell, 0, 2, 0}, {ZIAMacrocell, 0, 14, 0}, {ZIAMacrocell, 1, 10, 0}},
	{{ZIAIBuf, 0, 0, 1}, {ZIAIBuf, 0, 0, 12}, {ZIAIBuf, 0, 0, 28}, {ZIAMacrocell, 0, 4, 0}, {ZIAMacrocell, 1, 1, 0}, {ZIAMacrocell, 1, 15, 0}},
	{{ZIAIBuf, 0, 0, 2}, {ZIAIBuf, 0, 0, 18}, {ZIAIBuf, 0, 0, 23}, {ZIAMacrocell, 0, 9, 0}, {ZIAMacrocell, 1, 0, 0}, {ZIAMacrocell, 1, 13, 0}},
	{{ZIAIBuf, 0, 0, 3}, {ZIAIBuf, 0, 0, 15}, {ZIAIBuf, 0, 0, 30}, {ZIAMacrocell, 0, 3, 0}, {ZIAMacrocell, 0, 11, 0}, {ZIAMacrocell, 1, 12, 0}},
	{{ZIAIBuf, 0, 0, 4}, {ZIAIBuf, 0, 0, 16}, {ZIAIBuf, 0, 0, 21}, {ZIAMacrocell, 0, 0, 0}, {ZIAMacrocell, 0, 15, 0}, {ZIAMacrocell, 1, 7, 0}},
	{{ZIAIBuf, 0, 0, 5}, {ZIAIBuf, 0, 0, 19}, {ZIAIBuf, 0, 0, 28}, {ZIAMacrocell, 0, 6, 0}, {ZIAMacrocell, 0, 12, 0}, {ZIAMacrocell, 1, 11, 0}},
	{{ZIAIBuf, 0, 0, 6}, {ZIAIBuf, 0, 0, 10}, {ZIAIBuf, 0, 0, 21}, {ZIAMacrocell, 0, 8, 0}, {ZIAMacrocell, 1, 2, 0}, {ZIAMacrocell, 1, 8, 0}},
	{{ZIAIBuf, 0, 0, 7}, {ZIAIBuf, 0, 0, 32}, {ZIAIBuf, 0, 0, 20}, {ZIAMacrocell, 0, 1, 0}, {ZIAMacrocell, 1, 4, 0}, {ZIAMacrocell, 1, 14, 0}},
	{{ZIAIBuf, 0, 0, 8}, {ZIAIBuf, 0, 0, 14}, {ZIAIBuf, 0, 0, 27}, {ZIAIBuf, 0, 0, 31}, {ZIAMacrocell, 0, 13, 0}, {ZIAMacrocell, 1, 6, 0}},
	{{ZIAIBuf, 0, 0, 9}, {ZIAIBuf, 0, 0, 13}, {ZIAIBuf, 0, 0, 25}, {ZIAMacrocell, 0, 7, 0}, {ZIAMacrocell, 0, 10, 0}, {ZIAMacrocell, 1, 9, 0}},
	{{ZIAIBuf, 0, 0, 8}, {ZIAIBuf, 0, 0, 17}, {ZIAIBuf, 0, 0, 24}, {ZIAMacrocell, 0, 5, 0}, {ZIAMacrocell, 1, 3, 0}, {ZIAMacrocell, 1, 5, 0}},
	{{ZIAIBuf, 0, 0, 0}, {ZIAIBuf, 0, 0, 12}, {ZIAIBuf, 0, 0, 23}, {ZIAMacrocell, 0, 3, 0}, {ZIAMacrocell, 0, 15, 0}, {ZIAMacrocell, 1, 11, 0}},
	{{ZIAIBuf, 0, 0, 1}, {ZIAIBuf, 0, 0, 18}, {ZIAIBuf, 0, 0, 25}, {ZIAMacrocell, 0, 6, 0}, {ZIAMacrocell, 1, 4, 0}, {ZIAMacrocell, 1, 5, 0}},
	{{ZIAIBuf, 0, 0, 2}, {ZIAIBuf, 0, 0, 13}, {ZIAIBuf, 0, 0, 30}, {ZIAMacrocell, 0, 5, 0}, {ZIAMacrocell, 1, 2, 0}, {ZIAMacrocell, 1, 6, 0}},
	{{ZIAIBuf, 0, 0, 3}, {ZIAIBuf, 0, 0, 19}, {ZIAIBuf, 0, 0, 24}, {ZIAMacrocell, 0, 0, 0}, {ZIAMacrocell, 1, 1, 0}, {ZIAMacrocell, 1, 14, 0}},
	{{ZIAIBuf, 0, 0, 4}, {ZIAIBuf, 0, 0, 32}, {ZIAIBuf, 0, 0, 21}, {ZIAMacrocell, 0, 4, 0}, {ZIAMacrocell, 0, 12, 0}, {ZIAMacrocell, 1, 13, 0}},
	{{ZIAIBuf, 0, 0, 5}, {ZIAIBuf, 0, 0, 17}, {ZIAIBuf, 0, 0, 27}, {ZIAMacrocell, 0, 1, 0}, {ZIAMacrocell, 1, 0, 0}, {ZIAMacrocell, 1, 8, 0}},
	{{ZIAIBuf, 0, 0, 6}, {ZIAIBuf, 0, 0, 11}, {ZIAIBuf, 0, 0, 29}, {ZIAMacrocell, 0, 7, 0}, {ZIAMacrocell, 0, 13, 0}, {ZIAMacrocell, 1, 12, 0}},
	{{ZIAIBuf, 0, 0, 7}, {ZIAIBuf, 0, 0, 10}, {ZIAIBuf, 0, 0, 22}, {ZIAMacrocell, 0, 9, 0}, {ZIAMacrocell, 1, 3, 0}, {ZIAMacrocell, 1, 9, 0}},
	{{ZIAIBuf, 0, 0, 8}, {ZIAIBuf, 0, 0, 16}, {ZIAIBuf, 0, 0, 20}, {ZIAMacrocell, 0, 2, 0}, {ZIAMacrocell, 0, 11, 0}, {ZIAMacrocell, 1, 15, 0}},
	{{ZIAIBuf, 0, 0, 9}, {ZIAIBuf, 0, 0, 15}, {ZIAIBuf, 0, 0, 28}, {ZIAIBuf, 0, 0, 31}, {ZIAMacrocell, 0, 14, 0}, {ZIAMacrocell, 1, 7, 0}},
	{{ZIAIBuf, 0, 0, 9}, {ZIAIBuf, 0, 0, 14}, {ZIAIBuf, 0, 0, 21}, {ZIAMacrocell, 0, 8, 0}, {ZIAMacrocell, 0, 10, 0}, {ZIAMacrocell, 1, 10, 0}},
	{{ZIAIBuf, 0, 0, 0}, {ZIAIBuf, 0, 0, 13}, {ZIAIBuf, 0, 0, 24}, {ZIAMacrocell, 0, 4, 0}, {ZIAMacrocell, 1, 0, 0}, {ZIAMacrocell, 1, 12, 0}},
	{{ZIAIBuf, 0, 0, 1}, {ZIAIBuf, 0, 0, 15}, {ZIAIBuf, 0, 0, 27}, {ZIAMacrocell, 0, 9, 0}, {ZIAMacrocell, 0, 10, 0}, {ZIAMacrocell, 1, 11, 0}},
	{{ZIAIBuf, 0, 0, 2}, {ZIAIBuf, 0, 0, 19}, {ZIAIBuf, 0, 0, 21}, {ZIAMacrocell, 0, 7, 0}, {ZIAMacrocell, 0, 11, 0}, {ZIAMacrocell, 1, 5, 0}},
	{{ZIAIBuf, 0, 0, 3}, {ZIAIBuf, 0, 0, 14}, {ZIAIBuf, 0, 0, 21}, {ZIAMacrocell, 0, 6, 0}, {ZIAMacrocell, 1, 3, 0}, {ZIAMacrocell, 1, 7, 0}},
	{{ZIAIBuf, 0, 0, 4}, {ZIAIBuf, 0, 0, 11}, {ZIAIBuf, 0, 0, 25}, {ZIAMacrocell, 0, 1, 0}, {ZIAMacrocell, 1, 2, 0}, {ZIAMacrocell, 1, 15, 0}},
	{{ZIAIBuf, 0, 0, 5}, {ZIAIBuf, 0, 0, 16}, {ZIAIBuf, 0, 0, 22}, {ZIAMacrocell, 0, 5, 0}, {ZIAMacrocell, 0, 13, 0}, {ZIAMacrocell, 1, 14, 0}},
	{{ZIAIBuf, 0, 0, 6}, {ZIAIBuf, 0, 0, 18}, {ZIAIBuf, 0, 0, 28}, {ZIAMacrocell, 0, 2, 0}, {ZIAMacrocell, 1, 1, 0}, {ZIAMacrocell, 1, 9, 0}},
}

// ziaIBufStride is one more than the highest IBuf index appearing in
// xc2c32ZIARows (index 32, see row 6): the span of dedicated-input
// numbering the base table covers, used to keep each FB-pair's IBuf
// numbers from colliding with its neighbors' when the table is replicated
// (see BuildZIATable).
const ziaIBufStride = 33

// BuildZIATable constructs the legal-source table for every FB of device d
// by transcribing the real vendor wiring. original_source only tabulates
// ZIA_BIT_TO_CHOICE_32 (xc2c32ZIARows above) for the 32-macrocell device's
// single 2-FB unit; no larger device's table is present in the pack. Real
// Coolrunner-II devices build their ZIA out of repeated 2-FB units, so for
// XC2C32/XC2C32A (already exactly 2 FBs) the table is used verbatim, and
// for every larger device it is replicated once per adjacent FB pair, with
// each pair's FB indices and IBuf numbers shifted by its pair index so the
// replicated units don't alias each other. This is an explicit, documented
// extrapolation beyond the pack's data for devices larger than 2 FBs (see
// DESIGN.md); the XC2C32/XC2C32A entries, which are what the router's
// tests exercise, are the real table with no extrapolation at all.
func BuildZIATable(d Device) ZIATable {
	f := FactsFor(d)
	table := make(ZIATable, f.NumFBs)

	for pair := 0; pair*2 < f.NumFBs; pair++ {
		fbBase := pair * 2
		ibufBase := pair * ziaIBufStride
		for offset := 0; offset < 2 && fbBase+offset < f.NumFBs; offset++ {
			fb := fbBase + offset
			for row := 0; row < ZIARowsPerFB; row++ {
				choices := make([]ZIASource, 6)
				for i, c := range xc2c32ZIARows[row] {
					switch c.Kind {
					case ZIAMacrocell:
						choices[i] = ZIASource{Kind: ZIAMacrocell, FB: fbBase + c.FB, FF: c.FF}
					case ZIAIBuf:
						choices[i] = ZIASource{Kind: ZIAIBuf, IBuf: ibufBase + c.IBuf}
					default:
						choices[i] = c
					}
				}
				table[fb][row] = choices
			}
		}
	}
	return table
}
