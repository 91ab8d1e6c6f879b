package bitstream

import "strings"

// EmitCrbit writes b as the crbit physical format (spec §4.8, §9 "only a
// writer is implemented" — the original's own TODO for a full crbit parser
// is carried forward unresolved, see DESIGN.md): leading comment lines, an
// optional device-name comment, then one row of W `0`/`1` characters per
// physical row, terminated by a blank line.
func EmitCrbit(b *Bitstream) []byte {
	var sb strings.Builder
	sb.WriteString("// generated by xc2par\n")
	sb.WriteString("// DEVICE ")
	sb.WriteString(b.Device.String())
	sb.WriteByte('\n')

	for y := 0; y < b.Physical.Height(); y++ {
		for x := 0; x < b.Physical.Width(); x++ {
			if b.Physical.Get(x, y) {
				sb.WriteByte('1')
			} else {
				sb.WriteByte('0')
			}
		}
		sb.WriteByte('\n')
	}
	sb.WriteByte('\n')
	return []byte(sb.String())
}
