package bitstream_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/azonenberg/xc2par/bitstream"
	"github.com/azonenberg/xc2par/device"
	"github.com/azonenberg/xc2par/outgraph"
	"github.com/azonenberg/xc2par/placer"
	"github.com/azonenberg/xc2par/xc2input"
	"github.com/azonenberg/xc2par/xc2log"
	"github.com/azonenberg/xc2par/zia"
)

// fuseBits unpacks a LogicalFuses into a plain slice so cmp.Diff can compare
// it without reaching into the type's unexported backing array.
func fuseBits(f *bitstream.LogicalFuses) []bool {
	bits := make([]bool, f.Len())
	for i := range bits {
		bits[i] = f.Get(i)
	}
	return bits
}

func buildPipeline(t *testing.T, d device.Device) *bitstream.Bitstream {
	t.Helper()
	g := &xc2input.Graph{}
	in := g.Macrocells.Alloc(xc2input.Macrocell{Name: "in", Type: xc2input.PinInputUnreg, IO: xc2input.IOBits{Present: true}})
	pt := g.PTerms.Alloc(xc2input.PTerm{Name: "p", InputsTrue: []xc2input.PTermInputRef{{Kind: xc2input.FeedbackPin, Macrocell: in}}})
	g.Macrocells.Alloc(xc2input.Macrocell{Name: "out", Type: xc2input.BuriedComb, Xor: xc2input.XorBits{Present: true, OrTerms: []xc2input.PTermHandle{pt}}})

	f := device.FactsFor(d)
	placed, err := placer.Place(g, f, placer.Options{MaxIter: placer.DefaultMaxIter}, xc2log.Discard())
	if err != nil {
		t.Fatalf("Place() error = %v", err)
	}
	routing, err := zia.Route(g, placed, d, xc2log.Discard())
	if err != nil {
		t.Fatalf("Route() error = %v", err)
	}
	out, err := outgraph.Build(g, placed, routing, d, xc2log.Discard())
	if err != nil {
		t.Fatalf("outgraph.Build() error = %v", err)
	}
	b, err := bitstream.Assemble(out, xc2log.Discard())
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	return b
}

func TestJEDECRoundTrip(t *testing.T) {
	b := buildPipeline(t, device.XC2C32)

	emitted := bitstream.EmitJEDEC(b)
	parsed, err := bitstream.ParseJEDEC(emitted)
	if err != nil {
		t.Fatalf("ParseJEDEC() error = %v", err)
	}
	if diff := cmp.Diff(fuseBits(b.Logical), fuseBits(parsed.Logical)); diff != "" {
		t.Fatalf("fuse bits differ after round trip (-want +got):\n%s", diff)
	}
}

func TestJEDECBadFuseChecksumRejected(t *testing.T) {
	b := buildPipeline(t, device.XC2C32)
	emitted := bitstream.EmitJEDEC(b)

	flipped := append([]byte(nil), emitted...)
	lStart := -1
	for i := 0; i+1 < len(flipped); i++ {
		if flipped[i] == 'L' && flipped[i+1] >= '0' && flipped[i+1] <= '9' {
			lStart = i
			break
		}
	}
	if lStart < 0 {
		t.Fatal("no L field found in emitted JEDEC")
	}
	// Skip the L field's offset digits so the flip lands on a fuse bit.
	bitsStart := lStart
	for bitsStart < len(flipped) && flipped[bitsStart] != ' ' {
		bitsStart++
	}
	flippedOne := false
	for i := bitsStart; i < len(flipped) && flipped[i] != '*'; i++ {
		if flipped[i] == '1' {
			flipped[i] = '0'
			flippedOne = true
			break
		}
	}
	if !flippedOne {
		t.Fatal("no '1' bit found to flip within an L field")
	}

	if _, err := bitstream.ParseJEDEC(flipped); err == nil {
		t.Fatal("ParseJEDEC() succeeded on a corrupted fuse checksum, want error")
	}
}

func TestCrbitEmitsExpectedDimensions(t *testing.T) {
	b := buildPipeline(t, device.XC2C32)
	out := bitstream.EmitCrbit(b)
	if len(out) == 0 {
		t.Fatal("EmitCrbit produced no output")
	}
	rows := 0
	for _, line := range strings.Split(string(out), "\n") {
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		if len(line) != b.Physical.Width() {
			t.Fatalf("crbit row %d has %d columns, want %d", rows, len(line), b.Physical.Width())
		}
		rows++
	}
	if rows != b.Physical.Height() {
		t.Fatalf("crbit has %d rows, want %d", rows, b.Physical.Height())
	}
}
