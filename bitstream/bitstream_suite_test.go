package bitstream_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/azonenberg/xc2par/bitstream"
	"github.com/azonenberg/xc2par/device"
	"github.com/azonenberg/xc2par/outgraph"
	"github.com/azonenberg/xc2par/placer"
	"github.com/azonenberg/xc2par/xc2input"
	"github.com/azonenberg/xc2par/xc2log"
	"github.com/azonenberg/xc2par/zia"
)

func TestBitstreamSuite(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "bitstream suite")
}

func assemblePipeline(d device.Device) (*bitstream.Bitstream, error) {
	g := &xc2input.Graph{}
	in := g.Macrocells.Alloc(xc2input.Macrocell{Name: "in", Type: xc2input.PinInputUnreg, IO: xc2input.IOBits{Present: true}})
	pt := g.PTerms.Alloc(xc2input.PTerm{Name: "p", InputsTrue: []xc2input.PTermInputRef{{Kind: xc2input.FeedbackPin, Macrocell: in}}})
	g.Macrocells.Alloc(xc2input.Macrocell{Name: "out", Type: xc2input.BuriedComb, Xor: xc2input.XorBits{Present: true, OrTerms: []xc2input.PTermHandle{pt}}})

	f := device.FactsFor(d)
	placed, err := placer.Place(g, f, placer.Options{MaxIter: placer.DefaultMaxIter}, xc2log.Discard())
	if err != nil {
		return nil, err
	}
	routing, err := zia.Route(g, placed, d, xc2log.Discard())
	if err != nil {
		return nil, err
	}
	out, err := outgraph.Build(g, placed, routing, d, xc2log.Discard())
	if err != nil {
		return nil, err
	}
	return bitstream.Assemble(out, xc2log.Discard())
}

var _ = Describe("JEDEC framing", func() {
	It("round-trips every fuse bit through EmitJEDEC/ParseJEDEC", func() {
		b, err := assemblePipeline(device.XC2C64)
		Expect(err).NotTo(HaveOccurred())
		emitted := bitstream.EmitJEDEC(b)

		parsed, err := bitstream.ParseJEDEC(emitted)
		Expect(err).NotTo(HaveOccurred())
		Expect(parsed.Logical.Len()).To(Equal(b.Logical.Len()))
		for i := 0; i < b.Logical.Len(); i++ {
			Expect(parsed.Logical.Get(i)).To(Equal(b.Logical.Get(i)))
		}
	})

	It("rejects a file missing its STX byte", func() {
		_, err := bitstream.ParseJEDEC([]byte("no stx here"))
		Expect(err).To(HaveOccurred())
	})
})
