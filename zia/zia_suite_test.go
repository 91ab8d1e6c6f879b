package zia_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/azonenberg/xc2par/device"
	"github.com/azonenberg/xc2par/placer"
	"github.com/azonenberg/xc2par/xc2log"
	"github.com/azonenberg/xc2par/zia"
)

func TestZIASuite(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "zia suite")
}

var _ = Describe("Route", func() {
	It("routes the demanded FB's source and gives every row of the other FBs its first legal choice", func() {
		g, in := buildGraphWithPTerm()
		d := device.XC2C32
		f := device.FactsFor(d)

		placed, err := placer.Place(g, f, placer.Options{MaxIter: placer.DefaultMaxIter}, xc2log.Discard())
		Expect(err).NotTo(HaveOccurred())
		routing, err := zia.Route(g, placed, d, xc2log.Discard())
		Expect(err).NotTo(HaveOccurred())

		loc := placed.Macrocells[in]
		want := device.ZIASource{Kind: device.ZIAIBuf, IBuf: int(in)}
		carried := 0
		for _, row := range routing[loc.FB] {
			if row.Source == want {
				carried++
			}
		}
		Expect(carried).To(BeNumerically(">=", 1))

		table := device.BuildZIATable(d)
		for fb, rows := range routing {
			if fb == loc.FB {
				continue
			}
			for r, row := range rows {
				Expect(row).To(Equal(zia.RowAssignment{Source: table[fb][r][0], ChoiceIdx: 0}))
			}
		}
	})
})
