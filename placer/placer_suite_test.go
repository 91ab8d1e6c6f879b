package placer_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/azonenberg/xc2par/device"
	"github.com/azonenberg/xc2par/placer"
	"github.com/azonenberg/xc2par/xc2log"
)

func TestPlacerSuite(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "placer suite")
}

var _ = Describe("Place", func() {
	It("rejects a graph that does not fit the device's macrocell capacity", func() {
		f := device.FactsFor(device.XC2C32)
		g := buildSmallGraph(f.NumFBs*device.MacrocellsPerFB + 1)

		_, err := placer.Place(g, f, placer.Options{MaxIter: placer.DefaultMaxIter}, xc2log.Discard())
		Expect(err).To(HaveOccurred())
	})

	It("produces the same placement across two runs with an identical seed", func() {
		f := device.FactsFor(device.XC2C64)
		g := buildSmallGraph(20)
		seed := placer.Seed{9, 9, 9}

		r1, err := placer.Place(g, f, placer.Options{MaxIter: placer.DefaultMaxIter, Seed: seed}, xc2log.Discard())
		Expect(err).NotTo(HaveOccurred())
		r2, err := placer.Place(g, f, placer.Options{MaxIter: placer.DefaultMaxIter, Seed: seed}, xc2log.Discard())
		Expect(err).NotTo(HaveOccurred())

		for h, loc := range r1.Macrocells {
			Expect(r2.Macrocells[h]).To(Equal(loc))
		}
	})
})
