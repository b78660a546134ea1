package sim

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Freq", func() {
	It("should get period", func() {
		var f = 60 * Hz
		Expect(f.Period()).To(BeNumerically("~", 0.0166667, 1e-6))
	})

	It("should panic on zero frequency", func() {
		var f Freq
		Expect(func() { f.Period() }).To(Panic())
	})

	It("should count frames in a duration", func() {
		var f = 60 * Hz
		Expect(f.Cycle(1.0)).To(Equal(uint64(60)))
		Expect(f.Cycle(0.5)).To(Equal(uint64(30)))
	})
})
