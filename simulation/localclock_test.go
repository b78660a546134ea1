package simulation

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/simclock/sim"
)

type fixedTime sim.VTimeInSec

func (t fixedTime) CurrentTime() sim.VTimeInSec {
	return sim.VTimeInSec(t)
}

var _ = Describe("LocalClock", func() {
	It("should add the shift in milliseconds", func() {
		clock := NewLocalClock(fixedTime(2.5), 250)

		Expect(clock.Millis()).To(BeNumerically("~", 2750, 1e-9))
		Expect(clock.CurrentTime()).To(BeNumerically("~", 2.75, 1e-12))
		Expect(clock.Shift()).To(Equal(250.0))
	})

	It("should allow a negative shift", func() {
		clock := NewLocalClock(fixedTime(1), -1500)

		Expect(clock.Millis()).To(BeNumerically("~", -500, 1e-9))
	})
})
