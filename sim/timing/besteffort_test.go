package timing

import (
	"time"

	"github.com/sarchlab/simclock/sim"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("BestEffort", func() {
	var (
		clock    *manualClock
		strategy *BestEffortStrategy
	)

	BeforeEach(func() {
		clock = newManualClock()
		strategy = NewBestEffort(Config{Clock: clock, Logger: testLogger()})
	})

	It("should use the wall clock as the simulated time", func() {
		for i := 0; i < 5; i++ {
			clock.Advance(37 * time.Millisecond)
			strategy.Advance()

			Expect(strategy.CurrentTime()).To(Equal(sim.WallNow(clock)))
		}
	})

	It("should not record jitter on the first frame", func() {
		strategy.Advance()

		stat := strategy.Statistics()
		Expect(stat[StatMeanTime]).To(Equal(0.0))
		Expect(strategy.Mean()).To(Equal(0.0))
	})

	It("should measure the interval between frames", func() {
		strategy.Advance()
		for i := 0; i < 10; i++ {
			clock.Advance(125 * time.Millisecond)
			strategy.Advance()
		}

		stat := strategy.Statistics()
		Expect(stat[StatMeanTime]).To(BeNumerically("~", 0.125, 1e-9))
		Expect(stat[StatVarianceTime]).To(BeNumerically("~", 0, 1e-12))
		Expect(strategy.Mean()).To(BeNumerically("~", 0.125, 1e-9))
	})

	It("should converge to the frame rate of the host", func() {
		strategy.Advance()
		for i := 0; i < 8*10; i++ {
			clock.Advance(125 * time.Millisecond)
			strategy.Advance()
		}

		stat := strategy.Statistics()
		Expect(stat[StatMeanFrameBySec]).To(Equal(8.0))
		Expect(stat[StatVarianceFrameBySec]).To(Equal(0.0))
	})

	It("should report its name and kind", func() {
		Expect(strategy.Name()).To(Equal("Best Effort"))
		Expect(strategy.Kind()).To(Equal(BestEffort))
		Expect(strategy.Close()).To(Succeed())
	})
})
