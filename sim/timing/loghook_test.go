package timing

import (
	"bytes"
	"log"

	"github.com/sarchlab/simclock/sim"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("StrategyLogHook", func() {
	var (
		buf      *bytes.Buffer
		hook     *StrategyLogHook
		strategy *FixedStep
	)

	BeforeEach(func() {
		buf = new(bytes.Buffer)
		hook = NewStrategyLogHook(log.New(buf, "", 0))

		var err error
		strategy, err = NewFixedStep(Config{
			Frequency: 2,
			Clock:     newManualClock(),
			Logger:    testLogger(),
		})
		Expect(err).NotTo(HaveOccurred())
		strategy.AcceptHook(hook)
	})

	It("should log every frame", func() {
		strategy.Advance()
		strategy.Advance()

		Expect(buf.String()).To(Equal(
			"Fixed Simulation Step, frame 1, time 0.500000, wall 0.000000, triggered false\n" +
				"Fixed Simulation Step, frame 2, time 1.000000, wall 0.000000, triggered false\n"))
	})

	It("should log connection changes", func() {
		hook.Func(sim.HookCtx{
			Domain: strategy,
			Pos:    HookPosPeerDisconnected,
			Item:   strategy,
		})

		Expect(buf.String()).To(Equal("Fixed Simulation Step, PeerDisconnected\n"))
	})

	It("should ignore items that are not strategies", func() {
		hook.Func(sim.HookCtx{Pos: HookPosAfterAdvance, Item: 3})

		Expect(buf.String()).To(BeEmpty())
	})
})
