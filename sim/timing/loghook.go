package timing

import (
	"log"

	"github.com/sarchlab/simclock/sim"
)

// StrategyLogHook writes one line for each frame and each change of the
// controller connection.
type StrategyLogHook struct {
	sim.LogHookBase
}

// NewStrategyLogHook creates a StrategyLogHook writing to the given logger.
func NewStrategyLogHook(logger *log.Logger) *StrategyLogHook {
	return &StrategyLogHook{
		LogHookBase: sim.NewLogHookBase(logger),
	}
}

// Func writes the log line.
func (h *StrategyLogHook) Func(ctx sim.HookCtx) {
	strategy, ok := ctx.Item.(Strategy)
	if !ok {
		return
	}

	switch ctx.Pos {
	case HookPosAfterAdvance:
		info := ctx.Detail.(FrameInfo)
		h.Printf("%s, frame %d, time %.6f, wall %.6f, triggered %t",
			strategy.Name(), info.Frame, info.Time, info.WallTime,
			info.Triggered)
	case HookPosPeerConnected, HookPosPeerDisconnected,
		HookPosTriggerReceived, HookPosTriggerTimeout:
		h.Printf("%s, %s", strategy.Name(), ctx.Pos.Name)
	}
}
