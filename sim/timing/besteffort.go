package timing

import (
	"github.com/sarchlab/simclock/sim"
	"github.com/sarchlab/simclock/sim/stats"
)

// frameWindow is the length of the window used to count frames per second.
const frameWindow = 1.0

// BestEffortStrategy makes the simulated time follow the wall clock. Frames
// are not equally long, but the simulation never drifts away from real time.
type BestEffortStrategy struct {
	sim.HookableBase

	clock sim.WallClock
	time  sim.VTimeInSec
	frame uint64

	jitter     jitterTracker
	statJitter stats.Accumulator

	windowOpen   bool
	windowStart  sim.VTimeInSec
	windowFrames int
	statFrames   stats.Accumulator
}

// NewBestEffort creates a BestEffortStrategy.
func NewBestEffort(cfg Config) *BestEffortStrategy {
	cfg = cfg.withDefaults()

	s := &BestEffortStrategy{
		clock: cfg.Clock,
	}
	s.time = sim.WallNow(s.clock)

	cfg.Logger.Printf("Simulation configured in Best Effort Mode")

	return s
}

// Advance sets the simulated time to the current wall-clock time.
func (s *BestEffortStrategy) Advance() {
	s.time = sim.WallNow(s.clock)
	s.frame++

	s.updateStatistics()

	s.InvokeHook(sim.HookCtx{
		Domain: s,
		Pos:    HookPosAfterAdvance,
		Item:   s,
		Detail: FrameInfo{Frame: s.frame, Time: s.time, WallTime: s.time},
	})
}

func (s *BestEffortStrategy) updateStatistics() {
	if delta, ok := s.jitter.observe(s.time); ok {
		s.statJitter.Update(delta)
	}

	switch {
	case !s.windowOpen:
		s.windowOpen = true
		s.windowStart = s.time
		s.windowFrames = 0
	case float64(s.time-s.windowStart) > frameWindow:
		s.statFrames.Update(float64(s.windowFrames))
		s.windowStart = s.time
		s.windowFrames = 0
	default:
		s.windowFrames++
	}
}

// CurrentTime returns the simulated time of the last frame.
func (s *BestEffortStrategy) CurrentTime() sim.VTimeInSec {
	return s.time
}

// Kind returns BestEffort.
func (s *BestEffortStrategy) Kind() Kind {
	return BestEffort
}

// Name returns the name of the strategy.
func (s *BestEffortStrategy) Name() string {
	return "Best Effort"
}

// Mean returns the mean wall-clock interval between frames.
func (s *BestEffortStrategy) Mean() float64 {
	return s.statJitter.Mean()
}

// Statistics reports the frame interval and the frame rate.
func (s *BestEffortStrategy) Statistics() Statistics {
	return Statistics{
		StatMeanTime:           s.statJitter.Mean(),
		StatVarianceTime:       s.statJitter.Variance(),
		StatMeanFrameBySec:     s.statFrames.Mean(),
		StatVarianceFrameBySec: s.statFrames.Variance(),
	}
}

// Close does nothing, as BestEffortStrategy holds no resource.
func (s *BestEffortStrategy) Close() error {
	return nil
}
