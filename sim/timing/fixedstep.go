package timing

import (
	"github.com/sarchlab/simclock/sim"
	"github.com/sarchlab/simclock/sim/stats"
)

// FixedStep advances the simulated time by 1/frequency on every frame,
// regardless of how much wall-clock time has passed. Simulations are
// reproducible, but the simulated time drifts away from real time.
type FixedStep struct {
	sim.HookableBase

	clock sim.WallClock
	freq  sim.Freq
	incr  sim.VTimeInSec
	time  sim.VTimeInSec
	frame uint64

	jitter     jitterTracker
	statJitter stats.Accumulator
}

// NewFixedStep creates a FixedStep strategy. The simulated time starts at
// the current wall-clock time.
func NewFixedStep(cfg Config) (*FixedStep, error) {
	cfg = cfg.withDefaults()

	if cfg.Frequency <= 0 {
		return nil, ErrZeroFrequency
	}

	s := &FixedStep{
		clock: cfg.Clock,
		freq:  cfg.Frequency,
		incr:  cfg.Frequency.Period(),
	}
	s.time = sim.WallNow(s.clock)

	cfg.Logger.Printf(
		"Simulation configured in Fixed Simulation Step Mode with "+
			"time step of %f sec (1.0 / %g)",
		float64(s.incr), float64(s.freq))

	return s, nil
}

// Advance moves the simulated time forward by one fixed step.
func (s *FixedStep) Advance() {
	s.step(s, false)
}

func (s *FixedStep) step(domain sim.Hookable, triggered bool) {
	s.time += s.incr
	s.frame++

	wall := sim.WallNow(s.clock)
	if delta, ok := s.jitter.observe(wall); ok {
		s.statJitter.Update(delta)
	}

	s.InvokeHook(sim.HookCtx{
		Domain: domain,
		Pos:    HookPosAfterAdvance,
		Item:   domain,
		Detail: FrameInfo{
			Frame:     s.frame,
			Time:      s.time,
			WallTime:  wall,
			Triggered: triggered,
		},
	})
}

// CurrentTime returns the simulated time of the last frame.
func (s *FixedStep) CurrentTime() sim.VTimeInSec {
	return s.time
}

// Frequency returns the configured number of frames per simulated second.
func (s *FixedStep) Frequency() sim.Freq {
	return s.freq
}

// Kind returns FixedSimulationStep.
func (s *FixedStep) Kind() Kind {
	return FixedSimulationStep
}

// Name returns the name of the strategy.
func (s *FixedStep) Name() string {
	return "Fixed Simulation Step"
}

// Mean returns the nominal step size. Comparators use the step size, not a
// measured value, as their tolerance in fixed-step mode.
func (s *FixedStep) Mean() float64 {
	return float64(s.incr)
}

// Statistics reports the interval between calls and the drift from real
// time.
func (s *FixedStep) Statistics() Statistics {
	return Statistics{
		StatMeanTime:     s.statJitter.Mean(),
		StatVarianceTime: s.statJitter.Variance(),
		StatDiffRealTime: float64(s.time - sim.WallNow(s.clock)),
	}
}

// Close does nothing, as FixedStep holds no resource.
func (s *FixedStep) Close() error {
	return nil
}
