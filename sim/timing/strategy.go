// Package timing decides how far simulated time advances on every frame.
//
// Three strategies are provided. BestEffort follows the wall clock. FixedStep
// advances by a constant increment so that runs are reproducible.
// ExternalTrigger advances like FixedStep but waits on every frame for a
// controller connected over TCP to authorize the step.
//
// The host calls Advance exactly once per frame, always from the same
// goroutine, and reads CurrentTime afterwards.
package timing

import (
	"errors"
	"log"
	"time"

	"github.com/sarchlab/simclock/sim"
)

// Keys of the values reported by Statistics.
const (
	StatMeanTime           = "mean_time"
	StatVarianceTime       = "variance_time"
	StatMeanFrameBySec     = "mean_frame_by_sec"
	StatVarianceFrameBySec = "variance_frame_by_sec"
	StatDiffRealTime       = "diff_real_time"
)

var (
	// ErrUnknownStrategy is returned by Make when the strategy kind is not
	// registered.
	ErrUnknownStrategy = errors.New("timing: unknown time strategy")

	// ErrZeroFrequency is returned when a fixed-step strategy is configured
	// without a positive frequency.
	ErrZeroFrequency = errors.New("timing: frequency must be positive")
)

// Statistics maps a statistic name to its current value.
type Statistics map[string]float64

// A Strategy advances the simulated time once per frame.
type Strategy interface {
	sim.Hookable
	sim.TimeTeller

	// Advance moves the simulated time forward by one frame.
	Advance()

	// Kind returns the registry entry this strategy was built from.
	Kind() Kind

	// Name returns a human-readable name of the strategy.
	Name() string

	// Mean returns the characteristic time granularity of the strategy, in
	// seconds. It is the tolerance basis of the Comparator.
	Mean() float64

	// Statistics reports the timing-quality statistics of the strategy.
	Statistics() Statistics

	// Close releases the resources held by the strategy.
	Close() error
}

// FrameInfo is the detail of the HookPosAfterAdvance hook.
type FrameInfo struct {
	Frame     uint64
	Time      sim.VTimeInSec
	WallTime  sim.VTimeInSec
	Triggered bool
}

// HookPosAfterAdvance marks that a strategy has advanced by one frame. The
// hook item is the strategy and the detail is a FrameInfo.
var HookPosAfterAdvance = &sim.HookPos{Name: "AfterAdvance"}

// HookPosPeerConnected marks that an external controller has connected.
var HookPosPeerConnected = &sim.HookPos{Name: "PeerConnected"}

// HookPosPeerDisconnected marks that the external controller has left.
var HookPosPeerDisconnected = &sim.HookPos{Name: "PeerDisconnected"}

// HookPosTriggerReceived marks that a trigger has authorized a step.
var HookPosTriggerReceived = &sim.HookPos{Name: "TriggerReceived"}

// HookPosTriggerTimeout marks that the wait for a trigger has timed out.
var HookPosTriggerTimeout = &sim.HookPos{Name: "TriggerTimeout"}

// Config carries the parameters needed to build any strategy. Fields that a
// strategy does not use are ignored.
type Config struct {
	// Frequency is the number of simulated frames per simulated second in
	// the fixed-step strategies.
	Frequency sim.Freq

	// SyncAddr is the address the external-trigger strategy listens on.
	// Defaults to DefaultSyncAddr.
	SyncAddr string

	// ReceiveTimeout bounds the wait for a trigger from a connected
	// controller. Zero waits forever.
	ReceiveTimeout time.Duration

	// Clock is the wall clock. Defaults to the system clock.
	Clock sim.WallClock

	// Logger receives informational messages. Defaults to the standard
	// logger.
	Logger *log.Logger
}

func (c Config) withDefaults() Config {
	if c.Clock == nil {
		c.Clock = sim.SystemClock{}
	}

	if c.Logger == nil {
		c.Logger = log.Default()
	}

	if c.SyncAddr == "" {
		c.SyncAddr = DefaultSyncAddr
	}

	return c
}

// jitterTracker records the wall-clock interval between consecutive calls.
// The first call only seeds the last time.
type jitterTracker struct {
	started  bool
	lastTime sim.VTimeInSec
}

func (j *jitterTracker) observe(now sim.VTimeInSec) (delta float64, ok bool) {
	if !j.started {
		j.started = true
		j.lastTime = now

		return 0, false
	}

	delta = float64(now - j.lastTime)
	j.lastTime = now

	return delta, true
}
