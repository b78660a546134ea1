package simulation

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sarchlab/simclock/sim"
)

// An Advancer moves the simulation forward by one frame.
type Advancer interface {
	Advance() sim.VTimeInSec
}

// A HostLoop calls Advance once per frame from a single goroutine. It stands
// in for the frame loop of a rendering or physics engine.
type HostLoop struct {
	advancer  Advancer
	period    time.Duration
	maxFrames uint64
	frames    atomic.Uint64
	inFrame   atomic.Bool

	isPaused     bool
	isPausedLock sync.Mutex
	resume       chan struct{}

	singleRunLock sync.Mutex
}

// NewHostLoop creates a HostLoop that runs as fast as it can until stopped.
func NewHostLoop(advancer Advancer) *HostLoop {
	return &HostLoop{advancer: advancer}
}

// WithPace makes the loop wait so that frames start at the given rate. A
// zero rate removes the wait.
func (l *HostLoop) WithPace(rate sim.Freq) *HostLoop {
	l.period = 0
	if rate > 0 {
		l.period = time.Duration(float64(rate.Period()) * float64(time.Second))
	}

	return l
}

// WithMaxFrames makes the loop stop after the given number of frames. Zero
// means no limit.
func (l *HostLoop) WithMaxFrames(n uint64) *HostLoop {
	l.maxFrames = n
	return l
}

// Frames returns the number of frames run so far.
func (l *HostLoop) Frames() uint64 {
	return l.frames.Load()
}

// Run runs frames until the frame limit is reached or the context is done.
func (l *HostLoop) Run(ctx context.Context) error {
	l.singleRunLock.Lock()
	defer l.singleRunLock.Unlock()

	for {
		if l.maxFrames > 0 && l.frames.Load() >= l.maxFrames {
			return nil
		}

		err := ctx.Err()
		if err != nil {
			return err
		}

		start := time.Now()

		// inFrame is raised before the pause check, so a loop seen outside
		// a frame after Pause will not start another one.
		l.inFrame.Store(true)

		resume := l.pausedResume()
		if resume != nil {
			l.inFrame.Store(false)

			select {
			case <-resume:
				continue
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		l.advancer.Advance()
		l.frames.Add(1)
		l.inFrame.Store(false)

		err = l.pace(ctx, start)
		if err != nil {
			return err
		}
	}
}

// pausedResume returns the channel closed by Continue if the loop is paused,
// or nil otherwise.
func (l *HostLoop) pausedResume() chan struct{} {
	l.isPausedLock.Lock()
	defer l.isPausedLock.Unlock()

	if !l.isPaused {
		return nil
	}

	return l.resume
}

func (l *HostLoop) pace(ctx context.Context, start time.Time) error {
	if l.period == 0 {
		return nil
	}

	wait := l.period - time.Since(start)
	if wait <= 0 {
		return nil
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Pause prevents the loop from starting new frames. It does not wait for the
// frame in progress, which may be blocked on an external trigger; use InFrame
// to tell when that frame has completed.
func (l *HostLoop) Pause() {
	l.isPausedLock.Lock()
	defer l.isPausedLock.Unlock()

	if l.isPaused {
		return
	}

	l.isPaused = true
	l.resume = make(chan struct{})
}

// Continue allows the loop to run frames again.
func (l *HostLoop) Continue() {
	l.isPausedLock.Lock()
	defer l.isPausedLock.Unlock()

	if !l.isPaused {
		return
	}

	l.isPaused = false
	close(l.resume)
}

// InFrame tells if the loop is inside Advance.
func (l *HostLoop) InFrame() bool {
	return l.inFrame.Load()
}

// IsPaused tells if the loop is paused.
func (l *HostLoop) IsPaused() bool {
	l.isPausedLock.Lock()
	defer l.isPausedLock.Unlock()

	return l.isPaused
}
