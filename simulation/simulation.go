// Package simulation holds the state shared by everything that runs in one
// simulation: the active time strategy and the services attached to it.
package simulation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sarchlab/simclock/datarecording"
	"github.com/sarchlab/simclock/monitoring"
	"github.com/sarchlab/simclock/sim"
	"github.com/sarchlab/simclock/sim/timing"
)

// A Simulation provides the services required to run a simulation. It is
// created by a Builder.
type Simulation struct {
	id string

	strategy   timing.Strategy
	comparator timing.Comparator
	observer   *timing.Observer

	dataRecorder  datarecording.DataRecorder
	frameRecorder *datarecording.FrameRecorder
	runRecorder   *datarecording.RunRecorder

	monitor     *monitoring.Monitor
	progressBar *monitoring.ProgressBar

	terminateOnce sync.Once
	terminateErr  error
}

// ID returns the unique ID of the simulation.
func (s *Simulation) ID() string {
	return s.id
}

// Strategy returns the active time strategy.
func (s *Simulation) Strategy() timing.Strategy {
	return s.strategy
}

// GetDataRecorder returns the data recorder used in the simulation. It is nil
// if recording is off.
func (s *Simulation) GetDataRecorder() datarecording.DataRecorder {
	return s.dataRecorder
}

// GetMonitor returns the monitor used in the simulation. It is nil if
// monitoring is off.
func (s *Simulation) GetMonitor() *monitoring.Monitor {
	return s.monitor
}

// Advance moves the simulation forward by one frame and returns the new
// simulated time. It must be called from a single goroutine.
func (s *Simulation) Advance() sim.VTimeInSec {
	if s.progressBar != nil {
		s.progressBar.IncrementInProgress(1)
	}

	s.strategy.Advance()

	if s.progressBar != nil {
		s.progressBar.MoveInProgressToFinished(1)
	}

	return s.strategy.CurrentTime()
}

// CurrentTime returns the simulated time of the last frame.
func (s *Simulation) CurrentTime() sim.VTimeInSec {
	return s.strategy.CurrentTime()
}

// IsAfter tells if t1 is after t2 within the tolerance of the active
// strategy.
func (s *Simulation) IsAfter(t1, t2 sim.VTimeInSec) bool {
	return s.comparator.IsAfter(t1, t2)
}

// Snapshot returns the state of the strategy after the last frame. Unlike
// the other methods, it can be called from any goroutine.
func (s *Simulation) Snapshot() timing.Snapshot {
	return s.observer.Snapshot()
}

// NewLocalClock creates a clock that reads the simulated time with a shift
// given in milliseconds.
func (s *Simulation) NewLocalClock(shiftMillis float64) LocalClock {
	return NewLocalClock(s.strategy, shiftMillis)
}

// RegisterLoop lets the monitor pause the loop and show its progress.
func (s *Simulation) RegisterLoop(loop *HostLoop) {
	if s.monitor == nil {
		return
	}

	s.monitor.RegisterLoop(loop)

	if loop.maxFrames > 0 && s.progressBar == nil {
		s.progressBar = s.monitor.CreateProgressBar(
			fmt.Sprintf("Frames (%s)", s.strategy.Name()), loop.maxFrames)
	}
}

// Terminate releases everything the simulation holds. The socket of the
// strategy is closed and recordings are written out. It is safe to call
// Terminate more than once.
func (s *Simulation) Terminate() error {
	s.terminateOnce.Do(func() {
		s.terminateErr = s.terminate()
	})

	return s.terminateErr
}

func (s *Simulation) terminate() error {
	errs := []error{s.strategy.Close()}

	if s.frameRecorder != nil {
		errs = append(errs, s.frameRecorder.Err())
	}

	if s.runRecorder != nil {
		s.runRecorder.Set("Frames", fmt.Sprint(s.Snapshot().Frame))
		errs = append(errs, s.runRecorder.End())
	}

	if s.dataRecorder != nil {
		errs = append(errs, s.dataRecorder.Close())
	}

	if s.monitor != nil {
		if s.progressBar != nil {
			s.monitor.CompleteProgressBar(s.progressBar)
		}

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		errs = append(errs, s.monitor.StopServer(ctx))
	}

	return errors.Join(errs...)
}
