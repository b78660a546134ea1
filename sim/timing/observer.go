package timing

import (
	"sync"

	"github.com/sarchlab/simclock/sim"
)

// Snapshot is the state of a strategy right after a frame.
type Snapshot struct {
	Kind       string     `json:"kind"`
	Name       string     `json:"name"`
	Frame      uint64     `json:"frame"`
	Time       float64    `json:"time"`
	WallTime   float64    `json:"wall_time"`
	Mean       float64    `json:"mean"`
	Connected  bool       `json:"connected"`
	Statistics Statistics `json:"statistics"`
}

// An Observer is a hook that keeps the latest Snapshot of the strategy it is
// attached to. Snapshot can be called from any goroutine.
type Observer struct {
	lock     sync.RWMutex
	snapshot Snapshot
}

// NewObserver creates an Observer whose first snapshot describes the
// strategy before any frame.
func NewObserver(strategy Strategy) *Observer {
	o := &Observer{}
	o.snapshot = takeSnapshot(strategy, FrameInfo{
		Time: strategy.CurrentTime(),
	})

	return o
}

type connectionTeller interface {
	Connected() bool
}

func takeSnapshot(strategy Strategy, info FrameInfo) Snapshot {
	s := Snapshot{
		Kind:       strategy.Kind().String(),
		Name:       strategy.Name(),
		Frame:      info.Frame,
		Time:       float64(info.Time),
		WallTime:   float64(info.WallTime),
		Mean:       strategy.Mean(),
		Statistics: strategy.Statistics(),
	}

	if c, ok := strategy.(connectionTeller); ok {
		s.Connected = c.Connected()
	}

	return s
}

// Func updates the snapshot.
func (o *Observer) Func(ctx sim.HookCtx) {
	strategy, ok := ctx.Item.(Strategy)
	if !ok {
		return
	}

	o.lock.Lock()
	defer o.lock.Unlock()

	switch ctx.Pos {
	case HookPosAfterAdvance:
		o.snapshot = takeSnapshot(strategy, ctx.Detail.(FrameInfo))
	case HookPosPeerConnected:
		o.snapshot.Connected = true
	case HookPosPeerDisconnected:
		o.snapshot.Connected = false
	}
}

// Snapshot returns the latest snapshot.
func (o *Observer) Snapshot() Snapshot {
	o.lock.RLock()
	defer o.lock.RUnlock()

	s := o.snapshot
	s.Statistics = make(Statistics, len(o.snapshot.Statistics))
	for k, v := range o.snapshot.Statistics {
		s.Statistics[k] = v
	}

	return s
}
