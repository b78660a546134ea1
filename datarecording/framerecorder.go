package datarecording

import (
	"github.com/sarchlab/simclock/sim"
	"github.com/sarchlab/simclock/sim/timing"
)

// FrameTable is the table that FrameRecorder writes to.
const FrameTable = "frames"

// FrameSample is one row of the frame table.
type FrameSample struct {
	Frame     uint64
	SimTime   float64
	WallTime  float64
	Strategy  string
	Triggered bool
}

// FrameRecorder is a hook that records the timing of every frame advanced by
// a strategy.
type FrameRecorder struct {
	recorder DataRecorder
	err      error
}

// NewFrameRecorder creates the frame table and returns a hook that fills it.
func NewFrameRecorder(recorder DataRecorder) (*FrameRecorder, error) {
	err := recorder.CreateTable(FrameTable, FrameSample{})
	if err != nil {
		return nil, err
	}

	return &FrameRecorder{recorder: recorder}, nil
}

// Func records a sample after each frame.
func (r *FrameRecorder) Func(ctx sim.HookCtx) {
	if ctx.Pos != timing.HookPosAfterAdvance {
		return
	}

	info, ok := ctx.Detail.(timing.FrameInfo)
	if !ok {
		return
	}

	name := ""
	if s, ok := ctx.Item.(timing.Strategy); ok {
		name = s.Kind().String()
	}

	err := r.recorder.InsertData(FrameTable, FrameSample{
		Frame:     info.Frame,
		SimTime:   float64(info.Time),
		WallTime:  float64(info.WallTime),
		Strategy:  name,
		Triggered: info.Triggered,
	})
	if err != nil && r.err == nil {
		r.err = err
	}
}

// Err returns the first error met while recording, if any.
func (r *FrameRecorder) Err() error {
	return r.err
}
