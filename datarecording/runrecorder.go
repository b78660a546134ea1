package datarecording

import (
	"os"
	"strings"
	"time"
)

// RunTable is the table that RunRecorder writes to.
const RunTable = "run_info"

// RunInfo is one property of a recorded run.
type RunInfo struct {
	Property string
	Value    string
}

const runTimeFormat = "2006-01-02 15:04:05.000000000"

// RunRecorder records how a run was started and when it ended.
type RunRecorder struct {
	recorder DataRecorder
	entries  []RunInfo
}

// NewRunRecorder creates the run table.
func NewRunRecorder(recorder DataRecorder) (*RunRecorder, error) {
	err := recorder.CreateTable(RunTable, RunInfo{})
	if err != nil {
		return nil, err
	}

	return &RunRecorder{recorder: recorder}, nil
}

// Start notes the start time, the command, and the working directory.
func (r *RunRecorder) Start() {
	r.Set("Start Time", time.Now().Format(runTimeFormat))
	r.Set("Command", strings.Join(os.Args, " "))

	cwd, err := os.Getwd()
	if err == nil {
		r.Set("Working Directory", cwd)
	}
}

// Set notes an extra property of the run.
func (r *RunRecorder) Set(property, value string) {
	r.entries = append(r.entries, RunInfo{Property: property, Value: value})
}

// End writes the noted properties along with the end time.
func (r *RunRecorder) End() error {
	r.Set("End Time", time.Now().Format(runTimeFormat))

	for _, entry := range r.entries {
		err := r.recorder.InsertData(RunTable, entry)
		if err != nil {
			return err
		}
	}

	r.entries = nil

	return r.recorder.Flush()
}
