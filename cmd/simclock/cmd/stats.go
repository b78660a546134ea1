package cmd

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/sarchlab/simclock/datarecording"
	"github.com/sarchlab/simclock/sim"
	"github.com/sarchlab/simclock/sim/stats"
)

var statsCmd = &cobra.Command{
	Use:   "stats <recording.sqlite3>",
	Short: "Summarize a recorded run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reader, err := datarecording.NewReader(args[0])
		if err != nil {
			return err
		}
		defer reader.Close()

		return summarize(cmd.Context(), cmd.OutOrStdout(), reader)
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

// frameSummary describes the frames of a recorded run.
type frameSummary struct {
	Frames    int
	Triggered int
	SimStep   stats.Accumulator
	WallStep  stats.Accumulator
	Drift     float64
	WallSpan  float64
}

// expectedFrames returns how many frames a run paced at freq would have
// produced over the recorded wall-clock span.
func (s frameSummary) expectedFrames(freq sim.Freq) uint64 {
	if s.Frames == 0 {
		return 0
	}

	return freq.Cycle(sim.VTimeInSec(s.WallSpan)) + 1
}

func summarizeFrames(frames []*datarecording.FrameSample) frameSummary {
	s := frameSummary{Frames: len(frames)}

	for i, f := range frames {
		if f.Triggered {
			s.Triggered++
		}

		if i == 0 {
			continue
		}

		prev := frames[i-1]
		s.SimStep.Update(f.SimTime - prev.SimTime)
		s.WallStep.Update(f.WallTime - prev.WallTime)
	}

	if len(frames) > 0 {
		last := frames[len(frames)-1]
		s.Drift = last.SimTime - last.WallTime
		s.WallSpan = last.WallTime - frames[0].WallTime
	}

	return s
}

func summarize(
	ctx context.Context,
	out io.Writer,
	reader datarecording.DataReader,
) error {
	reader.MapTable(datarecording.RunTable, datarecording.RunInfo{})
	reader.MapTable(datarecording.FrameTable, datarecording.FrameSample{})

	runs, _, err := reader.Query(ctx, datarecording.RunTable,
		datarecording.QueryParams{})
	if err != nil {
		return err
	}

	var freq sim.Freq

	for _, r := range runs {
		info := r.(*datarecording.RunInfo)
		fmt.Fprintf(out, "%s: %s\n", info.Property, info.Value)

		if info.Property == "Frequency" {
			f, err := strconv.ParseFloat(info.Value, 64)
			if err == nil {
				freq = sim.Freq(f)
			}
		}
	}

	rows, _, err := reader.Query(ctx, datarecording.FrameTable,
		datarecording.QueryParams{OrderBy: "Frame"})
	if err != nil {
		return err
	}

	frames := make([]*datarecording.FrameSample, 0, len(rows))
	for _, r := range rows {
		frames = append(frames, r.(*datarecording.FrameSample))
	}

	s := summarizeFrames(frames)

	fmt.Fprintf(out, "frames: %d (%d triggered)\n", s.Frames, s.Triggered)
	fmt.Fprintf(out, "simulated step: mean %g, variance %g\n",
		s.SimStep.Mean(), s.SimStep.Variance())
	fmt.Fprintf(out, "wall step: mean %g, variance %g\n",
		s.WallStep.Mean(), s.WallStep.Variance())
	fmt.Fprintf(out, "drift from real time: %g\n", s.Drift)

	if freq > 0 {
		fmt.Fprintf(out, "frames expected at %g Hz: %d\n",
			float64(freq), s.expectedFrames(freq))
	}

	return nil
}
