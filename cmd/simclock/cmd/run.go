package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sarchlab/simclock/config"
	"github.com/sarchlab/simclock/sim"
	"github.com/sarchlab/simclock/sim/timing"
	"github.com/sarchlab/simclock/simulation"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a simulation clock",
	Long: `Run a simulation clock in a headless frame loop. ` +
		`The loop stops after --max-frames frames, or on interrupt.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		err = applyRunFlags(cmd, &cfg)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(),
			os.Interrupt, syscall.SIGTERM)
		defer stop()

		openMonitor, _ := cmd.Flags().GetBool("open-monitor")

		return runSimulation(ctx, cmd.OutOrStdout(), cfg, openMonitor)
	},
}

func init() {
	f := runCmd.Flags()
	f.StringP("strategy", "s", "",
		"time strategy, by name or token (see the strategies command)")
	f.Float64P("frequency", "f", 0, "frames per simulated second")
	f.String("sync-addr", "",
		"address where the external-trigger strategy waits for a controller")
	f.Duration("receive-timeout", 0,
		"how long to wait for a trigger from a connected controller, 0 waits forever")
	f.Bool("monitor", false, "serve the monitoring API")
	f.Int("monitor-port", 0, "port of the monitoring API, implies --monitor")
	f.Bool("open-monitor", false, "open the monitor in a browser")
	f.String("record", "", "record the frames into <path>.sqlite3")
	f.Uint64P("max-frames", "n", 0, "stop after this many frames, 0 runs forever")
	f.BoolP("verbose", "v", false, "log every frame")

	rootCmd.AddCommand(runCmd)
}

func applyRunFlags(cmd *cobra.Command, cfg *config.Config) error {
	f := cmd.Flags()

	if f.Changed("strategy") {
		name, _ := f.GetString("strategy")

		kind, ok := timing.ParseKind(name)
		if !ok {
			return fmt.Errorf("--strategy %q: %w", name, timing.ErrUnknownStrategy)
		}

		cfg.Strategy = kind
	}

	if f.Changed("frequency") {
		cfg.Frequency, _ = f.GetFloat64("frequency")
	}

	if f.Changed("sync-addr") {
		cfg.SyncAddr, _ = f.GetString("sync-addr")
	}

	if f.Changed("receive-timeout") {
		cfg.ReceiveTimeout, _ = f.GetDuration("receive-timeout")
	}

	if f.Changed("monitor") {
		cfg.Monitor, _ = f.GetBool("monitor")
	}

	if f.Changed("monitor-port") {
		cfg.MonitorPort, _ = f.GetInt("monitor-port")
		cfg.Monitor = true
	}

	if f.Changed("record") {
		cfg.Record, _ = f.GetString("record")
	}

	if f.Changed("max-frames") {
		cfg.MaxFrames, _ = f.GetUint64("max-frames")
	}

	if f.Changed("verbose") {
		cfg.Verbose, _ = f.GetBool("verbose")
	}

	if openMonitor, _ := f.GetBool("open-monitor"); openMonitor {
		cfg.Monitor = true
	}

	return cfg.Validate()
}

func buildSimulation(cfg config.Config) (*simulation.Simulation, error) {
	b := simulation.MakeBuilder().
		WithStrategy(cfg.Strategy).
		WithTimingConfig(cfg.TimingConfig())

	if cfg.Monitor {
		b = b.WithMonitorPort(cfg.MonitorPort)
	}

	if cfg.Record != "" {
		b = b.WithRecording(cfg.Record)
	}

	if cfg.Verbose {
		b = b.WithVerbose()
	}

	return b.Build()
}

func runSimulation(
	ctx context.Context,
	out io.Writer,
	cfg config.Config,
	openMonitor bool,
) error {
	s, err := buildSimulation(cfg)
	if err != nil {
		return err
	}

	loop := simulation.NewHostLoop(s).WithMaxFrames(cfg.MaxFrames)

	// The external trigger sets the pace itself.
	if cfg.Strategy != timing.FixedSimulationStepExternalTrigger {
		loop.WithPace(sim.Freq(cfg.Frequency))
	}

	s.RegisterLoop(loop)

	if openMonitor && s.GetMonitor() != nil {
		err = s.GetMonitor().OpenBrowser()
		if err != nil {
			printErr("Cannot open the monitor: %v\n", err)
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Closing the strategy unblocks a frame waiting for a trigger.
	closeWhenDone(ctx, s.Strategy())

	runErr := loop.Run(ctx)
	if errors.Is(runErr, context.Canceled) {
		runErr = nil
	}

	printSnapshot(out, s.Snapshot())

	return errors.Join(runErr, s.Terminate())
}

// closeWhenDone closes c once ctx is done. The returned channel is closed
// after c has been closed.
func closeWhenDone(ctx context.Context, c io.Closer) <-chan struct{} {
	closed := make(chan struct{})

	go func() {
		defer close(closed)

		<-ctx.Done()
		_ = c.Close()
	}()

	return closed
}

func printSnapshot(out io.Writer, snapshot timing.Snapshot) {
	fmt.Fprintf(out, "%s: %d frames, time %.6f\n",
		snapshot.Name, snapshot.Frame, snapshot.Time)

	keys := make([]string, 0, len(snapshot.Statistics))
	for k := range snapshot.Statistics {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	for _, k := range keys {
		fmt.Fprintf(out, "  %s: %g\n", k, snapshot.Statistics[k])
	}
}
