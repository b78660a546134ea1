package simulation

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/tebeka/atexit"

	"github.com/sarchlab/simclock/datarecording"
	"github.com/sarchlab/simclock/monitoring"
	"github.com/sarchlab/simclock/sim"
	"github.com/sarchlab/simclock/sim/timing"
)

// Builder can be used to build a simulation.
type Builder struct {
	kind         timing.Kind
	timingConfig timing.Config
	monitorOn    bool
	monitorPort  int
	recordOn     bool
	recordPath   string
	verbose      bool
	logger       *log.Logger
}

// MakeBuilder creates a new builder. By default, the simulation runs in
// best-effort mode, without monitoring and without recording.
func MakeBuilder() Builder {
	return Builder{
		kind: timing.BestEffort,
	}
}

// WithStrategy sets the time strategy.
func (b Builder) WithStrategy(kind timing.Kind) Builder {
	b.kind = kind
	return b
}

// WithTimingConfig replaces all the parameters of the time strategy.
func (b Builder) WithTimingConfig(cfg timing.Config) Builder {
	b.timingConfig = cfg
	return b
}

// WithFrequency sets the number of frames per simulated second of the
// fixed-step strategies.
func (b Builder) WithFrequency(freq sim.Freq) Builder {
	b.timingConfig.Frequency = freq
	return b
}

// WithSyncAddr sets the address where the external-trigger strategy waits for
// a controller.
func (b Builder) WithSyncAddr(addr string) Builder {
	b.timingConfig.SyncAddr = addr
	return b
}

// WithReceiveTimeout sets how long the external-trigger strategy waits for a
// trigger from a connected controller. Zero waits forever.
func (b Builder) WithReceiveTimeout(d time.Duration) Builder {
	b.timingConfig.ReceiveTimeout = d
	return b
}

// WithClock sets the wall clock read by the strategy.
func (b Builder) WithClock(clock sim.WallClock) Builder {
	b.timingConfig.Clock = clock
	return b
}

// WithLogger sets the logger of the strategy.
func (b Builder) WithLogger(logger *log.Logger) Builder {
	b.logger = logger
	return b
}

// WithMonitoring turns on the monitoring server.
func (b Builder) WithMonitoring() Builder {
	b.monitorOn = true
	return b
}

// WithMonitorPort turns on the monitoring server on the given port.
func (b Builder) WithMonitorPort(port int) Builder {
	b.monitorOn = true
	b.monitorPort = port
	return b
}

// WithoutMonitoring sets the simulation to not use monitoring.
func (b Builder) WithoutMonitoring() Builder {
	b.monitorOn = false
	return b
}

// WithRecording records every frame into <path>.sqlite3. An empty path picks
// a name from the simulation ID.
func (b Builder) WithRecording(path string) Builder {
	b.recordOn = true
	b.recordPath = path
	return b
}

// WithVerbose writes a log line for every frame.
func (b Builder) WithVerbose() Builder {
	b.verbose = true
	return b
}

func (b Builder) parametersMustBeValid() error {
	if timing.Token(b.kind) == "" {
		return fmt.Errorf("simulation: %w: %s", timing.ErrUnknownStrategy, b.kind)
	}

	if !b.monitorOn && b.monitorPort != 0 {
		return errors.New(
			"simulation: monitor port cannot be set when monitoring is disabled")
	}

	return nil
}

// Build builds the simulation. The simulation is terminated when the program
// exits through atexit, even if Terminate is never called.
func (b Builder) Build() (*Simulation, error) {
	err := b.parametersMustBeValid()
	if err != nil {
		return nil, err
	}

	s := &Simulation{
		id: sim.NewXIDGenerator().Generate(),
	}

	cfg := b.timingConfig
	if b.logger != nil {
		cfg.Logger = b.logger
	}

	s.strategy, err = timing.Make(b.kind, cfg)
	if err != nil {
		return nil, fmt.Errorf("simulation: %w", err)
	}

	s.comparator = timing.NewComparator(s.strategy)
	s.observer = timing.NewObserver(s.strategy)
	s.strategy.AcceptHook(s.observer)

	if b.verbose {
		s.strategy.AcceptHook(timing.NewStrategyLogHook(cfg.Logger))
	}

	err = b.buildRecording(s)
	if err != nil {
		_ = s.strategy.Close()
		return nil, err
	}

	err = b.buildMonitor(s)
	if err != nil {
		_ = s.Terminate()
		return nil, err
	}

	atexit.Register(func() { _ = s.Terminate() })

	return s, nil
}

func (b Builder) buildRecording(s *Simulation) error {
	if !b.recordOn {
		return nil
	}

	path := b.recordPath
	if path == "" {
		path = "simclock_" + s.id
	}

	recorder, err := datarecording.New(path)
	if err != nil {
		return fmt.Errorf("simulation: %w", err)
	}

	s.dataRecorder = recorder

	s.frameRecorder, err = datarecording.NewFrameRecorder(recorder)
	if err != nil {
		_ = recorder.Close()
		return fmt.Errorf("simulation: %w", err)
	}

	s.strategy.AcceptHook(s.frameRecorder)

	s.runRecorder, err = datarecording.NewRunRecorder(recorder)
	if err != nil {
		_ = recorder.Close()
		return fmt.Errorf("simulation: %w", err)
	}

	s.runRecorder.Start()
	s.runRecorder.Set("Simulation ID", s.id)
	s.runRecorder.Set("Strategy", timing.Token(b.kind))

	if b.kind != timing.BestEffort {
		s.runRecorder.Set("Frequency",
			fmt.Sprint(float64(b.timingConfig.Frequency)))
	}

	return nil
}

func (b Builder) buildMonitor(s *Simulation) error {
	if !b.monitorOn {
		return nil
	}

	s.monitor = monitoring.NewMonitor()
	if b.monitorPort > 0 {
		s.monitor.WithPortNumber(b.monitorPort)
	}

	s.monitor.RegisterSource(s)

	_, err := s.monitor.StartServer()
	if err != nil {
		return fmt.Errorf("simulation: %w", err)
	}

	return nil
}
