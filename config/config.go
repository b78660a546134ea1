// Package config loads the settings of a simulation run.
//
// Settings are layered: built-in defaults, then an optional YAML file, then
// a .env file and the process environment. Command-line flags are applied
// last by the caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/sarchlab/simclock/sim"
	"github.com/sarchlab/simclock/sim/timing"
)

// Environment variables read by Load.
const (
	EnvStrategy       = "SIMCLOCK_STRATEGY"
	EnvFrequency      = "SIMCLOCK_FREQUENCY"
	EnvSyncAddr       = "SIMCLOCK_SYNC_ADDR"
	EnvReceiveTimeout = "SIMCLOCK_RECEIVE_TIMEOUT"
	EnvMonitorPort    = "SIMCLOCK_MONITOR_PORT"
	EnvRecord         = "SIMCLOCK_RECORD"
)

// Config holds the settings of a simulation run.
type Config struct {
	Strategy       timing.Kind   `yaml:"strategy"`
	Frequency      float64       `yaml:"frequency"`
	SyncAddr       string        `yaml:"sync_addr"`
	ReceiveTimeout time.Duration `yaml:"receive_timeout"`
	Monitor        bool          `yaml:"monitor"`
	MonitorPort    int           `yaml:"monitor_port"`
	Record         string        `yaml:"record"`
	MaxFrames      uint64        `yaml:"max_frames"`
	Verbose        bool          `yaml:"verbose"`
}

// Default returns the settings used when nothing else is given.
func Default() Config {
	return Config{
		Strategy:  timing.BestEffort,
		Frequency: 60,
		SyncAddr:  timing.DefaultSyncAddr,
	}
}

// Load builds the configuration from the defaults, the YAML file at path (if
// path is not empty), the .env files given (missing files are skipped), and
// the environment.
func Load(path string, envFiles ...string) (Config, error) {
	cfg := Default()

	if path != "" {
		err := cfg.loadFile(path)
		if err != nil {
			return cfg, err
		}
	}

	err := loadEnvFiles(envFiles)
	if err != nil {
		return cfg, err
	}

	err = cfg.applyEnv()
	if err != nil {
		return cfg, err
	}

	return cfg, cfg.Validate()
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	err = yaml.Unmarshal(data, c)
	if err != nil {
		return fmt.Errorf("config: %s: %w", path, err)
	}

	return nil
}

func loadEnvFiles(files []string) error {
	for _, f := range files {
		err := godotenv.Load(f)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}

		if err != nil {
			return fmt.Errorf("config: %s: %w", f, err)
		}
	}

	return nil
}

func (c *Config) applyEnv() error {
	if v, ok := os.LookupEnv(EnvStrategy); ok {
		kind, found := timing.ParseKind(v)
		if !found {
			return fmt.Errorf("config: %s=%q: %w",
				EnvStrategy, v, timing.ErrUnknownStrategy)
		}

		c.Strategy = kind
	}

	if v, ok := os.LookupEnv(EnvFrequency); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("config: %s: %w", EnvFrequency, err)
		}

		c.Frequency = f
	}

	if v, ok := os.LookupEnv(EnvSyncAddr); ok {
		c.SyncAddr = v
	}

	if v, ok := os.LookupEnv(EnvReceiveTimeout); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: %s: %w", EnvReceiveTimeout, err)
		}

		c.ReceiveTimeout = d
	}

	if v, ok := os.LookupEnv(EnvMonitorPort); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: %s: %w", EnvMonitorPort, err)
		}

		c.Monitor = true
		c.MonitorPort = port
	}

	if v, ok := os.LookupEnv(EnvRecord); ok {
		c.Record = v
	}

	return nil
}

// Validate checks that the settings can build a simulation.
func (c Config) Validate() error {
	if timing.Token(c.Strategy) == "" {
		return fmt.Errorf("config: %w: %s", timing.ErrUnknownStrategy,
			c.Strategy)
	}

	if c.Strategy != timing.BestEffort && c.Frequency <= 0 {
		return fmt.Errorf("config: %w", timing.ErrZeroFrequency)
	}

	if c.ReceiveTimeout < 0 {
		return errors.New("config: receive timeout cannot be negative")
	}

	return nil
}

// TimingConfig converts the settings into the parameters of a strategy.
func (c Config) TimingConfig() timing.Config {
	return timing.Config{
		Frequency:      sim.Freq(c.Frequency),
		SyncAddr:       c.SyncAddr,
		ReceiveTimeout: c.ReceiveTimeout,
	}
}
