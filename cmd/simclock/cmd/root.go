// Package cmd provides the command-line interface of simclock.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/simclock/config"
)

var (
	configFile string
	envFile    string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "simclock",
	Short: "simclock keeps the time of a robotics simulation.",
	Long: `simclock keeps the time of a robotics simulation. ` +
		`It can follow the wall clock, advance by a fixed step, or advance ` +
		`only when an external controller sends a trigger over TCP.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "",
		"YAML file with the simulation settings")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env",
		"file with SIMCLOCK_* environment variables, skipped if missing")
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}

func loadConfig() (config.Config, error) {
	return config.Load(configFile, envFile)
}

func printErr(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format, args...)
}
