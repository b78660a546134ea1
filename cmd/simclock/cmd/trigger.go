package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sarchlab/simclock/sim"
	"github.com/sarchlab/simclock/sim/timing"
)

var triggerCmd = &cobra.Command{
	Use:   "trigger [addr]",
	Short: "Drive a simulation that waits for external triggers",
	Long: `Connect to a simulation running the external-trigger strategy and ` +
		`authorize its frames. Without an address, the sync address of the ` +
		`configuration is used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := ""
		if len(args) == 1 {
			addr = args[0]
		} else {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			addr = dialAddr(cfg.SyncAddr)
		}

		count, _ := cmd.Flags().GetUint64("count")
		rate, _ := cmd.Flags().GetFloat64("rate")

		ctx, stop := signal.NotifyContext(cmd.Context(),
			os.Interrupt, syscall.SIGTERM)
		defer stop()

		sent, err := sendTriggers(ctx, addr, count, sim.Freq(rate))

		fmt.Fprintf(cmd.OutOrStdout(), "Sent %d triggers to %s\n", sent, addr)

		return err
	},
}

func init() {
	triggerCmd.Flags().Uint64P("count", "n", 1,
		"number of triggers to send, 0 sends until interrupted")
	triggerCmd.Flags().Float64P("rate", "r", 0,
		"triggers per second, 0 sends as fast as possible")

	rootCmd.AddCommand(triggerCmd)
}

// dialAddr turns a listen address such as ":5000" into one that can be
// dialed.
func dialAddr(listenAddr string) string {
	if len(listenAddr) > 0 && listenAddr[0] == ':' {
		return "localhost" + listenAddr
	}

	return listenAddr
}

func sendTriggers(
	ctx context.Context,
	addr string,
	count uint64,
	rate sim.Freq,
) (uint64, error) {
	controller, err := timing.DialController(ctx, addr)
	if err != nil {
		return 0, err
	}
	defer controller.Close()

	var ticker *time.Ticker
	if rate > 0 {
		ticker = time.NewTicker(
			time.Duration(float64(rate.Period()) * float64(time.Second)))
		defer ticker.Stop()
	}

	sent := uint64(0)
	for count == 0 || sent < count {
		err = controller.Step()
		if err != nil {
			return sent, err
		}

		sent++

		if ticker == nil {
			if ctx.Err() != nil {
				return sent, nil
			}

			continue
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return sent, nil
		}
	}

	return sent, nil
}
