package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sarchlab/simclock/sim/timing"
)

var strategiesCmd = &cobra.Command{
	Use:   "strategies",
	Short: "List the time strategies",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "KIND\tTOKEN\tLABEL")

		for _, d := range timing.Descriptors() {
			fmt.Fprintf(w, "%s\t%s\t%s\n", d.Kind, d.Token, d.Label)
		}

		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(strategiesCmd)
}
