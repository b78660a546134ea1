// Command simclock runs and drives simulation clocks.
package main

import "github.com/sarchlab/simclock/cmd/simclock/cmd"

func main() {
	cmd.Execute()
}
