package simulation

import "github.com/sarchlab/simclock/sim"

// A LocalClock is the simulated time as seen by one robot. Each robot may run
// ahead of or behind the simulation by a fixed shift.
type LocalClock struct {
	teller      sim.TimeTeller
	shiftMillis float64
}

// NewLocalClock creates a LocalClock that follows the given time with a shift
// in milliseconds.
func NewLocalClock(teller sim.TimeTeller, shiftMillis float64) LocalClock {
	return LocalClock{teller: teller, shiftMillis: shiftMillis}
}

// Millis returns the shifted time in milliseconds.
func (c LocalClock) Millis() float64 {
	return float64(c.teller.CurrentTime())*1000 + c.shiftMillis
}

// CurrentTime returns the shifted time in seconds.
func (c LocalClock) CurrentTime() sim.VTimeInSec {
	return sim.VTimeInSec(c.Millis() / 1000)
}

// Shift returns the shift in milliseconds.
func (c LocalClock) Shift() float64 {
	return c.shiftMillis
}
