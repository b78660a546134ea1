package sim

import (
	"log"
	"math"
)

// Freq defines the type of frequency
type Freq float64

// Defines the unit of frequency
const (
	Hz Freq = 1
)

// Period returns the time between two consecutive frames.
func (f Freq) Period() VTimeInSec {
	if f == 0 {
		log.Panic("frequency cannot be 0")
	}

	return VTimeInSec(1.0 / f)
}

// Cycle converts a duration to the number of frames that fit in it.
func (f Freq) Cycle(time VTimeInSec) uint64 {
	return uint64(math.Round(float64(time) * float64(f)))
}
