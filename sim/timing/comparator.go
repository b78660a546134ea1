package timing

import "github.com/sarchlab/simclock/sim"

// A MeanTeller reports the characteristic time granularity of a strategy.
type MeanTeller interface {
	Mean() float64
}

// Comparator orders timestamps with a tolerance of half the mean of the
// active strategy. In best-effort mode the tolerance follows the measured
// frame interval; in fixed-step modes it is half the step.
type Comparator struct {
	strategy MeanTeller
}

// NewComparator creates a Comparator that takes its tolerance from the given
// strategy.
func NewComparator(strategy MeanTeller) Comparator {
	return Comparator{strategy: strategy}
}

// IsAfter tells if t1 is after t2.
func (c Comparator) IsAfter(t1, t2 sim.VTimeInSec) bool {
	return IsAfter(c.strategy, t1, t2)
}

// IsAfter tells if t1 is after t2, given that timestamps closer than half of
// the strategy's mean cannot be told apart.
func IsAfter(strategy MeanTeller, t1, t2 sim.VTimeInSec) bool {
	tolerance := strategy.Mean() / 2

	return float64(t2-t1) < tolerance
}
