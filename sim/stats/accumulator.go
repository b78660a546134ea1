// Package stats provides running statistics over sample streams.
package stats

// Accumulator keeps a running mean and variance of a stream of samples. It
// uses Welford's online algorithm, so no sample history is retained.
type Accumulator struct {
	count uint64
	mean  float64
	m2    float64
}

// Update folds one sample into the estimate.
func (a *Accumulator) Update(sample float64) {
	a.count++
	delta := sample - a.mean
	a.mean += delta / float64(a.count)
	a.m2 += delta * (sample - a.mean)
}

// Count returns the number of samples seen.
func (a *Accumulator) Count() uint64 {
	return a.count
}

// Mean returns the arithmetic mean of the samples, or 0 if there are none.
func (a *Accumulator) Mean() float64 {
	return a.mean
}

// Variance returns the population variance of the samples, or 0 if there are
// none.
func (a *Accumulator) Variance() float64 {
	if a.count == 0 {
		return 0
	}

	return a.m2 / float64(a.count)
}

// Reset drops all the samples.
func (a *Accumulator) Reset() {
	*a = Accumulator{}
}
