package sim

import "time"

// VTimeInSec is the simulated time, in seconds.
type VTimeInSec float64

// TimeTeller can tell the current simulated time.
type TimeTeller interface {
	CurrentTime() VTimeInSec
}

// A WallClock reports the host's real (wall-clock) time. Strategies read the
// wall clock through this interface so that tests can drive it by hand.
type WallClock interface {
	Now() time.Time
}

// SystemClock is the WallClock backed by the operating system clock.
type SystemClock struct{}

// Now returns the current time of the operating system.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// WallTime converts a wall-clock instant to seconds since the Unix epoch.
func WallTime(t time.Time) VTimeInSec {
	return VTimeInSec(float64(t.UnixNano()) / 1e9)
}

// WallNow reads the clock and converts the result with WallTime.
func WallNow(c WallClock) VTimeInSec {
	return WallTime(c.Now())
}
