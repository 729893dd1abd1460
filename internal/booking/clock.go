package booking

import "time"

// Clock supplies "now".  Hold expiry, the cancellation window and the
// checkout sweep all read it, so tests swap in a fixed clock.
type Clock interface {
	Now() time.Time
}

// RealClock reads the system clock.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }
