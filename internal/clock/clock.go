package clock

import "time"

// Clock is the only seam through which the application reads wall-clock
// time, so engines stay pure and testable.
type Clock interface {
	Now() time.Time
	NewTicker(d time.Duration) Ticker
}

type Ticker interface {
	C() <-chan time.Time
	Stop()
}
