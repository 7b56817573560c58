package timer

import "time"

// Ticker delivers periodic ticks until stopped
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// Clock is the time source for an engine
type Clock interface {
	Now() time.Time
	NewTicker(d time.Duration) Ticker
}

// SystemClock reads the wall clock. The monotonic reading is stripped so
// elapsed time keeps counting while the machine is suspended.
type SystemClock struct{}

// Now returns the current wall-clock time
func (SystemClock) Now() time.Time {
	return time.Now().Round(0)
}

// NewTicker wraps time.NewTicker
func (SystemClock) NewTicker(d time.Duration) Ticker {
	return systemTicker{t: time.NewTicker(d)}
}

type systemTicker struct {
	t *time.Ticker
}

func (s systemTicker) C() <-chan time.Time { return s.t.C }
func (s systemTicker) Stop() { s.t.Stop() }
