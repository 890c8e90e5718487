package clock

import (
	"time"

	"github.com/foxseedlab/kaigolog/internal/clock"
)

type SystemClock struct{}

func NewSystemClock() clock.Clock {
	return &SystemClock{}
}

func (c *SystemClock) Now() time.Time {
	return time.Now()
}

func (c *SystemClock) NewTicker(d time.Duration) clock.Ticker {
	return &systemTicker{t: time.NewTicker(d)}
}

type systemTicker struct {
	t *time.Ticker
}

func (t *systemTicker) C() <-chan time.Time {
	return t.t.C
}

func (t *systemTicker) Stop() {
	t.t.Stop()
}
