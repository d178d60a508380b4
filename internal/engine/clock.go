package engine

import (
	"time"

	"github.com/leandrodaf/picoadk/sdk/contracts"
)

// tickerClock is the default render trigger.
type tickerClock struct {
	t *time.Ticker
}

// NewTickerClock returns a clock firing every period.
func NewTickerClock(period time.Duration) contracts.Clock {
	return &tickerClock{t: time.NewTicker(period)}
}

func (c *tickerClock) C() <-chan time.Time { return c.t.C }

func (c *tickerClock) Stop() { c.t.Stop() }
