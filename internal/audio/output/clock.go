package output

import (
	"sync/atomic"
	"time"
)

// PullClock ticks once for every block of frames the device pulls.
type PullClock struct {
	fifo       *FIFO
	frameBytes int
	blockBytes int
	pending    int // bytes pulled since the last tick; device callback only
	ch         chan time.Time
	missed     atomic.Uint64
}

// NewPullClock ticks every blockFrames frames of channels interleaved samples
// pulled from fifo. Up to depth ticks are buffered for a late render loop.
func NewPullClock(fifo *FIFO, blockFrames, channels, depth int) *PullClock {
	if depth < 1 {
		depth = 1
	}
	frameBytes := channels * BytesPerSample
	return &PullClock{
		fifo:       fifo,
		frameBytes: frameBytes,
		blockBytes: blockFrames * frameBytes,
		ch:         make(chan time.Time, depth),
	}
}

// Pull fills out from the FIFO and emits the ticks it owes. It never blocks.
func (c *PullClock) Pull(out []byte) int {
	n := c.fifo.Pull(out)
	c.pending += len(out) - len(out)%c.frameBytes
	for c.pending >= c.blockBytes {
		c.pending -= c.blockBytes
		select {
		case c.ch <- time.Now():
		default:
			c.missed.Add(1)
		}
	}
	return n
}

func (c *PullClock) C() <-chan time.Time { return c.ch }

// Stop is a no-op; the clock lives as long as its device.
func (c *PullClock) Stop() {}

// Missed counts ticks dropped because the render loop fell behind.
func (c *PullClock) Missed() uint64 { return c.missed.Load() }
