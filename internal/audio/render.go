package audio

import (
	"sync/atomic"
	"time"

	"github.com/leandrodaf/picoadk/sdk/contracts"
)

// Renderer is the block-boundary callback: it fills one block per call.
type Renderer struct {
	pool   *Pool
	source contracts.SampleSource
	period time.Duration

	cycles   atomic.Uint64
	rendered atomic.Uint64
	dropped  atomic.Uint64
	overruns atomic.Uint64
	faults   atomic.Uint64
}

// NewRenderer builds a renderer over pool. A nil source renders silence.
// period is the block period used for overrun accounting; zero disables it.
func NewRenderer(pool *Pool, source contracts.SampleSource, period time.Duration) *Renderer {
	if source == nil {
		source = contracts.Silence
	}
	return &Renderer{pool: pool, source: source, period: period}
}

// Render fills and releases one block. When no block is free the cycle is
// dropped and Render returns at once; it never waits, allocates or logs.
func (r *Renderer) Render() {
	start := time.Now()
	r.cycles.Add(1)

	b, ok := r.pool.Acquire(false)
	if !ok {
		r.dropped.Add(1)
		return
	}

	if !r.fill(b) {
		r.faults.Add(1)
		clear(b.samples)
	}
	_ = r.pool.Release(b, b.Capacity())
	r.rendered.Add(1)

	if r.period > 0 && time.Since(start) > r.period {
		r.overruns.Add(1)
	}
}

// fill runs the sample source over every frame. A panicking source leaves
// the block to be silenced by the caller.
func (r *Renderer) fill(b *Block) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	s := b.samples
	for i, n := 0, b.Capacity(); i < n; i++ {
		l, rr := r.source.Fill(i)
		s[i*Channels] = l
		s[i*Channels+1] = rr
	}
	return true
}

// Stats returns a snapshot of the render counters.
func (r *Renderer) Stats() contracts.RenderStats {
	return contracts.RenderStats{
		Cycles:   r.cycles.Load(),
		Rendered: r.rendered.Load(),
		Dropped:  r.dropped.Load(),
		Overruns: r.overruns.Load(),
		Faults:   r.faults.Load(),
	}
}
