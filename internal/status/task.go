// Package status runs the low-priority housekeeping task: it blinks the
// status indicator and reports render degradation.
package status

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/leandrodaf/picoadk/sdk/contracts"
	"golang.org/x/time/rate"
)

// DefaultInterval is the indicator toggle period.
const DefaultInterval = 500 * time.Millisecond

// NopIndicator ignores every state change.
type NopIndicator struct{}

func (NopIndicator) Set(bool) {}

// FlagIndicator records the last state; handy for headless runs and tests.
type FlagIndicator struct {
	on      atomic.Bool
	toggles atomic.Uint64
}

func (f *FlagIndicator) Set(on bool) {
	if f.on.Swap(on) != on {
		f.toggles.Add(1)
	}
}

func (f *FlagIndicator) On() bool        { return f.on.Load() }
func (f *FlagIndicator) Toggles() uint64 { return f.toggles.Load() }

// Task toggles the indicator every interval and warns, at most once per
// ReportEvery, when render cycles were dropped, overran or faulted since the
// previous tick.
type Task struct {
	logger    contracts.Logger
	indicator contracts.Indicator
	interval  time.Duration
	stats     func() contracts.Stats
	limiter   *rate.Limiter
	last      contracts.Stats
}

// ReportEvery bounds how often degradation warnings are logged.
const ReportEvery = 5 * time.Second

// NewTask builds the housekeeping task.
func NewTask(logger contracts.Logger, indicator contracts.Indicator, interval time.Duration, stats func() contracts.Stats) *Task {
	if indicator == nil {
		indicator = NopIndicator{}
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Task{
		logger:    logger,
		indicator: indicator,
		interval:  interval,
		stats:     stats,
		limiter:   rate.NewLimiter(rate.Every(ReportEvery), 1),
	}
}

// Run blinks until ctx is done, leaving the indicator off.
func (t *Task) Run(ctx context.Context) error {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()
	defer t.indicator.Set(false)

	t.last = t.stats()
	on := false
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			on = !on
			t.indicator.Set(on)
			t.check()
		}
	}
}

func (t *Task) check() {
	cur := t.stats()
	d := Degradation(t.last, cur)
	t.last = cur
	if d.Zero() || !t.limiter.Allow() {
		return
	}
	t.logger.Warn("Render pipeline degraded",
		t.logger.Field().Uint64("droppedCycles", d.Dropped),
		t.logger.Field().Uint64("overruns", d.Overruns),
		t.logger.Field().Uint64("faults", d.Faults),
		t.logger.Field().Uint64("clampedReleases", d.Clamped),
		t.logger.Field().Int("freeBlocks", cur.Pool.Free))
}

// Delta holds counter increases between two snapshots.
type Delta struct {
	Dropped  uint64
	Overruns uint64
	Faults   uint64
	Clamped  uint64
}

// Zero reports whether nothing degraded.
func (d Delta) Zero() bool {
	return d == Delta{}
}

// Degradation compares two snapshots taken in order.
func Degradation(prev, cur contracts.Stats) Delta {
	return Delta{
		Dropped:  cur.Render.Dropped - prev.Render.Dropped,
		Overruns: cur.Render.Overruns - prev.Render.Overruns,
		Faults:   cur.Render.Faults - prev.Render.Faults,
		Clamped:  cur.Pool.Clamped - prev.Pool.Clamped,
	}
}
