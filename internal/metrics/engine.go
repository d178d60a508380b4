// Package metrics exposes engine counters as Prometheus collectors.
package metrics

import (
	"fmt"

	"github.com/leandrodaf/picoadk/sdk/contracts"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "picoadk"

// StatsFunc returns the current engine counters.
type StatsFunc func() contracts.Stats

// EngineMetrics reads engine counters at scrape time, so the render path
// only ever touches its own atomics.
type EngineMetrics struct {
	registerer prometheus.Registerer
	collectors []prometheus.Collector
}

// NewEngineMetrics creates and registers the engine collectors on reg.
func NewEngineMetrics(reg prometheus.Registerer, stats StatsFunc) (*EngineMetrics, error) {
	m := &EngineMetrics{registerer: reg}

	counter := func(subsystem, name, help string, labels prometheus.Labels, get func(contracts.Stats) uint64) {
		m.collectors = append(m.collectors, prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: labels,
		}, func() float64 { return float64(get(stats())) }))
	}
	gauge := func(subsystem, name, help string, get func(contracts.Stats) int) {
		m.collectors = append(m.collectors, prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      name,
			Help:      help,
		}, func() float64 { return float64(get(stats())) }))
	}

	counter("render", "cycles_total", "Render callback invocations.", nil,
		func(s contracts.Stats) uint64 { return s.Render.Cycles })
	counter("render", "dropped_total", "Render cycles skipped because no block was free.", nil,
		func(s contracts.Stats) uint64 { return s.Render.Dropped })
	counter("render", "overruns_total", "Render cycles that exceeded the block period.", nil,
		func(s contracts.Stats) uint64 { return s.Render.Overruns })
	counter("render", "faults_total", "Render cycles whose sample source panicked.", nil,
		func(s contracts.Stats) uint64 { return s.Render.Faults })
	counter("pool", "clamped_total", "Releases whose frame count exceeded block capacity.", nil,
		func(s contracts.Stats) uint64 { return s.Pool.Clamped })
	counter("pool", "completed_total", "Blocks returned to the pool after transmission.", nil,
		func(s contracts.Stats) uint64 { return s.Pool.Completed })
	gauge("pool", "free_blocks", "Blocks waiting in the free ring.",
		func(s contracts.Stats) int { return s.Pool.Free })
	gauge("pool", "filled_blocks", "Blocks waiting for transmission.",
		func(s contracts.Stats) int { return s.Pool.Filled })

	for result, get := range map[string]func(contracts.Stats) uint64{
		"decoded":  func(s contracts.Stats) uint64 { return s.Decoder.Decoded },
		"dropped":  func(s contracts.Stats) uint64 { return s.Decoder.Dropped },
		"filtered": func(s contracts.Stats) uint64 { return s.Decoder.Filtered },
	} {
		counter("midi", "packets_total", "USB-MIDI packets by decode result.",
			prometheus.Labels{"result": result}, get)
	}

	for k := contracts.EventKind(0); k < contracts.KindCount; k++ {
		kind := k
		counter("midi", "events_total", "Decoded MIDI events by kind.",
			prometheus.Labels{"kind": kind.String()},
			func(s contracts.Stats) uint64 { return s.Dispatch.Events[kind] })
	}
	counter("midi", "unhandled_total", "Events dropped because no handler was registered.", nil,
		func(s contracts.Stats) uint64 { return s.Dispatch.Unhandled })

	for _, c := range m.collectors {
		if err := reg.Register(c); err != nil {
			m.Unregister()
			return nil, fmt.Errorf("failed to register engine metrics: %w", err)
		}
	}
	return m, nil
}

// Unregister removes every collector from the registry.
func (m *EngineMetrics) Unregister() {
	for _, c := range m.collectors {
		m.registerer.Unregister(c)
	}
}
