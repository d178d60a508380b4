// Package engine schedules the render trigger, the transmitter, the MIDI
// pump and the housekeeping task around one explicitly constructed context
// object. The tasks share nothing but the buffer pool.
package engine

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/leandrodaf/picoadk/internal/audio"
	"github.com/leandrodaf/picoadk/internal/dispatch"
	"github.com/leandrodaf/picoadk/internal/metrics"
	"github.com/leandrodaf/picoadk/internal/midi/usbmidi"
	"github.com/leandrodaf/picoadk/internal/status"
	"github.com/leandrodaf/picoadk/sdk/contracts"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

var (
	ErrAlreadyRunning = errors.New("engine is already running")
	ErrNoTransport    = errors.New("engine requires a MIDI transport")
	ErrNoSink         = errors.New("engine requires an audio sink")
)

// pumpBatch is the number of packets drained per pump iteration.
const pumpBatch = 64

// pumpRetry is the pause after a transport error before pumping again.
const pumpRetry = 100 * time.Millisecond

// Engine is the device context: one pool, one registry, one transport.
type Engine struct {
	logger      contracts.Logger
	audio       contracts.AudioConfig
	pool        *audio.Pool
	renderer    *audio.Renderer
	transmitter *audio.Transmitter
	decoder     *usbmidi.Decoder
	registry    *dispatch.Registry
	transport   contracts.Transport
	sink        contracts.Sink
	clock       contracts.Clock
	status      *status.Task
	metrics     *metrics.EngineMetrics

	events    [contracts.KindCount]atomic.Uint64
	unhandled atomic.Uint64
	running   atomic.Bool
	closeOnce sync.Once
	pumpWarn  rate.Sometimes
}

// New builds an engine from fully resolved options: Logger, Transport and
// Sink must be set.
func New(opts *contracts.EngineOptions) (*Engine, error) {
	if opts.Transport == nil {
		return nil, ErrNoTransport
	}
	if opts.Sink == nil {
		return nil, ErrNoSink
	}

	pool, err := audio.NewPool(opts.Audio.Blocks, opts.Audio.BlockFrames, opts.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create buffer pool: %w", err)
	}

	e := &Engine{
		logger:      opts.Logger,
		audio:       opts.Audio,
		pool:        pool,
		renderer:    audio.NewRenderer(pool, opts.Source, opts.Audio.BlockPeriod()),
		transmitter: audio.NewTransmitter(pool, opts.Sink, opts.Logger),
		decoder:     usbmidi.NewDecoder(opts.MIDIEventFilter, opts.Cable),
		registry:    dispatch.NewRegistry(),
		transport:   opts.Transport,
		sink:        opts.Sink,
		clock:       opts.Clock,
		pumpWarn:    rate.Sometimes{First: 1, Interval: time.Second},
	}
	e.status = status.NewTask(opts.Logger, opts.Indicator, opts.StatusInterval, e.Stats)

	reg := opts.Registerer
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	e.metrics, err = metrics.NewEngineMetrics(reg, e.Stats)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// Register installs h for kind, replacing any previous handler.
func (e *Engine) Register(kind contracts.EventKind, h contracts.Handler) {
	e.registry.Register(kind, h)
}

// Unregister removes the handler for kind.
func (e *Engine) Unregister(kind contracts.EventKind) {
	e.registry.Unregister(kind)
}

// ListDevices lists the MIDI inputs known to the transport.
func (e *Engine) ListDevices() ([]contracts.DeviceInfo, error) {
	return e.transport.ListDevices()
}

// Pool exposes the buffer pool, e.g. for hardware completion glue.
func (e *Engine) Pool() *audio.Pool { return e.pool }

// Render runs one render cycle on the caller's goroutine. It is what the
// render trigger calls; hosts with their own hardware clock may call it directly.
func (e *Engine) Render() { e.renderer.Render() }

// Run starts every task and blocks until ctx is cancelled or a task fails.
// A cancelled context is a clean stop and returns nil.
func (e *Engine) Run(ctx context.Context) error {
	if !e.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer e.running.Store(false)

	// A caller-supplied clock outlives this run; only the ticker is ours to stop.
	clock := e.clock
	if clock == nil {
		ticker := NewTickerClock(e.audio.BlockPeriod())
		defer ticker.Stop()
		clock = ticker
	}

	e.logger.Info("Engine starting",
		e.logger.Field().Int("sampleRate", e.audio.SampleRate),
		e.logger.Field().Int("blockFrames", e.audio.BlockFrames),
		e.logger.Field().Int("blocks", e.audio.Blocks),
		e.logger.Field().Duration("blockPeriod", e.audio.BlockPeriod()))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return e.renderLoop(gctx, clock) })
	g.Go(func() error { return e.transmitLoop(gctx) })
	g.Go(func() error { return e.pumpLoop(gctx) })
	g.Go(func() error { return e.statusLoop(gctx) })

	err := g.Wait()
	e.logger.Info("Engine stopped")
	return err
}

// enterPriority pins the goroutine to its thread and sets the thread's
// priority. The thread is never unlocked, so the runtime retires it when the
// goroutine exits instead of reusing a reniced thread.
func (e *Engine) enterPriority(p priority) {
	runtime.LockOSThread()
	if err := setThreadPriority(p); err != nil {
		e.logger.Debug("Could not set thread priority",
			e.logger.Field().String("priority", p.String()),
			e.logger.Field().Error("error", err))
	}
}

func (e *Engine) renderLoop(ctx context.Context, clock contracts.Clock) error {
	e.enterPriority(priorityRealtime)

	tick := clock.C()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-tick:
			e.renderer.Render()
		}
	}
}

func (e *Engine) transmitLoop(ctx context.Context) error {
	e.enterPriority(priorityHigh)
	return e.transmitter.Run(ctx)
}

func (e *Engine) statusLoop(ctx context.Context) error {
	e.enterPriority(priorityLow)
	return e.status.Run(ctx)
}

// pumpLoop drives the transport and feeds every packet through the decoder
// and the registry. It yields once per iteration so lower-priority work is
// not starved when the transport returns immediately.
func (e *Engine) pumpLoop(ctx context.Context) error {
	e.enterPriority(priorityNormal)
	buf := make([]contracts.Packet, pumpBatch)
	for {
		if err := e.transport.Pump(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			e.pumpWarn.Do(func() {
				e.logger.Warn("MIDI transport pump failed", e.logger.Field().Error("error", err))
			})
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(pumpRetry):
			}
			continue
		}

		n := e.transport.Read(buf)
		for _, p := range buf[:n] {
			e.HandlePacket(p)
		}
		runtime.Gosched()
	}
}

// HandlePacket decodes p and dispatches the resulting event, if any.
func (e *Engine) HandlePacket(p contracts.Packet) {
	ev, ok := e.decoder.Decode(p)
	if !ok {
		return
	}
	e.events[ev.Kind].Add(1)
	if !e.dispatch(ev) {
		e.unhandled.Add(1)
	}
}

// dispatch keeps a panicking handler from taking the pump down with it.
func (e *Engine) dispatch(ev contracts.Event) (handled bool) {
	defer func() {
		if r := recover(); r != nil {
			handled = true
			e.logger.Error("MIDI handler panicked",
				e.logger.Field().String("event", ev.String()),
				e.logger.Field().String("panic", fmt.Sprint(r)))
		}
	}()
	return e.registry.Dispatch(ev)
}

// Stats returns a diagnostics snapshot.
func (e *Engine) Stats() contracts.Stats {
	s := contracts.Stats{
		Pool:    e.pool.Stats(),
		Render:  e.renderer.Stats(),
		Decoder: e.decoder.Stats(),
	}
	for k := range e.events {
		s.Dispatch.Events[k] = e.events[k].Load()
	}
	s.Dispatch.Unhandled = e.unhandled.Load()
	return s
}

// Close releases the transport, the sink and the metrics collectors.
func (e *Engine) Close() error {
	var err error
	e.closeOnce.Do(func() {
		e.metrics.Unregister()
		err = errors.Join(e.transport.Close(), e.sink.Close())
	})
	return err
}
