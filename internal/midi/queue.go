// Package midi holds the packet queue shared by the host MIDI transports.
package midi

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/leandrodaf/picoadk/internal/midi/usbmidi"
	"github.com/leandrodaf/picoadk/sdk/contracts"
	"golang.org/x/time/rate"
)

// DefaultQueueSize is the packet backlog kept between OS callbacks and the pump.
const DefaultQueueSize = 256

// Queue buffers packets pushed from OS MIDI callbacks until the pump task
// reads them. Push never blocks; Pump and Read must be called from a single
// goroutine.
type Queue struct {
	logger  contracts.Logger
	ch      chan contracts.Packet
	pending contracts.Packet
	held    bool
	dropped atomic.Uint64
	warn    rate.Sometimes
}

// NewQueue creates a queue holding up to size packets.
func NewQueue(size int, logger contracts.Logger) *Queue {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Queue{
		logger: logger,
		ch:     make(chan contracts.Packet, size),
		warn:   rate.Sometimes{First: 1, Interval: time.Second},
	}
}

// Push enqueues p, dropping it when the queue is full.
func (q *Queue) Push(p contracts.Packet) bool {
	select {
	case q.ch <- p:
		return true
	default:
		q.dropped.Add(1)
		q.warn.Do(func() {
			q.logger.Warn("Packet queue full; dropping MIDI packet",
				q.logger.Field().Uint64("dropped", q.dropped.Load()))
		})
		return false
	}
}

// PushMessage wraps a raw MIDI message into a packet on cable 0 and
// enqueues it. Messages that do not fit a packet are skipped.
func (q *Queue) PushMessage(msg []byte) bool {
	p, err := usbmidi.FromMessage(0, msg)
	if err != nil {
		q.logger.Debug("Skipping MIDI message", q.logger.Field().Error("error", err))
		return false
	}
	return q.Push(p)
}

// PushStream splits a raw MIDI byte stream and enqueues every message.
func (q *Queue) PushStream(data []byte) {
	usbmidi.SplitMessages(data, func(msg []byte) {
		q.PushMessage(msg)
	})
}

// Pump blocks until at least one packet is available or ctx is done.
func (q *Queue) Pump(ctx context.Context) error {
	if q.held || len(q.ch) > 0 {
		return nil
	}
	select {
	case p := <-q.ch:
		q.pending = p
		q.held = true
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Read drains buffered packets into dst without blocking.
func (q *Queue) Read(dst []contracts.Packet) int {
	n := 0
	if q.held && len(dst) > 0 {
		dst[0] = q.pending
		q.held = false
		n = 1
	}
	for n < len(dst) {
		select {
		case p := <-q.ch:
			dst[n] = p
			n++
		default:
			return n
		}
	}
	return n
}

// Dropped is the number of packets lost to a full queue.
func (q *Queue) Dropped() uint64 { return q.dropped.Load() }
