package audio

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/leandrodaf/picoadk/sdk/contracts"
)

// Transmitter drains filled blocks into a sink and signals completion for
// each, standing in for the DMA engine that feeds the audio hardware.
type Transmitter struct {
	logger contracts.Logger
	pool   *Pool
	sink   contracts.Sink

	written     atomic.Uint64
	writeErrors atomic.Uint64
}

// NewTransmitter wires pool to sink.
func NewTransmitter(pool *Pool, sink contracts.Sink, logger contracts.Logger) *Transmitter {
	return &Transmitter{logger: logger, pool: pool, sink: sink}
}

// Run transmits blocks until ctx is done. Sink errors are counted and the
// block is still completed so the pool keeps cycling.
func (t *Transmitter) Run(ctx context.Context) error {
	for {
		b, err := t.pool.NextContext(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return err
		}
		t.transmit(b)
	}
}

// Drain transmits whatever is already filled without waiting and returns
// the number of blocks sent.
func (t *Transmitter) Drain() int {
	n := 0
	for {
		b, ok := t.pool.Next()
		if !ok {
			return n
		}
		t.transmit(b)
		n++
	}
}

func (t *Transmitter) transmit(b *Block) {
	if err := t.sink.Write(b.Data()); err != nil {
		if t.writeErrors.Add(1) == 1 {
			t.logger.Warn("Audio sink write failed", t.logger.Field().Error("error", err))
		}
	} else {
		t.written.Add(1)
	}
	if err := t.pool.Complete(b); err != nil {
		t.logger.Error("Failed to complete block", t.logger.Field().Error("error", err))
	}
}

// Written is the number of blocks accepted by the sink.
func (t *Transmitter) Written() uint64 { return t.written.Load() }

// WriteErrors is the number of blocks the sink rejected.
func (t *Transmitter) WriteErrors() uint64 { return t.writeErrors.Load() }
