// Package audio implements the sample block pool, the render callback that
// fills it and the transmitter that drains it to the audio output.
//
// Blocks cycle free -> producing -> filled -> transmitting -> free. The render
// path and the transmission-complete path only use atomics; blocking waits
// are channel based and reserved for task context.
package audio

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/leandrodaf/picoadk/sdk/contracts"
)

// Pool cycles a fixed set of blocks between the producer and the consumer.
type Pool struct {
	logger   contracts.Logger
	blocks   []*Block
	capacity int
	free     *indexRing
	filled   *indexRing
	freed    chan struct{} // Signalled when a block returns to free.
	ready    chan struct{} // Signalled when a block is released for transmission.

	acquired  atomic.Uint64
	exhausted atomic.Uint64
	released  atomic.Uint64
	clamped   atomic.Uint64
	completed atomic.Uint64
}

// NewPool allocates count blocks of capacity frames each. All storage is
// allocated here; nothing on the acquire/release path allocates.
func NewPool(count, capacity int, logger contracts.Logger) (*Pool, error) {
	if count < MinBlocks || count > MaxBlocks {
		return nil, fmt.Errorf("%w: %d (want %d-%d)", ErrInvalidBlockCount, count, MinBlocks, MaxBlocks)
	}
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCapacity, capacity)
	}

	p := &Pool{
		logger:   logger,
		blocks:   make([]*Block, count),
		capacity: capacity,
		free:     newIndexRing(count),
		filled:   newIndexRing(count),
		freed:    make(chan struct{}, 1),
		ready:    make(chan struct{}, 1),
	}
	for i := range p.blocks {
		p.blocks[i] = &Block{
			pool:    p,
			index:   uint32(i),
			samples: make([]int32, capacity*Channels),
		}
		p.free.push(uint32(i))
	}
	return p, nil
}

// Len is the number of blocks in the pool.
func (p *Pool) Len() int { return len(p.blocks) }

// Capacity is the frame capacity of every block.
func (p *Pool) Capacity() int { return p.capacity }

// Acquire hands out a free block for filling. With blocking false it returns
// immediately, reporting false when every block is busy; this is the only mode
// the render path may use. With blocking true it waits until a block is freed.
func (p *Pool) Acquire(blocking bool) (*Block, bool) {
	if !blocking {
		b, ok := p.tryAcquire()
		if !ok {
			p.exhausted.Add(1)
		}
		return b, ok
	}
	b, err := p.AcquireContext(context.Background())
	return b, err == nil
}

// AcquireContext waits for a free block or for ctx to end.
func (p *Pool) AcquireContext(ctx context.Context) (*Block, error) {
	for {
		if b, ok := p.tryAcquire(); ok {
			if p.free.len() > 0 {
				signal(p.freed)
			}
			return b, nil
		}
		select {
		case <-p.freed:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (p *Pool) tryAcquire() (*Block, bool) {
	for {
		idx, ok := p.free.pop()
		if !ok {
			return nil, false
		}
		b := p.blocks[idx]
		if !b.transition(stateFree, stateProducing) {
			// Only reachable if an index was queued twice; skip it rather than alias.
			continue
		}
		b.frames = 0
		p.acquired.Add(1)
		return b, true
	}
}

// Release hands a filled block over for transmission with frames valid
// frames. Counts above the block capacity are clamped and logged; negative
// counts become zero. Releasing a block the caller does not hold is rejected.
func (p *Pool) Release(b *Block, frames int) error {
	if b == nil || b.pool != p {
		return ErrForeignBlock
	}
	if !b.transition(stateProducing, stateFilled) {
		return fmt.Errorf("%w: block %d is %s", ErrNotOwned, b.index, b.loadState())
	}

	switch {
	case frames > p.capacity:
		p.clamped.Add(1)
		p.logger.Warn("Frame count exceeds block capacity; clamping",
			p.logger.Field().Int("frames", frames),
			p.logger.Field().Int("capacity", p.capacity))
		frames = p.capacity
	case frames < 0:
		frames = 0
	}
	b.frames = frames

	p.released.Add(1)
	p.filled.push(b.index)
	signal(p.ready)
	return nil
}

// Next takes the oldest filled block for transmission without blocking.
func (p *Pool) Next() (*Block, bool) {
	for {
		idx, ok := p.filled.pop()
		if !ok {
			return nil, false
		}
		b := p.blocks[idx]
		if b.transition(stateFilled, stateTransmitting) {
			if p.filled.len() > 0 {
				signal(p.ready)
			}
			return b, true
		}
	}
}

// NextContext waits for a filled block or for ctx to end.
func (p *Pool) NextContext(ctx context.Context) (*Block, error) {
	for {
		if b, ok := p.Next(); ok {
			return b, nil
		}
		select {
		case <-p.ready:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// Complete is the transmission-complete signal: the block goes back to free.
// It never blocks and never allocates.
func (p *Pool) Complete(b *Block) error {
	if b == nil || b.pool != p {
		return ErrForeignBlock
	}
	if !b.transition(stateTransmitting, stateFree) {
		return fmt.Errorf("%w: block %d is %s", ErrNotOwned, b.index, b.loadState())
	}
	p.completed.Add(1)
	p.free.push(b.index)
	signal(p.freed)
	return nil
}

// Stats returns a snapshot of the pool counters.
func (p *Pool) Stats() contracts.PoolStats {
	return contracts.PoolStats{
		Blocks:    len(p.blocks),
		Free:      p.free.len(),
		Filled:    p.filled.len(),
		Acquired:  p.acquired.Load(),
		Exhausted: p.exhausted.Load(),
		Released:  p.released.Load(),
		Clamped:   p.clamped.Load(),
		Completed: p.completed.Load(),
	}
}

func signal(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}
