package audio

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/leandrodaf/picoadk/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPool(t *testing.T, count, capacity int) *Pool {
	t.Helper()
	p, err := NewPool(count, capacity, logger.NewNopLogger())
	require.NoError(t, err)
	return p
}

func TestNewPoolValidation(t *testing.T) {
	tests := []struct {
		name     string
		count    int
		capacity int
		wantErr  error
	}{
		{"too few blocks", 1, 16, ErrInvalidBlockCount},
		{"too many blocks", 17, 16, ErrInvalidBlockCount},
		{"zero capacity", 3, 0, ErrInvalidCapacity},
		{"minimum", 2, 1, nil},
		{"maximum", 16, 256, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewPool(tt.count, tt.capacity, logger.NewNopLogger())
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.count, p.Len())
			assert.Equal(t, tt.capacity, p.Capacity())
			assert.Equal(t, tt.count, p.Stats().Free)
		})
	}
}

func TestAcquireExhaustion(t *testing.T) {
	p := newTestPool(t, 2, 8)

	a, ok := p.Acquire(false)
	require.True(t, ok)
	b, ok := p.Acquire(false)
	require.True(t, ok)
	assert.NotEqual(t, a.Index(), b.Index())

	_, ok = p.Acquire(false)
	assert.False(t, ok, "third acquire on a two-block pool must fail")
	assert.Equal(t, uint64(1), p.Stats().Exhausted)
}

func TestReleaseClampsFrameCount(t *testing.T) {
	p := newTestPool(t, 2, 8)

	b, ok := p.Acquire(false)
	require.True(t, ok)
	require.NoError(t, p.Release(b, 9))

	next, ok := p.Next()
	require.True(t, ok)
	assert.Same(t, b, next)
	assert.Equal(t, 8, next.Frames())
	assert.Len(t, next.Data(), 16)
	assert.Equal(t, uint64(1), p.Stats().Clamped)

	require.NoError(t, p.Complete(next))

	b, ok = p.Acquire(false)
	require.True(t, ok)
	require.NoError(t, p.Release(b, -3))
	next, ok = p.Next()
	require.True(t, ok)
	assert.Equal(t, 0, next.Frames())
	assert.Equal(t, uint64(1), p.Stats().Clamped, "negative counts are not clamps")
}

func TestOwnershipViolations(t *testing.T) {
	p := newTestPool(t, 2, 4)
	other := newTestPool(t, 2, 4)

	foreign, ok := other.Acquire(false)
	require.True(t, ok)
	assert.ErrorIs(t, p.Release(foreign, 4), ErrForeignBlock)
	assert.ErrorIs(t, p.Release(nil, 4), ErrForeignBlock)
	assert.ErrorIs(t, p.Complete(foreign), ErrForeignBlock)

	b, ok := p.Acquire(false)
	require.True(t, ok)
	assert.ErrorIs(t, p.Complete(b), ErrNotOwned, "a producing block cannot be completed")
	require.NoError(t, p.Release(b, 4))
	assert.ErrorIs(t, p.Release(b, 4), ErrNotOwned, "double release must be rejected")

	next, ok := p.Next()
	require.True(t, ok)
	require.NoError(t, p.Complete(next))
	assert.ErrorIs(t, p.Complete(next), ErrNotOwned, "double complete must be rejected")
}

func TestRoundTripPreservesPattern(t *testing.T) {
	p := newTestPool(t, 3, 32)

	for cycle := 0; cycle < 10; cycle++ {
		b, ok := p.Acquire(false)
		require.True(t, ok)
		for i := 0; i < b.Capacity(); i++ {
			b.SetFrame(i, int32(cycle*1000+i), -int32(cycle*1000+i))
		}
		require.NoError(t, p.Release(b, b.Capacity()))

		got, ok := p.Next()
		require.True(t, ok)
		require.Equal(t, 32, got.Frames())
		for i := 0; i < got.Frames(); i++ {
			l, r := got.Frame(i)
			require.Equal(t, int32(cycle*1000+i), l)
			require.Equal(t, -int32(cycle*1000+i), r)
		}
		require.NoError(t, p.Complete(got))
	}

	s := p.Stats()
	assert.Equal(t, uint64(10), s.Acquired)
	assert.Equal(t, uint64(10), s.Released)
	assert.Equal(t, uint64(10), s.Completed)
	assert.Equal(t, 3, s.Free)
}

func TestFilledBlocksAreFIFO(t *testing.T) {
	p := newTestPool(t, 3, 4)

	var order []int
	for i := 0; i < 3; i++ {
		b, ok := p.Acquire(false)
		require.True(t, ok)
		order = append(order, b.Index())
		require.NoError(t, p.Release(b, 4))
	}
	for _, want := range order {
		b, ok := p.Next()
		require.True(t, ok)
		assert.Equal(t, want, b.Index())
		require.NoError(t, p.Complete(b))
	}
}

// A block is never held by two owners at once, however producers and
// consumers interleave.
func TestNoAliasingUnderConcurrency(t *testing.T) {
	const (
		producers = 4
		cycles    = 2000
	)
	p := newTestPool(t, 4, 16)
	var owners [4]atomic.Int32

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var consumed atomic.Int64
	var consumerWG sync.WaitGroup
	consumerCtx, stopConsumers := context.WithCancel(ctx)
	for c := 0; c < 2; c++ {
		consumerWG.Add(1)
		go func() {
			defer consumerWG.Done()
			for {
				b, err := p.NextContext(consumerCtx)
				if err != nil {
					return
				}
				if owners[b.Index()].Add(1) != 1 {
					t.Errorf("block %d aliased on consume", b.Index())
				}
				tag := b.Samples()[0]
				for _, s := range b.Data() {
					if s != tag {
						t.Errorf("block %d torn: %d != %d", b.Index(), s, tag)
						break
					}
				}
				owners[b.Index()].Add(-1)
				if err := p.Complete(b); err != nil {
					t.Errorf("complete: %v", err)
				}
				consumed.Add(1)
			}
		}()
	}

	var producerWG sync.WaitGroup
	for w := 0; w < producers; w++ {
		producerWG.Add(1)
		go func(w int) {
			defer producerWG.Done()
			for i := 0; i < cycles; i++ {
				b, err := p.AcquireContext(ctx)
				if err != nil {
					t.Errorf("acquire: %v", err)
					return
				}
				if owners[b.Index()].Add(1) != 1 {
					t.Errorf("block %d aliased on acquire", b.Index())
				}
				tag := int32(w*cycles + i)
				for j := range b.Samples() {
					b.Samples()[j] = tag
				}
				owners[b.Index()].Add(-1)
				if err := p.Release(b, b.Capacity()); err != nil {
					t.Errorf("release: %v", err)
				}
			}
		}(w)
	}
	producerWG.Wait()

	require.Eventually(t, func() bool {
		return consumed.Load() == producers*cycles
	}, 5*time.Second, time.Millisecond)
	stopConsumers()
	consumerWG.Wait()

	s := p.Stats()
	assert.Equal(t, 4, s.Free)
	assert.Equal(t, 0, s.Filled)
	assert.Equal(t, uint64(producers*cycles), s.Completed)
}

func TestAcquireContextWaitsForComplete(t *testing.T) {
	p := newTestPool(t, 2, 4)
	var held []*Block
	for i := 0; i < 2; i++ {
		b, ok := p.Acquire(false)
		require.True(t, ok)
		require.NoError(t, p.Release(b, 4))
		held = append(held, b)
	}

	got := make(chan *Block, 1)
	go func() {
		b, ok := p.Acquire(true)
		if ok {
			got <- b
		}
	}()

	select {
	case <-got:
		t.Fatal("acquire returned before any block was freed")
	case <-time.After(20 * time.Millisecond):
	}

	b, ok := p.Next()
	require.True(t, ok)
	require.NoError(t, p.Complete(b))

	select {
	case b := <-got:
		assert.Equal(t, held[0].Index(), b.Index())
	case <-time.After(time.Second):
		t.Fatal("blocking acquire did not wake up")
	}
}

func TestAcquireContextCancelled(t *testing.T) {
	p := newTestPool(t, 2, 4)
	_, _ = p.Acquire(false)
	_, _ = p.Acquire(false)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := p.AcquireContext(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	_, err = p.NextContext(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
