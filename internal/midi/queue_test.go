package midi

import (
	"context"
	"testing"
	"time"

	"github.com/leandrodaf/picoadk/internal/logger"
	"github.com/leandrodaf/picoadk/sdk/contracts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueuePushAndRead(t *testing.T) {
	q := NewQueue(4, logger.NewNopLogger())
	for i := byte(0); i < 3; i++ {
		require.True(t, q.Push(contracts.Packet{0x09, 0x90, i, 1}))
	}

	require.NoError(t, q.Pump(context.Background()))
	dst := make([]contracts.Packet, 8)
	n := q.Read(dst)
	require.Equal(t, 3, n)
	for i := byte(0); i < 3; i++ {
		assert.Equal(t, i, dst[i][2])
	}
	assert.Equal(t, 0, q.Read(dst))
}

func TestQueueDropsWhenFull(t *testing.T) {
	q := NewQueue(2, logger.NewNopLogger())
	assert.True(t, q.Push(contracts.Packet{}))
	assert.True(t, q.Push(contracts.Packet{}))
	assert.False(t, q.Push(contracts.Packet{}))
	assert.Equal(t, uint64(1), q.Dropped())
}

func TestQueuePumpBlocksUntilPacket(t *testing.T) {
	q := NewQueue(4, logger.NewNopLogger())

	done := make(chan error, 1)
	go func() { done <- q.Pump(context.Background()) }()

	select {
	case <-done:
		t.Fatal("pump returned on an empty queue")
	case <-time.After(20 * time.Millisecond):
	}

	require.True(t, q.PushMessage([]byte{0x90, 60, 100}))
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("pump did not wake up")
	}

	dst := make([]contracts.Packet, 1)
	require.Equal(t, 1, q.Read(dst))
	assert.Equal(t, contracts.Packet{0x09, 0x90, 60, 100}, dst[0])
}

func TestQueuePumpCancelled(t *testing.T) {
	q := NewQueue(4, logger.NewNopLogger())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, q.Pump(ctx), context.Canceled)
}

func TestQueuePushStream(t *testing.T) {
	q := NewQueue(8, logger.NewNopLogger())
	q.PushStream([]byte{0x90, 60, 100, 0xF0, 1, 2, 0xF7, 0xB0, 7, 64})
	assert.False(t, q.PushMessage([]byte{0xF0, 1, 0xF7}))

	dst := make([]contracts.Packet, 8)
	require.Equal(t, 2, q.Read(dst))
	assert.Equal(t, contracts.Packet{0x09, 0x90, 60, 100}, dst[0])
	assert.Equal(t, contracts.Packet{0x0B, 0xB0, 7, 64}, dst[1])
}
