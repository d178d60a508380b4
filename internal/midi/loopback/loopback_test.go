package loopback

import (
	"context"
	"testing"

	"github.com/leandrodaf/picoadk/internal/logger"
	"github.com/leandrodaf/picoadk/sdk/contracts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoopbackDevices(t *testing.T) {
	tr := New(4, logger.NewNopLogger())
	devices, err := tr.ListDevices()
	require.NoError(t, err)
	require.Len(t, devices, 1)
	assert.Equal(t, DeviceName, devices[0].Name)

	assert.ErrorIs(t, tr.Open(1), ErrInvalidDevice)
	assert.NoError(t, tr.Open(0))
	assert.NoError(t, tr.Close())
}

func TestLoopbackDeliversInjectedPackets(t *testing.T) {
	tr, err := NewTransport(&contracts.EngineOptions{Logger: logger.NewNopLogger()})
	require.NoError(t, err)
	lb := tr.(*Transport)

	require.True(t, lb.Inject(contracts.Packet{0x19, 0x91, 62, 90}))
	require.True(t, lb.InjectMessage([]byte{0x80, 62, 0}))

	require.NoError(t, tr.Pump(context.Background()))
	dst := make([]contracts.Packet, 4)
	require.Equal(t, 2, tr.Read(dst))
	assert.Equal(t, contracts.Packet{0x19, 0x91, 62, 90}, dst[0])
	assert.Equal(t, contracts.Packet{0x08, 0x80, 62, 0}, dst[1])
}
