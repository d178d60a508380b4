//go:build !(darwin && cgo)

package mididarwin

import (
	"testing"

	"github.com/leandrodaf/picoadk/internal/logger"
	"github.com/leandrodaf/picoadk/sdk/contracts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDummyTransportUnavailable(t *testing.T) {
	tr, err := NewTransport(&contracts.EngineOptions{Logger: logger.NewNopLogger()})
	require.NoError(t, err)

	_, err = tr.ListDevices()
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, tr.Open(0), ErrUnavailable)
	assert.Zero(t, tr.Read(make([]contracts.Packet, 4)))
	assert.NoError(t, tr.Close())
}
