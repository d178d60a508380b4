//go:build !windows
// +build !windows

package midiwindows

import (
	"context"
	"errors"

	"github.com/leandrodaf/picoadk/sdk/contracts"
)

// ErrUnavailable is returned by every call on non-Windows systems.
var ErrUnavailable = errors.New("winmm MIDI is not available on this platform")

type dummyTransport struct {
	logger contracts.Logger
}

// NewTransport initializes a dummy transport for non-Windows systems.
func NewTransport(options *contracts.EngineOptions) (contracts.Transport, error) {
	options.Logger.Info("Using dummy winmm transport for non-Windows system")
	return &dummyTransport{logger: options.Logger}, nil
}

// ListDevices logs a warning and reports winmm as unavailable.
func (d *dummyTransport) ListDevices() ([]contracts.DeviceInfo, error) {
	d.logger.Warn("ListDevices called on dummy winmm transport")
	return nil, ErrUnavailable
}

// Open logs a warning and reports winmm as unavailable.
func (d *dummyTransport) Open(int) error {
	d.logger.Warn("Open called on dummy winmm transport")
	return ErrUnavailable
}

// Pump waits for ctx; there is never anything to read.
func (d *dummyTransport) Pump(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

func (d *dummyTransport) Read([]contracts.Packet) int { return 0 }

func (d *dummyTransport) Close() error { return nil }
