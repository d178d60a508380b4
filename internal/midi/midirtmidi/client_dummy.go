//go:build !(linux && cgo)

// Package midirtmidi reads MIDI input through RtMidi (ALSA sequencer on Linux).
package midirtmidi

import (
	"context"
	"errors"

	"github.com/leandrodaf/picoadk/sdk/contracts"
)

// ErrUnavailable is returned when the binary was not built for Linux with cgo.
var ErrUnavailable = errors.New("RtMidi is not available in this build")

type dummyTransport struct {
	logger contracts.Logger
}

// NewTransport returns a transport that reports RtMidi as unavailable.
func NewTransport(options *contracts.EngineOptions) (contracts.Transport, error) {
	options.Logger.Info("Using dummy RtMidi transport")
	return &dummyTransport{logger: options.Logger}, nil
}

func (d *dummyTransport) ListDevices() ([]contracts.DeviceInfo, error) {
	d.logger.Warn("ListDevices called on dummy RtMidi transport")
	return nil, ErrUnavailable
}

func (d *dummyTransport) Open(int) error {
	d.logger.Warn("Open called on dummy RtMidi transport")
	return ErrUnavailable
}

func (d *dummyTransport) Pump(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

func (d *dummyTransport) Read([]contracts.Packet) int { return 0 }

func (d *dummyTransport) Close() error { return nil }
