//go:build !(darwin && cgo)

package mididarwin

import (
	"context"
	"errors"

	"github.com/leandrodaf/picoadk/sdk/contracts"
)

// ErrUnavailable is returned when the binary was not built for macOS with cgo.
var ErrUnavailable = errors.New("CoreMIDI is not available in this build")

type dummyTransport struct {
	logger contracts.Logger
}

// NewTransport returns a transport that reports CoreMIDI as unavailable.
func NewTransport(options *contracts.EngineOptions) (contracts.Transport, error) {
	options.Logger.Info("Using dummy CoreMIDI transport")
	return &dummyTransport{logger: options.Logger}, nil
}

func (d *dummyTransport) ListDevices() ([]contracts.DeviceInfo, error) {
	d.logger.Warn("ListDevices called on dummy CoreMIDI transport")
	return nil, ErrUnavailable
}

func (d *dummyTransport) Open(int) error {
	d.logger.Warn("Open called on dummy CoreMIDI transport")
	return ErrUnavailable
}

// Pump never yields packets; it waits for ctx so the pump loop does not spin.
func (d *dummyTransport) Pump(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

func (d *dummyTransport) Read([]contracts.Packet) int { return 0 }

func (d *dummyTransport) Close() error { return nil }
