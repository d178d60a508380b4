// Package loopback is an in-process MIDI transport. Packets injected by the
// application (or by tests) are delivered to the pump as if they arrived
// over USB.
package loopback

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/leandrodaf/picoadk/internal/midi"
	"github.com/leandrodaf/picoadk/sdk/contracts"
)

// ErrInvalidDevice is returned when opening anything but device 0.
var ErrInvalidDevice = errors.New("invalid loopback device")

// DeviceName is the name reported by ListDevices.
const DeviceName = "Loopback"

// Transport implements contracts.Transport over an in-memory queue.
type Transport struct {
	logger contracts.Logger
	queue  *midi.Queue
	open   atomic.Bool
}

// New creates a loopback transport buffering up to size packets.
func New(size int, logger contracts.Logger) *Transport {
	return &Transport{logger: logger, queue: midi.NewQueue(size, logger)}
}

// NewTransport matches the transport factory signature.
func NewTransport(options *contracts.EngineOptions) (contracts.Transport, error) {
	options.Logger.Info("Using loopback MIDI transport")
	return New(midi.DefaultQueueSize, options.Logger), nil
}

func (t *Transport) ListDevices() ([]contracts.DeviceInfo, error) {
	return []contracts.DeviceInfo{{ID: 0, Kind: contracts.MIDIInput, Name: DeviceName, Manufacturer: "picoadk", EntityName: DeviceName}}, nil
}

func (t *Transport) Open(deviceID int) error {
	if deviceID != 0 {
		return ErrInvalidDevice
	}
	t.open.Store(true)
	return nil
}

// Inject delivers a raw USB-MIDI packet.
func (t *Transport) Inject(p contracts.Packet) bool {
	return t.queue.Push(p)
}

// InjectMessage delivers a raw MIDI 1.0 message on cable 0.
func (t *Transport) InjectMessage(msg []byte) bool {
	return t.queue.PushMessage(msg)
}

func (t *Transport) Pump(ctx context.Context) error { return t.queue.Pump(ctx) }

func (t *Transport) Read(dst []contracts.Packet) int { return t.queue.Read(dst) }

func (t *Transport) Close() error {
	t.open.Store(false)
	return nil
}
