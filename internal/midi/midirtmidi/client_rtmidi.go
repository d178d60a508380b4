//go:build linux && cgo

// Package midirtmidi reads MIDI input through RtMidi (ALSA sequencer on Linux).
package midirtmidi

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/leandrodaf/picoadk/internal/midi"
	"github.com/leandrodaf/picoadk/sdk/contracts"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

var (
	ErrNoMIDIDevices     = errors.New("no MIDI devices found")
	ErrInvalidMIDIDevice = errors.New("invalid MIDI device")
)

// Transport listens on an RtMidi input port.
type Transport struct {
	logger contracts.Logger
	queue  *midi.Queue
	drv    *rtmididrv.Driver
	mu     sync.Mutex
	in     drivers.In
	stopFn func()
}

// NewTransport initialises the RtMidi driver.
func NewTransport(options *contracts.EngineOptions) (contracts.Transport, error) {
	drv, err := rtmididrv.New()
	if err != nil {
		return nil, fmt.Errorf("rtmididrv: %w", err)
	}
	options.Logger.Info("RtMidi transport created")
	return &Transport{
		logger: options.Logger,
		queue:  midi.NewQueue(midi.DefaultQueueSize, options.Logger),
		drv:    drv,
	}, nil
}

func (t *Transport) ListDevices() ([]contracts.DeviceInfo, error) {
	ins, err := t.drv.Ins()
	if err != nil {
		return nil, fmt.Errorf("error listing MIDI inputs: %w", err)
	}
	if len(ins) == 0 {
		t.logger.Warn(ErrNoMIDIDevices.Error())
		return nil, ErrNoMIDIDevices
	}
	devices := make([]contracts.DeviceInfo, len(ins))
	for i, in := range ins {
		devices[i] = contracts.DeviceInfo{ID: i, Kind: contracts.MIDIInput, Name: in.String(), EntityName: in.String(), Manufacturer: "rtmidi"}
	}
	return devices, nil
}

// Open connects to the input with the given index.
func (t *Transport) Open(deviceID int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	ins, err := t.drv.Ins()
	if err != nil {
		return fmt.Errorf("error listing MIDI inputs: %w", err)
	}
	if deviceID < 0 || deviceID >= len(ins) {
		return ErrInvalidMIDIDevice
	}
	t.closeConn()

	in := ins[deviceID]
	if err := in.Open(); err != nil {
		return fmt.Errorf("open %q: %w", in.String(), err)
	}
	stop, err := gomidi.ListenTo(in, func(msg gomidi.Message, _ int32) {
		t.queue.PushMessage([]byte(msg))
	}, gomidi.HandleError(func(listenErr error) {
		t.logger.Warn("MIDI listener error",
			t.logger.Field().String("device", in.String()),
			t.logger.Field().Error("error", listenErr))
	}))
	if err != nil {
		_ = in.Close()
		return fmt.Errorf("listen %q: %w", in.String(), err)
	}

	t.in = in
	t.stopFn = stop
	t.logger.Info("MIDI input connected", t.logger.Field().String("device", in.String()))
	return nil
}

func (t *Transport) closeConn() {
	if t.stopFn != nil {
		t.stopFn()
		t.stopFn = nil
	}
	if t.in != nil {
		_ = t.in.Close()
		t.in = nil
	}
}

func (t *Transport) Pump(ctx context.Context) error { return t.queue.Pump(ctx) }

func (t *Transport) Read(dst []contracts.Packet) int { return t.queue.Read(dst) }

// Close disconnects the input and shuts the driver down.
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closeConn()
	return t.drv.Close()
}
