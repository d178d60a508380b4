//go:build darwin && cgo

package mididarwin

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/leandrodaf/picoadk/internal/midi"
	"github.com/leandrodaf/picoadk/sdk/contracts"
	"github.com/youpy/go-coremidi"
)

// Error definitions for MIDI connection and handling issues.
var (
	ErrNoMIDIDevices       = errors.New("no MIDI devices found")
	ErrInvalidMIDIDevice   = errors.New("invalid MIDI device")
	ErrMIDIConnectionError = errors.New("error connecting to MIDI device")
	ErrCreateInputPort     = errors.New("error creating input port")
)

// internalPortConnection is an interface for handling disconnection from a MIDI port.
type internalPortConnection interface {
	Disconnect()
}

// Transport receives MIDI from a CoreMIDI source and hands it to the pump
// as USB-MIDI packets.
type Transport struct {
	logger    contracts.Logger
	queue     *midi.Queue
	client    coremidi.Client        // CoreMIDI client instance for MIDI operations.
	inputPort coremidi.InputPort     // Input port for receiving MIDI events.
	portConn  internalPortConnection // Connection to the MIDI port.
	mu        sync.Mutex             // Guards the port connection.
	wg        sync.WaitGroup         // Tracks in-flight CoreMIDI callbacks.
	closeOnce sync.Once
}

// NewTransport creates the CoreMIDI client named in the options.
func NewTransport(options *contracts.EngineOptions) (contracts.Transport, error) {
	client, err := coremidi.NewClient(options.CoreMIDIConfig.ClientName)
	if err != nil {
		return nil, err
	}
	options.Logger.Info("CoreMIDI client successfully created")

	return &Transport{
		logger: options.Logger,
		queue:  midi.NewQueue(midi.DefaultQueueSize, options.Logger),
		client: client,
	}, nil
}

// ListDevices retrieves and returns available MIDI sources.
func (t *Transport) ListDevices() ([]contracts.DeviceInfo, error) {
	sources, err := coremidi.AllSources()
	if err != nil {
		return nil, fmt.Errorf("error listing MIDI sources: %w", err)
	}
	if len(sources) == 0 {
		t.logger.Warn(ErrNoMIDIDevices.Error())
		return nil, ErrNoMIDIDevices
	}

	devices := make([]contracts.DeviceInfo, len(sources))
	for i, source := range sources {
		sourceEntity := source.Entity()
		devices[i] = contracts.DeviceInfo{
			ID:           i,
			Kind:         contracts.MIDIInput,
			Name:         source.Name(),
			EntityName:   sourceEntity.Name(),
			Manufacturer: sourceEntity.Manufacturer(),
		}
	}
	return devices, nil
}

// Open connects to the source with the given index, replacing any previous connection.
func (t *Transport) Open(deviceID int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	sources, err := coremidi.AllSources()
	if err != nil {
		return fmt.Errorf("error retrieving MIDI sources: %w", err)
	}
	if deviceID < 0 || deviceID >= len(sources) {
		t.logger.Error(ErrInvalidMIDIDevice.Error(), t.logger.Field().Int("deviceID", deviceID))
		return ErrInvalidMIDIDevice
	}

	if t.portConn != nil {
		t.portConn.Disconnect()
		t.portConn = nil
	}

	source := sources[deviceID]
	t.logger.Info("MIDI source selected",
		t.logger.Field().Int("deviceID", deviceID),
		t.logger.Field().String("deviceName", source.Name()))

	t.inputPort, err = coremidi.NewInputPort(t.client, "Input Port", t.handlePacket)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCreateInputPort, err)
	}

	t.portConn, err = t.inputPort.Connect(source)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMIDIConnectionError, err)
	}

	t.logger.Info("MIDI source successfully connected")
	return nil
}

// handlePacket runs on a CoreMIDI thread. A CoreMIDI packet may carry
// several messages; each becomes one USB-MIDI packet.
func (t *Transport) handlePacket(_ coremidi.Source, packet coremidi.Packet) {
	t.wg.Add(1)
	defer t.wg.Done()
	t.queue.PushStream(packet.Data)
}

func (t *Transport) Pump(ctx context.Context) error { return t.queue.Pump(ctx) }

func (t *Transport) Read(dst []contracts.Packet) int { return t.queue.Read(dst) }

// Close disconnects the source and waits for in-flight callbacks.
func (t *Transport) Close() error {
	t.closeOnce.Do(func() {
		t.mu.Lock()
		if t.portConn != nil {
			t.portConn.Disconnect()
			t.portConn = nil
		}
		t.mu.Unlock()
		t.wg.Wait()
		t.logger.Info("CoreMIDI transport closed",
			t.logger.Field().Uint64("droppedPackets", t.queue.Dropped()))
	})
	return nil
}
