//go:build windows
// +build windows

package midiwindows

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"unsafe"

	"github.com/leandrodaf/picoadk/internal/midi"
	"github.com/leandrodaf/picoadk/internal/midi/usbmidi"
	"github.com/leandrodaf/picoadk/sdk/contracts"
	"golang.org/x/sys/windows"
)

// Type definitions for MIDI handles
type HMIDIIN windows.Handle

// Constants for callback flags
const (
	CALLBACK_FUNCTION = 0x00030000 // Indicates that the callback is a function
	MIDI_IO_STATUS    = 0x00000020 // MIDI input/output status
)

// Constants for MIDI message types
const (
	MIM_OPEN      = 0x3C1 // MIDI device opened
	MIM_CLOSE     = 0x3C2 // MIDI device closed
	MIM_DATA      = 0x3C3 // MIDI data received
	MIM_ERROR     = 0x3C5 // MIDI error
	MIM_LONGERROR = 0x3C6 // Long MIDI error
	MIM_MOREDATA  = 0x3CC // More MIDI data available
)

var (
	ErrNoMIDIDevices = errors.New("no MIDI devices found")
	ErrNotOpen       = errors.New("no MIDI device is open")
)

// Struct representing MIDI device capabilities
type midiInCaps struct {
	wMid           uint16
	wPid           uint16
	vDriverVersion uint32
	szPname        [32]uint16
	dwSupport      uint32
}

// Transport reads short MIDI messages from a winmm input device.
type Transport struct {
	logger   contracts.Logger
	queue    *midi.Queue
	handle   HMIDIIN
	portConn bool
	mu       sync.Mutex
}

// Load the winmm.dll library and required functions
var (
	winmm                = windows.NewLazySystemDLL("winmm.dll")
	procMidiInGetNumDevs = winmm.NewProc("midiInGetNumDevs")
	procMidiInGetDevCaps = winmm.NewProc("midiInGetDevCapsW")
	procMidiInOpen       = winmm.NewProc("midiInOpen")
	procMidiInStart      = winmm.NewProc("midiInStart")
	procMidiInStop       = winmm.NewProc("midiInStop")
	procMidiInClose      = winmm.NewProc("midiInClose")
)

// The runtime holds a limited number of callback slots that are never freed,
// so the trampoline is created once and shared by every Open.
var midiInCallbackPtr = windows.NewCallback(midiInCallback)

// NewTransport creates a winmm MIDI transport.
func NewTransport(options *contracts.EngineOptions) (contracts.Transport, error) {
	options.Logger.Info("winmm MIDI transport created")
	return &Transport{
		logger: options.Logger,
		queue:  midi.NewQueue(midi.DefaultQueueSize, options.Logger),
	}, nil
}

// ListDevices lists the available MIDI input devices
func (t *Transport) ListDevices() ([]contracts.DeviceInfo, error) {
	r0, _, _ := procMidiInGetNumDevs.Call()
	numDevices := uint32(r0)
	if numDevices == 0 {
		t.logger.Warn(ErrNoMIDIDevices.Error())
		return nil, ErrNoMIDIDevices
	}

	devices := make([]contracts.DeviceInfo, 0, numDevices)
	for i := uint32(0); i < numDevices; i++ {
		var caps midiInCaps
		r1, _, _ := procMidiInGetDevCaps.Call(
			uintptr(i),
			uintptr(unsafe.Pointer(&caps)),
			unsafe.Sizeof(caps),
		)
		if r1 != 0 {
			t.logger.Warn("Failed to get MIDI device capabilities", t.logger.Field().Int("deviceID", int(i)))
			continue
		}
		deviceName := windows.UTF16ToString(caps.szPname[:])
		devices = append(devices, contracts.DeviceInfo{
			ID:           int(i),
			Kind:         contracts.MIDIInput,
			Name:         deviceName,
			EntityName:   deviceName,
			Manufacturer: fmt.Sprintf("MID: %d PID: %d", caps.wMid, caps.wPid),
		})
	}
	return devices, nil
}

// Open opens the input device and starts delivery to the callback.
func (t *Transport) Open(deviceID int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.portConn {
		if err := t.stopCapture(); err != nil {
			return fmt.Errorf("failed to stop previous MIDI capture: %w", err)
		}
	}

	fdwOpen := CALLBACK_FUNCTION | MIDI_IO_STATUS

	r1, _, err := procMidiInOpen.Call(
		uintptr(unsafe.Pointer(&t.handle)),
		uintptr(deviceID),
		midiInCallbackPtr,
		uintptr(unsafe.Pointer(t)),
		uintptr(fdwOpen),
	)
	if r1 != 0 {
		return fmt.Errorf("failed to open MIDI device %d: %v", deviceID, err)
	}
	t.portConn = true

	r1, _, err = procMidiInStart.Call(uintptr(t.handle))
	if r1 != 0 {
		return fmt.Errorf("failed to start MIDI capture: %v", err)
	}

	t.logger.Info("MIDI device connected", t.logger.Field().Int("deviceID", deviceID))
	return nil
}

// midiInCallback runs on a winmm thread for every input notification.
func midiInCallback(hMidiIn uintptr, wMsg uint32, dwInstance uintptr, dwParam1 uintptr, dwParam2 uintptr) uintptr {
	t := (*Transport)(unsafe.Pointer(dwInstance))

	switch wMsg {
	case MIM_OPEN:
		t.logger.Debug("MIDI device opened")
	case MIM_CLOSE:
		t.logger.Debug("MIDI device closed")
	case MIM_DATA:
		msg := [3]byte{
			byte(dwParam1 & 0xFF),
			byte((dwParam1 >> 8) & 0xFF),
			byte((dwParam1 >> 16) & 0xFF),
		}
		n := usbmidi.MessageLength(msg[0])
		if n == 0 {
			return 0
		}
		t.queue.PushMessage(msg[:n])
	case MIM_ERROR, MIM_LONGERROR:
		t.logger.Warn("Malformed MIDI input", t.logger.Field().Int("msg", int(wMsg)))
	case MIM_MOREDATA:
		t.logger.Debug("Received MIM_MOREDATA message; ignored")
	default:
		t.logger.Warn("Unknown MIDI message", t.logger.Field().Int("msg", int(wMsg)))
	}

	return 0
}

func (t *Transport) Pump(ctx context.Context) error { return t.queue.Pump(ctx) }

func (t *Transport) Read(dst []contracts.Packet) int { return t.queue.Read(dst) }

// Close stops capture and closes the device
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.portConn {
		return nil
	}
	if err := t.stopCapture(); err != nil {
		return fmt.Errorf("failed to stop MIDI capture: %w", err)
	}
	t.logger.Info("MIDI capture stopped and device closed",
		t.logger.Field().Uint64("droppedPackets", t.queue.Dropped()))
	return nil
}

// stopCapture stops the capture and releases the handle
func (t *Transport) stopCapture() error {
	if t.handle == 0 {
		return ErrNotOpen
	}

	r1, _, err := procMidiInStop.Call(uintptr(t.handle))
	if r1 != 0 {
		return fmt.Errorf("midiInStop: %w", err)
	}

	r1, _, err = procMidiInClose.Call(uintptr(t.handle))
	if r1 != 0 {
		return fmt.Errorf("midiInClose: %w", err)
	}

	t.portConn = false
	t.handle = 0
	return nil
}
