package contracts

import (
	"context"
	"fmt"
)

// PacketSize is the length of a USB-MIDI event packet.
const PacketSize = 4

// Packet is a USB-MIDI event packet: cable number and code index in the
// first byte, followed by up to three MIDI message bytes.
type Packet [PacketSize]byte

// Cable returns the virtual cable number (0-15) carried by the packet.
func (p Packet) Cable() uint8 { return p[0] >> 4 }

// CIN returns the code index number of the packet.
func (p Packet) CIN() uint8 { return p[0] & 0x0F }

// Status returns the MIDI status byte.
func (p Packet) Status() byte { return p[1] }

// MIDICommand is the high nibble of a channel voice status byte.
type MIDICommand byte

const (
	// NoteOff is the MIDI command for a Note Off event (0x80).
	NoteOff MIDICommand = 0x80
	// NoteOn is the MIDI command for a Note On event (0x90).
	NoteOn MIDICommand = 0x90
	// ControlChange is the MIDI command for a Control Change event (0xB0).
	ControlChange MIDICommand = 0xB0
)

// EventKind identifies the variant of a decoded Event.
type EventKind uint8

const (
	KindNoteOn EventKind = iota
	KindNoteOff
	KindControlChange

	// KindCount is the number of event kinds; it sizes the handler table.
	KindCount
)

func (k EventKind) String() string {
	switch k {
	case KindNoteOn:
		return "note_on"
	case KindNoteOff:
		return "note_off"
	case KindControlChange:
		return "control_change"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Command returns the status nibble that produces the kind on the wire.
func (k EventKind) Command() MIDICommand {
	switch k {
	case KindNoteOn:
		return NoteOn
	case KindNoteOff:
		return NoteOff
	case KindControlChange:
		return ControlChange
	}
	return 0
}

// Event is a decoded MIDI message. Data1 holds the note or controller number
// and Data2 the velocity or controller value, depending on Kind.
type Event struct {
	Kind    EventKind
	Channel uint8
	Data1   uint8
	Data2   uint8
}

// NewNoteOn builds a NoteOn event.
func NewNoteOn(note, velocity, channel uint8) Event {
	return Event{Kind: KindNoteOn, Channel: channel, Data1: note, Data2: velocity}
}

// NewNoteOff builds a NoteOff event.
func NewNoteOff(note, velocity, channel uint8) Event {
	return Event{Kind: KindNoteOff, Channel: channel, Data1: note, Data2: velocity}
}

// NewControlChange builds a ControlChange event.
func NewControlChange(controller, value, channel uint8) Event {
	return Event{Kind: KindControlChange, Channel: channel, Data1: controller, Data2: value}
}

func (e Event) Note() uint8       { return e.Data1 }
func (e Event) Velocity() uint8   { return e.Data2 }
func (e Event) Controller() uint8 { return e.Data1 }
func (e Event) Value() uint8      { return e.Data2 }

func (e Event) String() string {
	switch e.Kind {
	case KindNoteOn, KindNoteOff:
		return fmt.Sprintf("%s(note=%d, velocity=%d, channel=%d)", e.Kind, e.Data1, e.Data2, e.Channel)
	case KindControlChange:
		return fmt.Sprintf("%s(controller=%d, value=%d, channel=%d)", e.Kind, e.Data1, e.Data2, e.Channel)
	}
	return e.Kind.String()
}

// Handler receives decoded events. Handlers run inline with the MIDI pump
// and must not block.
type Handler interface {
	HandleEvent(Event)
}

// HandlerFunc adapts a plain function to Handler.
type HandlerFunc func(Event)

func (f HandlerFunc) HandleEvent(e Event) { f(e) }

// NoteFunc adapts a note callback (note, velocity, channel) to Handler.
type NoteFunc func(note, velocity, channel uint8)

func (f NoteFunc) HandleEvent(e Event) { f(e.Data1, e.Data2, e.Channel) }

// ControlChangeFunc adapts a controller callback (controller, value, channel) to Handler.
type ControlChangeFunc func(controller, value, channel uint8)

func (f ControlChangeFunc) HandleEvent(e Event) { f(e.Data1, e.Data2, e.Channel) }

// Transport supplies raw USB-MIDI packets. Pump blocks until packets may be
// available or ctx is done; Read then drains up to len(dst) packets without
// blocking.
type Transport interface {
	ListDevices() ([]DeviceInfo, error) // Lists the MIDI inputs the transport can open.
	Open(deviceID int) error            // Connects to the input with the given index.
	Pump(ctx context.Context) error     // Waits for the next batch of packets.
	Read(dst []Packet) int              // Drains buffered packets into dst.
	Close() error                       // Disconnects and releases resources.
}
