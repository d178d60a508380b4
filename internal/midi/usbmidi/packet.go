// Package usbmidi turns USB-MIDI event packets into decoded events.
package usbmidi

import (
	"errors"
	"fmt"

	"github.com/leandrodaf/picoadk/sdk/contracts"
)

// Code index numbers from the USB MIDI 1.0 class specification.
const (
	CINMisc          = 0x0
	CINCableEvent    = 0x1
	CINSysCommon2    = 0x2
	CINSysCommon3    = 0x3
	CINSysExStart    = 0x4
	CINSysExEnd1     = 0x5
	CINSysExEnd2     = 0x6
	CINSysExEnd3     = 0x7
	CINNoteOff       = 0x8
	CINNoteOn        = 0x9
	CINPolyKeyPress  = 0xA
	CINControlChange = 0xB
	CINProgramChange = 0xC
	CINChannelPress  = 0xD
	CINPitchBend     = 0xE
	CINSingleByte    = 0xF
)

var (
	ErrShortPacket  = errors.New("incomplete USB-MIDI packet")
	ErrNotStatus    = errors.New("MIDI message does not start with a status byte")
	ErrUnsupported  = errors.New("MIDI message cannot be carried in a single packet")
	ErrInvalidCable = errors.New("cable number out of range")
)

// ParsePacket copies the first four bytes of b into a Packet.
func ParsePacket(b []byte) (contracts.Packet, error) {
	var p contracts.Packet
	if len(b) < contracts.PacketSize {
		return p, fmt.Errorf("%w: %d bytes", ErrShortPacket, len(b))
	}
	copy(p[:], b)
	return p, nil
}

// MessageLength is the total length of the message that starts with status,
// or 0 for SysEx and for bytes that are not status bytes.
func MessageLength(status byte) int {
	if status < 0x80 {
		return 0
	}
	switch status & 0xF0 {
	case 0xC0, 0xD0:
		return 2
	case 0xF0:
	default:
		return 3
	}
	switch status {
	case 0xF1, 0xF3:
		return 2
	case 0xF2:
		return 3
	case 0xF0, 0xF7:
		return 0
	}
	return 1
}

// cinFor picks the code index number for a single, complete message.
func cinFor(status byte) (uint8, bool) {
	if status&0xF0 != 0xF0 {
		return status >> 4, true
	}
	switch MessageLength(status) {
	case 1:
		if status >= 0xF8 {
			return CINSingleByte, true
		}
		return CINSysExEnd1, true
	case 2:
		return CINSysCommon2, true
	case 3:
		return CINSysCommon3, true
	}
	return 0, false
}

// FromMessage wraps one raw MIDI 1.0 message, as delivered by host MIDI APIs,
// into a USB-MIDI packet on the given cable.
func FromMessage(cable uint8, msg []byte) (contracts.Packet, error) {
	var p contracts.Packet
	if cable > 0x0F {
		return p, fmt.Errorf("%w: %d", ErrInvalidCable, cable)
	}
	if len(msg) == 0 || msg[0] < 0x80 {
		return p, ErrNotStatus
	}
	cin, ok := cinFor(msg[0])
	if !ok {
		return p, fmt.Errorf("%w: status 0x%02X", ErrUnsupported, msg[0])
	}
	n := MessageLength(msg[0])
	if len(msg) < n {
		return p, fmt.Errorf("%w: want %d bytes, got %d", ErrShortPacket, n, len(msg))
	}
	p[0] = cable<<4 | cin
	copy(p[1:], msg[:n])
	return p, nil
}

// SplitMessages walks a raw MIDI byte stream and calls fn for every complete
// message. Real-time bytes are delivered where they appear, even inside
// another message, which then continues. Stray data bytes and SysEx payloads
// are skipped, a message cut short by a new status is dropped, and a
// truncated trailing message is ignored. The slice passed to fn is only
// valid during the call.
func SplitMessages(data []byte, fn func(msg []byte)) {
	var (
		msg   [3]byte
		n     int
		want  int
		sysex bool
	)
	for i, b := range data {
		switch {
		case b >= 0xF8:
			fn(data[i : i+1])
		case b == 0xF0:
			sysex, n = true, 0
		case b == 0xF7:
			sysex, n = false, 0
		case b >= 0x80:
			sysex, n = false, 0
			if want = MessageLength(b); want == 0 {
				continue
			}
			msg[0], n = b, 1
			if want == 1 {
				fn(msg[:1])
				n = 0
			}
		case sysex || n == 0:
			// SysEx payload or stray data.
		default:
			msg[n] = b
			n++
			if n == want {
				fn(msg[:n])
				n = 0
			}
		}
	}
}
