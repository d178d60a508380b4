package usbmidi

import (
	"sync/atomic"

	"github.com/leandrodaf/picoadk/sdk/contracts"
	"gitlab.com/gomidi/midi/v2"
)

// AnyCable disables cable filtering.
const AnyCable = -1

// Decoder turns USB-MIDI packets into events. It keeps no per-stream state,
// so a bad packet cannot affect the next one.
type Decoder struct {
	filter *contracts.MIDIEventFilter
	cable  int

	packets  atomic.Uint64
	decoded  atomic.Uint64
	dropped  atomic.Uint64
	filtered atomic.Uint64
}

// NewDecoder builds a decoder. A nil filter accepts every supported command;
// a negative cable accepts every cable.
func NewDecoder(filter *contracts.MIDIEventFilter, cable int) *Decoder {
	return &Decoder{filter: filter, cable: cable}
}

// Decode returns the event carried by p. Unsupported and malformed packets,
// and events rejected by the filters, report false.
//
// A Note On with velocity zero is returned as a Note Off with velocity zero.
func (d *Decoder) Decode(p contracts.Packet) (contracts.Event, bool) {
	d.packets.Add(1)

	ev, ok := decode(p)
	if !ok {
		d.dropped.Add(1)
		return contracts.Event{}, false
	}
	if d.cable >= 0 && int(p.Cable()) != d.cable {
		d.filtered.Add(1)
		return contracts.Event{}, false
	}
	if !d.filter.Allows(ev.Kind.Command()) {
		d.filtered.Add(1)
		return contracts.Event{}, false
	}

	d.decoded.Add(1)
	return ev, true
}

func decode(p contracts.Packet) (contracts.Event, bool) {
	status := p.Status()
	if status < 0x80 || status >= 0xF0 {
		return contracts.Event{}, false
	}
	// Channel voice packets carry the status nibble as their code index.
	if p.CIN() != status>>4 {
		return contracts.Event{}, false
	}
	n := MessageLength(status)
	for _, b := range p[2 : 1+n] {
		if b >= 0x80 {
			return contracts.Event{}, false
		}
	}

	msg := midi.Message(p[1 : 1+n])
	var ch, data1, data2 uint8
	switch {
	case msg.GetNoteStart(&ch, &data1, &data2):
		return contracts.NewNoteOn(data1, data2, ch), true
	case msg.GetNoteOff(&ch, &data1, &data2):
		return contracts.NewNoteOff(data1, data2, ch), true
	case msg.GetNoteEnd(&ch, &data1):
		return contracts.NewNoteOff(data1, 0, ch), true
	case msg.GetControlChange(&ch, &data1, &data2):
		return contracts.NewControlChange(data1, data2, ch), true
	}
	return contracts.Event{}, false
}

// Stats returns a snapshot of the decoder counters.
func (d *Decoder) Stats() contracts.DecoderStats {
	return contracts.DecoderStats{
		Packets:  d.packets.Load(),
		Decoded:  d.decoded.Load(),
		Dropped:  d.dropped.Load(),
		Filtered: d.filtered.Load(),
	}
}
