package synth

import (
	"math"
	"sync/atomic"

	"github.com/leandrodaf/picoadk/sdk/contracts"
)

// Voice is a monophonic square-wave oscillator. It is a SampleSource for the
// render path and a Handler for note events, so one value can be passed to
// WithSampleSource and registered for KindNoteOn and KindNoteOff.
type Voice struct {
	steps [128]uint32
	state atomic.Uint32 // note | velocity<<8; velocity 0 means silent
	phase uint32        // owned by the render goroutine
}

// NewVoice builds a voice tuned for sampleRate (A4 = 440 Hz).
func NewVoice(sampleRate int) *Voice {
	v := &Voice{}
	for n := range v.steps {
		freq := 440 * math.Pow(2, float64(n-69)/12)
		v.steps[n] = uint32(freq / float64(sampleRate) * (1 << 32))
	}
	return v
}

// HandleEvent starts or stops the voice. A NoteOff only silences the note
// that is currently sounding.
func (v *Voice) HandleEvent(ev contracts.Event) {
	switch ev.Kind {
	case contracts.KindNoteOn:
		v.state.Store(uint32(ev.Note()) | uint32(ev.Velocity())<<8)
	case contracts.KindNoteOff:
		cur := v.state.Load()
		if uint8(cur) == ev.Note() {
			v.state.CompareAndSwap(cur, uint32(ev.Note()))
		}
	}
}

// Sounding reports the current note and whether it is audible.
func (v *Voice) Sounding() (note uint8, on bool) {
	s := v.state.Load()
	return uint8(s), s>>8 != 0
}

// Fill produces one stereo frame.
func (v *Voice) Fill(int) (left, right int32) {
	s := v.state.Load()
	vel := int32(s >> 8)
	if vel == 0 {
		return 0, 0
	}
	v.phase += v.steps[uint8(s)&0x7F]
	amp := vel << 23
	if v.phase&0x80000000 != 0 {
		amp = -amp
	}
	return amp, amp
}
