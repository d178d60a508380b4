// Package output provides audio sinks for the transmitter.
package output

import (
	"encoding/binary"
	"errors"
	"sync/atomic"

	"github.com/smallnest/ringbuffer"
)

// BytesPerSample is the width of one S32 sample on the wire.
const BytesPerSample = 4

// ErrOverflow is returned when the FIFO has no room for a whole block.
var ErrOverflow = errors.New("output fifo overflow")

// FIFO carries little-endian S32 samples from the transmitter to a pull-based
// device callback.
type FIFO struct {
	rb      *ringbuffer.RingBuffer
	scratch []byte

	overflows atomic.Uint64
	underruns atomic.Uint64
}

// NewFIFO sizes the FIFO for the given number of interleaved samples.
func NewFIFO(samples int) *FIFO {
	return &FIFO{
		rb:      ringbuffer.New(samples * BytesPerSample),
		scratch: make([]byte, 0, samples*BytesPerSample),
	}
}

// Write encodes samples and queues them. Only the transmitter goroutine may
// call Write. A block that does not fit is dropped whole.
func (f *FIFO) Write(samples []int32) error {
	need := len(samples) * BytesPerSample
	if cap(f.scratch) < need {
		f.scratch = make([]byte, 0, need)
	}
	buf := f.scratch[:need]
	for i, s := range samples {
		binary.LittleEndian.PutUint32(buf[i*BytesPerSample:], uint32(s))
	}

	if f.rb.Free() < need {
		f.overflows.Add(1)
		return ErrOverflow
	}
	if _, err := f.rb.Write(buf); err != nil {
		f.overflows.Add(1)
		if errors.Is(err, ringbuffer.ErrIsFull) {
			return ErrOverflow
		}
		return err
	}
	return nil
}

// Pull fills out with queued bytes and pads the rest with silence.
func (f *FIFO) Pull(out []byte) int {
	n, _ := f.rb.Read(out)
	if n < len(out) {
		clear(out[n:])
		f.underruns.Add(1)
	}
	return n
}

// Buffered is the number of bytes waiting to be pulled.
func (f *FIFO) Buffered() int { return f.rb.Length() }

// Overflows counts dropped blocks.
func (f *FIFO) Overflows() uint64 { return f.overflows.Load() }

// Underruns counts pulls that had to be padded with silence.
func (f *FIFO) Underruns() uint64 { return f.underruns.Load() }

// Reset drops everything queued.
func (f *FIFO) Reset() { f.rb.Reset() }
