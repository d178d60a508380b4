package audio

import "sync/atomic"

// Channels is the number of interleaved channels in a frame.
const Channels = 2

type blockState uint32

const (
	stateFree blockState = iota
	stateProducing
	stateFilled
	stateTransmitting
)

func (s blockState) String() string {
	switch s {
	case stateFree:
		return "free"
	case stateProducing:
		return "producing"
	case stateFilled:
		return "filled"
	case stateTransmitting:
		return "transmitting"
	}
	return "invalid"
}

// Block is a fixed-capacity buffer of interleaved stereo frames. Only the
// current owner (producer between Acquire and Release, consumer between Next
// and Complete) may touch its samples.
type Block struct {
	pool    *Pool
	index   uint32
	samples []int32
	frames  int
	state   atomic.Uint32
}

// Index is the block's slot number in its pool.
func (b *Block) Index() int { return int(b.index) }

// Capacity is the maximum number of frames the block holds.
func (b *Block) Capacity() int { return len(b.samples) / Channels }

// Frames is the number of valid frames set by the last Release.
func (b *Block) Frames() int { return b.frames }

// Samples exposes the whole backing storage, 2*Capacity() values.
func (b *Block) Samples() []int32 { return b.samples }

// Data returns the valid interleaved samples.
func (b *Block) Data() []int32 { return b.samples[:b.frames*Channels] }

// SetFrame writes one stereo frame. Out-of-range frames are ignored.
func (b *Block) SetFrame(i int, left, right int32) {
	if i < 0 || i >= b.Capacity() {
		return
	}
	b.samples[i*Channels] = left
	b.samples[i*Channels+1] = right
}

// Frame reads one stereo frame.
func (b *Block) Frame(i int) (left, right int32) {
	if i < 0 || i >= b.Capacity() {
		return 0, 0
	}
	return b.samples[i*Channels], b.samples[i*Channels+1]
}

func (b *Block) transition(from, to blockState) bool {
	return b.state.CompareAndSwap(uint32(from), uint32(to))
}

func (b *Block) loadState() blockState {
	return blockState(b.state.Load())
}
