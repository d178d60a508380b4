package contracts

import "time"

// SampleSource generates stereo frames for the render callback. Fill is called
// once per frame index and must not block, allocate or log.
type SampleSource interface {
	Fill(frame int) (left, right int32)
}

// SampleFunc adapts a plain function to SampleSource.
type SampleFunc func(frame int) (left, right int32)

func (f SampleFunc) Fill(frame int) (left, right int32) { return f(frame) }

// Silence is the default SampleSource; it writes zeros.
var Silence SampleSource = SampleFunc(func(int) (int32, int32) { return 0, 0 })

// Sink is the audio output that consumes filled blocks. Write receives
// interleaved stereo samples and must not retain the slice.
type Sink interface {
	Write(samples []int32) error
	Close() error
}

// AudioConfig describes the block geometry of the render pipeline.
type AudioConfig struct {
	SampleRate  int // Frames per second.
	BlockFrames int // Frames per block; one render call fills one block.
	Blocks      int // Number of blocks cycled through the pool.
}

// BlockPeriod is the interval between render invocations.
func (c AudioConfig) BlockPeriod() time.Duration {
	if c.SampleRate <= 0 {
		return 0
	}
	return time.Duration(c.BlockFrames) * time.Second / time.Duration(c.SampleRate)
}
