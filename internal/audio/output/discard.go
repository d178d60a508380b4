package output

import "sync/atomic"

// Discard is a sink that accepts and drops every block, for headless runs.
type Discard struct {
	blocks atomic.Uint64
}

func (d *Discard) Write([]int32) error {
	d.blocks.Add(1)
	return nil
}

func (d *Discard) Close() error { return nil }

// Blocks is the number of blocks written.
func (d *Discard) Blocks() uint64 { return d.blocks.Load() }
