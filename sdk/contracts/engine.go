package contracts

import "context"

// PoolStats is a snapshot of the audio buffer pool counters.
type PoolStats struct {
	Blocks    int    // Total number of blocks.
	Free      int    // Blocks currently waiting in the free ring.
	Filled    int    // Blocks released and waiting for transmission.
	Acquired  uint64 // Successful acquisitions.
	Exhausted uint64 // Non-blocking acquisitions that found no free block.
	Released  uint64 // Blocks handed back for transmission.
	Clamped   uint64 // Releases whose frame count exceeded capacity.
	Completed uint64 // Blocks returned to free after transmission.
}

// RenderStats is a snapshot of the render callback counters.
type RenderStats struct {
	Cycles   uint64 // Render invocations.
	Rendered uint64 // Invocations that filled and released a block.
	Dropped  uint64 // Invocations skipped because no block was free.
	Overruns uint64 // Invocations that took longer than one block period.
	Faults   uint64 // Invocations whose sample source panicked; the block went out silent.
}

// DecoderStats is a snapshot of the MIDI decoder counters.
type DecoderStats struct {
	Packets  uint64 // Packets inspected.
	Decoded  uint64 // Packets that produced an event.
	Dropped  uint64 // Unsupported or malformed packets.
	Filtered uint64 // Valid events rejected by the cable or command filter.
}

// DispatchStats counts events handed to the registry.
type DispatchStats struct {
	Events    [KindCount]uint64 // Events dispatched, by kind.
	Unhandled uint64            // Events dropped because no handler was registered.
}

// Stats aggregates engine diagnostics.
type Stats struct {
	Pool     PoolStats
	Render   RenderStats
	Decoder  DecoderStats
	Dispatch DispatchStats
}

// Engine runs the render pipeline and the MIDI pump.
type Engine interface {
	Register(kind EventKind, h Handler) // Installs h for kind, replacing any previous handler.
	Unregister(kind EventKind)          // Removes the handler for kind.
	Run(ctx context.Context) error      // Runs until ctx is cancelled or a task fails.
	Stats() Stats                       // Returns a diagnostics snapshot.
	ListDevices() ([]DeviceInfo, error) // Lists MIDI inputs known to the transport.
	Close() error                       // Releases the transport and sink.
}
