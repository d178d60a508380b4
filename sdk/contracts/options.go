package contracts

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MIDIEventFilter allows users to specify which MIDI commands to dispatch.
// An empty Commands list lets every supported command through.
type MIDIEventFilter struct {
	Commands []MIDICommand // List of MIDI commands to keep.
}

// Allows reports whether the command passes the filter.
func (f *MIDIEventFilter) Allows(cmd MIDICommand) bool {
	if f == nil || len(f.Commands) == 0 {
		return true
	}
	for _, c := range f.Commands {
		if c == cmd {
			return true
		}
	}
	return false
}

// CoreMIDIConfig holds configuration for CoreMIDI.
type CoreMIDIConfig struct {
	ClientName string // Name of the MIDI client.
}

// Clock drives the render trigger. The default is the sink's clock when the
// sink is a ClockSource, and otherwise a time.Ticker running at the block period.
type Clock interface {
	C() <-chan time.Time
	Stop()
}

// ClockSource is implemented by sinks that pace rendering themselves, such as
// an audio device pulling from its callback.
type ClockSource interface {
	Clock() Clock
}

// Indicator is a status output toggled by the housekeeping task, such as an LED.
type Indicator interface {
	Set(on bool)
}

// EngineOptions defines the configuration options for the engine.
type EngineOptions struct {
	Logger          Logger                // Logger for logging events and errors.
	LogLevel        LogLevel              // Level of logging to use.
	LogFilePath     string                // File path for logging if file logging is enabled.
	MIDIEventFilter *MIDIEventFilter      // Optional filter for MIDI events to dispatch.
	CoreMIDIConfig  *CoreMIDIConfig       // Configuration specific to CoreMIDI.
	Audio           AudioConfig           // Block geometry.
	Source          SampleSource          // Sample generator; Silence when nil.
	Transport       Transport             // MIDI packet source.
	TransportName   string                // Transport to build when Transport is nil.
	DeviceID        int                   // MIDI input index to open; negative skips Open.
	Cable           int                   // USB-MIDI cable to accept; negative accepts all.
	Sink            Sink                  // Audio output; discards when nil.
	Clock           Clock                 // Render trigger; ticker at the block period when nil.
	Indicator       Indicator             // Status output toggled by the housekeeping task.
	StatusInterval  time.Duration         // Period of the housekeeping task.
	Registerer      prometheus.Registerer // Metrics registry; a private registry when nil.
}

// Option is a function that modifies EngineOptions.
type Option func(*EngineOptions)

// WithLogger sets the logger for the engine.
func WithLogger(l Logger) Option {
	return func(opts *EngineOptions) {
		opts.Logger = l
	}
}

// WithLogLevel sets the logging level for the engine.
func WithLogLevel(level LogLevel) Option {
	return func(opts *EngineOptions) {
		opts.LogLevel = level
	}
}

// WithLogFile sends log output to the given file.
func WithLogFile(path string) Option {
	return func(opts *EngineOptions) {
		opts.LogFilePath = path
	}
}

// WithMIDIEventFilter sets the MIDI event filter for the engine.
func WithMIDIEventFilter(filter MIDIEventFilter) Option {
	return func(opts *EngineOptions) {
		opts.MIDIEventFilter = &filter
	}
}

// WithCoreMIDIConfig sets the CoreMIDI configuration for the engine.
func WithCoreMIDIConfig(config CoreMIDIConfig) Option {
	return func(opts *EngineOptions) {
		opts.CoreMIDIConfig = &config
	}
}

// WithAudio sets the sample rate and block geometry.
func WithAudio(cfg AudioConfig) Option {
	return func(opts *EngineOptions) {
		opts.Audio = cfg
	}
}

// WithSampleSource plugs in the sample generator.
func WithSampleSource(src SampleSource) Option {
	return func(opts *EngineOptions) {
		opts.Source = src
	}
}

// WithTransport uses an already constructed MIDI transport.
func WithTransport(t Transport) Option {
	return func(opts *EngineOptions) {
		opts.Transport = t
	}
}

// WithTransportName selects a built-in transport by name.
func WithTransportName(name string) Option {
	return func(opts *EngineOptions) {
		opts.TransportName = name
	}
}

// WithDeviceID selects the MIDI input to open.
func WithDeviceID(id int) Option {
	return func(opts *EngineOptions) {
		opts.DeviceID = id
	}
}

// WithCable restricts decoding to a single USB-MIDI cable.
func WithCable(cable int) Option {
	return func(opts *EngineOptions) {
		opts.Cable = cable
	}
}

// WithSink sets the audio output.
func WithSink(s Sink) Option {
	return func(opts *EngineOptions) {
		opts.Sink = s
	}
}

// WithClock replaces the render trigger.
func WithClock(c Clock) Option {
	return func(opts *EngineOptions) {
		opts.Clock = c
	}
}

// WithIndicator sets the status output and its toggle interval.
func WithIndicator(ind Indicator, interval time.Duration) Option {
	return func(opts *EngineOptions) {
		opts.Indicator = ind
		opts.StatusInterval = interval
	}
}

// WithMetrics registers engine metrics on r.
func WithMetrics(r prometheus.Registerer) Option {
	return func(opts *EngineOptions) {
		opts.Registerer = r
	}
}
