package synth

import (
	"errors"
	"fmt"
	"runtime"
	"sort"

	"github.com/leandrodaf/picoadk/internal/midi/loopback"
	"github.com/leandrodaf/picoadk/internal/midi/mididarwin"
	"github.com/leandrodaf/picoadk/internal/midi/midirtmidi"
	"github.com/leandrodaf/picoadk/internal/midi/midiwindows"
	"github.com/leandrodaf/picoadk/sdk/contracts"
)

// Transport names accepted by WithTransportName.
const (
	TransportAuto     = "auto"
	TransportLoopback = "loopback"
	TransportCoreMIDI = "coremidi"
	TransportWinMM    = "winmm"
	TransportRtMidi   = "rtmidi"
)

// ErrUnknownTransport is returned when the transport name is not registered.
var ErrUnknownTransport = errors.New("unknown MIDI transport")

// transportInitializers maps transport names to their constructors.
var transportInitializers = map[string]func(*contracts.EngineOptions) (contracts.Transport, error){
	TransportLoopback: loopback.NewTransport,
	TransportCoreMIDI: mididarwin.NewTransport,  // macOS CoreMIDI.
	TransportWinMM:    midiwindows.NewTransport, // Windows multimedia API.
	TransportRtMidi:   midirtmidi.NewTransport,  // ALSA through RtMidi.
}

// nativeTransports picks the host MIDI API for "auto".
var nativeTransports = map[string]string{
	"darwin":  TransportCoreMIDI,
	"windows": TransportWinMM,
	"linux":   TransportRtMidi,
}

// NewTransport builds the transport named in opts. "auto" picks the host MIDI
// API and falls back to loopback when that API cannot be initialised.
func NewTransport(opts *contracts.EngineOptions) (contracts.Transport, error) {
	name := ResolveTransportName(opts.TransportName)
	initializer, ok := transportInitializers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s (have %v)", ErrUnknownTransport, name, TransportNames())
	}
	t, err := initializer(opts)
	if err != nil && isAuto(opts.TransportName) && name != TransportLoopback {
		opts.Logger.Warn("Host MIDI transport unavailable; using loopback",
			opts.Logger.Field().String("transport", name),
			opts.Logger.Field().Error("error", err))
		return loopback.NewTransport(opts)
	}
	return t, err
}

func isAuto(name string) bool {
	return name == TransportAuto || name == ""
}

// ResolveTransportName maps "auto" to the host transport.
func ResolveTransportName(name string) string {
	if !isAuto(name) {
		return name
	}
	if native, ok := nativeTransports[runtime.GOOS]; ok {
		return native
	}
	return TransportLoopback
}

// TransportNames lists the registered transport names.
func TransportNames() []string {
	names := make([]string, 0, len(transportInitializers))
	for name := range transportInitializers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
