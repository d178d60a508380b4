// Package synth is the public entry point: it resolves options, builds the
// transport and the sink, and returns a ready engine.
package synth

import (
	"fmt"

	"github.com/leandrodaf/picoadk/internal/engine"
	"github.com/leandrodaf/picoadk/internal/midi/loopback"
	"github.com/leandrodaf/picoadk/sdk/contracts"
)

// NewEngine creates an engine with the specified options.
// It applies default options, builds the MIDI transport and the audio sink
// when they were not supplied, and opens the selected MIDI input.
//
// Returns:
//   - contracts.Engine: the engine, ready to Run.
//   - error: an error if a collaborator could not be created.
func NewEngine(opts ...contracts.Option) (contracts.Engine, error) {
	options, err := applyDefaultOptions(opts...)
	if err != nil {
		return nil, err
	}

	autoSelect := options.Transport == nil && isAuto(options.TransportName)
	if options.Transport == nil {
		options.Transport, err = NewTransport(&options)
		if err != nil {
			return nil, err
		}
	}
	if err := openTransport(&options, autoSelect); err != nil {
		return nil, err
	}

	e, err := engine.New(&options)
	if err != nil {
		_ = options.Transport.Close()
		return nil, err
	}
	return e, nil
}

// openTransport opens the selected MIDI input. When the transport was picked
// automatically and the host input cannot be opened, the engine runs on
// loopback instead.
func openTransport(options *contracts.EngineOptions, autoSelect bool) error {
	if options.DeviceID < 0 {
		return nil
	}
	err := options.Transport.Open(options.DeviceID)
	if err == nil {
		return nil
	}
	_ = options.Transport.Close()
	if !autoSelect {
		return fmt.Errorf("failed to open MIDI input %d: %w", options.DeviceID, err)
	}

	options.Logger.Warn("Host MIDI input unavailable; using loopback",
		options.Logger.Field().Int("deviceID", options.DeviceID),
		options.Logger.Field().Error("error", err))
	options.Transport, err = loopback.NewTransport(options)
	if err != nil {
		return err
	}
	return options.Transport.Open(0)
}
