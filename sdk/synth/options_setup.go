package synth

import (
	"errors"
	"fmt"

	"github.com/leandrodaf/picoadk/internal/audio"
	"github.com/leandrodaf/picoadk/internal/audio/output"
	"github.com/leandrodaf/picoadk/internal/logger"
	"github.com/leandrodaf/picoadk/internal/midi/usbmidi"
	"github.com/leandrodaf/picoadk/internal/status"
	"github.com/leandrodaf/picoadk/sdk/contracts"
)

// Defaults for the block geometry.
const (
	DefaultSampleRate  = 48000
	DefaultBlockFrames = 256
	DefaultBlocks      = 3
)

// ErrInvalidAudioConfig is returned for non-positive rates or block sizes.
var ErrInvalidAudioConfig = errors.New("invalid audio configuration")

// applyDefaultOptions sets default values for EngineOptions if not explicitly provided.
//
// opts ...contracts.Option: A variadic list of option functions that can modify EngineOptions.
//
// Returns:
//   - contracts.EngineOptions: the finalized options with defaults applied.
//   - error: an error if the resulting audio configuration is unusable.
func applyDefaultOptions(opts ...contracts.Option) (contracts.EngineOptions, error) {
	options := &contracts.EngineOptions{
		LogLevel: contracts.InfoLevel,
		Cable:    usbmidi.AnyCable,
	}
	for _, opt := range opts {
		opt(options)
	}

	if options.Logger == nil {
		options.Logger = logger.NewZapLogger()
	}
	options.Logger.SetLevel(options.LogLevel)
	if options.LogFilePath != "" {
		options.Logger.SetDestination(contracts.FileLog, options.LogFilePath)
	}

	if options.CoreMIDIConfig == nil {
		options.CoreMIDIConfig = &contracts.CoreMIDIConfig{ClientName: "picoadk"}
	}
	if options.TransportName == "" {
		options.TransportName = TransportAuto
	}

	if options.Audio.SampleRate == 0 {
		options.Audio.SampleRate = DefaultSampleRate
	}
	if options.Audio.BlockFrames == 0 {
		options.Audio.BlockFrames = DefaultBlockFrames
	}
	if options.Audio.Blocks == 0 {
		options.Audio.Blocks = DefaultBlocks
	}
	if err := validateAudio(options.Audio); err != nil {
		return contracts.EngineOptions{}, err
	}

	if options.Source == nil {
		options.Source = contracts.Silence
	}
	if options.Sink == nil {
		options.Sink = &output.Discard{}
	}
	if options.Clock == nil {
		if src, ok := options.Sink.(contracts.ClockSource); ok {
			options.Clock = src.Clock()
		}
	}
	if options.Indicator == nil {
		options.Indicator = status.NopIndicator{}
	}
	if options.StatusInterval <= 0 {
		options.StatusInterval = status.DefaultInterval
	}
	return *options, nil
}

func validateAudio(cfg contracts.AudioConfig) error {
	switch {
	case cfg.SampleRate <= 0:
		return fmt.Errorf("%w: sample rate %d", ErrInvalidAudioConfig, cfg.SampleRate)
	case cfg.BlockFrames <= 0:
		return fmt.Errorf("%w: block frames %d", ErrInvalidAudioConfig, cfg.BlockFrames)
	case cfg.Blocks < audio.MinBlocks || cfg.Blocks > audio.MaxBlocks:
		return fmt.Errorf("%w: %d blocks (want %d-%d)", ErrInvalidAudioConfig, cfg.Blocks, audio.MinBlocks, audio.MaxBlocks)
	}
	return nil
}
