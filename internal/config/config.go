// Package config loads the command line settings through viper: built-in
// defaults, an optional YAML file, PICOADK_ environment variables and flags.
package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/leandrodaf/picoadk/sdk/contracts"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g. PICOADK_AUDIO_BLOCKS.
const EnvPrefix = "PICOADK"

var (
	ErrInvalidSampleRate = errors.New("invalid sample rate")
	ErrInvalidBlock      = errors.New("invalid block geometry")
	ErrInvalidOutput     = errors.New("invalid audio output")
	ErrInvalidTransport  = errors.New("invalid MIDI transport")
	ErrInvalidCable      = errors.New("invalid USB-MIDI cable")
	ErrInvalidLogLevel   = errors.New("invalid log level")
	ErrInvalidInterval   = errors.New("invalid status interval")
	ErrReadConfig        = errors.New("failed to read config file")
)

// Settings mirrors the configuration keys.
type Settings struct {
	Audio struct {
		SampleRate  int    `mapstructure:"samplerate"`
		BlockFrames int    `mapstructure:"blockframes"`
		Blocks      int    `mapstructure:"blocks"`
		Output      string `mapstructure:"output"`
	} `mapstructure:"audio"`

	MIDI struct {
		Transport string `mapstructure:"transport"`
		Device    int    `mapstructure:"device"`
		Cable     int    `mapstructure:"cable"`
	} `mapstructure:"midi"`

	Log struct {
		Level string `mapstructure:"level"`
		File  string `mapstructure:"file"`
	} `mapstructure:"log"`

	Status struct {
		Interval time.Duration `mapstructure:"interval"`
	} `mapstructure:"status"`
}

// Transports and outputs accepted by Validate.
var (
	Transports = []string{"auto", "loopback", "coremidi", "winmm", "rtmidi"}
	Outputs    = []string{"null", "device"}
)

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("audio.samplerate", 48000)
	v.SetDefault("audio.blockframes", 256)
	v.SetDefault("audio.blocks", 3)
	v.SetDefault("audio.output", "null")

	v.SetDefault("midi.transport", "auto")
	v.SetDefault("midi.device", 0)
	v.SetDefault("midi.cable", -1)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")

	v.SetDefault("status.interval", 500*time.Millisecond)
}

// New returns a viper instance with defaults and environment binding.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the optional YAML file at path into v and decodes the settings.
func Load(v *viper.Viper, path string) (*Settings, error) {
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrReadConfig, err)
		}
	}

	settings := &Settings{}
	if err := v.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

// Validate checks every value against its accepted range.
func (s *Settings) Validate() error {
	if s.Audio.SampleRate <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidSampleRate, s.Audio.SampleRate)
	}
	if s.Audio.BlockFrames <= 0 {
		return fmt.Errorf("%w: %d frames per block", ErrInvalidBlock, s.Audio.BlockFrames)
	}
	if s.Audio.Blocks < 2 || s.Audio.Blocks > 16 {
		return fmt.Errorf("%w: %d blocks (want 2-16)", ErrInvalidBlock, s.Audio.Blocks)
	}
	if !slices.Contains(Outputs, s.Audio.Output) {
		return fmt.Errorf("%w: %q (want one of %v)", ErrInvalidOutput, s.Audio.Output, Outputs)
	}
	if !slices.Contains(Transports, s.MIDI.Transport) {
		return fmt.Errorf("%w: %q (want one of %v)", ErrInvalidTransport, s.MIDI.Transport, Transports)
	}
	if s.MIDI.Cable < -1 || s.MIDI.Cable > 15 {
		return fmt.Errorf("%w: %d", ErrInvalidCable, s.MIDI.Cable)
	}
	if _, ok := contracts.ParseLogLevel(s.Log.Level); !ok {
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, s.Log.Level)
	}
	if s.Status.Interval <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidInterval, s.Status.Interval)
	}
	return nil
}

// LogLevel returns the parsed log level; Validate guarantees it is known.
func (s *Settings) LogLevel() contracts.LogLevel {
	level, _ := contracts.ParseLogLevel(s.Log.Level)
	return level
}

// AudioConfig returns the block geometry.
func (s *Settings) AudioConfig() contracts.AudioConfig {
	return contracts.AudioConfig{
		SampleRate:  s.Audio.SampleRate,
		BlockFrames: s.Audio.BlockFrames,
		Blocks:      s.Audio.Blocks,
	}
}
