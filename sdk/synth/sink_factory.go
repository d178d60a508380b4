package synth

import (
	"errors"
	"fmt"

	"github.com/leandrodaf/picoadk/internal/audio/output"
	"github.com/leandrodaf/picoadk/sdk/contracts"
)

// Output names accepted by NewSink.
const (
	OutputNull   = "null"
	OutputDevice = "device"
)

// ErrUnknownOutput is returned for unrecognised output names.
var ErrUnknownOutput = errors.New("unknown audio output")

// NewSink builds the named audio output for the given block geometry.
func NewSink(name string, cfg contracts.AudioConfig, log contracts.Logger) (contracts.Sink, error) {
	switch name {
	case OutputNull, "":
		return &output.Discard{}, nil
	case OutputDevice:
		s, err := output.NewDeviceSink(cfg, log)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownOutput, name)
}

// ListOutputDevices lists the playback devices of the audio backend.
func ListOutputDevices() ([]contracts.DeviceInfo, error) {
	return output.ListDevices()
}
