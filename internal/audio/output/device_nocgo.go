//go:build !cgo

package output

import (
	"errors"

	"github.com/leandrodaf/picoadk/sdk/contracts"
)

// ErrNoAudioBackend is returned when the binary was built without cgo.
var ErrNoAudioBackend = errors.New("audio device output requires cgo")

// DeviceSink is unavailable without cgo.
type DeviceSink struct{}

func NewDeviceSink(cfg contracts.AudioConfig, logger contracts.Logger) (*DeviceSink, error) {
	logger.Warn("Audio device output is not available in this build")
	return nil, ErrNoAudioBackend
}

func (s *DeviceSink) Write([]int32) error { return ErrNoAudioBackend }

func (s *DeviceSink) Close() error { return nil }

func ListDevices() ([]contracts.DeviceInfo, error) {
	return nil, ErrNoAudioBackend
}
