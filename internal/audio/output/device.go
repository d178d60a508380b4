//go:build cgo

package output

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gen2brain/malgo"
	"github.com/leandrodaf/picoadk/sdk/contracts"
)

var (
	ErrDeviceInit  = errors.New("error initializing audio device")
	ErrDeviceStart = errors.New("error starting audio device")
)

// DeviceSink plays blocks on the default playback device. The transmitter
// pushes into a FIFO and the device callback pulls from it; every pulled
// block also ticks Clock, which should drive rendering.
type DeviceSink struct {
	logger    contracts.Logger
	ctx       *malgo.AllocatedContext
	device    *malgo.Device
	fifo      *FIFO
	clock     *PullClock
	closeOnce sync.Once
}

// NewDeviceSink opens the default playback device as stereo S32 at the
// configured rate, with room for every pool block in its FIFO.
func NewDeviceSink(cfg contracts.AudioConfig, logger contracts.Logger) (*DeviceSink, error) {
	mctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(message string) {
		logger.Debug("malgo", logger.Field().String("message", message))
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeviceInit, err)
	}

	s := &DeviceSink{
		logger: logger,
		ctx:    mctx,
		fifo:   NewFIFO(cfg.Blocks * cfg.BlockFrames * 2),
	}
	s.clock = NewPullClock(s.fifo, cfg.BlockFrames, 2, cfg.Blocks)

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Playback)
	deviceConfig.Playback.Format = malgo.FormatS32
	deviceConfig.Playback.Channels = 2
	deviceConfig.SampleRate = uint32(cfg.SampleRate)
	deviceConfig.PeriodSizeInFrames = uint32(cfg.BlockFrames)
	deviceConfig.Alsa.NoMMap = 1

	s.device, err = malgo.InitDevice(mctx.Context, deviceConfig, malgo.DeviceCallbacks{
		Data: func(pOutput, _ []byte, _ uint32) {
			s.clock.Pull(pOutput)
		},
		Stop: func() {
			logger.Warn("Audio device stopped")
		},
	})
	if err != nil {
		s.freeContext()
		return nil, fmt.Errorf("%w: %v", ErrDeviceInit, err)
	}

	if err := s.device.Start(); err != nil {
		s.device.Uninit()
		s.freeContext()
		return nil, fmt.Errorf("%w: %v", ErrDeviceStart, err)
	}

	logger.Info("Audio device started",
		logger.Field().Int("sampleRate", cfg.SampleRate),
		logger.Field().Int("blockFrames", cfg.BlockFrames))
	return s, nil
}

// Write queues one block for playback.
func (s *DeviceSink) Write(samples []int32) error {
	return s.fifo.Write(samples)
}

// Clock is the render trigger paced by the device callback.
func (s *DeviceSink) Clock() contracts.Clock { return s.clock }

// Close stops the device and releases the backend context.
func (s *DeviceSink) Close() error {
	s.closeOnce.Do(func() {
		_ = s.device.Stop()
		s.device.Uninit()
		s.freeContext()
		s.logger.Info("Audio device closed",
			s.logger.Field().Uint64("underruns", s.fifo.Underruns()),
			s.logger.Field().Uint64("overflows", s.fifo.Overflows()),
			s.logger.Field().Uint64("missedTicks", s.clock.Missed()))
	})
	return nil
}

func (s *DeviceSink) freeContext() {
	_ = s.ctx.Uninit()
	s.ctx.Free()
}

// ListDevices returns the playback devices known to the audio backend.
func ListDevices() ([]contracts.DeviceInfo, error) {
	mctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeviceInit, err)
	}
	defer func() {
		_ = mctx.Uninit()
		mctx.Free()
	}()

	infos, err := mctx.Devices(malgo.Playback)
	if err != nil {
		return nil, fmt.Errorf("error listing playback devices: %w", err)
	}
	devices := make([]contracts.DeviceInfo, len(infos))
	for i, info := range infos {
		devices[i] = contracts.DeviceInfo{
			ID:         i,
			Kind:       contracts.AudioOutput,
			Name:       info.Name(),
			EntityName: "playback",
		}
	}
	return devices, nil
}
