package synth

import (
	"context"
	"errors"
	"runtime"
	"testing"
	"time"

	"github.com/leandrodaf/picoadk/internal/audio/output"
	"github.com/leandrodaf/picoadk/internal/logger"
	"github.com/leandrodaf/picoadk/internal/midi/loopback"
	"github.com/leandrodaf/picoadk/internal/midi/usbmidi"
	"github.com/leandrodaf/picoadk/internal/status"
	"github.com/leandrodaf/picoadk/sdk/contracts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDefaultOptions(t *testing.T) {
	opts, err := applyDefaultOptions(contracts.WithLogger(logger.NewNopLogger()))
	require.NoError(t, err)

	assert.Equal(t, contracts.AudioConfig{SampleRate: DefaultSampleRate, BlockFrames: DefaultBlockFrames, Blocks: DefaultBlocks}, opts.Audio)
	assert.Equal(t, TransportAuto, opts.TransportName)
	assert.Equal(t, usbmidi.AnyCable, opts.Cable)
	assert.Equal(t, 0, opts.DeviceID)
	assert.Equal(t, "picoadk", opts.CoreMIDIConfig.ClientName)
	assert.IsType(t, &output.Discard{}, opts.Sink)
	assert.IsType(t, status.NopIndicator{}, opts.Indicator)
	assert.Equal(t, status.DefaultInterval, opts.StatusInterval)
	assert.NotNil(t, opts.Source)
}

func TestApplyDefaultOptionsKeepsExplicitValues(t *testing.T) {
	opts, err := applyDefaultOptions(
		contracts.WithLogger(logger.NewNopLogger()),
		contracts.WithCable(3),
		contracts.WithDeviceID(-1),
		contracts.WithAudio(contracts.AudioConfig{SampleRate: 44100, BlockFrames: 32, Blocks: 2}),
		contracts.WithCoreMIDIConfig(contracts.CoreMIDIConfig{ClientName: "rig"}),
	)
	require.NoError(t, err)
	assert.Equal(t, 3, opts.Cable)
	assert.Equal(t, -1, opts.DeviceID)
	assert.Equal(t, contracts.AudioConfig{SampleRate: 44100, BlockFrames: 32, Blocks: 2}, opts.Audio)
	assert.Equal(t, "rig", opts.CoreMIDIConfig.ClientName)
}

func TestApplyDefaultOptionsRejectsBadAudio(t *testing.T) {
	tests := []contracts.AudioConfig{
		{SampleRate: -1},
		{BlockFrames: -5},
		{Blocks: 1},
		{Blocks: 17},
	}
	for _, cfg := range tests {
		_, err := applyDefaultOptions(contracts.WithLogger(logger.NewNopLogger()), contracts.WithAudio(cfg))
		assert.ErrorIs(t, err, ErrInvalidAudioConfig, "%+v", cfg)
	}
}

func TestResolveTransportName(t *testing.T) {
	assert.Equal(t, TransportLoopback, ResolveTransportName(TransportLoopback))
	native := ResolveTransportName(TransportAuto)
	switch runtime.GOOS {
	case "darwin":
		assert.Equal(t, TransportCoreMIDI, native)
	case "windows":
		assert.Equal(t, TransportWinMM, native)
	case "linux":
		assert.Equal(t, TransportRtMidi, native)
	default:
		assert.Equal(t, TransportLoopback, native)
	}
	assert.Equal(t, native, ResolveTransportName(""))
}

func TestNewTransportUnknown(t *testing.T) {
	_, err := NewTransport(&contracts.EngineOptions{Logger: logger.NewNopLogger(), TransportName: "usb-host"})
	assert.ErrorIs(t, err, ErrUnknownTransport)
	assert.Equal(t, []string{"coremidi", "loopback", "rtmidi", "winmm"}, TransportNames())
}

func TestNewEngineWithLoopback(t *testing.T) {
	voice := NewVoice(DefaultSampleRate)
	e, err := NewEngine(
		contracts.WithLogger(logger.NewNopLogger()),
		contracts.WithTransportName(TransportLoopback),
		contracts.WithSampleSource(voice),
		contracts.WithIndicator(nil, time.Millisecond),
	)
	require.NoError(t, err)
	defer e.Close()

	e.Register(contracts.KindNoteOn, voice)
	e.Register(contracts.KindNoteOff, voice)

	devices, err := e.ListDevices()
	require.NoError(t, err)
	assert.Equal(t, loopback.DeviceName, devices[0].Name)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	require.NoError(t, e.Run(ctx))
	assert.Positive(t, e.Stats().Render.Cycles)
}

func TestNewEngineRejectsBadDevice(t *testing.T) {
	_, err := NewEngine(
		contracts.WithLogger(logger.NewNopLogger()),
		contracts.WithTransportName(TransportLoopback),
		contracts.WithDeviceID(4),
	)
	assert.ErrorIs(t, err, loopback.ErrInvalidDevice)
}

func TestNewSink(t *testing.T) {
	cfg := contracts.AudioConfig{SampleRate: 48000, BlockFrames: 64, Blocks: 3}
	s, err := NewSink(OutputNull, cfg, logger.NewNopLogger())
	require.NoError(t, err)
	assert.IsType(t, &output.Discard{}, s)

	_, err = NewSink("speaker", cfg, logger.NewNopLogger())
	assert.ErrorIs(t, err, ErrUnknownOutput)
}

func TestVoice(t *testing.T) {
	v := NewVoice(48000)

	l, r := v.Fill(0)
	assert.Zero(t, l)
	assert.Zero(t, r)

	v.HandleEvent(contracts.NewNoteOn(69, 127, 0))
	note, on := v.Sounding()
	assert.Equal(t, uint8(69), note)
	assert.True(t, on)

	var positive, negative int
	for i := 0; i < 48000; i++ {
		l, r := v.Fill(i)
		require.Equal(t, l, r)
		require.NotZero(t, l)
		if l > 0 {
			positive++
		} else {
			negative++
		}
	}
	assert.InDelta(t, 24000, positive, 200)
	assert.InDelta(t, 24000, negative, 200)

	v.HandleEvent(contracts.NewNoteOff(60, 0, 0))
	_, on = v.Sounding()
	assert.True(t, on, "note off for another note is ignored")

	v.HandleEvent(contracts.NewNoteOff(69, 0, 0))
	_, on = v.Sounding()
	assert.False(t, on)
	l, _ = v.Fill(0)
	assert.Zero(t, l)
}

func TestNewEngineDefaultsAlwaysStart(t *testing.T) {
	e, err := NewEngine(contracts.WithLogger(logger.NewNopLogger()))
	require.NoError(t, err, "auto transport must fall back to loopback when the host input is unavailable")
	assert.NoError(t, e.Close())
}

type failingTransport struct {
	*loopback.Transport
	closed bool
}

func (f *failingTransport) Open(int) error { return errors.New("no such port") }

func (f *failingTransport) Close() error {
	f.closed = true
	return nil
}

func TestOpenTransportFallsBackOnlyForAuto(t *testing.T) {
	newOptions := func() (*contracts.EngineOptions, *failingTransport) {
		ft := &failingTransport{Transport: loopback.New(4, logger.NewNopLogger())}
		return &contracts.EngineOptions{Logger: logger.NewNopLogger(), Transport: ft, DeviceID: 2}, ft
	}

	opts, ft := newOptions()
	require.NoError(t, openTransport(opts, true))
	assert.True(t, ft.closed)
	assert.IsType(t, &loopback.Transport{}, opts.Transport)

	opts, ft = newOptions()
	assert.Error(t, openTransport(opts, false))
	assert.True(t, ft.closed)
	assert.Same(t, ft, opts.Transport)

	opts, ft = newOptions()
	opts.DeviceID = -1
	require.NoError(t, openTransport(opts, true))
	assert.False(t, ft.closed, "a negative device skips opening")
}

type clockedSink struct {
	output.Discard
	clock *output.PullClock
}

func (s *clockedSink) Clock() contracts.Clock { return s.clock }

type fixedClock struct{ ch chan time.Time }

func (c fixedClock) C() <-chan time.Time { return c.ch }
func (c fixedClock) Stop()               {}

func TestApplyDefaultOptionsUsesSinkClock(t *testing.T) {
	sink := &clockedSink{clock: output.NewPullClock(output.NewFIFO(8), 4, 2, 2)}

	opts, err := applyDefaultOptions(contracts.WithLogger(logger.NewNopLogger()), contracts.WithSink(sink))
	require.NoError(t, err)
	assert.Same(t, sink.clock, opts.Clock)

	explicit := fixedClock{ch: make(chan time.Time)}
	opts, err = applyDefaultOptions(
		contracts.WithLogger(logger.NewNopLogger()),
		contracts.WithSink(sink),
		contracts.WithClock(explicit))
	require.NoError(t, err)
	assert.Equal(t, explicit, opts.Clock)

	opts, err = applyDefaultOptions(contracts.WithLogger(logger.NewNopLogger()))
	require.NoError(t, err)
	assert.Nil(t, opts.Clock, "the engine falls back to a ticker")
}
