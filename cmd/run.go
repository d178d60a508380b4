package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/leandrodaf/picoadk/internal/config"
	"github.com/leandrodaf/picoadk/internal/logger"
	"github.com/leandrodaf/picoadk/sdk/contracts"
	"github.com/leandrodaf/picoadk/sdk/synth"
	"github.com/spf13/cobra"
)

func runCommand(settings *config.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the engine until interrupted",
		Long:  "Open the MIDI input, render a square-wave voice into the audio output and log note and controller events.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, settings)
		},
	}
}

func run(ctx context.Context, settings *config.Settings) error {
	log := logger.NewZapLogger()

	sink, err := synth.NewSink(settings.Audio.Output, settings.AudioConfig(), log)
	if err != nil {
		return fmt.Errorf("failed to open audio output: %w", err)
	}

	voice := synth.NewVoice(settings.Audio.SampleRate)
	engine, err := synth.NewEngine(
		contracts.WithLogger(log),
		contracts.WithLogLevel(settings.LogLevel()),
		contracts.WithLogFile(settings.Log.File),
		contracts.WithAudio(settings.AudioConfig()),
		contracts.WithSampleSource(voice),
		contracts.WithSink(sink),
		contracts.WithTransportName(settings.MIDI.Transport),
		contracts.WithDeviceID(settings.MIDI.Device),
		contracts.WithCable(settings.MIDI.Cable),
		contracts.WithIndicator(nil, settings.Status.Interval),
	)
	if err != nil {
		_ = sink.Close()
		return err
	}
	defer engine.Close()

	engine.Register(contracts.KindNoteOn, voice)
	engine.Register(contracts.KindNoteOff, voice)
	engine.Register(contracts.KindControlChange, contracts.ControlChangeFunc(func(controller, value, channel uint8) {
		log.Info("Control change",
			log.Field().Uint8("controller", controller),
			log.Field().Uint8("value", value),
			log.Field().Uint8("channel", channel))
	}))

	if err := engine.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	s := engine.Stats()
	log.Info("Engine summary",
		log.Field().Uint64("renderCycles", s.Render.Cycles),
		log.Field().Uint64("droppedCycles", s.Render.Dropped),
		log.Field().Uint64("decodedPackets", s.Decoder.Decoded),
		log.Field().Uint64("droppedPackets", s.Decoder.Dropped))
	return nil
}
