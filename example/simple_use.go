package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/leandrodaf/picoadk/internal/logger"
	"github.com/leandrodaf/picoadk/sdk/contracts"
	"github.com/leandrodaf/picoadk/sdk/synth"
)

func main() {
	log := logger.NewZapLogger()
	voice := synth.NewVoice(synth.DefaultSampleRate)

	engine, err := synth.NewEngine(
		contracts.WithLogger(log),
		contracts.WithLogLevel(contracts.InfoLevel),
		contracts.WithSampleSource(voice),
		contracts.WithMIDIEventFilter(contracts.MIDIEventFilter{
			Commands: []contracts.MIDICommand{contracts.NoteOn, contracts.NoteOff},
		}),
	)
	if err != nil {
		log.Error("Failed to initialize engine", log.Field().Error("error", err))
		return
	}
	defer engine.Close()

	devices, err := engine.ListDevices()
	if err != nil || len(devices) == 0 {
		log.Error("No MIDI devices found or error listing devices", log.Field().Error("error", err))
		return
	}
	fmt.Println("Available MIDI devices:", devices)

	engine.Register(contracts.KindNoteOn, contracts.HandlerFunc(func(ev contracts.Event) {
		voice.HandleEvent(ev)
		log.Info("MIDI Event",
			log.Field().String("Kind", ev.Kind.String()),
			log.Field().Uint8("Note", ev.Note()),
			log.Field().Uint8("Velocity", ev.Velocity()),
			log.Field().Uint8("Channel", ev.Channel))
	}))
	engine.Register(contracts.KindNoteOff, voice)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Println("Rendering... Press Ctrl+C to exit.")
	if err := engine.Run(ctx); err != nil {
		log.Error("Engine stopped with error", log.Field().Error("error", err))
	}
}
