package cmd

import (
	"fmt"
	"io"

	"github.com/leandrodaf/picoadk/internal/config"
	"github.com/leandrodaf/picoadk/internal/logger"
	"github.com/leandrodaf/picoadk/sdk/contracts"
	"github.com/leandrodaf/picoadk/sdk/synth"
	"github.com/spf13/cobra"
)

func devicesCommand(settings *config.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List MIDI inputs and audio outputs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return listDevices(cmd.OutOrStdout(), settings)
		},
	}
}

func listDevices(w io.Writer, settings *config.Settings) error {
	log := logger.NewNopLogger()

	opts := &contracts.EngineOptions{
		Logger:         log,
		TransportName:  settings.MIDI.Transport,
		CoreMIDIConfig: &contracts.CoreMIDIConfig{ClientName: "picoadk"},
	}
	transport, err := synth.NewTransport(opts)
	if err != nil {
		return err
	}
	defer transport.Close()

	inputs, err := transport.ListDevices()
	if err != nil {
		return fmt.Errorf("failed to list MIDI inputs: %w", err)
	}
	fmt.Fprintf(w, "MIDI inputs (%s):\n", synth.ResolveTransportName(settings.MIDI.Transport))
	printDevices(w, inputs)

	outputs, err := synth.ListOutputDevices()
	fmt.Fprintln(w, "Audio outputs:")
	if err != nil {
		fmt.Fprintf(w, "  unavailable: %v\n", err)
		return nil
	}
	printDevices(w, outputs)
	return nil
}

func printDevices(w io.Writer, devices []contracts.DeviceInfo) {
	if len(devices) == 0 {
		fmt.Fprintln(w, "  none")
		return
	}
	for _, d := range devices {
		fmt.Fprintf(w, "  %s\n", d)
	}
}
