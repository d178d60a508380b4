package cmd

import (
	"fmt"

	"github.com/leandrodaf/picoadk/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Version is set at build time with -ldflags.
var Version = "dev"

// flagKeys binds persistent flag names to configuration keys.
var flagKeys = map[string]string{
	"samplerate":  "audio.samplerate",
	"blockframes": "audio.blockframes",
	"blocks":      "audio.blocks",
	"output":      "audio.output",
	"transport":   "midi.transport",
	"device":      "midi.device",
	"cable":       "midi.cable",
	"loglevel":    "log.level",
	"logfile":     "log.file",
	"interval":    "status.interval",
}

// RootCommand creates and returns the root command
func RootCommand(v *viper.Viper) *cobra.Command {
	var configPath string
	settings := &config.Settings{}

	rootCmd := &cobra.Command{
		Use:           "picoadk",
		Short:         "Audio block engine driven by USB-MIDI input",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file")
	if err := setupFlags(rootCmd, v); err != nil {
		panic(err)
	}

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" {
			return nil
		}
		loaded, err := config.Load(v, configPath)
		if err != nil {
			return err
		}
		*settings = *loaded
		return nil
	}

	rootCmd.AddCommand(
		runCommand(settings),
		devicesCommand(settings),
		versionCommand(),
	)
	return rootCmd
}

// setupFlags defines the global flags and binds them to their viper keys.
func setupFlags(rootCmd *cobra.Command, v *viper.Viper) error {
	flags := rootCmd.PersistentFlags()
	flags.Int("samplerate", v.GetInt("audio.samplerate"), "Output sample rate in Hz")
	flags.Int("blockframes", v.GetInt("audio.blockframes"), "Frames per audio block")
	flags.Int("blocks", v.GetInt("audio.blocks"), "Number of audio blocks in the pool (2-16)")
	flags.String("output", v.GetString("audio.output"), "Audio output: null or device")
	flags.String("transport", v.GetString("midi.transport"), "MIDI transport: auto, loopback, coremidi, winmm or rtmidi")
	flags.IntP("device", "d", v.GetInt("midi.device"), "MIDI input index; negative skips opening")
	flags.Int("cable", v.GetInt("midi.cable"), "USB-MIDI cable to accept, -1 for any")
	flags.String("loglevel", v.GetString("log.level"), "Log level: debug, info, warn or error")
	flags.String("logfile", v.GetString("log.file"), "Write logs to this file instead of stderr")
	flags.Duration("interval", v.GetDuration("status.interval"), "Status indicator toggle interval")

	for name, key := range flagKeys {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			return fmt.Errorf("error binding flag %s: %w", name, err)
		}
	}
	return nil
}
