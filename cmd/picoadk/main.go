package main

import (
	"fmt"
	"os"

	"github.com/leandrodaf/picoadk/cmd"
	"github.com/leandrodaf/picoadk/internal/config"
)

func main() {
	if err := cmd.RootCommand(config.New()).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "picoadk: %v\n", err)
		os.Exit(1)
	}
}
