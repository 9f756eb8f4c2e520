package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"gones/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "gones",
	Short: "gones is a Go NES (Nintendo Entertainment System) emulator",
	Long: `gones emulates the MOS 6502 CPU, 2C02 PPU, and system bus of the
Nintendo Entertainment System, with GUI, headless, and trace-output modes.`,
	SilenceUsage: true,
	Version:      version.GetVersion(),
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf("%s\n", version.GetDetailedVersion()))
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(traceCmd)
}
