package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	"gones/internal/bus"
	"gones/internal/cartridge"
	"gones/internal/tracer"
)

var (
	traceStartPC uint16
	traceCount   int
	traceOutPath string
	traceVerbose bool
)

var traceCmd = &cobra.Command{
	Use:   "trace <rom>",
	Short: "Run a ROM and emit nestest-compatible trace lines",
	Long: `trace executes a ROM's CPU instructions one at a time, printing one
disassembly line per instruction in nestest's format. It defaults to
starting at $C000, the entry point nestest itself uses when run headless.`,
	Args: cobra.ExactArgs(1),
	RunE: runTrace,
}

func init() {
	traceCmd.Flags().Uint16Var(&traceStartPC, "pc", 0xC000, "Program counter to start tracing from")
	traceCmd.Flags().IntVar(&traceCount, "count", 0, "Number of instructions to trace (0 = run until BRK/unmapped opcode)")
	traceCmd.Flags().StringVar(&traceOutPath, "out", "", "Write trace lines to this file instead of stdout")
	traceCmd.Flags().BoolVar(&traceVerbose, "verbose", false, "Also dump full CPU register state after each trace line, before that instruction executes")
}

func runTrace(cmd *cobra.Command, args []string) error {
	cart, err := cartridge.LoadFromFile(args[0])
	if err != nil {
		return fmt.Errorf("load ROM: %w", err)
	}

	b := bus.New()
	b.LoadCartridge(cart)
	b.CPU.Reset()
	b.CPU.PC = traceStartPC

	out := os.Stdout
	if traceOutPath != "" {
		f, err := os.Create(traceOutPath)
		if err != nil {
			return fmt.Errorf("open output: %w", err)
		}
		defer f.Close()
		out = f
	}
	w := bufio.NewWriter(out)
	defer w.Flush()

	i := 0
	for traceCount == 0 || i < traceCount {
		line := tracer.Line(b.CPU)
		fmt.Fprintln(w, line)
		if traceVerbose {
			spew.Fdump(w, b.GetCPUState())
		}

		opcode := b.CPU.PeekMemory(b.CPU.PC)
		if b.CPU.Instruction(opcode) == nil || opcode == 0x00 {
			break
		}

		b.Step()
		i++
	}

	return w.Flush()
}
