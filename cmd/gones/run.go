package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"gones/internal/app"
)

var (
	runConfigPath  string
	runDebug       bool
	runHeadless    bool
	runDumpFrames  int
	runFramePrefix string
)

var runCmd = &cobra.Command{
	Use:   "run [rom]",
	Short: "Run the emulator, optionally loading a ROM",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runEmulator,
}

func init() {
	runCmd.Flags().StringVar(&runConfigPath, "config", "", "Path to configuration file")
	runCmd.Flags().BoolVar(&runDebug, "debug", false, "Enable debug logging")
	runCmd.Flags().BoolVar(&runHeadless, "headless", false, "Run without a GUI backend")
	runCmd.Flags().IntVar(&runDumpFrames, "dump-frames", 0, "In headless mode, dump this many frames as PPM images and exit (0 disables)")
	runCmd.Flags().StringVar(&runFramePrefix, "dump-prefix", "frame", "Filename prefix for --dump-frames output")
}

func runEmulator(cmd *cobra.Command, args []string) error {
	setupGracefulShutdown()

	configPath := runConfigPath
	if configPath == "" {
		configPath = app.GetDefaultConfigPath()
	}

	application, err := app.NewApplicationWithMode(configPath, runHeadless)
	if err != nil {
		return fmt.Errorf("create application: %w", err)
	}
	defer func() {
		if err := application.Cleanup(); err != nil {
			fmt.Fprintf(os.Stderr, "cleanup error: %v\n", err)
		}
	}()

	if runHeadless {
		application.GetConfig().Video.Backend = "headless"
	}

	if runDebug {
		application.GetConfig().UpdateDebug(true, true, true)
		application.ApplyDebugSettings()
	}

	if len(args) == 1 {
		if err := application.LoadROM(args[0]); err != nil {
			return fmt.Errorf("load ROM %q: %w", args[0], err)
		}
		if runDebug {
			application.ApplyDebugSettings()
		}
	}

	if runHeadless {
		if len(args) != 1 {
			return fmt.Errorf("a ROM path is required in --headless mode")
		}
		if runDumpFrames > 0 {
			return dumpFrames(application, runDumpFrames, runFramePrefix)
		}
		return runHeadlessLoop(application)
	}

	return runGUI(application)
}

func runGUI(application *app.Application) error {
	if err := application.Run(); err != nil {
		return fmt.Errorf("application run failed: %w", err)
	}
	fmt.Printf("frames rendered: %d, session time: %v, average fps: %.1f\n",
		application.GetFrameCount(), application.GetUptime(), application.GetFPS())
	return nil
}

// runHeadlessLoop drives the bus indefinitely in headless mode until the
// process receives a termination signal.
func runHeadlessLoop(application *app.Application) error {
	bus := application.GetBus()
	if bus == nil {
		return fmt.Errorf("application has no bus")
	}
	const cyclesPerFrame = 29780
	for {
		bus.RunCycles(cyclesPerFrame)
	}
}

// dumpFrames runs the emulator headlessly for n frames, writing the frame
// buffer to a PPM image after each one.
func dumpFrames(application *app.Application, n int, prefix string) error {
	bus := application.GetBus()
	if bus == nil {
		return fmt.Errorf("application has no bus")
	}
	const cyclesPerFrame = 29780
	for frame := 1; frame <= n; frame++ {
		bus.RunCycles(cyclesPerFrame)
		name := fmt.Sprintf("%s_%03d.ppm", prefix, frame)
		if err := writeFrameBufferPPM(bus.PPU.GetFrameBuffer(), name); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
	}
	fmt.Printf("wrote %d frame(s) with prefix %q\n", n, prefix)
	return nil
}

// writeFrameBufferPPM writes a packed-RGB frame buffer as a plain PPM image.
func writeFrameBufferPPM(frameBuffer [256 * 240]uint32, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	fmt.Fprintf(file, "P3\n256 240\n255\n")
	for y := 0; y < 240; y++ {
		for x := 0; x < 256; x++ {
			pixel := frameBuffer[y*256+x]
			r := (pixel >> 16) & 0xFF
			g := (pixel >> 8) & 0xFF
			b := pixel & 0xFF
			fmt.Fprintf(file, "%d %d %d ", r, g, b)
		}
		fmt.Fprintln(file)
	}
	return nil
}

// setupGracefulShutdown exits cleanly on SIGINT/SIGTERM rather than leaving
// the terminal or any GUI backend in a stuck state.
func setupGracefulShutdown() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		os.Exit(0)
	}()
}
