package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/pprof"

	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"

	"nescore/emu"
	"nescore/emu/log"
	"nescore/hw"
	"nescore/ines"
)

const statsviewAddr = "localhost:12600"

// runMain runs the emulator with the given rom, headless, until it halts,
// reaches the requested number of frames or gets interrupted.
func runMain(args Run, cfgPath string) error {
	if cfgPath == "" {
		cfgPath = emu.DefaultConfigPath()
	}
	cfg, err := emu.LoadConfigOrDefault(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Command line flags override the configuration file.
	if args.Frames != 0 {
		cfg.Emulation.MaxFrames = args.Frames
	}
	if args.DumpState != "" {
		cfg.Emulation.DumpState = args.DumpState
	}
	if args.Screenshot != "" {
		cfg.Video.Screenshot = args.Screenshot
	}

	rom, err := ines.Open(args.RomPath)
	if err != nil {
		return fmt.Errorf("error reading ROM: %w", err)
	}

	if args.Trace != nil {
		cfg.TraceOut = args.Trace
		defer args.Trace.Close()
	}

	emulator, err := emu.Launch(rom, cfg, nil)
	if err != nil {
		return fmt.Errorf("failed to start emulator: %w", err)
	}

	if args.CPUProfile != "" {
		f, err := os.Create(args.CPUProfile)
		if err != nil {
			return fmt.Errorf("failed to create cpu profile file: %w", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			return fmt.Errorf("failed to start cpu profile: %w", err)
		}
		defer func() {
			pprof.StopCPUProfile()
			f.Close()
			fmt.Println("CPU profile written to", args.CPUProfile)
		}()
	}

	if args.StatsView {
		startStatsView(os.Stdout)
	}

	defer stopOnInterrupt(emulator.Stop)()

	err = emulator.Run()
	var herr *hw.HaltError
	if errors.As(err, &herr) {
		// Print the diagnostic state for collaborators.
		if buf, jerr := herr.MarshalJSON(); jerr == nil {
			fmt.Fprintf(os.Stderr, "%s\n", buf)
		}
	}
	return err
}

// stopOnInterrupt calls stop on the first interrupt signal received. The
// returned function unregisters the handler and waits for its goroutine.
func stopOnInterrupt(stop func()) (cancel func()) {
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt)

	done := make(chan struct{})
	exited := make(chan struct{})
	go func() {
		defer close(exited)
		select {
		case <-sigc:
			log.ModEmu.InfoZ("Interrupted").End()
			stop()
		case <-done:
		}
	}()

	return func() {
		signal.Stop(sigc)
		close(done)
		<-exited
	}
}

// startStatsView serves runtime statistics (heap, goroutines, GC) in a
// separate goroutine.
func startStatsView(w io.Writer) {
	go func() {
		viewer.SetConfiguration(viewer.WithAddr(statsviewAddr))
		mgr := statsview.New()
		mgr.Start()
	}()

	fmt.Fprintf(w, "stats server available at http://%s/debug/statsview\n", statsviewAddr)
}
