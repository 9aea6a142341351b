package emu

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"sync/atomic"
	"time"

	"nescore/emu/log"
	"nescore/hw"
	"nescore/hw/hwdefs"
	"nescore/ines"
)

// Output receives the rendered frames.
type Output interface {
	EndFrame(frame []uint8)
	Screenshot() *image.RGBA
	Close() error
}

type Emulator struct {
	NES *NES
	out Output
	cfg Config

	frames int

	// These are accessed concurrently by the emulator loop and its
	// controller.
	quit    atomic.Bool
	paused  atomic.Bool
	reset   atomic.Bool
	restart atomic.Bool
}

// Launch powers up the NES and sets up the output and the execution trace.
// It doesn't start the emulation loop, call Run() for that. A nil out gets
// a headless output.
func Launch(rom *ines.Rom, cfg Config, out Output) (*Emulator, error) {
	nes, err := PowerUp(rom)
	if err != nil {
		return nil, fmt.Errorf("power up failed: %w", err)
	}

	if out == nil {
		out = NewHeadlessOutput()
	}

	// CPU execution trace setup.
	if cfg.TraceOut != nil {
		nes.CPU.SetTraceOutput(cfg.TraceOut)
	}

	// Log entries carry the CPU and PPU positions.
	log.AddContext(nes.CPU)
	log.AddContext(nes.PPU)

	return &Emulator{
		NES: nes,
		out: out,
		cfg: cfg,
	}, nil
}

// Frames returns the number of frames run so far.
func (e *Emulator) Frames() int { return e.frames }

func (e *Emulator) RunOneFrame() error {
	if err := e.NES.RunOneFrame(); err != nil {
		return err
	}
	e.frames++
	e.out.EndFrame(e.NES.Frame())
	return nil
}

func (e *Emulator) loop() error {
	for {
		if e.isPaused() {
			// Don't burn cpu while paused.
			time.Sleep(100 * time.Millisecond)
		} else if err := e.RunOneFrame(); err != nil {
			return err
		}
		if e.shouldStop() {
			return nil
		}
		e.handleReset()
	}
}

// Run runs the emulation loop until Stop is called, the configured number of
// frames have been emulated, or the CPU halts. In the last case, the halt
// error is returned.
func (e *Emulator) Run() error {
	err := e.loop()
	log.ModEmu.InfoZ("Emulation loop exited").
		Int("frames", e.frames).
		Int64("cycles", e.NES.CPU.Cycles).
		End()
	log.RemoveContext(e.NES.CPU)
	log.RemoveContext(e.NES.PPU)

	e.save()
	return errors.Join(err, e.out.Close())
}

func (e *Emulator) save() {
	if path := e.cfg.Emulation.DumpState; path != "" {
		state, err := e.NES.SaveSnapshot()
		if err == nil {
			err = os.WriteFile(path, state, 0644)
		}
		if err != nil {
			log.ModEmu.WarnZ("Failed to save state").Error("err", err).End()
		}
	}

	if path := e.cfg.Video.Screenshot; path != "" {
		if err := SaveAsPNG(e.out.Screenshot(), path); err != nil {
			log.ModEmu.WarnZ("Failed to save screenshot").String("path", path).Error("err", err).End()
		}
	}
}

// SetPause, Stop, Reset and Restart allows to control
// the emulator loop in a concurrent-safe way.

func (e *Emulator) SetPause(pause bool) { e.paused.CompareAndSwap(!pause, pause) }
func (e *Emulator) Reset()              { e.reset.Store(true) }
func (e *Emulator) Restart()            { e.restart.Store(true) }
func (e *Emulator) Stop() {
	e.quit.Store(true)
}

func (e *Emulator) isPaused() bool {
	return e.paused.Load()
}

func (e *Emulator) shouldStop() bool {
	if n := e.cfg.Emulation.MaxFrames; n > 0 && e.frames >= n {
		return true
	}
	return e.quit.Load() || e.NES.CPU.IsHalted()
}

func (e *Emulator) handleReset() {
	if e.reset.CompareAndSwap(true, false) {
		log.ModEmu.InfoZ("Performing soft reset").End()
		e.NES.Reset(hwdefs.SoftReset)
	} else if e.restart.CompareAndSwap(true, false) {
		log.ModEmu.InfoZ("Performing hard reset").End()
		e.NES.Reset(hwdefs.HardReset)
	}
}

// HeadlessOutput keeps the last frame, to take screenshots.
type HeadlessOutput struct {
	img *image.RGBA
}

func NewHeadlessOutput() *HeadlessOutput {
	return &HeadlessOutput{
		img: image.NewRGBA(image.Rect(0, 0, hw.Width, hw.Height)),
	}
}

func (o *HeadlessOutput) EndFrame(frame []uint8) {
	hw.FrameRGBA(o.img, frame)
}

func (o *HeadlessOutput) Screenshot() *image.RGBA {
	return o.img
}

func (o *HeadlessOutput) Close() error { return nil }

// SaveAsPNG writes img to a PNG file.
func SaveAsPNG(img image.Image, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
