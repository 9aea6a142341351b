package emu

import (
	"errors"
	"flag"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"nescore/emu/log"
	"nescore/hw"
	"nescore/hw/snapshot"
	"nescore/ines"
	"nescore/tests"
)

var romPath = flag.String("rom", "", "ROM file to load for BenchmarkCPUSpeed")

func launch(tb testing.TB, prg *tests.PRG, cfg Config) *Emulator {
	tb.Helper()

	rom, err := ines.Decode(tests.NROM(prg))
	if err != nil {
		tb.Fatal(err)
	}
	e, err := Launch(rom, cfg, nil)
	if err != nil {
		tb.Fatal(err)
	}
	return e
}

func TestEmulatorRun(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{
		Emulation: EmulationConfig{
			MaxFrames: 3,
			DumpState: filepath.Join(dir, "state.json"),
		},
		Video: VideoConfig{
			Screenshot: filepath.Join(dir, "screenshot.png"),
		},
	}
	prg := newPRG().At(resetAddr,
		0xA9, 0x16, // LDA #$16
		0xA2, 0x3F, // LDX #$3F
		0x8E, 0x06, 0x20, // STX $2006
		0xA2, 0x00, // LDX #$00
		0x8E, 0x06, 0x20, // STX $2006
		0x8D, 0x07, 0x20, // STA $2007 (backdrop color)
		0x4C, 0x0F, 0x80, // JMP $800F
	)
	e := launch(t, prg, cfg)

	if err := e.Run(); err != nil {
		t.Fatal(err)
	}
	if e.Frames() != 3 {
		t.Errorf("ran %d frames, want 3", e.Frames())
	}

	f, err := os.Open(cfg.Video.Screenshot)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != hw.Width || b.Dy() != hw.Height {
		t.Errorf("screenshot size = %v", b)
	}
	r, g, b, _ := img.At(100, 100).RGBA()
	want := hw.Color(0x16)
	if uint8(r>>8) != want.R || uint8(g>>8) != want.G || uint8(b>>8) != want.B {
		t.Errorf("screenshot pixel = %02X%02X%02X, want %v", r>>8, g>>8, b>>8, want)
	}

	buf, err := os.ReadFile(cfg.Emulation.DumpState)
	if err != nil {
		t.Fatal(err)
	}
	s, err := snapshot.Unmarshal(buf)
	if err != nil {
		t.Fatal(err)
	}
	if s.PPU.Frame != 3 {
		t.Errorf("dumped PPU frame = %d, want 3", s.PPU.Frame)
	}
}

func TestEmulatorHalt(t *testing.T) {
	e := launch(t, newPRG().At(resetAddr, 0xEA, 0x02), Config{})

	err := e.Run()
	if !errors.Is(err, hw.ErrIllegalOpcode) {
		t.Fatalf("Run() = %v, want illegal opcode error", err)
	}
	var herr *hw.HaltError
	if !errors.As(err, &herr) || herr.Addr != resetAddr+1 {
		t.Errorf("halt error = %#v, want halt at $8001", err)
	}
}

func TestEmulatorStop(t *testing.T) {
	e := launch(t, newPRG().At(resetAddr, 0x4C, 0x00, 0x80), Config{})

	done := make(chan error)
	go func() { done <- e.Run() }()

	e.SetPause(true)
	e.Reset()
	e.Stop()

	select {
	case err := <-done:
		if err != nil {
			t.Fatal(err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("emulator didn't stop")
	}
}

func TestEmulatorTrace(t *testing.T) {
	var trace bufWriteCloser
	cfg := Config{
		Emulation: EmulationConfig{MaxFrames: 1},
		TraceOut:  &trace,
	}
	e := launch(t, newPRG().At(resetAddr, 0x4C, 0x00, 0x80), cfg)
	if err := e.Run(); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(trace.String()), "\n")
	if len(lines) < 9000 {
		t.Fatalf("trace has %d lines, want ~9927", len(lines))
	}
	if !strings.HasPrefix(lines[0], "8000  4C 00 80  JMP $8000") {
		t.Errorf("first trace line = %q", lines[0])
	}
}

func BenchmarkCPUSpeed(b *testing.B) {
	if *romPath == "" {
		b.Skip("missing -rom flag")
	}

	log.Disable()
	b.ReportAllocs()

	rom, err := ines.Open(*romPath)
	if err != nil {
		b.Fatal(err)
	}
	nes, err := PowerUp(rom)
	if err != nil {
		b.Fatal(err)
	}

	const nframes = 300

	nloops := 0
	start := time.Now()

	for b.Loop() {
		runFrames(b, nes, nframes)
		nloops++
	}
	fps := float64(nframes*nloops) / time.Since(start).Seconds()
	b.ReportMetric(fps, "frames/s")
}

func BenchmarkSaveState(b *testing.B) {
	nes := newTestNES(b, newPRG().At(resetAddr, 0x4C, 0x00, 0x80))
	runFrames(b, nes, 1)

	b.ResetTimer()
	for b.Loop() {
		_, _ = nes.SaveSnapshot()
	}
}
