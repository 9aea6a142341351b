package emu

import (
	"bytes"
	"testing"

	"nescore/hw/hwdefs"
	"nescore/ines"
	"nescore/tests"
)

const (
	resetAddr = 0x8000
	nmiAddr   = 0x9000
	irqAddr   = 0xA000
)

func newPRG() *tests.PRG {
	return tests.NewPRG(resetAddr, nmiAddr, irqAddr).
		At(nmiAddr, 0x40). // RTI
		At(irqAddr, 0x40)  // RTI
}

// newTestNES powers up a NES with a mapper 0 cartridge running prg.
func newTestNES(tb testing.TB, prg *tests.PRG) *NES {
	tb.Helper()

	rom, err := ines.Decode(tests.NROM(prg))
	if err != nil {
		tb.Fatal(err)
	}
	nes, err := PowerUp(rom)
	if err != nil {
		tb.Fatal(err)
	}
	if nes.CPU.PendingInterrupt() != hwdefs.NoInterrupt {
		tb.Fatal("pending interrupt after power up")
	}
	return nes
}

func runFrames(tb testing.TB, nes *NES, n int) {
	tb.Helper()

	for range n {
		if err := nes.RunOneFrame(); err != nil {
			tb.Fatal(err)
		}
	}
}

type bufWriteCloser struct {
	bytes.Buffer
}

func (*bufWriteCloser) Close() error { return nil }
