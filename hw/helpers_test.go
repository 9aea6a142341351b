package hw

import (
	"testing"

	"nescore/hw/hwdefs"
	"nescore/tests"
)

func tcheck(tb testing.TB, err error) {
	tb.Helper()
	if err != nil {
		tb.Fatalf("fatal error:\n\n%s\n", err)
	}
}

// newTestCPU returns a CPU without PPU, after reset, with prg mapped (and
// writable) at $8000-$FFFF.
func newTestCPU(tb testing.TB, prg *tests.PRG) *CPU {
	tb.Helper()

	cpu := NewCPU(nil)
	cpu.InitBus()
	cpu.Bus.MapMemorySlice(0x8000, 0xFFFF, prg.Bytes(), false)
	cpu.Reset(hwdefs.HardReset)
	return cpu
}

// newTestNES returns a CPU and PPU wired together, after reset, with prg
// mapped at $8000-$FFFF.
func newTestNES(tb testing.TB, prg *tests.PRG) (*CPU, *PPU) {
	tb.Helper()

	ppu := NewPPU()
	ppu.InitBus()
	cpu := NewCPU(ppu)
	cpu.InitBus()
	cpu.Bus.MapMemorySlice(0x8000, 0xFFFF, prg.Bytes(), false)
	cpu.Reset(hwdefs.HardReset)
	ppu.Reset()
	return cpu, ppu
}

func step(tb testing.TB, cpu *CPU) int {
	tb.Helper()

	n, err := cpu.Step()
	tcheck(tb, err)
	return n
}

func wantMem8(tb testing.TB, cpu *CPU, addr uint16, want uint8) {
	tb.Helper()

	if got := cpu.Bus.Peek8(addr); got != want {
		tb.Errorf("$%04X = %02X want %02X", addr, got, want)
	}
}

func wantPC(tb testing.TB, cpu *CPU, want uint16) {
	tb.Helper()

	if cpu.PC != want {
		tb.Errorf("PC = $%04X, want $%04X", cpu.PC, want)
	}
}

func wantCycles(tb testing.TB, got, want int) {
	tb.Helper()

	if got != want {
		tb.Errorf("got %d cycles, want %d", got, want)
	}
}
