package hw

import (
	"nescore/emu/log"
	"nescore/hw/hwio"
)

// PPUDMA handles the DMA transfer of OAM (sprites attributes) to the PPU.
//
// The copy itself is performed at once when the OAMDMA port is written, the
// CPU is then stalled 513 cycles, plus one when the transfer starts on an
// odd cycle, at the end of the current instruction.
type PPUDMA struct {
	cpu *CPU

	OAMDMA hwio.Reg8 `hwio:"offset=0x00,writeonly,wcb"`

	pending bool
}

func (dma *PPUDMA) InitBus(cpu *CPU) {
	hwio.MustInitRegs(dma)
	dma.cpu = cpu
}

func (dma *PPUDMA) reset() {
	dma.pending = false
}

func (dma *PPUDMA) WriteOAMDMA(_, page uint8) {
	ppu := dma.cpu.PPU
	if ppu == nil {
		return
	}

	base := uint16(page) << 8
	oamaddr := ppu.OAMADDR.Value
	for i := range uint16(256) {
		ppu.OAM[oamaddr+uint8(i)] = dma.cpu.Bus.Read8(base+i, false)
	}
	dma.pending = true

	log.ModDMA.DebugZ("OAM DMA transfer").
		Hex8("page", page).
		Hex8("oamaddr", oamaddr).
		Int64("cycles", dma.cpu.Cycles).
		End()
}

// stall returns the number of cycles the CPU is suspended for, if a
// transfer was triggered, given the cycle at which it begins.
func (dma *PPUDMA) stall(cycle int64) int {
	if !dma.pending {
		return 0
	}
	dma.pending = false

	const odd = 1
	n := 513
	if cycle%2 == odd {
		n++
	}
	return n
}
