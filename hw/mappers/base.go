package mappers

import (
	"fmt"
	"slices"

	"nescore/hw"
	"nescore/ines"
)

type base struct {
	desc MapperDesc

	rom *ines.Rom
	cpu *hw.CPU
	ppu *hw.PPU

	prgram []uint8
	chrram []uint8
}

func newbase(desc MapperDesc, rom *ines.Rom, cpu *hw.CPU, ppu *hw.PPU) (*base, error) {
	if !slices.Contains(desc.PRGROMSizes, len(rom.PRG)) {
		return nil, fmt.Errorf("%s: unexpected PRG-ROM size %d", desc.Name, len(rom.PRG))
	}
	if len(rom.CHR) != 0 && !slices.Contains(desc.CHRROMSizes, len(rom.CHR)) {
		return nil, fmt.Errorf("%s: unexpected CHR-ROM size %d", desc.Name, len(rom.CHR))
	}

	return &base{desc: desc, rom: rom, cpu: cpu, ppu: ppu}, nil
}

func (b *base) load() error {
	return b.desc.Load(b)
}

// mapCHR maps the CHR-ROM, read-only, over the PPU pattern tables. Without
// CHR-ROM, the PPU pattern tables serve as CHR-RAM.
func (b *base) mapCHR() {
	if len(b.rom.CHR) == 0 {
		b.chrram = b.ppu.PatternTables.Data
		return
	}
	b.ppu.Bus.Unmap(0x0000, 0x1FFF)
	b.ppu.Bus.MapMemorySlice(0x0000, 0x1FFF, b.rom.CHR, true)
}

func (b *base) setNametableMirroring() {
	b.ppu.SetNametableMirroring(b.rom.Mirroring())
}
