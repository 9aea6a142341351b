package mappers

import (
	"slices"

	"nescore/hw/hwio"
)

var NROM = MapperDesc{
	Name:        "NROM",
	Load:        loadNROM,
	PRGROMSizes: []int{0x4000, 0x8000},
	CHRROMSizes: []int{0x2000},
}

type nrom struct {
	PRGRAM hwio.Mem `hwio:"offset=0x6000,size=0x2000"`
	PRGROM hwio.Mem `hwio:"offset=0x8000,size=0x8000,readonly"`
}

func loadNROM(b *base) error {
	nrom := &nrom{}
	hwio.MustInitRegs(nrom)

	// CPU mapping.

	// Dimension the PRGROM based on the length of the cartridge PRGROM, a
	// 16KB PRGROM is mirrored at $C000.
	nrom.PRGROM.Data = slices.Clone(b.rom.PRG)
	nrom.PRGROM.Flags |= hwio.MemFlagNoROLog
	b.cpu.Bus.MapBank(0x0000, nrom, 0)
	b.prgram = nrom.PRGRAM.Data

	// PPU mapping.
	b.setNametableMirroring()
	b.mapCHR()
	return nil
}
