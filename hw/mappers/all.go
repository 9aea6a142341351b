// Package mappers loads cartridges into the CPU and PPU buses.
package mappers

import (
	"errors"
	"fmt"

	"nescore/emu/log"
	"nescore/hw"
	"nescore/ines"
)

// ErrUnsupportedMapper is returned when loading a cartridge whose mapper is
// not implemented.
var ErrUnsupportedMapper = errors.New("unsupported mapper")

// Load maps the cartridge PRG and CHR into the CPU and PPU buses, and sets
// the nametable mirroring. The buses must have been initialized but not
// yet loaded with a cartridge.
func Load(rom *ines.Rom, cpu *hw.CPU, ppu *hw.PPU) (*Cartridge, error) {
	desc, ok := All[rom.Mapper()]
	if !ok {
		return nil, fmt.Errorf("%w %d", ErrUnsupportedMapper, rom.Mapper())
	}
	base, err := newbase(desc, rom, cpu, ppu)
	if err != nil {
		return nil, fmt.Errorf("mapper initialization failed: %w", err)
	}
	if err := base.load(); err != nil {
		return nil, fmt.Errorf("failed to load mapper %s: %w", desc.Name, err)
	}

	log.ModCart.InfoZ("cartridge loaded").
		String("mapper", desc.Name).
		Int("prg", len(rom.PRG)).
		Int("chr", len(rom.CHR)).
		Stringer("mirroring", rom.Mirroring()).
		End()

	return &Cartridge{
		Desc:   desc,
		PRGRAM: base.prgram,
		CHRRAM: base.chrram,
	}, nil
}

type MapperDesc struct {
	Name string
	Load func(*base) error

	// Allowed PRG-ROM and CHR-ROM sizes.
	PRGROMSizes []int
	CHRROMSizes []int
}

var All = map[uint8]MapperDesc{
	0: NROM,
}

// Cartridge is a cartridge loaded into the buses.
type Cartridge struct {
	Desc MapperDesc

	// Cartridge writable memories, which are part of the machine state.
	PRGRAM []uint8 // nil if the board has none
	CHRRAM []uint8 // nil if the board has CHR-ROM
}
