package emu

import (
	"fmt"
	"slices"

	"nescore/emu/log"
	"nescore/hw"
	"nescore/hw/hwdefs"
	"nescore/hw/mappers"
	"nescore/hw/snapshot"
	"nescore/ines"
)

type NES struct {
	CPU  *hw.CPU
	PPU  *hw.PPU
	Rom  *ines.Rom
	Cart *mappers.Cartridge
}

// PowerUp creates the hardware, loads the cartridge and performs a hard
// reset.
func PowerUp(rom *ines.Rom) (*NES, error) {
	nes := &NES{}
	if err := nes.Load(rom); err != nil {
		return nil, err
	}
	nes.Reset(hwdefs.HardReset)
	return nes, nil
}

// Load creates a new CPU and PPU and loads the cartridge into their buses.
// On error, the NES is left untouched.
func (nes *NES) Load(rom *ines.Rom) error {
	ppu := hw.NewPPU()
	ppu.InitBus()
	cpu := hw.NewCPU(ppu)
	cpu.InitBus()

	cart, err := mappers.Load(rom, cpu, ppu)
	if err != nil {
		return err
	}

	nes.CPU = cpu
	nes.PPU = ppu
	nes.Rom = rom
	nes.Cart = cart
	return nil
}

func (nes *NES) Reset(soft bool) {
	nes.PPU.Reset()
	nes.CPU.Reset(soft)
}

// StepInstruction executes one CPU instruction (or interrupt sequence), then
// runs the PPU for 3 dots per elapsed CPU cycle. An NMI raised by the PPU
// during these dots is serviced at the next call.
func (nes *NES) StepInstruction() (int, error) {
	n, err := nes.CPU.Step()
	for range 3 * n {
		nes.PPU.Tick()
	}
	return n, err
}

// StepPPUDot advances the PPU by one dot, without running the CPU.
func (nes *NES) StepPPUDot() {
	nes.PPU.Tick()
}

// RunOneFrame executes instructions until the PPU completes a frame.
func (nes *NES) RunOneFrame() error {
	frame := nes.PPU.Frame
	for nes.PPU.Frame == frame {
		if _, err := nes.StepInstruction(); err != nil {
			return err
		}
	}
	return nil
}

// Frame returns the last rendered frame, as palette indices. See
// hw.PPU.FrameBuffer.
func (nes *NES) Frame() []uint8 {
	return nes.PPU.FrameBuffer()
}

// Snapshot returns a copy of the machine state.
func (nes *NES) Snapshot() *snapshot.NES {
	return &snapshot.NES{
		Version: snapshot.Version,
		CPU:     nes.CPU.Snapshot(),
		RAM:     slices.Clone(nes.CPU.RAM.Data),
		PRGRAM:  slices.Clone(nes.Cart.PRGRAM),
		CHRRAM:  slices.Clone(nes.Cart.CHRRAM),
		PPU:     nes.PPU.Snapshot(),
	}
}

// Restore sets the machine state from a snapshot taken with the same
// cartridge.
func (nes *NES) Restore(s *snapshot.NES) error {
	sizes := []struct {
		name string
		buf  []uint8
		want int
	}{
		{"RAM", s.RAM, len(nes.CPU.RAM.Data)},
		{"PRG-RAM", s.PRGRAM, len(nes.Cart.PRGRAM)},
		{"CHR-RAM", s.CHRRAM, len(nes.Cart.CHRRAM)},
		{"OAM", s.PPU.OAM, len(nes.PPU.OAM)},
		{"palette", s.PPU.Palette, hw.PaletteSize},
		{"nametables", s.PPU.Nametables, len(nes.PPU.Nametables)},
	}
	for _, sz := range sizes {
		if err := checkLen(sz.name, sz.buf, sz.want); err != nil {
			return err
		}
	}

	nes.CPU.Restore(s.CPU)
	nes.PPU.Restore(s.PPU)
	copy(nes.CPU.RAM.Data, s.RAM)
	copy(nes.Cart.PRGRAM, s.PRGRAM)
	copy(nes.Cart.CHRRAM, s.CHRRAM)
	return nil
}

func checkLen(name string, buf []uint8, want int) error {
	if len(buf) != want {
		return fmt.Errorf("snapshot: %s size mismatch: %d bytes, want %d", name, len(buf), want)
	}
	return nil
}

// SaveSnapshot serializes the machine state.
func (nes *NES) SaveSnapshot() ([]byte, error) {
	buf := snapshot.Marshal(nes.Snapshot())
	log.ModEmu.DebugZ("snapshot saved").Int("size", len(buf)).End()
	return buf, nil
}

// LoadSnapshot restores the machine state serialized with SaveSnapshot.
func (nes *NES) LoadSnapshot(buf []byte) error {
	s, err := snapshot.Unmarshal(buf)
	if err != nil {
		return err
	}
	if err := nes.Restore(s); err != nil {
		return err
	}
	log.ModEmu.DebugZ("snapshot loaded").Int("size", len(buf)).End()
	return nil
}
