package mappers

import (
	"errors"
	"testing"

	"nescore/hw"
	"nescore/ines"
	"nescore/tests"
)

func newBuses() (*hw.CPU, *hw.PPU) {
	ppu := hw.NewPPU()
	ppu.InitBus()
	cpu := hw.NewCPU(ppu)
	cpu.InitBus()
	return cpu, ppu
}

func loadCart(t *testing.T, cart tests.Cart) (*Cartridge, *hw.CPU, *hw.PPU) {
	t.Helper()

	rom, err := ines.Decode(cart.Image())
	if err != nil {
		t.Fatal(err)
	}
	cpu, ppu := newBuses()
	c, err := Load(rom, cpu, ppu)
	if err != nil {
		t.Fatal(err)
	}
	return c, cpu, ppu
}

func TestNROMPRG(t *testing.T) {
	prg := tests.NewPRG(0x8000, 0x9000, 0xA000).At(0x8000, 0x11).At(0xC000, 0x22)

	t.Run("32KB", func(t *testing.T) {
		_, cpu, _ := loadCart(t, tests.Cart{PRG: prg.Bytes()})

		for addr, want := range map[uint16]uint8{0x8000: 0x11, 0xC000: 0x22, 0xFFFD: 0x80} {
			if got := cpu.Bus.Peek8(addr); got != want {
				t.Errorf("$%04X = %02X, want %02X", addr, got, want)
			}
		}

		cpu.Bus.Write8(0x8000, 0xFF)
		if got := cpu.Bus.Peek8(0x8000); got != 0x11 {
			t.Errorf("PRG-ROM written: $8000 = %02X", got)
		}
	})

	t.Run("16KB", func(t *testing.T) {
		_, cpu, _ := loadCart(t, tests.Cart{PRG: prg.Bytes16K()})

		// $8000 mirrors $C000.
		for addr, want := range map[uint16]uint8{0x8000: 0x22, 0xC000: 0x22, 0xBFFD: 0x80, 0xFFFD: 0x80} {
			if got := cpu.Bus.Peek8(addr); got != want {
				t.Errorf("$%04X = %02X, want %02X", addr, got, want)
			}
		}
	})
}

func TestNROMPRGRAM(t *testing.T) {
	c, cpu, _ := loadCart(t, tests.Cart{PRG: tests.NewPRG(0x8000, 0, 0).Bytes16K()})

	cpu.Bus.Write8(0x6000, 0x12)
	cpu.Bus.Write8(0x7FFF, 0x34)
	if c.PRGRAM[0] != 0x12 || c.PRGRAM[0x1FFF] != 0x34 {
		t.Errorf("PRGRAM[0,1FFF] = %02X,%02X want 12,34", c.PRGRAM[0], c.PRGRAM[0x1FFF])
	}
	if got := cpu.Bus.Peek8(0x6000); got != 0x12 {
		t.Errorf("$6000 = %02X, want 12", got)
	}
}

func TestNROMCHR(t *testing.T) {
	prg := tests.NewPRG(0x8000, 0, 0).Bytes16K()

	t.Run("rom", func(t *testing.T) {
		chr := make([]byte, 0x2000)
		chr[0x0010] = 0xAB
		chr[0x1FFF] = 0xCD
		c, _, ppu := loadCart(t, tests.Cart{PRG: prg, CHR: chr})

		if c.CHRRAM != nil {
			t.Errorf("CHRRAM should be nil with CHR-ROM")
		}
		if got := ppu.Bus.Peek8(0x0010); got != 0xAB {
			t.Errorf("$0010 = %02X, want AB", got)
		}
		ppu.Bus.Write8(0x1FFF, 0)
		if got := ppu.Bus.Peek8(0x1FFF); got != 0xCD {
			t.Errorf("CHR-ROM written: $1FFF = %02X, want CD", got)
		}
	})

	t.Run("ram", func(t *testing.T) {
		c, _, ppu := loadCart(t, tests.Cart{PRG: prg})

		if len(c.CHRRAM) != 0x2000 {
			t.Fatalf("len(CHRRAM) = %d, want 8192", len(c.CHRRAM))
		}
		ppu.Bus.Write8(0x1234, 0x56)
		if c.CHRRAM[0x1234] != 0x56 {
			t.Errorf("CHRRAM[1234] = %02X, want 56", c.CHRRAM[0x1234])
		}
	})
}

func TestNROMMirroring(t *testing.T) {
	prg := tests.NewPRG(0x8000, 0, 0).Bytes16K()

	for _, vertical := range []bool{false, true} {
		_, _, ppu := loadCart(t, tests.Cart{PRG: prg, Vertical: vertical})

		ppu.Bus.Write8(0x2000, 0x77)
		// Vertical: $2000 and $2800 share the same nametable.
		// Horizontal: $2000 and $2400.
		mirror, other := uint16(0x2400), uint16(0x2800)
		if vertical {
			mirror, other = other, mirror
		}
		if got := ppu.Bus.Peek8(mirror); got != 0x77 {
			t.Errorf("vertical=%t: $%04X = %02X, want 77", vertical, mirror, got)
		}
		if got := ppu.Bus.Peek8(other); got != 0 {
			t.Errorf("vertical=%t: $%04X = %02X, want 00", vertical, other, got)
		}
	}
}

func TestLoadErrors(t *testing.T) {
	prg := tests.NewPRG(0x8000, 0, 0)

	tcs := []struct {
		name    string
		cart    tests.Cart
		wantErr error
	}{
		{
			name:    "mapper 1",
			cart:    tests.Cart{PRG: prg.Bytes(), Mapper: 1},
			wantErr: ErrUnsupportedMapper,
		},
		{
			name:    "mapper 0x42",
			cart:    tests.Cart{PRG: prg.Bytes(), Mapper: 0x42},
			wantErr: ErrUnsupportedMapper,
		},
		{
			name: "48KB PRG",
			cart: tests.Cart{PRG: append(prg.Bytes(), prg.Bytes16K()...)},
		},
		{
			name: "16KB CHR",
			cart: tests.Cart{PRG: prg.Bytes(), CHR: make([]byte, 0x4000)},
		},
	}
	for _, tt := range tcs {
		t.Run(tt.name, func(t *testing.T) {
			rom, err := ines.Decode(tt.cart.Image())
			if err != nil {
				t.Fatal(err)
			}
			cpu, ppu := newBuses()
			_, err = Load(rom, cpu, ppu)
			if err == nil {
				t.Fatalf("Load succeeded, want error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Load error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
