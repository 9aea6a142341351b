package tests

import "encoding/binary"

// PRG is a 32KB PRG-ROM image, as seen by the CPU at $8000-$FFFF.
type PRG struct {
	data [0x8000]byte
}

// NewPRG returns a PRG-ROM filled with NOPs, whose reset vector points to
// reset and NMI/IRQ vectors to nmi and irq.
func NewPRG(reset, nmi, irq uint16) *PRG {
	p := new(PRG)
	for i := range p.data {
		p.data[i] = 0xEA
	}
	p.Word(0xFFFA, nmi)
	p.Word(0xFFFC, reset)
	p.Word(0xFFFE, irq)
	return p
}

// At writes code at the given CPU address.
func (p *PRG) At(addr uint16, code ...byte) *PRG {
	copy(p.data[addr-0x8000:], code)
	return p
}

// Word writes a little-endian word at the given CPU address.
func (p *PRG) Word(addr uint16, val uint16) *PRG {
	binary.LittleEndian.PutUint16(p.data[addr-0x8000:], val)
	return p
}

// Bytes returns the 32KB image.
func (p *PRG) Bytes() []byte {
	return append([]byte(nil), p.data[:]...)
}

// Bytes16K returns the upper 16KB of the image, which NROM mirrors at $8000
// and $C000.
func (p *PRG) Bytes16K() []byte {
	return append([]byte(nil), p.data[0x4000:]...)
}

// Cart describes a synthetic iNES image.
type Cart struct {
	PRG      []byte
	CHR      []byte
	Trainer  []byte
	Mapper   uint8
	Vertical bool
	Battery  bool
}

// Image encodes the cartridge as an iNES file.
func (c Cart) Image() []byte {
	hdr := []byte{'N', 'E', 'S', 0x1A, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}
	hdr[4] = byte(len(c.PRG) / 16384)
	hdr[5] = byte(len(c.CHR) / 8192)
	hdr[6] = c.Mapper << 4
	hdr[7] = c.Mapper & 0xF0
	if c.Vertical {
		hdr[6] |= 0x01
	}
	if c.Battery {
		hdr[6] |= 0x02
	}
	if len(c.Trainer) > 0 {
		hdr[6] |= 0x04
	}

	img := append(hdr, c.Trainer...)
	img = append(img, c.PRG...)
	return append(img, c.CHR...)
}

// NROM returns an iNES image for a mapper 0 cartridge running prg, with
// 8KB of blank CHR-ROM.
func NROM(prg *PRG) []byte {
	return Cart{PRG: prg.Bytes(), CHR: make([]byte, 8192)}.Image()
}
