package ines

import "fmt"

// Header is the decoded 16-byte iNES header.
type Header struct {
	raw   [HeaderSize]byte
	prgsz int
	chrsz int
}

func (hdr *Header) decode(p []byte) error {
	if len(p) < HeaderSize {
		return fmt.Errorf("%w: need %d bytes, have %d", ErrInvalidHeader, HeaderSize, len(p))
	}
	if string(p[:4]) != Magic {
		return fmt.Errorf("%w: bad magic %q", ErrInvalidHeader, p[:4])
	}
	copy(hdr.raw[:], p[:HeaderSize])

	hdr.prgsz = hdr.PRGBanks() * PRGBankSize
	hdr.chrsz = hdr.CHRBanks() * CHRBankSize
	return nil
}

// Raw returns the header bytes.
func (hdr *Header) Raw() [HeaderSize]byte { return hdr.raw }

// PRGBanks is the number of 16KB PRG-ROM banks. Some dumps announce 0, which
// is read as 1.
func (hdr *Header) PRGBanks() int {
	return max(int(hdr.raw[4]), 1)
}

// CHRBanks is the number of 8KB CHR-ROM banks, 0 means the board uses
// CHR-RAM.
func (hdr *Header) CHRBanks() int {
	return int(hdr.raw[5])
}

// HasTrainer indicates the presence of a trainer section in the rom.
func (hdr *Header) HasTrainer() bool {
	return hdr.raw[6]&0x04 != 0
}

// HasPersistent indicates the presence of battery-backed PRG-RAM.
func (hdr *Header) HasPersistent() bool {
	return hdr.raw[6]&0x02 != 0
}

func (hdr *Header) Mirroring() Mirroring {
	switch {
	case hdr.raw[6]&0x08 != 0:
		return FourScreen
	case hdr.raw[6]&0x01 != 0:
		return Vertical
	}
	return Horizontal
}

// Mapper returns the mapper number, built from the high nibbles of flags 6
// and 7.
func (hdr *Header) Mapper() uint8 {
	return hdr.raw[7]&0xF0 | hdr.raw[6]>>4
}

// PRGRAMBanks is the number of 8KB PRG-RAM banks (0 is read as 1).
func (hdr *Header) PRGRAMBanks() int {
	return max(int(hdr.raw[8]), 1)
}

func (hdr *Header) TVSystem() TVSystem {
	return TVSystem(hdr.raw[9] & 1)
}

type Mirroring uint8

const (
	Horizontal Mirroring = iota
	Vertical
	FourScreen
)

func (m Mirroring) String() string {
	switch m {
	case Horizontal:
		return "horizontal"
	case Vertical:
		return "vertical"
	case FourScreen:
		return "four-screen"
	}
	return fmt.Sprintf("Mirroring(%d)", m)
}

type TVSystem uint8

const (
	NTSC TVSystem = iota
	PAL
)

func (tv TVSystem) String() string {
	if tv == PAL {
		return "PAL"
	}
	return "NTSC"
}
