// Package snapshot defines the serializable state of the machine, used to
// save and restore emulation and to report diagnostics.
package snapshot

// Version of the snapshot format.
const Version = 1

type NES struct {
	Version int
	CPU     CPU
	RAM     []uint8 // 2KB internal RAM
	PRGRAM  []uint8 // cartridge PRG-RAM, if any
	CHRRAM  []uint8 // cartridge CHR-RAM, if any
	PPU     PPU
}

type CPU struct {
	PC uint16
	SP uint8
	P  uint8
	A  uint8
	X  uint8
	Y  uint8

	Cycles  int64
	Pending uint8 // pending interrupt kind
	State   uint8
}

type PPU struct {
	PPUCTRL   uint8
	PPUMASK   uint8
	PPUSTATUS uint8
	OAMAddr   uint8
	OpenBus   uint8
	DataBuf   uint8

	VRAMAddr   uint16
	VRAMTemp   uint16
	FineX      uint8
	WriteLatch bool

	Dot      int
	Scanline int
	Frame    uint64
	OddFrame bool

	OAM        []uint8
	Palette    []uint8
	Nametables []uint8
}

// Halt describes the state of a halted CPU.
type Halt struct {
	Reason string
	Opcode uint8
	Addr   uint16
	Cycles int64
	CPU    CPU
}
