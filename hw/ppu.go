package hw

import (
	"nescore/emu/log"
	"nescore/hw/hwdefs"
	"nescore/hw/hwio"
	"nescore/hw/snapshot"
	"nescore/ines"
)

const (
	NumScanlines = 262 // Number of scanlines per frame, pre-render included.
	NumDots      = 341 // Number of PPU dots per scanline.

	Width  = 256 // Visible pixels per scanline.
	Height = 240 // Visible scanlines.

	PaletteSize = 32 // Bytes of palette RAM.
)

type PPU struct {
	Bus *hwio.Table // PPU bus
	CPU *CPU

	Dot      int    // Current dot in scanline, 0 to 340.
	Scanline int    // Current scanline, -1 (pre-render) to 260.
	Frame    uint64 // Completed frames.
	oddFrame bool

	//	$0000-$0FFF	$1000	Pattern table 0
	//	$1000-$1FFF	$1000	Pattern table 1
	// Used as CHR-RAM, unless the cartridge maps its CHR-ROM there.
	PatternTables hwio.Mem `hwio:"offset=0x0000,size=0x2000"`

	// $3F00-$3F1F	$0020	Palette RAM indexes
	// $3F20-$3FFF	$00E0	Mirrors of $3F00-$3F1F
	Palette hwio.Device `hwio:"offset=0x3F00,size=0x100,rcb,pcb=ReadPALETTE,wcb"`

	// 4 nametables, only the first 2 are used unless the cartridge has
	// four-screen VRAM. The $2000-$3EFF mapping depends on mirroring.
	Nametables [0x1000]uint8

	// Object attribute memory: 64 sprites of 4 bytes (Y, tile, attributes, X).
	OAM [256]uint8

	palRAM [PaletteSize]uint8

	// CPU-exposed memory-mapped PPU registers, mapped from $2000 to $2007,
	// mirrored up to $3FFF. Reading write-only ports returns the open bus.
	PPUCTRL   hwio.Reg8 `hwio:"bank=1,offset=0x0,rcb=ReadOPENBUS,pcb=ReadOPENBUS,wcb"`
	PPUMASK   hwio.Reg8 `hwio:"bank=1,offset=0x1,rcb=ReadOPENBUS,pcb=ReadOPENBUS,wcb"`
	PPUSTATUS hwio.Reg8 `hwio:"bank=1,offset=0x2,readonly,rcb,pcb"`
	OAMADDR   hwio.Reg8 `hwio:"bank=1,offset=0x3,rcb=ReadOPENBUS,pcb=ReadOPENBUS,wcb"`
	OAMDATA   hwio.Reg8 `hwio:"bank=1,offset=0x4,rcb,pcb=ReadOAMDATA,wcb"`
	PPUSCROLL hwio.Reg8 `hwio:"bank=1,offset=0x5,rcb=ReadOPENBUS,pcb=ReadOPENBUS,wcb"`
	PPUADDR   hwio.Reg8 `hwio:"bank=1,offset=0x6,rcb=ReadOPENBUS,pcb=ReadOPENBUS,wcb"`
	PPUDATA   hwio.Reg8 `hwio:"bank=1,offset=0x7,rcb,pcb,wcb"`

	regs [8]*hwio.Reg8

	// VRAM read/write, scrolling (loopy registers).
	vramAddr   loopy // v
	vramTmp    loopy // t
	finex      uint8 // x
	writeLatch bool  // w
	dataBuf    uint8 // PPUDATA read buffer
	openBus    uint8

	bg      bgPipeline
	sprites [8]sprite
	nspr    int

	frame [Width * Height]uint8
}

func NewPPU() *PPU {
	return &PPU{
		Bus: hwio.NewTable("ppu"),
	}
}

// InitBus maps the pattern tables, the palette and the nametables (with
// horizontal mirroring until the cartridge says otherwise) on the PPU bus.
func (p *PPU) InitBus() {
	hwio.MustInitRegs(p)
	p.Bus.MapBank(0x0000, p, 0)
	p.SetNametableMirroring(ines.Horizontal)

	p.regs = [8]*hwio.Reg8{
		&p.PPUCTRL, &p.PPUMASK, &p.PPUSTATUS, &p.OAMADDR,
		&p.OAMDATA, &p.PPUSCROLL, &p.PPUADDR, &p.PPUDATA,
	}
}

// SetNametableMirroring maps the nametables over $2000-$2FFF, and their
// mirror over $3000-$3EFF, according to the mirroring mode.
func (p *PPU) SetNametableMirroring(m ines.Mirroring) {
	var nt [4][]uint8
	switch m {
	case ines.Horizontal:
		nt = [4][]uint8{p.Nametables[:0x400], p.Nametables[:0x400], p.Nametables[0x400:0x800], p.Nametables[0x400:0x800]}
	case ines.Vertical:
		nt = [4][]uint8{p.Nametables[:0x400], p.Nametables[0x400:0x800], p.Nametables[:0x400], p.Nametables[0x400:0x800]}
	case ines.FourScreen:
		nt = [4][]uint8{p.Nametables[:0x400], p.Nametables[0x400:0x800], p.Nametables[0x800:0xC00], p.Nametables[0xC00:]}
	default:
		panic("unexpected nametable mirroring " + m.String())
	}

	p.Bus.Unmap(0x2000, 0x3EFF)
	for i := range uint16(4) {
		p.Bus.MapMemorySlice(0x2000+i*0x400, 0x23FF+i*0x400, nt[i], false)
	}
	for i := range uint16(3) {
		p.Bus.MapMemorySlice(0x3000+i*0x400, 0x33FF+i*0x400, nt[i], false)
	}
	p.Bus.MapMemorySlice(0x3C00, 0x3EFF, nt[3], false)

	log.ModPPU.DebugZ("nametable mirroring").Stringer("mode", m).End()
}

// Reset zeroes the registers, the scroll/address state and the counters,
// and places the PPU at the start of the pre-render scanline. Video memory
// and OAM are left untouched.
func (p *PPU) Reset() {
	p.PPUCTRL.Value = 0
	p.PPUMASK.Value = 0
	p.PPUSTATUS.Value = 0
	p.OAMADDR.Value = 0

	p.vramAddr, p.vramTmp = 0, 0
	p.finex = 0
	p.writeLatch = false
	p.dataBuf = 0
	p.openBus = 0

	p.bg = bgPipeline{}
	p.nspr = 0

	p.Dot = 0
	p.Scanline = -1
	p.Frame = 0
	p.oddFrame = false
}

// ReadRegister reads one of the CPU-facing ports, $2000-$2007 (mirrors
// accepted) or $4014.
func (p *PPU) ReadRegister(port uint16) uint8 {
	if port == 0x4014 {
		return p.openBus
	}
	return p.regs[port&7].Read8(port, false)
}

// WriteRegister writes one of the CPU-facing ports, $2000-$2007 (mirrors
// accepted) or $4014. The OAM DMA stall is charged to the CPU at the end of
// its current (or next) instruction. Without a CPU there is no bus to copy
// from, so the $4014 write is ignored.
func (p *PPU) WriteRegister(port uint16, val uint8) {
	if port == 0x4014 {
		if p.CPU != nil {
			p.CPU.PPUDMA.OAMDMA.Write8(port, val)
		}
		return
	}
	p.regs[port&7].Write8(port, val)
}

func (p *PPU) ReadOPENBUS(_ uint8) uint8 {
	return p.openBus
}

// PPUCTRL: $2000
func (p *PPU) WritePPUCTRL(old, val uint8) {
	log.ModPPU.DebugZ("Write to PPUCTRL").Hex8("val", val).End()
	p.openBus = val

	// Transfer the nametable bits.
	p.vramTmp.setNametable(val & ctrlNametable)

	// Enabling NMI during vblank immediately generates one.
	if old&ctrlNMI == 0 && val&ctrlNMI != 0 && p.PPUSTATUS.Value&statusVblank != 0 {
		p.raiseNMI()
	}
}

// PPUMASK: $2001
func (p *PPU) WritePPUMASK(_, val uint8) {
	log.ModPPU.DebugZ("Write to PPUMASK").Hex8("val", val).End()
	p.openBus = val
}

// PPUSTATUS: $2002
func (p *PPU) ReadPPUSTATUS(val uint8) uint8 {
	ret := p.PeekPPUSTATUS(val)
	p.PPUSTATUS.Value &^= statusVblank
	p.writeLatch = false
	p.openBus = ret
	return ret
}

func (p *PPU) PeekPPUSTATUS(val uint8) uint8 {
	return val&statusMask | p.openBus&^statusMask
}

// OAMADDR: $2003
func (p *PPU) WriteOAMADDR(_, val uint8) {
	p.openBus = val
}

// OAMDATA: $2004
func (p *PPU) ReadOAMDATA(_ uint8) uint8 {
	return p.OAM[p.OAMADDR.Value]
}

func (p *PPU) WriteOAMDATA(_, val uint8) {
	p.openBus = val
	p.OAM[p.OAMADDR.Value] = val
	p.OAMADDR.Value++
}

// PPUSCROLL: $2005
func (p *PPU) WritePPUSCROLL(_, val uint8) {
	log.ModPPU.DebugZ("Write to PPUSCROLL").
		Hex8("val", val).
		Bool("w", p.writeLatch).
		End()
	p.openBus = val

	if !p.writeLatch { // first write
		p.finex = val & 0b111
		p.vramTmp.setCoarsex(val >> 3)
	} else { // second write
		p.vramTmp.setFiney(val & 0b111)
		p.vramTmp.setCoarsey(val >> 3)
	}
	p.writeLatch = !p.writeLatch
}

// To read/write VRAM from CPU, PPUADDR is set to the address of the operation.
// It's a 16-bit register so 2 writes are necessary.
// PPUADDR: $2006
func (p *PPU) WritePPUADDR(_, val uint8) {
	p.openBus = val

	if !p.writeLatch { // first write
		p.vramTmp.setHigh(val)
	} else { // second write
		p.vramTmp.setLow(val)
		p.vramAddr = p.vramTmp
	}
	p.writeLatch = !p.writeLatch
}

// PPUDATA: $2007
func (p *PPU) ReadPPUDATA(_ uint8) uint8 {
	addr := p.vramAddr.addr()
	var val uint8
	if addr < 0x3F00 {
		// VRAM reads are delayed by one read.
		val = p.dataBuf
		p.dataBuf = p.Bus.Read8(addr, false)
	} else {
		// Palette reads are immediate, though the buffer still receives the
		// nametable byte 'under' the palette.
		val = p.Bus.Read8(addr, false)
		p.dataBuf = p.Bus.Read8(addr&0x2FFF, false)
	}

	log.ModPPU.DebugZ("VRAM read").
		Hex16("addr", addr).
		Hex8("val", val).
		End()

	p.incVRAMAddr()
	p.openBus = val
	return val
}

func (p *PPU) PeekPPUDATA(_ uint8) uint8 {
	addr := p.vramAddr.addr()
	if addr < 0x3F00 {
		return p.dataBuf
	}
	return p.Bus.Peek8(addr)
}

// PPUDATA: $2007
func (p *PPU) WritePPUDATA(_, val uint8) {
	addr := p.vramAddr.addr()
	log.ModPPU.DebugZ("VRAM write").
		Hex16("addr", addr).
		Hex8("val", val).
		End()

	p.openBus = val
	p.Bus.Write8(addr, val)
	p.incVRAMAddr()
}

// After each access to PPUDATA, v is incremented by 1 or 32.
func (p *PPU) incVRAMAddr() {
	incr := loopy(1)
	if p.PPUCTRL.Value&ctrlIncr32 != 0 {
		incr = 32
	}
	p.vramAddr = (p.vramAddr + incr) & 0x7FFF
}

// $3F10/$3F14/$3F18/$3F1C are mirrors of $3F00/$3F04/$3F08/$3F0C.
func paletteIndex(addr uint16) uint16 {
	i := addr & 0x1F
	if i&0x13 == 0x10 {
		i &^= 0x10
	}
	return i
}

func (p *PPU) ReadPALETTE(addr uint16) uint8 {
	return p.palRAM[paletteIndex(addr)]
}

func (p *PPU) WritePALETTE(addr uint16, val uint8) {
	p.palRAM[paletteIndex(addr)] = val & 0x3F
}

func (p *PPU) raiseNMI() {
	log.ModPPU.DebugZ("raise NMI").
		Int("scanline", p.Scanline).
		Int("dot", p.Dot).
		End()
	if p.CPU != nil {
		p.CPU.RequestInterrupt(hwdefs.NMI)
	}
}

// VBlank reports whether the vblank flag is set.
func (p *PPU) VBlank() bool {
	return p.PPUSTATUS.Value&statusVblank != 0
}

// FrameBuffer returns the last rendered frame: Width*Height palette indices, in
// row-major order. The returned slice is owned by the PPU and must not be
// modified.
func (p *PPU) FrameBuffer() []uint8 {
	return p.frame[:]
}

// AddLogContext adds the PPU position to log entries.
func (p *PPU) AddLogContext(e *log.EntryZ) {
	e.Int("sl", p.Scanline).Int("dot", p.Dot)
}

func (p *PPU) Snapshot() snapshot.PPU {
	return snapshot.PPU{
		PPUCTRL:    p.PPUCTRL.Value,
		PPUMASK:    p.PPUMASK.Value,
		PPUSTATUS:  p.PPUSTATUS.Value,
		OAMAddr:    p.OAMADDR.Value,
		OpenBus:    p.openBus,
		DataBuf:    p.dataBuf,
		VRAMAddr:   uint16(p.vramAddr),
		VRAMTemp:   uint16(p.vramTmp),
		FineX:      p.finex,
		WriteLatch: p.writeLatch,
		Dot:        p.Dot,
		Scanline:   p.Scanline,
		Frame:      p.Frame,
		OddFrame:   p.oddFrame,
		OAM:        append([]uint8(nil), p.OAM[:]...),
		Palette:    append([]uint8(nil), p.palRAM[:]...),
		Nametables: append([]uint8(nil), p.Nametables[:]...),
	}
}

// Restore sets the PPU state from a snapshot. The rendering pipeline
// restarts from scratch, so the remainder of the current frame may show
// glitches.
func (p *PPU) Restore(s snapshot.PPU) {
	p.PPUCTRL.Value = s.PPUCTRL
	p.PPUMASK.Value = s.PPUMASK
	p.PPUSTATUS.Value = s.PPUSTATUS
	p.OAMADDR.Value = s.OAMAddr
	p.openBus = s.OpenBus
	p.dataBuf = s.DataBuf
	p.vramAddr = loopy(s.VRAMAddr)
	p.vramTmp = loopy(s.VRAMTemp)
	p.finex = s.FineX
	p.writeLatch = s.WriteLatch
	p.Dot = s.Dot
	p.Scanline = s.Scanline
	p.Frame = s.Frame
	p.oddFrame = s.OddFrame
	copy(p.OAM[:], s.OAM)
	copy(p.palRAM[:], s.Palette)
	copy(p.Nametables[:], s.Nametables)

	p.bg = bgPipeline{}
	p.nspr = 0
}
