package hw

import (
	"io"

	"nescore/emu/log"
	"nescore/hw/hwdefs"
	"nescore/hw/hwio"
	"nescore/hw/snapshot"
)

// ExecState is the CPU execution state, it only changes at instruction
// boundaries.
type ExecState uint8

const (
	Fetching ExecState = iota
	ServicingInterrupt
)

func (s ExecState) String() string {
	if s == ServicingInterrupt {
		return "servicing interrupt"
	}
	return "fetching"
}

const interruptCycles = 7

type CPU struct {
	Bus *hwio.Table

	RAM hwio.Mem `hwio:"bank=0,offset=0x0,size=0x800,vsize=0x2000"`

	PPU    *PPU // non-nil when there's a PPU.
	PPUDMA PPUDMA

	// Non-nil when execution tracing is enabled.
	tracer *tracer

	Cycles int64 // CPU cycles

	// cpu registers
	A, X, Y, SP uint8
	PC          uint16
	P           P

	State   ExecState
	pending hwdefs.Interrupt

	extra int // cycles added by the current instruction (branches)
	halt  *HaltError
}

// NewCPU creates a new CPU at power-up state.
func NewCPU(ppu *PPU) *CPU {
	cpu := &CPU{
		Bus: hwio.NewTable("cpu"),
		SP:  0xFD,
		P:   Reserved | Interrupt,
		PPU: ppu,
	}
	if ppu != nil {
		ppu.CPU = cpu
	}
	return cpu
}

// InitBus maps the CPU internal RAM, the PPU registers and OAM DMA. The
// cartridge space is mapped by the mapper.
func (c *CPU) InitBus() {
	hwio.MustInitRegs(c)
	// CPU internal RAM, mirrored.
	c.Bus.MapBank(0x0000, c, 0)

	// The 8 PPU registers (bank 1) are mirrored from 0x2000 to 0x3FFF.
	if c.PPU != nil {
		for off := uint16(0x2000); off < 0x4000; off += 8 {
			c.Bus.MapBank(off, c.PPU, 1)
		}
	}

	c.PPUDMA.InitBus(c)
	c.Bus.MapBank(0x4014, &c.PPUDMA, 0)
}

// Reset loads PC from the reset vector. A hard reset (power up) also
// initializes the registers, a soft reset (reset button) only decrements
// SP and sets I.
func (c *CPU) Reset(soft bool) {
	c.reset(soft)

	// The reset sequence lasts 7 cycles.
	c.Cycles = interruptCycles

	log.ModCPU.InfoZ("reset").
		Bool("soft", soft).
		Hex16("PC", c.PC).
		End()
}

func (c *CPU) reset(soft bool) {
	if soft {
		c.SP -= 0x03
		c.P.set(Interrupt, true)
	} else {
		c.A, c.X, c.Y = 0, 0, 0
		c.SP = 0xFD
		c.P = Reserved | Interrupt
	}

	c.PPUDMA.reset()
	c.PC = hwio.Read16(c.Bus, hwdefs.ResetVector)
	c.State = Fetching
	c.pending = hwdefs.NoInterrupt
	c.halt = nil
}

// RequestInterrupt records an interrupt request, serviced at the start of
// the next Step. Only one request is kept: a pending request is replaced by
// one of higher precedence, so an NMI supersedes an IRQ and repeated
// requests of the same kind are coalesced.
func (c *CPU) RequestInterrupt(kind hwdefs.Interrupt) {
	if kind > c.pending {
		c.pending = kind
	}
}

// PendingInterrupt returns the interrupt to be serviced at next Step, if
// any.
func (c *CPU) PendingInterrupt() hwdefs.Interrupt {
	return c.pending
}

// Step executes one instruction, or services a pending interrupt, and
// returns the number of elapsed CPU cycles, OAM DMA stall included. Once
// the CPU has halted, Step always returns the same *HaltError.
func (c *CPU) Step() (int, error) {
	if c.halt != nil {
		return 0, c.halt
	}

	if ncycles, ok := c.serviceInterrupt(); ok {
		c.Cycles += int64(ncycles)
		return ncycles, nil
	}

	c.State = Fetching
	c.traceOp()

	pc := c.PC
	opcode := c.Read8(pc)
	def := &opcodes[opcode]
	if !def.legal() {
		c.halt = c.newHaltError(opcode, pc)
		log.ModCPU.WarnZ("CPU halted").
			Hex16("PC", pc).
			Hex8("opcode", opcode).
			Int64("cycles", c.Cycles).
			End()
		return 0, c.halt
	}

	oper, crossed := c.resolve(def.mode, pc)
	c.PC = pc + uint16(def.size)
	c.extra = 0
	def.exec(c, oper)

	ncycles := int(def.cycles) + c.extra
	if crossed && def.page {
		ncycles++
	}
	ncycles += c.PPUDMA.stall(c.Cycles + int64(ncycles))
	c.Cycles += int64(ncycles)
	return ncycles, nil
}

func (c *CPU) serviceInterrupt() (int, bool) {
	kind := c.pending
	switch kind {
	case hwdefs.NoInterrupt:
		return 0, false
	case hwdefs.IRQ:
		if c.P.intDisable() {
			// level triggered, stays pending until I is cleared.
			return 0, false
		}
	case hwdefs.Reset:
		c.reset(hwdefs.SoftReset)
		log.ModCPU.DebugZ("interrupt").
			Stringer("kind", kind).
			Hex16("to", c.PC).
			End()
		return interruptCycles, true
	}

	c.pending = hwdefs.NoInterrupt
	prevpc := c.PC
	c.push16(c.PC)
	c.push8(c.P.pushed(false))
	c.P.set(Interrupt, true)
	c.PC = c.Read16(kind.Vector())
	c.State = ServicingInterrupt

	log.ModCPU.DebugZ("interrupt").
		Stringer("kind", kind).
		Hex16("from", prevpc).
		Hex16("to", c.PC).
		End()
	return interruptCycles, true
}

func (c *CPU) IsHalted() bool {
	return c.halt != nil
}

func (c *CPU) Read8(addr uint16) uint8 {
	return c.Bus.Read8(addr, false)
}

func (c *CPU) Write8(addr uint16, val uint8) {
	c.Bus.Write8(addr, val)
}

func (c *CPU) Read16(addr uint16) uint16 {
	return hwio.Read16(c.Bus, addr)
}

/* stack operations */

func (c *CPU) push8(val uint8) {
	top := uint16(c.SP) + 0x0100
	c.Write8(top, val)
	c.SP--
}

func (c *CPU) push16(val uint16) {
	c.push8(uint8(val >> 8))
	c.push8(uint8(val & 0xff))
}

func (c *CPU) pull8() uint8 {
	c.SP++
	top := uint16(c.SP) + 0x0100
	return c.Read8(top)
}

func (c *CPU) pull16() uint16 {
	lo := c.pull8()
	hi := c.pull8()
	return uint16(hi)<<8 | uint16(lo)
}

/* tracing / diagnostics */

func (c *CPU) SetTraceOutput(w io.Writer) {
	if w == nil {
		c.tracer = nil
		return
	}
	c.tracer = &tracer{w: w, d: c}
}

func (c *CPU) traceOp() {
	if c.tracer == nil {
		return
	}
	state := cpuState{
		A:     c.A,
		X:     c.X,
		Y:     c.Y,
		P:     c.P,
		SP:    c.SP,
		Clock: c.Cycles,
		PC:    c.PC,
	}
	if c.PPU != nil {
		state.PPUCycle = c.PPU.Dot
		state.Scanline = c.PPU.Scanline
	}
	c.tracer.write(state)
}

// Disasm disassembles the instruction at pc, without side effects.
func (c *CPU) Disasm(pc uint16) DisasmOp {
	return Disasm(c.Bus, pc)
}

// AddLogContext adds the CPU registers to log entries.
func (c *CPU) AddLogContext(e *log.EntryZ) {
	e.Hex16("pc", c.PC).Int64("cyc", c.Cycles)
}

// Snapshot returns the CPU registers and interrupt state.
func (c *CPU) Snapshot() snapshot.CPU {
	return snapshot.CPU{
		PC:      c.PC,
		SP:      c.SP,
		P:       uint8(c.P),
		A:       c.A,
		X:       c.X,
		Y:       c.Y,
		Cycles:  c.Cycles,
		Pending: uint8(c.pending),
		State:   uint8(c.State),
	}
}

// Restore sets the CPU state from a snapshot.
func (c *CPU) Restore(s snapshot.CPU) {
	c.PC, c.SP, c.P = s.PC, s.SP, P(s.P)
	c.A, c.X, c.Y = s.A, s.X, s.Y
	c.Cycles = s.Cycles
	c.pending = hwdefs.Interrupt(s.Pending)
	c.State = ExecState(s.State)
	c.halt = nil
}
