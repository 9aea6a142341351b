package hwio

import (
	"fmt"

	"nescore/emu/log"
)

type BankIO8 interface {
	// Read8 reads a byte from the given address. If peek is true, the read
	// must not have any side effect (debugger, tracer, disassembler).
	Read8(addr uint16, peek bool) uint8
	Write8(addr uint16, val uint8)
}

func Read16(b BankIO8, addr uint16) uint16 {
	lo := b.Read8(addr, false)
	hi := b.Read8(addr+1, false)
	return uint16(hi)<<8 | uint16(lo)
}

func Peek16(b BankIO8, addr uint16) uint16 {
	lo := b.Read8(addr, true)
	hi := b.Read8(addr+1, true)
	return uint16(hi)<<8 | uint16(lo)
}

// Table dispatches 8-bit accesses over a 16-bit address space to the
// BankIO8 mapped at each address.
type Table struct {
	Name string

	// Unmapped receives accesses to addresses with nothing mapped. If nil,
	// reads return 0 and writes are dropped.
	Unmapped BankIO8

	table8 [0x10000]BankIO8
}

func NewTable(name string) *Table {
	return &Table{Name: name}
}

func (t *Table) Reset() {
	clear(t.table8[:])
}

// MapBank maps a register bank, that is, a structure containing multiple
// Mem, Reg8 or Device fields. Fields must carry a "hwio" struct tag:
//
//	offset=0x12     Byte offset within the bank at which the field is
//	                mapped. Fields without offset are not part of any bank.
//
//	bank=NN         Bank number (default 0). A structure can expose
//	                multiple banks, each mapped independently.
//
// See InitRegs for the other tag options.
func (t *Table) MapBank(addr uint16, bank any, bankNum int) {
	regs, err := bankGetRegs(bank, bankNum)
	if err != nil {
		panic(err)
	}

	for _, reg := range regs {
		switch r := reg.regPtr.(type) {
		case *Mem:
			t.MapMem(addr+reg.offset, r)
		case *Reg8:
			t.MapReg8(addr+reg.offset, r)
		case *Device:
			t.MapDevice(addr+reg.offset, r)
		default:
			panic(fmt.Errorf("invalid reg type: %T", r))
		}
	}
}

func (t *Table) UnmapBank(addr uint16, bank any, bankNum int) {
	regs, err := bankGetRegs(bank, bankNum)
	if err != nil {
		panic(err)
	}

	for _, reg := range regs {
		begin := addr + reg.offset
		switch r := reg.regPtr.(type) {
		case *Mem:
			t.Unmap(begin, begin+uint16(r.VSize-1))
		case *Reg8:
			t.Unmap(begin, begin)
		case *Device:
			t.Unmap(begin, begin+uint16(r.Size-1))
		default:
			panic(fmt.Errorf("invalid reg type: %T", r))
		}
	}
}

func (t *Table) mapBus8(addr uint16, size int, io BankIO8) {
	if size <= 0 || int(addr)+size > len(t.table8) {
		panic(fmt.Errorf("%s: invalid mapping at %04x (size %d)", t.Name, addr, size))
	}
	for i := range size {
		if t.table8[int(addr)+i] != nil {
			panic(fmt.Errorf("%s: address %04x already mapped", t.Name, int(addr)+i))
		}
	}
	for i := range size {
		t.table8[int(addr)+i] = io
	}
}

func (t *Table) MapReg8(addr uint16, io *Reg8) {
	t.mapBus8(addr, 1, io)
}

func (t *Table) MapDevice(addr uint16, io *Device) {
	t.mapBus8(addr, io.Size, io)
}

func (t *Table) MapMem(addr uint16, mem *Mem) {
	log.ModHwIo.DebugZ("mapping mem").
		Hex16("addr", addr).
		Int("size", mem.VSize).
		String("area", mem.Name).
		String("bus", t.Name).
		End()

	t.mapBus8(addr, mem.VSize, mem.BankIO8())
}

// MapMemorySlice maps buf over [addr, end], mirroring it if it's smaller
// than the range.
func (t *Table) MapMemorySlice(addr, end uint16, buf []uint8, readonly bool) {
	var flags MemFlags
	if readonly {
		flags |= MemFlagReadOnly
	}
	t.MapMem(addr, &Mem{
		Name:  fmt.Sprintf("slice@%04x", addr),
		Data:  buf,
		Flags: flags,
		VSize: int(end) - int(addr) + 1,
	})
}

// Unmap removes all mappings in [begin, end].
func (t *Table) Unmap(begin, end uint16) {
	for i := int(begin); i <= int(end); i++ {
		t.table8[i] = nil
	}
}

// Read8 forwards the read to the device mapped at addr.
func (t *Table) Read8(addr uint16, peek bool) uint8 {
	io := t.table8[addr]
	if io == nil {
		if t.Unmapped != nil {
			return t.Unmapped.Read8(addr, peek)
		}
		return 0
	}
	return io.Read8(addr, peek)
}

func (t *Table) Peek8(addr uint16) uint8 {
	return t.Read8(addr, true)
}

func (t *Table) Write8(addr uint16, val uint8) {
	io := t.table8[addr]
	if io == nil {
		if t.Unmapped != nil {
			t.Unmapped.Write8(addr, val)
		}
		return
	}
	io.Write8(addr, val)
}

// Mapped reports whether something is mapped at addr.
func (t *Table) Mapped(addr uint16) bool {
	return t.table8[addr] != nil
}
