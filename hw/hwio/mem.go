package hwio

import (
	"nescore/emu/log"
)

type MemFlags int

const (
	MemFlagReadWrite MemFlags = 0
	MemFlagReadOnly  MemFlags = (1 << iota) // writes are ignored
	MemFlagNoROLog                          // don't log writes to read-only memory
)

// Mem is a linear memory area that can be mapped into a Table. The physical
// buffer size must be a power of 2, and the area is mirrored over its
// virtual size.
type Mem struct {
	Name    string              // for debugging
	Data    []byte              // physical memory
	VSize   int                 // virtual size, multiple of len(Data)
	Flags   MemFlags            // access flags
	WriteCb func(uint16, uint8) // called after each successful write
}

// BankIO8 creates the adaptor actually mapped into a Table.
func (m *Mem) BankIO8() BankIO8 {
	if len(m.Data) == 0 || len(m.Data)&(len(m.Data)-1) != 0 {
		panic("memory buffer size is not pow2: " + m.Name)
	}
	return &mem{
		name:  m.Name,
		data:  m.Data,
		mask:  uint16(len(m.Data) - 1),
		wcb:   m.WriteCb,
		flags: m.Flags,
	}
}

type mem struct {
	name  string
	data  []byte
	mask  uint16
	wcb   func(uint16, uint8)
	flags MemFlags
}

func (m *mem) Read8(addr uint16, _ bool) uint8 {
	return m.data[addr&m.mask]
}

func (m *mem) Write8(addr uint16, val uint8) {
	if m.flags&MemFlagReadOnly != 0 {
		if m.flags&MemFlagNoROLog == 0 {
			log.ModHwIo.DebugZ("Write8 to readonly memory").
				String("name", m.name).
				Hex16("addr", addr).
				Hex8("val", val).
				End()
		}
		return
	}
	m.data[addr&m.mask] = val
	if m.wcb != nil {
		m.wcb(addr, val)
	}
}
