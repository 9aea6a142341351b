package hw

import (
	"fmt"
	"slices"

	"nescore/hw/hwdefs"
	"nescore/hw/hwio"
)

type DisasmOp struct {
	Opcode string
	Oper   string
	Buf    []byte
	PC     uint16
}

// Size is the instruction length in bytes.
func (d DisasmOp) Size() int {
	return len(d.Buf)
}

func (d DisasmOp) String() string {
	if d.Oper == "" {
		return fmt.Sprintf("%04X  %-9s %s", d.PC, hexBytes(d.Buf), d.Opcode)
	}
	return fmt.Sprintf("%04X  %-9s %s %s", d.PC, hexBytes(d.Buf), d.Opcode, d.Oper)
}

func hexBytes(buf []byte) string {
	s := make([]byte, 0, 3*len(buf))
	for i, b := range buf {
		if i > 0 {
			s = append(s, ' ')
		}
		s = fmt.Appendf(s, "%02X", b)
	}
	return string(s)
}

// Bytes returns the string representation of a DisasmOp, this is optimized
// version, suitable for the execution tracer.
func (d DisasmOp) Bytes() []byte {
	const totalLen = 48
	buf := make([]byte, totalLen)

	hexEncode(buf[0:], byte(d.PC>>8))
	hexEncode(buf[2:], byte(d.PC))
	buf[4] = ' '
	buf[5] = ' '

	off := 6
	for i := range d.Buf {
		hexEncode(buf[off:], d.Buf[i])
		buf[off+2] = ' '
		off += 3
	}
	for ; off < 16; off++ {
		buf[off] = ' '
	}

	off += copy(buf[off:], d.Opcode)
	buf[off] = ' '
	off++

	buf = append(buf[:off], d.Oper...)
	off += len(d.Oper)
	if len(buf) > totalLen {
		return append(buf, ' ')
	}
	buf = buf[:totalLen]
	for i := off; i < totalLen; i++ {
		buf[i] = ' '
	}
	return buf
}

var addressLabels = map[uint16]string{
	0x2000: "PpuControl_2000",
	0x2001: "PpuMask_2001",
	0x2002: "PpuStatus_2002",
	0x2003: "OamAddr_2003",
	0x2004: "OamData_2004",
	0x2005: "PpuScroll_2005",
	0x2006: "PpuAddr_2006",
	0x2007: "PpuData_2007",
	0x4014: "SpriteDma_4014",
}

func formatAddr(addr uint16) string {
	if label, ok := addressLabels[addr]; ok {
		return label
	}
	return fmt.Sprintf("$%04X", addr)
}

// Disasm disassembles the instruction at pc. Memory is peeked so there are
// no side effects on the bus.
func Disasm(bus hwio.BankIO8, pc uint16) DisasmOp {
	opcode := bus.Read8(pc, true)
	def := &opcodes[opcode]
	if !def.legal() {
		return DisasmOp{
			PC:     pc,
			Buf:    []byte{opcode},
			Opcode: ".db",
			Oper:   fmt.Sprintf("$%02X", opcode),
		}
	}

	buf := make([]byte, def.size)
	for i := range buf {
		buf[i] = bus.Read8(pc+uint16(i), true)
	}

	var operand uint16
	switch len(buf) {
	case 2:
		operand = uint16(buf[1])
	case 3:
		operand = uint16(buf[2])<<8 | uint16(buf[1])
	}

	var oper string
	switch def.mode {
	case ModeImplied:
	case ModeAccumulator:
		oper = "A"
	case ModeImmediate:
		oper = fmt.Sprintf("#$%02X", operand)
	case ModeZeroPage:
		oper = fmt.Sprintf("$%02X", operand)
	case ModeZeroPageX:
		oper = fmt.Sprintf("$%02X,X", operand)
	case ModeZeroPageY:
		oper = fmt.Sprintf("$%02X,Y", operand)
	case ModeAbsolute:
		oper = formatAddr(operand)
	case ModeAbsoluteX:
		oper = formatAddr(operand) + ",X"
	case ModeAbsoluteY:
		oper = formatAddr(operand) + ",Y"
	case ModeIndirect:
		oper = fmt.Sprintf("($%04X)", operand)
	case ModeIndexedIndirect:
		oper = fmt.Sprintf("($%02X,X)", operand)
	case ModeIndirectIndexed:
		oper = fmt.Sprintf("($%02X),Y", operand)
	case ModeRelative:
		oper = fmt.Sprintf("$%04X", branchTarget(pc, uint8(operand)))
	}

	return DisasmOp{
		PC:     pc,
		Buf:    buf,
		Opcode: def.name,
		Oper:   oper,
	}
}

func branchTarget(pc uint16, off uint8) uint16 {
	return pc + 2 + uint16(int8(off))
}

// DisasmProgram disassembles the code reachable from the interrupt
// vectors, following jumps, subroutine calls and both paths of conditional
// branches. Indirect jumps can't be followed. Instructions are returned
// sorted by address.
func DisasmProgram(bus hwio.BankIO8) []DisasmOp {
	entries := []uint16{
		hwio.Peek16(bus, hwdefs.ResetVector),
		hwio.Peek16(bus, hwdefs.NMIVector),
		hwio.Peek16(bus, hwdefs.IRQVector),
	}
	return DisasmFrom(bus, entries...)
}

// DisasmFrom is like DisasmProgram, with explicit entry points.
func DisasmFrom(bus hwio.BankIO8, entries ...uint16) []DisasmOp {
	var (
		seen hwio.Bitset
		ops  []DisasmOp
	)

	todo := slices.Clone(entries)
	for len(todo) > 0 {
		pc := todo[len(todo)-1]
		todo = todo[:len(todo)-1]

		for !seen.Test(pc) {
			seen.Set(pc)
			op := Disasm(bus, pc)
			ops = append(ops, op)

			def := &opcodes[op.Buf[0]]
			if !def.legal() {
				break
			}
			next := pc + uint16(op.Size())

			switch def.name {
			case "JMP":
				if def.mode == ModeAbsolute {
					todo = append(todo, hwio.Peek16(bus, pc+1))
				}
			case "JSR":
				todo = append(todo, hwio.Peek16(bus, pc+1), next)
			case "BCC", "BCS", "BNE", "BEQ", "BPL", "BMI", "BVC", "BVS":
				todo = append(todo, branchTarget(pc, op.Buf[1]))
			}

			switch def.name {
			case "JMP", "JSR", "RTS", "RTI", "BRK":
				// End of linear flow.
				next = pc
			}
			if next <= pc {
				// Stop at the end of flow or when wrapping around the
				// address space.
				break
			}
			pc = next
		}
	}

	slices.SortFunc(ops, func(a, b DisasmOp) int {
		return int(a.PC) - int(b.PC)
	})
	return ops
}
