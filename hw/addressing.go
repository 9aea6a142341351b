package hw

//go:generate go tool stringer -type=AddrMode -trimprefix=Mode

// AddrMode is the rule used to locate an instruction operand.
type AddrMode uint8

const (
	ModeImplied AddrMode = iota
	ModeAccumulator
	ModeImmediate
	ModeZeroPage
	ModeZeroPageX
	ModeZeroPageY
	ModeAbsolute
	ModeAbsoluteX
	ModeAbsoluteY
	ModeIndirect
	ModeIndexedIndirect // (zp,X)
	ModeIndirectIndexed // (zp),Y
	ModeRelative
)

// Size returns the instruction length, opcode included.
func (m AddrMode) Size() uint8 {
	switch m {
	case ModeImplied, ModeAccumulator:
		return 1
	case ModeAbsolute, ModeAbsoluteX, ModeAbsoluteY, ModeIndirect:
		return 3
	}
	return 2
}

type operandKind uint8

const (
	operImplied operandKind = iota
	operAccumulator
	operMemory
)

// operand is the resolved location of an instruction operand. Immediate
// operands are located at the address of the byte following the opcode.
type operand struct {
	kind operandKind
	addr uint16
}

func memOperand(addr uint16) operand { return operand{kind: operMemory, addr: addr} }

// resolve computes the operand location for an instruction whose opcode is
// at pc. crossed reports whether indexing moved the effective address to
// another page than the base address.
func (c *CPU) resolve(mode AddrMode, pc uint16) (op operand, crossed bool) {
	switch mode {
	case ModeImplied:
		return operand{kind: operImplied}, false
	case ModeAccumulator:
		return operand{kind: operAccumulator}, false
	case ModeImmediate:
		return memOperand(pc + 1), false
	case ModeZeroPage:
		return memOperand(uint16(c.Read8(pc + 1))), false
	case ModeZeroPageX:
		return memOperand(uint16(c.Read8(pc+1) + c.X)), false
	case ModeZeroPageY:
		return memOperand(uint16(c.Read8(pc+1) + c.Y)), false
	case ModeAbsolute:
		return memOperand(c.Read16(pc + 1)), false
	case ModeAbsoluteX:
		return indexed(c.Read16(pc+1), c.X)
	case ModeAbsoluteY:
		return indexed(c.Read16(pc+1), c.Y)
	case ModeIndirect:
		// The pointer high byte is fetched from the same page as the low
		// byte, even when the low byte sits at the end of the page.
		ptr := c.Read16(pc + 1)
		lo := c.Read8(ptr)
		hi := c.Read8(ptr&0xFF00 | uint16(uint8(ptr)+1))
		return memOperand(uint16(hi)<<8 | uint16(lo)), false
	case ModeIndexedIndirect:
		return memOperand(c.zpRead16(c.Read8(pc+1) + c.X)), false
	case ModeIndirectIndexed:
		return indexed(c.zpRead16(c.Read8(pc+1)), c.Y)
	case ModeRelative:
		off := int8(c.Read8(pc + 1))
		return memOperand(pc + 2 + uint16(off)), false
	}
	panic("unknown addressing mode " + mode.String())
}

func indexed(base uint16, idx uint8) (operand, bool) {
	addr := base + uint16(idx)
	return memOperand(addr), pageCrossed(base, addr)
}

func pageCrossed(a, b uint16) bool {
	return a&0xFF00 != b&0xFF00
}

// zpRead16 reads a pointer in page zero, wrapping at the end of the page.
func (c *CPU) zpRead16(zp uint8) uint16 {
	lo := c.Read8(uint16(zp))
	hi := c.Read8(uint16(zp + 1))
	return uint16(hi)<<8 | uint16(lo)
}

// load reads the operand value.
func (c *CPU) load(op operand) uint8 {
	if op.kind == operAccumulator {
		return c.A
	}
	return c.Read8(op.addr)
}

// store writes the operand value.
func (c *CPU) store(op operand, val uint8) {
	if op.kind == operAccumulator {
		c.A = val
		return
	}
	c.Write8(op.addr, val)
}
