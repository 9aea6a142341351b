package hw

import "nescore/hw/hwdefs"

// opdef describes one opcode. The table is the single source of truth for
// instruction lengths and timings.
type opdef struct {
	name   string
	mode   AddrMode
	size   uint8
	cycles uint8
	page   bool // one extra cycle when indexing crosses a page
	exec   func(*CPU, operand)
}

func (d *opdef) legal() bool { return d.exec != nil }

// nes 6502 opcodes table, documented opcodes only.
var opcodes = [256]opdef{
	0x00: {"BRK", ModeImplied, 1, 7, false, BRK},
	0x01: {"ORA", ModeIndexedIndirect, 2, 6, false, ORA},
	0x05: {"ORA", ModeZeroPage, 2, 3, false, ORA},
	0x06: {"ASL", ModeZeroPage, 2, 5, false, ASL},
	0x08: {"PHP", ModeImplied, 1, 3, false, PHP},
	0x09: {"ORA", ModeImmediate, 2, 2, false, ORA},
	0x0A: {"ASL", ModeAccumulator, 1, 2, false, ASL},
	0x0D: {"ORA", ModeAbsolute, 3, 4, false, ORA},
	0x0E: {"ASL", ModeAbsolute, 3, 6, false, ASL},

	0x10: {"BPL", ModeRelative, 2, 2, false, BPL},
	0x11: {"ORA", ModeIndirectIndexed, 2, 5, true, ORA},
	0x15: {"ORA", ModeZeroPageX, 2, 4, false, ORA},
	0x16: {"ASL", ModeZeroPageX, 2, 6, false, ASL},
	0x18: {"CLC", ModeImplied, 1, 2, false, CLC},
	0x19: {"ORA", ModeAbsoluteY, 3, 4, true, ORA},
	0x1D: {"ORA", ModeAbsoluteX, 3, 4, true, ORA},
	0x1E: {"ASL", ModeAbsoluteX, 3, 7, false, ASL},

	0x20: {"JSR", ModeAbsolute, 3, 6, false, JSR},
	0x21: {"AND", ModeIndexedIndirect, 2, 6, false, AND},
	0x24: {"BIT", ModeZeroPage, 2, 3, false, BIT},
	0x25: {"AND", ModeZeroPage, 2, 3, false, AND},
	0x26: {"ROL", ModeZeroPage, 2, 5, false, ROL},
	0x28: {"PLP", ModeImplied, 1, 4, false, PLP},
	0x29: {"AND", ModeImmediate, 2, 2, false, AND},
	0x2A: {"ROL", ModeAccumulator, 1, 2, false, ROL},
	0x2C: {"BIT", ModeAbsolute, 3, 4, false, BIT},
	0x2D: {"AND", ModeAbsolute, 3, 4, false, AND},
	0x2E: {"ROL", ModeAbsolute, 3, 6, false, ROL},

	0x30: {"BMI", ModeRelative, 2, 2, false, BMI},
	0x31: {"AND", ModeIndirectIndexed, 2, 5, true, AND},
	0x35: {"AND", ModeZeroPageX, 2, 4, false, AND},
	0x36: {"ROL", ModeZeroPageX, 2, 6, false, ROL},
	0x38: {"SEC", ModeImplied, 1, 2, false, SEC},
	0x39: {"AND", ModeAbsoluteY, 3, 4, true, AND},
	0x3D: {"AND", ModeAbsoluteX, 3, 4, true, AND},
	0x3E: {"ROL", ModeAbsoluteX, 3, 7, false, ROL},

	0x40: {"RTI", ModeImplied, 1, 6, false, RTI},
	0x41: {"EOR", ModeIndexedIndirect, 2, 6, false, EOR},
	0x45: {"EOR", ModeZeroPage, 2, 3, false, EOR},
	0x46: {"LSR", ModeZeroPage, 2, 5, false, LSR},
	0x48: {"PHA", ModeImplied, 1, 3, false, PHA},
	0x49: {"EOR", ModeImmediate, 2, 2, false, EOR},
	0x4A: {"LSR", ModeAccumulator, 1, 2, false, LSR},
	0x4C: {"JMP", ModeAbsolute, 3, 3, false, JMP},
	0x4D: {"EOR", ModeAbsolute, 3, 4, false, EOR},
	0x4E: {"LSR", ModeAbsolute, 3, 6, false, LSR},

	0x50: {"BVC", ModeRelative, 2, 2, false, BVC},
	0x51: {"EOR", ModeIndirectIndexed, 2, 5, true, EOR},
	0x55: {"EOR", ModeZeroPageX, 2, 4, false, EOR},
	0x56: {"LSR", ModeZeroPageX, 2, 6, false, LSR},
	0x58: {"CLI", ModeImplied, 1, 2, false, CLI},
	0x59: {"EOR", ModeAbsoluteY, 3, 4, true, EOR},
	0x5D: {"EOR", ModeAbsoluteX, 3, 4, true, EOR},
	0x5E: {"LSR", ModeAbsoluteX, 3, 7, false, LSR},

	0x60: {"RTS", ModeImplied, 1, 6, false, RTS},
	0x61: {"ADC", ModeIndexedIndirect, 2, 6, false, ADC},
	0x65: {"ADC", ModeZeroPage, 2, 3, false, ADC},
	0x66: {"ROR", ModeZeroPage, 2, 5, false, ROR},
	0x68: {"PLA", ModeImplied, 1, 4, false, PLA},
	0x69: {"ADC", ModeImmediate, 2, 2, false, ADC},
	0x6A: {"ROR", ModeAccumulator, 1, 2, false, ROR},
	0x6C: {"JMP", ModeIndirect, 3, 5, false, JMP},
	0x6D: {"ADC", ModeAbsolute, 3, 4, false, ADC},
	0x6E: {"ROR", ModeAbsolute, 3, 6, false, ROR},

	0x70: {"BVS", ModeRelative, 2, 2, false, BVS},
	0x71: {"ADC", ModeIndirectIndexed, 2, 5, true, ADC},
	0x75: {"ADC", ModeZeroPageX, 2, 4, false, ADC},
	0x76: {"ROR", ModeZeroPageX, 2, 6, false, ROR},
	0x78: {"SEI", ModeImplied, 1, 2, false, SEI},
	0x79: {"ADC", ModeAbsoluteY, 3, 4, true, ADC},
	0x7D: {"ADC", ModeAbsoluteX, 3, 4, true, ADC},
	0x7E: {"ROR", ModeAbsoluteX, 3, 7, false, ROR},

	0x81: {"STA", ModeIndexedIndirect, 2, 6, false, STA},
	0x84: {"STY", ModeZeroPage, 2, 3, false, STY},
	0x85: {"STA", ModeZeroPage, 2, 3, false, STA},
	0x86: {"STX", ModeZeroPage, 2, 3, false, STX},
	0x88: {"DEY", ModeImplied, 1, 2, false, DEY},
	0x8A: {"TXA", ModeImplied, 1, 2, false, TXA},
	0x8C: {"STY", ModeAbsolute, 3, 4, false, STY},
	0x8D: {"STA", ModeAbsolute, 3, 4, false, STA},
	0x8E: {"STX", ModeAbsolute, 3, 4, false, STX},

	0x90: {"BCC", ModeRelative, 2, 2, false, BCC},
	0x91: {"STA", ModeIndirectIndexed, 2, 6, false, STA},
	0x94: {"STY", ModeZeroPageX, 2, 4, false, STY},
	0x95: {"STA", ModeZeroPageX, 2, 4, false, STA},
	0x96: {"STX", ModeZeroPageY, 2, 4, false, STX},
	0x98: {"TYA", ModeImplied, 1, 2, false, TYA},
	0x99: {"STA", ModeAbsoluteY, 3, 5, false, STA},
	0x9A: {"TXS", ModeImplied, 1, 2, false, TXS},
	0x9D: {"STA", ModeAbsoluteX, 3, 5, false, STA},

	0xA0: {"LDY", ModeImmediate, 2, 2, false, LDY},
	0xA1: {"LDA", ModeIndexedIndirect, 2, 6, false, LDA},
	0xA2: {"LDX", ModeImmediate, 2, 2, false, LDX},
	0xA4: {"LDY", ModeZeroPage, 2, 3, false, LDY},
	0xA5: {"LDA", ModeZeroPage, 2, 3, false, LDA},
	0xA6: {"LDX", ModeZeroPage, 2, 3, false, LDX},
	0xA8: {"TAY", ModeImplied, 1, 2, false, TAY},
	0xA9: {"LDA", ModeImmediate, 2, 2, false, LDA},
	0xAA: {"TAX", ModeImplied, 1, 2, false, TAX},
	0xAC: {"LDY", ModeAbsolute, 3, 4, false, LDY},
	0xAD: {"LDA", ModeAbsolute, 3, 4, false, LDA},
	0xAE: {"LDX", ModeAbsolute, 3, 4, false, LDX},

	0xB0: {"BCS", ModeRelative, 2, 2, false, BCS},
	0xB1: {"LDA", ModeIndirectIndexed, 2, 5, true, LDA},
	0xB4: {"LDY", ModeZeroPageX, 2, 4, false, LDY},
	0xB5: {"LDA", ModeZeroPageX, 2, 4, false, LDA},
	0xB6: {"LDX", ModeZeroPageY, 2, 4, false, LDX},
	0xB8: {"CLV", ModeImplied, 1, 2, false, CLV},
	0xB9: {"LDA", ModeAbsoluteY, 3, 4, true, LDA},
	0xBA: {"TSX", ModeImplied, 1, 2, false, TSX},
	0xBC: {"LDY", ModeAbsoluteX, 3, 4, true, LDY},
	0xBD: {"LDA", ModeAbsoluteX, 3, 4, true, LDA},
	0xBE: {"LDX", ModeAbsoluteY, 3, 4, true, LDX},

	0xC0: {"CPY", ModeImmediate, 2, 2, false, CPY},
	0xC1: {"CMP", ModeIndexedIndirect, 2, 6, false, CMP},
	0xC4: {"CPY", ModeZeroPage, 2, 3, false, CPY},
	0xC5: {"CMP", ModeZeroPage, 2, 3, false, CMP},
	0xC6: {"DEC", ModeZeroPage, 2, 5, false, DEC},
	0xC8: {"INY", ModeImplied, 1, 2, false, INY},
	0xC9: {"CMP", ModeImmediate, 2, 2, false, CMP},
	0xCA: {"DEX", ModeImplied, 1, 2, false, DEX},
	0xCC: {"CPY", ModeAbsolute, 3, 4, false, CPY},
	0xCD: {"CMP", ModeAbsolute, 3, 4, false, CMP},
	0xCE: {"DEC", ModeAbsolute, 3, 6, false, DEC},

	0xD0: {"BNE", ModeRelative, 2, 2, false, BNE},
	0xD1: {"CMP", ModeIndirectIndexed, 2, 5, true, CMP},
	0xD5: {"CMP", ModeZeroPageX, 2, 4, false, CMP},
	0xD6: {"DEC", ModeZeroPageX, 2, 6, false, DEC},
	0xD8: {"CLD", ModeImplied, 1, 2, false, CLD},
	0xD9: {"CMP", ModeAbsoluteY, 3, 4, true, CMP},
	0xDD: {"CMP", ModeAbsoluteX, 3, 4, true, CMP},
	0xDE: {"DEC", ModeAbsoluteX, 3, 7, false, DEC},

	0xE0: {"CPX", ModeImmediate, 2, 2, false, CPX},
	0xE1: {"SBC", ModeIndexedIndirect, 2, 6, false, SBC},
	0xE4: {"CPX", ModeZeroPage, 2, 3, false, CPX},
	0xE5: {"SBC", ModeZeroPage, 2, 3, false, SBC},
	0xE6: {"INC", ModeZeroPage, 2, 5, false, INC},
	0xE8: {"INX", ModeImplied, 1, 2, false, INX},
	0xE9: {"SBC", ModeImmediate, 2, 2, false, SBC},
	0xEA: {"NOP", ModeImplied, 1, 2, false, NOP},
	0xEC: {"CPX", ModeAbsolute, 3, 4, false, CPX},
	0xED: {"SBC", ModeAbsolute, 3, 4, false, SBC},
	0xEE: {"INC", ModeAbsolute, 3, 6, false, INC},

	0xF0: {"BEQ", ModeRelative, 2, 2, false, BEQ},
	0xF1: {"SBC", ModeIndirectIndexed, 2, 5, true, SBC},
	0xF5: {"SBC", ModeZeroPageX, 2, 4, false, SBC},
	0xF6: {"INC", ModeZeroPageX, 2, 6, false, INC},
	0xF8: {"SED", ModeImplied, 1, 2, false, SED},
	0xF9: {"SBC", ModeAbsoluteY, 3, 4, true, SBC},
	0xFD: {"SBC", ModeAbsoluteX, 3, 4, true, SBC},
	0xFE: {"INC", ModeAbsoluteX, 3, 7, false, INC},
}

/* load / store */

func LDA(cpu *CPU, op operand) {
	cpu.A = cpu.load(op)
	cpu.P.checkNZ(cpu.A)
}

func LDX(cpu *CPU, op operand) {
	cpu.X = cpu.load(op)
	cpu.P.checkNZ(cpu.X)
}

func LDY(cpu *CPU, op operand) {
	cpu.Y = cpu.load(op)
	cpu.P.checkNZ(cpu.Y)
}

func STA(cpu *CPU, op operand) { cpu.store(op, cpu.A) }
func STX(cpu *CPU, op operand) { cpu.store(op, cpu.X) }
func STY(cpu *CPU, op operand) { cpu.store(op, cpu.Y) }

/* transfers */

func TAX(cpu *CPU, _ operand) {
	cpu.X = cpu.A
	cpu.P.checkNZ(cpu.X)
}

func TAY(cpu *CPU, _ operand) {
	cpu.Y = cpu.A
	cpu.P.checkNZ(cpu.Y)
}

func TXA(cpu *CPU, _ operand) {
	cpu.A = cpu.X
	cpu.P.checkNZ(cpu.A)
}

func TYA(cpu *CPU, _ operand) {
	cpu.A = cpu.Y
	cpu.P.checkNZ(cpu.A)
}

func TSX(cpu *CPU, _ operand) {
	cpu.X = cpu.SP
	cpu.P.checkNZ(cpu.X)
}

func TXS(cpu *CPU, _ operand) { cpu.SP = cpu.X }

/* stack */

func PHA(cpu *CPU, _ operand) { cpu.push8(cpu.A) }
func PHP(cpu *CPU, _ operand) { cpu.push8(cpu.P.pushed(true)) }

func PLA(cpu *CPU, _ operand) {
	cpu.A = cpu.pull8()
	cpu.P.checkNZ(cpu.A)
}

func PLP(cpu *CPU, _ operand) { cpu.P = pulled(cpu.pull8()) }

/* logic */

func AND(cpu *CPU, op operand) {
	cpu.A &= cpu.load(op)
	cpu.P.checkNZ(cpu.A)
}

func ORA(cpu *CPU, op operand) {
	cpu.A |= cpu.load(op)
	cpu.P.checkNZ(cpu.A)
}

func EOR(cpu *CPU, op operand) {
	cpu.A ^= cpu.load(op)
	cpu.P.checkNZ(cpu.A)
}

func BIT(cpu *CPU, op operand) {
	val := cpu.load(op)
	cpu.P.set(Zero, cpu.A&val == 0)
	cpu.P.set(Overflow, val&0x40 != 0)
	cpu.P.set(Negative, val&0x80 != 0)
}

/* arithmetic */

func (c *CPU) addWithCarry(val uint8) {
	sum := uint16(c.A) + uint16(val) + uint16(c.P.ibit(Carry))
	c.P.checkCV(c.A, val, sum)
	c.A = uint8(sum)
	c.P.checkNZ(c.A)
}

// ADC adds in binary mode, the 2A03 has no decimal mode.
func ADC(cpu *CPU, op operand) {
	cpu.addWithCarry(cpu.load(op))
}

// SBC is A + ^M + C: carry set means no borrow.
func SBC(cpu *CPU, op operand) {
	cpu.addWithCarry(^cpu.load(op))
}

func (c *CPU) compare(reg, val uint8) {
	c.P.set(Carry, reg >= val)
	c.P.checkNZ(reg - val)
}

func CMP(cpu *CPU, op operand) { cpu.compare(cpu.A, cpu.load(op)) }
func CPX(cpu *CPU, op operand) { cpu.compare(cpu.X, cpu.load(op)) }
func CPY(cpu *CPU, op operand) { cpu.compare(cpu.Y, cpu.load(op)) }

/* increments / decrements */

func INC(cpu *CPU, op operand) {
	val := cpu.load(op) + 1
	cpu.store(op, val)
	cpu.P.checkNZ(val)
}

func DEC(cpu *CPU, op operand) {
	val := cpu.load(op) - 1
	cpu.store(op, val)
	cpu.P.checkNZ(val)
}

func INX(cpu *CPU, _ operand) {
	cpu.X++
	cpu.P.checkNZ(cpu.X)
}

func INY(cpu *CPU, _ operand) {
	cpu.Y++
	cpu.P.checkNZ(cpu.Y)
}

func DEX(cpu *CPU, _ operand) {
	cpu.X--
	cpu.P.checkNZ(cpu.X)
}

func DEY(cpu *CPU, _ operand) {
	cpu.Y--
	cpu.P.checkNZ(cpu.Y)
}

/* shifts */

func ASL(cpu *CPU, op operand) {
	val := cpu.load(op)
	cpu.P.set(Carry, val&0x80 != 0)
	val <<= 1
	cpu.store(op, val)
	cpu.P.checkNZ(val)
}

func LSR(cpu *CPU, op operand) {
	val := cpu.load(op)
	cpu.P.set(Carry, val&0x01 != 0)
	val >>= 1
	cpu.store(op, val)
	cpu.P.checkNZ(val)
}

func ROL(cpu *CPU, op operand) {
	val := cpu.load(op)
	carry := cpu.P.ibit(Carry)
	cpu.P.set(Carry, val&0x80 != 0)
	val = val<<1 | carry
	cpu.store(op, val)
	cpu.P.checkNZ(val)
}

func ROR(cpu *CPU, op operand) {
	val := cpu.load(op)
	carry := cpu.P.ibit(Carry)
	cpu.P.set(Carry, val&0x01 != 0)
	val = val>>1 | carry<<7
	cpu.store(op, val)
	cpu.P.checkNZ(val)
}

/* jumps and calls */

func JMP(cpu *CPU, op operand) { cpu.PC = op.addr }

func JSR(cpu *CPU, op operand) {
	cpu.push16(cpu.PC - 1)
	cpu.PC = op.addr
}

func RTS(cpu *CPU, _ operand) { cpu.PC = cpu.pull16() + 1 }

func RTI(cpu *CPU, _ operand) {
	cpu.P = pulled(cpu.pull8())
	cpu.PC = cpu.pull16()
}

// BRK occupies a single byte in the table but the return address skips
// the following padding byte.
func BRK(cpu *CPU, _ operand) {
	cpu.push16(cpu.PC + 1)
	cpu.push8(cpu.P.pushed(true))
	cpu.P.set(Interrupt, true)
	cpu.PC = cpu.Read16(hwdefs.IRQVector)
	cpu.State = ServicingInterrupt
}

/* branches */

// branch jumps to op.addr if cond is true. A taken branch costs one more
// cycle, and another one if the target is on another page than the next
// instruction.
func (c *CPU) branch(op operand, cond bool) {
	if !cond {
		return
	}
	c.extra++
	if pageCrossed(c.PC, op.addr) {
		c.extra++
	}
	c.PC = op.addr
}

func BCC(cpu *CPU, op operand) { cpu.branch(op, !cpu.P.has(Carry)) }
func BCS(cpu *CPU, op operand) { cpu.branch(op, cpu.P.has(Carry)) }
func BNE(cpu *CPU, op operand) { cpu.branch(op, !cpu.P.has(Zero)) }
func BEQ(cpu *CPU, op operand) { cpu.branch(op, cpu.P.has(Zero)) }
func BPL(cpu *CPU, op operand) { cpu.branch(op, !cpu.P.has(Negative)) }
func BMI(cpu *CPU, op operand) { cpu.branch(op, cpu.P.has(Negative)) }
func BVC(cpu *CPU, op operand) { cpu.branch(op, !cpu.P.has(Overflow)) }
func BVS(cpu *CPU, op operand) { cpu.branch(op, cpu.P.has(Overflow)) }

/* flags */

func CLC(cpu *CPU, _ operand) { cpu.P.set(Carry, false) }
func SEC(cpu *CPU, _ operand) { cpu.P.set(Carry, true) }
func CLI(cpu *CPU, _ operand) { cpu.P.set(Interrupt, false) }
func SEI(cpu *CPU, _ operand) { cpu.P.set(Interrupt, true) }
func CLD(cpu *CPU, _ operand) { cpu.P.set(Decimal, false) }
func SED(cpu *CPU, _ operand) { cpu.P.set(Decimal, true) }
func CLV(cpu *CPU, _ operand) { cpu.P.set(Overflow, false) }

func NOP(cpu *CPU, _ operand) {}
