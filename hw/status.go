package hw

// P is the processor status register.
type P uint8

const (
	Carry     P = 1 << iota // C
	Zero                    // Z
	Interrupt               // I, interrupt disable
	Decimal                 // D, stored but ignored by the 2A03
	Break                   // B, only exists in pushed copies
	Reserved                // always 1
	Overflow                // V
	Negative                // N
)

func (p P) String() string {
	const bits = "nvubdizcNVUBDIZC"

	s := make([]byte, 8)
	for i := range 8 {
		ibit := (uint8(p) >> (7 - i)) & 1
		s[i] = bits[i+int(8*ibit)]
	}
	return string(s)
}

func (p P) has(flag P) bool {
	return p&flag != 0
}

func (p *P) set(flag P, on bool) {
	if on {
		*p |= flag
	} else {
		*p &^= flag
	}
}

func (p P) ibit(flag P) uint8 {
	if p&flag != 0 {
		return 1
	}
	return 0
}

func (p P) intDisable() bool { return p.has(Interrupt) }

// checkNZ sets Z if v is 0 and N to the 7th bit of v.
func (p *P) checkNZ(v uint8) {
	p.set(Zero, v == 0)
	p.set(Negative, v&0x80 != 0)
}

// checkCV sets C and V after the 8-bit addition x + y (+ carry) giving sum.
func (p *P) checkCV(x, y uint8, sum uint16) {
	p.set(Carry, sum > 0xFF)

	// signed overflow, can only happen if the sign of the sum differs from
	// that of both operands.
	p.set(Overflow, (uint16(x)^sum)&(uint16(y)^sum)&0x80 != 0)
}

// pushed returns the copy of P pushed on the stack, with B set for BRK and
// PHP and cleared for hardware interrupts.
func (p P) pushed(brk bool) uint8 {
	v := p | Reserved
	v.set(Break, brk)
	return uint8(v)
}

// pulled returns the value of P after pulling v from the stack (PLP, RTI).
func pulled(v uint8) P {
	return (P(v) &^ Break) | Reserved
}
