// Package hwdefs holds definitions shared by the hardware packages.
package hwdefs

//go:generate go tool stringer -type=Interrupt

// Interrupt is a request for the CPU to leave normal execution, sampled at
// instruction boundaries. Higher values take precedence over lower ones.
type Interrupt uint8

const (
	NoInterrupt Interrupt = iota
	IRQ
	NMI
	Reset
)

// Interrupt vectors, little-endian words.
const (
	NMIVector   = uint16(0xFFFA)
	ResetVector = uint16(0xFFFC)
	IRQVector   = uint16(0xFFFE) // also used by BRK
)

// Vector returns the address of the interrupt vector.
func (i Interrupt) Vector() uint16 {
	switch i {
	case NMI:
		return NMIVector
	case Reset:
		return ResetVector
	}
	return IRQVector
}

const (
	SoftReset = true
	HardReset = false
)
