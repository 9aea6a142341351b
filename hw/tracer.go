package hw

import (
	"fmt"
	"io"
)

// cpuState stores the CPU state for the execution trace.
type cpuState struct {
	A, X, Y uint8
	P       P
	SP      uint8
	PC      uint16

	Clock    int64
	PPUCycle int
	Scanline int
}

type disasmer interface {
	Disasm(pc uint16) DisasmOp
}

// tracer writes one line per executed instruction, in a format close to
// the nestest golden log:
//
//	C000  4C F5 C5  JMP $C5F5                        A:00 X:00 Y:00 P:24 S:FD PPU:0  ,21  7
type tracer struct {
	d   disasmer
	w   io.Writer
	buf []byte
}

func hexEncode(dst []byte, v byte) {
	const hextable = "0123456789ABCDEF"
	dst[0] = hextable[v>>4]
	dst[1] = hextable[v&0x0f]
}

// appendReg appends "N:HH ".
func appendReg(buf []byte, name byte, v uint8) []byte {
	buf = append(buf, name, ':', 0, 0, ' ')
	hexEncode(buf[len(buf)-3:], v)
	return buf
}

// write the execution trace for current instruction.
func (t *tracer) write(state cpuState) {
	const regsCol = 49

	buf := append(t.buf[:0], t.d.Disasm(state.PC).Bytes()...)
	for len(buf) < regsCol {
		buf = append(buf, ' ')
	}

	buf = appendReg(buf, 'A', state.A)
	buf = appendReg(buf, 'X', state.X)
	buf = appendReg(buf, 'Y', state.Y)
	buf = appendReg(buf, 'P', uint8(state.P))
	buf = appendReg(buf, 'S', state.SP)

	buf = fmt.Appendf(buf, "PPU:%-3d,%-3d %d\n", state.Scanline, state.PPUCycle, state.Clock)
	t.w.Write(buf)
	t.buf = buf
}
