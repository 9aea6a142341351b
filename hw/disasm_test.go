package hw

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDisasm(t *testing.T) {
	prg := newPRG().At(resetAddr,
		0xA9, 0x32, // LDA #$32
		0x8D, 0x02, 0x20, // STA $2002
		0xBD, 0x00, 0x03, // LDA $0300,X
		0xB1, 0x10, // LDA ($10),Y
		0xA1, 0x10, // LDA ($10,X)
		0x96, 0x20, // STX $20,Y
		0x6C, 0xFF, 0x30, // JMP ($30FF)
		0x0A,       // ASL A
		0xD0, 0xFE, // BNE $8012
		0x60, // RTS
		0x02, // illegal
	)
	cpu := newTestCPU(t, prg)

	want := []string{
		"8000  A9 32     LDA #$32",
		"8002  8D 02 20  STA PpuStatus_2002",
		"8005  BD 00 03  LDA $0300,X",
		"8008  B1 10     LDA ($10),Y",
		"800A  A1 10     LDA ($10,X)",
		"800C  96 20     STX $20,Y",
		"800E  6C FF 30  JMP ($30FF)",
		"8011  0A        ASL A",
		"8012  D0 FE     BNE $8012",
		"8014  60        RTS",
		"8015  02        .db $02",
	}

	var got []string
	pc := uint16(resetAddr)
	for range want {
		op := cpu.Disasm(pc)
		got = append(got, op.String())
		pc += uint16(op.Size())
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("disasm mismatch (-want +got):\n%s", diff)
	}
}

func TestDisasmProgram(t *testing.T) {
	prg := newPRG().
		At(resetAddr,
			0x20, 0x00, 0x81, // JSR $8100
			0xF0, 0x03, // BEQ $8008
			0x4C, 0x00, 0x80, // JMP $8000
			0x02, // illegal, ends the flow
		).
		At(0x8100, 0x60). // RTS
		At(nmiAddr, 0x40). // RTI
		At(irqAddr, 0x40)  // RTI
	cpu := newTestCPU(t, prg)

	var got []uint16
	for _, op := range DisasmProgram(cpu.Bus) {
		got = append(got, op.PC)
	}
	want := []uint16{0x8000, 0x8003, 0x8005, 0x8008, 0x8100, nmiAddr, irqAddr}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("disassembled addresses mismatch (-want +got):\n%s", diff)
	}
}
