package hwio

import "testing"

func TestReg8(t *testing.T) {
	r := Reg8{Value: 0x11, RoMask: 0xF0}

	if got := r.Read8(0, false); got != 0x11 {
		t.Errorf("invalid read: %x", got)
	}
	if got := r.Read8(0x3FFF, false); got != 0x11 {
		t.Errorf("invalid read with offset: %x", got)
	}

	r.Write8(0, 0x77)
	if r.Value != 0x17 {
		t.Errorf("writemask not respected: %x", r.Value)
	}
	r.Write8(0x3FFF, 0x88)
	if r.Value != 0x18 {
		t.Errorf("writemask with offset not respected: %x", r.Value)
	}
}

func TestReg8Callbacks(t *testing.T) {
	var reads, writes int
	r := Reg8{
		Value:   0x40,
		ReadCb:  func(val uint8) uint8 { reads++; return val | 1 },
		WriteCb: func(old, val uint8) { writes++ },
	}

	if got := r.Read8(0, true); got != 0x40 {
		t.Errorf("peek = %02x, want 40", got)
	}
	if reads != 0 {
		t.Errorf("peek called the read callback")
	}
	if got := r.Read8(0, false); got != 0x41 {
		t.Errorf("read = %02x, want 41", got)
	}
	r.Write8(0, 0x10)
	if reads != 1 || writes != 1 {
		t.Errorf("reads=%d writes=%d, want 1 and 1", reads, writes)
	}
}

func TestInitRegsErrors(t *testing.T) {
	type noSize struct {
		RAM Mem `hwio:"offset=0"`
	}
	if err := InitRegs(&noSize{}); err == nil {
		t.Errorf("Mem without size: want error")
	}

	type missingCb struct {
		REG Reg8 `hwio:"offset=0,wcb"`
	}
	if err := InitRegs(&missingCb{}); err == nil {
		t.Errorf("missing callback method: want error")
	}

	type badVSize struct {
		RAM Mem `hwio:"offset=0,size=0x800,vsize=0x900"`
	}
	if err := InitRegs(&badVSize{}); err == nil {
		t.Errorf("vsize not multiple of size: want error")
	}

	if err := InitRegs(noSize{}); err == nil {
		t.Errorf("non pointer: want error")
	}
}
