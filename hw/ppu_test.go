package hw

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"nescore/hw/hwdefs"
	"nescore/ines"
)

func TestPPUScroll(t *testing.T) {
	cpu, ppu := newTestNES(t, newPRG())

	ppu.vramTmp = 0xffff

	// Write to PPUCTRL
	cpu.Write8(0x2000, 0)
	if got := ppu.vramTmp.nametable(); got != 0b00 {
		t.Errorf("t.nametable = 0b%08b, want 0b00", got)
	}

	// Read from PPUSTATUS
	_ = cpu.Read8(0x2002)
	if ppu.writeLatch {
		t.Errorf("writeLatch = %t, want false", ppu.writeLatch)
	}

	// First write to PPUSCROLL
	cpu.Write8(0x2005, 0b01111_101)
	if got := ppu.vramTmp.coarsex(); got != 0b01111 {
		t.Errorf("t.coarsex = 0b%08b, want 0b01111", got)
	}
	if ppu.finex != 0b101 {
		t.Errorf("finex = 0b%08b, want 0b101", ppu.finex)
	}
	if !ppu.writeLatch {
		t.Errorf("writeLatch = %t, want true", ppu.writeLatch)
	}

	// Second write to PPUSCROLL
	cpu.Write8(0x2005, 0b01_011_110)
	if got := ppu.vramTmp.coarsey(); got != 0b01011 {
		t.Errorf("t.coarsey = 0b%08b, want 0b01011", got)
	}
	if got := ppu.vramTmp.finey(); got != 0b110 {
		t.Errorf("t.finey = 0b%08b, want 0b110", got)
	}
	if ppu.writeLatch {
		t.Errorf("writeLatch = %t, want false", ppu.writeLatch)
	}

	// First write to PPUADDR
	cpu.Write8(0x2006, 0b00_111101)
	if got := ppu.vramTmp.high(); got != 0b111101 {
		t.Errorf("t.high = %08b, want 0b111101", got)
	}
	// Bit 14 (15th bit) of t gets set to zero
	if ppu.vramTmp.val() != 0b0111101_01101111 {
		t.Errorf("t.val = %015b, want 0b0111101_01101111", ppu.vramTmp.val())
	}

	// Second write to PPUADDR
	cpu.Write8(0x2006, 0b11110000)
	if got := ppu.vramTmp.low(); got != 0b11110000 {
		t.Errorf("t.low = %08b, want 0b11110000", got)
	}
	if ppu.vramTmp.val() != 0b0111101_11110000 {
		t.Errorf("t.val = %015b, want 0b0111101_11110000", ppu.vramTmp.val())
	}
	// After t is updated, contents of t copied into v
	if ppu.vramTmp.val() != ppu.vramAddr.val() {
		t.Errorf("v != t")
	}
}

func TestPPUStatusResetsLatch(t *testing.T) {
	_, ppu := newTestNES(t, newPRG())

	ppu.WriteRegister(0x2005, 0x06)
	ppu.ReadRegister(0x2002)
	ppu.WriteRegister(0x2005, 0x06)

	// Both writes were first writes: fine X is set, fine Y untouched.
	if ppu.finex != 0b110 {
		t.Errorf("finex = %03b, want 110", ppu.finex)
	}
	if got := ppu.vramTmp.finey(); got != 0 {
		t.Errorf("t.finey = %03b, want 000", got)
	}
	if !ppu.writeLatch {
		t.Errorf("writeLatch = false, want true")
	}
}

func TestPPUFrameTiming(t *testing.T) {
	_, ppu := newTestNES(t, newPRG())

	for range NumDots * NumScanlines {
		ppu.Tick()
	}
	if ppu.Scanline != -1 || ppu.Dot != 0 {
		t.Errorf("scanline,dot = %d,%d, want -1,0", ppu.Scanline, ppu.Dot)
	}
	if ppu.Frame != 1 {
		t.Errorf("frame = %d, want 1", ppu.Frame)
	}
}

func TestPPUOddFrameSkip(t *testing.T) {
	_, ppu := newTestNES(t, newPRG())
	ppu.WriteRegister(0x2001, maskBg)

	ticks := 0
	for ppu.Frame != 2 {
		ppu.Tick()
		ticks++
	}
	if want := 2*NumDots*NumScanlines - 1; ticks != want {
		t.Errorf("2 frames took %d dots, want %d", ticks, want)
	}
}

// tickUntil ticks the PPU until it reaches the given position.
func tickUntil(ppu *PPU, scanline, dot int) {
	for ppu.Scanline != scanline || ppu.Dot != dot {
		ppu.Tick()
	}
}

func TestPPUVblank(t *testing.T) {
	cpu, ppu := newTestNES(t, newPRG())
	ppu.WriteRegister(0x2000, ctrlNMI)

	tickUntil(ppu, 241, 1)
	if ppu.VBlank() {
		t.Fatalf("vblank set before 241,1")
	}
	if cpu.PendingInterrupt() != hwdefs.NoInterrupt {
		t.Fatalf("NMI requested before 241,1")
	}

	ppu.Tick()
	if !ppu.VBlank() {
		t.Fatalf("vblank not set at 241,1")
	}
	if got := cpu.PendingInterrupt(); got != hwdefs.NMI {
		t.Fatalf("pending interrupt = %s, want NMI", got)
	}

	// Reading PPUSTATUS clears vblank.
	if got := ppu.ReadRegister(0x2002); got&statusVblank == 0 {
		t.Errorf("PPUSTATUS = %02X, want vblank bit", got)
	}
	if got := ppu.ReadRegister(0x2002); got&statusVblank != 0 {
		t.Errorf("PPUSTATUS = %02X after read, want vblank cleared", got)
	}

	// Flags are cleared on the pre-render line.
	ppu.PPUSTATUS.Value |= statusMask
	tickUntil(ppu, -1, 1)
	ppu.Tick()
	if got := ppu.PPUSTATUS.Value & statusMask; got != 0 {
		t.Errorf("PPUSTATUS flags = %02X on pre-render line, want 0", got)
	}
}

func TestPPUNMIEnableDuringVblank(t *testing.T) {
	cpu, ppu := newTestNES(t, newPRG())

	tickUntil(ppu, 241, 2)
	if cpu.PendingInterrupt() != hwdefs.NoInterrupt {
		t.Fatalf("NMI requested while disabled")
	}

	ppu.WriteRegister(0x2000, ctrlNMI)
	if got := cpu.PendingInterrupt(); got != hwdefs.NMI {
		t.Fatalf("pending interrupt = %s, want NMI", got)
	}
}

func TestPPUData(t *testing.T) {
	_, ppu := newTestNES(t, newPRG())

	setAddr := func(addr uint16) {
		ppu.WriteRegister(0x2006, uint8(addr>>8))
		ppu.WriteRegister(0x2006, uint8(addr))
	}

	setAddr(0x2400)
	for _, v := range []uint8{0x11, 0x22, 0x33} {
		ppu.WriteRegister(0x2007, v)
	}

	// Reads are delayed by one.
	setAddr(0x2400)
	if got := ppu.ReadRegister(0x2007); got != 0 {
		t.Errorf("first read = %02X, want stale buffer 00", got)
	}
	for _, want := range []uint8{0x11, 0x22, 0x33} {
		if got := ppu.ReadRegister(0x2007); got != want {
			t.Errorf("read = %02X, want %02X", got, want)
		}
	}

	// Increment by 32.
	ppu.WriteRegister(0x2000, ctrlIncr32)
	setAddr(0x2000)
	ppu.WriteRegister(0x2007, 0xAA)
	ppu.WriteRegister(0x2007, 0xBB)
	if ppu.Nametables[0x000] != 0xAA || ppu.Nametables[0x020] != 0xBB {
		t.Errorf("nametable[$00,$20] = %02X,%02X, want AA,BB", ppu.Nametables[0x000], ppu.Nametables[0x020])
	}

	// Palette reads are immediate.
	ppu.WriteRegister(0x2000, 0)
	setAddr(0x3F01)
	ppu.WriteRegister(0x2007, 0x2C)
	setAddr(0x3F01)
	if got := ppu.ReadRegister(0x2007); got != 0x2C {
		t.Errorf("palette read = %02X, want 2C", got)
	}
}

func TestPPUPaletteMirroring(t *testing.T) {
	_, ppu := newTestNES(t, newPRG())

	ppu.Bus.Write8(0x3F10, 0x0F)
	ppu.Bus.Write8(0x3F05, 0xFF)

	tests := []struct {
		addr uint16
		want uint8
	}{
		{0x3F00, 0x0F},
		{0x3F10, 0x0F},
		{0x3F30, 0x0F},
		{0x3FF0, 0x0F},
		{0x3F05, 0x3F}, // 6-bit entries
		{0x3F25, 0x3F},
		{0x3F15, 0x00}, // not a mirror
	}
	for _, tt := range tests {
		if got := ppu.Bus.Peek8(tt.addr); got != tt.want {
			t.Errorf("$%04X = %02X, want %02X", tt.addr, got, tt.want)
		}
	}
}

func TestPPUNametableMirroring(t *testing.T) {
	tests := []struct {
		mode    ines.Mirroring
		mirrors [4]int // physical nametable index of $2000, $2400, $2800, $2C00
	}{
		{ines.Horizontal, [4]int{0, 0, 1, 1}},
		{ines.Vertical, [4]int{0, 1, 0, 1}},
		{ines.FourScreen, [4]int{0, 1, 2, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			_, ppu := newTestNES(t, newPRG())
			ppu.SetNametableMirroring(tt.mode)

			for i, phys := range tt.mirrors {
				addr := 0x2000 + uint16(i)*0x400 + 0x12
				val := uint8(0x40 + i)
				ppu.Bus.Write8(addr, val)
				if got := ppu.Nametables[phys*0x400+0x12]; got != val {
					t.Errorf("write $%04X: nametable %d = %02X, want %02X", addr, phys, got, val)
				}
				// $3000-$3EFF mirrors $2000-$2EFF.
				if got := ppu.Bus.Peek8(addr + 0x1000); got != val {
					t.Errorf("$%04X = %02X, want %02X", addr+0x1000, got, val)
				}
			}
		})
	}
}

func TestPPUOAMData(t *testing.T) {
	_, ppu := newTestNES(t, newPRG())

	ppu.WriteRegister(0x2003, 0xFE)
	ppu.WriteRegister(0x2004, 0x11)
	ppu.WriteRegister(0x2004, 0x22)
	ppu.WriteRegister(0x2004, 0x33) // wraps

	if ppu.OAM[0xFE] != 0x11 || ppu.OAM[0xFF] != 0x22 || ppu.OAM[0x00] != 0x33 {
		t.Errorf("OAM[FE,FF,00] = %02X,%02X,%02X, want 11,22,33", ppu.OAM[0xFE], ppu.OAM[0xFF], ppu.OAM[0x00])
	}

	// Reads don't increment.
	ppu.WriteRegister(0x2003, 0xFF)
	for range 2 {
		if got := ppu.ReadRegister(0x2004); got != 0x22 {
			t.Errorf("OAMDATA = %02X, want 22", got)
		}
	}
}

func TestPPUOpenBus(t *testing.T) {
	_, ppu := newTestNES(t, newPRG())

	ppu.WriteRegister(0x2001, 0x5F)
	if got := ppu.ReadRegister(0x2000); got != 0x5F {
		t.Errorf("PPUCTRL read = %02X, want open bus 5F", got)
	}
	ppu.PPUSTATUS.Value = statusVblank
	if got := ppu.ReadRegister(0x2002); got != 0x80|0x1F {
		t.Errorf("PPUSTATUS read = %02X, want 9F", got)
	}
}

func TestPPUDetachedOAMDMA(t *testing.T) {
	ppu := NewPPU()
	ppu.InitBus()
	ppu.Reset()
	ppu.OAM[0] = 0xAA

	ppu.WriteRegister(0x4014, 0x02)
	if ppu.OAM[0] != 0xAA {
		t.Errorf("OAM[0] = %02X, want AA", ppu.OAM[0])
	}
}

// Pattern table tiles used by the rendering tests.
const (
	tileBlank  = 0
	tileSolid  = 1 // all pixels of color 1
	tileCorner = 2 // only the top-left pixel, color 3
)

func setupTiles(ppu *PPU) {
	chr := ppu.PatternTables.Data
	for i := range 8 {
		chr[tileSolid*16+i] = 0xFF
	}
	chr[tileCorner*16] = 0x80
	chr[tileCorner*16+8] = 0x80
}

func runFrame(ppu *PPU) {
	f := ppu.Frame
	for ppu.Frame == f {
		ppu.Tick()
	}
}

func TestPPURenderBackground(t *testing.T) {
	_, ppu := newTestNES(t, newPRG())
	setupTiles(ppu)

	for i := range 0x3C0 {
		ppu.Nametables[i] = tileSolid
	}
	ppu.Bus.Write8(0x3F00, 0x0F)
	ppu.Bus.Write8(0x3F01, 0x21)

	ppu.WriteRegister(0x2001, maskBg|maskBgLeft)
	runFrame(ppu)

	for i, c := range ppu.FrameBuffer() {
		if c != 0x21 {
			t.Fatalf("pixel (%d,%d) = %02X, want 21", i%Width, i/Width, c)
		}
	}

	// Left column clipped.
	ppu.WriteRegister(0x2001, maskBg)
	runFrame(ppu)
	fb := ppu.FrameBuffer()
	if fb[7] != 0x0F || fb[8] != 0x21 {
		t.Errorf("pixels 7,8 = %02X,%02X, want 0F,21", fb[7], fb[8])
	}
}

func TestPPURenderingDisabled(t *testing.T) {
	_, ppu := newTestNES(t, newPRG())
	ppu.Bus.Write8(0x3F00, 0x12)

	runFrame(ppu)
	for i, c := range ppu.FrameBuffer() {
		if c != 0x12 {
			t.Fatalf("pixel (%d,%d) = %02X, want backdrop 12", i%Width, i/Width, c)
		}
	}
}

func TestPPUSprites(t *testing.T) {
	_, ppu := newTestNES(t, newPRG())
	setupTiles(ppu)

	ppu.Bus.Write8(0x3F00, 0x0F)
	ppu.Bus.Write8(0x3F13, 0x16) // sprite palette 0, color 3
	ppu.Bus.Write8(0x3F17, 0x2A) // sprite palette 1, color 3

	// Sprite 0: Y=10, corner tile at X=20.
	copy(ppu.OAM[0:], []uint8{10, tileCorner, 0, 20})
	// Sprite 1: same tile, flipped horizontally and vertically, palette 1.
	copy(ppu.OAM[4:], []uint8{30, tileCorner, sprFlipH | sprFlipV | 1, 40})
	for i := 2; i < 64; i++ {
		ppu.OAM[i*4] = 0xFF
	}

	ppu.WriteRegister(0x2001, maskSprites|maskSpriteLeft)
	runFrame(ppu)

	px := func(x, y int) uint8 { return ppu.FrameBuffer()[y*Width+x] }
	if got := px(20, 11); got != 0x16 {
		t.Errorf("sprite 0 pixel = %02X, want 16", got)
	}
	if got := px(21, 11); got != 0x0F {
		t.Errorf("pixel next to sprite 0 = %02X, want backdrop", got)
	}
	if got := px(47, 38); got != 0x2A {
		t.Errorf("flipped sprite pixel = %02X, want 2A", got)
	}
	if got := px(40, 31); got != 0x0F {
		t.Errorf("flipped sprite top-left pixel = %02X, want backdrop", got)
	}

	// No background, no sprite 0 hit.
	if ppu.PPUSTATUS.Value&statusSprite0 != 0 {
		t.Errorf("sprite 0 hit without background")
	}
}

func TestPPUSprite0Hit(t *testing.T) {
	_, ppu := newTestNES(t, newPRG())
	setupTiles(ppu)

	for i := range 0x3C0 {
		ppu.Nametables[i] = tileSolid
	}
	copy(ppu.OAM[0:], []uint8{100, tileCorner, 0, 50})

	ppu.WriteRegister(0x2001, maskRendering|maskBgLeft|maskSpriteLeft)

	tickUntil(ppu, 101, 50)
	if ppu.PPUSTATUS.Value&statusSprite0 != 0 {
		t.Fatalf("sprite 0 hit before the sprite is drawn")
	}
	tickUntil(ppu, 101, 60)
	if ppu.PPUSTATUS.Value&statusSprite0 == 0 {
		t.Fatalf("sprite 0 hit not set")
	}

	// Behind the background, sprite 0 still hits.
	ppu.OAM[2] = sprBehind
	runFrame(ppu)
	tickUntil(ppu, 0, 0)
	if ppu.PPUSTATUS.Value&statusSprite0 != 0 {
		t.Fatalf("sprite 0 hit not cleared on the pre-render line")
	}
	runFrame(ppu)
	if ppu.PPUSTATUS.Value&statusSprite0 == 0 {
		t.Errorf("sprite 0 hit not set for a background priority sprite")
	}
}

func TestPPUSpriteOverflow(t *testing.T) {
	_, ppu := newTestNES(t, newPRG())
	for i := range 64 {
		ppu.OAM[i*4] = 0xFF
	}
	for i := range 9 {
		copy(ppu.OAM[i*4:], []uint8{50, tileBlank, 0, uint8(i * 10)})
	}

	ppu.WriteRegister(0x2001, maskSprites)
	tickUntil(ppu, 50, 256)
	if ppu.PPUSTATUS.Value&statusOverflow != 0 {
		t.Fatalf("overflow set too early")
	}
	ppu.Tick()
	ppu.Tick()
	if ppu.PPUSTATUS.Value&statusOverflow == 0 {
		t.Fatalf("overflow not set with 9 sprites on a line")
	}
}

func TestPPUSnapshot(t *testing.T) {
	_, ppu := newTestNES(t, newPRG())
	setupTiles(ppu)

	ppu.Bus.Write8(0x3F01, 0x21)
	ppu.Nametables[0x123] = 0x45
	ppu.OAM[7] = 0x89
	ppu.WriteRegister(0x2000, ctrlIncr32|ctrlNMI)
	ppu.WriteRegister(0x2001, maskRendering)
	ppu.WriteRegister(0x2005, 0x7D)
	tickUntil(ppu, 12, 34)

	snap := ppu.Snapshot()

	_, ppu2 := newTestNES(t, newPRG())
	ppu2.Restore(snap)
	if diff := cmp.Diff(snap, ppu2.Snapshot()); diff != "" {
		t.Errorf("restored snapshot mismatch (-want +got):\n%s", diff)
	}
	if ppu2.Scanline != 12 || ppu2.Dot != 34 || !ppu2.writeLatch {
		t.Errorf("restored position %d,%d latch %t", ppu2.Scanline, ppu2.Dot, ppu2.writeLatch)
	}
}
