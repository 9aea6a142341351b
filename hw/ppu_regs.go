package hw

// loopy is the layout of the PPU internal v and t registers:
//
//	yyy NN YYYYY XXXXX
//	||| || ||||| +++++-- coarse X scroll
//	||| || +++++-------- coarse Y scroll
//	||| ++-------------- nametable select
//	+++----------------- fine Y scroll
type loopy uint16

const (
	loopyCoarseX   = 0b000_00_00000_11111
	loopyCoarseY   = 0b000_00_11111_00000
	loopyNametable = 0b000_11_00000_00000
	loopyFineY     = 0b111_00_00000_00000
)

func (l loopy) coarsex() uint8   { return uint8(l & loopyCoarseX) }
func (l loopy) coarsey() uint8   { return uint8((l & loopyCoarseY) >> 5) }
func (l loopy) nametable() uint8 { return uint8((l & loopyNametable) >> 10) }
func (l loopy) finey() uint8     { return uint8((l & loopyFineY) >> 12) }

// low and high are the halves written through PPUADDR.
func (l loopy) low() uint8  { return uint8(l) }
func (l loopy) high() uint8 { return uint8(l>>8) & 0x7F }

// addr is the 14-bit VRAM address.
func (l loopy) addr() uint16 { return uint16(l) & 0x3FFF }
func (l loopy) val() uint16  { return uint16(l) & 0x7FFF }

func (l *loopy) setCoarsex(v uint8) {
	*l = *l&^loopyCoarseX | loopy(v)&0x1F
}

func (l *loopy) setCoarsey(v uint8) {
	*l = *l&^loopyCoarseY | (loopy(v)&0x1F)<<5
}

func (l *loopy) setNametable(v uint8) {
	*l = *l&^loopyNametable | (loopy(v)&0b11)<<10
}

func (l *loopy) setFiney(v uint8) {
	*l = *l&^loopyFineY | (loopy(v)&0b111)<<12
}

func (l *loopy) setLow(v uint8) {
	*l = *l&0xFF00 | loopy(v)
}

// setHigh sets bits 8-13 and clears bit 14.
func (l *loopy) setHigh(v uint8) {
	*l = *l&0x00FF | (loopy(v)&0x3F)<<8
}

// incCoarseX increments the coarse X scroll, switching horizontal
// nametable on wrap.
func (l *loopy) incCoarseX() {
	if l.coarsex() == 31 {
		l.setCoarsex(0)
		*l ^= 0x0400
		return
	}
	*l++
}

// incFineY increments the fine Y scroll, overflowing into coarse Y. Coarse
// Y wraps at 29 and switches vertical nametable, except when it was set
// out of bounds where it wraps at 31 without switching.
func (l *loopy) incFineY() {
	if fy := l.finey(); fy < 7 {
		l.setFiney(fy + 1)
		return
	}
	l.setFiney(0)
	switch y := l.coarsey(); y {
	case 29:
		l.setCoarsey(0)
		*l ^= 0x0800
	case 31:
		l.setCoarsey(0)
	default:
		l.setCoarsey(y + 1)
	}
}

// copyX copies the horizontal position bits from t.
func (l *loopy) copyX(t loopy) {
	const mask = loopyCoarseX | 0x0400
	*l = *l&^mask | t&mask
}

// copyY copies the vertical position bits from t.
func (l *loopy) copyY(t loopy) {
	const mask = loopyCoarseY | loopyFineY | 0x0800
	*l = *l&^mask | t&mask
}

// ntAddr is the address of the nametable byte v points to.
func (l loopy) ntAddr() uint16 {
	return 0x2000 | uint16(l)&0x0FFF
}

// atAddr is the address of the attribute byte covering v's tile.
func (l loopy) atAddr() uint16 {
	v := uint16(l)
	return 0x23C0 | v&0x0C00 | (v>>4)&0x38 | (v>>2)&0x07
}

// PPUCTRL bits ($2000).
const (
	ctrlNametable  = 0b11 // base nametable (0 = $2000; 1 = $2400; 2 = $2800; 3 = $2C00)
	ctrlIncr32     = 1 << 2
	ctrlSpriteAddr = 1 << 3 // 8x8 sprites pattern table at $1000
	ctrlBgAddr     = 1 << 4 // background pattern table at $1000
	ctrlSprite16   = 1 << 5 // 8x16 sprites
	ctrlSlave      = 1 << 6
	ctrlNMI        = 1 << 7 // NMI at the start of vblank
)

// PPUMASK bits ($2001).
const (
	maskGreyscale  = 1 << 0
	maskBgLeft     = 1 << 1 // background in the leftmost 8 pixels
	maskSpriteLeft = 1 << 2 // sprites in the leftmost 8 pixels
	maskBg         = 1 << 3
	maskSprites    = 1 << 4
	maskRendering  = maskBg | maskSprites
)

// PPUSTATUS bits ($2002). The other bits return the open bus.
const (
	statusOverflow = 1 << 5
	statusSprite0  = 1 << 6
	statusVblank   = 1 << 7
	statusMask     = statusOverflow | statusSprite0 | statusVblank
)
