package hw

// bgPipeline holds the background tile being fetched and the shift
// registers feeding the pixel output.
type bgPipeline struct {
	nt, at, lo, hi uint8 // latches of the tile being fetched

	patLo, patHi   uint16 // pattern shifters
	attrLo, attrHi uint16 // palette attribute shifters
}

// reload loads the last fetched tile in the low byte of the shifters.
func (bg *bgPipeline) reload() {
	bg.patLo = bg.patLo&0xFF00 | uint16(bg.lo)
	bg.patHi = bg.patHi&0xFF00 | uint16(bg.hi)

	// Attribute bits are the same for the whole tile.
	bg.attrLo &= 0xFF00
	bg.attrHi &= 0xFF00
	if bg.at&1 != 0 {
		bg.attrLo |= 0xFF
	}
	if bg.at&2 != 0 {
		bg.attrHi |= 0xFF
	}
}

func (bg *bgPipeline) shift() {
	bg.patLo <<= 1
	bg.patHi <<= 1
	bg.attrLo <<= 1
	bg.attrHi <<= 1
}

// pixel returns the 2-bit color and palette number at fine x.
func (bg *bgPipeline) pixel(finex uint8) (pix, pal uint8) {
	shift := 15 - finex
	pix = uint8(bg.patLo>>shift)&1 | (uint8(bg.patHi>>shift)&1)<<1
	pal = uint8(bg.attrLo>>shift)&1 | (uint8(bg.attrHi>>shift)&1)<<1
	return pix, pal
}

// sprite is a sprite selected for the current scanline.
type sprite struct {
	lo, hi uint8 // pattern row, already flipped horizontally
	x      uint8
	attr   uint8
	zero   bool // sprite 0
}

// OAM attribute bits.
const (
	sprPalette = 0b11
	sprBehind  = 1 << 5
	sprFlipH   = 1 << 6
	sprFlipV   = 1 << 7
)

func (p *PPU) rendering() bool {
	return p.PPUMASK.Value&maskRendering != 0
}

// Tick advances the PPU by one dot.
func (p *PPU) Tick() {
	switch {
	case p.Scanline == -1:
		p.preRenderLine()
	case p.Scanline < Height:
		p.visibleLine()
	case p.Scanline == 241 && p.Dot == 1:
		p.PPUSTATUS.Value |= statusVblank
		if p.PPUCTRL.Value&ctrlNMI != 0 {
			p.raiseNMI()
		}
	}

	p.Dot++
	// On odd frames, with rendering enabled, the last dot of the pre-render
	// line is skipped.
	if p.Scanline == -1 && p.Dot == NumDots-1 && p.oddFrame && p.rendering() {
		p.Dot = NumDots
	}
	if p.Dot == NumDots {
		p.Dot = 0
		p.Scanline++
		if p.Scanline == NumScanlines-1 {
			p.Scanline = -1
			p.Frame++
			p.oddFrame = !p.oddFrame
		}
	}
}

func (p *PPU) preRenderLine() {
	if p.Dot == 1 {
		p.PPUSTATUS.Value &^= statusMask
	}
	if !p.rendering() {
		return
	}

	p.fetchBackground()
	switch {
	case p.Dot == 257:
		// No sprites on scanline 0.
		p.nspr = 0
	case p.Dot >= 280 && p.Dot <= 304:
		p.vramAddr.copyY(p.vramTmp)
	}
}

func (p *PPU) visibleLine() {
	if p.rendering() {
		p.fetchBackground()
		if p.Dot == 257 {
			p.evalSprites()
		}
	}
	if p.Dot >= 1 && p.Dot <= Width {
		p.renderPixel(p.Dot-1, p.Scanline)
	}
}

// fetchBackground runs the background pipeline for the current dot. Tiles
// are fetched in 8-dot groups: nametable byte, attribute byte, pattern low
// and high bytes, then v moves to the next tile.
func (p *PPU) fetchBackground() {
	dot := p.Dot
	if dot >= 2 && dot <= 257 || dot >= 322 && dot <= 337 {
		p.bg.shift()
		if dot%8 == 1 {
			p.bg.reload()
		}
	}

	if dot >= 1 && dot <= 256 || dot >= 321 && dot <= 336 {
		switch dot % 8 {
		case 1:
			p.bg.nt = p.Bus.Read8(p.vramAddr.ntAddr(), false)
		case 3:
			at := p.Bus.Read8(p.vramAddr.atAddr(), false)
			// Each attribute byte covers 4x4 tiles, 2 bits per 2x2 quadrant.
			shift := (p.vramAddr.coarsey()&2)<<1 | p.vramAddr.coarsex()&2
			p.bg.at = (at >> shift) & 0b11
		case 5:
			p.bg.lo = p.Bus.Read8(p.bgPatternAddr(), false)
		case 7:
			p.bg.hi = p.Bus.Read8(p.bgPatternAddr()+8, false)
		case 0:
			p.vramAddr.incCoarseX()
		}
	}

	switch dot {
	case 256:
		p.vramAddr.incFineY()
	case 257:
		p.vramAddr.copyX(p.vramTmp)
	case 337, 339:
		// Unused nametable fetches.
		p.bg.nt = p.Bus.Read8(p.vramAddr.ntAddr(), false)
	}
}

func (p *PPU) bgPatternAddr() uint16 {
	var base uint16
	if p.PPUCTRL.Value&ctrlBgAddr != 0 {
		base = 0x1000
	}
	return base + uint16(p.bg.nt)*16 + uint16(p.vramAddr.finey())
}

func (p *PPU) spriteHeight() int {
	if p.PPUCTRL.Value&ctrlSprite16 != 0 {
		return 16
	}
	return 8
}

// evalSprites selects the first 8 sprites in range of the next scanline and
// fetches their pattern row. The overflow flag is set when more sprites are
// in range.
func (p *PPU) evalSprites() {
	h := p.spriteHeight()
	p.nspr = 0
	for i := 0; i < 64; i++ {
		y := p.OAM[i*4]
		// Sprites are drawn one line below their Y coordinate.
		row := p.Scanline - int(y)
		if row < 0 || row >= h {
			continue
		}
		if p.nspr == len(p.sprites) {
			p.PPUSTATUS.Value |= statusOverflow
			break
		}

		tile := p.OAM[i*4+1]
		attr := p.OAM[i*4+2]
		lo, hi := p.fetchSpriteRow(tile, attr, row)
		p.sprites[p.nspr] = sprite{
			lo:   lo,
			hi:   hi,
			x:    p.OAM[i*4+3],
			attr: attr,
			zero: i == 0,
		}
		p.nspr++
	}
}

func (p *PPU) fetchSpriteRow(tile, attr uint8, row int) (lo, hi uint8) {
	var addr uint16
	if p.spriteHeight() == 16 {
		if attr&sprFlipV != 0 {
			row = 15 - row
		}
		base := uint16(tile&1) * 0x1000
		tile &^= 1
		if row >= 8 {
			tile++
			row -= 8
		}
		addr = base + uint16(tile)*16 + uint16(row)
	} else {
		if attr&sprFlipV != 0 {
			row = 7 - row
		}
		var base uint16
		if p.PPUCTRL.Value&ctrlSpriteAddr != 0 {
			base = 0x1000
		}
		addr = base + uint16(tile)*16 + uint16(row)
	}

	lo = p.Bus.Read8(addr, false)
	hi = p.Bus.Read8(addr+8, false)
	if attr&sprFlipH != 0 {
		lo, hi = reverseBits(lo), reverseBits(hi)
	}
	return lo, hi
}

func reverseBits(b uint8) uint8 {
	b = b&0xF0>>4 | b&0x0F<<4
	b = b&0xCC>>2 | b&0x33<<2
	b = b&0xAA>>1 | b&0x55<<1
	return b
}

// renderPixel computes the color of pixel (x, y) from the background and
// sprite pipelines.
func (p *PPU) renderPixel(x, y int) {
	mask := p.PPUMASK.Value

	var bgPix, bgPal uint8
	if mask&maskBg != 0 && (x >= 8 || mask&maskBgLeft != 0) {
		bgPix, bgPal = p.bg.pixel(p.finex)
	}

	var (
		sprPix, sprPal uint8
		behind, zero   bool
	)
	if mask&maskSprites != 0 && (x >= 8 || mask&maskSpriteLeft != 0) {
		for i := range p.nspr {
			s := &p.sprites[i]
			off := x - int(s.x)
			if off < 0 || off > 7 {
				continue
			}
			shift := 7 - off
			pix := (s.lo>>shift)&1 | ((s.hi>>shift)&1)<<1
			if pix == 0 {
				continue
			}
			// Sprites are ordered by priority, the first opaque pixel wins.
			sprPix = pix
			sprPal = 4 + s.attr&sprPalette
			behind = s.attr&sprBehind != 0
			zero = s.zero
			break
		}
	}

	var addr uint8
	switch {
	case bgPix == 0 && sprPix == 0:
		addr = 0
	case bgPix == 0:
		addr = sprPal<<2 | sprPix
	case sprPix == 0:
		addr = bgPal<<2 | bgPix
	default:
		if zero && x != 255 {
			p.PPUSTATUS.Value |= statusSprite0
		}
		if behind {
			addr = bgPal<<2 | bgPix
		} else {
			addr = sprPal<<2 | sprPix
		}
	}

	col := p.palRAM[paletteIndex(uint16(addr))]
	if mask&maskGreyscale != 0 {
		col &= 0x30
	}
	p.frame[y*Width+x] = col
}
