package hw

import (
	"image"
	"image/color"
)

// NTSC 2C02 system palette, indexed by 6-bit color numbers.
var ntscPalette = func() [64]color.RGBA {
	rgb := [64]uint32{
		0x7C7C7C, 0x0000FC, 0x0000BC, 0x4428BC, 0x940084, 0xA80020, 0xA81000, 0x881400,
		0x503000, 0x007800, 0x006800, 0x005800, 0x004058, 0x000000, 0x000000, 0x000000,
		0xBCBCBC, 0x0078F8, 0x0058F8, 0x6844FC, 0xD800CC, 0xE40058, 0xF83800, 0xE45C10,
		0xAC7C00, 0x00B800, 0x00A800, 0x00A844, 0x008888, 0x000000, 0x000000, 0x000000,
		0xF8F8F8, 0x3CBCFC, 0x6888FC, 0x9878F8, 0xF878F8, 0xF85898, 0xF87858, 0xFCA044,
		0xF8B800, 0xB8F818, 0x58D854, 0x58F898, 0x00E8D8, 0x787878, 0x000000, 0x000000,
		0xFCFCFC, 0xA4E4FC, 0xB8B8F8, 0xD8B8F8, 0xF8B8F8, 0xF8A4C0, 0xF0D0B0, 0xFCE0A8,
		0xF8D878, 0xD8F878, 0xB8F8B8, 0xB8F8D8, 0x00FCFC, 0xF8D8F8, 0x000000, 0x000000,
	}
	var pal [64]color.RGBA
	for i, c := range rgb {
		pal[i] = color.RGBA{R: uint8(c >> 16), G: uint8(c >> 8), B: uint8(c), A: 0xFF}
	}
	return pal
}()

// Color returns the RGB color of a palette index as found in the frame
// buffer.
func Color(idx uint8) color.RGBA {
	return ntscPalette[idx&0x3F]
}

// FrameRGBA converts a frame of palette indices into dst, which must be at
// least Width x Height.
func FrameRGBA(dst *image.RGBA, frame []uint8) {
	for y := range Height {
		row := dst.Pix[y*dst.Stride:]
		for x := range Width {
			c := ntscPalette[frame[y*Width+x]&0x3F]
			row[x*4+0] = c.R
			row[x*4+1] = c.G
			row[x*4+2] = c.B
			row[x*4+3] = c.A
		}
	}
}

// RGBA converts the last rendered frame into dst.
func (p *PPU) RGBA(dst *image.RGBA) {
	FrameRGBA(dst, p.frame[:])
}

// Image returns a new image of the last rendered frame.
func (p *PPU) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, Width, Height))
	p.RGBA(img)
	return img
}
