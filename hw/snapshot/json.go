package snapshot

import (
	"fmt"

	"github.com/go-faster/jx"
)

func (s *CPU) Encode(e *jx.Encoder) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("pc", func(e *jx.Encoder) { e.UInt16(s.PC) })
		e.Field("sp", func(e *jx.Encoder) { e.UInt8(s.SP) })
		e.Field("p", func(e *jx.Encoder) { e.UInt8(s.P) })
		e.Field("a", func(e *jx.Encoder) { e.UInt8(s.A) })
		e.Field("x", func(e *jx.Encoder) { e.UInt8(s.X) })
		e.Field("y", func(e *jx.Encoder) { e.UInt8(s.Y) })
		e.Field("cycles", func(e *jx.Encoder) { e.Int64(s.Cycles) })
		e.Field("pending", func(e *jx.Encoder) { e.UInt8(s.Pending) })
		e.Field("state", func(e *jx.Encoder) { e.UInt8(s.State) })
	})
}

func (s *CPU) Decode(d *jx.Decoder) error {
	return d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "pc":
			s.PC, err = d.UInt16()
		case "sp":
			s.SP, err = d.UInt8()
		case "p":
			s.P, err = d.UInt8()
		case "a":
			s.A, err = d.UInt8()
		case "x":
			s.X, err = d.UInt8()
		case "y":
			s.Y, err = d.UInt8()
		case "cycles":
			s.Cycles, err = d.Int64()
		case "pending":
			s.Pending, err = d.UInt8()
		case "state":
			s.State, err = d.UInt8()
		default:
			err = d.Skip()
		}
		if err != nil {
			return fmt.Errorf("cpu.%s: %w", key, err)
		}
		return nil
	})
}

func (s *PPU) Encode(e *jx.Encoder) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("ctrl", func(e *jx.Encoder) { e.UInt8(s.PPUCTRL) })
		e.Field("mask", func(e *jx.Encoder) { e.UInt8(s.PPUMASK) })
		e.Field("status", func(e *jx.Encoder) { e.UInt8(s.PPUSTATUS) })
		e.Field("oamaddr", func(e *jx.Encoder) { e.UInt8(s.OAMAddr) })
		e.Field("openbus", func(e *jx.Encoder) { e.UInt8(s.OpenBus) })
		e.Field("databuf", func(e *jx.Encoder) { e.UInt8(s.DataBuf) })
		e.Field("v", func(e *jx.Encoder) { e.UInt16(s.VRAMAddr) })
		e.Field("t", func(e *jx.Encoder) { e.UInt16(s.VRAMTemp) })
		e.Field("x", func(e *jx.Encoder) { e.UInt8(s.FineX) })
		e.Field("w", func(e *jx.Encoder) { e.Bool(s.WriteLatch) })
		e.Field("dot", func(e *jx.Encoder) { e.Int(s.Dot) })
		e.Field("scanline", func(e *jx.Encoder) { e.Int(s.Scanline) })
		e.Field("frame", func(e *jx.Encoder) { e.UInt64(s.Frame) })
		e.Field("odd", func(e *jx.Encoder) { e.Bool(s.OddFrame) })
		e.Field("oam", func(e *jx.Encoder) { e.Base64(s.OAM) })
		e.Field("palette", func(e *jx.Encoder) { e.Base64(s.Palette) })
		e.Field("nametables", func(e *jx.Encoder) { e.Base64(s.Nametables) })
	})
}

func (s *PPU) Decode(d *jx.Decoder) error {
	return d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "ctrl":
			s.PPUCTRL, err = d.UInt8()
		case "mask":
			s.PPUMASK, err = d.UInt8()
		case "status":
			s.PPUSTATUS, err = d.UInt8()
		case "oamaddr":
			s.OAMAddr, err = d.UInt8()
		case "openbus":
			s.OpenBus, err = d.UInt8()
		case "databuf":
			s.DataBuf, err = d.UInt8()
		case "v":
			s.VRAMAddr, err = d.UInt16()
		case "t":
			s.VRAMTemp, err = d.UInt16()
		case "x":
			s.FineX, err = d.UInt8()
		case "w":
			s.WriteLatch, err = d.Bool()
		case "dot":
			s.Dot, err = d.Int()
		case "scanline":
			s.Scanline, err = d.Int()
		case "frame":
			s.Frame, err = d.UInt64()
		case "odd":
			s.OddFrame, err = d.Bool()
		case "oam":
			s.OAM, err = d.Base64()
		case "palette":
			s.Palette, err = d.Base64()
		case "nametables":
			s.Nametables, err = d.Base64()
		default:
			err = d.Skip()
		}
		if err != nil {
			return fmt.Errorf("ppu.%s: %w", key, err)
		}
		return nil
	})
}

func (s *NES) Encode(e *jx.Encoder) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("version", func(e *jx.Encoder) { e.Int(s.Version) })
		e.Field("cpu", s.CPU.Encode)
		e.Field("ppu", s.PPU.Encode)
		e.Field("ram", func(e *jx.Encoder) { e.Base64(s.RAM) })
		if s.PRGRAM != nil {
			e.Field("prgram", func(e *jx.Encoder) { e.Base64(s.PRGRAM) })
		}
		if s.CHRRAM != nil {
			e.Field("chrram", func(e *jx.Encoder) { e.Base64(s.CHRRAM) })
		}
	})
}

func (s *NES) Decode(d *jx.Decoder) error {
	return d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "version":
			s.Version, err = d.Int()
		case "cpu":
			err = s.CPU.Decode(d)
		case "ppu":
			err = s.PPU.Decode(d)
		case "ram":
			s.RAM, err = d.Base64()
		case "prgram":
			s.PRGRAM, err = d.Base64()
		case "chrram":
			s.CHRRAM, err = d.Base64()
		default:
			err = d.Skip()
		}
		return err
	})
}

// Marshal encodes the snapshot as indented JSON.
func Marshal(s *NES) []byte {
	var e jx.Encoder
	e.SetIdent(2)
	s.Encode(&e)
	return e.Bytes()
}

// Unmarshal decodes a JSON snapshot.
func Unmarshal(buf []byte) (*NES, error) {
	s := new(NES)
	if err := s.Decode(jx.DecodeBytes(buf)); err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	if s.Version != Version {
		return nil, fmt.Errorf("snapshot: unsupported version %d (want %d)", s.Version, Version)
	}
	return s, nil
}

// EncodeHalt encodes the state of a halted CPU.
func EncodeHalt(h Halt) []byte {
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("reason", func(e *jx.Encoder) { e.Str(h.Reason) })
		e.Field("opcode", func(e *jx.Encoder) { e.UInt8(h.Opcode) })
		e.Field("addr", func(e *jx.Encoder) { e.UInt16(h.Addr) })
		e.Field("cycles", func(e *jx.Encoder) { e.Int64(h.Cycles) })
		e.Field("cpu", h.CPU.Encode)
	})
	return e.Bytes()
}

// DecodeHalt decodes the output of EncodeHalt.
func DecodeHalt(buf []byte) (Halt, error) {
	var h Halt
	err := jx.DecodeBytes(buf).Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "reason":
			h.Reason, err = d.Str()
		case "opcode":
			h.Opcode, err = d.UInt8()
		case "addr":
			h.Addr, err = d.UInt16()
		case "cycles":
			h.Cycles, err = d.Int64()
		case "cpu":
			err = h.CPU.Decode(d)
		default:
			err = d.Skip()
		}
		return err
	})
	return h, err
}
