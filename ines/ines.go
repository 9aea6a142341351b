// Package ines reads NES programs distributed in the iNES file format.
package ines

import (
	"errors"
	"fmt"
	"io"
	"os"
)

var (
	// ErrInvalidHeader is returned when the image doesn't start with a valid
	// iNES header.
	ErrInvalidHeader = errors.New("invalid iNES header")

	// ErrTruncated is returned when the image is shorter than what its
	// header announces.
	ErrTruncated = errors.New("truncated rom")
)

const (
	Magic       = "NES\x1a"
	HeaderSize  = 16
	TrainerSize = 512
	PRGBankSize = 16384
	CHRBankSize = 8192
)

// Rom is an iNES cartridge image. It's not modified once loaded.
type Rom struct {
	Header
	Trainer []byte // 512 bytes if present, or empty.
	PRG     []byte // PRG-ROM, multiple of 16KB.
	CHR     []byte // CHR-ROM, multiple of 8KB, empty for CHR-RAM boards.
}

// Open loads a rom from file.
func Open(path string) (*Rom, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rom := new(Rom)
	if _, err := rom.ReadFrom(f); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rom, nil
}

// Decode decodes a rom from an in-memory image.
func Decode(buf []byte) (*Rom, error) {
	rom := new(Rom)
	if err := rom.decode(buf); err != nil {
		return nil, err
	}
	return rom, nil
}

// ReadFrom implements io.ReaderFrom.
func (rom *Rom) ReadFrom(r io.Reader) (int64, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return int64(len(buf)), err
	}
	return int64(len(buf)), rom.decode(buf)
}

func (rom *Rom) decode(buf []byte) error {
	if err := rom.Header.decode(buf); err != nil {
		return err
	}
	off := HeaderSize

	section := func(name string, size int) ([]byte, error) {
		if len(buf) < off+size {
			return nil, fmt.Errorf("%w: incomplete %s section (want %d bytes, have %d)",
				ErrTruncated, name, size, max(len(buf)-off, 0))
		}
		s := buf[off : off+size : off+size]
		off += size
		return s, nil
	}

	var err error
	if rom.HasTrainer() {
		if rom.Trainer, err = section("trainer", TrainerSize); err != nil {
			return err
		}
	}
	if rom.PRG, err = section("PRG", rom.prgsz); err != nil {
		return err
	}
	if rom.CHR, err = section("CHR", rom.chrsz); err != nil {
		return err
	}
	return nil
}

// Infos writes a human readable description of the rom.
func (rom *Rom) Infos(w io.Writer) error {
	var chr string
	if rom.CHRBanks() == 0 {
		chr = "8KB CHR-RAM"
	} else {
		chr = fmt.Sprintf("%d x 8KB", rom.CHRBanks())
	}
	_, err := fmt.Fprintf(w, ""+
		"mapper:    %d\n"+
		"PRG-ROM:   %d x 16KB\n"+
		"CHR:       %s\n"+
		"PRG-RAM:   %d x 8KB (battery: %t)\n"+
		"mirroring: %s\n"+
		"trainer:   %t\n"+
		"tv system: %s\n",
		rom.Mapper(), rom.PRGBanks(), chr,
		rom.PRGRAMBanks(), rom.HasPersistent(),
		rom.Mirroring(), rom.HasTrainer(), rom.TVSystem())
	return err
}
