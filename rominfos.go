package main

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"runtime"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"nescore/emu"
	"nescore/hw"
	"nescore/ines"
)

// romInfosMain prints the header infos of the given roms, read
// concurrently, in the order of paths.
func romInfosMain(w io.Writer, paths []string) error {
	infos := make([]bytes.Buffer, len(paths))

	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for i, path := range paths {
		g.Go(func() error {
			rom, err := ines.Open(path)
			if err != nil {
				return err
			}
			if len(paths) > 1 {
				fmt.Fprintf(&infos[i], "%s:\n", path)
			}
			return rom.Infos(&infos[i])
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i := range infos {
		if i > 0 {
			io.WriteString(w, "\n")
		}
		if _, err := infos[i].WriteTo(w); err != nil {
			return err
		}
	}
	return nil
}

// disasmMain loads a rom and prints its disassembly.
func disasmMain(w io.Writer, args Disasm) error {
	rom, err := ines.Open(args.RomPath)
	if err != nil {
		return err
	}
	nes, err := emu.PowerUp(rom)
	if err != nil {
		return err
	}

	var ops []hw.DisasmOp
	if args.Addr == "" {
		ops = hw.DisasmProgram(nes.CPU.Bus)
	} else {
		addr, err := strconv.ParseUint(strings.TrimPrefix(args.Addr, "$"), 16, 16)
		if err != nil {
			return fmt.Errorf("invalid address %q: %w", args.Addr, err)
		}
		pc := uint16(addr)
		for range args.Count {
			op := hw.Disasm(nes.CPU.Bus, pc)
			ops = append(ops, op)
			pc += uint16(op.Size())
		}
	}

	bw := bufio.NewWriter(w)
	for _, op := range ops {
		fmt.Fprintln(bw, op)
	}
	return bw.Flush()
}
