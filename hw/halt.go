package hw

import (
	"errors"
	"fmt"

	"nescore/hw/snapshot"
)

// ErrIllegalOpcode is the cause of a CPU halt on an undocumented opcode.
var ErrIllegalOpcode = errors.New("illegal opcode")

// HaltError is returned by CPU.Step once the CPU has stopped executing. It
// carries the state needed to diagnose the failure.
type HaltError struct {
	Opcode uint8
	Addr   uint16       // address of the faulting opcode
	Cycles int64        // CPU cycle count at the time of the halt
	Regs   snapshot.CPU // register snapshot
}

func (c *CPU) newHaltError(opcode uint8, addr uint16) *HaltError {
	return &HaltError{
		Opcode: opcode,
		Addr:   addr,
		Cycles: c.Cycles,
		Regs:   c.Snapshot(),
	}
}

func (e *HaltError) Error() string {
	return fmt.Sprintf("cpu halted: %s $%02X at $%04X (cycle %d, A:%02X X:%02X Y:%02X P:%02X SP:%02X)",
		ErrIllegalOpcode, e.Opcode, e.Addr, e.Cycles,
		e.Regs.A, e.Regs.X, e.Regs.Y, e.Regs.P, e.Regs.SP)
}

func (e *HaltError) Unwrap() error { return ErrIllegalOpcode }

// MarshalJSON encodes the diagnostic state.
func (e *HaltError) MarshalJSON() ([]byte, error) {
	return snapshot.EncodeHalt(snapshot.Halt{
		Reason: ErrIllegalOpcode.Error(),
		Opcode: e.Opcode,
		Addr:   e.Addr,
		Cycles: e.Cycles,
		CPU:    e.Regs,
	}), nil
}
