package latency

import (
	"github.com/sarchlab/m2sim-ooo/insts"
)

// Table classifies decoded instructions by functional class. The core
// itself models at most one cycle per pipeline stage (see Config's
// cache miss penalties for the only multi-cycle timing in this model);
// the engine uses Table at dispatch only to tally its instruction-mix
// statistics (ALU vs. memory vs. branch), not for routing or for
// variable per-instruction execute latency.
type Table struct {
	config *Config
}

// NewTable creates a latency table over the default structural
// configuration.
func NewTable() *Table {
	return &Table{config: DefaultConfig()}
}

// NewTableWithConfig creates a latency table over a caller-supplied
// configuration.
func NewTableWithConfig(config *Config) *Table {
	return &Table{config: config}
}

// Config returns the table's underlying configuration.
func (t *Table) Config() *Config {
	return t.config
}

// IsMemoryOp returns true if inst reads or writes memory.
func (t *Table) IsMemoryOp(inst *insts.Instruction) bool {
	if inst == nil {
		return false
	}
	return inst.Control.MemRead || inst.Control.MemWrite
}

// IsLoadOp returns true if inst is one of lw/lh/lhu/lb/lbu.
func (t *Table) IsLoadOp(inst *insts.Instruction) bool {
	if inst == nil {
		return false
	}
	return inst.Control.MemRead
}

// IsStoreOp returns true if inst is one of sw/sh/sb.
func (t *Table) IsStoreOp(inst *insts.Instruction) bool {
	if inst == nil {
		return false
	}
	return inst.Control.MemWrite
}

// IsBranchOp returns true if inst is beq or bne.
func (t *Table) IsBranchOp(inst *insts.Instruction) bool {
	if inst == nil {
		return false
	}
	return inst.Control.Branch
}

// IsJumpOp returns true if inst is j, jal, or jr: an unconditional
// control-flow instruction that does not go through the predictor's
// taken/not-taken BHT path.
func (t *Table) IsJumpOp(inst *insts.Instruction) bool {
	if inst == nil {
		return false
	}
	return inst.Control.Jump || inst.Control.JumpReg
}

// IsALUOp returns true if inst neither reads/writes memory nor
// branches/jumps: the class of instruction the scheduling queue
// executes directly.
func (t *Table) IsALUOp(inst *insts.Instruction) bool {
	if inst == nil {
		return false
	}
	c := inst.Control
	return !c.MemRead && !c.MemWrite && !c.Branch && !c.Jump && !c.JumpReg && !c.Halt
}
