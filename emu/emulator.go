package emu

import "github.com/sarchlab/m2sim-ooo/insts"

// MaxSteps bounds the reference interpreter's run length so a runaway
// program (e.g. one missing a halt) cannot loop forever during an
// equivalence check.
const MaxSteps = 1_000_000

// Emulator is the single-cycle reference interpreter: one instruction
// fully fetched, decoded, executed, and retired per Step call, with no
// speculation, renaming, or cache timing. It exists solely to produce
// the ground-truth architectural state the out-of-order timing core is
// checked against (invariant 8).
type Emulator struct {
	Regs    RegFile
	Mem     *Memory
	decoder *insts.Decoder
	alu     *ALU

	Halted bool
	Steps  uint64
}

// NewEmulator creates a reference interpreter over the given memory
// image. The caller is expected to have already loaded the program
// into mem and to set the entry point via Regs.PC.
func NewEmulator(mem *Memory) *Emulator {
	return &Emulator{
		Mem:     mem,
		decoder: insts.NewDecoder(),
		alu:     NewALU(),
	}
}

// Run steps the interpreter until it halts or MaxSteps is reached.
func (e *Emulator) Run() {
	for !e.Halted && e.Steps < MaxSteps {
		e.Step()
	}
}

// Step fetches, decodes, and executes exactly one instruction.
func (e *Emulator) Step() {
	if e.Halted {
		return
	}
	e.Steps++

	pc := e.Regs.PC
	word := e.Mem.Read32(pc)
	inst := e.decoder.Decode(word)
	ctl := inst.Control

	if ctl.Halt {
		e.Halted = true
		return
	}

	nextPC := pc + 4

	switch {
	case ctl.Jump && ctl.Link:
		e.Regs.WriteReg(31, pc+8)
		nextPC = ((pc + 4) & 0xf0000000) | (inst.Addr26 << 2)

	case ctl.Jump:
		nextPC = ((pc + 4) & 0xf0000000) | (inst.Addr26 << 2)

	case ctl.JumpReg:
		nextPC = e.Regs.ReadReg(inst.Rs)

	case ctl.Branch:
		op1 := e.Regs.ReadReg(inst.Rs)
		op2 := e.Regs.ReadReg(inst.Rt)
		_, zero := e.alu.Execute(insts.ALUCtlSub, op1, op2)
		taken := zero
		if ctl.Bne {
			taken = !zero
		}
		if taken {
			nextPC = pc + 4 + (inst.Imm << 2)
		}

	case ctl.MemRead:
		addr := e.Regs.ReadReg(inst.Rs) + inst.Imm
		e.executeLoad(inst, addr)

	case ctl.MemWrite:
		addr := e.Regs.ReadReg(inst.Rs) + inst.Imm
		e.executeStore(inst, addr)

	default:
		op1 := e.regOrShamt(inst)
		op2 := e.regOrImm(inst)
		result, _ := e.alu.Execute(ctl.ALUOp, op1, op2)
		if ctl.RegWrite {
			dest := inst.Rt
			if ctl.RegDest {
				dest = inst.Rd
			}
			e.Regs.WriteReg(dest, result)
		}
	}

	e.Regs.PC = nextPC
}

func (e *Emulator) regOrShamt(inst insts.Instruction) uint32 {
	if inst.Control.Shift {
		return inst.Shamt
	}
	return e.Regs.ReadReg(inst.Rs)
}

func (e *Emulator) regOrImm(inst insts.Instruction) uint32 {
	if inst.Control.ALUSrc {
		return inst.Imm
	}
	return e.Regs.ReadReg(inst.Rt)
}

func (e *Emulator) executeLoad(inst insts.Instruction, addr uint32) {
	var value uint32
	switch {
	case inst.Control.Byte:
		b := e.Mem.Read8(addr)
		if inst.Control.ZeroExtend {
			value = uint32(b)
		} else {
			value = uint32(int32(int8(b)))
		}
	case inst.Control.Halfword:
		h := e.Mem.Read16(addr)
		if inst.Control.ZeroExtend {
			value = uint32(h)
		} else {
			value = uint32(int32(int16(h)))
		}
	default:
		value = e.Mem.Read32(addr)
	}
	e.Regs.WriteReg(inst.Rt, value)
}

func (e *Emulator) executeStore(inst insts.Instruction, addr uint32) {
	value := e.Regs.ReadReg(inst.Rt)
	switch {
	case inst.Control.Byte:
		e.Mem.Write8(addr, uint8(value))
	case inst.Control.Halfword:
		e.Mem.Write16(addr, uint16(value))
	default:
		e.Mem.Write32(addr, value)
	}
}
