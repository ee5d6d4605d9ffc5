// Package insts provides MIPS-32 instruction definitions and decoding.
//
// This package decodes the MIPS-32 integer subset this simulator's core
// targets: R-type and I-type ALU operations, lw/lh/lb/sw/sh/sb, j, jal,
// jr, beq, bne. It supports:
//   - R-type: ADD, ADDU, SUB, SUBU, AND, OR, XOR, NOR, SLT, SLTU, SLL,
//     SRL, SRA, JR
//   - I-type: ADDI, ADDIU, ANDI, ORI, XORI, SLTI, SLTIU, LUI, loads,
//     stores, BEQ, BNE
//   - J-type: J, JAL
//
// Usage:
//
//	decoder := insts.NewDecoder()
//	inst := decoder.Decode(0x20010005) // addi $1, $0, 5
//	fmt.Printf("Op: %v, Rt: %d, Imm: %d\n", inst.Op, inst.Rt, inst.Imm)
package insts

// Op identifies the decoded operation. It is used by tests and by the
// engine's unsupported-opcode diagnostic (Op == OpUnknown); the latency
// table and the rest of the timing core consume the raw Control signals
// and field extraction instead, to stay close to the decoded
// hardware-control-signal model the source uses.
type Op int

const (
	OpUnknown Op = iota
	OpADD
	OpADDU
	OpSUB
	OpSUBU
	OpAND
	OpOR
	OpXOR
	OpNOR
	OpSLT
	OpSLTU
	OpSLL
	OpSRL
	OpSRA
	OpJR
	OpADDI
	OpADDIU
	OpANDI
	OpORI
	OpXORI
	OpSLTI
	OpSLTIU
	OpLUI
	OpLW
	OpLH
	OpLHU
	OpLB
	OpLBU
	OpSW
	OpSH
	OpSB
	OpBEQ
	OpBNE
	OpJ
	OpJAL
	OpHALT
)

// MIPS opcode field values (instr[31:26]).
const (
	OpcodeRType = 0x00
	OpcodeJ     = 0x02
	OpcodeJAL   = 0x03
	OpcodeBEQ   = 0x04
	OpcodeBNE   = 0x05
	OpcodeADDI  = 0x08
	OpcodeADDIU = 0x09
	OpcodeSLTI  = 0x0a
	OpcodeSLTIU = 0x0b
	OpcodeANDI  = 0x0c
	OpcodeORI   = 0x0d
	OpcodeXORI  = 0x0e
	OpcodeLUI   = 0x0f
	OpcodeLB    = 0x20
	OpcodeLH    = 0x21
	OpcodeLW    = 0x23
	OpcodeLBU   = 0x24
	OpcodeLHU   = 0x25
	OpcodeSB    = 0x28
	OpcodeSH    = 0x29
	OpcodeSW    = 0x2b
	// OpcodeHalt is not a real MIPS opcode; it is reserved (0x3f, the
	// all-ones funct-space opcode no supported instruction uses) to
	// signal end-of-program to the engine and reference interpreter.
	OpcodeHalt = 0x3f
)

// R-type funct field values (instr[5:0]).
const (
	FunctADD  = 0x20
	FunctADDU = 0x21
	FunctSUB  = 0x22
	FunctSUBU = 0x23
	FunctAND  = 0x24
	FunctOR   = 0x25
	FunctXOR  = 0x26
	FunctNOR  = 0x27
	FunctSLT  = 0x2a
	FunctSLTU = 0x2b
	FunctSLL  = 0x00
	FunctSRL  = 0x02
	FunctSRA  = 0x03
	FunctJR   = 0x08
)

// ALUCtl is the control code the decoder hands to the ALU, mirroring
// the source's integer alu_op field. It is independent of Op: several
// Ops (e.g. ADDI and loads/stores, which compute an effective address)
// share ALUCtlAdd.
type ALUCtl int

const (
	ALUCtlAdd ALUCtl = iota
	ALUCtlSub
	ALUCtlAnd
	ALUCtlOr
	ALUCtlXor
	ALUCtlNor
	ALUCtlSlt
	ALUCtlSltu
	ALUCtlSll
	ALUCtlSrl
	ALUCtlSra
	ALUCtlPassB // used by LUI: result is operand2 shifted into place by the decoder's immediate handling
)

// Control holds the decoded control signals for one instruction,
// matching the external collaborator interface named by the core:
// Decoder.Decode(instr) -> ControlSignals.
type Control struct {
	ALUOp      ALUCtl
	ALUSrc     bool // true: second ALU operand is the immediate
	MemRead    bool
	MemWrite   bool
	RegWrite   bool
	RegDest    bool // true: destination register field is Rd (R-type); false: Rt (I-type)
	Branch     bool
	Bne        bool // true: beq/bne is actually bne
	Jump       bool // true: j or jal (unconditional direct jump)
	JumpReg    bool // true: jr
	Link       bool // true: jal (writes $31)
	ZeroExtend bool // true: logical I-type/lui immediate is zero-extended, or lbu/lhu loaded value is zero-extended
	Halfword   bool
	Byte       bool
	Shift      bool // true: R-type shift (sll/srl/sra); first ALU operand is shamt
	Halt       bool
}

// Instruction is the fully decoded representation of one 32-bit MIPS
// word: the raw field extraction plus the control signals.
type Instruction struct {
	Raw     uint32
	Op      Op
	Opcode  uint32
	Rs      uint32
	Rt      uint32
	Rd      uint32
	Shamt   uint32
	Funct   uint32
	Imm     uint32 // already extended to 32 bits: zero-extended for andi/ori/xori/lui, sign-extended otherwise
	Addr26  uint32
	Control Control
}
