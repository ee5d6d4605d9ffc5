package insts

// Decoder decodes MIPS-32 instruction words into Instruction values
// carrying both the raw field extraction and the derived control
// signals consumed by dispatch/rename.
type Decoder struct{}

// NewDecoder creates a MIPS-32 instruction decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode extracts opcode/rs/rt/rd/shamt/funct/imm/addr26 from a 32-bit
// word and derives its control signals.
func (d *Decoder) Decode(word uint32) Instruction {
	inst := Instruction{
		Raw:    word,
		Opcode: (word >> 26) & 0x3f,
		Rs:     (word >> 21) & 0x1f,
		Rt:     (word >> 16) & 0x1f,
		Rd:     (word >> 11) & 0x1f,
		Shamt:  (word >> 6) & 0x1f,
		Funct:  word & 0x3f,
		Addr26: word & 0x3ffffff,
	}

	imm16 := word & 0xffff

	switch inst.Opcode {
	case OpcodeRType:
		d.decodeRType(&inst)
		inst.Imm = imm16

	case OpcodeJ:
		inst.Op = OpJ
		inst.Control = Control{Jump: true}

	case OpcodeJAL:
		inst.Op = OpJAL
		inst.Control = Control{Jump: true, Link: true, RegWrite: true}

	case OpcodeBEQ:
		inst.Op = OpBEQ
		inst.Imm = signExtend16(imm16)
		inst.Control = Control{ALUOp: ALUCtlSub, Branch: true}

	case OpcodeBNE:
		inst.Op = OpBNE
		inst.Imm = signExtend16(imm16)
		inst.Control = Control{ALUOp: ALUCtlSub, Branch: true, Bne: true}

	case OpcodeADDI:
		inst.Op = OpADDI
		inst.Imm = signExtend16(imm16)
		inst.Control = Control{ALUOp: ALUCtlAdd, ALUSrc: true, RegWrite: true}

	case OpcodeADDIU:
		inst.Op = OpADDIU
		inst.Imm = signExtend16(imm16)
		inst.Control = Control{ALUOp: ALUCtlAdd, ALUSrc: true, RegWrite: true}

	case OpcodeSLTI:
		inst.Op = OpSLTI
		inst.Imm = signExtend16(imm16)
		inst.Control = Control{ALUOp: ALUCtlSlt, ALUSrc: true, RegWrite: true}

	case OpcodeSLTIU:
		inst.Op = OpSLTIU
		inst.Imm = signExtend16(imm16)
		inst.Control = Control{ALUOp: ALUCtlSltu, ALUSrc: true, RegWrite: true}

	case OpcodeANDI:
		inst.Op = OpANDI
		inst.Imm = imm16
		inst.Control = Control{ALUOp: ALUCtlAnd, ALUSrc: true, RegWrite: true, ZeroExtend: true}

	case OpcodeORI:
		inst.Op = OpORI
		inst.Imm = imm16
		inst.Control = Control{ALUOp: ALUCtlOr, ALUSrc: true, RegWrite: true, ZeroExtend: true}

	case OpcodeXORI:
		inst.Op = OpXORI
		inst.Imm = imm16
		inst.Control = Control{ALUOp: ALUCtlXor, ALUSrc: true, RegWrite: true, ZeroExtend: true}

	case OpcodeLUI:
		inst.Op = OpLUI
		inst.Imm = imm16 << 16
		inst.Control = Control{ALUOp: ALUCtlPassB, ALUSrc: true, RegWrite: true, ZeroExtend: true}

	case OpcodeLW:
		inst.Op = OpLW
		inst.Imm = signExtend16(imm16)
		inst.Control = Control{ALUOp: ALUCtlAdd, ALUSrc: true, MemRead: true, RegWrite: true}

	case OpcodeLH:
		inst.Op = OpLH
		inst.Imm = signExtend16(imm16)
		inst.Control = Control{ALUOp: ALUCtlAdd, ALUSrc: true, MemRead: true, RegWrite: true, Halfword: true}

	case OpcodeLHU:
		inst.Op = OpLHU
		inst.Imm = signExtend16(imm16)
		inst.Control = Control{ALUOp: ALUCtlAdd, ALUSrc: true, MemRead: true, RegWrite: true, Halfword: true, ZeroExtend: true}

	case OpcodeLB:
		inst.Op = OpLB
		inst.Imm = signExtend16(imm16)
		inst.Control = Control{ALUOp: ALUCtlAdd, ALUSrc: true, MemRead: true, RegWrite: true, Byte: true}

	case OpcodeLBU:
		inst.Op = OpLBU
		inst.Imm = signExtend16(imm16)
		inst.Control = Control{ALUOp: ALUCtlAdd, ALUSrc: true, MemRead: true, RegWrite: true, Byte: true, ZeroExtend: true}

	case OpcodeSW:
		inst.Op = OpSW
		inst.Imm = signExtend16(imm16)
		inst.Control = Control{ALUOp: ALUCtlAdd, ALUSrc: true, MemWrite: true}

	case OpcodeSH:
		inst.Op = OpSH
		inst.Imm = signExtend16(imm16)
		inst.Control = Control{ALUOp: ALUCtlAdd, ALUSrc: true, MemWrite: true, Halfword: true}

	case OpcodeSB:
		inst.Op = OpSB
		inst.Imm = signExtend16(imm16)
		inst.Control = Control{ALUOp: ALUCtlAdd, ALUSrc: true, MemWrite: true, Byte: true}

	case OpcodeHalt:
		inst.Op = OpHALT
		inst.Control = Control{Halt: true}

	default:
		inst.Op = OpUnknown
	}

	return inst
}

func (d *Decoder) decodeRType(inst *Instruction) {
	switch inst.Funct {
	case FunctADD:
		inst.Op = OpADD
		inst.Control = Control{ALUOp: ALUCtlAdd, RegWrite: true, RegDest: true}
	case FunctADDU:
		inst.Op = OpADDU
		inst.Control = Control{ALUOp: ALUCtlAdd, RegWrite: true, RegDest: true}
	case FunctSUB:
		inst.Op = OpSUB
		inst.Control = Control{ALUOp: ALUCtlSub, RegWrite: true, RegDest: true}
	case FunctSUBU:
		inst.Op = OpSUBU
		inst.Control = Control{ALUOp: ALUCtlSub, RegWrite: true, RegDest: true}
	case FunctAND:
		inst.Op = OpAND
		inst.Control = Control{ALUOp: ALUCtlAnd, RegWrite: true, RegDest: true}
	case FunctOR:
		inst.Op = OpOR
		inst.Control = Control{ALUOp: ALUCtlOr, RegWrite: true, RegDest: true}
	case FunctXOR:
		inst.Op = OpXOR
		inst.Control = Control{ALUOp: ALUCtlXor, RegWrite: true, RegDest: true}
	case FunctNOR:
		inst.Op = OpNOR
		inst.Control = Control{ALUOp: ALUCtlNor, RegWrite: true, RegDest: true}
	case FunctSLT:
		inst.Op = OpSLT
		inst.Control = Control{ALUOp: ALUCtlSlt, RegWrite: true, RegDest: true}
	case FunctSLTU:
		inst.Op = OpSLTU
		inst.Control = Control{ALUOp: ALUCtlSltu, RegWrite: true, RegDest: true}
	case FunctSLL:
		inst.Op = OpSLL
		inst.Control = Control{ALUOp: ALUCtlSll, RegWrite: true, RegDest: true, Shift: true}
	case FunctSRL:
		inst.Op = OpSRL
		inst.Control = Control{ALUOp: ALUCtlSrl, RegWrite: true, RegDest: true, Shift: true}
	case FunctSRA:
		inst.Op = OpSRA
		inst.Control = Control{ALUOp: ALUCtlSra, RegWrite: true, RegDest: true, Shift: true}
	case FunctJR:
		inst.Op = OpJR
		inst.Control = Control{JumpReg: true}
	default:
		inst.Op = OpUnknown
	}
}

func signExtend16(v uint32) uint32 {
	if v&0x8000 != 0 {
		return v | 0xffff0000
	}
	return v
}
