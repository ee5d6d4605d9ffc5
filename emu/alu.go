package emu

import "github.com/sarchlab/m2sim-ooo/insts"

// ALU is the pure, stateless combinational arithmetic/logic unit named
// by the core's external interfaces. GenerateControl mirrors
// ALU.generate_control(alu_op, funct, opcode) from the source: it is a
// no-op placeholder kept for interface fidelity, since this decoder
// already resolves the control code at decode time rather than
// deferring to the ALU.
type ALU struct{}

// NewALU creates a stateless MIPS ALU.
func NewALU() *ALU {
	return &ALU{}
}

// GenerateControl exists to match the external collaborator interface;
// the control code is fully determined by the decoder in this
// implementation; ALU.Execute consumes it directly.
func (a *ALU) GenerateControl(aluOp insts.ALUCtl, funct, opcode uint32) insts.ALUCtl {
	return aluOp
}

// Execute performs the ALU operation selected by ctl on operands a and
// b, returning the result and whether it is zero (the `out_zero` signal
// branch resolution depends on).
func (alu *ALU) Execute(ctl insts.ALUCtl, a, b uint32) (result uint32, zero bool) {
	switch ctl {
	case insts.ALUCtlAdd:
		result = a + b
	case insts.ALUCtlSub:
		result = a - b
	case insts.ALUCtlAnd:
		result = a & b
	case insts.ALUCtlOr:
		result = a | b
	case insts.ALUCtlXor:
		result = a ^ b
	case insts.ALUCtlNor:
		result = ^(a | b)
	case insts.ALUCtlSlt:
		if int32(a) < int32(b) {
			result = 1
		}
	case insts.ALUCtlSltu:
		if a < b {
			result = 1
		}
	case insts.ALUCtlSll:
		result = b << (a & 0x1f)
	case insts.ALUCtlSrl:
		result = b >> (a & 0x1f)
	case insts.ALUCtlSra:
		result = uint32(int32(b) >> (a & 0x1f))
	case insts.ALUCtlPassB:
		result = b
	}

	return result, result == 0
}
