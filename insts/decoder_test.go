package insts_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/m2sim-ooo/insts"
)

var _ = Describe("Decoder", func() {
	var decoder *insts.Decoder

	BeforeEach(func() {
		decoder = insts.NewDecoder()
	})

	Context("R-type instructions", func() {
		It("decodes add $3, $1, $2", func() {
			word := uint32(0x00)<<26 | uint32(1)<<21 | uint32(2)<<16 | uint32(3)<<11 | uint32(insts.FunctADD)
			inst := decoder.Decode(word)

			Expect(inst.Op).To(Equal(insts.OpADD))
			Expect(inst.Rs).To(BeEquivalentTo(1))
			Expect(inst.Rt).To(BeEquivalentTo(2))
			Expect(inst.Rd).To(BeEquivalentTo(3))
			Expect(inst.Control.ALUOp).To(Equal(insts.ALUCtlAdd))
			Expect(inst.Control.RegWrite).To(BeTrue())
			Expect(inst.Control.RegDest).To(BeTrue())
		})

		It("decodes sll with a shift amount", func() {
			word := uint32(2)<<11 | uint32(4)<<6 | uint32(insts.FunctSLL)
			inst := decoder.Decode(word)

			Expect(inst.Op).To(Equal(insts.OpSLL))
			Expect(inst.Shamt).To(BeEquivalentTo(4))
			Expect(inst.Control.Shift).To(BeTrue())
		})

		It("decodes jr", func() {
			word := uint32(8)<<21 | uint32(insts.FunctJR)
			inst := decoder.Decode(word)

			Expect(inst.Op).To(Equal(insts.OpJR))
			Expect(inst.Control.JumpReg).To(BeTrue())
			Expect(inst.Rs).To(BeEquivalentTo(8))
		})
	})

	Context("I-type instructions", func() {
		It("sign-extends a negative addi immediate", func() {
			word := uint32(insts.OpcodeADDI)<<26 | uint32(1)<<21 | uint32(2)<<16 | uint32(0xffff)
			inst := decoder.Decode(word)

			Expect(inst.Op).To(Equal(insts.OpADDI))
			Expect(inst.Imm).To(Equal(uint32(0xffffffff)))
			Expect(inst.Control.ALUSrc).To(BeTrue())
			Expect(inst.Control.RegWrite).To(BeTrue())
		})

		It("zero-extends an andi immediate", func() {
			word := uint32(insts.OpcodeANDI)<<26 | uint32(0x8000)
			inst := decoder.Decode(word)

			Expect(inst.Imm).To(Equal(uint32(0x8000)))
			Expect(inst.Control.ZeroExtend).To(BeTrue())
		})

		It("shifts lui's immediate into the upper halfword", func() {
			word := uint32(insts.OpcodeLUI)<<26 | uint32(1)<<16 | uint32(0x1234)
			inst := decoder.Decode(word)

			Expect(inst.Op).To(Equal(insts.OpLUI))
			Expect(inst.Imm).To(Equal(uint32(0x12340000)))
		})

		It("decodes lw as a sign-extended-offset load", func() {
			word := uint32(insts.OpcodeLW)<<26 | uint32(4)<<21 | uint32(5)<<16 | uint32(0xfffc)
			inst := decoder.Decode(word)

			Expect(inst.Op).To(Equal(insts.OpLW))
			Expect(inst.Imm).To(Equal(uint32(0xfffffffc)))
			Expect(inst.Control.MemRead).To(BeTrue())
			Expect(inst.Control.RegWrite).To(BeTrue())
		})

		It("decodes lbu as zero-extending byte load", func() {
			word := uint32(insts.OpcodeLBU)<<26
			inst := decoder.Decode(word)

			Expect(inst.Control.Byte).To(BeTrue())
			Expect(inst.Control.ZeroExtend).To(BeTrue())
		})

		It("decodes bne as a branch with the Bne flag set", func() {
			word := uint32(insts.OpcodeBNE)<<26 | uint32(0x0002)
			inst := decoder.Decode(word)

			Expect(inst.Op).To(Equal(insts.OpBNE))
			Expect(inst.Control.Branch).To(BeTrue())
			Expect(inst.Control.Bne).To(BeTrue())
			Expect(inst.Imm).To(Equal(uint32(2)))
		})
	})

	Context("J-type instructions", func() {
		It("decodes j with its 26-bit target", func() {
			word := uint32(insts.OpcodeJ)<<26 | uint32(0x123456)
			inst := decoder.Decode(word)

			Expect(inst.Op).To(Equal(insts.OpJ))
			Expect(inst.Addr26).To(Equal(uint32(0x123456)))
			Expect(inst.Control.Jump).To(BeTrue())
			Expect(inst.Control.Link).To(BeFalse())
		})

		It("decodes jal with Link and RegWrite set", func() {
			word := uint32(insts.OpcodeJAL)<<26
			inst := decoder.Decode(word)

			Expect(inst.Op).To(Equal(insts.OpJAL))
			Expect(inst.Control.Jump).To(BeTrue())
			Expect(inst.Control.Link).To(BeTrue())
			Expect(inst.Control.RegWrite).To(BeTrue())
		})
	})

	Context("the reserved halt opcode", func() {
		It("decodes to a Halt control signal", func() {
			word := uint32(insts.OpcodeHalt) << 26
			inst := decoder.Decode(word)

			Expect(inst.Op).To(Equal(insts.OpHALT))
			Expect(inst.Control.Halt).To(BeTrue())
		})
	})

	Context("an unrecognized opcode", func() {
		It("decodes to OpUnknown", func() {
			word := uint32(0x3e) << 26
			inst := decoder.Decode(word)

			Expect(inst.Op).To(Equal(insts.OpUnknown))
		})
	})
})
