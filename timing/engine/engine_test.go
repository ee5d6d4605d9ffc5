package engine_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/m2sim-ooo/emu"
	"github.com/sarchlab/m2sim-ooo/insts"
	"github.com/sarchlab/m2sim-ooo/timing/cache"
	"github.com/sarchlab/m2sim-ooo/timing/engine"
	"github.com/sarchlab/m2sim-ooo/timing/latency"
)

func testConfig() *latency.Config {
	return &latency.Config{
		Width:      2,
		IQSize:     8,
		ROBSize:    8,
		SQSize:     8,
		LSBSize:    8,
		LSBTagBase: 8,
		BHTSize:    16,
		BTBSize:    16,
		L1: latency.CacheConfig{
			Capacity: 256, Associativity: 4, LineSize: 16, MissPenalty: 1,
		},
		L2: latency.CacheConfig{
			Capacity: 1024, Associativity: 4, LineSize: 16, MissPenalty: 1,
		},
		MainMemoryLatency: 1,
	}
}

func rType(opcode, rs, rt, rd, shamt, funct uint32) uint32 {
	return (opcode << 26) | (rs << 21) | (rt << 16) | (rd << 11) | (shamt << 6) | funct
}

func iType(opcode, rs, rt, imm uint32) uint32 {
	return (opcode << 26) | (rs << 21) | (rt << 16) | (imm & 0xffff)
}

const haltWord = uint32(insts.OpcodeHalt) << 26

func newEngine(cfg *latency.Config, mem *emu.Memory) (*engine.Engine, *emu.RegFile) {
	arch := &emu.RegFile{}
	eng := engine.New(cfg, insts.NewDecoder(), emu.NewALU(), arch, cache.NewMemory(cfg, mem))
	return eng, arch
}

func run(eng *engine.Engine, cycles int) {
	for i := 0; i < cycles; i++ {
		eng.Tick()
	}
}

var _ = Describe("Engine", func() {
	It("runs a dependent addi/add chain and commits the result", func() {
		mem := emu.NewMemory()
		mem.WriteWord(0, iType(insts.OpcodeADDI, 0, 1, 5))              // addi $1, $0, 5
		mem.WriteWord(4, iType(insts.OpcodeADDI, 0, 2, 7))              // addi $2, $0, 7
		mem.WriteWord(8, rType(insts.OpcodeRType, 1, 2, 3, 0, insts.FunctADD)) // add $3, $1, $2
		mem.WriteWord(12, haltWord)

		cfg := testConfig()
		eng, arch := newEngine(cfg, mem)
		run(eng, 200)

		Expect(arch.ReadReg(1)).To(Equal(uint32(5)))
		Expect(arch.ReadReg(2)).To(Equal(uint32(7)))
		Expect(arch.ReadReg(3)).To(Equal(uint32(12)))
	})

	It("round-trips a store then a load through the memory subsystem", func() {
		mem := emu.NewMemory()
		mem.WriteWord(0, iType(insts.OpcodeADDI, 0, 1, 5))
		mem.WriteWord(4, iType(insts.OpcodeADDI, 0, 2, 7))
		mem.WriteWord(8, rType(insts.OpcodeRType, 1, 2, 3, 0, insts.FunctADD)) // $3 = 12
		mem.WriteWord(12, iType(insts.OpcodeADDI, 0, 5, 0x100))               // $5 = 0x100
		mem.WriteWord(16, iType(insts.OpcodeSW, 5, 3, 0))                     // mem[$5] = $3
		mem.WriteWord(20, iType(insts.OpcodeLW, 5, 6, 0))                     // $6 = mem[$5]
		mem.WriteWord(24, haltWord)

		cfg := testConfig()
		eng, arch := newEngine(cfg, mem)
		run(eng, 300)

		Expect(arch.ReadReg(6)).To(Equal(uint32(12)))
	})

	It("forwards a byte store to an overlapping byte load", func() {
		mem := emu.NewMemory()
		mem.WriteWord(0, iType(insts.OpcodeADDI, 0, 1, 0xAB))
		mem.WriteWord(4, iType(insts.OpcodeADDI, 0, 5, 0x200))
		mem.WriteWord(8, iType(insts.OpcodeSB, 5, 1, 0))
		mem.WriteWord(12, iType(insts.OpcodeLBU, 5, 6, 0))
		mem.WriteWord(16, haltWord)

		cfg := testConfig()
		eng, arch := newEngine(cfg, mem)
		run(eng, 300)

		Expect(arch.ReadReg(6)).To(Equal(uint32(0xAB)))
	})

	It("merges two distinct byte stores into the same word before a halfword load reads it back", func() {
		mem := emu.NewMemory()
		mem.WriteWord(0, iType(insts.OpcodeADDI, 0, 5, 0x100))
		mem.WriteWord(4, iType(insts.OpcodeADDI, 0, 1, 0xAA))
		mem.WriteWord(8, iType(insts.OpcodeADDI, 0, 2, 0xBB))
		mem.WriteWord(12, iType(insts.OpcodeSB, 5, 1, 0)) // mem[0x100] = 0xAA
		mem.WriteWord(16, iType(insts.OpcodeSB, 5, 2, 1)) // mem[0x101] = 0xBB
		mem.WriteWord(20, iType(insts.OpcodeLHU, 5, 3, 0))
		mem.WriteWord(24, haltWord)

		cfg := testConfig()
		eng, arch := newEngine(cfg, mem)
		run(eng, 300)

		Expect(arch.ReadReg(3)).To(Equal(uint32(0xBBAA)))
	})

	It("flushes and redirects fetch on a taken-branch misprediction", func() {
		mem := emu.NewMemory()
		mem.WriteWord(0, iType(insts.OpcodeADDI, 0, 1, 5))
		mem.WriteWord(4, iType(insts.OpcodeADDI, 0, 2, 5))
		mem.WriteWord(8, iType(insts.OpcodeBEQ, 1, 2, 2)) // taken -> target 8+4+2*4=20
		mem.WriteWord(12, iType(insts.OpcodeADDI, 0, 7, 111))
		mem.WriteWord(16, iType(insts.OpcodeADDI, 0, 7, 222))
		mem.WriteWord(20, iType(insts.OpcodeADDI, 0, 8, 999))
		mem.WriteWord(24, haltWord)

		cfg := testConfig()
		eng, arch := newEngine(cfg, mem)
		run(eng, 300)

		Expect(arch.ReadReg(7)).To(Equal(uint32(0)))
		Expect(arch.ReadReg(8)).To(Equal(uint32(999)))
		Expect(eng.Stats.Flushes).To(BeNumerically(">=", uint64(1)))
	})

	It("squashes the fall-through instruction of a taken branch predicted not-taken", func() {
		mem := emu.NewMemory()
		// a single taken branch that skips one instruction; the skipped
		// addi must never reach the architectural register file
		mem.WriteWord(0, iType(insts.OpcodeADDI, 0, 1, 1))
		mem.WriteWord(4, iType(insts.OpcodeADDI, 0, 2, 1))
		mem.WriteWord(8, iType(insts.OpcodeBEQ, 1, 2, 1)) // taken -> 8+4+4=16
		mem.WriteWord(12, iType(insts.OpcodeADDI, 0, 9, 77))
		mem.WriteWord(16, haltWord)

		cfg := testConfig()
		eng, arch := newEngine(cfg, mem)
		run(eng, 300)

		Expect(arch.ReadReg(9)).To(Equal(uint32(0)))
	})
})
