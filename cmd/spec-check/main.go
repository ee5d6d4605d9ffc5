// Package main runs a handful of concrete out-of-order core scenarios
// end to end and reports pass/fail, independent of the Ginkgo suite —
// a quick smoke check during development.
package main

import (
	"fmt"
	"os"

	"github.com/sarchlab/m2sim-ooo/emu"
	"github.com/sarchlab/m2sim-ooo/insts"
	"github.com/sarchlab/m2sim-ooo/timing/cache"
	"github.com/sarchlab/m2sim-ooo/timing/engine"
	"github.com/sarchlab/m2sim-ooo/timing/latency"
)

func smallConfig() *latency.Config {
	return &latency.Config{
		Width: 2, IQSize: 8, ROBSize: 8, SQSize: 8, LSBSize: 8, LSBTagBase: 8,
		BHTSize: 16, BTBSize: 16,
		L1: latency.CacheConfig{Capacity: 256, Associativity: 4, LineSize: 16, MissPenalty: 1},
		L2: latency.CacheConfig{Capacity: 1024, Associativity: 4, LineSize: 16, MissPenalty: 1},
		MainMemoryLatency: 1,
	}
}

func rType(opcode, rs, rt, rd, shamt, funct uint32) uint32 {
	return (opcode << 26) | (rs << 21) | (rt << 16) | (rd << 11) | (shamt << 6) | funct
}

func iType(opcode, rs, rt, imm uint32) uint32 {
	return (opcode << 26) | (rs << 21) | (rt << 16) | (imm & 0xffff)
}

func jType(opcode, addr26 uint32) uint32 {
	return (opcode << 26) | (addr26 & 0x3ffffff)
}

var haltWord = uint32(insts.OpcodeHalt) << 26

func runProgram(words map[uint32]uint32) (*engine.Engine, *emu.RegFile) {
	mem := emu.NewMemory()
	for addr, word := range words {
		mem.WriteWord(addr, word)
	}
	arch := &emu.RegFile{}
	cfg := smallConfig()
	eng := engine.New(cfg, insts.NewDecoder(), emu.NewALU(), arch, cache.NewMemory(cfg, mem))
	for i := 0; i < 500 && !eng.Halted(); i++ {
		eng.Tick()
	}
	return eng, arch
}

type check struct {
	name string
	run  func() (bool, string)
}

func e1() (bool, string) {
	_, arch := runProgram(map[uint32]uint32{
		0:  iType(insts.OpcodeADDI, 0, 1, 5),
		4:  iType(insts.OpcodeADDI, 0, 2, 7),
		8:  rType(insts.OpcodeRType, 1, 2, 3, 0, insts.FunctADD),
		12: iType(insts.OpcodeADDI, 0, 5, 0x100),
		16: iType(insts.OpcodeSW, 5, 3, 0),
		20: iType(insts.OpcodeLW, 5, 4, 0),
		24: haltWord,
	})
	got := []uint32{arch.ReadReg(1), arch.ReadReg(2), arch.ReadReg(3), arch.ReadReg(4)}
	want := []uint32{5, 7, 12, 12}
	for i := range want {
		if got[i] != want[i] {
			return false, fmt.Sprintf("want %v, got %v", want, got)
		}
	}
	return true, ""
}

func e2() (bool, string) {
	_, arch := runProgram(map[uint32]uint32{
		0:  iType(insts.OpcodeADDI, 0, 5, 0x100),
		4:  iType(insts.OpcodeADDI, 0, 1, 0xAA),
		8:  iType(insts.OpcodeADDI, 0, 2, 0xBB),
		12: iType(insts.OpcodeSB, 5, 1, 0),
		16: iType(insts.OpcodeSB, 5, 2, 1),
		20: iType(insts.OpcodeLHU, 5, 3, 0),
		24: haltWord,
	})
	got := arch.ReadReg(3)
	if got != 0xBBAA {
		return false, fmt.Sprintf("want 0xBBAA, got 0x%x", got)
	}
	return true, ""
}

func e3() (bool, string) {
	_, arch := runProgram(map[uint32]uint32{
		0:  iType(insts.OpcodeADDI, 0, 1, 1),
		4:  iType(insts.OpcodeBEQ, 1, 0, 1), // not taken: $1(1) != $0(0)
		8:  iType(insts.OpcodeADDI, 0, 2, 9),
		12: iType(insts.OpcodeADDI, 0, 3, 3),
		16: haltWord,
	})
	if arch.ReadReg(1) != 1 || arch.ReadReg(2) != 9 || arch.ReadReg(3) != 3 {
		return false, fmt.Sprintf("want $1=1 $2=9 $3=3, got $1=%d $2=%d $3=%d",
			arch.ReadReg(1), arch.ReadReg(2), arch.ReadReg(3))
	}
	return true, ""
}

func e6() (bool, string) {
	_, arch := runProgram(map[uint32]uint32{
		0:  jType(insts.OpcodeJAL, 4), // jal F (F at word index 4 -> addr 16)
		4:  iType(insts.OpcodeADDI, 0, 9, 111),
		8:  iType(insts.OpcodeADDI, 0, 10, 222), // return site: pc(jal)+8
		12: haltWord,
		16: rType(insts.OpcodeRType, 31, 0, 0, 0, insts.FunctJR), // F: jr $31
		20: haltWord,
	})
	if arch.ReadReg(31) != 8 {
		return false, fmt.Sprintf("want $31=8 (pc(jal)+8), got %d", arch.ReadReg(31))
	}
	if arch.ReadReg(10) != 222 {
		return false, fmt.Sprintf("want $10=222 (returned past jal), got %d", arch.ReadReg(10))
	}
	return true, ""
}

func main() {
	checks := []check{
		{"E1 straight-line addi/add/sw/lw", e1},
		{"E2 byte-store forwarding into a halfword load", e2},
		{"E3 not-taken beq falls through to the following instructions", e3},
		{"E6 jal/jr pair returns past the call site", e6},
	}

	failed := 0
	for _, c := range checks {
		ok, detail := c.run()
		status := "PASS"
		if !ok {
			status = "FAIL"
			failed++
		}
		fmt.Printf("[%s] %s", status, c.name)
		if detail != "" {
			fmt.Printf(" (%s)", detail)
		}
		fmt.Println()
	}

	if failed > 0 {
		os.Exit(1)
	}
}
