package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/m2sim-ooo/emu"
)

var _ = Describe("Memory", func() {
	var mem *emu.Memory

	BeforeEach(func() {
		mem = emu.NewMemory()
	})

	It("round-trips a word", func() {
		mem.Write32(0x100, 0xdeadbeef)
		Expect(mem.Read32(0x100)).To(Equal(uint32(0xdeadbeef)))
	})

	It("merges a halfword write into its containing word", func() {
		mem.Write32(0x200, 0x11223344)
		mem.Write16(0x202, 0xaabb)
		Expect(mem.Read32(0x200)).To(Equal(uint32(0xaabb3344)))
		Expect(mem.Read16(0x202)).To(Equal(uint16(0xaabb)))
		Expect(mem.Read16(0x200)).To(Equal(uint16(0x3344)))
	})

	It("merges a byte write into its containing word", func() {
		mem.Write32(0x300, 0x11223344)
		mem.Write8(0x301, 0xff)
		Expect(mem.Read32(0x300)).To(Equal(uint32(0x11ff3344)))
		Expect(mem.Read8(0x301)).To(Equal(uint8(0xff)))
	})
})
