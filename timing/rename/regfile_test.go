package rename_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/m2sim-ooo/emu"
	"github.com/sarchlab/m2sim-ooo/timing/rename"
)

var _ = Describe("RegisterFile", func() {
	var rf *rename.RegisterFile

	BeforeEach(func() {
		rf = rename.New()
	})

	It("starts with every register valid", func() {
		for i := uint32(0); i < 32; i++ {
			Expect(rf.IsValid(i)).To(BeTrue())
		}
	})

	It("marks a register invalid with SetTag and fills it on a matching Update", func() {
		rf.SetTag(5, 12)
		Expect(rf.IsValid(5)).To(BeFalse())

		rf.Update(12, 99)
		Expect(rf.IsValid(5)).To(BeTrue())
		Expect(rf.Read(5).Value).To(Equal(uint32(99)))
	})

	It("is a no-op when a broadcast's tag has no waiting register", func() {
		rf.Update(999, 1)
		Expect(rf.Read(0).Valid).To(BeTrue())
	})

	It("fills only the first matching waiting register", func() {
		rf.SetTag(1, 7)
		rf.SetTag(2, 7)

		rf.Update(7, 55)

		Expect(rf.IsValid(1)).To(BeTrue())
		Expect(rf.IsValid(2)).To(BeFalse())
	})

	It("resyncs from the architectural register file on flush", func() {
		var arch emu.RegFile
		arch.WriteReg(3, 0xabc)

		rf.SetTag(3, 9)
		rf.SyncFromArchitectural(&arch)

		Expect(rf.IsValid(3)).To(BeTrue())
		Expect(rf.Read(3).Value).To(Equal(uint32(0xabc)))
	})
})
