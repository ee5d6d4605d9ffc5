package rob_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/m2sim-ooo/timing/rob"
)

type fakePredictor struct {
	calls []call
}

type call struct {
	pc     uint32
	taken  bool
	target uint32
}

func (f *fakePredictor) Update(pc uint32, actualTaken bool, actualTarget uint32) {
	f.calls = append(f.calls, call{pc, actualTaken, actualTarget})
}

var _ = Describe("Buffer", func() {
	var (
		b   *rob.Buffer
		pre *fakePredictor
	)

	BeforeEach(func() {
		b = rob.New(4)
		pre = &fakePredictor{}
	})

	It("reports space until full", func() {
		Expect(b.HasSpace()).To(BeTrue())
		for i := 0; i < 4; i++ {
			b.Put(0, false, false, 0, false, true, false, false, 0, 0)
		}
		Expect(b.HasSpace()).To(BeFalse())
	})

	It("only fronts an entry once it has executed and isn't pending", func() {
		idx := b.Put(1, false, false, 0x100, false, true, false, false, 0, 0)

		front, _ := b.FrontEntryWithIndex()
		Expect(front).To(Equal(-1))

		b.Update(idx, 42, false, 0, false)
		front, entry := b.FrontEntryWithIndex()
		Expect(front).To(Equal(idx))
		Expect(entry.Value).To(Equal(uint32(42)))
	})

	It("withholds the front entry while pending", func() {
		idx := b.Put(1, false, false, 0x100, true, false, false, false, 0, 0)
		b.Update(idx, 0, false, 0, false)
		b.UpdatePendingBit(idx)

		front, _ := b.FrontEntryWithIndex()
		Expect(front).To(Equal(-1))
	})

	It("trains the predictor with every committed entry's PC, jump flag, and address", func() {
		idx := b.Put(0, false, false, 0x200, false, false, true, true, 0, 0x300)
		b.Commit(pre)
		_ = idx

		Expect(pre.calls).To(HaveLen(1))
		Expect(pre.calls[0].pc).To(Equal(uint32(0x200)))
		Expect(pre.calls[0].taken).To(BeTrue())
		Expect(pre.calls[0].target).To(Equal(uint32(0x300)))
	})

	It("sets Flush when an update's jump outcome differs from dispatch time", func() {
		idx := b.Put(0, false, false, 0x400, false, false, false, false, 0, 0)
		b.Update(idx, 0, true, 0x500, true)

		_, entry := b.FrontEntryWithIndex()
		Expect(entry.Flush).To(BeTrue())
		Expect(entry.Jump).To(BeTrue())
		Expect(entry.Address).To(Equal(uint32(0x500)))
	})

	It("does not set Flush when the update's outcome matches dispatch time", func() {
		idx := b.Put(0, false, false, 0x400, false, false, true, false, 0, 0x500)
		b.Update(idx, 0, true, 0x500, true)

		_, entry := b.FrontEntryWithIndex()
		Expect(entry.Flush).To(BeFalse())
	})

	It("empties completely on Flush", func() {
		b.Put(0, false, false, 0, false, false, false, false, 0, 0)
		b.Flush()
		Expect(b.HasSpace()).To(BeTrue())
		front, _ := b.FrontEntryWithIndex()
		Expect(front).To(Equal(-1))
	})
})
