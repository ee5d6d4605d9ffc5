package cache

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/m2sim-ooo/timing/latency"
)

// This file runs in package cache (white-box) specifically to exercise
// the pseudo-LRU replacement algorithm directly, since Cache's fields
// and replace/isHit methods are unexported.
var _ = Describe("pseudo-LRU replacement", func() {
	It("evicts the least-recently-used way after a fully-associative access sequence", func() {
		// assoc=4, single set, so every address after block-alignment
		// maps to set 0 with a distinct tag.
		c := NewCache("L1", latency.CacheConfig{
			Capacity:      64,
			Associativity: 4,
			LineSize:      16,
			MissPenalty:   1,
		})

		addrs := []uint32{0x000, 0x010, 0x020, 0x030} // A, B, C, D
		for _, a := range addrs {
			c.replace(a, newLine(4))
		}

		// Re-access B, C, D (not A) to make A the LRU.
		for _, a := range addrs[1:] {
			_, hit := c.isHit(a)
			Expect(hit).To(BeTrue())
		}

		evicted := c.replace(0x040, newLine(4)) // E, should evict A
		Expect(evicted.Valid).To(BeTrue())
		Expect(evicted.Address).To(Equal(uint32(0x000)))
	})

	It("sets the accessed way's rank to assoc-1 and decrements only higher-ranked valid ways", func() {
		c := NewCache("L1", latency.CacheConfig{
			Capacity:      32,
			Associativity: 2,
			LineSize:      16,
			MissPenalty:   1,
		})

		c.replace(0x000, newLine(4)) // way 0, rank 1
		c.replace(0x010, newLine(4)) // way 1, rank 1 (after decrementing way 0 to 0)

		Expect(c.lines[0].ReplBits).To(Equal(0))
		Expect(c.lines[1].ReplBits).To(Equal(1))

		_, hit := c.isHit(0x000)
		Expect(hit).To(BeTrue())
		Expect(c.lines[0].ReplBits).To(Equal(1))
		Expect(c.lines[1].ReplBits).To(Equal(0))
	})
})
