// Package predictor implements the branch predictor: a 2-bit
// saturating-counter branch history table (BHT) combined with a
// direct-mapped branch target buffer (BTB), integrated with fetch and
// trained at commit.
package predictor

import (
	"fmt"
	"io"
)

// btbEntry is one direct-mapped BTB slot.
type btbEntry struct {
	tag    uint32
	target uint32
	valid  bool
}

// Predictor holds the BHT and BTB tables. Zero value is not usable;
// construct with New.
type Predictor struct {
	bht []uint8
	btb []btbEntry
}

// New builds a predictor with bhtSize two-bit counters (initialized to
// 1, weakly not-taken) and btbSize direct-mapped BTB entries.
func New(bhtSize, btbSize int) *Predictor {
	bht := make([]uint8, bhtSize)
	for i := range bht {
		bht[i] = 1
	}
	return &Predictor{
		bht: bht,
		btb: make([]btbEntry, btbSize),
	}
}

func (p *Predictor) bhtIndex(pc uint32) uint32 {
	return (pc >> 2) & uint32(len(p.bht)-1)
}

func (p *Predictor) btbIndex(pc uint32) uint32 {
	return (pc >> 2) % uint32(len(p.btb))
}

func pcTag(pc uint32) uint32 {
	return pc >> 2
}

// Predict returns whether pc's branch/jump is predicted taken, and the
// predicted target: the BTB's recorded target if its tag matches and
// is valid, else pc+4.
func (p *Predictor) Predict(pc uint32) (taken bool, target uint32) {
	counter := p.bht[p.bhtIndex(pc)]
	entry := p.btb[p.btbIndex(pc)]

	target = pc + 4
	if entry.valid && entry.tag == pcTag(pc) {
		target = entry.target
	}

	return counter >= 2, target
}

// Update trains the predictor from a retiring instruction's actual
// outcome. It is called once per commit for every instruction, not
// only branches; actualTaken is false and actualTarget is irrelevant
// for anything that isn't a taken branch or jump, which simply
// saturate-decrements that PC's BHT counter. The BTB is written only
// on a taken outcome, so it reflects only the last-taken target for
// any given PC.
func (p *Predictor) Update(pc uint32, actualTaken bool, actualTarget uint32) {
	idx := p.bhtIndex(pc)
	if actualTaken {
		if p.bht[idx] < 3 {
			p.bht[idx]++
		}
		btbIdx := p.btbIndex(pc)
		p.btb[btbIdx] = btbEntry{tag: pcTag(pc), target: actualTarget, valid: true}
	} else if p.bht[idx] > 0 {
		p.bht[idx]--
	}
}

// DumpEntries writes every valid BTB entry's index, tag, and target to
// w, in index order. It exists for diagnostic use behind a verbose CLI
// flag and has no effect on prediction.
func (p *Predictor) DumpEntries(w io.Writer) {
	for i, entry := range p.btb {
		if entry.valid {
			fmt.Fprintf(w, "Entry %d: Tag: %d, Target: %x\n", i, entry.tag, entry.target)
		}
	}
}
