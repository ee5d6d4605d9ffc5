// Package emu provides the functional (reference) MIPS-32 collaborators:
// the architectural register file, the combinational ALU, flat memory,
// and a single-cycle reference interpreter used to check the timing
// core's architectural results for equivalence.
package emu

// RegFile is the MIPS-32 architectural register file: 32 general-purpose
// registers plus the program counter. $0 is hardwired to zero, per the
// MIPS convention; WriteReg silently discards writes to it.
type RegFile struct {
	R  [32]uint32
	PC uint32
}

// ReadReg returns the value of general-purpose register i. Register 0
// always reads as zero.
func (rf *RegFile) ReadReg(i uint32) uint32 {
	if i == 0 {
		return 0
	}
	return rf.R[i]
}

// WriteReg writes value to general-purpose register i. Writes to
// register 0 are discarded.
func (rf *RegFile) WriteReg(i uint32, value uint32) {
	if i == 0 {
		return
	}
	rf.R[i] = value
}

// Access implements the architectural register file's two-read,
// one-write port named in the core's external interfaces: two register
// numbers are read combinationally every cycle, and a single write may
// occur if we is true.
func (rf *RegFile) Access(ra1, ra2 uint32, wa uint32, we bool, wd uint32) (rd1, rd2 uint32) {
	rd1 = rf.ReadReg(ra1)
	rd2 = rf.ReadReg(ra2)
	if we {
		rf.WriteReg(wa, wd)
	}
	return rd1, rd2
}
