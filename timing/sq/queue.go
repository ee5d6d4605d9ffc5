// Package sq implements the scheduling queue: the unordered pool of
// reservation stations that wait for their operands and execute ALU
// operations out of order.
package sq

import "github.com/sarchlab/m2sim-ooo/insts"

// InstructionDetails bundles the decoded control fields an allocated
// entry needs to execute later, detached from the instruction queue
// entry that produced it.
type InstructionDetails struct {
	ALUOp    insts.ALUCtl
	Memory   bool
	JumpReg  bool
	Link     bool
	Branch   bool
	Bne      bool
	Opcode   uint32
	Funct    uint32
	Shamt    uint32
}

type entry struct {
	allocated bool
	valid1    bool
	tag1      int
	value1    uint32
	valid2    bool
	tag2      int
	value2    uint32
	robID     int
	inst      InstructionDetails
}

// Queue is the scheduling queue: SQSize reservation stations, each
// holding two tag/value operand slots and the decoded instruction
// they belong to.
type Queue struct {
	entries []entry
}

// New builds a scheduling queue with size reservation stations.
func New(size int) *Queue {
	return &Queue{entries: make([]entry, size)}
}

// HasUnallocatedEntry reports whether Allocate has a free slot.
func (q *Queue) HasUnallocatedEntry() bool {
	for _, e := range q.entries {
		if !e.allocated {
			return true
		}
	}
	return false
}

// Allocate claims the first free slot, returning its index (which
// becomes this instruction's producer rename tag), or -1 if the queue
// is full.
func (q *Queue) Allocate(tag1 int, value1 uint32, valid1 bool, tag2 int, value2 uint32, valid2 bool, inst InstructionDetails, robID int) int {
	for i := range q.entries {
		if !q.entries[i].allocated {
			q.entries[i] = entry{
				allocated: true,
				valid1:    valid1,
				tag1:      tag1,
				value1:    value1,
				valid2:    valid2,
				tag2:      tag2,
				value2:    value2,
				inst:      inst,
				robID:     robID,
			}
			return i
		}
	}
	return -1
}

// Deallocation is the payload returned by Deallocate.
type Deallocation struct {
	Value1 uint32
	Value2 uint32
	ROBID  int
	Inst   InstructionDetails
	Index  int
}

// Deallocate picks any slot whose operands are both valid, frees it,
// and returns its operands for execution. ok is false if no slot is
// ready.
func (q *Queue) Deallocate() (d Deallocation, ok bool) {
	for i := range q.entries {
		e := &q.entries[i]
		if e.allocated && e.valid1 && e.valid2 {
			d = Deallocation{Value1: e.value1, Value2: e.value2, ROBID: e.robID, Inst: e.inst, Index: i}
			*e = entry{}
			return d, true
		}
	}
	return Deallocation{}, false
}

// Update services a producer broadcast: every allocated slot with a
// matching, not-yet-valid tag on either operand receives value.
func (q *Queue) Update(tag int, value uint32) {
	for i := range q.entries {
		e := &q.entries[i]
		if !e.allocated {
			continue
		}
		if e.tag1 == tag && !e.valid1 {
			e.value1 = value
			e.valid1 = true
		}
		if e.tag2 == tag && !e.valid2 {
			e.value2 = value
			e.valid2 = true
		}
	}
}

// Flush discards every allocated entry.
func (q *Queue) Flush() {
	for i := range q.entries {
		q.entries[i] = entry{}
	}
}
