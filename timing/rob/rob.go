// Package rob implements the reorder buffer: the in-order circular
// queue of in-flight instructions that makes commit and precise
// misprediction rollback possible.
package rob

// Entry is one in-flight instruction's committed-state-to-be.
type Entry struct {
	Execute  bool
	DestReg  int
	Address  uint32
	Value    uint32
	PC       uint32
	MemWrite bool
	RegWrite bool
	Halfword bool
	Byte     bool
	Jump     bool
	Flush    bool
	Pending  bool
}

// Predictor is the subset of predictor.Predictor the ROB needs to
// train at commit.
type Predictor interface {
	Update(pc uint32, actualTaken bool, actualTarget uint32)
}

// Buffer is the reorder buffer: a circular queue sized at construction,
// allocated at dispatch (Put) and retired in order (Commit).
type Buffer struct {
	entries []Entry
	head    int
	tail    int
	count   int
}

// New builds a reorder buffer with room for size in-flight
// instructions.
func New(size int) *Buffer {
	return &Buffer{entries: make([]Entry, size)}
}

// HasSpace reports whether Put has room for another entry.
func (b *Buffer) HasSpace() bool {
	return b.count < len(b.entries)
}

// Put allocates the next entry, returning its ROB index.
func (b *Buffer) Put(destReg int, halfword, byte bool, pc uint32, memWrite, regWrite, jump, execute bool, value, address uint32) int {
	b.entries[b.tail] = Entry{
		Execute:  execute,
		DestReg:  destReg,
		Address:  address,
		Value:    value,
		PC:       pc,
		MemWrite: memWrite,
		RegWrite: regWrite,
		Halfword: halfword,
		Byte:     byte,
		Jump:     jump,
	}
	index := b.tail
	b.tail = (b.tail + 1) % len(b.entries)
	b.count++
	return index
}

// Update services a producer broadcast (ALU result, or a branch/jump
// resolution) against entry index. If the resolved jump outcome
// differs from what dispatch recorded, Flush is set to trigger a
// pipeline flush at commit. updateAddress additionally sets the
// resolved target address; if it differs from the dispatch-time
// target on a jump, Flush is set too (a target misprediction with the
// same taken/not-taken outcome, e.g. an indirect jump).
func (b *Buffer) Update(index int, value uint32, jump bool, address uint32, updateAddress bool) {
	entry := &b.entries[index]
	entry.Value = value
	entry.Execute = true

	if entry.Jump != jump {
		entry.Jump = jump
		entry.Flush = true
	}

	if updateAddress {
		if entry.Address != address && jump {
			entry.Flush = true
		}
		entry.Address = address
	}
}

// UpdatePendingBit marks entry index as unable to complete its memory
// write this cycle, so commit halts without retiring further entries.
func (b *Buffer) UpdatePendingBit(index int) {
	if index >= 0 && index < len(b.entries) {
		b.entries[index].Pending = true
	}
}

// FrontEntryWithIndex returns the head entry and its index if it has
// executed and is not pending, or (-1, Entry{}) otherwise.
func (b *Buffer) FrontEntryWithIndex() (int, Entry) {
	if b.count > 0 && b.entries[b.head].Execute && !b.entries[b.head].Pending {
		return b.head, b.entries[b.head]
	}
	return -1, Entry{}
}

// Commit retires the head entry, training the predictor from its
// actual outcome (called for every commit, not only branches/jumps:
// a non-control instruction simply trains its PC's BHT counter toward
// not-taken), and returns the retired entry's ROB index.
func (b *Buffer) Commit(predictor Predictor) int {
	commitIdx := b.head
	pc := b.entries[b.head].PC
	predictor.Update(pc, b.entries[b.head].Jump, b.entries[b.head].Address)
	b.head = (b.head + 1) % len(b.entries)
	b.count--
	return commitIdx
}

// Flush empties the buffer, discarding every in-flight entry.
func (b *Buffer) Flush() {
	b.head, b.tail, b.count = 0, 0, 0
	for i := range b.entries {
		b.entries[i] = Entry{}
	}
}
