package cache

import "github.com/sarchlab/m2sim-ooo/timing/latency"

// lineWords returns the number of words a full line transfer moves,
// rounded down to whole words; line sizes are always word multiples.
func lineWords(lineSize int) int {
	return lineSize / 4
}

// Memory is the two-level cache hierarchy plus its MSHR, the sole
// memory interface the out-of-order core's load-store path talks to.
// It is non-blocking: Access enqueues a request and returns
// immediately; the caller polls by re-issuing (or inspecting the MSHR
// drain results) on subsequent cycles.
type Memory struct {
	L1      *Cache
	L2      *Cache
	backing BackingStore
	MSHR    MSHR

	l1LineSize        int
	l2LineSize        int
	mainMemoryLatency uint64
}

// NewMemory builds the two-level hierarchy described by cfg over the
// given backing store.
func NewMemory(cfg *latency.Config, backing BackingStore) *Memory {
	return &Memory{
		L1:                NewCache("L1", cfg.L1),
		L2:                NewCache("L2", cfg.L2),
		backing:           backing,
		l1LineSize:        cfg.L1.LineSize,
		l2LineSize:        cfg.L2.LineSize,
		mainMemoryLatency: cfg.MainMemoryLatency,
	}
}

// Tick advances every outstanding MSHR entry by one hierarchy step:
// try L1, then L2, each gated by its own miss-penalty countdown, then
// fill the line from main memory in the same step (no main-memory
// latency is charged). It must run exactly once per simulated cycle,
// before the five pipeline phases.
func (m *Memory) Tick() {
	for _, entry := range m.MSHR.Entries {
		if entry.Success {
			continue
		}

		var l1ok bool
		if entry.IsWrite {
			l1ok = m.L1.write(entry.Address, entry.WriteValue, entry.Byte, entry.Halfword, &entry.L1Penalty)
		} else {
			value, ok := m.L1.read(entry.Address, &entry.L1Penalty)
			if ok {
				entry.WriteValue = value
			}
			l1ok = ok
		}
		if l1ok {
			entry.Success = true
			continue
		}

		var l2ok bool
		if entry.IsWrite {
			l2ok = m.L2.write(entry.Address, entry.WriteValue, entry.Byte, entry.Halfword, &entry.L2Penalty)
		} else {
			value, ok := m.L2.read(entry.Address, &entry.L2Penalty)
			if ok {
				entry.WriteValue = value
			}
			l2ok = ok
		}
		if l2ok {
			entry.Success = true
			evicted := m.L1.replace(entry.Address, m.L2.readLine(entry.Address))
			if evicted.Valid && evicted.Dirty {
				m.L2.writeBackLine(evicted)
			}
			continue
		}

		m.fillFromMainMemory(entry.Address)
	}
}

// fillFromMainMemory loads the aligned line covering address from the
// backing store into L2, maintaining L1 inclusion: an evicted valid L2
// line is invalidated in L1, and written back to main memory if dirty.
func (m *Memory) fillFromMainMemory(address uint32) {
	lineAddr := address &^ uint32(m.l2LineSize-1)
	words := lineWords(m.l2LineSize)

	line := newLine(words)
	for i := 0; i < words; i++ {
		line.Data[i] = m.backing.ReadWord(lineAddr + uint32(i*4))
	}

	evicted := m.L2.replace(address, line)
	if evicted.Valid {
		m.L1.invalidateLine(evicted.Address)
	}
	if evicted.Valid && evicted.Dirty {
		evictedLineAddr := evicted.Address &^ uint32(m.l2LineSize-1)
		for i := 0; i < len(evicted.Data); i++ {
			m.backing.WriteWord(evictedLineAddr+uint32(i*4), evicted.Data[i])
		}
	}
}

// Access enqueues a memory request against the MSHR, implementing the
// non-blocking interface the load-store path polls: it returns
// (value, true) immediately when the result is already known without
// waiting on the hierarchy (a pure no-op access, or a store-to-load
// bypass), and (0, false) when the caller must wait for Tick to drain
// an MSHR entry: a newly created one, or the pending read a repeated
// read was coalesced into.
//
// A write always enqueues (stores are fire-and-forget into the MSHR at
// commit; the caller observes completion via the drained entry, not a
// return value). byteWidth/halfword record that write's own width, so
// the eventual cache write merges narrow stores into the resident word
// instead of clobbering it, and are ignored for a read. A read first
// checks the MSHR: a pending write to the same address bypasses
// directly to the caller (store-to-load forwarding at the memory
// interface), masked to that write's own width so a narrower pending
// store never exposes whatever garbage happened to sit in the
// high-order bits of the register value it came from; a pending read
// to the same address is coalesced rather than duplicated.
func (m *Memory) Access(address uint32, writeValue uint32, memRead, memWrite, byteWidth, halfword bool) (uint32, bool) {
	if !memRead && !memWrite {
		return 0, true
	}

	if memWrite {
		m.MSHR.Entries = append(m.MSHR.Entries, &MSHREntry{
			Address:    address,
			WriteValue: writeValue,
			IsWrite:    true,
			Byte:       byteWidth,
			Halfword:   halfword,
		})
		return 0, false
	}

	for _, entry := range m.MSHR.Entries {
		if entry.IsWrite && entry.Address == address {
			return mergeWord(0, entry.WriteValue, address, entry.Byte, entry.Halfword), true
		}
		if !entry.IsWrite && entry.Address == address {
			return 0, false
		}
	}

	m.MSHR.Entries = append(m.MSHR.Entries, &MSHREntry{
		Address: address,
		IsWrite: false,
	})
	return 0, false
}

// AccessDirect bypasses the cache hierarchy and MSHR entirely,
// reading/writing the backing store in the same cycle: the opt-level-0
// path that models no memory timing. Neither the out-of-order Engine
// nor the single-cycle emulator (which reads emu.Memory directly) calls
// it.
func (m *Memory) AccessDirect(address uint32, writeValue uint32, memRead, memWrite bool) uint32 {
	var readData uint32
	if memRead {
		readData = m.backing.ReadWord(address &^ 3)
	}
	if memWrite {
		m.backing.WriteWord(address&^3, writeValue)
	}
	return readData
}

// DrainCompleted removes every MSHR entry whose Success bit is set,
// returning them so the caller (the engine's per-cycle driver) can
// resolve pending loads in the instruction queue and load-store buffer
// and retire pending stores in the reorder buffer.
func (m *Memory) DrainCompleted() []*MSHREntry {
	var completed []*MSHREntry
	remaining := m.MSHR.Entries[:0]
	for _, entry := range m.MSHR.Entries {
		if entry.Success {
			completed = append(completed, entry)
		} else {
			remaining = append(remaining, entry)
		}
	}
	m.MSHR.Entries = remaining
	return completed
}
