package cache

// MSHREntry tracks one outstanding memory request as it steps through
// the cache hierarchy: L1, then L2, then main memory, one level's miss
// penalty at a time. Success is set once the requested word (for
// reads) or write has been fully serviced. Byte/Halfword record a
// write's own width, so the eventual cache write merges rather than
// overwrites, and so a read bypassing directly to a still-pending
// write (store-to-load forwarding at the memory interface) only
// exposes the bits that write actually owns.
type MSHREntry struct {
	Address    uint32
	WriteValue uint32
	IsWrite    bool
	Byte       bool
	Halfword   bool
	L1Penalty  uint64
	L2Penalty  uint64
	Success    bool
}

// MSHR is the list of in-flight memory requests. Memory.Tick advances
// every entry by one step each cycle; completed entries are drained by
// the caller (the engine's drain step, which runs before commit), not
// by the MSHR itself,
// since draining also resolves pending loads elsewhere in the core.
type MSHR struct {
	Entries []*MSHREntry
}

// Flush discards all outstanding requests, used on a pipeline flush.
func (m *MSHR) Flush() {
	m.Entries = nil
}
