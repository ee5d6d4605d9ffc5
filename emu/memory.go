package emu

// MemSize is the default size, in bytes, of the flat memory image. Large
// enough for the hand-assembled programs and benchmarks this simulator
// targets without requiring a sparse/paged backing store.
const MemSize = 1 << 20

// Memory is main memory: a flat array of words indexed by address/4,
// exactly as in the reference model. It backs both the single-cycle
// reference interpreter (emu.Emulator) and, as the cache.BackingStore it
// satisfies directly, the timing core's two-level cache hierarchy.
type Memory struct {
	words []uint32
}

// NewMemory allocates a zeroed memory image of MemSize bytes.
func NewMemory() *Memory {
	return &Memory{words: make([]uint32, MemSize/4)}
}

// ReadWord reads the 32-bit word at a word-aligned address.
func (m *Memory) ReadWord(addr uint32) uint32 {
	return m.words[addr/4]
}

// WriteWord writes the 32-bit word at a word-aligned address.
func (m *Memory) WriteWord(addr uint32, value uint32) {
	m.words[addr/4] = value
}

// Read32 reads the aligned 32-bit word containing addr: the low two
// address bits are ignored, so any address is accepted but an unaligned
// one reads the word it falls in rather than bytes spanning two words.
func (m *Memory) Read32(addr uint32) uint32 {
	return m.ReadWord(addr &^ 3)
}

// Write32 writes a full 32-bit word.
func (m *Memory) Write32(addr uint32, value uint32) {
	m.WriteWord(addr&^3, value)
}

// Read16 reads a halfword from addr, which must be halfword-aligned.
func (m *Memory) Read16(addr uint32) uint16 {
	word := m.ReadWord(addr &^ 3)
	shift := (addr & 2) * 8
	return uint16(word >> shift)
}

// Write16 writes a halfword at addr, which must be halfword-aligned,
// merging it into the containing word.
func (m *Memory) Write16(addr uint32, value uint16) {
	base := addr &^ 3
	shift := (addr & 2) * 8
	word := m.ReadWord(base)
	word = (word &^ (0xffff << shift)) | (uint32(value) << shift)
	m.WriteWord(base, word)
}

// Read8 reads a single byte from addr.
func (m *Memory) Read8(addr uint32) uint8 {
	word := m.ReadWord(addr &^ 3)
	shift := (addr & 3) * 8
	return uint8(word >> shift)
}

// Write8 writes a single byte at addr, merging it into the containing
// word.
func (m *Memory) Write8(addr uint32, value uint8) {
	base := addr &^ 3
	shift := (addr & 3) * 8
	word := m.ReadWord(base)
	word = (word &^ (0xff << shift)) | (uint32(value) << shift)
	m.WriteWord(base, word)
}
