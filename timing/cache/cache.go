// Package cache implements the two-level, set-associative, write-back
// cache hierarchy and its non-blocking miss handling (MSHR) that feeds
// the out-of-order core's load-store path.
package cache

import "github.com/sarchlab/m2sim-ooo/timing/latency"

// Line is one cache line: validity/dirty state, its tag and
// block-aligned address, a pseudo-LRU rank in [0, assoc-1], and its
// data words.
type Line struct {
	Valid    bool
	Dirty    bool
	Tag      uint32
	Address  uint32
	ReplBits int
	Data     []uint32
}

func newLine(words int) Line {
	return Line{Data: make([]uint32, words)}
}

// Cache is one level of a set-associative, write-back cache with
// per-line pseudo-LRU replacement tracked via ReplBits.
type Cache struct {
	name        string
	assoc       int
	sets        int
	lineSize    int // bytes
	missPenalty uint64
	lines       []Line // sets*assoc, row-major by set
	statistics  Statistics
}

// Statistics counts cache-level hit/miss/eviction/writeback events.
type Statistics struct {
	Hits       uint64
	Misses     uint64
	Evictions  uint64
	Writebacks uint64
}

// NewCache builds one cache level from a latency.CacheConfig.
func NewCache(name string, cfg latency.CacheConfig) *Cache {
	sets := cfg.Sets()
	c := &Cache{
		name:        name,
		assoc:       cfg.Associativity,
		sets:        sets,
		lineSize:    cfg.LineSize,
		missPenalty: cfg.MissPenalty,
		lines:       make([]Line, sets*cfg.Associativity),
	}
	words := cfg.LineSize / 4
	for i := range c.lines {
		c.lines[i] = newLine(words)
	}
	return c
}

// Stats returns the cache's accumulated statistics.
func (c *Cache) Stats() Statistics {
	return c.statistics
}

func (c *Cache) index(address uint32) int {
	return int(address/uint32(c.lineSize)) % c.sets
}

func (c *Cache) tag(address uint32) uint32 {
	return address / uint32(c.lineSize) / uint32(c.sets)
}

func (c *Cache) blockAddress(address uint32) uint32 {
	return address &^ uint32(c.lineSize-1)
}

func (c *Cache) offsetWords(address uint32) int {
	return int(address%uint32(c.lineSize)) / 4
}

// isHit looks for address in the set it maps to. On a hit it updates
// the pseudo-LRU ranks per the reference algorithm: the accessed way's
// rank becomes assoc-1, and every other valid way whose rank was
// higher is decremented, preserving strict LRU ordering.
func (c *Cache) isHit(address uint32) (way int, hit bool) {
	idx := c.index(address)
	tag := c.tag(address)
	base := idx * c.assoc

	for w := 0; w < c.assoc; w++ {
		if c.lines[base+w].Valid && c.lines[base+w].Tag == tag {
			c.updateReplacementBits(idx, w)
			return w, true
		}
	}
	return 0, false
}

func (c *Cache) updateReplacementBits(idx, way int) {
	base := idx * c.assoc
	curRepl := c.lines[base+way].ReplBits
	for w := 0; w < c.assoc; w++ {
		if c.lines[base+w].Valid && c.lines[base+w].ReplBits > curRepl {
			c.lines[base+w].ReplBits--
		}
	}
	c.lines[base+way].ReplBits = c.assoc - 1
}

// read attempts to service a read against this level's own miss
// penalty counter (L1_penalty or L2_penalty in the MSHR entry,
// selected by the caller). It returns (value, true) once the line is
// resident, or (0, false) while the miss penalty is still owed or
// being newly charged.
func (c *Cache) read(address uint32, penalty *uint64) (uint32, bool) {
	if *penalty > 0 {
		*penalty--
		return 0, false
	}

	way, hit := c.isHit(address)
	if !hit {
		*penalty = c.missPenalty - 1
		c.statistics.Misses++
		return 0, false
	}

	c.statistics.Hits++
	idx := c.index(address)
	line := c.lines[idx*c.assoc+way]
	return line.Data[c.offsetWords(address)], true
}

// write mirrors read for a store, marking the line dirty on a hit. A
// byte or halfword store is merged into the resident word rather than
// overwriting it outright, so an earlier narrow store to a different
// lane of the same word survives a later one (spec.md §9's L1
// write-back open question, resolved in favor of merging at the point
// the store actually lands in the cache rather than restricting the
// cache to word-granularity writes: by the time write reaches a hit,
// the word it merges against is, by construction, the line's own
// freshly-resident data).
func (c *Cache) write(address uint32, value uint32, byteWidth, halfword bool, penalty *uint64) bool {
	if *penalty > 0 {
		*penalty--
		return false
	}

	way, hit := c.isHit(address)
	if !hit {
		*penalty = c.missPenalty - 1
		c.statistics.Misses++
		return false
	}

	c.statistics.Hits++
	idx := c.index(address)
	loc := idx*c.assoc + way
	offset := c.offsetWords(address)
	c.lines[loc].Data[offset] = mergeWord(c.lines[loc].Data[offset], value, address, byteWidth, halfword)
	c.lines[loc].Dirty = true
	return true
}

// mergeWord overlays value's relevant bytes onto original at the lane
// address's low bits select, leaving the rest of the word untouched;
// a word-width store overwrites outright. Shift conventions match
// emu.Memory's Read8/Write8/Read16/Write16: (address&3)*8 for a byte,
// (address&2)*8 for a halfword.
func mergeWord(original, value, address uint32, byteWidth, halfword bool) uint32 {
	switch {
	case byteWidth:
		shift := (address & 3) * 8
		return (original &^ (0xFF << shift)) | ((value & 0xFF) << shift)
	case halfword:
		shift := (address & 2) * 8
		return (original &^ (0xFFFF << shift)) | ((value & 0xFFFF) << shift)
	default:
		return value
	}
}

// readLine returns the resident line covering address. The caller
// must already know a valid matching line exists.
func (c *Cache) readLine(address uint32) Line {
	idx := c.index(address)
	tag := c.tag(address)
	base := idx * c.assoc
	for w := 0; w < c.assoc; w++ {
		if c.lines[base+w].Valid && c.lines[base+w].Tag == tag {
			return c.lines[base+w]
		}
	}
	return Line{}
}

// writeBackLine overlays an evicted line's data back into the
// (now-resident, by construction) line at the same address, marking
// it dirty. The caller must already know a valid matching line exists.
func (c *Cache) writeBackLine(evicted Line) {
	idx := c.index(evicted.Address)
	tag := c.tag(evicted.Address)
	base := idx * c.assoc
	for w := 0; w < c.assoc; w++ {
		if c.lines[base+w].Valid && c.lines[base+w].Tag == tag {
			copy(c.lines[base+w].Data, evicted.Data)
			c.lines[base+w].Dirty = true
			return
		}
	}
}

// replace installs newLine (already populated with data) at the set
// address maps to, evicting the pseudo-LRU victim (rank 0, or any
// invalid way) if necessary. If newLine's block is already resident,
// replace is a no-op beyond refreshing its replacement rank.
func (c *Cache) replace(address uint32, newLine Line) (evicted Line) {
	idx := c.index(address)
	newLine.Address = address
	newLine.Tag = c.tag(address)
	newLine.Valid = true
	newLine.ReplBits = c.assoc - 1
	base := idx * c.assoc

	for w := 0; w < c.assoc; w++ {
		if c.lines[base+w].Valid && c.lines[base+w].Tag == newLine.Tag {
			c.updateReplacementBits(idx, w)
			return Line{}
		}
	}

	for w := 0; w < c.assoc; w++ {
		if !c.lines[base+w].Valid || c.lines[base+w].ReplBits == 0 {
			evicted = c.lines[base+w]
			if evicted.Valid {
				c.statistics.Evictions++
			}
			c.lines[base+w] = newLine
			return evicted
		}
		c.lines[base+w].ReplBits--
	}
	return Line{}
}

// invalidateLine invalidates the resident line matching address, if
// any, used to maintain L1-inclusive-in-L2 when L2 evicts a line.
func (c *Cache) invalidateLine(address uint32) {
	idx := c.index(address)
	tag := c.tag(address)
	base := idx * c.assoc
	for w := 0; w < c.assoc; w++ {
		if c.lines[base+w].Valid && c.lines[base+w].Tag == tag {
			c.lines[base+w].Valid = false
		}
	}
}
