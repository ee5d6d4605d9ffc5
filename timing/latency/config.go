// Package latency holds the structural sizing and memory-penalty
// configuration for the out-of-order core: instruction/reorder/scheduling/
// load-store buffer depths, superscalar width, branch predictor table
// sizes, and two-level cache geometry.
package latency

import (
	"encoding/json"
	"fmt"
	"os"
)

// Config holds every structural and timing parameter the core's
// microarchitectural structures are sized from.
type Config struct {
	// Width is the superscalar width W: the maximum number of operations
	// each pipeline phase performs per cycle. Default: 5.
	Width int `json:"width"`

	// IQSize is the instruction queue's circular-buffer depth.
	IQSize int `json:"iq_size"`

	// ROBSize is the reorder buffer's in-flight instruction window.
	ROBSize int `json:"rob_size"`

	// SQSize is the number of scheduling-queue (reservation station)
	// slots; it also defines the low end of the shared rename tag space,
	// tags [0, SQSize).
	SQSize int `json:"sq_size"`

	// LSBSize is the load-store buffer's in-flight memory-op capacity;
	// it defines the high end of the shared rename tag space, tags
	// [LSBTagBase, LSBTagBase+LSBSize).
	LSBSize int `json:"lsb_size"`

	// LSBTagBase is the offset added to an LSB load slot index to form
	// its rename tag, disjoint from the SQ's [0, SQSize) range.
	LSBTagBase int `json:"lsb_tag_base"`

	// BHTSize is the number of two-bit saturating counters in the branch
	// history table.
	BHTSize int `json:"bht_size"`

	// BTBSize is the number of direct-mapped branch target buffer
	// entries.
	BTBSize int `json:"btb_size"`

	// L1 describes the first-level cache.
	L1 CacheConfig `json:"l1"`
	// L2 describes the second-level cache, inclusive of L1.
	L2 CacheConfig `json:"l2"`

	// MainMemoryLatency is stored on the memory subsystem but not
	// charged: a line fill from main memory completes in the same
	// Memory.Tick step that detects the L2 miss, so the L1 and L2 miss
	// penalties are the only memory latency modeled.
	MainMemoryLatency uint64 `json:"main_memory_latency"`
}

// CacheConfig describes one level of the cache hierarchy.
type CacheConfig struct {
	// Capacity is the cache's total size in bytes.
	Capacity int `json:"capacity"`
	// Associativity is the number of ways per set.
	Associativity int `json:"associativity"`
	// LineSize is the cache line size in bytes; must be a multiple of 4.
	LineSize int `json:"line_size"`
	// MissPenalty is the number of cycles a miss at this level costs
	// before the requested line becomes resident, independent of any
	// penalty owed by the next level down.
	MissPenalty uint64 `json:"miss_penalty"`
}

// Sets returns the number of sets in this cache configuration.
func (c CacheConfig) Sets() int {
	return c.Capacity / (c.LineSize * c.Associativity)
}

// DefaultConfig returns the reference structural and timing
// configuration: W=5, 1024-entry BHT/BTB, 32-byte lines, an 8-way
// 32KiB L1 and a 16-way 256KiB L2.
func DefaultConfig() *Config {
	return &Config{
		Width:      5,
		IQSize:     32,
		ROBSize:    64,
		SQSize:     64,
		LSBSize:    32,
		LSBTagBase: 64,
		BHTSize:    1024,
		BTBSize:    1024,
		L1: CacheConfig{
			Capacity:      32 * 1024,
			Associativity: 8,
			LineSize:      32,
			MissPenalty:   4,
		},
		L2: CacheConfig{
			Capacity:      256 * 1024,
			Associativity: 16,
			LineSize:      32,
			MissPenalty:   12,
		},
		MainMemoryLatency: 150,
	}
}

// LoadConfig reads a Config from a JSON file, starting from
// DefaultConfig so a partial file only overrides the fields it sets.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read timing config file: %w", err)
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse timing config: %w", err)
	}

	return config, nil
}

// SaveConfig writes c to path as indented JSON.
func (c *Config) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize timing config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write timing config file: %w", err)
	}

	return nil
}

// Validate checks that every structural size is positive and that the
// rename tag ranges [0, SQSize) and [LSBTagBase, LSBTagBase+LSBSize)
// are disjoint.
func (c *Config) Validate() error {
	if c.Width <= 0 {
		return fmt.Errorf("width must be > 0")
	}
	if c.IQSize <= 0 {
		return fmt.Errorf("iq_size must be > 0")
	}
	if c.ROBSize <= 0 {
		return fmt.Errorf("rob_size must be > 0")
	}
	if c.SQSize <= 0 {
		return fmt.Errorf("sq_size must be > 0")
	}
	if c.LSBSize <= 0 {
		return fmt.Errorf("lsb_size must be > 0")
	}
	if c.LSBTagBase < c.SQSize {
		return fmt.Errorf("lsb_tag_base %d must be >= sq_size %d so the rename tag ranges stay disjoint", c.LSBTagBase, c.SQSize)
	}
	if c.BHTSize <= 0 {
		return fmt.Errorf("bht_size must be > 0")
	}
	if c.BTBSize <= 0 {
		return fmt.Errorf("btb_size must be > 0")
	}
	if err := c.L1.validate("l1"); err != nil {
		return err
	}
	if err := c.L2.validate("l2"); err != nil {
		return err
	}
	return nil
}

func (c CacheConfig) validate(name string) error {
	if c.Capacity <= 0 {
		return fmt.Errorf("%s.capacity must be > 0", name)
	}
	if c.Associativity <= 0 {
		return fmt.Errorf("%s.associativity must be > 0", name)
	}
	if c.LineSize <= 0 || c.LineSize%4 != 0 {
		return fmt.Errorf("%s.line_size must be a positive multiple of 4", name)
	}
	if c.Capacity%(c.LineSize*c.Associativity) != 0 {
		return fmt.Errorf("%s.capacity must be a multiple of line_size*associativity", name)
	}
	return nil
}

// Clone returns a deep copy of c.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}
