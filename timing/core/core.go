// Package core provides the cycle-accurate out-of-order CPU core
// model. It wraps the timing engine to give callers (the CLI, tests,
// benchmarks) a small, stable surface independent of the engine's
// internal structure wiring.
package core

import (
	"github.com/sarchlab/m2sim-ooo/emu"
	"github.com/sarchlab/m2sim-ooo/insts"
	"github.com/sarchlab/m2sim-ooo/timing/cache"
	"github.com/sarchlab/m2sim-ooo/timing/engine"
	"github.com/sarchlab/m2sim-ooo/timing/latency"
)

// Stats holds performance statistics for the core.
type Stats struct {
	// Cycles is the total number of cycles simulated.
	Cycles uint64
	// Committed is the number of instructions retired.
	Committed uint64
	// Fetched is the number of instructions fetched, including those
	// later discarded by a flush.
	Fetched uint64
	// Flushes is the number of pipeline flushes (misprediction
	// rollbacks).
	Flushes uint64
	// L1 and L2 report hit/miss/eviction/writeback counts for each
	// level of the cache hierarchy.
	L1 cache.Statistics
	L2 cache.Statistics
}

// Core represents a cycle-accurate out-of-order CPU core model. It
// wraps the timing engine and the memory subsystem it drives,
// providing a simple interface for simulation drivers.
type Core struct {
	// Engine is the underlying out-of-order engine.
	Engine *engine.Engine

	regFile *emu.RegFile
	memory  *cache.Memory
}

// NewCore creates a new Core wired against cfg's structural
// parameters, backed by regFile (the architectural register file
// instructions commit into) and mem (main memory, behind the two-level
// cache hierarchy).
func NewCore(cfg *latency.Config, regFile *emu.RegFile, mem *emu.Memory) *Core {
	memory := cache.NewMemory(cfg, mem)
	return &Core{
		Engine:  engine.New(cfg, insts.NewDecoder(), emu.NewALU(), regFile, memory),
		regFile: regFile,
		memory:  memory,
	}
}

// SetPC sets the fetch-stage program counter, starting a run.
func (c *Core) SetPC(pc uint32) {
	c.Engine.SetPC(pc)
}

// Tick executes one engine cycle.
func (c *Core) Tick() {
	c.Engine.Tick()
}

// Halted returns true once the decoder has dispatched the reserved
// halt opcode and no further instructions are in flight ahead of it.
func (c *Core) Halted() bool {
	return c.Engine.Halted()
}

// Stats returns cumulative performance statistics for the core,
// including both cache levels' hit/miss counters.
func (c *Core) Stats() Stats {
	s := c.Engine.Stats
	return Stats{
		Cycles:    s.Cycles,
		Committed: s.Committed,
		Fetched:   s.Fetched,
		Flushes:   s.Flushes,
		L1:        c.memory.L1.Stats(),
		L2:        c.memory.L2.Stats(),
	}
}

// Run executes the core until it halts or maxCycles is reached,
// whichever comes first, returning the number of cycles actually run.
func (c *Core) Run(maxCycles uint64) uint64 {
	var i uint64
	for ; i < maxCycles; i++ {
		if c.Engine.Halted() {
			break
		}
		c.Tick()
	}
	return i
}
