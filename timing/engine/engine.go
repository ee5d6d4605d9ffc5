// Package engine composes the instruction queue, predicative register
// file, reorder buffer, load/store buffer, scheduling queue, branch
// predictor, and memory subsystem into the cycle-driven out-of-order
// core.
package engine

import (
	"io"
	"log"

	"github.com/sarchlab/m2sim-ooo/emu"
	"github.com/sarchlab/m2sim-ooo/insts"
	"github.com/sarchlab/m2sim-ooo/timing/cache"
	"github.com/sarchlab/m2sim-ooo/timing/iq"
	"github.com/sarchlab/m2sim-ooo/timing/latency"
	"github.com/sarchlab/m2sim-ooo/timing/lsb"
	"github.com/sarchlab/m2sim-ooo/timing/predictor"
	"github.com/sarchlab/m2sim-ooo/timing/rename"
	"github.com/sarchlab/m2sim-ooo/timing/rob"
	"github.com/sarchlab/m2sim-ooo/timing/sq"
)

// Stats tallies cumulative engine execution counters.
type Stats struct {
	Cycles    uint64
	Fetched   uint64
	Committed uint64
	Flushes   uint64

	// Mix tallies dispatched instructions by functional class, as
	// classified by the structural latency table.
	Mix InstructionMix
}

// InstructionMix counts dispatched instructions by functional class.
type InstructionMix struct {
	ALU    uint64
	Load   uint64
	Store  uint64
	Branch uint64
	Jump   uint64
}

// Engine drives the out-of-order core one cycle at a time.
type Engine struct {
	cfg     *latency.Config
	decoder *insts.Decoder
	alu     *emu.ALU
	arch    *emu.RegFile
	memory  *cache.Memory

	iq   *iq.Queue
	pred *predictor.Predictor
	ren  *rename.RegisterFile
	rob  *rob.Buffer
	lsb  *lsb.Buffer
	sq   *sq.Queue

	currentPC uint32
	halted    bool
	logger    *log.Logger
	table     *latency.Table

	Stats Stats
}

// Option configures an Engine at construction.
type Option func(*Engine)

// WithLogger directs diagnostic output (an unsupported-opcode
// decode, a BTB dump) to logger instead of being discarded.
func WithLogger(logger *log.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// New builds an engine wired against cfg's structural parameters, a
// MIPS decoder/ALU pair, the architectural register file instructions
// eventually commit into, and the two-level cache/MSHR memory
// subsystem instructions fetch from and access.
func New(cfg *latency.Config, decoder *insts.Decoder, alu *emu.ALU, arch *emu.RegFile, memory *cache.Memory, opts ...Option) *Engine {
	e := &Engine{
		cfg:     cfg,
		decoder: decoder,
		alu:     alu,
		arch:    arch,
		memory:  memory,
		iq:      iq.New(cfg.IQSize),
		pred:    predictor.New(cfg.BHTSize, cfg.BTBSize),
		ren:     rename.New(),
		rob:     rob.New(cfg.ROBSize),
		lsb:     lsb.New(cfg.LSBSize),
		sq:      sq.New(cfg.SQSize),
		logger:  log.New(io.Discard, "", 0),
		table:   latency.NewTableWithConfig(cfg),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// DumpPredictor writes every resolved branch target buffer entry to
// the engine's logger, mirroring the source's printEntriesWithTarget
// diagnostic.
func (e *Engine) DumpPredictor() {
	e.pred.DumpEntries(e.logger.Writer())
}

// PC returns the fetch-stage program counter.
func (e *Engine) PC() uint32 { return e.currentPC }

// SetPC seeds the fetch-stage program counter, used to start a run.
func (e *Engine) SetPC(pc uint32) { e.currentPC = pc }

// Halted reports whether the decoder has dispatched the reserved halt
// opcode and every in-flight instruction ahead of it has committed.
func (e *Engine) Halted() bool { return e.halted }

// Tick advances the core by one cycle: drain completed non-blocking
// memory accesses, then run commit, memory-issue, execute,
// dispatch/rename, and fetch, each for up to cfg.Width instructions.
func (e *Engine) Tick() {
	e.Stats.Cycles++
	e.drainMemory()
	e.commitPhase()
	e.memoryPhase()
	e.executePhase()
	e.dispatchPhase()
	e.fetchPhase()
}

// drainMemory ticks the memory subsystem and resolves every MSHR
// entry that completed this cycle against the reorder buffer,
// load/store buffer, and instruction queue.
func (e *Engine) drainMemory() {
	e.memory.Tick()
	for _, entry := range e.memory.DrainCompleted() {
		if entry.IsWrite {
			idx := e.rob.Commit(e.pred)
			e.Stats.Committed++
			e.lsb.CommitByROBID(idx)
		}
		e.lsb.ResolvePendingState(entry.Address, entry.WriteValue)
		e.iq.ResolvePendingAddress(entry.Address, entry.WriteValue)
	}
}

// commitPhase retires executed, non-pending reorder buffer entries in
// order: issuing a store's memory write, writing back a destination
// register, and on a misprediction flushing every speculative
// structure and redirecting fetch.
func (e *Engine) commitPhase() {
	for i := 0; i < e.cfg.Width; i++ {
		idx, entry := e.rob.FrontEntryWithIndex()
		if idx == -1 {
			return
		}

		if entry.MemWrite {
			if _, ok := e.memory.Access(entry.Address, entry.Value, false, true, entry.Byte, entry.Halfword); !ok {
				e.rob.UpdatePendingBit(idx)
				return
			}
		}

		if entry.RegWrite {
			e.arch.Access(0, 0, uint32(entry.DestReg), true, entry.Value)
		}

		if entry.Flush {
			e.rob.Commit(e.pred)
			e.Stats.Committed++
			e.Stats.Flushes++
			e.iq.Flush()
			e.ren.SyncFromArchitectural(e.arch)
			e.rob.Flush()
			e.lsb.Flush()
			e.sq.Flush()
			e.memory.MSHR.Flush()
			e.currentPC = entry.Address
		} else {
			commitIdx := e.rob.Commit(e.pred)
			e.Stats.Committed++
			e.lsb.CommitByROBID(commitIdx)
		}
		e.arch.PC = entry.PC
	}
}

// memoryPhase issues the earliest ready load in the load/store buffer
// to the memory subsystem, applying store-to-load forwarding once the
// value is available, and broadcasts the result to every structure
// waiting on the load's rename tag.
func (e *Engine) memoryPhase() {
	for i := 0; i < e.cfg.Width; i++ {
		e.lsb.AdvanceHeadIfComplete()
		e.lsb.UpdateExecutionBit()
		e.lsb.ProcessValidMemoryInstructions(e.rob)

		load, ok := e.lsb.GetExecutableLoad()
		if !ok {
			return
		}

		readData := load.Value
		ready := load.ValidValue
		if !ready {
			if v, ok := e.memory.Access(load.Address, 0, true, false, false, false); ok {
				readData, ready = v, true
			}
		}

		if !ready {
			e.lsb.UpdatePendingBit(load.Index)
			continue
		}

		finalValue := e.lsb.ResolveStoreValue(load.Index, readData)
		finalValue = maskLoadWidth(finalValue, load.Halfword, load.Byte)

		tag := load.Index + e.cfg.LSBTagBase
		e.lsb.Update(tag, finalValue)
		e.sq.Update(tag, finalValue)
		e.ren.Update(tag, finalValue)
		e.rob.Update(load.ROBID, finalValue, false, 0, false)
	}
}

func maskLoadWidth(value uint32, halfword, byteWidth bool) uint32 {
	switch {
	case halfword:
		return value & 0xffff
	case byteWidth:
		return value & 0xff
	default:
		return value
	}
}

// executePhase deallocates every scheduling-queue entry whose
// operands have both resolved, runs it through the ALU, and resolves
// branches/indirect jumps against the reorder buffer.
func (e *Engine) executePhase() {
	for i := 0; i < e.cfg.Width; i++ {
		d, ok := e.sq.Deallocate()
		if !ok {
			return
		}

		result, zero := e.alu.Execute(d.Inst.ALUOp, d.Value1, d.Value2)
		e.ren.Update(d.Index, result)
		e.lsb.Update(d.Index, result)
		e.sq.Update(d.Index, result)

		switch {
		case d.Inst.Branch:
			taken := (!d.Inst.Bne && zero) || (d.Inst.Bne && !zero)
			if taken {
				e.rob.Update(d.ROBID, 0, true, 0, false)
			} else {
				e.rob.Update(d.ROBID, 0, false, result, false)
			}
		case d.Inst.JumpReg:
			e.rob.Update(d.ROBID, 0, true, result, true)
		case !d.Inst.Memory:
			e.rob.Update(d.ROBID, result, false, 0, false)
		}
	}
}

// dispatchPhase decodes the oldest fetched instruction, renames its
// source operands against the predicative register file, allocates a
// reorder buffer entry, a scheduling-queue reservation station, and
// (for memory operations) a load/store buffer slot, and resolves
// direct jump/taken-branch redirects against the predictor's guess.
func (e *Engine) dispatchPhase() {
	for i := 0; i < e.cfg.Width; i++ {
		if e.iq.IsEmpty() || !e.rob.HasSpace() || !e.sq.HasUnallocatedEntry() || !e.lsb.HasSpace() {
			return
		}

		iqEntry, ok := e.iq.Get()
		if !ok {
			return
		}

		instr := e.decoder.Decode(iqEntry.Instruction)
		ctrl := instr.Control
		if ctrl.Halt {
			e.halted = true
			return
		}
		if instr.Op == insts.OpUnknown {
			e.logger.Printf("unsupported opcode 0x%x at pc 0x%x", instr.Opcode, iqEntry.PC)
		}
		e.tallyMix(&instr)

		decodePC := iqEntry.PC
		predictedNextPC := iqEntry.PredictedNextPC
		taken := iqEntry.Taken

		tag1, tag2 := 0, 0
		var value1, value2 uint32
		valid1, valid2 := true, true

		switch {
		case instr.Opcode == 0:
			if ctrl.Shift {
				tag1, value1, valid1 = 0, instr.Shamt, true
			} else {
				r := e.ren.Read(instr.Rs)
				tag1, value1, valid1 = r.Tag, r.Value, r.Valid
			}
			if ctrl.ALUSrc {
				tag2, value2, valid2 = 0, instr.Imm, true
			} else {
				r := e.ren.Read(instr.Rt)
				tag2, value2, valid2 = r.Tag, r.Value, r.Valid
			}
		case ctrl.JumpReg:
			r := e.ren.Read(instr.Rs)
			tag1, value1, valid1 = r.Tag, r.Value, r.Valid
		case ctrl.Branch:
			r1 := e.ren.Read(instr.Rs)
			tag1, value1, valid1 = r1.Tag, r1.Value, r1.Valid
			r2 := e.ren.Read(instr.Rt)
			tag2, value2, valid2 = r2.Tag, r2.Value, r2.Valid
		default:
			r := e.ren.Read(instr.Rs)
			tag1, value1, valid1 = r.Tag, r.Value, r.Valid
			tag2, value2, valid2 = 0, instr.Imm, true
		}

		details := sq.InstructionDetails{
			ALUOp:   ctrl.ALUOp,
			Memory:  ctrl.MemRead || ctrl.MemWrite,
			JumpReg: ctrl.JumpReg,
			Link:    ctrl.Link,
			Branch:  ctrl.Branch,
			Bne:     ctrl.Bne,
			Opcode:  instr.Opcode,
			Funct:   instr.Funct,
			Shamt:   instr.Shamt,
		}

		addr := instr.Addr26
		switch {
		case ctrl.Jump && !ctrl.JumpReg && !ctrl.Branch:
			addr = ((decodePC + 4) & 0xf0000000) | (instr.Addr26 << 2)
			if predictedNextPC != addr {
				e.currentPC = addr
				e.iq.Flush()
			}
			taken = true
		case ctrl.Branch:
			addr = decodePC + 4 + (instr.Imm << 2)
			if taken && addr != predictedNextPC {
				e.currentPC = addr
				e.iq.Flush()
			}
		}

		destReg := int(instr.Rt)
		if ctrl.Link {
			destReg = 31
		} else if ctrl.RegDest {
			destReg = int(instr.Rd)
		}
		linkValue := uint32(0)
		if ctrl.Link {
			linkValue = decodePC + 8
		}
		savedAddress := addr
		if ctrl.JumpReg {
			savedAddress = predictedNextPC
		} else if taken {
			savedAddress = decodePC + 4
		}

		robID := e.rob.Put(destReg, ctrl.Halfword, ctrl.Byte, decodePC, ctrl.MemWrite, ctrl.RegWrite,
			taken, ctrl.Jump && !ctrl.JumpReg, linkValue, savedAddress)

		if ctrl.Jump && !ctrl.Link && !ctrl.JumpReg {
			continue
		}

		index := e.sq.Allocate(tag1, value1, valid1, tag2, value2, valid2, details, robID)

		if ctrl.MemRead {
			index = e.lsb.Put(false, index, -1, 0, ctrl.Byte, ctrl.Halfword, false, robID) + e.cfg.LSBTagBase
		} else if ctrl.MemWrite {
			r := e.ren.Read(instr.Rt)
			e.lsb.Put(r.Valid, index, r.Tag, r.Value, ctrl.Byte, ctrl.Halfword, true, robID)
		}

		if ctrl.RegWrite {
			e.ren.SetTag(uint32(destReg), index)
		}
	}
}

// fetchPhase fetches up to Width instructions per cycle, consulting
// the branch predictor for each one's next address and enqueueing a
// pending placeholder on a cache miss.
func (e *Engine) fetchPhase() {
	for i := 0; i < e.cfg.Width; i++ {
		if e.iq.IsFull() || e.halted {
			return
		}

		taken, predictedTarget := e.pred.Predict(e.currentPC)

		if word, ok := e.memory.Access(e.currentPC, 0, true, false, false, false); ok {
			e.iq.Put(word, e.currentPC, false, predictedTarget, taken)
		} else {
			e.iq.Put(0, e.currentPC, true, predictedTarget, taken)
		}
		e.Stats.Fetched++

		if taken {
			e.currentPC = predictedTarget
		} else {
			e.currentPC += 4
		}
	}
}

// tallyMix classifies a dispatched instruction by functional class and
// tallies it into Stats.Mix, using the structural latency table's
// routing classification rather than re-deriving it here.
func (e *Engine) tallyMix(instr *insts.Instruction) {
	switch {
	case e.table.IsLoadOp(instr):
		e.Stats.Mix.Load++
	case e.table.IsStoreOp(instr):
		e.Stats.Mix.Store++
	case e.table.IsBranchOp(instr):
		e.Stats.Mix.Branch++
	case e.table.IsJumpOp(instr):
		e.Stats.Mix.Jump++
	case e.table.IsALUOp(instr):
		e.Stats.Mix.ALU++
	}
}
