// Package main provides the entry point for the out-of-order MIPS-32
// core simulator.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/sarchlab/m2sim-ooo/emu"
	"github.com/sarchlab/m2sim-ooo/insts"
	"github.com/sarchlab/m2sim-ooo/loader"
	"github.com/sarchlab/m2sim-ooo/timing/cache"
	"github.com/sarchlab/m2sim-ooo/timing/engine"
	"github.com/sarchlab/m2sim-ooo/timing/latency"
)

var (
	configPath = flag.String("config", "", "path to a timing configuration JSON file (defaults built in if unset)")
	dataPath   = flag.String("data", "", "path to an initial data image, loaded alongside the program image")
	maxCycles  = flag.Uint64("max-cycles", 10_000_000, "stop after this many cycles even if the program hasn't halted")
	verbose    = flag.Bool("v", false, "log simulator diagnostic events (unsupported opcodes, BTB dump) to stderr")
)

func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: m2sim-ooo [options] <program.bin>\n\nOptions:\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	cfg, err := loadTimingConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading timing config: %v\n", err)
		os.Exit(1)
	}

	prog, err := loadProgram(flag.Arg(0), *dataPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading program: %v\n", err)
		os.Exit(1)
	}

	mem := emu.NewMemory()
	for i, word := range prog.Words {
		mem.WriteWord(prog.TextBase+uint32(i*4), word)
	}
	for i, b := range prog.Data {
		mem.Write8(prog.DataBase+uint32(i), b)
	}

	arch := &emu.RegFile{}
	logWriter := io.Discard
	if *verbose {
		logWriter = os.Stderr
	}
	logger := log.New(logWriter, "m2sim-ooo: ", 0)

	cacheMem := cache.NewMemory(cfg, mem)
	eng := engine.New(cfg, insts.NewDecoder(), emu.NewALU(), arch, cacheMem, engine.WithLogger(logger))
	eng.SetPC(prog.EntryPoint)

	var cycles uint64
	for cycles = 0; cycles < *maxCycles; cycles++ {
		if eng.Halted() {
			break
		}
		eng.Tick()
	}

	if *verbose {
		eng.DumpPredictor()
	}

	printReport(eng, cacheMem, cycles)
}

func loadTimingConfig(path string) (*latency.Config, error) {
	if path == "" {
		return latency.DefaultConfig(), nil
	}
	cfg, err := latency.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid timing config: %w", err)
	}
	return cfg, nil
}

func loadProgram(programPath, dataPath string) (*loader.Program, error) {
	if dataPath != "" {
		return loader.LoadWithData(programPath, dataPath)
	}
	return loader.Load(programPath)
}

func printReport(eng *engine.Engine, mem *cache.Memory, cycles uint64) {
	stats := eng.Stats
	l1 := mem.L1.Stats()
	l2 := mem.L2.Stats()

	fmt.Printf("Halted: %v\n", eng.Halted())
	fmt.Printf("Cycles: %d\n", cycles)
	fmt.Printf("Instructions committed: %d\n", stats.Committed)
	fmt.Printf("Instructions fetched: %d\n", stats.Fetched)
	fmt.Printf("Flushes (mispredictions): %d\n", stats.Flushes)
	if stats.Committed > 0 {
		fmt.Printf("CPI: %.3f\n", float64(cycles)/float64(stats.Committed))
	}
	fmt.Printf("L1: %d hits, %d misses, %d evictions, %d writebacks (%.1f%% hit rate)\n",
		l1.Hits, l1.Misses, l1.Evictions, l1.Writebacks, hitRate(l1))
	fmt.Printf("L2: %d hits, %d misses, %d evictions, %d writebacks (%.1f%% hit rate)\n",
		l2.Hits, l2.Misses, l2.Evictions, l2.Writebacks, hitRate(l2))
	fmt.Printf("Instruction mix: %d alu, %d load, %d store, %d branch, %d jump\n",
		stats.Mix.ALU, stats.Mix.Load, stats.Mix.Store, stats.Mix.Branch, stats.Mix.Jump)
}

func hitRate(s cache.Statistics) float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return 100 * float64(s.Hits) / float64(total)
}
