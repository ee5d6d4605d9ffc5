// Package main provides the entry point for M2Sim-OoO, a cycle-accurate
// out-of-order MIPS-32 core simulator.
//
// For the full CLI, use: go run ./cmd/m2sim-ooo
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("M2Sim-OoO - Out-of-Order MIPS-32 Core Simulator")
	fmt.Println("")
	fmt.Println("Usage: m2sim-ooo [options] <program.bin>")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  -config       Path to timing configuration JSON file")
	fmt.Println("  -data         Path to an initial data image")
	fmt.Println("  -max-cycles   Stop after this many cycles")
	fmt.Println("  -v            Verbose diagnostic output")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/m2sim-ooo' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/m2sim-ooo' instead.")
	}
}
