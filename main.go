// Package main provides the entry point for pipesim.
// pipesim is a cycle-accurate 5-stage MIPS-subset pipeline simulator built
// on Akita.
//
// For the full CLI, use: go run ./cmd/pipesim
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("pipesim - 5-Stage MIPS Pipeline Simulator")
	fmt.Println("Built on Akita simulation framework")
	fmt.Println("")
	fmt.Println("Usage: pipesim [options] <program.txt>")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  -config    Path to machine configuration (JSON or .star)")
	fmt.Println("  -o         Write the report to a file")
	fmt.Println("  -trace     Print the latch state of every cycle (default true)")
	fmt.Println("  -check     Compare against the functional emulator")
	fmt.Println("  -v         Verbose output")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/pipesim' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/pipesim' instead.")
	}
}
