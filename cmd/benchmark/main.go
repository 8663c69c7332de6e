// Command benchmark runs the pipesim reference programs through the timing
// pipeline and checks their cycle counts and final state.
//
// Usage:
//
//	go run ./cmd/benchmark [flags]
//
// Flags:
//
//	-csv        Output results in CSV format (default: human-readable)
//	-json       Output results in JSON format
//	-core       Run only the core hazard benchmarks
//	-no-check   Skip the functional emulator cross-check
//
// Example:
//
//	# Run all benchmarks with human-readable output
//	go run ./cmd/benchmark
//
//	# Output CSV for spreadsheet comparison
//	go run ./cmd/benchmark -csv > results.csv
//
// The exit status is 1 if any benchmark misses its expected timing or
// final state.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sarchlab/pipesim/benchmarks"
)

func main() {
	// Parse flags
	csvOutput := flag.Bool("csv", false, "Output results in CSV format")
	jsonOutput := flag.Bool("json", false, "Output results in JSON format")
	coreOnly := flag.Bool("core", false, "Run only the core hazard benchmarks")
	noCheck := flag.Bool("no-check", false, "Skip the functional emulator cross-check")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	// Configure harness
	config := benchmarks.DefaultConfig()
	config.CrossCheck = !*noCheck
	config.Verbose = *verbose
	config.Output = os.Stdout

	// Create harness and add benchmarks
	harness := benchmarks.NewHarness(config)
	if *coreOnly {
		harness.AddBenchmarks(benchmarks.GetCoreBenchmarks())
	} else {
		harness.AddBenchmarks(benchmarks.GetMicrobenchmarks())
	}

	// Run benchmarks
	results := harness.RunAll()
	summary := benchmarks.Summarize(results)

	// Output results
	switch {
	case *jsonOutput:
		if err := harness.PrintJSON(results); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing JSON: %v\n", err)
			os.Exit(1)
		}
	case *csvOutput:
		harness.PrintCSV(results)
	default:
		fmt.Println("pipesim Timing Benchmark Harness")
		fmt.Println("================================")
		fmt.Printf("Cross-check: %v\n", config.CrossCheck)
		fmt.Println("")

		harness.PrintResults(results)

		fmt.Println("=== Summary ===")
		fmt.Printf("Passed:       %d/%d\n", summary.Passed, summary.TotalBenchmarks)
		fmt.Printf("Total Cycles: %d\n", summary.TotalCycles)
		fmt.Printf("Average CPI:  %.3f\n", summary.AverageCPI)
	}

	if summary.Passed != summary.TotalBenchmarks {
		os.Exit(1)
	}
}
