package benchmarks

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sarchlab/pipesim/emu"
	"github.com/sarchlab/pipesim/timing/pipeline"
)

// BenchmarkResult holds the timing results for a single benchmark run.
type BenchmarkResult struct {
	// Name identifies the benchmark
	Name string `json:"name"`

	// Description explains what the benchmark measures
	Description string `json:"description"`

	// SimulatedCycles is the total cycle count from the timing simulator
	SimulatedCycles uint64 `json:"simulated_cycles"`

	// InstructionsRetired is the number of completed instructions
	InstructionsRetired uint64 `json:"instructions_retired"`

	// CPI is cycles per instruction
	CPI float64 `json:"cpi"`

	// StallCycles is the number of stall cycles
	StallCycles uint64 `json:"stall_cycles"`

	// LoadUseStalls is stalls due to a load feeding the next instruction
	LoadUseStalls uint64 `json:"load_use_stalls"`

	// BranchStalls is stalls due to beq comparands still in flight
	BranchStalls uint64 `json:"branch_stalls"`

	// DataHazards is the number of RAW data hazards resolved via forwarding
	DataHazards uint64 `json:"data_hazards"`

	// PipelineFlushes is the number of pipeline flushes
	PipelineFlushes uint64 `json:"pipeline_flushes"`

	// Squashed is the number of wrong-path instructions discarded
	Squashed uint64 `json:"squashed"`

	// Branch predictor stats
	BranchPredictions     uint64  `json:"branch_predictions,omitempty"`
	BranchCorrect         uint64  `json:"branch_correct,omitempty"`
	BranchMispredictions  uint64  `json:"branch_mispredictions,omitempty"`
	BranchAccuracyPercent float64 `json:"branch_accuracy_percent,omitempty"`

	// Err is the error that aborted the run, if any
	Err string `json:"error,omitempty"`

	// Mismatches lists every way the run differed from its expectations
	Mismatches []string `json:"mismatches,omitempty"`

	// WallTime is the actual time taken to run the simulation
	WallTime time.Duration `json:"wall_time_ns"`
}

// Passed returns true if the run completed and met every expectation.
func (r BenchmarkResult) Passed() bool {
	return r.Err == "" && len(r.Mismatches) == 0
}

// Benchmark defines a single benchmark program.
type Benchmark struct {
	// Name identifies the benchmark
	Name string

	// Description explains what the benchmark measures
	Description string

	// Setup adjusts the reference machine state before the run
	Setup func(regFile *emu.RegFile, memory *emu.Memory)

	// Program is the instruction text to execute
	Program []string

	// ExpectedCycles is the exact cycle count. Zero skips the check.
	ExpectedCycles uint64

	// ExpectedStalls and ExpectedFlushes are exact event counts.
	ExpectedStalls  uint64
	ExpectedFlushes uint64

	// ExpectedRegs and ExpectedMem list final values that must hold.
	ExpectedRegs map[uint8]int64
	ExpectedMem  map[int64]int64
}

// HarnessConfig configures the benchmark harness.
type HarnessConfig struct {
	// MaxCycles bounds each run. Zero means no limit.
	MaxCycles uint64

	// CrossCheck compares the final state against the functional emulator
	CrossCheck bool

	// Output is where to write results (default: os.Stdout)
	Output io.Writer

	// Verbose enables detailed output
	Verbose bool
}

// DefaultConfig returns a default harness configuration.
func DefaultConfig() HarnessConfig {
	return HarnessConfig{
		MaxCycles:  10000,
		CrossCheck: true,
		Output:     os.Stdout,
		Verbose:    false,
	}
}

// Harness runs timing benchmarks and reports results.
type Harness struct {
	config     HarnessConfig
	benchmarks []Benchmark
}

// NewHarness creates a new benchmark harness.
func NewHarness(config HarnessConfig) *Harness {
	if config.Output == nil {
		config.Output = os.Stdout
	}
	return &Harness{
		config:     config,
		benchmarks: []Benchmark{},
	}
}

// AddBenchmark adds a benchmark to the harness.
func (h *Harness) AddBenchmark(b Benchmark) {
	h.benchmarks = append(h.benchmarks, b)
}

// AddBenchmarks adds multiple benchmarks to the harness.
func (h *Harness) AddBenchmarks(benchmarks []Benchmark) {
	h.benchmarks = append(h.benchmarks, benchmarks...)
}

// RunAll executes all benchmarks and returns results.
func (h *Harness) RunAll() []BenchmarkResult {
	results := make([]BenchmarkResult, 0, len(h.benchmarks))

	for _, bench := range h.benchmarks {
		result := h.runBenchmark(bench)
		results = append(results, result)
	}

	return results
}

// newState builds the reference machine state for bench.
func newState(bench Benchmark) (*emu.RegFile, *emu.Memory) {
	regFile := emu.NewRegFile(1)
	memory := emu.NewMemory(emu.DefaultMemoryWords, 1)
	if bench.Setup != nil {
		bench.Setup(regFile, memory)
	}
	return regFile, memory
}

// runBenchmark executes a single benchmark.
func (h *Harness) runBenchmark(bench Benchmark) BenchmarkResult {
	regFile, memory := newState(bench)

	pipe := pipeline.NewPipeline(bench.Program, regFile, memory,
		pipeline.WithMaxCycles(h.config.MaxCycles))

	// Run simulation and measure time
	start := time.Now()
	err := pipe.Run()
	wallTime := time.Since(start)

	// Collect statistics
	stats := pipe.Stats()
	result := BenchmarkResult{
		Name:                  bench.Name,
		Description:           bench.Description,
		SimulatedCycles:       stats.Cycles,
		InstructionsRetired:   stats.Instructions,
		CPI:                   stats.CPI(),
		StallCycles:           stats.Stalls,
		LoadUseStalls:         stats.LoadUseStalls,
		BranchStalls:          stats.BranchStalls,
		DataHazards:           stats.DataHazards,
		PipelineFlushes:       stats.Flushes,
		Squashed:              stats.Squashed,
		BranchPredictions:     stats.BranchPredictions,
		BranchCorrect:         stats.BranchCorrect,
		BranchMispredictions:  stats.BranchMispredictions,
		BranchAccuracyPercent: pipeline.BranchPredictorStats{
			Predictions:    stats.BranchPredictions,
			Correct:        stats.BranchCorrect,
			Mispredictions: stats.BranchMispredictions,
		}.Accuracy(),
		WallTime: wallTime,
	}

	if err != nil {
		result.Err = err.Error()
		return result
	}

	result.Mismatches = h.verify(bench, stats, regFile, memory)

	return result
}

// verify compares a finished run against the benchmark's expectations and,
// if enabled, against the functional emulator.
func (h *Harness) verify(
	bench Benchmark,
	stats pipeline.Statistics,
	regFile *emu.RegFile,
	memory *emu.Memory,
) []string {
	var mismatches []string
	mismatch := func(format string, args ...any) {
		mismatches = append(mismatches, fmt.Sprintf(format, args...))
	}

	if bench.ExpectedCycles != 0 && stats.Cycles != bench.ExpectedCycles {
		mismatch("cycles: got %d, want %d", stats.Cycles, bench.ExpectedCycles)
	}
	if stats.Stalls != bench.ExpectedStalls {
		mismatch("stalls: got %d, want %d", stats.Stalls, bench.ExpectedStalls)
	}
	if stats.Flushes != bench.ExpectedFlushes {
		mismatch("flushes: got %d, want %d", stats.Flushes, bench.ExpectedFlushes)
	}

	for reg, want := range bench.ExpectedRegs {
		if got := regFile.ReadReg(reg); got != want {
			mismatch("$%d: got %d, want %d", reg, got, want)
		}
	}
	for addr, want := range bench.ExpectedMem {
		got, err := memory.Read(addr)
		if err != nil || got != want {
			mismatch("M[%d]: got %d, want %d", addr, got, want)
		}
	}

	if !h.config.CrossCheck {
		return mismatches
	}

	refRegs, refMem := newState(bench)
	ref := emu.NewEmulator(bench.Program,
		emu.WithRegFile(refRegs),
		emu.WithMemory(refMem),
		emu.WithMaxInstructions(h.config.MaxCycles))
	if err := ref.Run(); err != nil {
		mismatch("emulator: %v", err)
		return mismatches
	}

	if ref.InstructionCount() != stats.Instructions {
		mismatch("retired: got %d, emulator executed %d",
			stats.Instructions, ref.InstructionCount())
	}

	want, got := refRegs.Values(), regFile.Values()
	for i := range want {
		if want[i] != got[i] {
			mismatch("$%d: got %d, emulator has %d", i, got[i], want[i])
		}
	}

	wantMem, gotMem := refMem.Words(), memory.Words()
	for i := range wantMem {
		if wantMem[i] != gotMem[i] {
			mismatch("M[%d]: got %d, emulator has %d", i, gotMem[i], wantMem[i])
		}
	}

	return mismatches
}

// PrintResults outputs benchmark results in a human-readable format.
func (h *Harness) PrintResults(results []BenchmarkResult) {
	_, _ = fmt.Fprintln(h.config.Output, "=== pipesim Timing Benchmark Results ===")
	_, _ = fmt.Fprintln(h.config.Output, "")

	for _, r := range results {
		_, _ = fmt.Fprintf(h.config.Output, "Benchmark: %s\n", r.Name)
		_, _ = fmt.Fprintf(h.config.Output, "  Description: %s\n", r.Description)
		if r.Err != "" {
			_, _ = fmt.Fprintf(h.config.Output, "  Error: %s\n", r.Err)
		}
		_, _ = fmt.Fprintln(h.config.Output, "  --- Timing ---")
		_, _ = fmt.Fprintf(h.config.Output, "  Simulated Cycles:     %d\n", r.SimulatedCycles)
		_, _ = fmt.Fprintf(h.config.Output, "  Instructions Retired: %d\n", r.InstructionsRetired)
		_, _ = fmt.Fprintf(h.config.Output, "  CPI:                  %.3f\n", r.CPI)
		_, _ = fmt.Fprintf(h.config.Output, "  Stall Cycles:         %d\n", r.StallCycles)
		_, _ = fmt.Fprintf(h.config.Output, "  Load-Use Stalls:      %d\n", r.LoadUseStalls)
		_, _ = fmt.Fprintf(h.config.Output, "  Branch Stalls:        %d\n", r.BranchStalls)
		_, _ = fmt.Fprintf(h.config.Output, "  Data Hazards:         %d\n", r.DataHazards)
		_, _ = fmt.Fprintf(h.config.Output, "  Pipeline Flushes:     %d\n", r.PipelineFlushes)
		if r.Squashed > 0 {
			_, _ = fmt.Fprintf(h.config.Output, "  Squashed:             %d\n", r.Squashed)
		}

		if r.BranchPredictions > 0 {
			_, _ = fmt.Fprintln(h.config.Output, "  --- Branch Predictor ---")
			_, _ = fmt.Fprintf(h.config.Output, "  Predictions:     %d\n", r.BranchPredictions)
			_, _ = fmt.Fprintf(h.config.Output, "  Correct:         %d\n", r.BranchCorrect)
			_, _ = fmt.Fprintf(h.config.Output, "  Mispredictions:  %d\n", r.BranchMispredictions)
			_, _ = fmt.Fprintf(h.config.Output, "  Accuracy:        %.1f%%\n", r.BranchAccuracyPercent)
		}

		if h.config.Verbose || len(r.Mismatches) > 0 {
			_, _ = fmt.Fprintln(h.config.Output, "  --- Verification ---")
			if len(r.Mismatches) == 0 {
				_, _ = fmt.Fprintln(h.config.Output, "  OK")
			}
			for _, m := range r.Mismatches {
				_, _ = fmt.Fprintf(h.config.Output, "  MISMATCH %s\n", m)
			}
		}

		_, _ = fmt.Fprintf(h.config.Output, "  Wall Time: %v\n", r.WallTime)
		_, _ = fmt.Fprintln(h.config.Output, "")
	}
}

// PrintCSV outputs benchmark results in CSV format for easy comparison.
func (h *Harness) PrintCSV(results []BenchmarkResult) {
	_, _ = fmt.Fprintln(h.config.Output,
		"name,cycles,instructions,cpi,stalls,load_use_stalls,branch_stalls,data_hazards,flushes,squashed,passed")

	for _, r := range results {
		_, _ = fmt.Fprintf(h.config.Output, "%s,%d,%d,%.3f,%d,%d,%d,%d,%d,%d,%t\n",
			r.Name,
			r.SimulatedCycles,
			r.InstructionsRetired,
			r.CPI,
			r.StallCycles,
			r.LoadUseStalls,
			r.BranchStalls,
			r.DataHazards,
			r.PipelineFlushes,
			r.Squashed,
			r.Passed(),
		)
	}
}

// BenchmarkReport is the complete output format for benchmark results.
type BenchmarkReport struct {
	// Metadata about the benchmark run
	Metadata ReportMetadata `json:"metadata"`

	// Results is the list of individual benchmark results
	Results []BenchmarkResult `json:"results"`

	// Summary contains aggregate statistics
	Summary ReportSummary `json:"summary"`
}

// ReportMetadata contains information about the benchmark run.
type ReportMetadata struct {
	// Timestamp when the benchmark was run
	Timestamp string `json:"timestamp"`

	// MaxCycles is the per-run cycle limit
	MaxCycles uint64 `json:"max_cycles"`

	// CrossCheck tells whether results were checked against the emulator
	CrossCheck bool `json:"cross_check"`
}

// ReportSummary contains aggregate statistics across all benchmarks.
type ReportSummary struct {
	// TotalBenchmarks is the number of benchmarks run
	TotalBenchmarks int `json:"total_benchmarks"`

	// Passed is the number of benchmarks that met every expectation
	Passed int `json:"passed"`

	// TotalCycles is the sum of all simulated cycles
	TotalCycles uint64 `json:"total_cycles"`

	// TotalInstructions is the sum of all instructions retired
	TotalInstructions uint64 `json:"total_instructions"`

	// AverageCPI is the average cycles per instruction
	AverageCPI float64 `json:"average_cpi"`

	// TotalWallTime is the total wall clock time for all benchmarks
	TotalWallTime time.Duration `json:"total_wall_time_ns"`
}

// Summarize aggregates results.
func Summarize(results []BenchmarkResult) ReportSummary {
	s := ReportSummary{TotalBenchmarks: len(results)}
	for _, r := range results {
		s.TotalCycles += r.SimulatedCycles
		s.TotalInstructions += r.InstructionsRetired
		s.TotalWallTime += r.WallTime
		if r.Passed() {
			s.Passed++
		}
	}

	if s.TotalInstructions > 0 {
		s.AverageCPI = float64(s.TotalCycles) / float64(s.TotalInstructions)
	}

	return s
}

// PrintJSON outputs benchmark results in JSON format for automated comparison.
func (h *Harness) PrintJSON(results []BenchmarkResult) error {
	report := BenchmarkReport{
		Metadata: ReportMetadata{
			Timestamp:  time.Now().UTC().Format(time.RFC3339),
			MaxCycles:  h.config.MaxCycles,
			CrossCheck: h.config.CrossCheck,
		},
		Results: results,
		Summary: Summarize(results),
	}

	encoder := json.NewEncoder(h.config.Output)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}
