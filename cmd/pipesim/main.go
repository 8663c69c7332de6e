// Package main provides the entry point for pipesim.
// pipesim is a cycle-accurate 5-stage MIPS-subset pipeline simulator.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/pipesim/config"
	"github.com/sarchlab/pipesim/emu"
	"github.com/sarchlab/pipesim/loader"
	"github.com/sarchlab/pipesim/report"
	"github.com/sarchlab/pipesim/timing/core"
	"github.com/sarchlab/pipesim/timing/pipeline"
)

var (
	configPath = flag.String("config", "", "Path to machine configuration (JSON or .star)")
	outputPath = flag.String("o", "", "Write the report to this file instead of stdout")
	trace      = flag.Bool("trace", true, "Print the latch state of every cycle")
	verbose    = flag.Bool("v", false, "Verbose output")
	check      = flag.Bool("check", false, "Compare the final state against the functional emulator")
)

func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: pipesim [options] <program.txt>\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	if err := run(flag.Arg(0)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(programPath string) error {
	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
	}

	prog, err := loader.Load(programPath)
	if err != nil {
		return fmt.Errorf("loading program: %w", err)
	}

	var out io.Writer = os.Stdout
	if *outputPath != "" {
		f, err := os.Create(*outputPath)
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()
		out = f
	}

	if *verbose {
		fmt.Fprintf(os.Stderr, "Loaded: %s\n", programPath)
		fmt.Fprintf(os.Stderr, "Instructions: %d\n", prog.Len())
		fmt.Fprintf(os.Stderr, "Memory words: %d\n", cfg.MemoryWords)
	}

	c, err := simulate(prog.Lines, cfg, out, *trace)
	if err != nil {
		return err
	}

	w := report.NewWriter(out)
	w.Final(c.RegFile(), c.Memory(), c.Stats().Cycles)
	if *verbose {
		fmt.Fprintf(out, "\n")
		w.Stats(c.Pipeline.Stats())
	}
	if err := w.Err(); err != nil {
		return err
	}

	if *check {
		return compare(prog.Lines, cfg, c)
	}

	return nil
}

// simulate runs program on a core driven by a serial akita engine.
func simulate(program []string, cfg *config.Config, out io.Writer, traceCycles bool) (*core.Core, error) {
	regFile, err := cfg.NewRegFile()
	if err != nil {
		return nil, err
	}
	memory, err := cfg.NewMemory()
	if err != nil {
		return nil, err
	}

	engine := sim.NewSerialEngine()
	c := core.NewCore("Core", engine, 1*sim.GHz,
		program, regFile, memory,
		pipeline.WithMaxCycles(cfg.MaxCycles))

	var w *report.Writer
	if traceCycles {
		w = report.NewWriter(out)
		c.AcceptHook(core.SnapshotHook(w.Cycle))
	}

	if err := c.Run(); err != nil {
		return nil, err
	}
	if w != nil {
		if err := w.Err(); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// compare runs program on the functional emulator and checks that it ends
// in the same architectural state as the core.
func compare(program []string, cfg *config.Config, c *core.Core) error {
	regFile, err := cfg.NewRegFile()
	if err != nil {
		return err
	}
	memory, err := cfg.NewMemory()
	if err != nil {
		return err
	}

	e := emu.NewEmulator(program,
		emu.WithRegFile(regFile),
		emu.WithMemory(memory),
		emu.WithMaxInstructions(cfg.MaxCycles))
	if err := e.Run(); err != nil {
		return fmt.Errorf("functional emulator: %w", err)
	}

	want, got := e.RegFile().Values(), c.RegFile().Values()
	for i := range want {
		if want[i] != got[i] {
			return fmt.Errorf("check failed: $%d = %d, emulator has %d", i, got[i], want[i])
		}
	}

	wantMem, gotMem := e.Memory().Words(), c.Memory().Words()
	for i := range wantMem {
		if wantMem[i] != gotMem[i] {
			return fmt.Errorf("check failed: M[%d] = %d, emulator has %d", i, gotMem[i], wantMem[i])
		}
	}

	fmt.Fprintf(os.Stderr, "Check passed: %d instructions retired\n", e.InstructionCount())
	return nil
}
