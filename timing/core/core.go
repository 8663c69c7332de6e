// Package core provides the cycle-accurate CPU core model.
// It wraps the pipeline as an Akita ticking component so that a simulation
// engine drives it one cycle per tick.
package core

import (
	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/pipesim/emu"
	"github.com/sarchlab/pipesim/timing/pipeline"
)

// HookPosCycle marks the end of a simulated cycle. The hook item is the
// pipeline.Snapshot of that cycle.
var HookPosCycle = &sim.HookPos{Name: "Cycle"}

// HookPosDrained marks the call that found the pipeline empty. The hook item
// is the final pipeline.Statistics.
var HookPosDrained = &sim.HookPos{Name: "Drained"}

// Stats holds performance statistics for the core.
type Stats struct {
	// Cycles is the total number of cycles simulated.
	Cycles uint64
	// Instructions is the number of instructions retired.
	Instructions uint64
	// Stalls is the number of stall cycles.
	Stalls uint64
	// Flushes is the number of pipeline flushes.
	Flushes uint64
}

// Core represents a cycle-accurate CPU core model.
// It wraps a 5-stage pipeline and provides a simple interface for simulation.
type Core struct {
	*sim.TickingComponent

	// Pipeline is the underlying 5-stage pipeline.
	Pipeline *pipeline.Pipeline

	engine sim.Engine

	// Shared resources
	regFile *emu.RegFile
	memory  *emu.Memory

	drained bool
	err     error
}

// NewCore creates a new Core running program on the given register file and
// memory. The core registers itself with engine and ticks at freq.
func NewCore(
	name string,
	engine sim.Engine,
	freq sim.Freq,
	program []string,
	regFile *emu.RegFile,
	memory *emu.Memory,
	opts ...pipeline.PipelineOption,
) *Core {
	c := &Core{
		Pipeline: pipeline.NewPipeline(program, regFile, memory, opts...),
		engine:   engine,
		regFile:  regFile,
		memory:   memory,
	}
	c.TickingComponent = sim.NewTickingComponent(name, engine, freq, c)

	return c
}

// Tick executes one pipeline cycle. It returns false once the pipeline has
// drained or failed, which stops the engine from scheduling further ticks.
func (c *Core) Tick() bool {
	done, err := c.Pipeline.Tick()
	if err != nil {
		c.err = err
		return false
	}

	if done {
		c.drained = true
		c.InvokeHook(sim.HookCtx{
			Domain: c,
			Pos:    HookPosDrained,
			Item:   c.Pipeline.Stats(),
		})
		return false
	}

	c.InvokeHook(sim.HookCtx{
		Domain: c,
		Pos:    HookPosCycle,
		Item:   c.Pipeline.Snapshot(),
	})

	return true
}

// Run schedules the first tick and runs the engine until the pipeline
// drains or fails.
func (c *Core) Run() error {
	c.TickLater()

	if err := c.engine.Run(); err != nil {
		return err
	}

	return c.err
}

// Drained returns true once the pipeline has retired every instruction.
func (c *Core) Drained() bool {
	return c.drained
}

// Err returns the error that stopped the core, if any.
func (c *Core) Err() error {
	return c.err
}

// RegFile returns the register file.
func (c *Core) RegFile() *emu.RegFile {
	return c.regFile
}

// Memory returns the data memory.
func (c *Core) Memory() *emu.Memory {
	return c.memory
}

// Stats returns performance statistics for the core.
func (c *Core) Stats() Stats {
	pipeStats := c.Pipeline.Stats()
	return Stats{
		Cycles:       pipeStats.Cycles,
		Instructions: pipeStats.Instructions,
		Stalls:       pipeStats.Stalls,
		Flushes:      pipeStats.Flushes,
	}
}

// SnapshotHook adapts a function into a sim.Hook that receives the snapshot
// of every simulated cycle.
type SnapshotHook func(pipeline.Snapshot)

// Func implements sim.Hook.
func (h SnapshotHook) Func(ctx sim.HookCtx) {
	if ctx.Pos != HookPosCycle {
		return
	}
	h(ctx.Item.(pipeline.Snapshot))
}
