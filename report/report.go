// Package report writes simulation traces and final machine state in the
// text format of the reference traces.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/sarchlab/pipesim/emu"
	"github.com/sarchlab/pipesim/insts"
	"github.com/sarchlab/pipesim/timing/pipeline"
)

// Writer formats pipeline snapshots and final state.
type Writer struct {
	w   io.Writer
	err error
}

// NewWriter creates a Writer on w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Err returns the first write error, if any.
func (r *Writer) Err() error {
	return r.err
}

func (r *Writer) printf(format string, args ...any) {
	if r.err != nil {
		return
	}
	_, r.err = fmt.Fprintf(r.w, format, args...)
}

// Cycle writes the latch state of one cycle.
func (r *Writer) Cycle(s pipeline.Snapshot) {
	r.printf("Cycle %d Pipeline State:\n", s.Cycle)

	if f, ok := s.IFID.Get(); ok {
		r.printf("  IF/ID: %s\n", f.Text)
	} else {
		r.printf("  IF/ID: None\n")
	}

	if d, ok := s.IDEX.Get(); ok {
		r.printf("  ID/EX: (op=%v) | Signals: %s\n", d.Inst.Op(), idexSignals(d.Inst.Control()))
	} else {
		r.printf("  ID/EX: None | Signals: %s\n", idexSignals(insts.ControlSignals{}))
	}

	if e, ok := s.EXMEM.Get(); ok {
		r.printf("  EX/MEM: (op=%v) | Signals: %s\n", e.Inst.Op(), exmemSignals(e.Inst.Control()))
	} else {
		r.printf("  EX/MEM: None | Signals: %s\n", exmemSignals(insts.ControlSignals{}))
	}

	if a, ok := s.MEMWB.Get(); ok {
		r.printf("  MEM/WB: (op=%v) | Signals: %s\n", a.Inst.Op(), memwbSignals(a.Inst.Control()))
	} else {
		r.printf("  MEM/WB: None | Signals: %s\n", memwbSignals(insts.ControlSignals{}))
	}

	switch {
	case s.Flushed:
		r.printf("  Pipeline Flushed: Control Hazard Detected\n")
	case s.Stall != pipeline.StallNone:
		r.printf("  Pipeline Stalled: Data Hazard Detected (%v)\n", s.Stall)
	}

	r.printf("\n")
}

// Final writes the final register file, memory contents and cycle count.
func (r *Writer) Final(regFile *emu.RegFile, memory *emu.Memory, cycles uint64) {
	regs := regFile.Values()
	fields := make([]string, 0, len(regs))
	for i, v := range regs {
		fields = append(fields, fmt.Sprintf("$%d=%d", i, v))
	}
	r.printf("Final Register Values:\n%s\n\n", strings.Join(fields, " "))

	words := memory.Words()
	fields = fields[:0]
	for i, v := range words {
		fields = append(fields, fmt.Sprintf("M[%d]=%d", i, v))
	}
	r.printf("Final Memory Values:\n%s\n\n", strings.Join(fields, " "))

	r.printf("Total Cycles: %d\n", cycles)
}

// Stats writes pipeline statistics.
func (r *Writer) Stats(stats pipeline.Statistics) {
	r.printf("Total Instructions: %d\n", stats.Instructions)
	r.printf("Total Cycles: %d\n", stats.Cycles)
	r.printf("CPI: %.2f\n", stats.CPI())
	r.printf("\n")
	r.printf("Pipeline Events:\n")
	r.printf("  Stalls:       %d (load-use %d, branch %d)\n",
		stats.Stalls, stats.LoadUseStalls, stats.BranchStalls)
	r.printf("  Flushes:      %d\n", stats.Flushes)
	r.printf("  Squashed:     %d\n", stats.Squashed)
	r.printf("  Forwarded:    %d\n", stats.DataHazards)
	r.printf("  Branches:     %d (taken %d)\n",
		stats.BranchPredictions, stats.BranchMispredictions)
}

func idexSignals(c insts.ControlSignals) string {
	return fmt.Sprintf(
		"RegDst=%v, ALUSrc=%v, MemRead=%v, MemWrite=%v, MemtoReg=%v, RegWrite=%v, Branch=%v, ALUOp=%s",
		c.RegDst, c.ALUSrc, c.MemRead, c.MemWrite, c.MemtoReg, c.RegWrite, c.Branch, aluOp(c))
}

func exmemSignals(c insts.ControlSignals) string {
	return fmt.Sprintf("Branch=%v, MemRead=%v, MemWrite=%v, RegWrite=%v, MemtoReg=%v",
		c.Branch, c.MemRead, c.MemWrite, c.RegWrite, c.MemtoReg)
}

func memwbSignals(c insts.ControlSignals) string {
	return fmt.Sprintf("RegWrite=%v, MemtoReg=%v", c.RegWrite, c.MemtoReg)
}

// aluOp prints X for the empty latch, whose signals are all don't-care.
func aluOp(c insts.ControlSignals) string {
	if c == (insts.ControlSignals{}) {
		return "X"
	}
	return c.ALUOp.String()
}
