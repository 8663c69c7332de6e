// Package emu provides the architectural state and a functional
// (non-pipelined) emulator for the MIPS subset.
package emu

import (
	"fmt"

	"github.com/sarchlab/pipesim/insts"
)

// RegFile represents the register file.
// It contains 32 general-purpose registers; R[0] is hard-wired to zero.
type RegFile struct {
	// R holds the register values. R[0] always reads as 0.
	R [insts.NumRegisters]int64
}

// NewRegFile creates a register file with every register except $0 set to
// init.
func NewRegFile(init int64) *RegFile {
	r := &RegFile{}
	for i := 1; i < insts.NumRegisters; i++ {
		r.R[i] = init
	}
	return r
}

// ReadReg reads a register value. Register 0 returns 0.
func (r *RegFile) ReadReg(reg uint8) int64 {
	checkReg(reg)
	if reg == 0 {
		return 0
	}
	return r.R[reg]
}

// WriteReg writes a value to a register. Writes to register 0 are ignored.
func (r *RegFile) WriteReg(reg uint8, value int64) {
	checkReg(reg)
	if reg == 0 {
		return
	}
	r.R[reg] = value
}

// Values returns a copy of all registers.
func (r *RegFile) Values() [insts.NumRegisters]int64 {
	v := r.R
	v[0] = 0
	return v
}

// Clone returns a deep copy of the register file.
func (r *RegFile) Clone() *RegFile {
	c := *r
	return &c
}

// The decoder rejects out-of-range indices, so reaching here with one is a bug.
func checkReg(reg uint8) {
	if int(reg) >= insts.NumRegisters {
		panic(fmt.Sprintf("emu: register index %d out of range", reg))
	}
}
