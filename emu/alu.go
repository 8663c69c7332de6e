package emu

import (
	"fmt"

	"github.com/sarchlab/pipesim/insts"
)

// ALU implements the arithmetic and compare operations. It works on operand
// values rather than register numbers so the pipeline can feed it forwarded
// values.
type ALU struct{}

// NewALU creates a new ALU.
func NewALU() *ALU {
	return &ALU{}
}

// Compute returns the result of an add or sub.
func (a *ALU) Compute(op insts.Op, rs, rt int64) int64 {
	switch op {
	case insts.OpADD:
		return rs + rt
	case insts.OpSUB:
		return rs - rt
	default:
		panic(fmt.Sprintf("emu: ALU cannot compute %v", op))
	}
}

// Equal returns the beq comparison outcome.
func (a *ALU) Equal(rs, rt int64) bool {
	return rs == rt
}

// EffectiveAddress returns base + offset. Offsets index words directly.
func (a *ALU) EffectiveAddress(base, offset int64) int64 {
	return base + offset
}
