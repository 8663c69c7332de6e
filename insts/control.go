package insts

import "fmt"

// Bit is a tri-state control signal value.
type Bit uint8

// Control signal values. BitX is the zero value so that an unset signal is
// never mistaken for a deasserted one.
const (
	BitX Bit = iota // Don't care
	Bit0
	Bit1
)

func (b Bit) String() string {
	switch b {
	case Bit0:
		return "0"
	case Bit1:
		return "1"
	default:
		return "X"
	}
}

// Asserted reports whether the signal is 1. Don't-care signals must never
// drive a decision, so reading one panics.
func (b Bit) Asserted() bool {
	if b == BitX {
		panic("insts: don't-care control signal read for a decision")
	}
	return b == Bit1
}

// ALUOp selects the ALU operation class.
type ALUOp uint8

// ALU operation classes.
const (
	ALUOpMem    ALUOp = 0b00 // Address computation (lw/sw)
	ALUOpBranch ALUOp = 0b01 // Compare (beq)
	ALUOpAdd    ALUOp = 0b10
	ALUOpSub    ALUOp = 0b11
)

func (a ALUOp) String() string {
	return fmt.Sprintf("%02b", uint8(a))
}

// ControlSignals is the control vector produced by the decoder and carried
// unchanged through the later latches.
type ControlSignals struct {
	RegDst   Bit
	ALUSrc   Bit
	MemtoReg Bit
	RegWrite Bit
	MemRead  Bit
	MemWrite Bit
	Branch   Bit
	ALUOp    ALUOp
}

func (c ControlSignals) String() string {
	return fmt.Sprintf(
		"RegDst=%v ALUSrc=%v MemtoReg=%v RegWrite=%v MemRead=%v MemWrite=%v Branch=%v ALUOp=%v",
		c.RegDst, c.ALUSrc, c.MemtoReg, c.RegWrite,
		c.MemRead, c.MemWrite, c.Branch, c.ALUOp)
}

var controlTable = map[Op]ControlSignals{
	OpADD: {
		RegDst: Bit1, ALUSrc: Bit0, MemtoReg: Bit0, RegWrite: Bit1,
		MemRead: Bit0, MemWrite: Bit0, Branch: Bit0, ALUOp: ALUOpAdd,
	},
	OpSUB: {
		RegDst: Bit1, ALUSrc: Bit0, MemtoReg: Bit0, RegWrite: Bit1,
		MemRead: Bit0, MemWrite: Bit0, Branch: Bit0, ALUOp: ALUOpSub,
	},
	OpLW: {
		RegDst: Bit0, ALUSrc: Bit1, MemtoReg: Bit1, RegWrite: Bit1,
		MemRead: Bit1, MemWrite: Bit0, Branch: Bit0, ALUOp: ALUOpMem,
	},
	OpSW: {
		RegDst: BitX, ALUSrc: Bit1, MemtoReg: BitX, RegWrite: Bit0,
		MemRead: Bit0, MemWrite: Bit1, Branch: Bit0, ALUOp: ALUOpMem,
	},
	OpBEQ: {
		RegDst: BitX, ALUSrc: Bit0, MemtoReg: BitX, RegWrite: Bit0,
		MemRead: Bit0, MemWrite: Bit0, Branch: Bit1, ALUOp: ALUOpBranch,
	},
}

// ControlFor returns the control signals for an opcode.
func ControlFor(op Op) ControlSignals {
	c, ok := controlTable[op]
	if !ok {
		panic(fmt.Sprintf("insts: no control signals for opcode %v", op))
	}
	return c
}
