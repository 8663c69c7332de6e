// Package pipeline provides the 5-stage pipeline implementation for timing simulation.
package pipeline

import "github.com/sarchlab/pipesim/insts"

// Latch holds at most one in-flight payload between two stages.
type Latch[T any] struct {
	payload T
	valid   bool
}

// Valid returns true if the latch holds a payload.
func (l Latch[T]) Valid() bool { return l.valid }

// Get returns the payload and whether the latch holds one.
func (l Latch[T]) Get() (T, bool) { return l.payload, l.valid }

// Set places a payload into the latch. The latch must be empty; the driver
// clears every latch it is about to fill.
func (l *Latch[T]) Set(payload T) {
	if l.valid {
		panic("pipeline: latch written while occupied")
	}
	l.payload = payload
	l.valid = true
}

// Clear resets the latch to empty state.
func (l *Latch[T]) Clear() {
	var zero T
	l.payload = zero
	l.valid = false
}

// Fetched is the IF/ID payload: raw instruction text and its position in
// the program.
type Fetched struct {
	// Index is the instruction's position in the program.
	Index int
	// Text is the trimmed instruction text.
	Text string
}

// Decoded is the ID/EX payload.
type Decoded struct {
	Index int
	Text  string
	Inst  insts.Instruction
}

// ExecResult is the outcome of the execute stage. It is one of
// ArithResult, LoadAddress, StoreAddress or BranchOutcome.
type ExecResult interface {
	isExecResult()
}

// ArithResult is the computed value of an add or sub.
type ArithResult struct {
	Dest  uint8
	Value int64
}

// LoadAddress is the effective address of a lw.
type LoadAddress struct {
	Dest    uint8
	Address int64
}

// StoreAddress is the effective address of a sw and the (forwarded) value
// of its source register.
type StoreAddress struct {
	Source  uint8
	Address int64
	Value   int64
}

// BranchOutcome is the resolution of a beq.
type BranchOutcome struct {
	Taken  bool
	Target int
}

func (ArithResult) isExecResult()   {}
func (LoadAddress) isExecResult()   {}
func (StoreAddress) isExecResult()  {}
func (BranchOutcome) isExecResult() {}

// Executed is the EX/MEM payload.
type Executed struct {
	Index  int
	Text   string
	Inst   insts.Instruction
	Result ExecResult
}

// MemResult is the outcome of the memory stage. It is one of LoadedData,
// PassThrough or NoWriteback.
type MemResult interface {
	isMemResult()
}

// LoadedData is a word read by a lw, to be written back.
type LoadedData struct {
	Dest  uint8
	Value int64
}

// PassThrough is an ALU value carried past the memory stage.
type PassThrough struct {
	Dest  uint8
	Value int64
}

// NoWriteback marks an instruction that writes no register (sw, beq).
type NoWriteback struct{}

func (LoadedData) isMemResult()  {}
func (PassThrough) isMemResult() {}
func (NoWriteback) isMemResult() {}

// Accessed is the MEM/WB payload.
type Accessed struct {
	Index  int
	Text   string
	Inst   insts.Instruction
	Result MemResult
}

// IFIDRegister holds state between Fetch and Decode stages.
type IFIDRegister = Latch[Fetched]

// IDEXRegister holds state between Decode and Execute stages.
type IDEXRegister = Latch[Decoded]

// EXMEMRegister holds state between Execute and Memory stages.
type EXMEMRegister = Latch[Executed]

// MEMWBRegister holds state between Memory and Writeback stages.
type MEMWBRegister = Latch[Accessed]

// writesRegister returns the destination register of an EX/MEM payload if
// it is a forwarding candidate: RegWrite asserted and destination not $0.
func (e Executed) writesRegister() (uint8, bool) {
	if !e.Inst.Control().RegWrite.Asserted() {
		return 0, false
	}
	dest, ok := e.Inst.Dest()
	if !ok || dest == 0 {
		return 0, false
	}
	return dest, true
}

// writesRegister is the MEM/WB counterpart of Executed.writesRegister.
func (a Accessed) writesRegister() (uint8, bool) {
	if !a.Inst.Control().RegWrite.Asserted() {
		return 0, false
	}
	dest, ok := a.Inst.Dest()
	if !ok || dest == 0 {
		return 0, false
	}
	return dest, true
}
