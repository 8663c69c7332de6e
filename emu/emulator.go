package emu

import (
	"errors"
	"fmt"

	"github.com/sarchlab/pipesim/insts"
)

// StepResult represents the result of executing a single instruction.
type StepResult struct {
	// Done is true once the program counter has run past the last
	// instruction.
	Done bool

	// Err is set if an error occurred during execution.
	Err error
}

// Emulator executes a program one instruction at a time with no pipeline
// timing. It is the architectural reference for the timing pipeline.
type Emulator struct {
	program []string
	regFile *RegFile
	memory  *Memory
	decoder *insts.Decoder

	// Execution units
	alu        *ALU
	lsu        *LoadStoreUnit
	branchUnit *BranchUnit

	// Execution state
	pc               int
	instructionCount uint64
	maxInstructions  uint64 // 0 means no limit
}

// EmulatorOption is a functional option for configuring the Emulator.
type EmulatorOption func(*Emulator)

// WithRegFile sets the register file the emulator operates on.
func WithRegFile(regFile *RegFile) EmulatorOption {
	return func(e *Emulator) {
		e.regFile = regFile
	}
}

// WithMemory sets the data memory the emulator operates on.
func WithMemory(memory *Memory) EmulatorOption {
	return func(e *Emulator) {
		e.memory = memory
	}
}

// WithMaxInstructions sets the maximum number of instructions to execute.
// A value of 0 means no limit.
func WithMaxInstructions(max uint64) EmulatorOption {
	return func(e *Emulator) {
		e.maxInstructions = max
	}
}

// NewEmulator creates a new emulator for the given program text. Without
// options it starts from the reference machine state: every register
// except $0 holds 1 and every memory word holds 1.
func NewEmulator(program []string, opts ...EmulatorOption) *Emulator {
	e := &Emulator{
		program: program,
		decoder: insts.NewDecoder(),
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.regFile == nil {
		e.regFile = NewRegFile(1)
	}
	if e.memory == nil {
		e.memory = NewMemory(DefaultMemoryWords, 1)
	}

	e.alu = NewALU()
	e.lsu = NewLoadStoreUnit(e.memory)
	e.branchUnit = NewBranchUnit(len(program))

	return e
}

// RegFile returns the emulator's register file.
func (e *Emulator) RegFile() *RegFile {
	return e.regFile
}

// Memory returns the emulator's memory.
func (e *Emulator) Memory() *Memory {
	return e.memory
}

// PC returns the index of the next instruction to execute.
func (e *Emulator) PC() int {
	return e.pc
}

// InstructionCount returns the number of instructions executed.
func (e *Emulator) InstructionCount() uint64 {
	return e.instructionCount
}

// Step executes a single instruction.
func (e *Emulator) Step() StepResult {
	if e.pc >= len(e.program) {
		return StepResult{Done: true}
	}

	if e.maxInstructions > 0 && e.instructionCount >= e.maxInstructions {
		return StepResult{Err: ErrMaxInstructions}
	}

	text := e.program[e.pc]
	inst, err := e.decoder.Decode(text)
	if err != nil {
		return StepResult{Err: err}
	}

	if err := e.execute(inst); err != nil {
		var addrErr *AddressError
		if errors.As(err, &addrErr) && addrErr.Inst == "" {
			addrErr.Inst = text
		}
		return StepResult{Err: err}
	}

	e.instructionCount++

	return StepResult{Done: e.pc >= len(e.program)}
}

// Run executes instructions until the program ends or an error occurs.
func (e *Emulator) Run() error {
	for {
		result := e.Step()
		if result.Err != nil {
			return result.Err
		}
		if result.Done {
			return nil
		}
	}
}

// execute runs a decoded instruction and advances the program counter.
func (e *Emulator) execute(inst insts.Instruction) error {
	next := e.pc + 1

	switch i := inst.(type) {
	case *insts.Arith:
		value := e.alu.Compute(i.Operation,
			e.regFile.ReadReg(i.Rs), e.regFile.ReadReg(i.Rt))
		e.regFile.WriteReg(i.Rd, value)

	case *insts.Branch:
		if e.alu.Equal(e.regFile.ReadReg(i.Rs), e.regFile.ReadReg(i.Rt)) {
			target, err := e.branchUnit.Target(e.pc, i.Offset)
			if err != nil {
				return err
			}
			next = target
		}

	case *insts.Load:
		addr := e.alu.EffectiveAddress(e.regFile.ReadReg(i.Base), i.Offset)
		value, err := e.lsu.Load(addr)
		if err != nil {
			return err
		}
		e.regFile.WriteReg(i.Rt, value)

	case *insts.Store:
		addr := e.alu.EffectiveAddress(e.regFile.ReadReg(i.Base), i.Offset)
		if err := e.lsu.Store(addr, e.regFile.ReadReg(i.Rt)); err != nil {
			return err
		}

	default:
		panic(fmt.Sprintf("emu: unhandled instruction %T", inst))
	}

	e.pc = next
	return nil
}
