package pipeline

import (
	"fmt"

	"github.com/sarchlab/pipesim/emu"
	"github.com/sarchlab/pipesim/insts"
)

// FetchStage handles instruction fetch from the program text.
type FetchStage struct {
	program []string
}

// NewFetchStage creates a new fetch stage.
func NewFetchStage(program []string) *FetchStage {
	return &FetchStage{program: program}
}

// Fetch reads the instruction at the given index. It returns false past the
// end of the program.
func (s *FetchStage) Fetch(pc int) (Fetched, bool) {
	if pc < 0 || pc >= len(s.program) {
		return Fetched{}, false
	}
	return Fetched{Index: pc, Text: s.program[pc]}, true
}

// DecodeStage handles instruction decode.
type DecodeStage struct {
	decoder *insts.Decoder
}

// NewDecodeStage creates a new decode stage.
func NewDecodeStage() *DecodeStage {
	return &DecodeStage{decoder: insts.NewDecoder()}
}

// Decode decodes the fetched instruction text.
func (s *DecodeStage) Decode(f Fetched) (Decoded, error) {
	inst, err := s.decoder.Decode(f.Text)
	if err != nil {
		return Decoded{}, err
	}
	return Decoded{Index: f.Index, Text: f.Text, Inst: inst}, nil
}

// ExecuteStage handles ALU operations, branch comparison and address
// calculation.
type ExecuteStage struct {
	regFile    *emu.RegFile
	alu        *emu.ALU
	branchUnit *emu.BranchUnit
	forwarding *ForwardingUnit
}

// NewExecuteStage creates a new execute stage.
func NewExecuteStage(
	regFile *emu.RegFile,
	branchUnit *emu.BranchUnit,
	forwarding *ForwardingUnit,
) *ExecuteStage {
	return &ExecuteStage{
		regFile:    regFile,
		alu:        emu.NewALU(),
		branchUnit: branchUnit,
		forwarding: forwarding,
	}
}

// Execute computes the result of d. exmem and memwb are the latch contents
// at the start of the cycle.
func (s *ExecuteStage) Execute(
	d Decoded,
	fwd ForwardingResult,
	exmem *EXMEMRegister,
	memwb *MEMWBRegister,
) (Executed, error) {
	operand := func(forward ForwardSource, reg uint8) int64 {
		return s.forwarding.Value(forward, reg, s.regFile, exmem, memwb)
	}

	out := Executed{Index: d.Index, Text: d.Text, Inst: d.Inst}

	switch inst := d.Inst.(type) {
	case *insts.Arith:
		out.Result = ArithResult{
			Dest: inst.Rd,
			Value: s.alu.Compute(inst.Operation,
				operand(fwd.ForwardA, inst.Rs), operand(fwd.ForwardB, inst.Rt)),
		}

	case *insts.Branch:
		taken := s.alu.Equal(operand(fwd.ForwardA, inst.Rs), operand(fwd.ForwardB, inst.Rt))
		outcome := BranchOutcome{Taken: taken, Target: d.Index + 1}
		if taken {
			target, err := s.branchUnit.Target(d.Index, inst.Offset)
			if err != nil {
				return Executed{}, err
			}
			outcome.Target = target
		}
		out.Result = outcome

	case *insts.Load:
		out.Result = LoadAddress{
			Dest:    inst.Rt,
			Address: s.alu.EffectiveAddress(operand(fwd.ForwardA, inst.Base), inst.Offset),
		}

	case *insts.Store:
		out.Result = StoreAddress{
			Source:  inst.Rt,
			Address: s.alu.EffectiveAddress(operand(fwd.ForwardA, inst.Base), inst.Offset),
			Value:   operand(fwd.ForwardB, inst.Rt),
		}

	default:
		panic(fmt.Sprintf("pipeline: unhandled instruction %T", d.Inst))
	}

	return out, nil
}

// MemoryStage handles memory load/store operations.
type MemoryStage struct {
	lsu *emu.LoadStoreUnit
}

// NewMemoryStage creates a new memory stage.
func NewMemoryStage(memory *emu.Memory) *MemoryStage {
	return &MemoryStage{lsu: emu.NewLoadStoreUnit(memory)}
}

// Access performs the memory read or write of e.
func (s *MemoryStage) Access(e Executed) (Accessed, error) {
	out := Accessed{Index: e.Index, Text: e.Text, Inst: e.Inst}

	switch r := e.Result.(type) {
	case LoadAddress:
		value, err := s.lsu.Load(r.Address)
		if err != nil {
			return Accessed{}, err
		}
		out.Result = LoadedData{Dest: r.Dest, Value: value}
	case StoreAddress:
		if err := s.lsu.Store(r.Address, r.Value); err != nil {
			return Accessed{}, err
		}
		out.Result = NoWriteback{}
	case ArithResult:
		out.Result = PassThrough{Dest: r.Dest, Value: r.Value}
	case BranchOutcome:
		out.Result = NoWriteback{}
	default:
		panic(fmt.Sprintf("pipeline: unhandled execute result %T", e.Result))
	}

	return out, nil
}

// WritebackStage handles register file writeback.
type WritebackStage struct {
	regFile *emu.RegFile
}

// NewWritebackStage creates a new writeback stage.
func NewWritebackStage(regFile *emu.RegFile) *WritebackStage {
	return &WritebackStage{regFile: regFile}
}

// Writeback writes the result to the register file. Writes to $0 are
// dropped by the register file.
func (s *WritebackStage) Writeback(a Accessed) {
	switch r := a.Result.(type) {
	case LoadedData:
		s.regFile.WriteReg(r.Dest, r.Value)
	case PassThrough:
		s.regFile.WriteReg(r.Dest, r.Value)
	case NoWriteback:
	default:
		panic(fmt.Sprintf("pipeline: unhandled memory result %T", a.Result))
	}
}
