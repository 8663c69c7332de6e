package pipeline

import (
	"fmt"
	"slices"

	"github.com/sarchlab/pipesim/emu"
	"github.com/sarchlab/pipesim/insts"
)

// ForwardSource indicates where a forwarded value should come from.
type ForwardSource int

const (
	// ForwardNone means no forwarding needed - use register file value.
	ForwardNone ForwardSource = iota
	// ForwardFromEXMEM means forward from EX/MEM pipeline register.
	ForwardFromEXMEM
	// ForwardFromMEMWB means forward from MEM/WB pipeline register.
	ForwardFromMEMWB
)

func (s ForwardSource) String() string {
	switch s {
	case ForwardFromEXMEM:
		return "10"
	case ForwardFromMEMWB:
		return "01"
	default:
		return "00"
	}
}

// ForwardingResult contains forwarding decisions for both source operands.
type ForwardingResult struct {
	// ForwardA selects the first source operand (rs, or the base of lw/sw).
	ForwardA ForwardSource
	// ForwardB selects the second source operand (rt, or the stored
	// register of sw).
	ForwardB ForwardSource
}

// Any returns true if either operand is forwarded.
func (r ForwardingResult) Any() bool {
	return r.ForwardA != ForwardNone || r.ForwardB != ForwardNone
}

// ForwardingUnit computes bypass selectors for the instruction in EX.
type ForwardingUnit struct{}

// NewForwardingUnit creates a new forwarding unit.
func NewForwardingUnit() *ForwardingUnit {
	return &ForwardingUnit{}
}

// Detect determines the forwarding source of each source operand of inst.
// EX/MEM has precedence over MEM/WB because it holds the more recent value.
func (u *ForwardingUnit) Detect(
	inst insts.Instruction,
	exmem *EXMEMRegister,
	memwb *MEMWBRegister,
) ForwardingResult {
	result := ForwardingResult{}
	sources := inst.Sources()

	if len(sources) > 0 {
		result.ForwardA = u.detectForwardForReg(sources[0], exmem, memwb)
	}
	if len(sources) > 1 {
		result.ForwardB = u.detectForwardForReg(sources[1], exmem, memwb)
	}

	return result
}

// detectForwardForReg checks if a specific register needs forwarding.
func (u *ForwardingUnit) detectForwardForReg(
	reg uint8,
	exmem *EXMEMRegister,
	memwb *MEMWBRegister,
) ForwardSource {
	// $0 always reads as 0, no need to forward
	if reg == 0 {
		return ForwardNone
	}

	if e, ok := exmem.Get(); ok {
		if dest, writes := e.writesRegister(); writes && dest == reg {
			return ForwardFromEXMEM
		}
	}

	if a, ok := memwb.Get(); ok {
		if dest, writes := a.writesRegister(); writes && dest == reg {
			return ForwardFromMEMWB
		}
	}

	return ForwardNone
}

// Value returns the operand value for reg based on the forwarding decision.
func (u *ForwardingUnit) Value(
	forward ForwardSource,
	reg uint8,
	regFile *emu.RegFile,
	exmem *EXMEMRegister,
	memwb *MEMWBRegister,
) int64 {
	switch forward {
	case ForwardFromEXMEM:
		e, _ := exmem.Get()
		alu, ok := e.Result.(ArithResult)
		if !ok {
			// The hazard unit stalls every consumer of an in-flight load.
			panic(fmt.Sprintf("pipeline: forwarding $%d from %T in EX/MEM", reg, e.Result))
		}
		return alu.Value
	case ForwardFromMEMWB:
		a, _ := memwb.Get()
		switch r := a.Result.(type) {
		case LoadedData:
			return r.Value
		case PassThrough:
			return r.Value
		default:
			panic(fmt.Sprintf("pipeline: forwarding $%d from %T in MEM/WB", reg, a.Result))
		}
	default:
		return regFile.ReadReg(reg)
	}
}

// StallReason tells why the hazard unit stalled the front of the pipeline.
type StallReason int

const (
	// StallNone means the pipeline advances normally.
	StallNone StallReason = iota
	// StallLoadUse means the instruction in ID reads the destination of the
	// load in EX.
	StallLoadUse
	// StallBranchOperand means a beq in ID compares a register still being
	// produced two stages ahead.
	StallBranchOperand
)

func (r StallReason) String() string {
	switch r {
	case StallLoadUse:
		return "load-use"
	case StallBranchOperand:
		return "branch-operand"
	default:
		return "none"
	}
}

// HazardUnit detects data hazards that forwarding cannot cover.
type HazardUnit struct{}

// NewHazardUnit creates a new hazard detection unit.
func NewHazardUnit() *HazardUnit {
	return &HazardUnit{}
}

// DetectStall decides whether next, the instruction waiting in IF/ID, must
// be held for a cycle given the instructions in ID/EX and EX/MEM.
func (h *HazardUnit) DetectStall(
	next insts.Instruction,
	idex *IDEXRegister,
	exmem *EXMEMRegister,
) StallReason {
	sources := next.Sources()

	if d, ok := idex.Get(); ok && d.Inst.Control().MemRead.Asserted() {
		if h.reads(sources, d.Inst) {
			return StallLoadUse
		}
	}

	if !next.Control().Branch.Asserted() {
		return StallNone
	}

	// beq needs its comparands one stage earlier than other consumers.
	if d, ok := idex.Get(); ok && isALUProducer(d.Inst) && h.reads(sources, d.Inst) {
		return StallBranchOperand
	}

	if e, ok := exmem.Get(); ok && e.Inst.Control().MemRead.Asserted() && h.reads(sources, e.Inst) {
		return StallBranchOperand
	}

	return StallNone
}

// reads returns true if sources contains the non-zero destination of producer.
func (h *HazardUnit) reads(sources []uint8, producer insts.Instruction) bool {
	dest, ok := producer.Dest()
	if !ok || dest == 0 {
		return false
	}
	return slices.Contains(sources, dest)
}

// isALUProducer returns true for instructions whose result comes from the
// ALU rather than memory.
func isALUProducer(inst insts.Instruction) bool {
	c := inst.Control()
	return c.RegWrite.Asserted() && !c.MemtoReg.Asserted()
}
