package pipeline

import (
	"errors"
	"fmt"

	"github.com/sarchlab/pipesim/emu"
	"github.com/sarchlab/pipesim/translate"
)

// ErrCycleLimit is returned when a run exceeds the configured cycle limit,
// typically because a beq loop never exits.
var ErrCycleLimit = errors.New(translate.From("cycle limit exceeded"))

// Statistics holds pipeline performance statistics.
type Statistics struct {
	// Cycles is the total number of cycles simulated.
	Cycles uint64
	// Instructions is the number of instructions completed (retired).
	Instructions uint64
	// Stalls is the number of stall cycles.
	Stalls uint64
	// LoadUseStalls is the number of stalls caused by a load in EX.
	LoadUseStalls uint64
	// BranchStalls is the number of stalls caused by beq comparands.
	BranchStalls uint64
	// Flushes is the number of pipeline flushes (taken branches).
	Flushes uint64
	// Squashed is the number of wrong-path instructions discarded.
	Squashed uint64
	// DataHazards is the number of RAW data hazards resolved by forwarding.
	DataHazards uint64
	// BranchPredictions is the total number of branches resolved.
	BranchPredictions uint64
	// BranchCorrect is the number of branches resolved not taken.
	BranchCorrect uint64
	// BranchMispredictions is the number of branches resolved taken.
	BranchMispredictions uint64
}

// CPI returns the cycles per instruction.
func (s Statistics) CPI() float64 {
	if s.Instructions == 0 {
		return 0
	}
	return float64(s.Cycles) / float64(s.Instructions)
}

// Snapshot captures the four latches at the end of a cycle.
type Snapshot struct {
	// Cycle is the number of the cycle that produced this state.
	Cycle uint64

	IFID  IFIDRegister
	IDEX  IDEXRegister
	EXMEM EXMEMRegister
	MEMWB MEMWBRegister

	// Stall is the reason the front of the pipeline was held, if any.
	Stall StallReason
	// Flushed is true if a taken branch flushed the pipeline this cycle.
	Flushed bool
	// Squashed is the wrong-path instruction discarded by the flush.
	Squashed *Fetched
	// Retired is the instruction written back this cycle.
	Retired *Accessed
}

// PipelineOption is a functional option for configuring the Pipeline.
type PipelineOption func(*Pipeline)

// WithMaxCycles aborts the run with ErrCycleLimit once more than n cycles
// would be simulated. Zero means no limit.
func WithMaxCycles(n uint64) PipelineOption {
	return func(p *Pipeline) {
		p.maxCycles = n
	}
}

// Pipeline implements a 5-stage pipelined CPU model.
// Stages: Fetch (IF) -> Decode (ID) -> Execute (EX) -> Memory (MEM) -> Writeback (WB)
type Pipeline struct {
	// Pipeline registers
	ifid  IFIDRegister
	idex  IDEXRegister
	exmem EXMEMRegister
	memwb MEMWBRegister

	// Pipeline stages
	fetchStage     *FetchStage
	decodeStage    *DecodeStage
	executeStage   *ExecuteStage
	memoryStage    *MemoryStage
	writebackStage *WritebackStage

	// Hazard handling
	forwardingUnit  *ForwardingUnit
	hazardUnit      *HazardUnit
	branchPredictor *BranchPredictor

	// Shared resources
	program []string
	regFile *emu.RegFile
	memory  *emu.Memory

	// Program counter, as an instruction index
	pc int

	maxCycles uint64
	stats     Statistics
	snapshot  Snapshot

	// err is sticky: once a fatal error occurs every later Tick returns it.
	err error
}

// NewPipeline creates a new 5-stage pipeline running program against the
// given architectural state.
func NewPipeline(
	program []string,
	regFile *emu.RegFile,
	memory *emu.Memory,
	opts ...PipelineOption,
) *Pipeline {
	forwarding := NewForwardingUnit()

	p := &Pipeline{
		fetchStage:      NewFetchStage(program),
		decodeStage:     NewDecodeStage(),
		executeStage:    NewExecuteStage(regFile, emu.NewBranchUnit(len(program)), forwarding),
		memoryStage:     NewMemoryStage(memory),
		writebackStage:  NewWritebackStage(regFile),
		forwardingUnit:  forwarding,
		hazardUnit:      NewHazardUnit(),
		branchPredictor: NewBranchPredictor(),
		program:         program,
		regFile:         regFile,
		memory:          memory,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// PC returns the index of the next instruction to fetch.
func (p *Pipeline) PC() int {
	return p.pc
}

// SetPC sets the index of the next instruction to fetch. Like a branch
// target, pc must lie in [0, len(program)].
func (p *Pipeline) SetPC(pc int) error {
	if pc < 0 || pc > len(p.program) {
		return &emu.AddressError{
			Kind:  emu.AddressInstruction,
			Addr:  int64(pc),
			Limit: int64(len(p.program)) + 1,
		}
	}
	p.pc = pc
	return nil
}

// RegFile returns the register file.
func (p *Pipeline) RegFile() *emu.RegFile {
	return p.regFile
}

// Memory returns the data memory.
func (p *Pipeline) Memory() *emu.Memory {
	return p.memory
}

// Program returns the program text.
func (p *Pipeline) Program() []string {
	return p.program
}

// GetIFID returns the IF/ID pipeline register.
func (p *Pipeline) GetIFID() *IFIDRegister {
	return &p.ifid
}

// GetIDEX returns the ID/EX pipeline register.
func (p *Pipeline) GetIDEX() *IDEXRegister {
	return &p.idex
}

// GetEXMEM returns the EX/MEM pipeline register.
func (p *Pipeline) GetEXMEM() *EXMEMRegister {
	return &p.exmem
}

// GetMEMWB returns the MEM/WB pipeline register.
func (p *Pipeline) GetMEMWB() *MEMWBRegister {
	return &p.memwb
}

// Stats returns pipeline statistics.
func (p *Pipeline) Stats() Statistics {
	s := p.stats
	bp := p.branchPredictor.Stats()
	s.BranchPredictions = bp.Predictions
	s.BranchCorrect = bp.Correct
	s.BranchMispredictions = bp.Mispredictions
	return s
}

// Snapshot returns the latch state after the most recent cycle.
func (p *Pipeline) Snapshot() Snapshot {
	return p.snapshot
}

// Err returns the fatal error that stopped the pipeline, if any.
func (p *Pipeline) Err() error {
	return p.err
}

// Done returns true if no instruction remains to fetch and every latch is
// empty.
func (p *Pipeline) Done() bool {
	return p.pc >= len(p.program) &&
		!p.ifid.Valid() && !p.idex.Valid() && !p.exmem.Valid() && !p.memwb.Valid()
}

// Run executes the pipeline until it drains or fails.
func (p *Pipeline) Run() error {
	for {
		done, err := p.Tick()
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}

// RunCycles executes the pipeline for at most the specified number of
// cycles. Returns true if still running, false if drained.
func (p *Pipeline) RunCycles(cycles uint64) (bool, error) {
	for i := uint64(0); i < cycles; i++ {
		done, err := p.Tick()
		if err != nil {
			return false, err
		}
		if done {
			return false, nil
		}
	}
	return !p.Done(), nil
}

// Reset empties every latch, rewinds the program counter and clears the
// statistics. The register file and memory are left untouched.
func (p *Pipeline) Reset() {
	p.ifid.Clear()
	p.idex.Clear()
	p.exmem.Clear()
	p.memwb.Clear()
	p.pc = 0
	p.stats = Statistics{}
	p.snapshot = Snapshot{}
	p.branchPredictor.Reset()
	p.err = nil
}

// Tick executes one pipeline cycle. A call made once the program is
// exhausted and every latch is empty simulates nothing and reports done.
//
// Stages are evaluated in reverse order (WB→MEM→EX→ID→IF). Every stage reads
// the latches as they stood at the start of the call and the new latch
// values are committed together at the end, so no instruction observes a
// stage output produced in the same cycle.
//
// Hazard handling:
//   - Forwarding from EX/MEM and MEM/WB into EX
//   - Load-use and beq-operand stalls that hold IF/ID and insert a bubble
//   - Taken beq squashes IF/ID, inserts a bubble and redirects fetch
func (p *Pipeline) Tick() (bool, error) {
	if p.err != nil {
		return false, p.err
	}
	if p.Done() {
		return true, nil
	}
	if p.maxCycles > 0 && p.stats.Cycles >= p.maxCycles {
		return false, p.fail(fmt.Errorf("%w: %d", ErrCycleLimit, p.maxCycles))
	}

	p.stats.Cycles++

	var (
		nextIFID  IFIDRegister
		nextIDEX  IDEXRegister
		nextEXMEM EXMEMRegister
		nextMEMWB MEMWBRegister
	)
	snap := Snapshot{Cycle: p.stats.Cycles}

	// Stage 5: Writeback
	if a, ok := p.memwb.Get(); ok {
		p.writebackStage.Writeback(a)
		p.stats.Instructions++
		snap.Retired = &a
	}

	// Stage 4: Memory
	if e, ok := p.exmem.Get(); ok {
		a, err := p.memoryStage.Access(e)
		if err != nil {
			return false, p.fail(withInst(err, e.Text))
		}
		nextMEMWB.Set(a)
	}

	// Stage 3: Execute
	flush := false
	target := 0
	if d, ok := p.idex.Get(); ok {
		forwarding := p.forwardingUnit.Detect(d.Inst, &p.exmem, &p.memwb)
		if forwarding.Any() {
			p.stats.DataHazards++
		}

		e, err := p.executeStage.Execute(d, forwarding, &p.exmem, &p.memwb)
		if err != nil {
			return false, p.fail(withInst(err, d.Text))
		}

		if outcome, isBranch := e.Result.(BranchOutcome); isBranch {
			if p.branchPredictor.Resolve(outcome.Taken) {
				flush = true
				target = outcome.Target
			}
		}

		nextEXMEM.Set(e)
	}

	if flush {
		// The IF/ID instruction was fetched down the sequential path.
		if f, ok := p.ifid.Get(); ok {
			p.stats.Squashed++
			snap.Squashed = &f
		}
		p.stats.Flushes++
		snap.Flushed = true
		p.pc = target
	} else {
		// Stage 2: Decode
		stall := StallNone
		if f, ok := p.ifid.Get(); ok {
			d, err := p.decodeStage.Decode(f)
			if err != nil {
				return false, p.fail(err)
			}

			stall = p.hazardUnit.DetectStall(d.Inst, &p.idex, &p.exmem)
			if stall != StallNone {
				p.countStall(stall)
				nextIFID.Set(f)
			} else {
				nextIDEX.Set(d)
			}
		}
		snap.Stall = stall

		// Stage 1: Fetch
		if stall == StallNone {
			if f, ok := p.fetchStage.Fetch(p.pc); ok {
				nextIFID.Set(f)
				p.pc++
			}
		}
	}

	p.ifid = nextIFID
	p.idex = nextIDEX
	p.exmem = nextEXMEM
	p.memwb = nextMEMWB

	snap.IFID = p.ifid
	snap.IDEX = p.idex
	snap.EXMEM = p.exmem
	snap.MEMWB = p.memwb
	p.snapshot = snap

	return false, nil
}

func (p *Pipeline) countStall(reason StallReason) {
	p.stats.Stalls++
	switch reason {
	case StallLoadUse:
		p.stats.LoadUseStalls++
	case StallBranchOperand:
		p.stats.BranchStalls++
	}
}

func (p *Pipeline) fail(err error) error {
	p.err = err
	return err
}

// withInst attaches the offending instruction text to address errors.
func withInst(err error, text string) error {
	var addrErr *emu.AddressError
	if errors.As(err, &addrErr) && addrErr.Inst == "" {
		addrErr.Inst = text
	}
	return err
}
