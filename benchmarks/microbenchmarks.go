// Package benchmarks provides reference programs with known cycle counts and
// the harness that runs them through the timing pipeline.
package benchmarks

import "github.com/sarchlab/pipesim/emu"

// GetMicrobenchmarks returns the standard set of reference programs. Each
// one targets a specific pipeline behavior.
//
// All programs start from the reference machine state: every register
// except $0 holds 1 and every memory word holds 1.
func GetMicrobenchmarks() []Benchmark {
	return []Benchmark{
		arithmeticSequential(),
		dependencyChain(),
		forwardingNoStall(),
		loadUse(),
		memorySequential(),
		storeLoad(),
		branchNotTaken(),
		branchTaken(),
		branchOperandStall(),
		countdownLoop(),
	}
}

// GetCoreBenchmarks returns the programs whose timing every change to the
// pipeline must preserve: one per hazard kind.
func GetCoreBenchmarks() []Benchmark {
	return []Benchmark{
		forwardingNoStall(),
		loadUse(),
		branchTaken(),
	}
}

// 1. Arithmetic Sequential - independent ALU operations, no hazards
func arithmeticSequential() Benchmark {
	return Benchmark{
		Name:        "arithmetic_sequential",
		Description: "5 independent add/sub operations - one retires per cycle",
		Program: []string{
			"add $1, $2, $3",
			"add $4, $5, $6",
			"add $7, $8, $9",
			"sub $10, $11, $12",
			"add $13, $14, $15",
		},
		ExpectedCycles: 9,
		ExpectedRegs:   map[uint8]int64{1: 2, 4: 2, 7: 2, 10: 0, 13: 2},
	}
}

// 2. Dependency Chain - every add reads the previous result from EX/MEM
func dependencyChain() Benchmark {
	return Benchmark{
		Name:        "dependency_chain",
		Description: "5 dependent adds ($1 = $1 + $1) - forwarding hides every RAW hazard",
		Program: []string{
			"add $1, $1, $1",
			"add $1, $1, $1",
			"add $1, $1, $1",
			"add $1, $1, $1",
			"add $1, $1, $1",
		},
		ExpectedCycles: 9,
		ExpectedRegs:   map[uint8]int64{1: 32},
	}
}

// 3. Forwarding - consumer directly behind its producer
func forwardingNoStall() Benchmark {
	return Benchmark{
		Name:        "forwarding_no_stall",
		Description: "add followed by a dependent add - EX/MEM bypass, no stall",
		Program: []string{
			"add $1, $2, $3",
			"add $4, $1, $0",
		},
		ExpectedCycles: 6,
		ExpectedRegs:   map[uint8]int64{1: 2, 4: 2},
	}
}

// 4. Load-Use - one bubble between a lw and its consumer
func loadUse() Benchmark {
	return Benchmark{
		Name:        "load_use",
		Description: "lw followed by a dependent add - exactly one stall",
		Program: []string{
			"lw $2, 0($0)",
			"add $3, $2, $2",
		},
		ExpectedCycles: 7,
		ExpectedStalls: 1,
		ExpectedRegs:   map[uint8]int64{2: 1, 3: 2},
	}
}

// 5. Memory Sequential - two loads summed and stored back
func memorySequential() Benchmark {
	return Benchmark{
		Name:        "memory_sequential",
		Description: "2 loads, an add of both and a store - one load-use stall",
		Setup: func(regFile *emu.RegFile, memory *emu.Memory) {
			_ = memory.Write(0, 5)
			_ = memory.Write(1, 7)
		},
		Program: []string{
			"lw $1, 0($0)",
			"lw $2, 1($0)",
			"add $3, $1, $2",
			"sw $3, 2($0)",
		},
		ExpectedCycles: 9,
		ExpectedStalls: 1,
		ExpectedRegs:   map[uint8]int64{1: 5, 2: 7, 3: 12},
		ExpectedMem:    map[int64]int64{0: 5, 1: 7, 2: 12},
	}
}

// 6. Store-Load - store value forwarded, reload through memory
func storeLoad() Benchmark {
	return Benchmark{
		Name:        "store_load",
		Description: "sw of a forwarded value, lw of the same word, dependent sub",
		Program: []string{
			"add $2, $1, $1",
			"sw $2, 3($0)",
			"lw $4, 3($0)",
			"sub $5, $4, $1",
		},
		ExpectedCycles: 9,
		ExpectedStalls: 1,
		ExpectedRegs:   map[uint8]int64{2: 2, 4: 2, 5: 1},
		ExpectedMem:    map[int64]int64{3: 2},
	}
}

// 7. Branch Not Taken - sequential fetch was right, no penalty
func branchNotTaken() Benchmark {
	return Benchmark{
		Name:        "branch_not_taken",
		Description: "beq with unequal operands - no flush",
		Program: []string{
			"beq $1, $0, 2",
			"add $5, $1, $1",
			"add $6, $1, $1",
		},
		ExpectedCycles: 7,
		ExpectedRegs:   map[uint8]int64{5: 2, 6: 2},
	}
}

// 8. Branch Taken - wrong-path instruction squashed, one cycle penalty
func branchTaken() Benchmark {
	return Benchmark{
		Name:        "branch_taken",
		Description: "beq $1, $1 skips one instruction - one flush",
		Program: []string{
			"beq $1, $1, 2",
			"add $5, $0, $0",
			"add $6, $1, $1",
		},
		ExpectedCycles:  8,
		ExpectedFlushes: 1,
		ExpectedRegs:    map[uint8]int64{5: 1, 6: 2},
	}
}

// 9. Branch Operand Stall - beq waits for an add one stage ahead
func branchOperandStall() Benchmark {
	return Benchmark{
		Name:        "branch_operand_stall",
		Description: "beq comparing the result of the add before it - stall then flush",
		Program: []string{
			"add $2, $1, $1",
			"beq $2, $2, 2",
			"add $7, $0, $0",
			"sub $8, $2, $1",
		},
		ExpectedCycles:  10,
		ExpectedStalls:  1,
		ExpectedFlushes: 1,
		ExpectedRegs:    map[uint8]int64{2: 2, 7: 1, 8: 1},
	}
}

// 10. Countdown Loop - backward beq, two trips
func countdownLoop() Benchmark {
	return Benchmark{
		Name:        "countdown_loop",
		Description: "decrement $2 from 2 to 0 with a backward beq",
		Program: []string{
			"add $2, $1, $1",
			"sub $2, $2, $1",
			"beq $2, $0, 2",
			"beq $0, $0, -2",
			"add $3, $1, $1",
		},
		ExpectedCycles:  17,
		ExpectedStalls:  2,
		ExpectedFlushes: 2,
		ExpectedRegs:    map[uint8]int64{2: 0, 3: 2},
	}
}
