// Package insts provides definitions and decoding for the MIPS subset
// executed by the pipeline.
//
// The supported instructions are:
//   - Arithmetic: add, sub (register operands)
//   - Branch: beq (instruction-count displacement)
//   - Memory: lw, sw (word-indexed base + offset)
//
// Usage:
//
//	decoder := insts.NewDecoder()
//	inst, err := decoder.Decode("add $1, $2, $3")
//	fmt.Printf("Op: %v, Control: %v\n", inst.Op(), inst.Control())
package insts

import "fmt"

// Op represents an opcode.
type Op uint8

// Supported opcodes.
const (
	OpUnknown Op = iota
	OpADD
	OpSUB
	OpBEQ
	OpLW
	OpSW
)

var opNames = map[Op]string{
	OpADD: "add",
	OpSUB: "sub",
	OpBEQ: "beq",
	OpLW:  "lw",
	OpSW:  "sw",
}

// String returns the assembler mnemonic of the opcode.
func (o Op) String() string {
	if name, ok := opNames[o]; ok {
		return name
	}
	return "unknown"
}

// NumRegisters is the number of architectural registers.
const NumRegisters = 32

// Instruction is a decoded instruction. Each opcode has its own variant so
// that fields belonging to one opcode are never visible on another.
type Instruction interface {
	// Op returns the opcode.
	Op() Op

	// Control returns the control signals generated at decode.
	Control() ControlSignals

	// Sources returns the registers read by the instruction, in operand
	// order. For sw the base register comes first, then the stored register.
	Sources() []uint8

	// Dest returns the register written by the instruction, if any.
	Dest() (uint8, bool)

	fmt.Stringer

	isInstruction()
}

// Arith is an add or sub instruction: Rd = Rs op Rt.
type Arith struct {
	Operation Op
	Rd        uint8
	Rs        uint8
	Rt        uint8
}

// Op returns OpADD or OpSUB.
func (i *Arith) Op() Op { return i.Operation }

// Control returns the R-type control signals.
func (i *Arith) Control() ControlSignals { return ControlFor(i.Operation) }

// Sources returns Rs and Rt.
func (i *Arith) Sources() []uint8 { return []uint8{i.Rs, i.Rt} }

// Dest returns Rd.
func (i *Arith) Dest() (uint8, bool) { return i.Rd, true }

func (i *Arith) String() string {
	return fmt.Sprintf("%v $%d, $%d, $%d", i.Operation, i.Rd, i.Rs, i.Rt)
}

func (*Arith) isInstruction() {}

// Branch is a beq instruction. Offset is a signed displacement in
// instructions, relative to the branch itself.
type Branch struct {
	Rs     uint8
	Rt     uint8
	Offset int64
}

// Op returns OpBEQ.
func (*Branch) Op() Op { return OpBEQ }

// Control returns the branch control signals.
func (*Branch) Control() ControlSignals { return ControlFor(OpBEQ) }

// Sources returns the two comparands.
func (i *Branch) Sources() []uint8 { return []uint8{i.Rs, i.Rt} }

// Dest reports that beq writes no register.
func (*Branch) Dest() (uint8, bool) { return 0, false }

func (i *Branch) String() string {
	return fmt.Sprintf("beq $%d, $%d, %d", i.Rs, i.Rt, i.Offset)
}

func (*Branch) isInstruction() {}

// Load is a lw instruction: Rt = memory[Base + Offset].
type Load struct {
	Rt     uint8
	Base   uint8
	Offset int64
}

// Op returns OpLW.
func (*Load) Op() Op { return OpLW }

// Control returns the load control signals.
func (*Load) Control() ControlSignals { return ControlFor(OpLW) }

// Sources returns the base register.
func (i *Load) Sources() []uint8 { return []uint8{i.Base} }

// Dest returns Rt.
func (i *Load) Dest() (uint8, bool) { return i.Rt, true }

func (i *Load) String() string {
	return fmt.Sprintf("lw $%d, %d($%d)", i.Rt, i.Offset, i.Base)
}

func (*Load) isInstruction() {}

// Store is a sw instruction: memory[Base + Offset] = Rt.
type Store struct {
	Rt     uint8
	Base   uint8
	Offset int64
}

// Op returns OpSW.
func (*Store) Op() Op { return OpSW }

// Control returns the store control signals.
func (*Store) Control() ControlSignals { return ControlFor(OpSW) }

// Sources returns the base register followed by the stored register.
func (i *Store) Sources() []uint8 { return []uint8{i.Base, i.Rt} }

// Dest reports that sw writes no register.
func (*Store) Dest() (uint8, bool) { return 0, false }

func (i *Store) String() string {
	return fmt.Sprintf("sw $%d, %d($%d)", i.Rt, i.Offset, i.Base)
}

func (*Store) isInstruction() {}
