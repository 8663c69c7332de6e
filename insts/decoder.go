package insts

import (
	"strconv"
	"strings"
	"unicode"
)

// Decoder decodes instruction text into instructions.
type Decoder struct{}

// NewDecoder creates a new instruction decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode parses one line of instruction text. The accepted forms are:
//
//	add $rd, $rs, $rt
//	sub $rd, $rs, $rt
//	beq $rs, $rt, offset
//	lw  $rt, offset($rs)
//	sw  $rt, offset($rs)
func (d *Decoder) Decode(text string) (Instruction, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, &FormatError{Text: text, Reason: ErrEmptyInstruction}
	}

	mnemonic, rest := text, ""
	if i := strings.IndexFunc(text, unicode.IsSpace); i >= 0 {
		mnemonic, rest = text[:i], text[i:]
	}
	operands := splitOperands(rest)

	var (
		inst Instruction
		err  error
	)

	switch mnemonic {
	case "add":
		inst, err = d.decodeArith(OpADD, operands)
	case "sub":
		inst, err = d.decodeArith(OpSUB, operands)
	case "beq":
		inst, err = d.decodeBranch(operands)
	case "lw":
		inst, err = d.decodeMemory(OpLW, operands)
	case "sw":
		inst, err = d.decodeMemory(OpSW, operands)
	default:
		err = ErrUnsupportedOpcode
	}

	if err != nil {
		return nil, &FormatError{Text: text, Reason: err}
	}

	return inst, nil
}

// splitOperands splits a comma-separated operand list, dropping the
// surrounding whitespace of each operand.
func splitOperands(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func (d *Decoder) decodeArith(op Op, operands []string) (Instruction, error) {
	if len(operands) != 3 {
		return nil, ErrOperandCount
	}

	regs := make([]uint8, 3)
	for i, operand := range operands {
		reg, err := parseRegister(operand)
		if err != nil {
			return nil, err
		}
		regs[i] = reg
	}

	return &Arith{Operation: op, Rd: regs[0], Rs: regs[1], Rt: regs[2]}, nil
}

func (d *Decoder) decodeBranch(operands []string) (Instruction, error) {
	if len(operands) != 3 {
		return nil, ErrOperandCount
	}

	rs, err := parseRegister(operands[0])
	if err != nil {
		return nil, err
	}
	rt, err := parseRegister(operands[1])
	if err != nil {
		return nil, err
	}
	offset, err := parseOffset(operands[2])
	if err != nil {
		return nil, err
	}

	return &Branch{Rs: rs, Rt: rt, Offset: offset}, nil
}

func (d *Decoder) decodeMemory(op Op, operands []string) (Instruction, error) {
	if len(operands) != 2 {
		return nil, ErrOperandCount
	}

	rt, err := parseRegister(operands[0])
	if err != nil {
		return nil, err
	}

	// offset($base)
	mem := operands[1]
	open := strings.IndexByte(mem, '(')
	if open < 0 || !strings.HasSuffix(mem, ")") {
		return nil, ErrMemOperandSyntax
	}

	offset, err := parseOffset(mem[:open])
	if err != nil {
		return nil, err
	}
	base, err := parseRegister(strings.TrimSpace(mem[open+1 : len(mem)-1]))
	if err != nil {
		return nil, err
	}

	if op == OpLW {
		return &Load{Rt: rt, Base: base, Offset: offset}, nil
	}
	return &Store{Rt: rt, Base: base, Offset: offset}, nil
}

// parseRegister parses "$N" with N in [0, 31].
func parseRegister(s string) (uint8, error) {
	digits, ok := strings.CutPrefix(s, "$")
	if !ok || digits == "" {
		return 0, ErrRegisterSyntax
	}
	for _, c := range digits {
		if c < '0' || c > '9' {
			return 0, ErrRegisterSyntax
		}
	}

	n, err := strconv.Atoi(digits)
	if err != nil || n >= NumRegisters {
		return 0, ErrRegisterRange
	}
	return uint8(n), nil
}

// parseOffset parses a signed decimal offset.
func parseOffset(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrOffsetSyntax
	}

	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, ErrOffsetSyntax
	}
	return n, nil
}
