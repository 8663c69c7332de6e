package insts

import (
	"errors"

	"github.com/sarchlab/pipesim/translate"
)

var f = translate.From

// Decode failure reasons.
var (
	ErrUnsupportedOpcode = errors.New(f("unsupported opcode"))
	ErrOperandCount      = errors.New(f("wrong number of operands"))
	ErrRegisterSyntax    = errors.New(f("malformed register"))
	ErrRegisterRange     = errors.New(f("register index out of range"))
	ErrOffsetSyntax      = errors.New(f("malformed offset"))
	ErrMemOperandSyntax  = errors.New(f("malformed memory operand"))
	ErrEmptyInstruction  = errors.New(f("empty instruction"))
)

// FormatError reports instruction text that cannot be decoded.
type FormatError struct {
	// Text is the offending instruction text.
	Text string
	// Reason is one of the Err* reasons above.
	Reason error
}

func (e *FormatError) Error() string {
	return f("invalid instruction %q: %v", e.Text, e.Reason)
}

// Unwrap returns the reason, so errors.Is matches the Err* values.
func (e *FormatError) Unwrap() error {
	return e.Reason
}
