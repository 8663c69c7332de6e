package emu

import (
	"errors"

	"github.com/sarchlab/pipesim/translate"
)

var f = translate.From

// ErrMaxInstructions is returned when the emulator hits its instruction limit.
var ErrMaxInstructions = errors.New(f("max instructions reached"))

// AddressKind tells which address space an AddressError refers to.
type AddressKind uint8

// Address spaces.
const (
	AddressData        AddressKind = iota // Data memory word
	AddressInstruction                    // Branch target instruction index
)

func (k AddressKind) String() string {
	if k == AddressInstruction {
		return f("branch target")
	}
	return f("memory address")
}

// AddressError reports a memory address or branch target outside the
// declared extent [0, Limit).
type AddressError struct {
	Kind  AddressKind
	Addr  int64
	Limit int64

	// Inst is the text of the offending instruction, when known.
	Inst string
}

func (e *AddressError) Error() string {
	if e.Inst != "" {
		return f("%v %v out of range [0, %v) in %q", e.Kind, e.Addr, e.Limit, e.Inst)
	}
	return f("%v %v out of range [0, %v)", e.Kind, e.Addr, e.Limit)
}
