package emu

// BranchUnit computes branch targets using instruction-index addressing.
type BranchUnit struct {
	programLen int
}

// NewBranchUnit creates a BranchUnit for a program of programLen
// instructions.
func NewBranchUnit(programLen int) *BranchUnit {
	return &BranchUnit{programLen: programLen}
}

// Target returns index + offset. A target equal to the program length is
// the end of the program and is valid.
func (b *BranchUnit) Target(index int, offset int64) (int, error) {
	target := int64(index) + offset
	if target < 0 || target > int64(b.programLen) {
		return 0, &AddressError{
			Kind:  AddressInstruction,
			Addr:  target,
			Limit: int64(b.programLen) + 1,
		}
	}
	return int(target), nil
}
