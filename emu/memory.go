package emu

// DefaultMemoryWords is the memory extent of the reference machine.
const DefaultMemoryWords = 32

// Memory is a flat, word-addressed data memory with a fixed extent.
type Memory struct {
	words []int64
}

// NewMemory creates a memory of size words, each initialized to init.
func NewMemory(size int, init int64) *Memory {
	m := &Memory{words: make([]int64, size)}
	for i := range m.words {
		m.words[i] = init
	}
	return m
}

// Size returns the number of words.
func (m *Memory) Size() int {
	return len(m.words)
}

// Read returns the word at addr.
func (m *Memory) Read(addr int64) (int64, error) {
	if err := m.check(addr); err != nil {
		return 0, err
	}
	return m.words[addr], nil
}

// Write stores value at addr.
func (m *Memory) Write(addr int64, value int64) error {
	if err := m.check(addr); err != nil {
		return err
	}
	m.words[addr] = value
	return nil
}

// Words returns a copy of the memory contents.
func (m *Memory) Words() []int64 {
	out := make([]int64, len(m.words))
	copy(out, m.words)
	return out
}

// Clone returns a deep copy of the memory.
func (m *Memory) Clone() *Memory {
	return &Memory{words: m.Words()}
}

func (m *Memory) check(addr int64) error {
	if addr < 0 || addr >= int64(len(m.words)) {
		return &AddressError{Kind: AddressData, Addr: addr, Limit: int64(len(m.words))}
	}
	return nil
}
