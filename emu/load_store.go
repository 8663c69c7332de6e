package emu

// LoadStoreUnit implements word loads and stores against data memory.
type LoadStoreUnit struct {
	memory *Memory
}

// NewLoadStoreUnit creates a new LoadStoreUnit connected to the given memory.
func NewLoadStoreUnit(memory *Memory) *LoadStoreUnit {
	return &LoadStoreUnit{memory: memory}
}

// Load reads the word at addr.
func (lsu *LoadStoreUnit) Load(addr int64) (int64, error) {
	return lsu.memory.Read(addr)
}

// Store writes value to the word at addr.
func (lsu *LoadStoreUnit) Store(addr, value int64) error {
	return lsu.memory.Write(addr, value)
}
