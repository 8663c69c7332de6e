// Package config describes the simulated machine: the memory extent, the
// initial register and memory contents, and the run limits.
package config

import (
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"strconv"

	"github.com/sarchlab/pipesim/emu"
	"github.com/sarchlab/pipesim/insts"
)

// Config holds the machine configuration. Values are based on the
// reference machine used by the course traces.
type Config struct {
	// MemoryWords is the number of words of data memory. Default: 32.
	MemoryWords int `json:"memory_words"`

	// RegisterInit is the initial value of every register except $0.
	// Default: 1.
	RegisterInit int64 `json:"register_init"`

	// MemoryInit is the initial value of every memory word. Default: 1.
	MemoryInit int64 `json:"memory_init"`

	// Registers overrides individual registers, keyed by index.
	Registers map[string]int64 `json:"registers,omitempty"`

	// Memory overrides individual memory words, keyed by address.
	Memory map[string]int64 `json:"memory,omitempty"`

	// MaxCycles aborts runs that take longer. 0 means no limit.
	// Default: 100000.
	MaxCycles uint64 `json:"max_cycles"`
}

// Default returns a Config matching the reference machine.
func Default() *Config {
	return &Config{
		MemoryWords:  emu.DefaultMemoryWords,
		RegisterInit: 1,
		MemoryInit:   1,
		MaxCycles:    100000,
	}
}

// Load loads a Config from a file. Files ending in .star are evaluated as
// Starlark scripts; everything else is parsed as JSON.
func Load(path string) (*Config, error) {
	if filepath.Ext(path) == ".star" {
		return LoadScript(path)
	}
	return LoadJSON(path)
}

// LoadJSON loads a Config from a JSON file. Missing fields keep their
// default values.
func LoadJSON(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// SaveConfig writes a Config to a JSON file.
func (c *Config) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks that the configuration describes a usable machine.
func (c *Config) Validate() error {
	if c.MemoryWords <= 0 {
		return fmt.Errorf("memory_words must be > 0")
	}

	for key := range c.Registers {
		reg, err := strconv.Atoi(key)
		if err != nil || reg < 0 || reg >= insts.NumRegisters {
			return fmt.Errorf("registers: invalid register %q", key)
		}
		if reg == 0 && c.Registers[key] != 0 {
			return fmt.Errorf("registers: $0 is hard-wired to zero")
		}
	}

	for key := range c.Memory {
		addr, err := strconv.Atoi(key)
		if err != nil || addr < 0 || addr >= c.MemoryWords {
			return fmt.Errorf("memory: invalid address %q", key)
		}
	}

	return nil
}

// Clone returns a deep copy of the Config.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Registers = maps.Clone(c.Registers)
	clone.Memory = maps.Clone(c.Memory)
	return &clone
}

// NewRegFile builds the initial register file. It fails if the config is
// not valid.
func (c *Config) NewRegFile() (*emu.RegFile, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	regFile := emu.NewRegFile(c.RegisterInit)
	for key, value := range c.Registers {
		reg, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("registers: %w", err)
		}
		regFile.WriteReg(uint8(reg), value)
	}
	return regFile, nil
}

// NewMemory builds the initial data memory. It fails if the config is not
// valid.
func (c *Config) NewMemory() (*emu.Memory, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	memory := emu.NewMemory(c.MemoryWords, c.MemoryInit)
	for key, value := range c.Memory {
		addr, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("memory: %w", err)
		}
		if err := memory.Write(int64(addr), value); err != nil {
			return nil, fmt.Errorf("memory: %w", err)
		}
	}
	return memory, nil
}
