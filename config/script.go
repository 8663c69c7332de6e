package config

import (
	"fmt"
	"strconv"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// LoadScript evaluates a Starlark machine description. The script may set
// any of the globals memory_words, register_init, memory_init, max_cycles
// (ints) and registers, memory (dicts from int to int). Unset globals keep
// their default values, which the script can read as default_memory_words,
// default_register_init and default_memory_init.
//
//	memory_words = 64
//	registers = {i: i * 10 for i in range(1, 8)}
//	memory = {0: 5, 1: -5}
func LoadScript(path string) (*Config, error) {
	config := Default()

	predeclared := starlark.StringDict{
		"default_memory_words":  starlark.MakeInt(config.MemoryWords),
		"default_register_init": starlark.MakeInt64(config.RegisterInit),
		"default_memory_init":   starlark.MakeInt64(config.MemoryInit),
	}

	thread := &starlark.Thread{Name: "config"}
	opts := syntax.FileOptions{}
	globals, err := starlark.ExecFileOptions(&opts, thread, path, nil, predeclared)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate config script: %w", err)
	}

	if err := applyScriptGlobals(config, globals); err != nil {
		return nil, fmt.Errorf("config script %s: %w", path, err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func applyScriptGlobals(config *Config, globals starlark.StringDict) error {
	if v, ok := globals["memory_words"]; ok {
		n, err := scriptInt("memory_words", v)
		if err != nil {
			return err
		}
		config.MemoryWords = int(n)
	}

	if v, ok := globals["register_init"]; ok {
		n, err := scriptInt("register_init", v)
		if err != nil {
			return err
		}
		config.RegisterInit = n
	}

	if v, ok := globals["memory_init"]; ok {
		n, err := scriptInt("memory_init", v)
		if err != nil {
			return err
		}
		config.MemoryInit = n
	}

	if v, ok := globals["max_cycles"]; ok {
		n, err := scriptInt("max_cycles", v)
		if err != nil {
			return err
		}
		if n < 0 {
			return fmt.Errorf("max_cycles must be >= 0")
		}
		config.MaxCycles = uint64(n)
	}

	if v, ok := globals["registers"]; ok {
		m, err := scriptIntDict("registers", v)
		if err != nil {
			return err
		}
		config.Registers = m
	}

	if v, ok := globals["memory"]; ok {
		m, err := scriptIntDict("memory", v)
		if err != nil {
			return err
		}
		config.Memory = m
	}

	return nil
}

func scriptInt(name string, v starlark.Value) (int64, error) {
	i, ok := v.(starlark.Int)
	if !ok {
		return 0, fmt.Errorf("%s: got %s, want int", name, v.Type())
	}
	n, ok := i.Int64()
	if !ok {
		return 0, fmt.Errorf("%s: %v out of range", name, i)
	}
	return n, nil
}

func scriptIntDict(name string, v starlark.Value) (map[string]int64, error) {
	dict, ok := v.(*starlark.Dict)
	if !ok {
		return nil, fmt.Errorf("%s: got %s, want dict", name, v.Type())
	}

	out := make(map[string]int64, dict.Len())
	for _, item := range dict.Items() {
		key, err := scriptInt(name+" key", item[0])
		if err != nil {
			return nil, err
		}
		value, err := scriptInt(fmt.Sprintf("%s[%d]", name, key), item[1])
		if err != nil {
			return nil, err
		}
		out[strconv.FormatInt(key, 10)] = value
	}
	return out, nil
}
