// Package loader reads instruction text files into programs.
package loader

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Program represents a loaded program ready for simulation.
type Program struct {
	// Path is the file the program was read from, if any.
	Path string
	// Lines holds the trimmed instruction text, in program order.
	Lines []string
}

// Len returns the number of instructions.
func (p *Program) Len() int {
	return len(p.Lines)
}

// Load reads the instruction file at path.
func Load(path string) (*Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open program file: %w", err)
	}
	defer func() { _ = f.Close() }()

	prog, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read program file: %w", err)
	}
	prog.Path = path

	return prog, nil
}

// Parse reads one instruction per line. Surrounding whitespace is trimmed;
// blank lines and lines starting with '#' are dropped. Order is preserved
// and duplicates are kept.
func Parse(r io.Reader) (*Program, error) {
	prog := &Program{}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		prog.Lines = append(prog.Lines, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return prog, nil
}
