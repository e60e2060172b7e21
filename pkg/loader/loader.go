// Package loader reads a .ls8 program file into memory. The format —
// one binary-literal instruction byte per line, blank lines and
// `#`-comments stripped — and the loading rule — append from address
// 0, terminate with an implicit HLT, fail if the program would
// collide with the stack region — are spec §6.1's external contract
// with the core; the core (pkg/cpu) only ever sees the resulting byte
// slice.
//
// Grounded on risc32/pkg/vm.LoadBytecode: a bufio.Scanner line loop
// that strips a `#` comment, trims whitespace, and parses what's left
// with strconv — rebased here on base-2 literals and the .ls8
// extension/overflow rules instead of risc32's base-0 32-bit words.
package loader

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// HaltOpcode is appended after the last parsed instruction as a
// safety terminator (spec §6.1).
const HaltOpcode = 0x01

// SPInitial is the stack pointer's reset value (spec §3, §6.4): the
// first free slot at the top of the stack region. Program text may
// never grow into or past this address. Defined here (rather than in
// pkg/cpu) because load-time overflow detection needs it and pkg/cpu
// already depends on pkg/loader, not the other way around.
const SPInitial = 0xF3

// Sentinel errors, one per loader row of spec §7's error taxonomy.
var (
	ErrBadFile    = errors.New("loader: file must have a .ls8 extension")
	ErrParseError = errors.New("loader: invalid binary literal")
	ErrRAMFull    = errors.New("loader: program collides with the stack region")
)

// Load reads the program at path into mem starting at address 0 and
// returns the address one past the last byte written (including the
// implicit trailing HLT) — the "program end" the core's stack
// discipline checks pushes against.
func Load(path string, mem []byte) (byte, error) {
	if !strings.HasSuffix(path, ".ls8") {
		return 0, fmt.Errorf("%w: %s", ErrBadFile, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	return FromReader(f, mem)
}

// FromReader is Load's format-parsing core, split out so tests (and
// the assembler's round-trip tests) can feed source text directly
// instead of going through the filesystem — the in-memory-source /
// from-file split GVM's CompileSourceFromBuffer / CompileSource pair
// uses for the same reason.
func FromReader(r io.Reader, mem []byte) (byte, error) {
	var addr int
	scanner := bufio.NewScanner(r)
	for lineno := 1; scanner.Scan(); lineno++ {
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		value, err := strconv.ParseUint(line, 2, 8)
		if err != nil {
			return 0, fmt.Errorf("%w: line %d: %q", ErrParseError, lineno, line)
		}

		if addr >= SPInitial {
			return 0, fmt.Errorf("%w: line %d", ErrRAMFull, lineno)
		}
		mem[addr] = byte(value)
		addr++
	}
	if err := scanner.Err(); err != nil {
		return 0, err
	}

	if addr >= SPInitial {
		return 0, fmt.Errorf("%w: no room for the trailing HLT", ErrRAMFull)
	}
	mem[addr] = HaltOpcode
	addr++

	return byte(addr), nil
}
