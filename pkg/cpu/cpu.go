// Package cpu contains the LS-8 virtual machine: its memory, register
// file, flags, ALU, interrupt controller, timer, and the fetch-decode-
// execute loop that ties them together.
//
// The instruction set, memory layout, and stack discipline follow the
// LS-8 architecture: 256 bytes of flat memory shared by program text
// (low addresses, growing up) and the stack (high addresses, growing
// down), eight general registers (three of them reserved), and three
// boolean comparison flags written only by CMP.
package cpu

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/bassosimone/ls8/pkg/loader"
)

// RAMSize is the number of addressable memory cells.
const RAMSize = 256

// Memory is the LS-8's flat, byte-addressable memory.
type Memory [RAMSize]byte

// Registers is the LS-8's general register file.
type Registers [8]byte

// Reserved register indices.
const (
	RegIM = 5 // Interrupt Mask
	RegIS = 6 // Interrupt Status
	RegSP = 7 // Stack Pointer
)

// SPInitial is the stack pointer's reset value: the first free slot
// at the top of the stack region, which is also the highest stack address.
// Defined in pkg/loader (which needs it for load-time overflow
// checks) and re-exported here so cpu callers don't need to import
// loader just for this constant.
const SPInitial = loader.SPInitial

// Sentinel errors. Handlers return these (optionally wrapped with
// fmt.Errorf("%w: ...")) to signal the conditions in spec §7; Run and
// Step surface them to the caller unchanged, except ErrHalted, which
// Step turns into a normal (halted=true, err=nil) return. The pattern
// — swallow one sentinel as "clean stop", propagate the rest — mirrors
// how risc32's run loop treats vm.ErrHalted.
var (
	ErrHalted                 = errors.New("cpu: halted")
	ErrStackOverflow          = errors.New("cpu: stack overflow")
	ErrStackUnderflow         = errors.New("cpu: stack underflow")
	ErrUnsupportedInstruction = errors.New("cpu: unsupported instruction")
	ErrDivideByZero           = errors.New("cpu: divide by zero")
)

// CPU is one LS-8 machine instance.
type CPU struct {
	Mem   Memory
	Reg   Registers
	PC    byte
	Flags Flags

	out        io.Writer
	clock      Clock
	lastTimer  time.Time
	inHandler  bool
	programEnd byte // one past the highest address the loader wrote
}

// Option configures a new CPU.
type Option func(*CPU)

// WithOutput overrides the console output sink (default os.Stdout).
func WithOutput(w io.Writer) Option {
	return func(c *CPU) { c.out = w }
}

// WithClock overrides the timer's time source (default the wall clock).
// Tests use this to drive the one-second timer deterministically.
func WithClock(clk Clock) Option {
	return func(c *CPU) { c.clock = clk }
}

// New constructs a CPU with memory and registers zeroed, SP reset to
// the top of the stack region, and flags cleared.
func New(opts ...Option) *CPU {
	c := &CPU{
		out:   os.Stdout,
		clock: realClock{},
	}
	c.Reg[RegSP] = SPInitial
	for _, opt := range opts {
		opt(c)
	}
	c.lastTimer = c.clock.Now()
	return c
}

// LoadFile loads a .ls8 program into memory starting at address 0,
// delegating the text format (binary literals, # comments, implicit
// trailing HLT) to pkg/loader. It fails if the program would collide
// with the stack region.
func (c *CPU) LoadFile(path string) error {
	end, err := loader.Load(path, c.Mem[:])
	if err != nil {
		return err
	}
	c.programEnd = end
	return nil
}

// LoadReader is LoadFile's in-memory counterpart: it parses .ls8
// source text from r instead of opening a path, for tests that build
// a program as a string literal.
func (c *CPU) LoadReader(r io.Reader) error {
	end, err := loader.FromReader(r, c.Mem[:])
	if err != nil {
		return err
	}
	c.programEnd = end
	return nil
}

// nextByte reads the byte at PC and advances PC by one, wrapping at
// the 256-byte boundary — PC is a plain byte, so the wraparound is
// automatic arithmetic, not a special case.
func (c *CPU) nextByte() byte {
	v := c.Mem[c.PC]
	c.PC++
	return v
}

// nextReg reads an operand byte and returns the register index
// encoded in its low three bits.
func (c *CPU) nextReg() byte {
	return c.nextByte() & 0x07
}

// Step executes a single loop iteration: interrupt service (if due),
// fetch, dispatch, and a timer poll. halted is true once HLT has run;
// err is non-nil for any other fault (spec §7), in which case the
// caller should abort — the machine is not resumable after a fault.
func (c *CPU) Step() (halted bool, err error) {
	if err := c.serviceInterrupt(); err != nil {
		return false, err
	}

	op := c.nextByte()
	handler, ok := opTable[op]
	if !ok {
		return false, fmt.Errorf("%w: opcode %#02x at address %#02x", ErrUnsupportedInstruction, op, c.PC-1)
	}

	if err := handler(c); err != nil {
		if errors.Is(err, ErrHalted) {
			return true, nil
		}
		return false, err
	}

	c.pollTimer()
	return false, nil
}

// Run repeats Step until the program halts or faults.
func (c *CPU) Run() error {
	for {
		halted, err := c.Step()
		if err != nil {
			return err
		}
		if halted {
			return nil
		}
	}
}
