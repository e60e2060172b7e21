package cpu

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"
)

func assert(t *testing.T, cond bool, format string, args ...any) {
	t.Helper()
	if !cond {
		t.Fatalf(fmt.Sprintf("%v %s", cond, format), args...)
	}
}

// newTestCPU builds a CPU wired to an in-memory output buffer and
// loads src (one binary literal per line, loader format) as its program.
func newTestCPU(t *testing.T, src string) (*CPU, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	c := New(WithOutput(&out))
	err := c.LoadReader(strings.NewReader(src))
	assert(t, err == nil, "load failed: %v", err)
	return c, &out
}

func TestPrint8(t *testing.T) {
	// LDI R0 8; PRN R0; HLT
	c, out := newTestCPU(t, `
10000010
00000000
00001000
01000111
00000000
00000001
`)
	err := c.Run()
	assert(t, err == nil, "run failed: %v", err)
	assert(t, out.String() == "8\n", "output = %q", out.String())
}

func TestMul(t *testing.T) {
	// LDI R0 8; LDI R1 9; MUL R0 R1; PRN R0; HLT
	c, out := newTestCPU(t, `
10000010
00000000
00001000
10000010
00000001
00001001
10100010
00000000
00000001
01000111
00000000
00000001
`)
	err := c.Run()
	assert(t, err == nil, "run failed: %v", err)
	assert(t, out.String() == "72\n", "output = %q", out.String())
}

func TestStackLIFO(t *testing.T) {
	// LDI R0 1; LDI R1 2; PUSH R0; PUSH R1; POP R0; POP R1; PRN R0; PRN R1; HLT
	c, out := newTestCPU(t, `
10000010
00000000
00000001
10000010
00000001
00000010
01000101
00000000
01000101
00000001
01000110
00000000
01000110
00000001
01000111
00000000
01000111
00000001
00000001
`)
	err := c.Run()
	assert(t, err == nil, "run failed: %v", err)
	assert(t, out.String() == "2\n1\n", "output = %q", out.String())
}

func TestCompareAndBranch(t *testing.T) {
	// LDI R0 5; LDI R1 5; CMP R0 R1; LDI R2 <taken addr 20>; JEQ R2;
	// LDI R3 0; PRN R3; HLT; <20>: LDI R3 1; PRN R3; HLT
	src := `
10000010
00000000
00000101
10000010
00000001
00000101
10100111
00000000
00000001
10000010
00000010
00010100
01010101
00000010
10000010
00000011
00000000
01000111
00000011
00000001
10000010
00000011
00000001
01000111
00000011
00000001
`
	c, out := newTestCPU(t, src)
	err := c.Run()
	assert(t, err == nil, "run failed: %v", err)
	assert(t, out.String() == "1\n", "output = %q", out.String())
}

func TestPushPopRoundTripIsANoOp(t *testing.T) {
	c := New(WithOutput(&bytes.Buffer{}))
	c.Reg[0] = 0x42
	err := c.push(c.Reg[0])
	assert(t, err == nil, "push failed: %v", err)
	v, err := c.pop()
	assert(t, err == nil, "pop failed: %v", err)
	c.Reg[0] = v
	assert(t, c.Reg[0] == 0x42, "round trip changed register: %#02x", c.Reg[0])
	assert(t, c.Reg[RegSP] == SPInitial, "SP did not return to initial value: %#02x", c.Reg[RegSP])
}

func TestNotNotRestoresRegister(t *testing.T) {
	c := New(WithOutput(&bytes.Buffer{}))
	c.Reg[0] = 0x5A
	handler := opTable[OpNOT]
	apply := func() {
		c.PC = 0
		c.Mem[0] = 0 // register operand R0
		handler(c)
	}
	apply()
	apply()
	assert(t, c.Reg[0] == 0x5A, "NOT;NOT did not restore register: %#02x", c.Reg[0])
}

func TestXorSelfYieldsZero(t *testing.T) {
	c := New(WithOutput(&bytes.Buffer{}))
	c.Reg[0] = 0x77
	c.Mem[0], c.Mem[1] = 0, 0 // both operand bytes select R0
	c.PC = 0
	opTable[OpXOR](c)
	assert(t, c.Reg[0] == 0, "XOR r,r = %#02x, want 0", c.Reg[0])
}

func TestDivideByZeroFaults(t *testing.T) {
	// LDI R0 8; LDI R1 0; DIV R0 R1; HLT
	c, _ := newTestCPU(t, `
10000010
00000000
00001000
10000010
00000001
00000000
10100011
00000000
00000001
00000001
`)
	err := c.Run()
	assert(t, err != nil, "expected a divide-by-zero error")
}

func TestStackUnderflow(t *testing.T) {
	c := New(WithOutput(&bytes.Buffer{}))
	_, err := c.pop()
	assert(t, err != nil, "expected stack underflow")
}

func TestStackOverflowCollidesWithProgram(t *testing.T) {
	c, _ := newTestCPU(t, "00000001") // HLT only; programEnd is small
	c.Reg[RegSP] = c.programEnd       // SP sitting right at the program boundary
	err := c.push(0)
	assert(t, err != nil, "expected stack overflow")
}

func TestUnsupportedOpcodeFaults(t *testing.T) {
	c := New(WithOutput(&bytes.Buffer{}))
	c.Mem[0] = 0xFF // not in opTable
	_, err := c.Step()
	assert(t, err != nil, "expected unsupported-instruction error")
}

func TestCallThenRetReturnsToInstructionAfterCall(t *testing.T) {
	// main: LDI R1 <sub=8>; CALL R1; PRN R2; HLT
	// sub:  LDI R2 42; RET
	src := `
10000010
00000001
00001000
01010000
00000001
01000111
00000010
00000001
10000010
00000010
00101010
00010001
`
	c, out := newTestCPU(t, src)
	err := c.Run()
	assert(t, err == nil, "run failed: %v", err)
	assert(t, out.String() == "42\n", "output = %q", out.String())
}

// fakeClock lets the timer test advance virtual time without sleeping.
type fakeClock struct{ now time.Time }

func (f *fakeClock) Now() time.Time { return f.now }

func TestTimerRaisesISBitZeroAfterOneSecond(t *testing.T) {
	fc := &fakeClock{now: time.Unix(0, 0)}
	c := New(WithOutput(&bytes.Buffer{}), WithClock(fc))
	c.Mem[VectorTableBase] = 0x10 // install a (dummy) timer vector
	c.pollTimer()
	assert(t, c.Reg[RegIS]&1 == 0, "timer fired before a second elapsed")

	fc.now = fc.now.Add(time.Second)
	c.pollTimer()
	assert(t, c.Reg[RegIS]&1 == 1, "timer did not fire after a second elapsed")
}

func TestTimerNeverFiresWithoutInstalledVector(t *testing.T) {
	fc := &fakeClock{now: time.Unix(0, 0)}
	c := New(WithOutput(&bytes.Buffer{}), WithClock(fc))
	fc.now = fc.now.Add(10 * time.Second)
	c.pollTimer()
	assert(t, c.Reg[RegIS] == 0, "timer fired with no vector installed")
}

func TestInterruptDispatchAndIretRestoreState(t *testing.T) {
	// Handler at vector 0: LDI R0 7; PRN R0; IRET
	// Mainline: none runs; IM bit 0 and IS bit 0 are set directly.
	c := New(WithOutput(&bytes.Buffer{}))
	handlerAddr := byte(0x20)
	c.Mem[VectorTableBase] = handlerAddr
	c.Mem[handlerAddr+0] = OpLDI
	c.Mem[handlerAddr+1] = 0
	c.Mem[handlerAddr+2] = 7
	c.Mem[handlerAddr+3] = OpPRN
	c.Mem[handlerAddr+4] = 0
	c.Mem[handlerAddr+5] = OpIRET

	c.Reg[RegIM] = 1
	c.Reg[RegIS] = 1
	c.Reg[1] = 0x99
	c.Flags = FlagG
	beforePC := c.PC

	halted, err := c.Step() // services the interrupt, runs LDI
	assert(t, !halted && err == nil, "step failed: %v", err)
	halted, err = c.Step() // PRN
	assert(t, !halted && err == nil, "step failed: %v", err)
	halted, err = c.Step() // IRET
	assert(t, !halted && err == nil, "step failed: %v", err)

	assert(t, c.PC == beforePC, "PC not restored: got %#02x want %#02x", c.PC, beforePC)
	assert(t, c.Reg[1] == 0x99, "R1 clobbered by handler: %#02x", c.Reg[1])
	assert(t, c.Flags == FlagG, "flags not restored: %v", c.Flags)
	assert(t, !c.inHandler, "in-handler latch still set after IRET")
}
