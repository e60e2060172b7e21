package cpu

import "fmt"

// Opcode constants, named per spec §4.3. Each handler in opTable is
// responsible for consuming exactly its own operand bytes by calling
// nextByte/nextReg, which is what keeps the fetch/dispatch loop in
// Step a plain, arity-agnostic table lookup.
const (
	OpNOP  byte = 0x00
	OpHLT  byte = 0x01
	OpRET  byte = 0x11
	OpIRET byte = 0x13

	OpPUSH byte = 0x45
	OpPOP  byte = 0x46
	OpPRN  byte = 0x47
	OpPRA  byte = 0x48

	OpCALL byte = 0x50
	OpINT  byte = 0x52
	OpJMP  byte = 0x54
	OpJEQ  byte = 0x55
	OpJNE  byte = 0x56
	OpJGT  byte = 0x57
	OpJLT  byte = 0x58
	OpJLE  byte = 0x59
	OpJGE  byte = 0x5A

	OpLDI byte = 0x82
	OpLD  byte = 0x83
	OpST  byte = 0x84

	OpADD byte = 0xA0
	OpSUB byte = 0xA1
	OpMUL byte = 0xA2
	OpDIV byte = 0xA3
	OpMOD byte = 0xA4
	OpINC byte = 0x65
	OpDEC byte = 0x66
	OpCMP byte = 0xA7
	OpAND byte = 0xA8
	OpNOT byte = 0x69
	OpOR  byte = 0xAA
	OpXOR byte = 0xAB
	OpSHL byte = 0xAC
	OpSHR byte = 0xAD
)

// opTable dispatches an opcode byte to its handler. Built once at
// package init from the non-ALU handlers below and the ALU shapes in
// alu.go — the "tagged variant + single dispatch function" spec §9
// calls for, expressed as a map instead of a switch so the ALU
// entries can be generated by the aluUnary/aluBinary/aluCompare
// constructors rather than hand-duplicated per mnemonic.
var opTable = buildOpTable()

func buildOpTable() map[byte]func(*CPU) error {
	t := map[byte]func(*CPU) error{
		OpNOP:  opNOP,
		OpHLT:  opHLT,
		OpRET:  opRET,
		OpIRET: opIRET,

		OpPUSH: opPUSH,
		OpPOP:  opPOP,
		OpPRN:  opPRN,
		OpPRA:  opPRA,

		OpCALL: opCALL,
		OpINT:  opINT,
		OpJMP:  opJMP,
		OpJEQ:  jumpIf(func(f Flags) bool { return f.E() }),
		OpJNE:  jumpIf(func(f Flags) bool { return !f.E() }),
		OpJGT:  jumpIf(func(f Flags) bool { return f.G() }),
		OpJLT:  jumpIf(func(f Flags) bool { return f.L() }),
		OpJLE:  jumpIf(func(f Flags) bool { return f.L() || f.E() }),
		OpJGE:  jumpIf(func(f Flags) bool { return f.G() || f.E() }),

		OpLDI: opLDI,
		OpLD:  opLD,
		OpST:  opST,

		OpADD: aluBinary(func(a, b byte) byte { return a + b }),
		OpSUB: aluBinary(func(a, b byte) byte { return a - b }),
		OpMUL: aluBinary(func(a, b byte) byte { return a * b }),
		OpDIV: aluDivMod(func(a, b byte) byte { return a / b }),
		OpMOD: aluDivMod(func(a, b byte) byte { return a % b }),
		OpINC: aluUnary(func(a byte) byte { return a + 1 }),
		OpDEC: aluUnary(func(a byte) byte { return a - 1 }),
		OpCMP: aluCompare(),
		OpAND: aluBinary(func(a, b byte) byte { return a & b }),
		OpNOT: aluUnary(func(a byte) byte { return ^a }),
		OpOR:  aluBinary(func(a, b byte) byte { return a | b }),
		OpXOR: aluBinary(func(a, b byte) byte { return a ^ b }),
		OpSHL: aluBinary(shl),
		OpSHR: aluBinary(shr),
	}
	return t
}

func opNOP(c *CPU) error { return nil }

func opHLT(c *CPU) error { return ErrHalted }

func opRET(c *CPU) error {
	pc, err := c.pop()
	if err != nil {
		return err
	}
	c.PC = pc
	return nil
}

// opIRET reverses the interrupt controller's dispatch push order
// (spec §4.5): pop R6..R0, then flags, then PC, then clear the latch.
func opIRET(c *CPU) error {
	for r := 6; r >= 0; r-- {
		v, err := c.pop()
		if err != nil {
			return err
		}
		c.Reg[r] = v
	}
	f, err := c.pop()
	if err != nil {
		return err
	}
	c.Flags = Flags(f)
	pc, err := c.pop()
	if err != nil {
		return err
	}
	c.PC = pc
	c.inHandler = false
	return nil
}

func opPUSH(c *CPU) error {
	r := c.nextReg()
	return c.push(c.Reg[r])
}

func opPOP(c *CPU) error {
	r := c.nextReg()
	v, err := c.pop()
	if err != nil {
		return err
	}
	c.Reg[r] = v
	return nil
}

func opPRN(c *CPU) error {
	r := c.nextReg()
	_, err := fmt.Fprintf(c.out, "%d\n", c.Reg[r])
	return err
}

func opPRA(c *CPU) error {
	r := c.nextReg()
	_, err := c.out.Write([]byte{c.Reg[r]})
	return err
}

func opCALL(c *CPU) error {
	r := c.nextReg()
	target := c.Reg[r]
	if err := c.push(c.PC); err != nil {
		return err
	}
	c.PC = target
	return nil
}

func opINT(c *CPU) error {
	r := c.nextReg()
	bit := c.Reg[r] & 0x07
	c.Reg[RegIS] |= 1 << bit
	return nil
}

func opJMP(c *CPU) error {
	r := c.nextReg()
	c.PC = c.Reg[r]
	return nil
}

// jumpIf builds a conditional-jump handler. The register operand is
// always consumed, whether or not the jump is taken, so PC lands on
// the following opcode either way — spec §4.3's "not an accident"
// contract.
func jumpIf(take func(Flags) bool) func(*CPU) error {
	return func(c *CPU) error {
		r := c.nextReg()
		if take(c.Flags) {
			c.PC = c.Reg[r]
		}
		return nil
	}
}

func opLDI(c *CPU) error {
	r := c.nextReg()
	imm := c.nextByte()
	c.Reg[r] = imm
	return nil
}

func opLD(c *CPU) error {
	a := c.nextReg()
	b := c.nextReg()
	c.Reg[a] = c.Mem[c.Reg[b]]
	return nil
}

func opST(c *CPU) error {
	a := c.nextReg()
	b := c.nextReg()
	c.Mem[c.Reg[a]] = c.Reg[b]
	return nil
}
