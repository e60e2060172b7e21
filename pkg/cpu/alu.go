package cpu

// The ALU is a pure dispatch table over mnemonic -> operation, in one
// of three shapes (spec §4.2). Each shape is a constructor that closes
// over a plain byte function and returns a handler of the same type
// the rest of the opcode table uses (func(*CPU) error) — there is no
// per-instruction closure kept around at run time, just the table
// built once at package init, per the re-architecture guidance in
// spec §9 ("no per-op closure allocation").

// aluUnary builds a handler for `op register`: R[a] <- fn(R[a]).
func aluUnary(fn func(byte) byte) func(*CPU) error {
	return func(c *CPU) error {
		a := c.nextReg()
		c.Reg[a] = fn(c.Reg[a])
		return nil
	}
}

// aluBinary builds a handler for `op registerA registerB`:
// R[a] <- fn(R[a], R[b]).
func aluBinary(fn func(a, b byte) byte) func(*CPU) error {
	return func(c *CPU) error {
		a := c.nextReg()
		b := c.nextReg()
		c.Reg[a] = fn(c.Reg[a], c.Reg[b])
		return nil
	}
}

// aluDivMod is like aluBinary but faults on a zero divisor instead of
// computing garbage, per spec §4.2/§7.
func aluDivMod(fn func(a, b byte) byte) func(*CPU) error {
	return func(c *CPU) error {
		a := c.nextReg()
		b := c.nextReg()
		if c.Reg[b] == 0 {
			return ErrDivideByZero
		}
		c.Reg[a] = fn(c.Reg[a], c.Reg[b])
		return nil
	}
}

// aluCompare builds the CMP handler: set flags from R[a] vs R[b].
func aluCompare() func(*CPU) error {
	return func(c *CPU) error {
		a := c.nextReg()
		b := c.nextReg()
		c.Flags = compare(c.Reg[a], c.Reg[b])
		return nil
	}
}

func shl(a, b byte) byte { return a << b }
func shr(a, b byte) byte { return a >> b }

