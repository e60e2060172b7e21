package asm

import (
	"fmt"
	"strconv"
	"strings"
)

// parseLine splits one source line into an optional label, an
// optional mnemonic, and its operand tokens. Comments start at '#'
// (the same character pkg/loader strips), and operands may be
// separated by commas or plain whitespace: "LDI R0, 8" and "LDI R0 8"
// parse identically.
func parseLine(line string) (label, mnemonic string, operands []string, err error) {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		line = line[:i]
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return "", "", nil, nil
	}

	fields := strings.Fields(strings.ReplaceAll(line, ",", " "))
	if strings.HasSuffix(fields[0], ":") {
		label = strings.TrimSuffix(fields[0], ":")
		if label == "" {
			return "", "", nil, fmt.Errorf("%w: empty label", ErrBadOperand)
		}
		fields = fields[1:]
	}
	if len(fields) == 0 {
		return label, "", nil, nil
	}
	return label, fields[0], fields[1:], nil
}

// parseRegister parses a register operand of the form "R0".."R7".
func parseRegister(tok string) (byte, error) {
	tok = strings.ToUpper(tok)
	if len(tok) < 2 || tok[0] != 'R' {
		return 0, fmt.Errorf("%w: %q is not a register", ErrBadOperand, tok)
	}
	n, err := strconv.ParseUint(tok[1:], 10, 8)
	if err != nil || n > 7 {
		return 0, fmt.Errorf("%w: %q is not a register in R0..R7", ErrBadOperand, tok)
	}
	return byte(n), nil
}

// parseImmediate parses a numeric operand in decimal, 0x-hex, or
// 0b-binary form and range-checks it as an unsigned byte.
func parseImmediate(tok string) (byte, error) {
	n, err := strconv.ParseUint(tok, 0, 16)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrBadOperand, tok)
	}
	if n > 0xFF {
		return 0, fmt.Errorf("%w: %q", ErrImmediateRange, tok)
	}
	return byte(n), nil
}
