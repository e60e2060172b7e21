// Package asm assembles LS-8 mnemonic source into the .ls8 binary-
// literal text format pkg/loader reads.
//
// Grounded on risc32/pkg/asm: a two-pass assembler (collect labels at
// their byte address, then encode each instruction against the
// completed label table) that emits each instruction byte on its own
// line, followed by a '#' comment line naming the instruction — the same
// '#'-comment convention pkg/loader already strips, so assembled
// output round-trips through the loader unchanged. Reshaped from
// risc32's one-struct-per-mnemonic Instruction interface into a
// shape table (mnemonic.go), since every LS-8 opcode already falls
// into one of four fixed operand shapes.
package asm

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/bassosimone/ls8/pkg/loader"
)

// statement is one parsed instruction, addressed at its final byte
// offset by the time the first pass finishes.
type statement struct {
	lineno   int
	addr     byte
	mnemonic string
	info     mnemonicInfo
	operands []string
	raw      string
}

// Assemble reads LS-8 mnemonic source from r and writes .ls8 text to
// w: one binary-literal instruction byte per line, each instruction
// followed by a comment line with its normalized mnemonic and operands.
func Assemble(r io.Reader, w io.Writer) error {
	statements, err := firstPass(r)
	if err != nil {
		return err
	}
	return secondPass(w, statements)
}

// firstPass tokenizes every line, records each label's byte address,
// and lays out statements without yet resolving label operands —
// encoding needs the complete label table, which only exists once
// every line has been walked.
func firstPass(r io.Reader) ([]statement, error) {
	var statements []statement
	labels := make(map[string]byte)
	var addr int

	scanner := bufio.NewScanner(r)
	for lineno := 1; scanner.Scan(); lineno++ {
		label, mnemonic, operands, err := parseLine(scanner.Text())
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineno, err)
		}
		if label != "" {
			if _, dup := labels[label]; dup {
				return nil, fmt.Errorf("line %d: %w: %q", lineno, ErrDuplicateLabel, label)
			}
			labels[label] = byte(addr)
		}
		if mnemonic == "" {
			continue
		}

		info, ok := mnemonics[strings.ToUpper(mnemonic)]
		if !ok {
			return nil, fmt.Errorf("line %d: %w: %q", lineno, ErrUnknownMnemonic, mnemonic)
		}
		if want := int(info.shape.size()) - 1; want != len(operands) {
			return nil, fmt.Errorf("line %d: %w: %q wants %d operand(s), got %d",
				lineno, ErrWrongArity, mnemonic, want, len(operands))
		}
		if addr+int(info.shape.size()) > loader.SPInitial {
			return nil, fmt.Errorf("line %d: %w", lineno, ErrProgramTooLarge)
		}

		statements = append(statements, statement{
			lineno:   lineno,
			addr:     byte(addr),
			mnemonic: strings.ToUpper(mnemonic),
			info:     info,
			operands: operands,
			raw:      scanner.Text(),
		})
		addr += int(info.shape.size())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return resolveLabelOperands(statements, labels)
}

// resolveLabelOperands replaces any LDI immediate operand that names a
// label (rather than a numeric literal) with its resolved address, now
// that every label has been assigned a byte address.
func resolveLabelOperands(statements []statement, labels map[string]byte) ([]statement, error) {
	for i, st := range statements {
		if st.info.shape != shapeRegImm {
			continue
		}
		imm := st.operands[1]
		if _, err := parseImmediate(imm); err == nil {
			continue // already a numeric literal
		}
		addr, ok := labels[imm]
		if !ok {
			return nil, fmt.Errorf("line %d: %w: %q", st.lineno, ErrUndefinedLabel, imm)
		}
		statements[i].operands[1] = strconv.Itoa(int(addr))
	}
	return statements, nil
}

// secondPass encodes every statement and writes the resulting bytes
// as .ls8 text, one binary literal per line.
func secondPass(w io.Writer, statements []statement) error {
	for _, st := range statements {
		bytes, err := encode(st)
		if err != nil {
			return err
		}
		for _, b := range bytes {
			if _, err := fmt.Fprintf(w, "%08b\n", b); err != nil {
				return err
			}
		}
		text := strings.Join(append([]string{st.mnemonic}, st.operands...), " ")
		if _, err := fmt.Fprintf(w, "# %s\n", text); err != nil {
			return err
		}
	}
	return nil
}

// encode turns one statement into its instruction bytes: opcode
// followed by zero, one, or two operand bytes per its shape.
func encode(st statement) ([]byte, error) {
	switch st.info.shape {
	case shapeNone:
		return []byte{st.info.opcode}, nil

	case shapeReg:
		r, err := parseRegister(st.operands[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", st.lineno, err)
		}
		return []byte{st.info.opcode, r}, nil

	case shapeRegReg:
		a, err := parseRegister(st.operands[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", st.lineno, err)
		}
		b, err := parseRegister(st.operands[1])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", st.lineno, err)
		}
		return []byte{st.info.opcode, a, b}, nil

	case shapeRegImm:
		r, err := parseRegister(st.operands[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", st.lineno, err)
		}
		imm, err := parseImmediate(st.operands[1])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", st.lineno, err)
		}
		return []byte{st.info.opcode, r, imm}, nil

	default:
		panic("asm: unknown shape")
	}
}
