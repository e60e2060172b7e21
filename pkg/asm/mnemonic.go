package asm

import "github.com/bassosimone/ls8/pkg/cpu"

// shape classifies a mnemonic by its operand list: one register (the
// unary ALU shape in pkg/cpu/alu.go), two registers (its binary and
// compare shapes), plus the two non-ALU shapes (bare opcode, and
// register+immediate for LDI) — four shapes in all.
type shape int

const (
	shapeNone    shape = iota // HLT
	shapeReg                  // PUSH R0
	shapeRegReg               // ADD R0 R1
	shapeRegImm               // LDI R0 8
)

// mnemonicInfo is everything the assembler needs to encode one
// mnemonic: its opcode byte and how many operands to expect.
type mnemonicInfo struct {
	opcode byte
	shape  shape
}

// size is the number of bytes an instruction of this shape occupies,
// used both to size the output and to compute label addresses during
// the first assembly pass.
func (s shape) size() byte {
	switch s {
	case shapeNone:
		return 1
	case shapeReg:
		return 2
	case shapeRegReg, shapeRegImm:
		return 3
	default:
		panic("asm: unknown shape")
	}
}

// mnemonics maps each assembly mnemonic to its opcode and shape. The
// opcode values come from pkg/cpu, never duplicated here, so the
// assembler and the machine it targets cannot drift apart.
var mnemonics = map[string]mnemonicInfo{
	"NOP":  {cpu.OpNOP, shapeNone},
	"HLT":  {cpu.OpHLT, shapeNone},
	"RET":  {cpu.OpRET, shapeNone},
	"IRET": {cpu.OpIRET, shapeNone},

	"PUSH": {cpu.OpPUSH, shapeReg},
	"POP":  {cpu.OpPOP, shapeReg},
	"PRN":  {cpu.OpPRN, shapeReg},
	"PRA":  {cpu.OpPRA, shapeReg},
	"CALL": {cpu.OpCALL, shapeReg},
	"INT":  {cpu.OpINT, shapeReg},
	"JMP":  {cpu.OpJMP, shapeReg},
	"JEQ":  {cpu.OpJEQ, shapeReg},
	"JNE":  {cpu.OpJNE, shapeReg},
	"JGT":  {cpu.OpJGT, shapeReg},
	"JLT":  {cpu.OpJLT, shapeReg},
	"JLE":  {cpu.OpJLE, shapeReg},
	"JGE":  {cpu.OpJGE, shapeReg},
	"INC":  {cpu.OpINC, shapeReg},
	"DEC":  {cpu.OpDEC, shapeReg},
	"NOT":  {cpu.OpNOT, shapeReg},

	"LD":  {cpu.OpLD, shapeRegReg},
	"ST":  {cpu.OpST, shapeRegReg},
	"ADD": {cpu.OpADD, shapeRegReg},
	"SUB": {cpu.OpSUB, shapeRegReg},
	"MUL": {cpu.OpMUL, shapeRegReg},
	"DIV": {cpu.OpDIV, shapeRegReg},
	"MOD": {cpu.OpMOD, shapeRegReg},
	"CMP": {cpu.OpCMP, shapeRegReg},
	"AND": {cpu.OpAND, shapeRegReg},
	"OR":  {cpu.OpOR, shapeRegReg},
	"XOR": {cpu.OpXOR, shapeRegReg},
	"SHL": {cpu.OpSHL, shapeRegReg},
	"SHR": {cpu.OpSHR, shapeRegReg},

	"LDI": {cpu.OpLDI, shapeRegImm},
}
