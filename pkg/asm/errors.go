package asm

import "errors"

// Sentinel errors, wrapped with fmt.Errorf("%w: ...") at the call
// site so every message still carries its line number.
var (
	ErrUnknownMnemonic = errors.New("asm: unknown mnemonic")
	ErrBadOperand      = errors.New("asm: bad operand")
	ErrWrongArity      = errors.New("asm: wrong number of operands")
	ErrUndefinedLabel  = errors.New("asm: undefined label")
	ErrDuplicateLabel  = errors.New("asm: duplicate label")
	ErrImmediateRange  = errors.New("asm: immediate out of range")
	ErrProgramTooLarge = errors.New("asm: program does not fit before the stack region")
)
