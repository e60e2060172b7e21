// Command ls8 loads and runs a .ls8 program.
//
// Flag parsing and command wiring follow z80-optimizer/cmd/z80opt:
// cobra.Command with RunE, flags bound via cmd.Flags().*Var. The
// --step single-instruction debugger puts the terminal in raw mode
// the way IntuitionEngine's terminal_host does, so a bare keypress
// (rather than a line followed by Enter) advances execution.
package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"golang.org/x/term"

	"github.com/bassosimone/ls8/pkg/cpu"
	"github.com/spf13/cobra"
)

func main() {
	log.SetFlags(0)

	var trace bool
	var step bool

	cmd := &cobra.Command{
		Use:   "ls8 <program.ls8>",
		Short: "Run an LS-8 virtual machine program",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(args[0], trace, step)
		},
	}
	cmd.Flags().BoolVarP(&trace, "trace", "t", false, "print each instruction's address before executing it")
	cmd.Flags().BoolVarP(&step, "step", "s", false, "pause for a keypress before each instruction")

	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

func run(path string, trace, step bool) error {
	machine := cpu.New()
	if err := machine.LoadFile(path); err != nil {
		return err
	}

	if step {
		restore, err := enableStepMode()
		if err != nil {
			return err
		}
		defer restore()
	}

	for {
		if trace || step {
			fmt.Fprintf(os.Stderr, "pc=%#02x\n", machine.PC)
		}
		if step {
			waitForKeypress()
		}
		halted, err := machine.Step()
		if err != nil {
			return err
		}
		if halted {
			return nil
		}
	}
}

// enableStepMode puts stdin in raw mode so waitForKeypress can read a
// single byte without waiting for a newline, and returns a func that
// restores the previous terminal state.
func enableStepMode() (func(), error) {
	fd := int(os.Stdin.Fd())
	old, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("ls8: failed to enable step mode: %w", err)
	}
	return func() { _ = term.Restore(fd, old) }, nil
}

func waitForKeypress() {
	var buf [1]byte
	if _, err := os.Stdin.Read(buf[:]); err != nil && !errors.Is(err, os.ErrClosed) {
		return
	}
}
