// Command ls8asm assembles LS-8 mnemonic source into .ls8 binary-
// literal text, grounded on risc32/cmd/asm's open-input/stream-output
// shape and rebuilt on cobra per z80-optimizer/cmd/z80opt.
package main

import (
	"log"
	"os"

	"github.com/bassosimone/ls8/pkg/asm"
	"github.com/spf13/cobra"
)

func main() {
	log.SetFlags(0)

	var output string

	cmd := &cobra.Command{
		Use:   "ls8asm <program.asm>",
		Short: "Assemble LS-8 mnemonic source into a .ls8 program",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return assembleFile(args[0], output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")

	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

func assembleFile(path, output string) error {
	in, err := os.Open(path)
	if err != nil {
		return err
	}
	defer in.Close()

	out := os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	return asm.Assemble(in, out)
}
