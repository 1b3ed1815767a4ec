package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/egolang/ego/pkg/bytecode"
	"github.com/egolang/ego/pkg/object"
	"github.com/egolang/ego/pkg/vm"
)

// newDisasmCmd builds `ego disasm <file.egc>`, printing a human-readable
// listing of a compiled bytecode file's every function.
func newDisasmCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "disasm <file.egc>",
		Aliases: []string{"disassemble"},
		Short:   "Disassemble a .egc bytecode file",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			os.Exit(disassembleFile(args[0]))
			return nil
		},
	}
}

func disassembleFile(filename string) int {
	f, err := os.Open(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ego: %v\n", err)
		return exitIOErr
	}
	defer f.Close()

	fn, err := bytecode.Decode(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ego: %v\n", err)
		return exitIOErr
	}

	disassembleFunction(fn)
	return exitOK
}

// disassembleFunction prints fn's chunk and then recurses into every
// nested *object.Function sitting in its constant pool (the compiled
// representation of method bodies and `fun` declarations), since a single
// DisassembleChunk call only covers one function at a time.
func disassembleFunction(fn *object.Function) {
	vm.DisassembleChunk(os.Stdout, fn.Chunk, fn.DisplayName())
	for _, c := range fn.Chunk.Constants {
		if nested, ok := c.(*object.Function); ok {
			fmt.Println()
			disassembleFunction(nested)
		}
	}
}
