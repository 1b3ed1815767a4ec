package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/egolang/ego/pkg/bytecode"
	"github.com/egolang/ego/pkg/compiler"
	"github.com/egolang/ego/pkg/vm"
)

// newCompileCmd builds `ego compile <in.ego> [out.egc]`, pre-compiling a
// source file to bytecode so later runs can skip the scanner/compiler
// entirely.
func newCompileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compile <input.ego> [output.egc]",
		Short: "Compile an ego source file to .egc bytecode",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := args[0]
			output := ""
			if len(args) == 2 {
				output = args[1]
			}
			os.Exit(compileFile(input, output))
			return nil
		},
	}
}

func compileFile(inputFile, outputFile string) int {
	if outputFile == "" {
		ext := filepath.Ext(inputFile)
		outputFile = strings.TrimSuffix(inputFile, ext) + ".egc"
	}

	data, err := os.ReadFile(inputFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ego: %v\n", err)
		return exitIOErr
	}

	// A throwaway VM supplies only the Interner the compiler needs; none of
	// its runtime machinery ever executes here.
	interner := vm.New()
	fn, err := compiler.Compile(string(data), interner)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ego: %v\n", err)
		return exitCompileErr
	}

	out, err := os.Create(outputFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ego: %v\n", err)
		return exitIOErr
	}
	defer out.Close()

	if err := bytecode.Encode(fn, out); err != nil {
		fmt.Fprintf(os.Stderr, "ego: %v\n", err)
		return exitIOErr
	}

	fmt.Printf("Compiled %s -> %s\n", inputFile, outputFile)
	return exitOK
}
