package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/egolang/ego/pkg/bytecode"
	"github.com/egolang/ego/pkg/vm"
)

// newRunCmd builds `ego run <file>`, which runs a .ego source file or a
// pre-compiled .egc bytecode file - the extension picks the path, mirroring
// smog's own run command's .smog/.sg dispatch.
func newRunCmd() *cobra.Command {
	flags := &debugFlags{}
	cmd := &cobra.Command{
		Use:   "run <file>",
		Short: "Run an ego source file or compiled bytecode file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			os.Exit(runFile(args[0], flags))
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func runFile(filename string, flags *debugFlags) int {
	machine := vm.New()
	machine.TraceExec = flags.traceExec
	machine.StressGC = flags.stressGC
	machine.LogGC = flags.logGC

	if filepath.Ext(filename) == ".egc" {
		return runBytecodeFile(machine, filename)
	}
	return runSourceFile(machine, filename, flags.printCode)
}

func runSourceFile(machine *vm.VM, filename string, printCode bool) int {
	data, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ego: %v\n", err)
		return exitIOErr
	}

	var result vm.InterpretResult
	if printCode {
		result = machine.InterpretWithDebug(string(data), true)
	} else {
		result = machine.Interpret(string(data))
	}
	return resultToExitCode(result)
}

func runBytecodeFile(machine *vm.VM, filename string) int {
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
	return resultToExitCode(machine.InterpretFunction(fn))
}

func resultToExitCode(result vm.InterpretResult) int {
	switch result {
	case vm.InterpretOK:
		return exitOK
	case vm.InterpretCompileError:
		return exitCompileErr
	case vm.InterpretRuntimeError:
		return exitRuntimeErr
	default:
		return exitUsageError
	}
}
