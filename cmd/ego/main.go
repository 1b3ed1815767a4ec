// Command ego is the command-line entry point for the language runtime:
// run a source file, drop into a REPL, or pre-compile/disassemble
// bytecode. Exit codes follow the embedding contract: 0 success, 64 usage
// error, 65 compile error, 70 runtime error, 74 I/O error.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const version = "0.1.0"

// exit codes, matching the sysexits.h-derived contract every subcommand
// that runs ego source honors.
const (
	exitOK         = 0
	exitUsageError = 64
	exitCompileErr = 65
	exitRuntimeErr = 70
	exitIOErr      = 74
)

// debugFlags are the VM/compiler debug knobs every run-like subcommand
// (run, repl) exposes, mirroring clox's -DDEBUG_* build-time switches as
// runtime flags instead.
type debugFlags struct {
	traceExec bool
	printCode bool
	stressGC  bool
	logGC     bool
}

func (f *debugFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.traceExec, "trace-exec", false, "print every instruction and the stack before executing it")
	cmd.Flags().BoolVar(&f.printCode, "print-code", false, "disassemble every function's bytecode as soon as it compiles")
	cmd.Flags().BoolVar(&f.stressGC, "stress-gc", false, "run a full collection before every allocation")
	cmd.Flags().BoolVar(&f.logGC, "log-gc", false, "narrate each collection's phases to stderr")
}

func main() {
	root := &cobra.Command{
		Use:     "ego",
		Short:   "ego is a small class-based scripting language runtime",
		Version: version,
		// Running `ego` with no subcommand and no file argument starts the
		// REPL, matching smog's "no arguments -> REPL" behavior.
		RunE: func(cmd *cobra.Command, args []string) error {
			return runREPL(&debugFlags{})
		},
	}
	root.AddCommand(newRunCmd())
	root.AddCommand(newReplCmd())
	root.AddCommand(newCompileCmd())
	root.AddCommand(newDisasmCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitUsageError)
	}
}
