package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"
	"golang.org/x/sys/unix"

	"github.com/egolang/ego/pkg/vm"
)

// newReplCmd builds `ego repl`, equivalent to running `ego` with no
// arguments at all - both start an interactive session against a fresh VM.
func newReplCmd() *cobra.Command {
	flags := &debugFlags{}
	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive read-eval-print loop",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runREPL(flags)
		},
	}
	flags.register(cmd)
	return cmd
}

// historyFile is where readline persists REPL input across sessions,
// mirroring the way a shell keeps a .bash_history alongside $HOME.
func historyFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".ego_history")
}

// runREPL drives a read-eval-print loop against a single persistent VM, so
// globals and classes declared on one line stay visible on the next -
// every line is still compiled from scratch, since the compiler has no
// incremental mode, but the VM's globals table and intern set survive
// between calls to Interpret.
func runREPL(flags *debugFlags) error {
	machine := vm.New()
	machine.TraceExec = flags.traceExec
	machine.StressGC = flags.stressGC
	machine.LogGC = flags.logGC

	if unix.IsTerminal(int(os.Stdin.Fd())) {
		return runInteractiveREPL(machine, flags.printCode)
	}
	return runPipedREPL(machine, flags.printCode)
}

// runInteractiveREPL is the fancy path: readline gives history, line
// editing, and ctrl-key bindings when stdin is an actual terminal.
func runInteractiveREPL(machine *vm.VM, printCode bool) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "ego> ",
		HistoryFile:     historyFile(),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("starting readline: %w", err)
	}
	defer rl.Close()

	fmt.Printf("ego %s\n", version)
	fmt.Println("Type 'exit' or press Ctrl-D to quit.")

	for {
		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			return nil
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			return nil
		}

		evalREPLLine(machine, line, printCode)
	}
}

// runPipedREPL is the plain fallback used when stdin isn't a terminal -
// scripted tests and CI feed a file or pipe in rather than typing
// interactively, and readline's prompt redraws would just clutter output.
func runPipedREPL(machine *vm.VM, printCode bool) error {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line == "exit" || line == "quit" {
			continue
		}
		evalREPLLine(machine, line, printCode)
	}
	if err := scanner.Err(); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// evalREPLLine compiles and runs one line against the shared VM. Compile
// and runtime errors are reported the same way they are for a script file -
// the compiler prints compile errors to stderr and the VM prints runtime
// errors to machine.Stderr - so a bad line just leaves a message on the
// screen instead of killing the session.
func evalREPLLine(machine *vm.VM, line string, printCode bool) {
	if printCode {
		machine.InterpretWithDebug(line, true)
	} else {
		machine.Interpret(line)
	}
}
