// ./main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/xkilldash9x/camcheck/cmd"
	"github.com/xkilldash9x/camcheck/internal/observability"
)

const panicLogFile = "panic.log"

// Function variables for dependency injection in tests.
var (
	osWriteFile = os.WriteFile
	osExit      = os.Exit
	execute     = cmd.Execute
)

// main is the entry point for camcheck. Exit status is 0 when every check
// passed and 1 otherwise.
func main() {
	defer handlePanic()
	osExit(run(os.Args[1:]))
}

// run executes the command line under a signal-aware context and maps the
// outcome to an exit code.
func run(args []string) int {
	// SIGINT/SIGTERM cancel the run context; the session is still closed.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	defer observability.Sync()

	if err := execute(ctx, args); err != nil {
		return 1
	}
	return 0
}

// handlePanic is the last-resort sentinel: it records the crash in panic.log and exits 1.
func handlePanic() {
	r := recover()
	if r == nil {
		return
	}
	observability.Sync()

	panicMessage := fmt.Sprintf("panic: %v\n\n%s", r, debug.Stack())
	if err := osWriteFile(panicLogFile, []byte(panicMessage), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL: Failed to write panic log: %v\n", err)
		fmt.Fprintf(os.Stderr, "Panic details:\n%s\n", panicMessage)
		osExit(1)
		return
	}
	fmt.Fprintf(os.Stderr, "camcheck crashed; details logged to %s\n", panicLogFile)
	osExit(1)
}
