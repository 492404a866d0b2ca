package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/xowap/bureaudesrip/cmd"
	"github.com/xowap/bureaudesrip/internal/task"
)

func main() {
	// Set up signal handling for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Pass context to command execution
	cmd.SetContext(ctx)

	if err := cmd.Execute(); err != nil {
		// Check if error was due to context cancellation
		if ctx.Err() != nil {
			fmt.Fprintln(os.Stderr, "\nOperation cancelled")
			os.Exit(130) // Standard exit code for SIGINT
		}

		// A bare exec.ExitError is a wrapped tool that already said
		// everything it had to say on its own streams; only its exit
		// status is propagated, without extra diagnostics.
		if exitErr, ok := err.(*exec.ExitError); ok {
			os.Exit(exitErr.ExitCode())
		}

		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(task.ExitCode(err))
	}
}
