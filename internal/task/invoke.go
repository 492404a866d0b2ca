package task

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// Runner executes tasks with shared logging and output handling. The
// zero value runs in the current directory with the process's standard
// streams, so wrapped tool output passes through unmodified.
type Runner struct {
	Verbose bool
	Dir     string
	Stdout  io.Writer
	Stderr  io.Writer
	Logger  io.Writer
}

func (r Runner) withDefaults() Runner {
	if r.Stdout == nil {
		r.Stdout = os.Stdout
	}
	if r.Stderr == nil {
		r.Stderr = os.Stderr
	}
	if r.Logger == nil {
		r.Logger = os.Stderr
	}
	return r
}

// invoke prepends the tool prefix to args and runs the result, streaming
// the tool's output to the runner's writers. The returned error is the
// tool's own failure, unwrapped, so callers can recover the exit status.
func (r Runner) invoke(ctx context.Context, args []string) error {
	r = r.withDefaults()

	argv := append(ToolPrefix(), args...)
	if len(argv) == 0 {
		return fmt.Errorf("empty tool invocation")
	}

	if r.Verbose {
		fmt.Fprintf(r.Logger, "Running: %s\n", strings.Join(argv, " "))
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = r.Dir
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr

	return cmd.Run()
}
