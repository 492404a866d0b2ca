// Package task implements the project's developer tasks: format, black,
// isort and publish. Each task shells out to the wrapped tool with fixed
// arguments and surfaces the tool's exit status untouched; composition
// (format = isort then black) is fail-fast sequential.
//
// Two environment variables configure the tasks. PYTHON_BIN is the
// interpreter-invocation prefix prepended to every tool invocation. ENV
// names the publish target; it is declared with a default but no task
// currently consumes it, which mirrors the original build file as-is.
package task

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Task names, in the order they appear in help output.
const (
	NameFormat  = "format"
	NameBlack   = "black"
	NameIsort   = "isort"
	NamePublish = "publish"
)

// Names lists every defined task.
var Names = []string{NameFormat, NameBlack, NameIsort, NamePublish}

const (
	// SourceDir is the directory the formatting tasks operate on.
	SourceDir = "src"

	// TargetVersion is black's --target-version value.
	TargetVersion = "py38"

	// ExcludePattern is passed verbatim to black to skip version
	// control, cache, build and bundler directories.
	ExcludePattern = `/(\.git|\.hg|\.mypy_cache|\.tox|\.venv|_build|buck-out|build|dist|node_modules)/`
)

const (
	// PythonBinEnv overrides the interpreter-invocation prefix for
	// every task.
	PythonBinEnv = "PYTHON_BIN"

	// DefaultPythonBin runs tools inside the project environment.
	DefaultPythonBin = "poetry run"

	// PublishEnv names the publish target index. Declared but unused
	// by the publish task, same as the original build file.
	PublishEnv = "ENV"

	// DefaultPublishTarget is the test package index.
	DefaultPublishTarget = "testpypi"
)

// ToolPrefix returns the interpreter-invocation prefix as an argv slice,
// honoring a PYTHON_BIN override. Read once per call.
func ToolPrefix() []string {
	raw := os.Getenv(PythonBinEnv)
	if raw == "" {
		raw = DefaultPythonBin
	}
	return strings.Fields(raw)
}

// PublishTarget returns the configured publish target name, honoring an
// ENV override. Exposed so the task listing can show it, even though the
// publish recipe does not consume it.
func PublishTarget() string {
	if target := os.Getenv(PublishEnv); target != "" {
		return target
	}
	return DefaultPublishTarget
}

// Run dispatches a task by name.
func (r Runner) Run(ctx context.Context, name string) error {
	switch name {
	case NameFormat:
		return r.Format(ctx)
	case NameBlack:
		return r.Black(ctx)
	case NameIsort:
		return r.Isort(ctx)
	case NamePublish:
		return r.Publish(ctx)
	default:
		return fmt.Errorf("unknown task: %s", name)
	}
}

// Format runs the import-sorter then the formatter. If the import-sorter
// fails the formatter does not run.
func (r Runner) Format(ctx context.Context) error {
	return r.sequence(ctx, r.Isort, r.Black)
}

// Black runs the formatter alone over the source directory.
func (r Runner) Black(ctx context.Context) error {
	return r.invoke(ctx, blackArgs())
}

// Isort runs the import-sorter alone over the source directory.
func (r Runner) Isort(ctx context.Context) error {
	return r.invoke(ctx, isortArgs())
}

// Publish builds the package artifact and uploads it in one wrapped
// invocation.
func (r Runner) Publish(ctx context.Context) error {
	return r.invoke(ctx, publishArgs())
}

func blackArgs() []string {
	return []string{
		"black",
		"--target-version", TargetVersion,
		"--exclude", ExcludePattern,
		SourceDir,
	}
}

func isortArgs() []string {
	return []string{"isort", SourceDir}
}

func publishArgs() []string {
	return []string{"poetry", "publish", "--build"}
}

func (r Runner) sequence(ctx context.Context, steps ...func(context.Context) error) error {
	for _, step := range steps {
		if err := step(ctx); err != nil {
			return err
		}
	}
	return nil
}

// ExitCode extracts the wrapped tool's exit status from err. Returns 1
// for errors that did not come from a tool exiting non-zero (such as the
// tool binary missing).
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return 1
}
