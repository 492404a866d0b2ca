package task

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeStub creates an executable that records its arguments to logPath
// (one invocation per line) and exits with the code produced by the
// given shell expression.
func writeStub(t *testing.T, exitExpr string) (stubPath, logPath string) {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("stub tool scripts require a POSIX shell")
	}

	dir := t.TempDir()
	stubPath = filepath.Join(dir, "tool")
	logPath = filepath.Join(dir, "invocations.log")

	script := fmt.Sprintf("#!/bin/sh\necho \"$@\" >> %q\n%s\n", logPath, exitExpr)
	require.NoError(t, os.WriteFile(stubPath, []byte(script), 0o755))
	return stubPath, logPath
}

func readInvocations(t *testing.T, logPath string) []string {
	t.Helper()

	data, err := os.ReadFile(logPath)
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}

func silentRunner() Runner {
	return Runner{Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}, Logger: &bytes.Buffer{}}
}

func TestToolPrefix(t *testing.T) {
	t.Run("default", func(t *testing.T) {
		t.Setenv(PythonBinEnv, "")
		assert.Equal(t, []string{"poetry", "run"}, ToolPrefix())
	})

	t.Run("override", func(t *testing.T) {
		t.Setenv(PythonBinEnv, "python3 -m")
		assert.Equal(t, []string{"python3", "-m"}, ToolPrefix())
	})
}

func TestPublishTarget(t *testing.T) {
	t.Run("default", func(t *testing.T) {
		t.Setenv(PublishEnv, "")
		assert.Equal(t, "testpypi", PublishTarget())
	})

	t.Run("override", func(t *testing.T) {
		t.Setenv(PublishEnv, "pypi")
		assert.Equal(t, "pypi", PublishTarget())
	})
}

func TestRunSuccessPropagatesZero(t *testing.T) {
	stub, _ := writeStub(t, "exit 0")

	for _, name := range Names {
		t.Run(name, func(t *testing.T) {
			t.Setenv(PythonBinEnv, stub)
			err := silentRunner().Run(context.Background(), name)
			assert.NoError(t, err)
			assert.Equal(t, 0, ExitCode(err))
		})
	}
}

func TestRunFailurePropagatesExitCode(t *testing.T) {
	stub, _ := writeStub(t, "exit 3")

	for _, name := range Names {
		t.Run(name, func(t *testing.T) {
			t.Setenv(PythonBinEnv, stub)
			err := silentRunner().Run(context.Background(), name)
			require.Error(t, err)
			assert.Equal(t, 3, ExitCode(err))
		})
	}
}

func TestPrefixOverrideAffectsEveryTask(t *testing.T) {
	stub, logPath := writeStub(t, "exit 0")
	t.Setenv(PythonBinEnv, stub)

	runner := silentRunner()
	for _, name := range []string{NameBlack, NameIsort, NamePublish} {
		require.NoError(t, runner.Run(context.Background(), name))
	}

	// Three tasks, three stub invocations: every task went through the
	// overridden prefix.
	assert.Len(t, readInvocations(t, logPath), 3)
}

func TestFormatRunsIsortThenBlack(t *testing.T) {
	stub, logPath := writeStub(t, "exit 0")
	t.Setenv(PythonBinEnv, stub)

	require.NoError(t, silentRunner().Format(context.Background()))

	invocations := readInvocations(t, logPath)
	require.Len(t, invocations, 2)
	assert.Equal(t, "isort src", invocations[0])
	assert.Equal(t,
		"black --target-version py38 --exclude "+ExcludePattern+" src",
		invocations[1])
}

func TestFormatFailFast(t *testing.T) {
	// The stub fails whenever it is asked to run isort, so black must
	// never be reached.
	stub, logPath := writeStub(t, "if [ \"$1\" = \"isort\" ]; then exit 7; fi\nexit 0")
	t.Setenv(PythonBinEnv, stub)

	err := silentRunner().Format(context.Background())
	require.Error(t, err)
	assert.Equal(t, 7, ExitCode(err))

	invocations := readInvocations(t, logPath)
	require.Len(t, invocations, 1)
	assert.True(t, strings.HasPrefix(invocations[0], "isort"))
}

func TestPublishIgnoresPublishTarget(t *testing.T) {
	stub, logPath := writeStub(t, "exit 0")
	t.Setenv(PythonBinEnv, stub)
	t.Setenv(PublishEnv, "")

	require.NoError(t, silentRunner().Publish(context.Background()))

	// No ENV override, still a runnable build+upload invocation; the
	// target never reaches the command line.
	invocations := readInvocations(t, logPath)
	require.Len(t, invocations, 1)
	assert.Equal(t, "poetry publish --build", invocations[0])
	assert.NotContains(t, invocations[0], DefaultPublishTarget)
}

func TestRunUnknownTask(t *testing.T) {
	err := silentRunner().Run(context.Background(), "deploy")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown task")
}

func TestVerboseLogsCommandLine(t *testing.T) {
	stub, _ := writeStub(t, "exit 0")
	t.Setenv(PythonBinEnv, stub)

	var log bytes.Buffer
	runner := Runner{
		Verbose: true,
		Stdout:  &bytes.Buffer{},
		Stderr:  &bytes.Buffer{},
		Logger:  &log,
	}
	require.NoError(t, runner.Isort(context.Background()))
	assert.Contains(t, log.String(), "Running: "+stub+" isort src")
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, 1, ExitCode(fmt.Errorf("tool not found")))
}
