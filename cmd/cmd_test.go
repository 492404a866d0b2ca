package cmd

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xowap/bureaudesrip/internal/config"
	"github.com/xowap/bureaudesrip/internal/rip"
	"github.com/xowap/bureaudesrip/internal/task"
)

func TestVersion(t *testing.T) {
	assert.Equal(t, "dev", Version)
	assert.Equal(t, "unknown", BuildTime)

	assert.NotNil(t, versionCmd)
	assert.Equal(t, "version", versionCmd.Use)
}

func TestRootCommand(t *testing.T) {
	assert.NotNil(t, rootCmd)
	assert.Equal(t, "bureaudesrip", rootCmd.Use)
	assert.True(t, rootCmd.SilenceUsage)
	assert.True(t, rootCmd.SilenceErrors)

	for _, flag := range []string{"input-file", "output-dir", "title-map", "series-name",
		"episode-name-format", "plan", "no-eject"} {
		assert.NotNil(t, rootCmd.Flags().Lookup(flag), "flag %s", flag)
	}
}

func TestTaskSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, sub := range taskCmd.Commands() {
		names[sub.Name()] = true
	}

	for _, name := range task.Names {
		assert.True(t, names[name], "task %s should be registered", name)
	}
}

func resetPlanFlags(t *testing.T) {
	t.Helper()

	seriesName, nameFormat, planFile = "", "", ""
	titleMap = nil
	t.Cleanup(func() {
		seriesName, nameFormat, planFile = "", "", ""
		titleMap = nil
	})
}

func TestBuildPlanFromFlags(t *testing.T) {
	resetPlanFlags(t)

	seriesName = "Kaamelott"
	titleMap = []string{"1=S01E01", "4=S01E02"}

	plan, err := buildPlan(&config.Config{})
	require.NoError(t, err)

	assert.Equal(t, "Kaamelott", plan.SeriesName)
	assert.Equal(t, []rip.TitleMapEntry{
		{Title: 1, Name: "S01E01"},
		{Title: 4, Name: "S01E02"},
	}, plan.TitleMap)
}

func TestBuildPlanFlagsOverrideFile(t *testing.T) {
	resetPlanFlags(t)

	path := filepath.Join(t.TempDir(), "plan.yaml")
	content := `series_name: From File
titles:
  - title: 2
    name: S09E09
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	planFile = path
	seriesName = "From Flags"

	plan, err := buildPlan(&config.Config{})
	require.NoError(t, err)

	assert.Equal(t, "From Flags", plan.SeriesName)
	// The file's title map survives when no -t flag is given.
	assert.Equal(t, []rip.TitleMapEntry{{Title: 2, Name: "S09E09"}}, plan.TitleMap)
}

func TestBuildPlanIncomplete(t *testing.T) {
	resetPlanFlags(t)

	seriesName = "No Titles"
	_, err := buildPlan(&config.Config{})
	assert.Error(t, err)
}

func TestBuildPlanBadTitleMap(t *testing.T) {
	resetPlanFlags(t)

	seriesName = "X"
	titleMap = []string{"not-a-mapping"}
	_, err := buildPlan(&config.Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1=S02E04")
}

func TestBuildPlanEpisodeFormatFromConfig(t *testing.T) {
	resetPlanFlags(t)

	seriesName = "X"
	titleMap = []string{"1=a"}

	plan, err := buildPlan(&config.Config{EpisodeNameFormat: "{name}.{episode}"})
	require.NoError(t, err)
	assert.Equal(t, "{name}.{episode}", plan.EpisodeNameFormat)

	nameFormat = "{episode}"
	plan, err = buildPlan(&config.Config{EpisodeNameFormat: "{name}.{episode}"})
	require.NoError(t, err)
	assert.Equal(t, "{episode}", plan.EpisodeNameFormat)
}

func TestTaskCommandRunsStub(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("stub tool scripts require a POSIX shell")
	}

	dir := t.TempDir()
	stub := filepath.Join(dir, "tool")
	logPath := filepath.Join(dir, "log")
	script := "#!/bin/sh\necho \"$@\" >> \"" + logPath + "\"\nexit 0\n"
	require.NoError(t, os.WriteFile(stub, []byte(script), 0o755))
	t.Setenv(task.PythonBinEnv, stub)

	rootCmd.SetArgs([]string{"task", "isort"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	require.NoError(t, rootCmd.Execute())

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Equal(t, "isort src\n", string(data))
}

func TestTaskCommandPropagatesFailure(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("stub tool scripts require a POSIX shell")
	}

	dir := t.TempDir()
	stub := filepath.Join(dir, "tool")
	require.NoError(t, os.WriteFile(stub, []byte("#!/bin/sh\nexit 4\n"), 0o755))
	t.Setenv(task.PythonBinEnv, stub)

	rootCmd.SetArgs([]string{"task", "publish"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Equal(t, 4, task.ExitCode(err))
}
