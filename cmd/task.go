package cmd

import (
	"github.com/spf13/cobra"

	"github.com/xowap/bureaudesrip/internal/task"
)

// The task subcommands wrap the project's developer tools. They take no
// flags and no arguments; their exit status is exactly the wrapped
// tool's exit status.
var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Run a developer task (format, black, isort, publish)",
	Long: `Developer tasks for the project's source tree. Each task shells out to
the wrapped tool and propagates its exit status unmodified.

The PYTHON_BIN environment variable overrides the interpreter-invocation
prefix for every task (default "` + task.DefaultPythonBin + `"). The ENV
variable names the publish target (default "` + task.DefaultPublishTarget + `");
it is declared for compatibility but the publish task does not read it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func init() {
	rootCmd.AddCommand(taskCmd)

	short := map[string]string{
		task.NameFormat:  "Run the import-sorter then the formatter over " + task.SourceDir,
		task.NameBlack:   "Run the formatter alone over " + task.SourceDir,
		task.NameIsort:   "Run the import-sorter alone over " + task.SourceDir,
		task.NamePublish: "Build the package artifact and upload it",
	}

	for _, name := range task.Names {
		name := name
		taskCmd.AddCommand(&cobra.Command{
			Use:   name,
			Short: short[name],
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				// The tool's own output is the only diagnostic; its
				// error goes back untranslated so main can propagate
				// the exit status.
				runner := task.Runner{Verbose: verbose}
				return runner.Run(cmd.Context(), name)
			},
		})
	}
}
