package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/xowap/bureaudesrip/internal/config"
	"github.com/xowap/bureaudesrip/internal/handbrake"
	"github.com/xowap/bureaudesrip/internal/rip"
)

var (
	cfgFile    string
	inputFile  string
	outputDir  string
	titleMap   []string
	seriesName string
	nameFormat string
	planFile   string
	noEject    bool
	verbose    bool
	configErr  error

	rootCmd = &cobra.Command{
		Use:   "bureaudesrip",
		Short: "bureaudesrip - DVD ripping assistant",
		Long: `bureaudesrip scans a DVD with HandBrakeCLI, transcodes a mapped set ` +
			`of titles into per-episode MKV files, and ejects the disc when done.`,
		Version:       fmt.Sprintf("%s (built at %s)", Version, BuildTime),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if configErr != nil {
				return fmt.Errorf("configuration error: %w", configErr)
			}
			return runRip(cmd.Context())
		},
	}

	appCtx = context.Background()
)

// SetContext sets the context commands run under, typically the
// signal-aware context from main.
func SetContext(ctx context.Context) {
	appCtx = ctx
}

func Execute() error {
	return rootCmd.ExecuteContext(appCtx)
}

// RootCmd exposes the root command for documentation generation.
func RootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"Configuration file path (default is $HOME/.bureaudesrip.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "V", false,
		"Show the external commands being run")

	rootCmd.Flags().StringVarP(&inputFile, "input-file", "i", "",
		"Path to the DVD device (default /dev/dvd)")
	rootCmd.Flags().StringVarP(&outputDir, "output-dir", "o", "",
		"Directory in which the ripped files are put")
	rootCmd.Flags().StringArrayVarP(&titleMap, "title-map", "t", nil,
		"Episode name for a title, as '{title_id}={title_name}' (repeatable)")
	rootCmd.Flags().StringVarP(&seriesName, "series-name", "n", "",
		"Overall series name")
	rootCmd.Flags().StringVarP(&nameFormat, "episode-name-format", "f", "",
		"Template for file names ({name} and {episode} get replaced)")
	rootCmd.Flags().StringVar(&planFile, "plan", "",
		"YAML rip plan file (flags override its values)")
	rootCmd.Flags().BoolVar(&noEject, "no-eject", false,
		"Do not eject the disc when the rip is done")
}

func initConfig() {
	configErr = config.InitConfig(cfgFile)
}

func runRip(ctx context.Context) error {
	cfg, err := config.GetConfig()
	if err != nil {
		return err
	}

	plan, err := buildPlan(cfg)
	if err != nil {
		return err
	}

	if outputDir == "" {
		return errors.New("an output directory is required (-o)")
	}

	device := inputFile
	if device == "" {
		device = cfg.InputFile
	}

	client := &handbrake.Client{
		Bin:      cfg.HandBrakeBin,
		EjectBin: cfg.EjectBin,
		Encoding: handbrake.Encoding{
			Quality: cfg.Encoder.Quality,
			Preset:  cfg.Encoder.Preset,
			Tune:    cfg.Encoder.Tune,
		},
		Verbose: verbose,
		Logger:  os.Stderr,
	}

	flow := rip.NewFlow(client, plan, rip.Options{
		Device:    device,
		OutputDir: outputDir,
		NoEject:   noEject,
	})
	return flow.Run(ctx)
}

// buildPlan assembles the rip plan from the optional plan file and the
// CLI flags, flags winning over file values.
func buildPlan(cfg *config.Config) (*rip.Plan, error) {
	plan := &rip.Plan{EpisodeNameFormat: cfg.EpisodeNameFormat}

	if planFile != "" {
		loaded, err := rip.LoadPlan(planFile)
		if err != nil {
			return nil, err
		}
		plan = loaded
		if plan.EpisodeNameFormat == "" {
			plan.EpisodeNameFormat = cfg.EpisodeNameFormat
		}
	}

	if seriesName != "" {
		plan.SeriesName = seriesName
	}
	if nameFormat != "" {
		plan.EpisodeNameFormat = nameFormat
	}

	if len(titleMap) > 0 {
		entries := make([]rip.TitleMapEntry, 0, len(titleMap))
		for _, val := range titleMap {
			entry, err := rip.ParseTitleMapEntry(val)
			if err != nil {
				return nil, err
			}
			entries = append(entries, entry)
		}
		plan.TitleMap = entries
	}

	if err := plan.Validate(); err != nil {
		return nil, err
	}
	return plan, nil
}
