// Package config loads the application configuration with viper: an
// optional ~/.bureaudesrip.yaml (or an explicit --config file), with
// environment overrides and sensible defaults.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config is the application configuration.
type Config struct {
	HandBrakeBin      string        `mapstructure:"handbrake_bin"`
	EjectBin          string        `mapstructure:"eject_bin"`
	InputFile         string        `mapstructure:"input_file"`
	EpisodeNameFormat string        `mapstructure:"episode_name_format"`
	Encoder           EncoderConfig `mapstructure:"encoder"`
}

// EncoderConfig is the tunable part of the transcode settings.
type EncoderConfig struct {
	Quality string `mapstructure:"quality"`
	Preset  string `mapstructure:"preset"`
	Tune    string `mapstructure:"tune"`
}

// Default configuration values.
const (
	DefaultConfigName     = ".bureaudesrip"
	DefaultHandBrakeBin   = "HandBrakeCLI"
	DefaultEjectBin       = "eject"
	DefaultInputFile      = "/dev/dvd"
	DefaultEncoderQuality = "18"
	DefaultEncoderPreset  = "medium"
	DefaultEncoderTune    = "film"
)

// InitConfig initializes viper. When cfgFile is empty the config file
// is searched in the user's home directory; a missing file is fine,
// defaults apply.
func InitConfig(cfgFile string) error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to find home directory: %w", err)
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(DefaultConfigName)
		viper.SetConfigType("yaml")
	}

	setDefaults()

	viper.SetEnvPrefix("BUREAUDESRIP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

func setDefaults() {
	viper.SetDefault("handbrake_bin", DefaultHandBrakeBin)
	viper.SetDefault("eject_bin", DefaultEjectBin)
	viper.SetDefault("input_file", DefaultInputFile)
	viper.SetDefault("episode_name_format", "")
	viper.SetDefault("encoder.quality", DefaultEncoderQuality)
	viper.SetDefault("encoder.preset", DefaultEncoderPreset)
	viper.SetDefault("encoder.tune", DefaultEncoderTune)
}

// GetConfig returns the current configuration.
func GetConfig() (*Config, error) {
	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}
	return cfg, nil
}
