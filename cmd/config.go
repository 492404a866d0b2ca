package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	configCmd = &cobra.Command{
		Use:   "config",
		Short: "Manage bureaudesrip configuration",
	}

	configShowCmd = &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configErr != nil {
				return fmt.Errorf("configuration error: %w", configErr)
			}

			keys := viper.AllKeys()
			sort.Strings(keys)
			for _, key := range keys {
				fmt.Printf("%s: %v\n", key, viper.Get(key))
			}
			return nil
		},
	}

	configSetCmd = &cobra.Command{
		Use:   "set [key] [value]",
		Short: "Set a configuration value and save it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if configErr != nil {
				return fmt.Errorf("configuration error: %w", configErr)
			}

			key, value := args[0], args[1]
			if !isKnownKey(key) {
				return fmt.Errorf("unknown configuration key: %s", key)
			}

			viper.Set(key, value)
			if err := viper.SafeWriteConfig(); err != nil {
				if _, ok := err.(viper.ConfigFileAlreadyExistsError); !ok {
					return fmt.Errorf("failed to save configuration: %w", err)
				}
				if err := viper.WriteConfig(); err != nil {
					return fmt.Errorf("failed to save configuration: %w", err)
				}
			}

			fmt.Printf("Set %s to %s\n", key, value)
			return nil
		},
	}
)

func isKnownKey(key string) bool {
	for _, known := range viper.AllKeys() {
		if key == known {
			return true
		}
	}
	return false
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
