package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/primegrid/primegrid/internal/config"
)

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "primegrid",
		Short:        "Distributed prime counting over binary datasets",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().String("config", "", "Path to YAML config file (defaults apply when omitted)")

	cmd.AddCommand(checkCmd())
	cmd.AddCommand(generateCmd())
	cmd.AddCommand(dispatcherCmd())
	cmd.AddCommand(workerCmd())
	cmd.AddCommand(fileserverCmd())
	return cmd
}

// loadConfig resolves the --config flag. An explicitly named file must
// exist; without the flag the defaults are used.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	if path == "" {
		cfg := config.DefaultConfig()
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid default config: %w", err)
		}
		return cfg, nil
	}
	return config.LoadFromFile(path)
}
