package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ntfsinv/mftinv/internal/config"
	"github.com/ntfsinv/mftinv/internal/env"
	"github.com/ntfsinv/mftinv/internal/logger"
	"github.com/ntfsinv/mftinv/internal/privilege"
)

const AppName = env.AppName

var (
	configPath string
	logLevel   string
)

// Execute builds and runs the root command: list-volumes and inventory.
func Execute() error {
	rootCmd := &cobra.Command{
		Use:   AppName,
		Short: AppName + " - NTFS MFT disk-space inventory tool",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if level := privilege.Probe(); level == privilege.NotElevated {
				fmt.Fprintln(cmd.ErrOrStderr(), "[WARN] process is not elevated; raw volume access will likely fail")
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a config file (default: mftinv-config.yaml in ., $HOME/.mftinv, /etc/mftinv)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "DEBUG, INFO, WARN, or ERROR (overrides config file)")

	rootCmd.AddCommand(newListVolumesCommand())
	rootCmd.AddCommand(newInventoryCommand())

	return rootCmd.Execute()
}

// loadConfig layers the optional config file under whatever cobra flags the
// caller already parsed, per internal/config's viper/cobra split.
func loadConfig(driveLetters []string, workers int) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	cfg.MergeFlags(driveLetters, logLevel, workers)
	return cfg, nil
}

func newLogger(cfg *config.Config) *logger.Logger {
	return logger.New(os.Stdout, logger.ParseLevel(cfg.LogLevel))
}
