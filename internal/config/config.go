// Package config layers an optional config file over cobra flags: defaults,
// then config file, then flags the caller already parsed take precedence.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config holds the run-wide defaults that either a config file or cobra
// flags can supply.
type Config struct {
	DriveLetters []string `mapstructure:"drive_letters"`
	LogLevel     string   `mapstructure:"log_level"`
	Workers      int      `mapstructure:"workers"`
}

// Load reads an optional config file (named mftinv-config.yaml, searched in
// the working directory, $HOME/.mftinv, and /etc/mftinv) layered over
// built-in defaults. When no explicit path is given, finding no config file
// is not an error; an explicit path that cannot be read is.
func Load(explicitPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	if explicitPath != "" {
		v.SetConfigFile(explicitPath)
	} else {
		v.SetConfigName("mftinv-config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.mftinv")
		v.AddConfigPath("/etc/mftinv")
	}

	v.SetDefault("log_level", "INFO")
	v.SetDefault("workers", 1)

	v.SetEnvPrefix("MFTINV")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("config: reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshaling: %w", err)
	}
	return &cfg, nil
}

// MergeFlags overlays non-zero-value flags parsed by cobra on top of the
// config file's values, giving flags the final say.
func (c *Config) MergeFlags(driveLetters []string, logLevel string, workers int) {
	if len(driveLetters) > 0 {
		c.DriveLetters = driveLetters
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
	if workers > 0 {
		c.Workers = workers
	}
}
