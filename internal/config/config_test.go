package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "INFO", cfg.LogLevel)
	require.Equal(t, 1, cfg.Workers)
	require.Empty(t, cfg.DriveLetters)
}

func TestLoadExplicitFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mftinv-config.yaml")
	content := "drive_letters: [C, D]\nlog_level: DEBUG\nworkers: 4\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, []string{"C", "D"}, cfg.DriveLetters)
	require.Equal(t, "DEBUG", cfg.LogLevel)
	require.Equal(t, 4, cfg.Workers)
}

func TestLoadExplicitFileMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

// Flags parsed by cobra win over whatever the config file supplied; zero
// values leave the config untouched.
func TestMergeFlags(t *testing.T) {
	cfg := &Config{DriveLetters: []string{"C"}, LogLevel: "INFO", Workers: 1}

	cfg.MergeFlags([]string{"D"}, "DEBUG", 8)
	require.Equal(t, []string{"D"}, cfg.DriveLetters)
	require.Equal(t, "DEBUG", cfg.LogLevel)
	require.Equal(t, 8, cfg.Workers)

	cfg.MergeFlags(nil, "", 0)
	require.Equal(t, []string{"D"}, cfg.DriveLetters)
	require.Equal(t, "DEBUG", cfg.LogLevel)
	require.Equal(t, 8, cfg.Workers)
}
