// Package paths resolves where campus keeps its configuration and data.
package paths

import (
	"os"
	"path/filepath"
)

// AppName names the per-user configuration directory.
const AppName = "campus"

// DefaultDataDirName is the CWD-relative data directory used when nothing
// else names one.
const DefaultDataDirName = ".campus-db"

// Environment variable names for directory overrides.
const (
	EnvConfigDir = "CAMPUS_CONFIG_DIR"
	EnvDataDir   = "CAMPUS_DATA_DIR"
)

// userConfigDir is swapped out in tests.
var userConfigDir = os.UserConfigDir

// DefaultConfigDir returns the per-user configuration directory:
// $XDG_CONFIG_HOME/campus (or ~/.config/campus) on Linux,
// ~/Library/Application Support/campus on macOS, %AppData%\campus on Windows.
func DefaultConfigDir() (string, error) {
	dir, err := userConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, AppName), nil
}

// ResolveConfigDir returns the configuration directory following the
// precedence chain: flag > CAMPUS_CONFIG_DIR > DefaultConfigDir().
func ResolveConfigDir(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvConfigDir); env != "" {
		return filepath.Abs(env)
	}
	return DefaultConfigDir()
}

// ResolveDataDir returns the data directory following the precedence chain:
// flag > data_dir from config.yaml > CAMPUS_DATA_DIR > $(CWD)/.campus-db.
func ResolveDataDir(flag, configValue string) (string, error) {
	for _, dir := range []string{flag, configValue, os.Getenv(EnvDataDir)} {
		if dir != "" {
			return filepath.Abs(dir)
		}
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, DefaultDataDirName), nil
}
