package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
)

// Environment variable names
const (
	// EnvHome is the standard home directory variable
	EnvHome = "HOME"
)

// Default names
const (
	// DefaultBase is the folder created under the config home
	DefaultBase = "jsonstore"

	// FileExt is appended to store names
	FileExt = ".json"

	// LogFileName is the name of the log file
	LogFileName = "jsonstore.log"

	// DefaultsFileName holds user-wide store defaults
	DefaultsFileName = "config.toml"
)

// ConfigHome returns the user config directory. The environment is read on
// every call so that XDG_CONFIG_HOME changes are honoured.
func ConfigHome() string {
	xdg.Reload()
	return xdg.ConfigHome
}

// StateHome returns the user state directory.
func StateHome() string {
	xdg.Reload()
	return xdg.StateHome
}

// StoreFile returns <home>/<base>/<name>.json. Empty home or base fall back
// to ConfigHome and DefaultBase. A name already ending in .json is used as
// is.
func StoreFile(home, base, name string) string {
	if home == "" {
		home = ConfigHome()
	}
	if base == "" {
		base = DefaultBase
	}
	if !IsJSONFile(name) {
		name += FileExt
	}
	return filepath.Join(ExpandHome(home), base, name)
}

// DefaultsFile returns <config home>/jsonstore/config.toml.
func DefaultsFile() string {
	return filepath.Join(ConfigHome(), DefaultBase, DefaultsFileName)
}

// LogFilePath returns the path to the log file under the state home.
func LogFilePath() string {
	return filepath.Join(StateHome(), DefaultBase, LogFileName)
}

// ExpandHome expands a leading ~ to the user's home directory.
func ExpandHome(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		// Fallback to HOME env var
		homeDir = os.Getenv(EnvHome)
		if homeDir == "" {
			// Can't expand, return as-is
			return path
		}
	}

	if len(path) == 1 {
		return homeDir
	}

	// Handle both ~/ and ~
	if path[1] == '/' || path[1] == filepath.Separator {
		return filepath.Join(homeDir, path[2:])
	}

	// ~something (not the user's home)
	return path
}

// IsJSONFile reports whether name carries the store file extension.
func IsJSONFile(name string) bool {
	return strings.EqualFold(filepath.Ext(name), FileExt)
}
