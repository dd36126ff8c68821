package infra

import (
	"os"
	"os/user"
	"path/filepath"
	"strings"
)

const (
	// AppDirName is the directory under the user config dir holding config.toml.
	AppDirName = "network-dmenu"
	// ConfigFileName is the default config file name.
	ConfigFileName = "config.toml"
)

// GetRealUserHome returns the real user's home directory, even when running under sudo.
// Under sudo, os.UserHomeDir() returns root's home, so we use SUDO_USER to find the real user.
func GetRealUserHome() string {
	if sudoUser := os.Getenv("SUDO_USER"); sudoUser != "" && os.Geteuid() == 0 {
		if u, err := user.Lookup(sudoUser); err == nil {
			return u.HomeDir
		}
	}
	home, _ := os.UserHomeDir()
	return home
}

// ConfigDir returns the user configuration directory.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" && filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(GetRealUserHome(), ".config")
}

// DefaultConfigPath returns ~/.config/network-dmenu/config.toml.
func DefaultConfigPath() string {
	return filepath.Join(ConfigDir(), AppDirName, ConfigFileName)
}

// ExpandHome expands ~ to the user's home directory.
func ExpandHome(path string) string {
	return ExpandHomeWith(GetRealUserHome(), path)
}

// ExpandHomeWith expands ~ against a custom home (for testing).
func ExpandHomeWith(home, path string) string {
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	if path == "~" {
		return home
	}
	return path
}
