// Package config loads the netmenu configuration file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/eliteGoblin/netmenu/internal/domain"
)

// Picker modes.
const (
	PickerAuto     = "auto"
	PickerExternal = "external"
	PickerTerminal = "terminal"
)

// Config is the on-disk configuration. It is loaded once and not modified afterwards.
type Config struct {
	DmenuCmd               string                `toml:"dmenu_cmd" yaml:"dmenu_cmd"`
	DmenuArgs              string                `toml:"dmenu_args" yaml:"dmenu_args"`
	Picker                 string                `toml:"picker" yaml:"picker"`
	WifiInterface          string                `toml:"wifi_interface" yaml:"wifi_interface"`
	BackendTimeoutMs       int                   `toml:"backend_timeout_ms" yaml:"backend_timeout_ms"`
	Notifications          bool                  `toml:"notifications" yaml:"notifications"`
	CheckMullvad           bool                  `toml:"check_mullvad" yaml:"check_mullvad"`
	ExitNodeAllowLANAccess bool                  `toml:"exit_node_allow_lan_access" yaml:"exit_node_allow_lan_access"`
	Actions                []domain.CustomAction `toml:"actions" yaml:"actions"`
}

// Default returns the built-in configuration written when no file exists.
func Default() Config {
	return Config{
		DmenuCmd:               "dmenu",
		DmenuArgs:              "--no-multi",
		Picker:                 PickerAuto,
		WifiInterface:          "wlan0",
		BackendTimeoutMs:       5000,
		Notifications:          true,
		CheckMullvad:           false,
		ExitNodeAllowLANAccess: true,
		Actions: []domain.CustomAction{
			{Display: "🛡️ Example", Cmd: "notify-send 'hello' 'world'"},
		},
	}
}

// BackendTimeout is the per-backend query timeout.
func (c Config) BackendTimeout() time.Duration {
	return time.Duration(c.BackendTimeoutMs) * time.Millisecond
}

type codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

type tomlCodec struct{}

func (tomlCodec) Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (tomlCodec) Unmarshal(data []byte, v any) error {
	_, err := toml.Decode(string(data), v)
	return err
}

type yamlCodec struct{}

func (yamlCodec) Marshal(v any) ([]byte, error) {
	return yaml.Marshal(v)
}

func (yamlCodec) Unmarshal(data []byte, v any) error {
	return yaml.Unmarshal(data, v)
}

// codecFor picks YAML for .yaml/.yml paths and TOML otherwise.
func codecFor(path string) codec {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yamlCodec{}
	default:
		return tomlCodec{}
	}
}

// Load reads and validates the file at path. Keys missing from the file keep their
// default value, except actions, which are exactly what the file lists.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, &domain.ConfigError{Path: path, Err: err}
	}
	cfg := Default()
	cfg.Actions = nil
	if err := codecFor(path).Unmarshal(data, &cfg); err != nil {
		return Config{}, &domain.ConfigError{Path: path, Err: fmt.Errorf("parse: %w", err)}
	}
	if err := validate(cfg); err != nil {
		return Config{}, &domain.ConfigError{Path: path, Err: err}
	}
	return cfg, nil
}

// Save validates cfg and writes it to path, creating parent directories.
func Save(path string, cfg Config) error {
	if err := validate(cfg); err != nil {
		return &domain.ConfigError{Path: path, Err: err}
	}
	data, err := codecFor(path).Marshal(cfg)
	if err != nil {
		return &domain.ConfigError{Path: path, Err: fmt.Errorf("encode: %w", err)}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return &domain.ConfigError{Path: path, Err: err}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return &domain.ConfigError{Path: path, Err: err}
	}
	return nil
}

// EnsureDefault writes the default configuration when path does not exist.
// It reports whether a file was created.
func EnsureDefault(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return false, nil
	}
	if !os.IsNotExist(err) {
		return false, &domain.ConfigError{Path: path, Err: err}
	}
	if err := Save(path, Default()); err != nil {
		return false, err
	}
	return true, nil
}

// LoadOrCreate creates the default file if needed and loads it.
func LoadOrCreate(path string) (Config, bool, error) {
	created, err := EnsureDefault(path)
	if err != nil {
		return Config{}, false, err
	}
	cfg, err := Load(path)
	return cfg, created, err
}

func validate(cfg Config) error {
	if strings.TrimSpace(cfg.DmenuCmd) == "" && cfg.Picker == PickerExternal {
		return errors.New("dmenu_cmd is required when picker is external")
	}
	switch cfg.Picker {
	case PickerAuto, PickerExternal, PickerTerminal:
	default:
		return fmt.Errorf("picker must be auto|external|terminal, got %q", cfg.Picker)
	}
	if cfg.BackendTimeoutMs <= 0 {
		return errors.New("backend_timeout_ms must be positive")
	}
	for i, a := range cfg.Actions {
		if a.Display == "" {
			return fmt.Errorf("actions[%d]: display is required", i)
		}
		if strings.ContainsAny(a.Display, "\r\n") {
			return fmt.Errorf("actions[%d] %q: display must be a single line", i, a.Display)
		}
		if strings.TrimSpace(a.Cmd) == "" {
			return fmt.Errorf("actions[%d] %q: cmd is required", i, a.Display)
		}
	}
	return nil
}
