package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	Mountpoint string `toml:"mountpoint"`
	DataDir    string `toml:"data_dir"`
	LogDir     string `toml:"log_dir"`
	TriggerDir string `toml:"trigger_dir"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	Triggers       bool   `toml:"triggers"`
	Errors         bool   `toml:"errors"`
}

// History contains configuration for the metric change history store.
type History struct {
	Enabled       bool `toml:"enabled"`
	RetentionDays int  `toml:"retention_days"`
}

// Module contains the polling settings shared by every monitor module.
type Module struct {
	Enabled         bool `toml:"enabled"`
	IntervalSeconds int  `toml:"interval_seconds"`
	JSON            bool `toml:"json"`
	Shell           bool `toml:"shell"`
}

// CPUTemperature selects the hwmon chip and sensor features used for
// physical core temperatures.
type CPUTemperature struct {
	Device  string `toml:"device"`
	Pattern string `toml:"pattern"`
}

// CPUModule extends the common module settings with temperature selection.
type CPUModule struct {
	Module
	Temperature CPUTemperature `toml:"temperature"`
}

// Modules groups the per-module configuration sections.
type Modules struct {
	CPU        CPUModule `toml:"cpu"`
	Memory     Module    `toml:"memory"`
	Battery    Module    `toml:"battery"`
	Brightness Module    `toml:"brightness"`
	Trash      Module    `toml:"trash"`
}

// Config encapsulates all configuration values for cerebro.
//
// Configuration sections by subsystem:
//   - Paths: mountpoint and data/log/trigger directories
//   - Logging: log format, level, and retention
//   - Notifications: ntfy push notification settings
//   - History: metric change persistence and retention
//   - Modules: per-module enablement, intervals, and exports
type Config struct {
	Paths         Paths         `toml:"paths"`
	Logging       Logging       `toml:"logging"`
	Notifications Notifications `toml:"notifications"`
	History       History       `toml:"history"`
	Modules       Modules       `toml:"modules"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/cerebro/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config
// has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("cerebro.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for daemon operation.
// The mountpoint is created on a best-effort basis so config load does not
// fail while a stale mount is still attached.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir, c.Paths.TriggerDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if strings.TrimSpace(c.Paths.Mountpoint) != "" {
		_ = os.MkdirAll(c.Paths.Mountpoint, 0o755)
	}
	return nil
}

// SocketPath returns the control socket location under the data directory.
func (c *Config) SocketPath() string {
	return filepath.Join(c.Paths.DataDir, "cerebro.sock")
}

// HistoryPath returns the SQLite history database location.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.Paths.DataDir, "history.db")
}

// LockPath returns the single-instance lock file location.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.DataDir, "cerebro.lock")
}

// PIDFilePath returns the daemon pid file location.
func (c *Config) PIDFilePath() string {
	return filepath.Join(c.Paths.DataDir, "cerebro.pid")
}

// ModuleSettings returns the polling settings for a module by name.
func (c *Config) ModuleSettings(name string) (Module, bool) {
	switch name {
	case "cpu":
		return c.Modules.CPU.Module, true
	case "memory":
		return c.Modules.Memory, true
	case "battery":
		return c.Modules.Battery, true
	case "brightness":
		return c.Modules.Brightness, true
	case "trash":
		return c.Modules.Trash, true
	default:
		return Module{}, false
	}
}

// ModuleNames lists the known module names in display order.
func ModuleNames() []string {
	return []string{"cpu", "memory", "battery", "brightness", "trash"}
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
