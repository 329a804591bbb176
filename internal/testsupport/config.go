// Package testsupport provides shared helpers for package tests: temp-dir
// backed configurations and trigger rule fixtures.
package testsupport

import (
	"path/filepath"
	"testing"

	"cerebro/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// All modules are disabled so tests opt in to exactly the collectors they
// exercise, and XDG_DATA_HOME is redirected so the trash module never sees
// the real user trash.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	t.Setenv("XDG_DATA_HOME", filepath.Join(base, "xdg"))

	cfg := config.Default()
	cfg.Paths.Mountpoint = filepath.Join(base, "mnt")
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.TriggerDir = filepath.Join(base, "triggers")
	cfg.Modules.CPU.Enabled = false
	cfg.Modules.Memory.Enabled = false
	cfg.Modules.Battery.Enabled = false
	cfg.Modules.Brightness.Enabled = false
	cfg.Modules.Trash.Enabled = false
	cfg.History.Enabled = false

	for _, opt := range opts {
		opt(cfg)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return cfg
}

// WithTrashModule enables the trash module with the given poll interval.
func WithTrashModule(intervalSeconds int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Modules.Trash = config.Module{Enabled: true, IntervalSeconds: intervalSeconds}
	}
}

// WithHistory enables history recording on the test config.
func WithHistory() ConfigOption {
	return func(cfg *config.Config) {
		cfg.History.Enabled = true
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
