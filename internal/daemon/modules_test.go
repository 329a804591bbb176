package daemon_test

import (
	"testing"

	"cerebro/internal/daemon"
	"cerebro/internal/logging"
)

func TestBuildRegistryCompilesTemperaturePattern(t *testing.T) {
	cfg := testConfig(t)
	cfg.Modules.CPU.Enabled = true
	cfg.Modules.CPU.Temperature.Pattern = `^Core [0-9]+$`

	registry, err := daemon.BuildRegistry(cfg, nil, logging.NewNop(), nil, nil)
	if err != nil {
		t.Fatalf("BuildRegistry returned error: %v", err)
	}
	if _, ok := registry.Get("cpu"); !ok {
		t.Fatal("expected cpu module in the registry")
	}
}

func TestBuildRegistryRejectsBadTemperaturePattern(t *testing.T) {
	cfg := testConfig(t)
	cfg.Modules.CPU.Enabled = true
	cfg.Modules.CPU.Temperature.Pattern = `^Core [`

	if _, err := daemon.BuildRegistry(cfg, nil, logging.NewNop(), nil, nil); err == nil {
		t.Fatal("expected an error for an invalid temperature pattern")
	}
}
