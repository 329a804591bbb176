package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConfigInitWritesSample(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.toml")

	output, err := executeCommand(t, "config", "init", "--path", path)
	if err != nil {
		t.Fatalf("config init returned error: %v", err)
	}
	if !strings.Contains(output, path) {
		t.Fatalf("expected output to mention %s:\n%s", path, output)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected sample config on disk: %v", err)
	}

	if _, err := executeCommand(t, "config", "init", "--path", path); err == nil {
		t.Fatal("expected error without --overwrite")
	}
	if _, err := executeCommand(t, "config", "init", "--path", path, "--overwrite"); err != nil {
		t.Fatalf("config init --overwrite returned error: %v", err)
	}
}

func TestConfigValidateWithDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	output, err := executeCommand(t, "config", "validate")
	if err != nil {
		t.Fatalf("config validate returned error: %v", err)
	}
	if !strings.Contains(output, "Configuration valid") {
		t.Fatalf("unexpected validate output:\n%s", output)
	}
	if !strings.Contains(output, "defaults were used") {
		t.Fatalf("expected defaults notice:\n%s", output)
	}
}

func TestConfigShowRendersModules(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	output, err := executeCommand(t, "config", "show")
	if err != nil {
		t.Fatalf("config show returned error: %v", err)
	}
	for _, name := range []string{"cpu", "memory", "battery", "brightness", "trash"} {
		if !strings.Contains(output, name) {
			t.Fatalf("config show missing module %q:\n%s", name, output)
		}
	}
	if !strings.Contains(output, "Mountpoint") {
		t.Fatalf("config show missing mountpoint line:\n%s", output)
	}
}
