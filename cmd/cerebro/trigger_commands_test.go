package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestTriggersTestReportsMatches(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	triggerDir := filepath.Join(home, ".config", "cerebro")
	if err := os.MkdirAll(triggerDir, 0o755); err != nil {
		t.Fatalf("create trigger dir: %v", err)
	}
	rules := "U /battery/percent < 20 notify-send battery-low\n"
	if err := os.WriteFile(filepath.Join(triggerDir, "battery.triggers"), []byte(rules), 0o644); err != nil {
		t.Fatalf("write rules: %v", err)
	}

	output, err := executeCommand(t, "triggers", "test", "U", "/battery/percent", "30", "10")
	if err != nil {
		t.Fatalf("triggers test returned error: %v", err)
	}
	if !strings.Contains(output, "would fire") {
		t.Fatalf("expected a firing rule:\n%s", output)
	}
	if !strings.Contains(output, "notify-send battery-low") {
		t.Fatalf("expected rule command in output:\n%s", output)
	}
}

func TestTriggersTestNoMatch(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	if err := os.MkdirAll(filepath.Join(home, ".config", "cerebro"), 0o755); err != nil {
		t.Fatalf("create trigger dir: %v", err)
	}

	output, err := executeCommand(t, "triggers", "test", "U", "/cpu/usage_percent", "10", "20")
	if err != nil {
		t.Fatalf("triggers test returned error: %v", err)
	}
	if !strings.Contains(output, "No rules would fire") {
		t.Fatalf("expected no matches:\n%s", output)
	}
}

func TestTriggersTestRejectsBadKind(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	if _, err := executeCommand(t, "triggers", "test", "X", "/cpu/usage_percent", "1", "2"); err == nil {
		t.Fatal("expected error for invalid kind")
	}
}
