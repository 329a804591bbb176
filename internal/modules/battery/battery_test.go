package battery_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"cerebro/internal/modules/battery"
)

func writeSupply(t *testing.T, sys, name string, files map[string]string) {
	t.Helper()
	dir := filepath.Join(sys, "class", "power_supply", name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	for file, content := range files {
		if err := os.WriteFile(filepath.Join(dir, file), []byte(content+"\n"), 0o644); err != nil {
			t.Fatalf("write %s: %v", file, err)
		}
	}
}

func TestCollectReadsSupplies(t *testing.T) {
	sys := t.TempDir()
	writeSupply(t, sys, "AC", map[string]string{
		"type":   "Mains",
		"online": "1",
	})
	writeSupply(t, sys, "BAT0", map[string]string{
		"type":              "Battery",
		"capacity":          "73",
		"time_to_empty_now": "5400",
	})

	collector, err := battery.New(battery.Options{SysMount: sys})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	snap, err := collector.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect returned error: %v", err)
	}
	if snap.Values["plugged"] != "true" {
		t.Fatalf("unexpected plugged: %q", snap.Values["plugged"])
	}
	if snap.Values["percent"] != "73" {
		t.Fatalf("unexpected percent: %q", snap.Values["percent"])
	}
	if snap.Values["time_remaining"] != "01h30m" {
		t.Fatalf("unexpected time remaining: %q", snap.Values["time_remaining"])
	}
	if snap.Shell != "plugged=true percent=73 time_remaining=01h30m" {
		t.Fatalf("unexpected shell render: %q", snap.Shell)
	}
}

func TestCollectWithoutHardwareRendersUnknown(t *testing.T) {
	sys := t.TempDir()
	if err := os.MkdirAll(filepath.Join(sys, "class", "power_supply"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	collector, err := battery.New(battery.Options{SysMount: sys})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	snap, err := collector.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect returned error: %v", err)
	}
	for _, entry := range []string{"plugged", "percent", "time_remaining"} {
		if snap.Values[entry] != "?" {
			t.Fatalf("expected unknown %s, got %q", entry, snap.Values[entry])
		}
	}
}
