package cpu_test

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"cerebro/internal/modules/cpu"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

const statFirst = `cpu  100 0 50 850 0 0 0 0 0 0
cpu0 50 0 25 425 0 0 0 0 0 0
cpu1 50 0 25 425 0 0 0 0 0 0
intr 0
ctxt 0
btime 0
processes 0
procs_running 1
procs_blocked 0
`

const statSecond = `cpu  150 0 50 900 0 0 0 0 0 0
cpu0 100 0 25 425 0 0 0 0 0 0
cpu1 50 0 25 475 0 0 0 0 0 0
intr 0
ctxt 0
btime 0
processes 0
procs_running 1
procs_blocked 0
`

func TestCollectComputesUsageDeltas(t *testing.T) {
	dir := t.TempDir()
	proc := filepath.Join(dir, "proc")
	hwmon := filepath.Join(dir, "hwmon")
	writeFile(t, filepath.Join(proc, "stat"), statFirst)
	writeFile(t, filepath.Join(hwmon, "hwmon0", "name"), "coretemp\n")
	writeFile(t, filepath.Join(hwmon, "hwmon0", "temp1_label"), "Core 0\n")
	writeFile(t, filepath.Join(hwmon, "hwmon0", "temp1_input"), "45000\n")
	writeFile(t, filepath.Join(hwmon, "hwmon0", "temp2_label"), "Package id 0\n")
	writeFile(t, filepath.Join(hwmon, "hwmon0", "temp2_input"), "55000\n")

	collector, err := cpu.New(cpu.Options{
		ProcMount: proc,
		HwmonDir:  hwmon,
		Device:    "coretemp",
		Pattern:   regexp.MustCompile(`^Core [0-9]+$`),
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	first, err := collector.Collect(context.Background())
	if err != nil {
		t.Fatalf("first Collect returned error: %v", err)
	}
	if first.Values["logical/count"] != "2" {
		t.Fatalf("unexpected logical count: %q", first.Values["logical/count"])
	}
	if first.Values["logical/0/usage_percent"] != "0.00" {
		t.Fatalf("first collection should report zero usage, got %q", first.Values["logical/0/usage_percent"])
	}
	if first.Values["physical/count"] != "1" {
		t.Fatalf("pattern should match one sensor, got count %q", first.Values["physical/count"])
	}
	if first.Values["physical/0/temperature"] != "45" {
		t.Fatalf("unexpected temperature: %q", first.Values["physical/0/temperature"])
	}

	writeFile(t, filepath.Join(proc, "stat"), statSecond)

	second, err := collector.Collect(context.Background())
	if err != nil {
		t.Fatalf("second Collect returned error: %v", err)
	}
	// cpu0: user delta 50 of total delta 50 -> 100%; cpu1 idle only -> 0%.
	if second.Values["logical/0/usage_percent"] != "100.00" {
		t.Fatalf("unexpected cpu0 usage: %q", second.Values["logical/0/usage_percent"])
	}
	if second.Values["logical/1/usage_percent"] != "0.00" {
		t.Fatalf("unexpected cpu1 usage: %q", second.Values["logical/1/usage_percent"])
	}
	if second.Values["logical/average/usage_percent"] != "50.00" {
		t.Fatalf("unexpected average: %q", second.Values["logical/average/usage_percent"])
	}

	if !strings.Contains(second.Shell, "logical_cpu_count=2") {
		t.Fatalf("unexpected shell render: %q", second.Shell)
	}
	if !strings.Contains(second.JSON, `"logical_count":"2"`) {
		t.Fatalf("unexpected json render: %q", second.JSON)
	}
}

func TestCollectToleratesMissingHwmon(t *testing.T) {
	dir := t.TempDir()
	proc := filepath.Join(dir, "proc")
	writeFile(t, filepath.Join(proc, "stat"), statFirst)

	collector, err := cpu.New(cpu.Options{
		ProcMount: proc,
		HwmonDir:  filepath.Join(dir, "missing"),
		Device:    "coretemp",
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	snap, err := collector.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect returned error: %v", err)
	}
	if snap.Values["physical/count"] != "0" {
		t.Fatalf("expected zero physical sensors, got %q", snap.Values["physical/count"])
	}
}
