package brightness_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"cerebro/internal/modules/brightness"
)

func writeDevice(t *testing.T, dir, name, value, max string) {
	t.Helper()
	deviceDir := filepath.Join(dir, name)
	if err := os.MkdirAll(deviceDir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", deviceDir, err)
	}
	if err := os.WriteFile(filepath.Join(deviceDir, "brightness"), []byte(value+"\n"), 0o644); err != nil {
		t.Fatalf("write brightness: %v", err)
	}
	if err := os.WriteFile(filepath.Join(deviceDir, "max_brightness"), []byte(max+"\n"), 0o644); err != nil {
		t.Fatalf("write max_brightness: %v", err)
	}
}

func TestCollectListsDevices(t *testing.T) {
	dir := t.TempDir()
	writeDevice(t, dir, "intel_backlight", "500", "1000")
	writeDevice(t, dir, "acpi_video0", "3", "10")

	collector := brightness.New(brightness.Options{BacklightDir: dir})
	snap, err := collector.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect returned error: %v", err)
	}

	if snap.Values["intel_backlight"] != "500" {
		t.Fatalf("unexpected value: %q", snap.Values["intel_backlight"])
	}
	if snap.Values["acpi_video0"] != "3" {
		t.Fatalf("unexpected value: %q", snap.Values["acpi_video0"])
	}
	// Devices sort alphabetically in aggregate views.
	if snap.Shell != "device_0_name=acpi_video0 device_0_brightness=3 device_1_name=intel_backlight device_1_brightness=500" {
		t.Fatalf("unexpected shell render: %q", snap.Shell)
	}
	if len(snap.Writable) != 2 {
		t.Fatalf("expected every device entry writable, got %v", snap.Writable)
	}
}

func TestCollectWithoutBacklightDir(t *testing.T) {
	collector := brightness.New(brightness.Options{BacklightDir: filepath.Join(t.TempDir(), "missing")})
	snap, err := collector.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect returned error: %v", err)
	}
	if len(snap.Values) != 0 {
		t.Fatalf("expected no devices, got %+v", snap.Values)
	}
}

func TestSetValueClampsToMax(t *testing.T) {
	dir := t.TempDir()
	writeDevice(t, dir, "intel_backlight", "500", "1000")

	collector := brightness.New(brightness.Options{BacklightDir: dir})
	if err := collector.SetValue("intel_backlight", []byte("5000\n")); err != nil {
		t.Fatalf("SetValue returned error: %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(dir, "intel_backlight", "brightness"))
	if err != nil {
		t.Fatalf("read brightness: %v", err)
	}
	if string(raw) != "1000" {
		t.Fatalf("expected clamped value 1000, got %q", raw)
	}
}

func TestSetValueRejectsGarbage(t *testing.T) {
	dir := t.TempDir()
	writeDevice(t, dir, "intel_backlight", "500", "1000")

	collector := brightness.New(brightness.Options{BacklightDir: dir})
	if err := collector.SetValue("intel_backlight", []byte("bright")); err == nil {
		t.Fatal("expected error for non-integer write")
	}
	if err := collector.SetValue("missing", []byte("1")); err == nil {
		t.Fatal("expected error for unknown device")
	}
}
