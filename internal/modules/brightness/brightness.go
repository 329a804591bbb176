// Package brightness exposes one file per /sys/class/backlight device.
// Reading returns the current brightness; writing an integer sets it,
// clamped to the device's max_brightness.
package brightness

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"cerebro/internal/modules"
)

const moduleName = "brightness"

// Options selects the backlight class directory.
type Options struct {
	// BacklightDir is /sys/class/backlight when empty.
	BacklightDir string
}

// Collector samples backlight devices.
type Collector struct {
	dir string
}

// New builds a Collector.
func New(opts Options) *Collector {
	dir := opts.BacklightDir
	if dir == "" {
		dir = "/sys/class/backlight"
	}
	return &Collector{dir: dir}
}

func (c *Collector) Name() string { return moduleName }

type deviceData struct {
	Device string `json:"device"`
	Value  string `json:"value"`
}

// Collect lists backlight devices and their current brightness. A host
// without backlights yields an empty subtree.
func (c *Collector) Collect(ctx context.Context) (modules.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return modules.Snapshot{}, err
	}

	var devices []deviceData

	entries, err := os.ReadDir(c.dir)
	if err != nil && !os.IsNotExist(err) {
		return modules.Snapshot{}, fmt.Errorf("read backlight class: %w", err)
	}
	for _, entry := range entries {
		raw, err := os.ReadFile(filepath.Join(c.dir, entry.Name(), "brightness"))
		if err != nil {
			continue
		}
		devices = append(devices, deviceData{
			Device: entry.Name(),
			Value:  strings.TrimSpace(string(raw)),
		})
	}
	sort.Slice(devices, func(i, j int) bool { return devices[i].Device < devices[j].Device })

	values := make(map[string]string, len(devices))
	writable := make([]string, 0, len(devices))
	for _, device := range devices {
		values[device.Device] = device.Value
		writable = append(writable, device.Device)
	}

	encoded, err := json.Marshal(devices)
	if err != nil {
		return modules.Snapshot{}, fmt.Errorf("encode brightness aggregate: %w", err)
	}

	var shell strings.Builder
	for i, device := range devices {
		if i > 0 {
			shell.WriteByte(' ')
		}
		fmt.Fprintf(&shell, "device_%d_name=%s device_%d_brightness=%s", i, device.Device, i, device.Value)
	}

	return modules.Snapshot{
		Values:   values,
		Writable: writable,
		JSON:     string(encoded),
		Shell:    shell.String(),
	}, nil
}

// SetValue writes a brightness level through sysfs, clamped to the device's
// max_brightness. The path is the device name.
func (c *Collector) SetValue(path string, data []byte) error {
	device := filepath.Base(strings.TrimSpace(path))
	deviceDir := filepath.Join(c.dir, device)
	if _, err := os.Stat(deviceDir); err != nil {
		return fmt.Errorf("backlight device %q: %w", device, err)
	}

	requested, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return fmt.Errorf("parse brightness value: %w", err)
	}
	if requested < 0 {
		requested = 0
	}

	if raw, err := os.ReadFile(filepath.Join(deviceDir, "max_brightness")); err == nil {
		if max, err := strconv.Atoi(strings.TrimSpace(string(raw))); err == nil && requested > max {
			requested = max
		}
	}

	target := filepath.Join(deviceDir, "brightness")
	if err := os.WriteFile(target, []byte(strconv.Itoa(requested)), 0o644); err != nil {
		return fmt.Errorf("write brightness: %w", err)
	}
	return nil
}
