// Package cpu collects logical CPU usage from /proc/stat deltas and
// physical core temperatures from sysfs hwmon chips.
package cpu

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/procfs"

	"cerebro/internal/modules"
)

const moduleName = "cpu"

// Options selects the data sources and the temperature sensors.
type Options struct {
	// ProcMount is the procfs mountpoint, /proc when empty.
	ProcMount string
	// HwmonDir is the hwmon class directory, /sys/class/hwmon when empty.
	HwmonDir string
	// Device is the hwmon chip name providing core temperatures.
	Device string
	// Pattern matches sensor labels, e.g. "^Core [0-9]+$".
	Pattern *regexp.Regexp
}

// Collector samples CPU usage and temperatures.
type Collector struct {
	fs       procfs.FS
	hwmonDir string
	device   string
	pattern  *regexp.Regexp

	prev    map[int64]procfs.CPUStat
	hasPrev bool
}

// New builds a Collector. The first collection reports zero usage because a
// usage percentage needs two /proc/stat reads.
func New(opts Options) (*Collector, error) {
	mount := opts.ProcMount
	if mount == "" {
		mount = procfs.DefaultMountPoint
	}
	fs, err := procfs.NewFS(mount)
	if err != nil {
		return nil, fmt.Errorf("open procfs: %w", err)
	}
	hwmonDir := opts.HwmonDir
	if hwmonDir == "" {
		hwmonDir = "/sys/class/hwmon"
	}
	pattern := opts.Pattern
	if pattern == nil {
		pattern = regexp.MustCompile(`^Core [0-9]+$`)
	}
	return &Collector{
		fs:       fs,
		hwmonDir: hwmonDir,
		device:   opts.Device,
		pattern:  pattern,
	}, nil
}

func (c *Collector) Name() string { return moduleName }

type logicalData struct {
	UsagePercent string `json:"usage_percent"`
}

type physicalData struct {
	Temperature string `json:"temperature"`
}

type aggregate struct {
	LogicalTimestamp    string         `json:"logical_timestamp"`
	LogicalAverageUsage string         `json:"logical_average_usage"`
	LogicalCount        string         `json:"logical_count"`
	LogicalList         []logicalData  `json:"logical_list"`
	PhysicalTimestamp   string         `json:"physical_timestamp"`
	PhysicalCount       string         `json:"physical_count"`
	PhysicalList        []physicalData `json:"physical_list"`
}

// Collect reads /proc/stat and the hwmon sensors and renders the subtree.
func (c *Collector) Collect(ctx context.Context) (modules.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return modules.Snapshot{}, err
	}

	stat, err := c.fs.Stat()
	if err != nil {
		return modules.Snapshot{}, fmt.Errorf("read /proc/stat: %w", err)
	}

	usages := c.logicalUsages(stat.CPU)
	temperatures := c.physicalTemperatures()
	now := strconv.FormatInt(time.Now().Unix(), 10)

	data := aggregate{
		LogicalTimestamp:  now,
		LogicalCount:      strconv.Itoa(len(usages)),
		PhysicalTimestamp: now,
		PhysicalCount:     strconv.Itoa(len(temperatures)),
	}

	values := map[string]string{
		"logical/count":      data.LogicalCount,
		"logical/timestamp":  now,
		"physical/count":     data.PhysicalCount,
		"physical/timestamp": now,
	}

	var sum float64
	for i, usage := range usages {
		rendered := formatPercent(usage)
		data.LogicalList = append(data.LogicalList, logicalData{UsagePercent: rendered})
		values[fmt.Sprintf("logical/%d/usage_percent", i)] = rendered
		sum += usage
	}
	average := 0.0
	if len(usages) > 0 {
		average = sum / float64(len(usages))
	}
	data.LogicalAverageUsage = formatPercent(average)
	values["logical/average/usage_percent"] = data.LogicalAverageUsage

	for i, temperature := range temperatures {
		rendered := strconv.Itoa(temperature)
		data.PhysicalList = append(data.PhysicalList, physicalData{Temperature: rendered})
		values[fmt.Sprintf("physical/%d/temperature", i)] = rendered
	}

	encoded, err := json.Marshal(data)
	if err != nil {
		return modules.Snapshot{}, fmt.Errorf("encode cpu aggregate: %w", err)
	}

	return modules.Snapshot{
		Values: values,
		JSON:   string(encoded),
		Shell:  renderShell(data),
	}, nil
}

// logicalUsages returns per-CPU user-time percentages since the previous
// collection, ordered by CPU index.
func (c *Collector) logicalUsages(current map[int64]procfs.CPUStat) []float64 {
	ids := make([]int64, 0, len(current))
	for id := range current {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	usages := make([]float64, 0, len(ids))
	for _, id := range ids {
		now := current[id]
		usage := 0.0
		if c.hasPrev {
			if prev, ok := c.prev[id]; ok {
				deltaUser := now.User - prev.User
				deltaTotal := totalTime(now) - totalTime(prev)
				if deltaTotal > 0 && deltaUser >= 0 {
					usage = deltaUser / deltaTotal * 100
				}
			}
		}
		usages = append(usages, usage)
	}

	c.prev = current
	c.hasPrev = true
	return usages
}

func totalTime(stat procfs.CPUStat) float64 {
	return stat.User + stat.Nice + stat.System + stat.Idle +
		stat.Iowait + stat.IRQ + stat.SoftIRQ + stat.Steal
}

// physicalTemperatures scans hwmon chips matching the configured device name
// and returns whole-degree readings for sensors whose label matches the
// pattern. Zero readings are skipped as invalid.
func (c *Collector) physicalTemperatures() []int {
	var temperatures []int

	chips, err := os.ReadDir(c.hwmonDir)
	if err != nil {
		return temperatures
	}

	for _, chip := range chips {
		chipDir := filepath.Join(c.hwmonDir, chip.Name())
		name, err := os.ReadFile(filepath.Join(chipDir, "name"))
		if err != nil || strings.TrimSpace(string(name)) != c.device {
			continue
		}

		labels, err := filepath.Glob(filepath.Join(chipDir, "temp*_label"))
		if err != nil {
			continue
		}
		sort.Strings(labels)

		for _, labelPath := range labels {
			label, err := os.ReadFile(labelPath)
			if err != nil || !c.pattern.MatchString(strings.TrimSpace(string(label))) {
				continue
			}
			inputPath := strings.TrimSuffix(labelPath, "_label") + "_input"
			raw, err := os.ReadFile(inputPath)
			if err != nil {
				continue
			}
			millidegrees, err := strconv.Atoi(strings.TrimSpace(string(raw)))
			if err != nil || millidegrees == 0 {
				continue
			}
			temperatures = append(temperatures, millidegrees/1000)
		}
	}

	return temperatures
}

func formatPercent(value float64) string {
	return strconv.FormatFloat(value, 'f', 2, 64)
}

func renderShell(data aggregate) string {
	var b strings.Builder
	fmt.Fprintf(&b, "logical_cpu_count=%s logical_average_usage=%s physical_cpu_count=%s",
		data.LogicalCount, data.LogicalAverageUsage, data.PhysicalCount)
	for i, logical := range data.LogicalList {
		fmt.Fprintf(&b, " logical_cpu_%d_usage=%s", i, logical.UsagePercent)
	}
	for i, physical := range data.PhysicalList {
		fmt.Fprintf(&b, " physical_cpu_%d_temperature=%s", i, physical.Temperature)
	}
	return b.String()
}
