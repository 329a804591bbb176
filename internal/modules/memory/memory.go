// Package memory collects free, total, and used bytes from /proc/meminfo.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/prometheus/procfs"

	"cerebro/internal/modules"
)

const moduleName = "memory"

// Options selects the data source.
type Options struct {
	// ProcMount is the procfs mountpoint, /proc when empty.
	ProcMount string
}

// Collector samples memory figures.
type Collector struct {
	fs procfs.FS
}

// New builds a Collector.
func New(opts Options) (*Collector, error) {
	mount := opts.ProcMount
	if mount == "" {
		mount = procfs.DefaultMountPoint
	}
	fs, err := procfs.NewFS(mount)
	if err != nil {
		return nil, fmt.Errorf("open procfs: %w", err)
	}
	return &Collector{fs: fs}, nil
}

func (c *Collector) Name() string { return moduleName }

type aggregate struct {
	Free  string `json:"free"`
	Total string `json:"total"`
	Used  string `json:"used"`
}

// Collect reads /proc/meminfo. Values are rendered in bytes.
func (c *Collector) Collect(ctx context.Context) (modules.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return modules.Snapshot{}, err
	}

	meminfo, err := c.fs.Meminfo()
	if err != nil {
		return modules.Snapshot{}, fmt.Errorf("read /proc/meminfo: %w", err)
	}
	if meminfo.MemTotal == nil || meminfo.MemFree == nil {
		return modules.Snapshot{}, fmt.Errorf("meminfo missing MemTotal or MemFree")
	}

	total := *meminfo.MemTotal * 1024
	free := *meminfo.MemFree * 1024
	used := total - free

	data := aggregate{
		Free:  strconv.FormatUint(free, 10),
		Total: strconv.FormatUint(total, 10),
		Used:  strconv.FormatUint(used, 10),
	}

	encoded, err := json.Marshal(data)
	if err != nil {
		return modules.Snapshot{}, fmt.Errorf("encode memory aggregate: %w", err)
	}

	return modules.Snapshot{
		Values: map[string]string{
			"free":  data.Free,
			"total": data.Total,
			"used":  data.Used,
		},
		JSON:  string(encoded),
		Shell: fmt.Sprintf("free=%s total=%s used=%s", data.Free, data.Total, data.Used),
	}, nil
}
