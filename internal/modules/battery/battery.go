// Package battery collects AC and battery state from the power_supply
// sysfs class. Hosts without a battery render "?" values instead of errors.
package battery

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/prometheus/procfs/sysfs"

	"cerebro/internal/modules"
)

const moduleName = "battery"

// Options selects the data source.
type Options struct {
	// SysMount is the sysfs mountpoint, /sys when empty.
	SysMount string
}

// Collector samples power supply state.
type Collector struct {
	fs sysfs.FS
}

// New builds a Collector.
func New(opts Options) (*Collector, error) {
	mount := opts.SysMount
	if mount == "" {
		mount = sysfs.DefaultMountPoint
	}
	fs, err := sysfs.NewFS(mount)
	if err != nil {
		return nil, fmt.Errorf("open sysfs: %w", err)
	}
	return &Collector{fs: fs}, nil
}

func (c *Collector) Name() string { return moduleName }

type aggregate struct {
	Plugged       string `json:"plugged"`
	Percent       string `json:"percent"`
	TimeRemaining string `json:"time_remaining"`
}

// Collect reads the power_supply class. Missing hardware yields unknown
// values, not an error, so laptops and desktops share one code path.
func (c *Collector) Collect(ctx context.Context) (modules.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return modules.Snapshot{}, err
	}

	data := aggregate{
		Plugged:       modules.ValueUnknown,
		Percent:       modules.ValueUnknown,
		TimeRemaining: modules.ValueUnknown,
	}

	supplies, err := c.fs.PowerSupplyClass()
	if err == nil {
		for _, supply := range supplies {
			switch supply.Type {
			case "Mains":
				if supply.Online != nil {
					if *supply.Online != 0 {
						data.Plugged = "true"
					} else {
						data.Plugged = "false"
					}
				}
			case "Battery":
				data.Percent = renderPercent(supply)
				data.TimeRemaining = renderTimeRemaining(supply)
			}
		}
	}

	encoded, err := json.Marshal(data)
	if err != nil {
		return modules.Snapshot{}, fmt.Errorf("encode battery aggregate: %w", err)
	}

	return modules.Snapshot{
		Values: map[string]string{
			"plugged":        data.Plugged,
			"percent":        data.Percent,
			"time_remaining": data.TimeRemaining,
		},
		JSON: string(encoded),
		Shell: fmt.Sprintf("plugged=%s percent=%s time_remaining=%s",
			data.Plugged, data.Percent, data.TimeRemaining),
	}, nil
}

func renderPercent(supply sysfs.PowerSupply) string {
	if supply.Capacity != nil {
		return fmt.Sprintf("%d", *supply.Capacity)
	}
	if supply.EnergyNow != nil && supply.EnergyFull != nil && *supply.EnergyFull > 0 {
		return fmt.Sprintf("%d", int(math.Ceil(float64(*supply.EnergyNow)/float64(*supply.EnergyFull)*100)))
	}
	if supply.ChargeNow != nil && supply.ChargeFull != nil && *supply.ChargeFull > 0 {
		return fmt.Sprintf("%d", int(math.Ceil(float64(*supply.ChargeNow)/float64(*supply.ChargeFull)*100)))
	}
	return modules.ValueUnknown
}

// renderTimeRemaining formats the estimated discharge time as HHhMMm. The
// kernel estimate is preferred; otherwise it is derived from the charge or
// energy rate when the battery reports one.
func renderTimeRemaining(supply sysfs.PowerSupply) string {
	var seconds int64

	switch {
	case supply.TimeToEmptyNow != nil && *supply.TimeToEmptyNow > 0:
		seconds = *supply.TimeToEmptyNow
	case supply.ChargeNow != nil && supply.CurrentNow != nil && *supply.CurrentNow > 0:
		seconds = *supply.ChargeNow * 3600 / *supply.CurrentNow
	case supply.EnergyNow != nil && supply.PowerNow != nil && *supply.PowerNow > 0:
		seconds = *supply.EnergyNow * 3600 / *supply.PowerNow
	default:
		return modules.ValueUnknown
	}

	return fmt.Sprintf("%02dh%02dm", seconds/3600, seconds%3600/60)
}
