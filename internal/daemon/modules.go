package daemon

import (
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"cerebro/internal/config"
	"cerebro/internal/events"
	"cerebro/internal/modules"
	"cerebro/internal/modules/battery"
	"cerebro/internal/modules/brightness"
	"cerebro/internal/modules/cpu"
	"cerebro/internal/modules/memory"
	"cerebro/internal/modules/trash"
)

// BuildRegistry constructs the enabled monitor modules from configuration.
// Change and error callbacks are wired into every module's polling loop.
func BuildRegistry(
	cfg *config.Config,
	bus *events.Bus,
	logger *slog.Logger,
	onChange func(modules.Change),
	onError func(module string, err error),
) (*modules.Registry, error) {
	registry := modules.NewRegistry()

	register := func(collector modules.Collector, settings config.Module) {
		registry.Register(modules.NewRunner(collector, modules.RunnerOptions{
			Interval: time.Duration(settings.IntervalSeconds) * time.Second,
			Bus:      bus,
			Logger:   logger,
			OnChange: onChange,
			OnError:  onError,
		}))
	}

	if cfg.Modules.CPU.Enabled {
		var pattern *regexp.Regexp
		if raw := cfg.Modules.CPU.Temperature.Pattern; raw != "" {
			compiled, err := regexp.Compile(raw)
			if err != nil {
				return nil, fmt.Errorf("init cpu module: temperature pattern %q: %w", raw, err)
			}
			pattern = compiled
		}
		collector, err := cpu.New(cpu.Options{
			Device:  cfg.Modules.CPU.Temperature.Device,
			Pattern: pattern,
		})
		if err != nil {
			return nil, fmt.Errorf("init cpu module: %w", err)
		}
		register(collector, cfg.Modules.CPU.Module)
	}

	if cfg.Modules.Memory.Enabled {
		collector, err := memory.New(memory.Options{})
		if err != nil {
			return nil, fmt.Errorf("init memory module: %w", err)
		}
		register(collector, cfg.Modules.Memory)
	}

	if cfg.Modules.Battery.Enabled {
		collector, err := battery.New(battery.Options{})
		if err != nil {
			return nil, fmt.Errorf("init battery module: %w", err)
		}
		register(collector, cfg.Modules.Battery)
	}

	if cfg.Modules.Brightness.Enabled {
		register(brightness.New(brightness.Options{}), cfg.Modules.Brightness)
	}

	if cfg.Modules.Trash.Enabled {
		collector, err := trash.New(trash.Options{})
		if err != nil {
			return nil, fmt.Errorf("init trash module: %w", err)
		}
		register(collector, cfg.Modules.Trash)
	}

	return registry, nil
}
