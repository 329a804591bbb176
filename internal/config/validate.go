package config

import (
	"errors"
	"fmt"
	"regexp"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateModules(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.Mountpoint == "" {
		return errors.New("paths.mountpoint must be set")
	}
	if c.Paths.DataDir == "" {
		return errors.New("paths.data_dir must be set")
	}
	if c.Paths.TriggerDir == "" {
		return errors.New("paths.trigger_dir must be set")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error, got %q", c.Logging.Level)
	}
	return nil
}

func (c *Config) validateModules() error {
	for _, entry := range []struct {
		name   string
		module Module
	}{
		{"cpu", c.Modules.CPU.Module},
		{"memory", c.Modules.Memory},
		{"battery", c.Modules.Battery},
		{"brightness", c.Modules.Brightness},
		{"trash", c.Modules.Trash},
	} {
		if entry.module.IntervalSeconds <= 0 {
			return fmt.Errorf("modules.%s.interval_seconds must be positive", entry.name)
		}
	}
	if _, err := regexp.Compile(c.Modules.CPU.Temperature.Pattern); err != nil {
		return fmt.Errorf("modules.cpu.temperature.pattern: %w", err)
	}
	return nil
}
