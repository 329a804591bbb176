package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeLogging()
	c.normalizeNotifications()
	c.normalizeHistory()
	c.normalizeModules()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.Mountpoint, err = expandPath(c.Paths.Mountpoint); err != nil {
		return fmt.Errorf("paths.mountpoint: %w", err)
	}
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.TriggerDir) == "" {
		c.Paths.TriggerDir = defaultTriggerDir
	}
	if c.Paths.TriggerDir, err = expandPath(c.Paths.TriggerDir); err != nil {
		return fmt.Errorf("paths.trigger_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyRequestTimeout
	}
}

func (c *Config) normalizeHistory() {
	if c.History.RetentionDays < 0 {
		c.History.RetentionDays = 0
	}
}

func (c *Config) normalizeModules() {
	normalizeModule(&c.Modules.CPU.Module, defaultCPUInterval)
	normalizeModule(&c.Modules.Memory, defaultMemoryInterval)
	normalizeModule(&c.Modules.Battery, defaultBatteryInterval)
	normalizeModule(&c.Modules.Brightness, defaultBrightnessInterval)
	normalizeModule(&c.Modules.Trash, defaultTrashInterval)

	c.Modules.CPU.Temperature.Device = strings.TrimSpace(c.Modules.CPU.Temperature.Device)
	if c.Modules.CPU.Temperature.Device == "" {
		c.Modules.CPU.Temperature.Device = defaultCPUTemperatureDevice
	}
	c.Modules.CPU.Temperature.Pattern = strings.TrimSpace(c.Modules.CPU.Temperature.Pattern)
	if c.Modules.CPU.Temperature.Pattern == "" {
		c.Modules.CPU.Temperature.Pattern = defaultCPUTemperaturePattern
	}
}

func normalizeModule(m *Module, fallbackInterval int) {
	if m.IntervalSeconds <= 0 {
		m.IntervalSeconds = fallbackInterval
	}
}
