package config

const (
	defaultMountpoint       = "~/cerebro"
	defaultDataDir          = "~/.local/share/cerebro"
	defaultLogDir           = "~/.local/share/cerebro/logs"
	defaultTriggerDir       = "~/.config/cerebro"
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	defaultLogRetentionDays = 30

	defaultNotifyRequestTimeout = 10
	defaultHistoryRetentionDays = 30

	defaultCPUInterval        = 2
	defaultMemoryInterval     = 5
	defaultBatteryInterval    = 30
	defaultBrightnessInterval = 2
	defaultTrashInterval      = 10

	defaultCPUTemperatureDevice  = "coretemp"
	defaultCPUTemperaturePattern = `^Core [0-9]+$`
)

// Default returns a Config populated with repository defaults.
func Default() *Config {
	return &Config{
		Paths: Paths{
			Mountpoint: defaultMountpoint,
			DataDir:    defaultDataDir,
			LogDir:     defaultLogDir,
			TriggerDir: defaultTriggerDir,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
			Triggers:       true,
			Errors:         true,
		},
		History: History{
			Enabled:       true,
			RetentionDays: defaultHistoryRetentionDays,
		},
		Modules: Modules{
			CPU: CPUModule{
				Module: Module{Enabled: true, IntervalSeconds: defaultCPUInterval},
				Temperature: CPUTemperature{
					Device:  defaultCPUTemperatureDevice,
					Pattern: defaultCPUTemperaturePattern,
				},
			},
			Memory:     Module{Enabled: true, IntervalSeconds: defaultMemoryInterval},
			Battery:    Module{Enabled: true, IntervalSeconds: defaultBatteryInterval},
			Brightness: Module{Enabled: true, IntervalSeconds: defaultBrightnessInterval},
			Trash:      Module{Enabled: true, IntervalSeconds: defaultTrashInterval},
		},
	}
}
