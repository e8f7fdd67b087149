package config

const (
	defaultStateDir             = "~/.local/share/diskwatch"
	defaultLogDir               = "~/.local/share/diskwatch/logs"
	defaultIntervalMS           = 10
	defaultJournalEnabled       = true
	defaultJournalRetentionDays = 7
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Monitor: Monitor{
			IntervalMS: defaultIntervalMS,
		},
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		Journal: Journal{
			Enabled:       defaultJournalEnabled,
			RetentionDays: defaultJournalRetentionDays,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
