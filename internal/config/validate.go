package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable. Monitor.File is allowed to
// be empty here because commands that do not probe (status, history, config)
// never need it; the run and check commands require it themselves.
func (c *Config) Validate() error {
	if err := c.validateMonitor(); err != nil {
		return err
	}
	if err := c.validateJournal(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateMonitor() error {
	if c.Monitor.IntervalMS <= 0 {
		return fmt.Errorf("monitor.interval_ms must be positive, got %d", c.Monitor.IntervalMS)
	}
	return nil
}

func (c *Config) validateJournal() error {
	if c.Journal.Enabled && c.Journal.RetentionDays <= 0 {
		return errors.New("journal.retention_days must be positive when journal.enabled is true")
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
