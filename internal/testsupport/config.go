// Package testsupport centralizes helpers shared by package tests.
package testsupport

import (
	"path/filepath"
	"testing"

	"diskwatch/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Monitor.File = WriteProbeFile(t, filepath.Join(base, "probe.dat"), 4096)
	cfgVal.Monitor.IntervalMS = 1
	cfgVal.Journal.Enabled = false

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure config directories: %v", err)
	}

	return builder.cfg
}

// WithProbeFileSize regenerates the probe file at the given size in bytes.
func WithProbeFileSize(size int64) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Monitor.File = WriteProbeFile(b.t, filepath.Join(b.baseDir, "probe.dat"), size)
	}
}

// WithJournal enables the sqlite probe journal on the test config.
func WithJournal() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Journal.Enabled = true
	}
}

// WithInterval overrides the probe interval in milliseconds.
func WithInterval(ms int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Monitor.IntervalMS = ms
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
