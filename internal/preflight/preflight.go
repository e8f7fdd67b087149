package preflight

import (
	"context"

	"diskwatch/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	results = append(results, CheckProbeFile(cfg.Monitor.File))
	results = append(results, CheckStateDir(cfg.Paths.StateDir))
	if cfg.Monitor.File != "" {
		results = append(results, CheckFilesystem(ctx, cfg.Monitor.File))
	}

	return results
}
