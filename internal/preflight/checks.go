package preflight

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"diskwatch/internal/diskstats"
)

// ValidateProbeFile enforces the fatal startup precondition: the target
// must exist, be a regular file, and be non-empty. Success is silent.
func ValidateProbeFile(path string) error {
	if path == "" {
		return fmt.Errorf("probe file path is required")
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("probe file %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("probe file %s is not a regular file", path)
	}
	if info.Size() == 0 {
		return fmt.Errorf("probe file %s is empty", path)
	}
	return nil
}

// CheckProbeFile wraps ValidateProbeFile for diagnostic display.
func CheckProbeFile(path string) Result {
	const name = "Probe file"
	if path == "" {
		return Result{Name: name, Detail: "not configured (set --file or monitor.file)"}
	}
	if err := ValidateProbeFile(path); err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	if err := unix.Access(path, unix.R_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: not readable: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: path}
}

// CheckStateDir verifies that the runtime state directory exists (or can
// be created) and is writable.
func CheckStateDir(path string) Result {
	const name = "State directory"
	if path == "" {
		return Result{Name: name, Detail: "not configured"}
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckFilesystem reports capacity for the filesystem holding the probe
// file. Near-full filesystems are flagged but never fatal: the probe reads,
// it does not write.
func CheckFilesystem(ctx context.Context, path string) Result {
	const name = "Filesystem"
	usage, err := diskstats.Usage(ctx, path)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("usage unavailable: %v", err)}
	}
	detail := fmt.Sprintf("%s %.1f%% used (%s free)", usage.Mountpoint, usage.UsedPercent, diskstats.FormatBytes(usage.Free))
	if usage.UsedPercent >= 95 {
		return Result{Name: name, Detail: detail + " - nearly full"}
	}
	return Result{Name: name, Passed: true, Detail: detail}
}
