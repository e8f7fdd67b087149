// Package diskstats reports filesystem usage and block-device identity for
// the monitored file. It backs the check command and daemon status output;
// the probe itself never consults it.
package diskstats

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/shirou/gopsutil/v4/disk"
	"golang.org/x/sys/unix"
)

// UsageInfo summarizes capacity of the filesystem holding a path.
type UsageInfo struct {
	Mountpoint  string
	Total       uint64
	Free        uint64
	UsedPercent float64
}

// Usage returns capacity information for the filesystem containing path.
// The path's parent directory is queried so the target file itself does
// not need to exist yet.
func Usage(ctx context.Context, path string) (UsageInfo, error) {
	dir := filepath.Dir(path)
	stat, err := disk.UsageWithContext(ctx, dir)
	if err != nil {
		return UsageInfo{}, fmt.Errorf("filesystem usage for %s: %w", dir, err)
	}
	return UsageInfo{
		Mountpoint:  stat.Path,
		Total:       stat.Total,
		Free:        stat.Free,
		UsedPercent: stat.UsedPercent,
	}, nil
}

// IOInfo carries cumulative I/O counters for one block device.
type IOInfo struct {
	Device     string
	ReadCount  uint64
	ReadBytes  uint64
	ReadTimeMS uint64
}

// IOCounters returns read-side kernel I/O counters for the named device
// (short name, e.g. "sda").
func IOCounters(ctx context.Context, device string) (*IOInfo, error) {
	counters, err := disk.IOCountersWithContext(ctx, device)
	if err != nil {
		return nil, fmt.Errorf("io counters for %s: %w", device, err)
	}
	stat, ok := counters[device]
	if !ok {
		return nil, fmt.Errorf("no io counters reported for %s", device)
	}
	return &IOInfo{
		Device:     device,
		ReadCount:  stat.ReadCount,
		ReadBytes:  stat.ReadBytes,
		ReadTimeMS: stat.ReadTime,
	}, nil
}

// DeviceNumbers returns the major:minor of the block device backing path.
func DeviceNumbers(path string) (major, minor uint32, err error) {
	var stat unix.Stat_t
	if err := unix.Stat(path, &stat); err != nil {
		return 0, 0, fmt.Errorf("stat %s: %w", path, err)
	}
	dev := uint64(stat.Dev)
	return unix.Major(dev), unix.Minor(dev), nil
}

// DeviceName resolves the kernel name (e.g. "sda1") of the block device
// backing path via /sys/dev/block.
func DeviceName(path string) (string, error) {
	major, minor, err := DeviceNumbers(path)
	if err != nil {
		return "", err
	}
	link := fmt.Sprintf("/sys/dev/block/%d:%d", major, minor)
	target, err := os.Readlink(link)
	if err != nil {
		return "", fmt.Errorf("resolve device %d:%d: %w", major, minor, err)
	}
	return filepath.Base(target), nil
}

// FormatBytes renders a byte count in binary units for display.
func FormatBytes(value uint64) string {
	return humanize.IBytes(value)
}
