package main

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"diskwatch/internal/config"
	"diskwatch/internal/logging"
)

func TestWatchdogOverrideReplacesConfiguredInterval(t *testing.T) {
	t.Setenv("NOTIFY_SOCKET", "")
	t.Setenv("WATCHDOG_USEC", "3000000")
	t.Setenv("WATCHDOG_PID", strconv.Itoa(os.Getpid()))

	cfg := config.Default()
	cfg.Monitor.IntervalMS = 10000

	_, timeout, supervised := buildNotifier(logging.NewNop(), false)
	if !supervised {
		t.Fatal("expected supervisor watchdog to be detected")
	}
	if timeout != 3*time.Second {
		t.Fatalf("unexpected watchdog timeout: %v", timeout)
	}

	applyWatchdogOverride(&cfg, logging.NewNop(), timeout, supervised)
	if cfg.Interval() != 1500*time.Millisecond {
		t.Fatalf("expected interval overridden to half the watchdog timeout, got %v", cfg.Interval())
	}
}

func TestWatchdogOverrideClampsTinyTimeout(t *testing.T) {
	cfg := config.Default()
	applyWatchdogOverride(&cfg, logging.NewNop(), time.Millisecond, true)
	if cfg.Interval() != time.Millisecond {
		t.Fatalf("expected interval clamped to 1ms, got %v", cfg.Interval())
	}
}

func TestWatchdogOverrideSkippedWhenUnsupervised(t *testing.T) {
	cfg := config.Default()
	cfg.Monitor.IntervalMS = 42
	applyWatchdogOverride(&cfg, logging.NewNop(), 0, false)
	if cfg.Monitor.IntervalMS != 42 {
		t.Fatalf("expected configured interval to survive, got %dms", cfg.Monitor.IntervalMS)
	}
}

func TestEnsureCurrentLogPointer(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "diskwatch-run.log")
	if err := os.WriteFile(target, []byte("line\n"), 0o644); err != nil {
		t.Fatalf("write target: %v", err)
	}

	if err := ensureCurrentLogPointer(dir, target); err != nil {
		t.Fatalf("ensureCurrentLogPointer failed: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "diskwatch.log"))
	if err != nil {
		t.Fatalf("read pointer: %v", err)
	}
	if string(data) != "line\n" {
		t.Fatalf("pointer does not reach target: %q", data)
	}

	// Replacing an existing pointer must succeed.
	if err := ensureCurrentLogPointer(dir, target); err != nil {
		t.Fatalf("ensureCurrentLogPointer repeat failed: %v", err)
	}
}

func TestEnsureCurrentLogPointerMissingDir(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "absent")
	if err := ensureCurrentLogPointer(missing, filepath.Join(missing, "target.log")); err == nil {
		t.Fatal("expected error for missing log directory")
	}
}
