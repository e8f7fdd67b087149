package preflight_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"diskwatch/internal/config"
	"diskwatch/internal/preflight"
)

func writeProbeFile(t *testing.T, size int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "probe.dat")
	if err := os.WriteFile(path, make([]byte, size), 0o644); err != nil {
		t.Fatalf("write probe file: %v", err)
	}
	return path
}

func TestValidateProbeFile(t *testing.T) {
	if err := preflight.ValidateProbeFile(writeProbeFile(t, 4096)); err != nil {
		t.Fatalf("expected valid probe file, got %v", err)
	}

	if err := preflight.ValidateProbeFile(""); err == nil {
		t.Fatal("expected error for empty path")
	}
	if err := preflight.ValidateProbeFile(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatal("expected error for missing file")
	}
	if err := preflight.ValidateProbeFile(t.TempDir()); err == nil {
		t.Fatal("expected error for directory")
	}
	if err := preflight.ValidateProbeFile(writeProbeFile(t, 0)); err == nil {
		t.Fatal("expected error for empty file")
	}
}

func TestCheckProbeFile(t *testing.T) {
	path := writeProbeFile(t, 512)
	result := preflight.CheckProbeFile(path)
	if !result.Passed {
		t.Fatalf("expected pass, got %q", result.Detail)
	}

	result = preflight.CheckProbeFile("")
	if result.Passed {
		t.Fatal("expected failure without a configured file")
	}
	if !strings.Contains(result.Detail, "not configured") {
		t.Fatalf("unexpected detail %q", result.Detail)
	}
}

func TestCheckStateDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "state")
	result := preflight.CheckStateDir(dir)
	if !result.Passed {
		t.Fatalf("expected pass, got %q", result.Detail)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Fatalf("expected directory to be created: %v", err)
	}

	if result := preflight.CheckStateDir(""); result.Passed {
		t.Fatal("expected failure without a configured directory")
	}
}

func TestRunAll(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.StateDir = filepath.Join(base, "state")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Monitor.File = writeProbeFile(t, 4096)

	results := preflight.RunAll(context.Background(), &cfg)
	if len(results) != 3 {
		t.Fatalf("expected 3 checks, got %d", len(results))
	}
	for _, result := range results[:2] {
		if !result.Passed {
			t.Fatalf("check %q failed: %s", result.Name, result.Detail)
		}
	}

	if results := preflight.RunAll(context.Background(), nil); results != nil {
		t.Fatal("expected nil results for nil config")
	}
}
