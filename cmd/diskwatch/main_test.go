package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"diskwatch/internal/config"
	"diskwatch/internal/daemon"
	"diskwatch/internal/ipc"
	"diskwatch/internal/logging"
	"diskwatch/internal/probe"
	"diskwatch/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	monitor    *daemon.Monitor
	server     *ipc.Server
	socketPath string
	configPath string
	cancel     context.CancelFunc
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	configPath := filepath.Join(testsupport.BaseDir(cfg), "config.toml")
	writeTestConfig(t, configPath, cfg)

	logger := logging.NewNop()
	mon, err := daemon.New(cfg, logger, daemon.Options{
		Probe: func(string) probe.Result {
			return probe.Result{Outcome: probe.OutcomeOK, BytesRead: 4096}
		},
	})
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	socketPath := cfg.SocketPath()
	srv, err := ipc.NewServer(ctx, socketPath, mon, logger)
	if err != nil {
		if strings.Contains(err.Error(), "operation not permitted") {
			cancel()
			mon.Close()
			t.Skipf("skipping CLI test: %v", err)
		}
		t.Fatalf("ipc.NewServer: %v", err)
	}
	srv.Serve()

	if err := mon.Start(ctx); err != nil {
		t.Fatalf("monitor Start: %v", err)
	}

	env := &cliTestEnv{
		cfg:        cfg,
		monitor:    mon,
		server:     srv,
		socketPath: socketPath,
		configPath: configPath,
		cancel:     cancel,
	}

	t.Cleanup(func() {
		cancel()
		srv.Close()
		mon.Close()
	})

	return env
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	payload, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, args []string, socket, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	flags := []string{"--socket", socket}
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestCLIStatusCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"status"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !strings.Contains(out, "Running") || !strings.Contains(out, env.cfg.Monitor.File) {
		t.Fatalf("unexpected status output: %q", out)
	}
}

func TestCLIProbeCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"probe"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("probe: %v", err)
	}
	if !strings.Contains(out, "ok") {
		t.Fatalf("unexpected probe output: %q", out)
	}
}

func TestCLIStopCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	ctx := context.Background()
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = env.monitor.Run(ctx)
	}()

	out, _, err := runCLI(t, []string{"stop"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("stop: %v", err)
	}
	if !strings.Contains(out, "Stop requested") {
		t.Fatalf("unexpected stop output: %q", out)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("monitor loop did not exit after stop command")
	}
}

func TestCLICheckCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"check"}, env.socketPath, env.configPath)
	if err != nil {
		// The direct read can fail on filesystems without O_DIRECT
		// support; the preflight section must still render.
		if !strings.Contains(out, "Preflight") {
			t.Fatalf("check: %v (output %q)", err, out)
		}
		return
	}
	if !strings.Contains(out, "Probe file") {
		t.Fatalf("unexpected check output: %q", out)
	}
}

func TestCLIConfigInit(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err := runCLI(t, []string{"config", "init", "--path", target}, "", "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(out, "Wrote sample configuration") {
		t.Fatalf("unexpected init output: %q", out)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file: %v", err)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, "", ""); err == nil {
		t.Fatal("expected second init without --overwrite to fail")
	}
}

func TestCLIRootRequiresFile(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Monitor.File = ""
	configPath := filepath.Join(testsupport.BaseDir(cfg), "config.toml")
	writeTestConfig(t, configPath, cfg)

	_, stderr, err := runCLI(t, nil, "", configPath)
	if err == nil {
		t.Fatal("expected root command without a file to fail")
	}
	if !strings.Contains(stderr, "Usage") && !strings.Contains(stderr, "usage") {
		t.Fatalf("expected usage output, got %q", stderr)
	}
}
