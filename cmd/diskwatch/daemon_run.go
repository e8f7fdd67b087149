package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"diskwatch/internal/config"
	"diskwatch/internal/daemon"
	"diskwatch/internal/ipc"
	"diskwatch/internal/journal"
	"diskwatch/internal/logging"
	"diskwatch/internal/preflight"
	"diskwatch/internal/watchdog"
)

type runOptions struct {
	file       string
	intervalMS int
	verbose    bool
	debug      bool
}

func runDaemonProcess(cmdCtx context.Context, ctx *commandContext, opts runOptions) error {
	if ctx == nil {
		return fmt.Errorf("command context is required")
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := ctx.ensureConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.file != "" {
		expanded, err := config.ExpandPath(opts.file)
		if err != nil {
			return fmt.Errorf("resolve probe file: %w", err)
		}
		cfg.Monitor.File = expanded
	}
	if opts.intervalMS > 0 {
		cfg.Monitor.IntervalMS = opts.intervalMS
	}
	// Debug implies verbose.
	if opts.verbose || opts.debug {
		cfg.Logging.Level = "debug"
	}

	if err := preflight.ValidateProbeFile(cfg.Monitor.File); err != nil {
		return err
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("prepare directories: %w", err)
	}

	runID := time.Now().UTC().Format("20060102T150405.000Z")
	logPath := filepath.Join(cfg.Paths.LogDir, fmt.Sprintf("diskwatch-%s.log", runID))
	logger, err := logging.New(logging.Options{
		Level:            cfg.Logging.Level,
		Format:           cfg.Logging.Format,
		OutputPaths:      []string{"stdout", logPath},
		ErrorOutputPaths: []string{"stderr", logPath},
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	if err := ensureCurrentLogPointer(cfg.Paths.LogDir, logPath); err != nil {
		fmt.Fprintf(os.Stderr, "warn: unable to update diskwatch.log link: %v\n", err)
	}

	pidPath := filepath.Join(cfg.Paths.StateDir, "diskwatch.pid")
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	notifier, timeout, supervised := buildNotifier(logger, opts.debug)
	applyWatchdogOverride(cfg, logger, timeout, supervised)

	var store *journal.Store
	if cfg.Journal.Enabled {
		store, err = journal.Open(cfg.JournalPath())
		if err != nil {
			logger.Warn("probe journal unavailable",
				logging.Error(err),
				logging.String(logging.FieldEventType, "journal_open_failed"),
				logging.String(logging.FieldImpact, "history and summaries will be empty"))
			store = nil
		}
	}

	mon, err := daemon.New(cfg, logger, daemon.Options{
		Notifier:        notifier,
		Journal:         store,
		WatchdogTimeout: timeout,
		Supervised:      supervised,
	})
	if err != nil {
		return fmt.Errorf("create monitor: %w", err)
	}
	defer mon.Close()

	ipcServer, err := ipc.NewServer(signalCtx, cfg.SocketPath(), mon, logger)
	if err != nil {
		return fmt.Errorf("start IPC server: %w", err)
	}
	defer ipcServer.Close()
	ipcServer.Serve()

	if err := mon.Start(signalCtx); err != nil {
		return err
	}
	if err := mon.Run(signalCtx); err != nil {
		return err
	}
	logger.Info("diskwatch shutting down")
	return nil
}

// buildNotifier wires supervisor notifications. Debug mode swaps in a
// no-op notifier so the loop runs identically without a supervisor.
func buildNotifier(logger *slog.Logger, debug bool) (watchdog.Notifier, time.Duration, bool) {
	if debug {
		return watchdog.Noop{}, 0, false
	}
	notifier, err := watchdog.New()
	if err != nil {
		logger.Warn("notification socket unavailable",
			logging.Error(err),
			logging.String(logging.FieldEventType, "notify_socket_failed"))
		notifier = watchdog.Noop{}
	}
	timeout, supervised := watchdog.Timeout()
	return notifier, timeout, supervised
}

// applyWatchdogOverride replaces the configured probe interval with half
// the supervisor watchdog timeout. Half guarantees at least two probe
// opportunities per watchdog window, so a user-supplied interval never
// wins once a supervisor is present.
func applyWatchdogOverride(cfg *config.Config, logger *slog.Logger, timeout time.Duration, supervised bool) {
	if !supervised {
		return
	}
	half := timeout / 2
	logger.Info("supervisor watchdog detected, overriding interval",
		logging.Duration("watchdog_timeout", timeout),
		logging.Duration("interval", half))
	cfg.SetInterval(half)
}

func ensureCurrentLogPointer(logDir, target string) error {
	if logDir == "" || target == "" {
		return nil
	}
	current := filepath.Join(logDir, "diskwatch.log")
	if err := os.Remove(current); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing log pointer: %w", err)
	}
	if err := os.Symlink(target, current); err == nil {
		return nil
	}
	if err := os.Link(target, current); err != nil {
		return fmt.Errorf("link log pointer: %w", err)
	}
	return nil
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}
