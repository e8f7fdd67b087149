package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"diskwatch/internal/config"
	"diskwatch/internal/journal"
	"diskwatch/internal/logging"
	"diskwatch/internal/probe"
	"diskwatch/internal/watchdog"
)

// journalPruneEvery bounds how often retention enforcement runs.
const journalPruneEvery = time.Hour

// Options configures a Monitor beyond its config.
type Options struct {
	// Notifier receives ready/heartbeat/stopping states. A watchdog.Noop
	// disables supervisor interaction (debug mode).
	Notifier watchdog.Notifier
	// Journal records probe outcomes. Nil disables journaling.
	Journal *journal.Store
	// WatchdogTimeout is the supervisor-reported timeout when one exists.
	WatchdogTimeout time.Duration
	// Supervised reports whether a supervisor watchdog drove the interval.
	Supervised bool
	// Probe overrides the probe implementation. Defaults to probe.Run.
	Probe func(path string) probe.Result
}

// Monitor owns the probe loop and its supporting state.
type Monitor struct {
	cfg       *config.Config
	logger    *slog.Logger
	notifier  watchdog.Notifier
	journal   *journal.Store
	probeFn   func(path string) probe.Result
	sessionID string

	watchdogTimeout time.Duration
	supervised      bool

	lock *flock.Flock

	deviceMon *deviceMonitor

	running    atomic.Bool
	iterations atomic.Uint64
	failures   atomic.Uint64
	inARow     atomic.Uint64

	stopOnce sync.Once
	stopCh   chan struct{}

	mu         sync.Mutex
	lastResult probe.Result
	lastProbe  time.Time
	lastPrune  time.Time
	startedAt  time.Time
}

// New constructs a monitor with initialized dependencies.
func New(cfg *config.Config, logger *slog.Logger, opts Options) (*Monitor, error) {
	if cfg == nil {
		return nil, errors.New("monitor requires config")
	}
	if cfg.Monitor.File == "" {
		return nil, errors.New("monitor requires a probe file")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = watchdog.Noop{}
	}
	probeFn := opts.Probe
	if probeFn == nil {
		probeFn = probe.Run
	}

	sessionID := uuid.NewString()
	return &Monitor{
		cfg:             cfg,
		logger:          logger.With(logging.String(logging.FieldSessionID, sessionID)),
		notifier:        notifier,
		journal:         opts.Journal,
		probeFn:         probeFn,
		sessionID:       sessionID,
		watchdogTimeout: opts.WatchdogTimeout,
		supervised:      opts.Supervised,
		lock:            flock.New(cfg.LockPath()),
		deviceMon:       newDeviceMonitor(logger, cfg.Monitor.File),
		stopCh:          make(chan struct{}),
	}, nil
}

// SessionID returns the per-run correlation identifier.
func (m *Monitor) SessionID() string { return m.sessionID }

// Start acquires the single-instance lock, starts the device monitor, and
// signals readiness to the supervisor.
func (m *Monitor) Start(ctx context.Context) error {
	if m.running.Load() {
		return errors.New("monitor already running")
	}

	ok, err := m.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("another diskwatch instance holds %s", m.cfg.LockPath())
	}

	// Non-fatal: probing works without udev visibility.
	m.deviceMon.Start(ctx)

	if err := m.notifier.Ready(); err != nil {
		m.logger.Warn("ready notification failed",
			logging.Error(err),
			logging.String(logging.FieldEventType, "notify_ready_failed"),
			logging.String(logging.FieldImpact, "supervisor may restart the service before the first heartbeat"))
	}

	m.mu.Lock()
	m.startedAt = time.Now()
	m.mu.Unlock()
	m.running.Store(true)

	m.logger.Info("disk watchdog started",
		logging.String(logging.FieldTarget, m.cfg.Monitor.File),
		logging.Duration("interval", m.cfg.Interval()),
		logging.Bool("supervised", m.supervised),
		logging.Int("pid", os.Getpid()))
	return nil
}

// Run executes the monitor loop until the context cancels or RequestStop
// is called. Start must have succeeded first.
func (m *Monitor) Run(ctx context.Context) error {
	if !m.running.Load() {
		return errors.New("monitor not started")
	}

	interval := m.cfg.Interval()
	timer := time.NewTimer(interval)
	defer timer.Stop()

	for {
		m.iterate(ctx)

		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(interval)

		select {
		case <-ctx.Done():
			return nil
		case <-m.stopCh:
			return nil
		case <-timer.C:
		}
	}
}

// iterate performs one probe cycle: read, journal, heartbeat or silence.
func (m *Monitor) iterate(ctx context.Context) {
	iteration := m.iterations.Add(1)

	result := m.probeFn(m.cfg.Monitor.File)

	m.mu.Lock()
	m.lastResult = result
	m.lastProbe = time.Now()
	m.mu.Unlock()

	m.recordJournal(ctx, result)

	if result.OK() {
		m.inARow.Store(0)
		m.logger.Debug("read ok",
			logging.Uint64(logging.FieldIteration, iteration),
			logging.Int64("bytes_read", result.BytesRead),
			logging.Duration("duration", result.Duration))
		if err := m.notifier.Heartbeat(); err != nil {
			m.logger.Warn("heartbeat notification failed",
				logging.Error(err),
				logging.String(logging.FieldEventType, "notify_heartbeat_failed"),
				logging.String(logging.FieldImpact, "supervisor watchdog may fire despite healthy disk"))
		}
		return
	}

	m.failures.Add(1)
	inARow := m.inARow.Add(1)
	// No heartbeat on failure: the silence is the signal that lets the
	// supervisor's timeout escalate.
	m.logger.Error("probe failed",
		logging.Uint64(logging.FieldIteration, iteration),
		logging.String(logging.FieldOutcome, result.Outcome.String()),
		logging.Int(logging.FieldOutcomeCode, result.Outcome.Code()),
		logging.Int64(logging.FieldOffset, result.Offset),
		logging.Uint64("consecutive_failures", inARow),
		logging.Error(result.Err))
}

func (m *Monitor) recordJournal(ctx context.Context, result probe.Result) {
	if m.journal == nil {
		return
	}
	if err := m.journal.Record(ctx, result); err != nil {
		m.logger.Warn("journal write failed",
			logging.Error(err),
			logging.String(logging.FieldEventType, "journal_write_failed"),
			logging.String(logging.FieldImpact, "probe history will have gaps"))
	}

	m.mu.Lock()
	due := time.Since(m.lastPrune) >= journalPruneEvery
	if due {
		m.lastPrune = time.Now()
	}
	m.mu.Unlock()
	if !due {
		return
	}
	removed, err := m.journal.Prune(ctx, m.cfg.JournalRetention())
	if err != nil {
		m.logger.Warn("journal prune failed", logging.Error(err))
		return
	}
	if removed > 0 {
		m.logger.Debug("journal pruned", logging.Int64("removed", removed))
	}
}

// RequestStop asks a running loop to exit. Safe to call from any
// goroutine, any number of times.
func (m *Monitor) RequestStop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
}

// Stop tears down loop resources and releases the lock.
func (m *Monitor) Stop() {
	if !m.running.Load() {
		return
	}
	m.RequestStop()
	m.deviceMon.Stop()
	if err := m.notifier.Stopping(); err != nil {
		m.logger.Debug("stopping notification failed", logging.Error(err))
	}
	if err := m.lock.Unlock(); err != nil {
		m.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	m.running.Store(false)
	m.logger.Info("disk watchdog stopped")
}

// Close releases resources held by the monitor.
func (m *Monitor) Close() error {
	m.Stop()
	var err error
	if m.journal != nil {
		err = m.journal.Close()
	}
	if closeErr := m.notifier.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	return err
}
