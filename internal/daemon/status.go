package daemon

import (
	"context"
	"os"
	"time"

	"diskwatch/internal/diskstats"
	"diskwatch/internal/journal"
)

// Status represents monitor runtime information.
type Status struct {
	Running             bool
	PID                 int
	SessionID           string
	Target              string
	Device              string
	Interval            time.Duration
	Supervised          bool
	WatchdogTimeout     time.Duration
	Iterations          uint64
	Failures            uint64
	ConsecutiveFailures uint64
	LastOutcome         string
	LastOutcomeCode     int
	LastError           string
	LastProbeAt         time.Time
	StartedAt           time.Time
	LockPath            string
	JournalPath         string
	JournalSummary      *journal.Summary
	DiskUsage           *diskstats.UsageInfo
	DeviceIO            *diskstats.IOInfo
}

// Status returns a point-in-time snapshot of the monitor.
func (m *Monitor) Status(ctx context.Context) Status {
	m.mu.Lock()
	last := m.lastResult
	lastProbe := m.lastProbe
	startedAt := m.startedAt
	m.mu.Unlock()

	status := Status{
		Running:             m.running.Load(),
		PID:                 os.Getpid(),
		SessionID:           m.sessionID,
		Target:              m.cfg.Monitor.File,
		Device:              m.deviceMon.DeviceName(),
		Interval:            m.cfg.Interval(),
		Supervised:          m.supervised,
		WatchdogTimeout:     m.watchdogTimeout,
		Iterations:          m.iterations.Load(),
		Failures:            m.failures.Load(),
		ConsecutiveFailures: m.inARow.Load(),
		LastProbeAt:         lastProbe,
		StartedAt:           startedAt,
		LockPath:            m.cfg.LockPath(),
	}

	if !lastProbe.IsZero() {
		status.LastOutcome = last.Outcome.String()
		status.LastOutcomeCode = last.Outcome.Code()
		if last.Err != nil {
			status.LastError = last.Err.Error()
		}
	}

	if m.journal != nil {
		status.JournalPath = m.journal.Path()
		if summary, err := m.journal.Summarize(ctx); err == nil {
			status.JournalSummary = &summary
		}
	}

	if usage, err := diskstats.Usage(ctx, m.cfg.Monitor.File); err == nil {
		status.DiskUsage = &usage
	}
	if status.Device != "" {
		if io, err := diskstats.IOCounters(ctx, status.Device); err == nil {
			status.DeviceIO = io
		}
	}

	return status
}

// History returns the newest journal entries, most recent first. It
// returns nil when journaling is disabled.
func (m *Monitor) History(ctx context.Context, limit int) ([]journal.Entry, error) {
	if m.journal == nil {
		return nil, nil
	}
	return m.journal.Recent(ctx, limit)
}

// ProbeNow runs one out-of-band probe against the configured target. The
// result is journaled but never produces a heartbeat; only loop-scheduled
// successes pet the watchdog.
func (m *Monitor) ProbeNow(ctx context.Context) journal.Entry {
	result := m.probeFn(m.cfg.Monitor.File)
	m.recordJournal(ctx, result)
	errText := ""
	if result.Err != nil {
		errText = result.Err.Error()
	}
	return journal.Entry{
		RecordedAt: time.Now().UTC(),
		Outcome:    result.Outcome,
		Offset:     result.Offset,
		BytesRead:  result.BytesRead,
		Error:      errText,
		Duration:   result.Duration,
	}
}
