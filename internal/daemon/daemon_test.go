package daemon_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"diskwatch/internal/config"
	"diskwatch/internal/daemon"
	"diskwatch/internal/journal"
	"diskwatch/internal/logging"
	"diskwatch/internal/probe"
)

// recordingNotifier captures supervisor notifications for assertions.
type recordingNotifier struct {
	mu         sync.Mutex
	ready      int
	heartbeats int
	stopping   int
}

func (n *recordingNotifier) Ready() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.ready++
	return nil
}

func (n *recordingNotifier) Heartbeat() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.heartbeats++
	return nil
}

func (n *recordingNotifier) Stopping() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.stopping++
	return nil
}

func (n *recordingNotifier) Close() error { return nil }

func (n *recordingNotifier) counts() (ready, heartbeats, stopping int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.ready, n.heartbeats, n.stopping
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.StateDir = filepath.Join(base, "state")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Monitor.File = filepath.Join(base, "probe.dat")
	cfg.Monitor.IntervalMS = 1
	cfg.Journal.Enabled = false
	if err := os.WriteFile(cfg.Monitor.File, make([]byte, 4096), 0o644); err != nil {
		t.Fatalf("write probe file: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	return &cfg
}

func okProbe(string) probe.Result {
	return probe.Result{Outcome: probe.OutcomeOK, BytesRead: 4096}
}

func failingProbe(string) probe.Result {
	return probe.Result{Outcome: probe.OutcomeReadFailed, Err: errors.New("injected read failure")}
}

func TestMonitorStartStop(t *testing.T) {
	cfg := testConfig(t)
	notifier := &recordingNotifier{}
	mon, err := daemon.New(cfg, logging.NewNop(), daemon.Options{
		Notifier: notifier,
		Probe:    okProbe,
	})
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(func() { mon.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := mon.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	status := mon.Status(ctx)
	if !status.Running {
		t.Fatal("expected monitor to report running")
	}
	if status.SessionID == "" {
		t.Fatal("expected a session ID")
	}

	// Second start should fail
	if err := mon.Start(ctx); err == nil {
		t.Fatal("expected second start to fail")
	}

	mon.Stop()
	status = mon.Status(ctx)
	if status.Running {
		t.Fatal("expected monitor to be stopped")
	}

	ready, _, stopping := notifier.counts()
	if ready != 1 {
		t.Fatalf("expected one ready notification, got %d", ready)
	}
	if stopping != 1 {
		t.Fatalf("expected one stopping notification, got %d", stopping)
	}
}

func TestMonitorHeartbeatsOnSuccess(t *testing.T) {
	cfg := testConfig(t)
	notifier := &recordingNotifier{}
	mon, err := daemon.New(cfg, logging.NewNop(), daemon.Options{
		Notifier: notifier,
		Probe:    okProbe,
	})
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(func() { mon.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := mon.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = mon.Run(ctx)
	}()

	deadline := time.After(2 * time.Second)
	for {
		if _, heartbeats, _ := notifier.counts(); heartbeats >= 3 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("timed out waiting for heartbeats")
		case <-time.After(5 * time.Millisecond):
		}
	}

	mon.RequestStop()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not exit after RequestStop")
	}

	status := mon.Status(ctx)
	if status.Iterations == 0 {
		t.Fatal("expected at least one iteration")
	}
	if status.Failures != 0 {
		t.Fatalf("expected no failures, got %d", status.Failures)
	}
	if status.LastOutcome != "ok" {
		t.Fatalf("expected last outcome ok, got %q", status.LastOutcome)
	}
}

func TestMonitorWithholdsHeartbeatOnFailure(t *testing.T) {
	cfg := testConfig(t)
	notifier := &recordingNotifier{}
	mon, err := daemon.New(cfg, logging.NewNop(), daemon.Options{
		Notifier: notifier,
		Probe:    failingProbe,
	})
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(func() { mon.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := mon.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = mon.Run(ctx)
	}()

	deadline := time.After(2 * time.Second)
	for {
		if mon.Status(ctx).Failures >= 3 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("timed out waiting for failures")
		case <-time.After(5 * time.Millisecond):
		}
	}

	mon.RequestStop()
	<-done

	if _, heartbeats, _ := notifier.counts(); heartbeats != 0 {
		t.Fatalf("expected no heartbeats on failure, got %d", heartbeats)
	}
	status := mon.Status(ctx)
	if status.ConsecutiveFailures == 0 {
		t.Fatal("expected consecutive failure count to grow")
	}
	if status.LastOutcomeCode != probe.OutcomeReadFailed.Code() {
		t.Fatalf("unexpected last outcome code %d", status.LastOutcomeCode)
	}
}

func TestMonitorSingleInstanceLock(t *testing.T) {
	cfg := testConfig(t)
	first, err := daemon.New(cfg, logging.NewNop(), daemon.Options{Probe: okProbe})
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(func() { first.Close() })

	ctx := context.Background()
	if err := first.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	second, err := daemon.New(cfg, logging.NewNop(), daemon.Options{Probe: okProbe})
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(func() { second.Close() })
	if err := second.Start(ctx); err == nil {
		t.Fatal("expected second instance to fail the lock")
	}
}

func TestMonitorJournalsProbes(t *testing.T) {
	cfg := testConfig(t)
	cfg.Journal.Enabled = true
	store, err := journal.Open(cfg.JournalPath())
	if err != nil {
		t.Fatalf("journal.Open: %v", err)
	}

	mon, err := daemon.New(cfg, logging.NewNop(), daemon.Options{
		Journal: store,
		Probe:   okProbe,
	})
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(func() { mon.Close() })

	ctx := context.Background()
	entry := mon.ProbeNow(ctx)
	if !entry.Outcome.OK() {
		t.Fatalf("expected ok outcome, got %s", entry.Outcome)
	}

	entries, err := mon.History(ctx, 10)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one journal entry, got %d", len(entries))
	}

	status := mon.Status(ctx)
	if status.JournalSummary == nil || status.JournalSummary.Total != 1 {
		t.Fatalf("unexpected journal summary: %+v", status.JournalSummary)
	}
}

func TestMonitorRequiresProbeFile(t *testing.T) {
	cfg := testConfig(t)
	cfg.Monitor.File = ""
	if _, err := daemon.New(cfg, logging.NewNop(), daemon.Options{}); err == nil {
		t.Fatal("expected New to fail without a probe file")
	}
}
