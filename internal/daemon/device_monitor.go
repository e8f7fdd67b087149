package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/pilebones/go-udev/netlink"

	"diskwatch/internal/diskstats"
	"diskwatch/internal/logging"
)

// deviceMonitor listens for udev netlink events affecting the block device
// that backs the monitored file. It is purely diagnostic: a removed or
// offlined device shows up in the logs immediately instead of only as a
// string of probe failures.
type deviceMonitor struct {
	logger *slog.Logger
	major  uint32
	minor  uint32
	device string

	mu      sync.Mutex
	conn    *netlink.UEventConn
	quit    chan struct{}
	running bool
}

// newDeviceMonitor resolves the device backing target. Resolution failure
// yields a nil monitor; every method on a nil monitor is a no-op.
func newDeviceMonitor(logger *slog.Logger, target string) *deviceMonitor {
	major, minor, err := diskstats.DeviceNumbers(target)
	if err != nil {
		return nil
	}
	device, err := diskstats.DeviceName(target)
	if err != nil {
		device = fmt.Sprintf("%d:%d", major, minor)
	}
	return &deviceMonitor{
		logger: logging.NewComponentLogger(logger, "device-monitor"),
		major:  major,
		minor:  minor,
		device: device,
	}
}

// DeviceName returns the resolved kernel device name, or empty when the
// monitor could not resolve one.
func (m *deviceMonitor) DeviceName() string {
	if m == nil {
		return ""
	}
	return m.device
}

// Start begins listening for udev netlink events.
func (m *deviceMonitor) Start(ctx context.Context) {
	if m == nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return
	}

	conn := new(netlink.UEventConn)
	if err := conn.Connect(netlink.UdevEvent); err != nil {
		m.logger.Warn("failed to connect to netlink socket; device events will not be reported",
			logging.Error(err),
			logging.String(logging.FieldEventType, "netlink_connect_failed"),
			logging.String(logging.FieldErrorHint, "ensure the daemon has permission to access netlink sockets"))
		return
	}

	m.conn = conn
	m.quit = make(chan struct{})
	m.running = true

	quit := m.quit
	go m.monitorLoop(ctx, quit)

	m.logger.Info("device monitor started",
		logging.String(logging.FieldDevice, m.device))
}

// Stop shuts down the device monitor.
func (m *deviceMonitor) Stop() {
	if m == nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}

	if m.quit != nil {
		close(m.quit)
		m.quit = nil
	}
	if m.conn != nil {
		_ = m.conn.Close()
		m.conn = nil
	}
	m.running = false

	m.logger.Info("device monitor stopped")
}

// Running reports whether the device monitor is active.
func (m *deviceMonitor) Running() bool {
	if m == nil {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

func (m *deviceMonitor) monitorLoop(ctx context.Context, quit <-chan struct{}) {
	queue := make(chan netlink.UEvent)
	errs := make(chan error)

	m.mu.Lock()
	conn := m.conn
	m.mu.Unlock()
	if conn == nil {
		return
	}

	monitorQuit := conn.Monitor(queue, errs, m.buildMatcher())

	for {
		select {
		case <-ctx.Done():
			close(monitorQuit)
			return
		case <-quit:
			close(monitorQuit)
			return
		case uevent := <-queue:
			m.handleEvent(uevent)
		case err := <-errs:
			m.logger.Warn("device monitor error",
				logging.Error(err),
				logging.String(logging.FieldEventType, "netlink_monitor_error"))
		}
	}
}

// buildMatcher selects block-subsystem events for the backing device's
// major:minor.
func (m *deviceMonitor) buildMatcher() netlink.Matcher {
	action := "remove|offline|change"
	rules := &netlink.RuleDefinitions{}
	rules.AddRule(netlink.RuleDefinition{
		Action: &action,
		Env: map[string]string{
			"SUBSYSTEM": "block",
			"MAJOR":     fmt.Sprintf("%d", m.major),
			"MINOR":     fmt.Sprintf("%d", m.minor),
		},
	})
	return rules
}

func (m *deviceMonitor) handleEvent(uevent netlink.UEvent) {
	action := string(uevent.Action)
	attrs := []logging.Attr{
		logging.String(logging.FieldDevice, m.device),
		logging.String("action", action),
		logging.String(logging.FieldEventType, "block_device_event"),
	}
	if devname := uevent.Env["DEVNAME"]; devname != "" {
		attrs = append(attrs, logging.String("devname", devname))
	}

	switch action {
	case "remove", "offline":
		attrs = append(attrs,
			logging.String(logging.FieldImpact, "probes will fail until the device returns"))
		m.logger.Warn("backing device went away", logging.Args(attrs...)...)
	default:
		m.logger.Info("backing device changed", logging.Args(attrs...)...)
	}
}
