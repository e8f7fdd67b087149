// Package watchdog speaks the systemd service notification protocol.
//
// It covers the three interactions diskwatch needs: querying the
// supervisor-configured watchdog timeout (WATCHDOG_USEC / WATCHDOG_PID),
// signalling readiness once at startup (READY=1), and petting the watchdog
// after each successful probe (WATCHDOG=1). A no-op notifier stands in when
// debug mode disables supervisor interaction or when no NOTIFY_SOCKET is
// present.
package watchdog
