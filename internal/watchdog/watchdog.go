package watchdog

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

// Timeout reports the watchdog timeout configured by the supervising
// systemd unit, following sd_watchdog_enabled semantics: WATCHDOG_USEC
// holds the timeout in microseconds and WATCHDOG_PID, when present, must
// match our pid for the setting to apply.
func Timeout() (time.Duration, bool) {
	usecValue := strings.TrimSpace(os.Getenv("WATCHDOG_USEC"))
	if usecValue == "" {
		return 0, false
	}
	usec, err := strconv.ParseUint(usecValue, 10, 64)
	if err != nil || usec == 0 {
		return 0, false
	}
	if pidValue := strings.TrimSpace(os.Getenv("WATCHDOG_PID")); pidValue != "" {
		pid, err := strconv.Atoi(pidValue)
		if err != nil || pid != os.Getpid() {
			return 0, false
		}
	}
	return time.Duration(usec) * time.Microsecond, true
}

// Notifier sends service state to the supervisor.
type Notifier interface {
	// Ready signals startup completion (READY=1).
	Ready() error
	// Heartbeat pets the supervisor's watchdog timer (WATCHDOG=1).
	Heartbeat() error
	// Stopping signals orderly shutdown (STOPPING=1).
	Stopping() error
	// Close releases the notification socket.
	Close() error
}

// New returns a socket-backed notifier when NOTIFY_SOCKET is set, and a
// no-op notifier otherwise. Absence of a supervisor is not an error.
func New() (Notifier, error) {
	socketPath := os.Getenv("NOTIFY_SOCKET")
	if socketPath == "" {
		return Noop{}, nil
	}
	return dial(socketPath)
}

func dial(socketPath string) (Notifier, error) {
	// A leading '@' designates the Linux abstract socket namespace.
	if strings.HasPrefix(socketPath, "@") {
		socketPath = "\x00" + socketPath[1:]
	}
	addr := &net.UnixAddr{Name: socketPath, Net: "unixgram"}
	conn, err := net.DialUnix("unixgram", nil, addr)
	if err != nil {
		return nil, fmt.Errorf("dial notify socket: %w", err)
	}
	return &socketNotifier{conn: conn}, nil
}

type socketNotifier struct {
	conn *net.UnixConn
}

func (n *socketNotifier) send(state string) error {
	if n.conn == nil {
		return errors.New("notify socket closed")
	}
	if _, err := n.conn.Write([]byte(state)); err != nil {
		return fmt.Errorf("notify %s: %w", state, err)
	}
	return nil
}

func (n *socketNotifier) Ready() error { return n.send("READY=1") }

func (n *socketNotifier) Heartbeat() error { return n.send("WATCHDOG=1") }

func (n *socketNotifier) Stopping() error { return n.send("STOPPING=1") }

func (n *socketNotifier) Close() error {
	if n.conn == nil {
		return nil
	}
	err := n.conn.Close()
	n.conn = nil
	return err
}

// Noop satisfies Notifier without talking to anything. Selected in debug
// mode and when no supervisor socket exists, so the monitor loop never
// branches on mode.
type Noop struct{}

func (Noop) Ready() error { return nil }

func (Noop) Heartbeat() error { return nil }

func (Noop) Stopping() error { return nil }

func (Noop) Close() error { return nil }
