package watchdog

import (
	"net"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"
)

func TestTimeoutUnset(t *testing.T) {
	t.Setenv("WATCHDOG_USEC", "")
	t.Setenv("WATCHDOG_PID", "")
	if _, ok := Timeout(); ok {
		t.Fatal("expected no timeout without WATCHDOG_USEC")
	}
}

func TestTimeoutParsesMicroseconds(t *testing.T) {
	t.Setenv("WATCHDOG_USEC", "30000000")
	t.Setenv("WATCHDOG_PID", "")
	timeout, ok := Timeout()
	if !ok {
		t.Fatal("expected timeout to be reported")
	}
	if timeout != 30*time.Second {
		t.Fatalf("unexpected timeout: %v", timeout)
	}
}

func TestTimeoutRejectsForeignPID(t *testing.T) {
	t.Setenv("WATCHDOG_USEC", "30000000")
	t.Setenv("WATCHDOG_PID", strconv.Itoa(os.Getpid()+1))
	if _, ok := Timeout(); ok {
		t.Fatal("expected timeout to be ignored for a different pid")
	}
}

func TestTimeoutAcceptsOwnPID(t *testing.T) {
	t.Setenv("WATCHDOG_USEC", "5000000")
	t.Setenv("WATCHDOG_PID", strconv.Itoa(os.Getpid()))
	timeout, ok := Timeout()
	if !ok || timeout != 5*time.Second {
		t.Fatalf("expected 5s timeout, got %v ok=%v", timeout, ok)
	}
}

func TestTimeoutRejectsGarbage(t *testing.T) {
	for _, value := range []string{"abc", "-5", "0"} {
		t.Setenv("WATCHDOG_USEC", value)
		t.Setenv("WATCHDOG_PID", "")
		if _, ok := Timeout(); ok {
			t.Fatalf("expected WATCHDOG_USEC=%q to be rejected", value)
		}
	}
}

func TestNewWithoutSocketIsNoop(t *testing.T) {
	t.Setenv("NOTIFY_SOCKET", "")
	notifier, err := New()
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if _, ok := notifier.(Noop); !ok {
		t.Fatalf("expected Noop notifier, got %T", notifier)
	}
	if err := notifier.Heartbeat(); err != nil {
		t.Fatalf("noop heartbeat errored: %v", err)
	}
}

func TestSocketNotifierSendsStates(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "notify.sock")
	addr := &net.UnixAddr{Name: socketPath, Net: "unixgram"}
	listener, err := net.ListenUnixgram("unixgram", addr)
	if err != nil {
		t.Fatalf("listen unixgram: %v", err)
	}
	defer listener.Close()

	t.Setenv("NOTIFY_SOCKET", socketPath)
	notifier, err := New()
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	defer notifier.Close()

	steps := []struct {
		send func() error
		want string
	}{
		{notifier.Ready, "READY=1"},
		{notifier.Heartbeat, "WATCHDOG=1"},
		{notifier.Stopping, "STOPPING=1"},
	}

	buf := make([]byte, 64)
	for _, step := range steps {
		if err := step.send(); err != nil {
			t.Fatalf("send %s: %v", step.want, err)
		}
		if err := listener.SetReadDeadline(time.Now().Add(2 * time.Second)); err != nil {
			t.Fatalf("set deadline: %v", err)
		}
		n, err := listener.Read(buf)
		if err != nil {
			t.Fatalf("read datagram: %v", err)
		}
		if got := string(buf[:n]); got != step.want {
			t.Fatalf("unexpected state: got %q want %q", got, step.want)
		}
	}
}

func TestSocketNotifierCloseIsIdempotent(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "notify.sock")
	addr := &net.UnixAddr{Name: socketPath, Net: "unixgram"}
	listener, err := net.ListenUnixgram("unixgram", addr)
	if err != nil {
		t.Fatalf("listen unixgram: %v", err)
	}
	defer listener.Close()

	notifier, err := dial(socketPath)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	if err := notifier.Close(); err != nil {
		t.Fatalf("first close: %v", err)
	}
	if err := notifier.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
	if err := notifier.Heartbeat(); err == nil {
		t.Fatal("expected error after close")
	}
}
