// Package daemon runs the diskwatch monitor loop and enforces
// single-instance execution.
//
// The loop is deliberately synchronous: one probe, one optional heartbeat,
// one sleep, repeated until the signal context cancels. A probe that hangs
// hangs the loop, which stops the heartbeats, which is exactly the signal
// the supervising watchdog needs. Escalation policy (restart, reboot)
// belongs to the supervisor, never to this process; consecutive failures
// simply keep withholding heartbeats.
package daemon
