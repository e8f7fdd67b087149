// Package journal persists per-iteration probe outcomes to SQLite.
//
// The journal is diagnostic only: the monitor loop runs identically with
// it disabled, and a journal write failure never withholds or produces a
// watchdog heartbeat. Rows age out by the configured retention window.
package journal
