// Package logs provides bounded-memory tailing of the daemon log file.
//
// Tail reads the last N lines without loading the whole file; Follow polls
// for appended lines and streams them to a writer until the context ends.
// The CLI uses both so `diskwatch logs` works whether or not the daemon is
// currently running.
package logs
