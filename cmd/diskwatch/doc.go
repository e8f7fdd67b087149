// Package main hosts the diskwatch CLI entrypoint and command graph.
//
// The Cobra-based command tree runs the watchdog loop in the foreground,
// translates terminal invocations into IPC calls against a running daemon,
// and provides preflight diagnostics and configuration scaffolding. It
// centralizes configuration resolution, socket discovery, and structured
// logging setup so subcommands can focus on user experience instead of
// wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
