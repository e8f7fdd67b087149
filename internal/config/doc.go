// Package config loads, normalizes, and validates diskwatch configuration.
//
// Configuration merges three sources in increasing precedence: built-in
// defaults, an optional TOML file, and command-line flags applied by the
// CLI after Load returns. The effective probe interval may additionally be
// overridden by the systemd watchdog timeout at daemon startup; that
// override lives in the watchdog package, not here.
//
// A Config is immutable once the daemon loop starts.
package config
