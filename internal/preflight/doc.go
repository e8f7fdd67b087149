// Package preflight validates the environment before the monitor loop
// starts.
//
// The probe file check is fatal and runs exactly once at daemon startup;
// a file that becomes invalid later is caught by the probe itself, not
// re-validated here. The remaining checks are informational and surface
// through the check command.
package preflight
