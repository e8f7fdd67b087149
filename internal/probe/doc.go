// Package probe performs a single direct-I/O read pass over a target file.
//
// Reads are issued with O_DIRECT so they bypass the page cache and must be
// serviced by the underlying block device. A probe that hangs because the
// device is wedged hangs its caller; that is the point of the exercise, and
// the supervising watchdog timeout is the escape hatch. No timeout is
// wrapped around the syscalls here.
package probe
