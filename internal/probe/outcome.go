package probe

import (
	"fmt"
	"strings"
	"time"
)

// Outcome classifies the result of one probe attempt. The numeric values
// are stable and appear in logs, journal rows, and IPC responses.
type Outcome int

const (
	OutcomeOK            Outcome = 0
	OutcomeAllocFailed   Outcome = 1
	OutcomeOpenFailed    Outcome = 2
	OutcomeSeekFailed    Outcome = 3
	OutcomeReadFailed    Outcome = 4
	OutcomeUnexpectedEOF Outcome = 5
	OutcomeShortRead     Outcome = 6
	OutcomeCloseFailed   Outcome = 7
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeAllocFailed:
		return "alloc_failed"
	case OutcomeOpenFailed:
		return "open_failed"
	case OutcomeSeekFailed:
		return "seek_failed"
	case OutcomeReadFailed:
		return "read_failed"
	case OutcomeUnexpectedEOF:
		return "unexpected_eof"
	case OutcomeShortRead:
		return "short_read"
	case OutcomeCloseFailed:
		return "close_failed"
	default:
		return fmt.Sprintf("unknown(%d)", int(o))
	}
}

// Code returns the numeric diagnostic code for the outcome.
func (o Outcome) Code() int { return int(o) }

// OK reports whether the outcome represents a successful probe.
func (o Outcome) OK() bool { return o == OutcomeOK }

// ParseOutcome maps an outcome name back to its value.
func ParseOutcome(value string) (Outcome, bool) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "ok":
		return OutcomeOK, true
	case "alloc_failed":
		return OutcomeAllocFailed, true
	case "open_failed":
		return OutcomeOpenFailed, true
	case "seek_failed":
		return OutcomeSeekFailed, true
	case "read_failed":
		return OutcomeReadFailed, true
	case "unexpected_eof":
		return OutcomeUnexpectedEOF, true
	case "short_read":
		return OutcomeShortRead, true
	case "close_failed":
		return OutcomeCloseFailed, true
	default:
		return OutcomeOK, false
	}
}

// Result captures everything observed during one probe attempt.
type Result struct {
	Outcome Outcome
	// Offset is the byte position at which a read-phase failure occurred.
	Offset int64
	// Read is the number of bytes delivered by a short read.
	Read int
	// BytesRead is the total number of bytes consumed before returning.
	BytesRead int64
	// Err carries the underlying OS error when one exists.
	Err error
	// Duration measures the whole attempt, open through close.
	Duration time.Duration
}

// OK reports whether the probe succeeded.
func (r Result) OK() bool { return r.Outcome.OK() }

// Describe renders a one-line human summary of the result.
func (r Result) Describe() string {
	switch r.Outcome {
	case OutcomeOK:
		return fmt.Sprintf("read ok: %d bytes in %s", r.BytesRead, r.Duration)
	case OutcomeAllocFailed:
		return fmt.Sprintf("buffer allocation failed: %v", r.Err)
	case OutcomeOpenFailed:
		return fmt.Sprintf("open failed: %v", r.Err)
	case OutcomeSeekFailed:
		return fmt.Sprintf("seek failed: %v", r.Err)
	case OutcomeReadFailed:
		return fmt.Sprintf("read failed at offset %d: %v", r.Offset, r.Err)
	case OutcomeUnexpectedEOF:
		return fmt.Sprintf("unexpected EOF at offset %d", r.Offset)
	case OutcomeShortRead:
		return fmt.Sprintf("short read at offset %d: %d/%d bytes", r.Offset, r.Read, BlockSize)
	case OutcomeCloseFailed:
		return fmt.Sprintf("close failed: %v", r.Err)
	default:
		return r.Outcome.String()
	}
}
