package ipc

import "time"

// StatusRequest fetches monitor status.
type StatusRequest struct{}

// StatusResponse represents a point-in-time monitor snapshot on the wire.
type StatusResponse struct {
	Running             bool          `json:"running"`
	PID                 int           `json:"pid"`
	SessionID           string        `json:"session_id"`
	Target              string        `json:"target"`
	Device              string        `json:"device"`
	Interval            time.Duration `json:"interval"`
	Supervised          bool          `json:"supervised"`
	WatchdogTimeout     time.Duration `json:"watchdog_timeout"`
	Iterations          uint64        `json:"iterations"`
	Failures            uint64        `json:"failures"`
	ConsecutiveFailures uint64        `json:"consecutive_failures"`
	LastOutcome         string        `json:"last_outcome"`
	LastOutcomeCode     int           `json:"last_outcome_code"`
	LastError           string        `json:"last_error"`
	LastProbeAt         time.Time     `json:"last_probe_at"`
	StartedAt           time.Time     `json:"started_at"`
	LockPath            string        `json:"lock_path"`
	JournalPath         string        `json:"journal_path"`
	JournalTotal        int64         `json:"journal_total"`
	JournalFailed       int64         `json:"journal_failed"`
	DiskMountpoint      string        `json:"disk_mountpoint"`
	DiskUsedPercent     float64       `json:"disk_used_percent"`
	DiskFree            uint64        `json:"disk_free"`
	DeviceReads         uint64        `json:"device_reads"`
	DeviceReadBytes     uint64        `json:"device_read_bytes"`
}

// ProbeNowRequest triggers one out-of-band probe.
type ProbeNowRequest struct{}

// ProbeNowResponse carries the result of a single probe.
type ProbeNowResponse struct {
	Entry ProbeEntry `json:"entry"`
}

// ProbeEntry is the wire form of a journaled probe result.
type ProbeEntry struct {
	RecordedAt time.Time     `json:"recorded_at"`
	Outcome    string        `json:"outcome"`
	Code       int           `json:"code"`
	Offset     int64         `json:"offset"`
	BytesRead  int64         `json:"bytes_read"`
	Error      string        `json:"error"`
	Duration   time.Duration `json:"duration"`
}

// HistoryRequest fetches recent journaled probes.
type HistoryRequest struct {
	Limit int `json:"limit"`
}

// HistoryResponse contains journal entries, newest first.
type HistoryResponse struct {
	Entries []ProbeEntry `json:"entries"`
}

// StopRequest asks the daemon process to shut down.
type StopRequest struct{}

// StopResponse indicates stop result.
type StopResponse struct {
	Stopped bool `json:"stopped"`
}
