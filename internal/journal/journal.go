package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"diskwatch/internal/probe"
)

const schema = `
CREATE TABLE IF NOT EXISTS probe_results (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    recorded_at TEXT    NOT NULL,
    outcome     INTEGER NOT NULL,
    offset      INTEGER NOT NULL DEFAULT 0,
    bytes_read  INTEGER NOT NULL DEFAULT 0,
    error       TEXT,
    duration_us INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_probe_results_recorded_at
    ON probe_results(recorded_at);
`

// Store manages probe-outcome persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the journal database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Entry is one recorded probe outcome.
type Entry struct {
	ID         int64
	RecordedAt time.Time
	Outcome    probe.Outcome
	Offset     int64
	BytesRead  int64
	Error      string
	Duration   time.Duration
}

// Record inserts one probe result.
func (s *Store) Record(ctx context.Context, result probe.Result) error {
	errText := ""
	if result.Err != nil {
		errText = result.Err.Error()
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO probe_results (recorded_at, outcome, offset, bytes_read, error, duration_us)
         VALUES (?, ?, ?, ?, ?, ?)`,
		time.Now().UTC().Format(time.RFC3339Nano),
		result.Outcome.Code(),
		result.Offset,
		result.BytesRead,
		nullableString(errText),
		result.Duration.Microseconds(),
	)
	if err != nil {
		return fmt.Errorf("insert probe result: %w", err)
	}
	return nil
}

// Recent returns the newest entries, most recent first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, recorded_at, outcome, offset, bytes_read, error, duration_us
         FROM probe_results ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query probe results: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate probe results: %w", err)
	}
	return entries, nil
}

// Summary aggregates recorded outcomes.
type Summary struct {
	Total       int64
	Succeeded   int64
	Failed      int64
	LastFailure *Entry
}

// Summarize computes aggregate counts and the most recent failure.
func (s *Store) Summarize(ctx context.Context) (Summary, error) {
	var summary Summary
	row := s.db.QueryRowContext(
		ctx,
		`SELECT COUNT(*),
                COALESCE(SUM(CASE WHEN outcome = 0 THEN 1 ELSE 0 END), 0)
         FROM probe_results`,
	)
	if err := row.Scan(&summary.Total, &summary.Succeeded); err != nil {
		return Summary{}, fmt.Errorf("summarize probe results: %w", err)
	}
	summary.Failed = summary.Total - summary.Succeeded

	failureRow := s.db.QueryRowContext(
		ctx,
		`SELECT id, recorded_at, outcome, offset, bytes_read, error, duration_us
         FROM probe_results WHERE outcome != 0 ORDER BY id DESC LIMIT 1`,
	)
	entry, err := scanEntry(failureRow)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return Summary{}, err
	default:
		summary.LastFailure = &entry
	}
	return summary, nil
}

// Prune removes entries older than the retention window and returns the
// number of rows deleted.
func (s *Store) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	if retention <= 0 {
		return 0, nil
	}
	cutoff := time.Now().UTC().Add(-retention).Format(time.RFC3339Nano)
	res, err := s.db.ExecContext(ctx, `DELETE FROM probe_results WHERE recorded_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune probe results: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return removed, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (Entry, error) {
	var (
		entry      Entry
		recordedAt string
		outcome    int
		errText    sql.NullString
		durationUS int64
	)
	if err := row.Scan(&entry.ID, &recordedAt, &outcome, &entry.Offset, &entry.BytesRead, &errText, &durationUS); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Entry{}, err
		}
		return Entry{}, fmt.Errorf("scan probe result: %w", err)
	}
	parsed, err := time.Parse(time.RFC3339Nano, recordedAt)
	if err != nil {
		return Entry{}, fmt.Errorf("parse recorded_at %q: %w", recordedAt, err)
	}
	entry.RecordedAt = parsed
	entry.Outcome = probe.Outcome(outcome)
	entry.Error = errText.String
	entry.Duration = time.Duration(durationUS) * time.Microsecond
	return entry, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
