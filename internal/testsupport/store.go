package testsupport

import (
	"testing"

	"diskwatch/internal/config"
	"diskwatch/internal/journal"
)

// MustOpenJournal opens the sqlite journal for the given config and fails
// the test on error. The store is closed automatically during cleanup.
func MustOpenJournal(t testing.TB, cfg *config.Config) *journal.Store {
	t.Helper()

	store, err := journal.Open(cfg.JournalPath())
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}
