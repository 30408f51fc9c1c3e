package testsupport

import (
	"testing"

	"autopost/internal/config"
	"autopost/internal/tracker"
)

// MustOpenTracker opens a tracker.Store for tests and registers cleanup.
func MustOpenTracker(t testing.TB, cfg *config.Config) *tracker.Store {
	t.Helper()

	store, err := tracker.Open(cfg)
	if err != nil {
		t.Fatalf("tracker.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}
